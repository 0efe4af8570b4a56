package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus fans envelopes out over redis pub/sub so every API instance
// can forward them to its own websocket clients.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, ChannelFor(env.ConversationID), payload).Err(); err != nil {
		if b.logger != nil {
			b.logger.Warn("event publish failed",
				zap.String("type", env.Type),
				zap.Int64("conversation_id", env.ConversationID),
				zap.Error(err))
		}
		return err
	}
	return nil
}

// Subscribe opens a pattern subscription covering all conversation channels.
// The caller owns the returned PubSub and must Close it.
func (b *RedisBus) Subscribe(ctx context.Context) *redis.PubSub {
	return b.client.PSubscribe(ctx, "conversation:*")
}

package websocket

import (
	"context"

	"matchup-chat/internal/events"

	"go.uber.org/zap"
)

// RedisBridge forwards bus envelopes published by any API instance to
// the websocket clients connected to this one.
type RedisBridge struct {
	bus    *events.RedisBus
	hub    *Hub
	logger *zap.Logger
}

func NewRedisBridge(bus *events.RedisBus, hub *Hub, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{bus: bus, hub: hub, logger: logger}
}

// Run pumps pub/sub messages into the hub until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.bus.Subscribe(ctx)
	defer sub.Close()

	if b.logger != nil {
		b.logger.Info("redis bridge started")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.hub.Broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}

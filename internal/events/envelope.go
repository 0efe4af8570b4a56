package events

import (
	"context"
	"fmt"
	"time"
)

const (
	TypeMessageCreated  = "message.created"
	TypeMessageUpdated  = "message.updated"
	TypeMessageDeleted  = "message.deleted"
	TypeMessageRead     = "message.read"
	TypeReactionAdded   = "reaction.added"
	TypeReactionRemoved = "reaction.removed"
)

// Envelope is the wire format carried on conversation channels.
type Envelope struct {
	Type           string      `json:"type"`
	ConversationID int64       `json:"conversation_id"`
	ActorID        int64       `json:"actor_id"`
	Payload        interface{} `json:"payload,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// ChannelFor names the pub/sub channel for one conversation.
func ChannelFor(conversationID int64) string {
	return fmt.Sprintf("conversation:%d", conversationID)
}

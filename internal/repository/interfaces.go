package repository

import (
	"context"
	"database/sql"
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id int64) (conversation.Conversation, error)
	TouchUpdatedAt(ctx context.Context, id int64, at time.Time) error
	GetDirectBetween(ctx context.Context, userID1, userID2 int64) (conversation.Conversation, error)
	GetUserConversations(ctx context.Context, userID int64, limit int) ([]conversation.Conversation, error)

	AddParticipant(ctx context.Context, p *conversation.Participant) error
	GetParticipant(ctx context.Context, conversationID, userID int64) (conversation.Participant, error)
	UpdateParticipant(ctx context.Context, p conversation.Participant) error
	GetActiveParticipants(ctx context.Context, conversationID int64) ([]conversation.Participant, error)
	ActiveParticipantCount(ctx context.Context, conversationID int64) (int64, error)
	IsActiveParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	// AdvanceLastRead moves the participant's read position forward, never
	// backward. Reports whether the stored value changed.
	AdvanceLastRead(ctx context.Context, conversationID, userID int64, at time.Time) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Message, error)
	Update(ctx context.Context, m message.Message) error
	// ListBefore pages a conversation's history newest-first; ties on
	// created_at are returned in id order so a cursor can restart the
	// sequence without skips or repeats.
	ListBefore(ctx context.Context, conversationID int64, before *message.Message, limit int) ([]message.Message, error)
	LatestInConversation(ctx context.Context, conversationID int64) (message.Message, error)
	UnreadCount(ctx context.Context, conversationID, userID int64, since sql.NullTime) (int64, error)
}

type ReadStatusRepository interface {
	Create(ctx context.Context, rs *message.ReadStatus) error
	Get(ctx context.Context, messageID, userID int64) (message.ReadStatus, error)
	CountForMessage(ctx context.Context, messageID int64) (int64, error)
}

type ReactionRepository interface {
	Create(ctx context.Context, r *message.Reaction) error
	Delete(ctx context.Context, messageID, userID int64, reactionType string) (bool, error)
	ListForMessage(ctx context.Context, messageID int64) ([]message.Reaction, error)
}

package conversation

import (
	"database/sql"
	"time"
)

// Conversation types.
const (
	TypeDirect = "direct"
	TypeGroup  = "group"
)

// Participant roles.
const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// Conversation represents the conversations table.
// A direct conversation has exactly two active participants and no title;
// a group conversation requires a title.
type Conversation struct {
	ID               int64          `gorm:"primaryKey"`
	ConversationType string         `gorm:"size:20;not null;default:direct;index:idx_conversations_type"`
	Title            sql.NullString `gorm:"size:200"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`

	Participants []Participant `gorm:"foreignKey:ConversationID"`
}

// Participant represents the conversation_participants table.
// Membership is soft-removed via IsActive so history survives; the
// (conversation, user) pair stays unique and a rejoin reactivates the row.
type Participant struct {
	ID             int64        `gorm:"primaryKey"`
	ConversationID int64        `gorm:"not null;uniqueIndex:uq_participants_conversation_user"`
	UserID         int64        `gorm:"not null;uniqueIndex:uq_participants_conversation_user;index:idx_participants_user"`
	Role           string       `gorm:"size:20;not null;default:participant"`
	JoinedAt       time.Time    `gorm:"not null"`
	LastReadAt     sql.NullTime ``
	IsActive       bool         `gorm:"not null;default:true;index:idx_participants_user"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "conversation_participants"
}

// IsDirect reports whether the conversation is a two-party direct channel.
func (c Conversation) IsDirect() bool {
	return c.ConversationType == TypeDirect
}

// ActiveParticipants filters the loaded participant rows to active ones.
func (c Conversation) ActiveParticipants() []Participant {
	active := make([]Participant, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// OtherParticipant returns the active counterpart in a direct conversation.
func (c Conversation) OtherParticipant(userID int64) (Participant, bool) {
	for _, p := range c.Participants {
		if p.IsActive && p.UserID != userID {
			return p, true
		}
	}
	return Participant{}, false
}

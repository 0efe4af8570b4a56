package message

import (
	"database/sql"
	"time"
)

// Message represents the messages table.
//
// ConversationID is nullable only because legacy rows written before the
// conversation model existed have no owning conversation; every new write
// sets it. Deletion is always soft: the row (and its read-status and
// reaction children) survives, content is masked at the presentation layer.
type Message struct {
	ID               int64         `gorm:"primaryKey"`
	ConversationID   sql.NullInt64 `gorm:"index:idx_messages_conversation_created"`
	SenderID         int64         `gorm:"not null;index:idx_messages_sender_created"`
	Content          string        `gorm:"type:text;not null"`
	ReplyToMessageID sql.NullInt64 ``
	IsEdited         bool          `gorm:"not null;default:false"`
	EditedAt         sql.NullTime  ``
	IsDeleted        bool          `gorm:"not null;default:false"`
	DeletedAt        sql.NullTime  ``
	AttachmentType   sql.NullString `gorm:"size:50"`
	AttachmentSize   sql.NullInt64  ``
	CreatedAt        time.Time     `gorm:"not null;index:idx_messages_conversation_created;index:idx_messages_sender_created"`
}

// ReadStatus represents the message_read_status table.
// One row per (message, user); read_at is immutable once written.
type ReadStatus struct {
	ID        int64     `gorm:"primaryKey"`
	MessageID int64     `gorm:"not null;uniqueIndex:uq_read_status_message_user"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_read_status_message_user;index:idx_read_status_user"`
	ReadAt    time.Time `gorm:"not null;index:idx_read_status_user"`
}

// Reaction represents the message_reactions table.
// One row per (message, user, type); toggled, never updated.
type Reaction struct {
	ID           int64     `gorm:"primaryKey"`
	MessageID    int64     `gorm:"not null;uniqueIndex:uq_reactions_message_user_type"`
	UserID       int64     `gorm:"not null;uniqueIndex:uq_reactions_message_user_type"`
	ReactionType string    `gorm:"size:20;not null;uniqueIndex:uq_reactions_message_user_type"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages"
}

func (ReadStatus) TableName() string {
	return "message_read_status"
}

func (Reaction) TableName() string {
	return "message_reactions"
}

// Attachment metadata accepted on a posted message.
type Attachment struct {
	Type string
	Size int64
}

// Preview returns a shortened copy of the content for list views.
func (m Message) Preview(max int) string {
	if len(m.Content) <= max {
		return m.Content
	}
	return m.Content[:max] + "..."
}

package httpdto

import (
	"time"

	"matchup-chat/internal/domain/message"
)

// DeletedContentMask replaces the content of soft-deleted messages on
// every read path. Storage keeps the original text.
const DeletedContentMask = "message removed"

type MessageResponse struct {
	ID               int64      `json:"id"`
	ConversationID   int64      `json:"conversation_id,omitempty"`
	SenderID         int64      `json:"sender_id"`
	Content          string     `json:"content"`
	ReplyToMessageID *int64     `json:"reply_to_message_id,omitempty"`
	IsEdited         bool       `json:"is_edited"`
	EditedAt         *time.Time `json:"edited_at,omitempty"`
	IsDeleted        bool       `json:"is_deleted"`
	AttachmentType   string     `json:"attachment_type,omitempty"`
	AttachmentSize   int64      `json:"attachment_size,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// FromMessage converts a message entity into its transport shape,
// masking deleted content.
func FromMessage(m message.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsEdited:  m.IsEdited,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
	if m.ConversationID.Valid {
		resp.ConversationID = m.ConversationID.Int64
	}
	if m.ReplyToMessageID.Valid {
		id := m.ReplyToMessageID.Int64
		resp.ReplyToMessageID = &id
	}
	if m.EditedAt.Valid {
		t := m.EditedAt.Time
		resp.EditedAt = &t
	}
	if m.IsDeleted {
		resp.Content = DeletedContentMask
		resp.AttachmentType = ""
		resp.AttachmentSize = 0
	} else {
		if m.AttachmentType.Valid {
			resp.AttachmentType = m.AttachmentType.String
		}
		if m.AttachmentSize.Valid {
			resp.AttachmentSize = m.AttachmentSize.Int64
		}
	}
	return resp
}

func FromMessages(messages []message.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, FromMessage(m))
	}
	return out
}

type PostMessageRequest struct {
	Content          string `json:"content"`
	ReplyToMessageID *int64 `json:"reply_to_message_id,omitempty"`
	AttachmentType   string `json:"attachment_type,omitempty"`
	AttachmentSize   int64  `json:"attachment_size,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReactionResponse struct {
	ID           int64     `json:"id"`
	MessageID    int64     `json:"message_id"`
	UserID       int64     `json:"user_id"`
	ReactionType string    `json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromReaction(r message.Reaction) ReactionResponse {
	return ReactionResponse{
		ID:           r.ID,
		MessageID:    r.MessageID,
		UserID:       r.UserID,
		ReactionType: r.ReactionType,
		CreatedAt:    r.CreatedAt,
	}
}

type ToggleReactionRequest struct {
	ReactionType string `json:"reaction_type" binding:"required"`
}

type ToggleReactionResponse struct {
	Outcome string `json:"outcome"`
}

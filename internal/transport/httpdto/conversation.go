package httpdto

import (
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/services"
)

type ParticipantResponse struct {
	UserID     int64      `json:"user_id"`
	Role       string     `json:"role"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
	IsActive   bool       `json:"is_active"`
}

type ConversationResponse struct {
	ID               int64                 `json:"id"`
	ConversationType string                `json:"conversation_type"`
	Title            string                `json:"title,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Participants     []ParticipantResponse `json:"participants,omitempty"`
}

type ConversationSummaryResponse struct {
	ConversationResponse
	UnreadCount int64            `json:"unread_count"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
}

func FromConversation(c conversation.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:               c.ID,
		ConversationType: c.ConversationType,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.Title.Valid {
		resp.Title = c.Title.String
	}
	for _, p := range c.Participants {
		resp.Participants = append(resp.Participants, FromParticipant(p))
	}
	return resp
}

func FromParticipant(p conversation.Participant) ParticipantResponse {
	resp := ParticipantResponse{
		UserID:   p.UserID,
		Role:     p.Role,
		JoinedAt: p.JoinedAt,
		IsActive: p.IsActive,
	}
	if p.LastReadAt.Valid {
		t := p.LastReadAt.Time
		resp.LastReadAt = &t
	}
	return resp
}

func FromConversationSummary(s services.ConversationSummary) ConversationSummaryResponse {
	resp := ConversationSummaryResponse{
		ConversationResponse: FromConversation(s.Conversation),
		UnreadCount:          s.UnreadCount,
	}
	if s.LastMessage != nil {
		m := FromMessage(*s.LastMessage)
		resp.LastMessage = &m
	}
	return resp
}

type CreateConversationRequest struct {
	ConversationType string  `json:"conversation_type" binding:"required"`
	Title            string  `json:"title,omitempty"`
	ParticipantIDs   []int64 `json:"participant_ids" binding:"required"`
}

type DirectConversationRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type AddParticipantRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty"`
}

type TouchLastReadRequest struct {
	Timestamp time.Time `json:"timestamp" binding:"required"`
}

type UnreadCountResponse struct {
	ConversationID int64 `json:"conversation_id"`
	UnreadCount    int64 `json:"unread_count"`
}

package services

import (
	"context"
	"errors"
	"time"

	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/events"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

// ReceiptService tracks per-user read state and derives unread counts.
type ReceiptService struct {
	db    *gorm.DB
	repos Repos
	bus   events.Publisher
}

func NewReceiptService(db *gorm.DB, repos Repos, bus events.Publisher) *ReceiptService {
	return &ReceiptService{db: db, repos: repos, bus: bus}
}

// MarkRead records that a user has read a message. First read wins;
// repeats are no-ops. Stale calls from removed participants are dropped
// silently. The participant's last_read_at advances to the message's
// created_at so unread counts reconcile, never moving backwards.
func (s *ReceiptService) MarkRead(ctx context.Context, messageID, userID int64) error {
	var conversationID int64
	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		m, err := r.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if !m.ConversationID.Valid {
			return nil
		}
		conversationID = m.ConversationID.Int64

		active, err := r.Conversations.IsActiveParticipant(ctx, conversationID, userID)
		if err != nil {
			return err
		}
		if !active {
			conversationID = 0
			return nil
		}

		status := message.ReadStatus{
			MessageID: messageID,
			UserID:    userID,
			ReadAt:    time.Now(),
		}
		if err := r.ReadStatus.Create(ctx, &status); err != nil {
			if !errors.Is(err, matchup_errors.ErrAlreadyExists) {
				return err
			}
		}

		_, err = r.Conversations.AdvanceLastRead(ctx, conversationID, userID, m.CreatedAt)
		return err
	})
	if err != nil {
		return err
	}

	if s.bus != nil && conversationID != 0 {
		_ = s.bus.Publish(ctx, events.Envelope{
			Type:           events.TypeMessageRead,
			ConversationID: conversationID,
			ActorID:        userID,
			Payload:        map[string]int64{"message_id": messageID},
			OccurredAt:     time.Now(),
		})
	}
	return nil
}

// UnreadCount counts messages newer than the caller's read position,
// excluding the caller's own messages. A never-read membership counts
// everything.
func (s *ReceiptService) UnreadCount(ctx context.Context, conversationID, userID int64) (int64, error) {
	p, err := s.repos.Conversations.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, matchup_errors.ErrNotFound) {
			return 0, matchup_errors.ErrForbidden
		}
		return 0, err
	}
	return s.repos.Messages.UnreadCount(ctx, conversationID, userID, p.LastReadAt)
}

// ReadCount returns how many participants have read a message.
func (s *ReceiptService) ReadCount(ctx context.Context, messageID, userID int64) (int64, error) {
	m, err := s.repos.Messages.GetByID(ctx, messageID)
	if err != nil {
		return 0, err
	}
	if m.ConversationID.Valid {
		active, err := s.repos.Conversations.IsActiveParticipant(ctx, m.ConversationID.Int64, userID)
		if err != nil {
			return 0, err
		}
		if !active {
			return 0, matchup_errors.ErrForbidden
		}
	}
	return s.repos.ReadStatus.CountForMessage(ctx, messageID)
}

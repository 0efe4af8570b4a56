package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"matchup-chat/internal/config"
	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"
	"matchup-chat/internal/events"
	"matchup-chat/internal/notify"
	"matchup-chat/internal/redis"
	matchup_errors "matchup-chat/pkg/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageLimiter throttles message posting per sender.
type MessageLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (*redis.RateLimitResult, error)
}

// MessageService owns message lifecycle: posting, editing, soft
// deletion and history pagination. Event publication and email
// notification run after the transaction commits and never fail the
// operation.
type MessageService struct {
	db       *gorm.DB
	repos    Repos
	cfg      config.ChatConfig
	bus      events.Publisher
	notifier notify.Notifier
	limiter  MessageLimiter
	logger   *zap.Logger
}

func NewMessageService(db *gorm.DB, repos Repos, cfg config.ChatConfig, bus events.Publisher, notifier notify.Notifier, limiter MessageLimiter, logger *zap.Logger) *MessageService {
	return &MessageService{
		db:       db,
		repos:    repos,
		cfg:      cfg,
		bus:      bus,
		notifier: notifier,
		limiter:  limiter,
		logger:   logger,
	}
}

// Post appends a message to a conversation. The sender must be an
// active participant; a reply target must be a live message in the same
// conversation. Bumps the conversation's updated_at in the same
// transaction.
func (s *MessageService) Post(ctx context.Context, conversationID, senderID int64, content string, replyToID *int64, attachment *message.Attachment) (message.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && attachment == nil {
		return message.Message{}, matchup_errors.ErrInvalidInput
	}

	if s.limiter != nil {
		result, err := s.limiter.AllowMessage(ctx, senderID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("rate limit check unavailable", zap.Error(err))
			}
		} else if !result.Allowed {
			return message.Message{}, matchup_errors.ErrRateLimited
		}
	}

	now := time.Now()
	msg := message.Message{
		ConversationID: sql.NullInt64{Int64: conversationID, Valid: true},
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
	}
	if attachment != nil {
		msg.AttachmentType = sql.NullString{String: attachment.Type, Valid: true}
		msg.AttachmentSize = sql.NullInt64{Int64: attachment.Size, Valid: true}
	}

	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		if _, err := r.Conversations.GetByID(ctx, conversationID); err != nil {
			return err
		}

		active, err := r.Conversations.IsActiveParticipant(ctx, conversationID, senderID)
		if err != nil {
			return err
		}
		if !active {
			return matchup_errors.ErrForbidden
		}

		if replyToID != nil {
			parent, err := r.Messages.GetByID(ctx, *replyToID)
			if err != nil {
				if errors.Is(err, matchup_errors.ErrNotFound) {
					return matchup_errors.ErrInvalidInput
				}
				return err
			}
			if !parent.ConversationID.Valid || parent.ConversationID.Int64 != conversationID {
				return matchup_errors.ErrInvalidInput
			}
			if parent.IsDeleted {
				return matchup_errors.ErrInvalidInput
			}
			msg.ReplyToMessageID = sql.NullInt64{Int64: parent.ID, Valid: true}
		}

		if err := r.Messages.Create(ctx, &msg); err != nil {
			return err
		}
		return r.Conversations.TouchUpdatedAt(ctx, conversationID, now)
	})
	if err != nil {
		return message.Message{}, err
	}

	s.publish(ctx, events.Envelope{
		Type:           events.TypeMessageCreated,
		ConversationID: conversationID,
		ActorID:        senderID,
		Payload:        msg,
		OccurredAt:     now,
	})
	s.notifyNewMessage(ctx, conversationID, msg)

	return msg, nil
}

// Edit replaces a message's content. Only the original sender may edit,
// only while the message is not deleted and within the edit window.
func (s *MessageService) Edit(ctx context.Context, messageID, editorID int64, newContent string) (message.Message, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return message.Message{}, matchup_errors.ErrInvalidInput
	}

	var msg message.Message
	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		m, err := r.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if m.SenderID != editorID {
			return matchup_errors.ErrForbidden
		}
		if m.IsDeleted {
			return matchup_errors.ErrInvalidState
		}
		if s.cfg.EditWindow > 0 && time.Since(m.CreatedAt) > s.cfg.EditWindow {
			return matchup_errors.ErrInvalidState
		}

		m.Content = newContent
		m.IsEdited = true
		m.EditedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := r.Messages.Update(ctx, m); err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return message.Message{}, err
	}

	if msg.ConversationID.Valid {
		s.publish(ctx, events.Envelope{
			Type:           events.TypeMessageUpdated,
			ConversationID: msg.ConversationID.Int64,
			ActorID:        editorID,
			Payload:        msg,
			OccurredAt:     time.Now(),
		})
	}
	return msg, nil
}

// Delete soft-deletes a message. Permitted for the sender or a
// conversation admin. Content stays in storage; read paths mask it.
// Deleting an already deleted message is a no-op.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID int64) error {
	var conversationID int64
	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		m, err := r.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if m.IsDeleted {
			return nil
		}

		if m.SenderID != actorID {
			if !m.ConversationID.Valid {
				return matchup_errors.ErrForbidden
			}
			p, err := r.Conversations.GetParticipant(ctx, m.ConversationID.Int64, actorID)
			if err != nil {
				if errors.Is(err, matchup_errors.ErrNotFound) {
					return matchup_errors.ErrForbidden
				}
				return err
			}
			if !p.IsActive || p.Role != conversation.RoleAdmin {
				return matchup_errors.ErrForbidden
			}
		}

		m.IsDeleted = true
		m.DeletedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := r.Messages.Update(ctx, m); err != nil {
			return err
		}
		if m.ConversationID.Valid {
			conversationID = m.ConversationID.Int64
		}
		return nil
	})
	if err != nil {
		return err
	}

	if conversationID != 0 {
		s.publish(ctx, events.Envelope{
			Type:           events.TypeMessageDeleted,
			ConversationID: conversationID,
			ActorID:        actorID,
			Payload:        map[string]int64{"message_id": messageID},
			OccurredAt:     time.Now(),
		})
	}
	return nil
}

// List pages through a conversation's history newest-first. Ties on
// created_at keep insertion order so a cursor never skips or repeats a
// row. beforeID names the last message of the previous page.
func (s *MessageService) List(ctx context.Context, conversationID, userID int64, beforeID *int64, limit int) ([]message.Message, error) {
	active, err := s.repos.Conversations.IsActiveParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, matchup_errors.ErrForbidden
	}

	if limit <= 0 || limit > s.cfg.PageSize {
		limit = s.cfg.PageSize
	}

	var cursor *message.Message
	if beforeID != nil {
		m, err := s.repos.Messages.GetByID(ctx, *beforeID)
		if err != nil {
			if errors.Is(err, matchup_errors.ErrNotFound) {
				return nil, matchup_errors.ErrInvalidInput
			}
			return nil, err
		}
		if !m.ConversationID.Valid || m.ConversationID.Int64 != conversationID {
			return nil, matchup_errors.ErrInvalidInput
		}
		cursor = &m
	}

	return s.repos.Messages.ListBefore(ctx, conversationID, cursor, limit)
}

// Get returns one message. The caller must be an active participant of
// its conversation.
func (s *MessageService) Get(ctx context.Context, messageID, userID int64) (message.Message, error) {
	m, err := s.repos.Messages.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if !m.ConversationID.Valid {
		return message.Message{}, matchup_errors.ErrForbidden
	}
	active, err := s.repos.Conversations.IsActiveParticipant(ctx, m.ConversationID.Int64, userID)
	if err != nil {
		return message.Message{}, err
	}
	if !active {
		return message.Message{}, matchup_errors.ErrForbidden
	}
	return m, nil
}

func (s *MessageService) publish(ctx context.Context, env events.Envelope) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, env); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("type", env.Type), zap.Error(err))
	}
}

// notifyNewMessage emails the other active participants. Failures are
// logged, never surfaced.
func (s *MessageService) notifyNewMessage(ctx context.Context, conversationID int64, msg message.Message) {
	if s.notifier == nil {
		return
	}

	conv, err := s.repos.Conversations.GetByID(ctx, conversationID)
	if err != nil {
		s.logWarn("notification lookup failed", err)
		return
	}
	sender, err := s.repos.Users.GetByID(ctx, msg.SenderID)
	if err != nil {
		s.logWarn("notification lookup failed", err)
		return
	}

	var recipients []user.User
	for _, p := range conv.ActiveParticipants() {
		if p.UserID == msg.SenderID {
			continue
		}
		u, err := s.repos.Users.GetByID(ctx, p.UserID)
		if err != nil {
			continue
		}
		recipients = append(recipients, u)
	}

	if err := s.notifier.NewMessage(ctx, recipients, sender, conv, msg); err != nil {
		s.logWarn("email notification failed", err)
	}
}

func (s *MessageService) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.Error(err))
	}
}

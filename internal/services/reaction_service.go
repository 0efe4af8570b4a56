package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/events"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

// Toggle outcomes.
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

// ReactionService owns per-user-per-message reactions behind a single
// idempotent toggle.
type ReactionService struct {
	db    *gorm.DB
	repos Repos
	bus   events.Publisher
}

func NewReactionService(db *gorm.DB, repos Repos, bus events.Publisher) *ReactionService {
	return &ReactionService{db: db, repos: repos, bus: bus}
}

// Toggle flips one (message, user, type) reaction: present rows are
// removed, absent ones inserted. Concurrent duplicate inserts collapse
// onto the unique constraint and resolve as the added outcome.
func (s *ReactionService) Toggle(ctx context.Context, messageID, userID int64, reactionType string) (string, error) {
	reactionType = strings.TrimSpace(reactionType)
	if reactionType == "" {
		return "", matchup_errors.ErrInvalidInput
	}

	var outcome string
	var conversationID int64
	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		m, err := r.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if m.IsDeleted {
			return matchup_errors.ErrInvalidState
		}
		if m.ConversationID.Valid {
			conversationID = m.ConversationID.Int64
			active, err := r.Conversations.IsActiveParticipant(ctx, conversationID, userID)
			if err != nil {
				return err
			}
			if !active {
				return matchup_errors.ErrForbidden
			}
		}

		removed, err := r.Reactions.Delete(ctx, messageID, userID, reactionType)
		if err != nil {
			return err
		}
		if removed {
			outcome = ReactionRemoved
			return nil
		}

		reaction := message.Reaction{
			MessageID:    messageID,
			UserID:       userID,
			ReactionType: reactionType,
			CreatedAt:    time.Now(),
		}
		if err := r.Reactions.Create(ctx, &reaction); err != nil {
			if errors.Is(err, matchup_errors.ErrAlreadyExists) {
				outcome = ReactionAdded
				return nil
			}
			return err
		}
		outcome = ReactionAdded
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.bus != nil && conversationID != 0 {
		eventType := events.TypeReactionAdded
		if outcome == ReactionRemoved {
			eventType = events.TypeReactionRemoved
		}
		_ = s.bus.Publish(ctx, events.Envelope{
			Type:           eventType,
			ConversationID: conversationID,
			ActorID:        userID,
			Payload: map[string]interface{}{
				"message_id":    messageID,
				"reaction_type": reactionType,
			},
			OccurredAt: time.Now(),
		})
	}
	return outcome, nil
}

// List returns all reactions on a message, oldest first.
func (s *ReactionService) List(ctx context.Context, messageID, userID int64) ([]message.Reaction, error) {
	m, err := s.repos.Messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.ConversationID.Valid {
		active, err := s.repos.Conversations.IsActiveParticipant(ctx, m.ConversationID.Int64, userID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, matchup_errors.ErrForbidden
		}
	}
	return s.repos.Reactions.ListForMessage(ctx, messageID)
}

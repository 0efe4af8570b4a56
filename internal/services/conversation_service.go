package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

// ConversationService owns conversation and participant lifecycle.
type ConversationService struct {
	db    *gorm.DB
	repos Repos
}

func NewConversationService(db *gorm.DB, repos Repos) *ConversationService {
	return &ConversationService{db: db, repos: repos}
}

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	Conversation conversation.Conversation
	UnreadCount  int64
	LastMessage  *message.Message
}

// Create validates and persists a conversation with its initial
// participants in one transaction. Direct conversations take exactly two
// participants and ignore the title; group conversations require one.
func (s *ConversationService) Create(ctx context.Context, convType, title string, participantIDs []int64) (conversation.Conversation, error) {
	if convType != conversation.TypeDirect && convType != conversation.TypeGroup {
		return conversation.Conversation{}, matchup_errors.ErrInvalidInput
	}

	participantIDs = dedupeIDs(participantIDs)
	if convType == conversation.TypeDirect && len(participantIDs) != 2 {
		return conversation.Conversation{}, matchup_errors.ErrInvalidInput
	}
	if len(participantIDs) == 0 {
		return conversation.Conversation{}, matchup_errors.ErrInvalidInput
	}

	title = strings.TrimSpace(title)
	if convType == conversation.TypeGroup && title == "" {
		return conversation.Conversation{}, matchup_errors.ErrInvalidInput
	}

	now := time.Now()
	conv := conversation.Conversation{
		ConversationType: convType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if convType == conversation.TypeGroup {
		conv.Title = sql.NullString{String: title, Valid: true}
	}

	err := runInTx(ctx, s.db, s.repos, func(r Repos) error {
		if err := r.Conversations.Create(ctx, &conv); err != nil {
			return err
		}
		for _, userID := range participantIDs {
			p := conversation.Participant{
				ConversationID: conv.ID,
				UserID:         userID,
				Role:           conversation.RoleParticipant,
				JoinedAt:       now,
				IsActive:       true,
			}
			if err := r.Conversations.AddParticipant(ctx, &p); err != nil {
				return err
			}
			conv.Participants = append(conv.Participants, p)
		}
		return nil
	})
	if err != nil {
		return conversation.Conversation{}, err
	}
	return conv, nil
}

// GetOrCreateDirect returns the direct conversation between two users,
// creating it when none exists.
func (s *ConversationService) GetOrCreateDirect(ctx context.Context, userID1, userID2 int64) (conversation.Conversation, error) {
	if userID1 == userID2 {
		return conversation.Conversation{}, matchup_errors.ErrInvalidInput
	}

	conv, err := s.repos.Conversations.GetDirectBetween(ctx, userID1, userID2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, matchup_errors.ErrNotFound) {
		return conversation.Conversation{}, err
	}
	return s.Create(ctx, conversation.TypeDirect, "", []int64{userID1, userID2})
}

// Get returns a conversation with its participants. The caller must be
// an active participant.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID int64) (conversation.Conversation, error) {
	conv, err := s.repos.Conversations.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	active, err := s.repos.Conversations.IsActiveParticipant(ctx, conversationID, userID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !active {
		return conversation.Conversation{}, matchup_errors.ErrForbidden
	}
	return conv, nil
}

// List returns the user's conversations newest-activity-first, each with
// the caller's unread count and the latest message.
func (s *ConversationService) List(ctx context.Context, userID int64, limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	conversations, err := s.repos.Conversations.GetUserConversations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := ConversationSummary{Conversation: conv}

		p, err := s.repos.Conversations.GetParticipant(ctx, conv.ID, userID)
		if err == nil {
			count, err := s.repos.Messages.UnreadCount(ctx, conv.ID, userID, p.LastReadAt)
			if err != nil {
				return nil, err
			}
			summary.UnreadCount = count
		} else if !errors.Is(err, matchup_errors.ErrNotFound) {
			return nil, err
		}

		latest, err := s.repos.Messages.LatestInConversation(ctx, conv.ID)
		if err == nil {
			summary.LastMessage = &latest
		} else if !errors.Is(err, matchup_errors.ErrNotFound) {
			return nil, err
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// AddParticipant adds a user to a conversation or reactivates a removed
// membership. Rejoining is a new membership event: joined_at resets and
// the previous read position is cleared.
func (s *ConversationService) AddParticipant(ctx context.Context, actorID, conversationID, userID int64, role string) error {
	if role != conversation.RoleParticipant && role != conversation.RoleAdmin {
		return matchup_errors.ErrInvalidInput
	}

	return runInTx(ctx, s.db, s.repos, func(r Repos) error {
		conv, err := r.Conversations.GetByID(ctx, conversationID)
		if err != nil {
			return err
		}

		actorActive, err := r.Conversations.IsActiveParticipant(ctx, conversationID, actorID)
		if err != nil {
			return err
		}
		if !actorActive {
			return matchup_errors.ErrForbidden
		}

		existing, err := r.Conversations.GetParticipant(ctx, conversationID, userID)
		switch {
		case err == nil && existing.IsActive:
			return matchup_errors.ErrConflict
		case err == nil:
			if err := s.checkDirectCapacity(ctx, r, conv); err != nil {
				return err
			}
			existing.IsActive = true
			existing.Role = role
			existing.JoinedAt = time.Now()
			existing.LastReadAt = sql.NullTime{}
			return r.Conversations.UpdateParticipant(ctx, existing)
		case errors.Is(err, matchup_errors.ErrNotFound):
			if err := s.checkDirectCapacity(ctx, r, conv); err != nil {
				return err
			}
			p := conversation.Participant{
				ConversationID: conversationID,
				UserID:         userID,
				Role:           role,
				JoinedAt:       time.Now(),
				IsActive:       true,
			}
			if err := r.Conversations.AddParticipant(ctx, &p); err != nil {
				// A concurrent insert of the same membership won the race.
				if errors.Is(err, matchup_errors.ErrAlreadyExists) {
					return matchup_errors.ErrConflict
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
}

// checkDirectCapacity rejects a third active member in a direct conversation.
func (s *ConversationService) checkDirectCapacity(ctx context.Context, r Repos, conv conversation.Conversation) error {
	if conv.ConversationType != conversation.TypeDirect {
		return nil
	}
	count, err := r.Conversations.ActiveParticipantCount(ctx, conv.ID)
	if err != nil {
		return err
	}
	if count >= 2 {
		return matchup_errors.ErrInvalidInput
	}
	return nil
}

// RemoveParticipant soft-removes a membership. The row stays for audit
// and unread-count history. Permitted for the member themselves or a
// conversation admin.
func (s *ConversationService) RemoveParticipant(ctx context.Context, actorID, conversationID, userID int64) error {
	return runInTx(ctx, s.db, s.repos, func(r Repos) error {
		if actorID != userID {
			actor, err := r.Conversations.GetParticipant(ctx, conversationID, actorID)
			if err != nil {
				if errors.Is(err, matchup_errors.ErrNotFound) {
					return matchup_errors.ErrForbidden
				}
				return err
			}
			if !actor.IsActive || actor.Role != conversation.RoleAdmin {
				return matchup_errors.ErrForbidden
			}
		}

		p, err := r.Conversations.GetParticipant(ctx, conversationID, userID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return nil
		}
		p.IsActive = false
		return r.Conversations.UpdateParticipant(ctx, p)
	})
}

// TouchLastRead advances the caller's read position. Older timestamps
// and calls from non-active participants are silent no-ops.
func (s *ConversationService) TouchLastRead(ctx context.Context, conversationID, userID int64, ts time.Time) error {
	_, err := s.repos.Conversations.AdvanceLastRead(ctx, conversationID, userID, ts)
	return err
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

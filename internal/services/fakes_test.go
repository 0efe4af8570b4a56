package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"
	"matchup-chat/internal/events"
	"matchup-chat/internal/redis"
	matchup_errors "matchup-chat/pkg/errors"
)

// fakeStore is an in-memory stand-in for Postgres. It enforces the same
// unique constraints the schema does so constraint-violation handling
// behaves like the real store.
type fakeStore struct {
	mu sync.Mutex

	users         map[int64]user.User
	conversations map[int64]conversation.Conversation
	participants  map[int64]conversation.Participant
	messages      map[int64]message.Message
	readStatus    map[int64]message.ReadStatus
	reactions     map[int64]message.Reaction

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int64]user.User),
		conversations: make(map[int64]conversation.Conversation),
		participants:  make(map[int64]conversation.Participant),
		messages:      make(map[int64]message.Message),
		readStatus:    make(map[int64]message.ReadStatus),
		reactions:     make(map[int64]message.Reaction),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) repos() Repos {
	return Repos{
		Users:         &fakeUserRepo{s},
		Conversations: &fakeConversationRepo{s},
		Messages:      &fakeMessageRepo{s},
		ReadStatus:    &fakeReadStatusRepo{s},
		Reactions:     &fakeReactionRepo{s},
	}
}

func (s *fakeStore) addUser(name, email string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{
		ID:        s.id(),
		Email:     email,
		FullName:  name,
		UserType:  user.TypePlayer,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return u
}

// --- user repository ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return matchup_errors.ErrAlreadyExists
		}
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, matchup_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, matchup_errors.ErrNotFound
}

// --- conversation repository ---

type fakeConversationRepo struct{ s *fakeStore }

func (r *fakeConversationRepo) Create(_ context.Context, c *conversation.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	stored := *c
	stored.Participants = nil
	r.s.conversations[c.ID] = stored
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id int64) (conversation.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return conversation.Conversation{}, matchup_errors.ErrNotFound
	}
	c.Participants = r.participantsOf(id)
	return c, nil
}

func (r *fakeConversationRepo) participantsOf(conversationID int64) []conversation.Participant {
	var out []conversation.Participant
	for _, p := range r.s.participants {
		if p.ConversationID == conversationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeConversationRepo) TouchUpdatedAt(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return matchup_errors.ErrNotFound
	}
	c.UpdatedAt = at
	r.s.conversations[id] = c
	return nil
}

func (r *fakeConversationRepo) GetDirectBetween(_ context.Context, userID1, userID2 int64) (conversation.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.conversations {
		if c.ConversationType != conversation.TypeDirect {
			continue
		}
		var has1, has2 bool
		for _, p := range r.participantsOf(id) {
			if !p.IsActive {
				continue
			}
			if p.UserID == userID1 {
				has1 = true
			}
			if p.UserID == userID2 {
				has2 = true
			}
		}
		if has1 && has2 {
			c.Participants = r.participantsOf(id)
			return c, nil
		}
	}
	return conversation.Conversation{}, matchup_errors.ErrNotFound
}

func (r *fakeConversationRepo) GetUserConversations(_ context.Context, userID int64, limit int) ([]conversation.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []conversation.Conversation
	for id, c := range r.s.conversations {
		for _, p := range r.participantsOf(id) {
			if p.UserID == userID && p.IsActive {
				c.Participants = r.participantsOf(id)
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConversationRepo) AddParticipant(_ context.Context, p *conversation.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.ConversationID == p.ConversationID && existing.UserID == p.UserID {
			return matchup_errors.ErrAlreadyExists
		}
	}
	p.ID = r.s.id()
	r.s.participants[p.ID] = *p
	return nil
}

func (r *fakeConversationRepo) GetParticipant(_ context.Context, conversationID, userID int64) (conversation.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.ConversationID == conversationID && p.UserID == userID {
			return p, nil
		}
	}
	return conversation.Participant{}, matchup_errors.ErrNotFound
}

func (r *fakeConversationRepo) UpdateParticipant(_ context.Context, p conversation.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.ID]; !ok {
		return matchup_errors.ErrNotFound
	}
	r.s.participants[p.ID] = p
	return nil
}

func (r *fakeConversationRepo) GetActiveParticipants(_ context.Context, conversationID int64) ([]conversation.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []conversation.Participant
	for _, p := range r.participantsOf(conversationID) {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) ActiveParticipantCount(_ context.Context, conversationID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, p := range r.s.participants {
		if p.ConversationID == conversationID && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeConversationRepo) IsActiveParticipant(_ context.Context, conversationID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.ConversationID == conversationID && p.UserID == userID && p.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConversationRepo) AdvanceLastRead(_ context.Context, conversationID, userID int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.participants {
		if p.ConversationID != conversationID || p.UserID != userID || !p.IsActive {
			continue
		}
		if p.LastReadAt.Valid && !p.LastReadAt.Time.Before(at) {
			return false, nil
		}
		p.LastReadAt = sql.NullTime{Time: at, Valid: true}
		r.s.participants[id] = p
		return true, nil
	}
	return false, nil
}

// --- message repository ---

type fakeMessageRepo struct{ s *fakeStore }

func (r *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.s.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id int64) (message.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return message.Message{}, matchup_errors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) Update(_ context.Context, m message.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[m.ID]; !ok {
		return matchup_errors.ErrNotFound
	}
	r.s.messages[m.ID] = m
	return nil
}

func (r *fakeMessageRepo) ListBefore(_ context.Context, conversationID int64, before *message.Message, limit int) ([]message.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []message.Message
	for _, m := range r.s.messages {
		if !m.ConversationID.Valid || m.ConversationID.Int64 != conversationID {
			continue
		}
		if before != nil {
			older := m.CreatedAt.Before(before.CreatedAt)
			tie := m.CreatedAt.Equal(before.CreatedAt) && m.ID > before.ID
			if !older && !tie {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) LatestInConversation(_ context.Context, conversationID int64) (message.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *message.Message
	for _, m := range r.s.messages {
		if !m.ConversationID.Valid || m.ConversationID.Int64 != conversationID {
			continue
		}
		m := m
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) ||
			(m.CreatedAt.Equal(latest.CreatedAt) && m.ID > latest.ID) {
			latest = &m
		}
	}
	if latest == nil {
		return message.Message{}, matchup_errors.ErrNotFound
	}
	return *latest, nil
}

func (r *fakeMessageRepo) UnreadCount(_ context.Context, conversationID, userID int64, since sql.NullTime) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, m := range r.s.messages {
		if !m.ConversationID.Valid || m.ConversationID.Int64 != conversationID {
			continue
		}
		if m.SenderID == userID {
			continue
		}
		if since.Valid && !m.CreatedAt.After(since.Time) {
			continue
		}
		count++
	}
	return count, nil
}

// --- read status repository ---

type fakeReadStatusRepo struct{ s *fakeStore }

func (r *fakeReadStatusRepo) Create(_ context.Context, rs *message.ReadStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.readStatus {
		if existing.MessageID == rs.MessageID && existing.UserID == rs.UserID {
			return matchup_errors.ErrAlreadyExists
		}
	}
	rs.ID = r.s.id()
	r.s.readStatus[rs.ID] = *rs
	return nil
}

func (r *fakeReadStatusRepo) Get(_ context.Context, messageID, userID int64) (message.ReadStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rs := range r.s.readStatus {
		if rs.MessageID == messageID && rs.UserID == userID {
			return rs, nil
		}
	}
	return message.ReadStatus{}, matchup_errors.ErrNotFound
}

func (r *fakeReadStatusRepo) CountForMessage(_ context.Context, messageID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, rs := range r.s.readStatus {
		if rs.MessageID == messageID {
			count++
		}
	}
	return count, nil
}

// --- reaction repository ---

type fakeReactionRepo struct{ s *fakeStore }

func (r *fakeReactionRepo) Create(_ context.Context, reaction *message.Reaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reactions {
		if existing.MessageID == reaction.MessageID && existing.UserID == reaction.UserID &&
			existing.ReactionType == reaction.ReactionType {
			return matchup_errors.ErrAlreadyExists
		}
	}
	reaction.ID = r.s.id()
	r.s.reactions[reaction.ID] = *reaction
	return nil
}

func (r *fakeReactionRepo) Delete(_ context.Context, messageID, userID int64, reactionType string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.reactions {
		if existing.MessageID == messageID && existing.UserID == userID &&
			existing.ReactionType == reactionType {
			delete(r.s.reactions, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReactionRepo) ListForMessage(_ context.Context, messageID int64) ([]message.Reaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []message.Reaction
	for _, reaction := range r.s.reactions {
		if reaction.MessageID == messageID {
			out = append(out, reaction)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- collaborators ---

type fakeBus struct {
	mu        sync.Mutex
	published []events.Envelope
}

func (b *fakeBus) Publish(_ context.Context, env events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, env)
	return nil
}

func (b *fakeBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, env := range b.published {
		out = append(out, env.Type)
	}
	return out
}

type fakeLimiter struct {
	allowed bool
}

func (l *fakeLimiter) AllowMessage(_ context.Context, _ int64) (*redis.RateLimitResult, error) {
	return &redis.RateLimitResult{Allowed: l.allowed, Limit: 60}, nil
}

package services

import (
	"context"
	"testing"
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/user"
	matchup_errors "matchup-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationEnv() (*fakeStore, *ConversationService) {
	s := newFakeStore()
	return s, NewConversationService(nil, s.repos())
}

func seedDirect(t *testing.T, svc *ConversationService, a, b user.User) conversation.Conversation {
	t.Helper()
	conv, err := svc.Create(context.Background(), conversation.TypeDirect, "", []int64{a.ID, b.ID})
	require.NoError(t, err)
	return conv
}

func TestCreateDirectConversation(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")

	conv, err := svc.Create(ctx, conversation.TypeDirect, "ignored", []int64{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, conversation.TypeDirect, conv.ConversationType)
	assert.False(t, conv.Title.Valid, "direct conversations carry no title")

	stored, err := svc.Get(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ActiveParticipants(), 2)
}

func TestCreateDirectConversationRequiresTwoParticipants(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	carol := s.addUser("Carol", "carol@example.com")

	_, err := svc.Create(ctx, conversation.TypeDirect, "", []int64{alice.ID})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)

	_, err = svc.Create(ctx, conversation.TypeDirect, "", []int64{alice.ID, bob.ID, carol.ID})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)

	// Duplicated ids collapse to one participant.
	_, err = svc.Create(ctx, conversation.TypeDirect, "", []int64{alice.ID, alice.ID})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)
}

func TestCreateGroupConversationRequiresTitle(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")

	_, err := svc.Create(ctx, conversation.TypeGroup, "   ", []int64{alice.ID, bob.ID})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)

	conv, err := svc.Create(ctx, conversation.TypeGroup, "Saturday doubles", []int64{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.True(t, conv.Title.Valid)
	assert.Equal(t, "Saturday doubles", conv.Title.String)
}

func TestCreateConversationRejectsUnknownType(t *testing.T) {
	s, svc := newConversationEnv()
	alice := s.addUser("Alice", "alice@example.com")

	_, err := svc.Create(context.Background(), "broadcast", "", []int64{alice.ID})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)
}

func TestGetOrCreateDirectReusesExisting(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")

	first, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	second, err := svc.GetOrCreateDirect(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateDirectRejectsSelf(t *testing.T) {
	s, svc := newConversationEnv()
	alice := s.addUser("Alice", "alice@example.com")

	_, err := svc.GetOrCreateDirect(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)
}

func TestGetRequiresActiveMembership(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	eve := s.addUser("Eve", "eve@example.com")
	conv := seedDirect(t, svc, alice, bob)

	_, err := svc.Get(ctx, conv.ID, eve.ID)
	assert.ErrorIs(t, err, matchup_errors.ErrForbidden)
}

func TestDirectConversationCapsAtTwoActiveParticipants(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	carol := s.addUser("Carol", "carol@example.com")
	conv := seedDirect(t, svc, alice, bob)

	err := svc.AddParticipant(ctx, alice.ID, conv.ID, carol.ID, conversation.RoleParticipant)
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)
}

func TestAddParticipant(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	carol := s.addUser("Carol", "carol@example.com")
	eve := s.addUser("Eve", "eve@example.com")

	conv, err := svc.Create(ctx, conversation.TypeGroup, "Club chat", []int64{alice.ID, bob.ID})
	require.NoError(t, err)

	// Only active participants may invite.
	err = svc.AddParticipant(ctx, eve.ID, conv.ID, carol.ID, conversation.RoleParticipant)
	assert.ErrorIs(t, err, matchup_errors.ErrForbidden)

	require.NoError(t, svc.AddParticipant(ctx, alice.ID, conv.ID, carol.ID, conversation.RoleParticipant))

	// Adding an already active member is a conflict.
	err = svc.AddParticipant(ctx, alice.ID, conv.ID, carol.ID, conversation.RoleParticipant)
	assert.ErrorIs(t, err, matchup_errors.ErrConflict)

	err = svc.AddParticipant(ctx, alice.ID, conv.ID, carol.ID, "owner")
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)
}

func TestRejoinResetsMembership(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")

	conv, err := svc.Create(ctx, conversation.TypeGroup, "Club chat", []int64{alice.ID, bob.ID})
	require.NoError(t, err)

	require.NoError(t, svc.TouchLastRead(ctx, conv.ID, bob.ID, time.Now()))
	before, err := s.repos().Conversations.GetParticipant(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, before.LastReadAt.Valid)

	require.NoError(t, svc.RemoveParticipant(ctx, bob.ID, conv.ID, bob.ID))
	require.NoError(t, svc.AddParticipant(ctx, alice.ID, conv.ID, bob.ID, conversation.RoleParticipant))

	after, err := s.repos().Conversations.GetParticipant(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, after.IsActive)
	assert.False(t, after.LastReadAt.Valid, "rejoining clears the read position")
	assert.True(t, after.JoinedAt.After(before.JoinedAt) || after.JoinedAt.Equal(before.JoinedAt))
}

func TestRemoveParticipant(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	carol := s.addUser("Carol", "carol@example.com")

	conv, err := svc.Create(ctx, conversation.TypeGroup, "Club chat", []int64{alice.ID, bob.ID, carol.ID})
	require.NoError(t, err)

	// A plain participant cannot remove someone else.
	err = svc.RemoveParticipant(ctx, bob.ID, conv.ID, carol.ID)
	assert.ErrorIs(t, err, matchup_errors.ErrForbidden)

	// Leaving on your own is always allowed, and repeats are no-ops.
	require.NoError(t, svc.RemoveParticipant(ctx, carol.ID, conv.ID, carol.ID))
	require.NoError(t, svc.RemoveParticipant(ctx, carol.ID, conv.ID, carol.ID))

	p, err := s.repos().Conversations.GetParticipant(ctx, conv.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	// An admin can remove others.
	admin, err := s.repos().Conversations.GetParticipant(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	admin.Role = conversation.RoleAdmin
	require.NoError(t, s.repos().Conversations.UpdateParticipant(ctx, admin))

	require.NoError(t, svc.RemoveParticipant(ctx, alice.ID, conv.ID, bob.ID))
}

func TestTouchLastReadIsMonotonic(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, svc, alice, bob)

	ts := time.Now()
	require.NoError(t, svc.TouchLastRead(ctx, conv.ID, alice.ID, ts))

	// An older timestamp never moves the position backwards.
	require.NoError(t, svc.TouchLastRead(ctx, conv.ID, alice.ID, ts.Add(-time.Hour)))

	p, err := s.repos().Conversations.GetParticipant(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, p.LastReadAt.Valid)
	assert.True(t, p.LastReadAt.Time.Equal(ts))
}

func TestListReturnsSummaries(t *testing.T) {
	s, svc := newConversationEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, svc, alice, bob)

	msgSvc := NewMessageService(nil, s.repos(), testChatConfig(), nil, nil, nil, nil)
	posted, err := msgSvc.Post(ctx, conv.ID, alice.ID, "court 4 at 6pm?", nil, nil)
	require.NoError(t, err)

	summaries, err := svc.List(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, conv.ID, summaries[0].Conversation.ID)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, posted.ID, summaries[0].LastMessage.ID)

	// The sender's own message does not count as unread for them.
	summaries, err = svc.List(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
}

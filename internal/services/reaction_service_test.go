package services

import (
	"context"
	"testing"

	matchup_errors "matchup-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReactionEnv() (*fakeStore, *ConversationService, *MessageService, *ReactionService) {
	s := newFakeStore()
	convSvc := NewConversationService(nil, s.repos())
	msgSvc := NewMessageService(nil, s.repos(), testChatConfig(), nil, nil, nil, nil)
	reactSvc := NewReactionService(nil, s.repos(), nil)
	return s, convSvc, msgSvc, reactSvc
}

func TestToggleReactionRoundTrip(t *testing.T) {
	s, convSvc, msgSvc, reactSvc := newReactionEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "ace!", nil, nil)
	require.NoError(t, err)

	outcome, err := reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, outcome)

	reactions, err := reactSvc.List(ctx, msg.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "thumbsup", reactions[0].ReactionType)

	// Toggling twice returns to the original state.
	outcome, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, outcome)

	reactions, err = reactSvc.List(ctx, msg.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, reactions)
}

func TestToggleDistinctTypesCoexist(t *testing.T) {
	s, convSvc, msgSvc, reactSvc := newReactionEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "match point", nil, nil)
	require.NoError(t, err)

	_, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	require.NoError(t, err)
	_, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "fire")
	require.NoError(t, err)
	_, err = reactSvc.Toggle(ctx, msg.ID, alice.ID, "thumbsup")
	require.NoError(t, err)

	reactions, err := reactSvc.List(ctx, msg.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, reactions, 3)
}

func TestToggleReactionValidation(t *testing.T) {
	s, convSvc, msgSvc, reactSvc := newReactionEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	eve := s.addUser("Eve", "eve@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "nice shot", nil, nil)
	require.NoError(t, err)

	_, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidInput)

	_, err = reactSvc.Toggle(ctx, msg.ID, eve.ID, "thumbsup")
	assert.ErrorIs(t, err, matchup_errors.ErrForbidden)
}

func TestToggleOnDeletedMessage(t *testing.T) {
	s, convSvc, msgSvc, reactSvc := newReactionEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "oops", nil, nil)
	require.NoError(t, err)
	require.NoError(t, msgSvc.Delete(ctx, msg.ID, alice.ID))

	_, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidState)
}

func TestSoftDeletePreservesReactions(t *testing.T) {
	s, convSvc, msgSvc, reactSvc := newReactionEnv()
	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "great rally", nil, nil)
	require.NoError(t, err)

	_, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "fire")
	require.NoError(t, err)
	require.NoError(t, msgSvc.Delete(ctx, msg.ID, alice.ID))

	reactions, err := reactSvc.List(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, reactions, 1, "reactions survive soft deletion")
}

// racingReactionRepo simulates a concurrent toggle that inserts the same
// reaction between this transaction's delete and insert.
type racingReactionRepo struct {
	*fakeReactionRepo
}

func (r *racingReactionRepo) Delete(_ context.Context, _, _ int64, _ string) (bool, error) {
	return false, nil
}

func TestToggleDuplicateInsertRaceResolvesAsAdded(t *testing.T) {
	s := newFakeStore()
	convSvc := NewConversationService(nil, s.repos())
	msgSvc := NewMessageService(nil, s.repos(), testChatConfig(), nil, nil, nil, nil)

	repos := s.repos()
	repos.Reactions = &racingReactionRepo{&fakeReactionRepo{s}}
	reactSvc := NewReactionService(nil, repos, nil)

	ctx := context.Background()
	alice := s.addUser("Alice", "alice@example.com")
	bob := s.addUser("Bob", "bob@example.com")
	conv := seedDirect(t, convSvc, alice, bob)

	msg, err := msgSvc.Post(ctx, conv.ID, alice.ID, "hi", nil, nil)
	require.NoError(t, err)

	outcome, err := reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, outcome)

	// The second call's delete also misses and the insert hits the
	// unique constraint. The caller still sees the reaction as added.
	outcome, err = reactSvc.Toggle(ctx, msg.ID, bob.ID, "thumbsup")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, outcome)
}

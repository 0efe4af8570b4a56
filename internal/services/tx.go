package services

import (
	"context"

	"matchup-chat/internal/repository"

	"gorm.io/gorm"
)

// Repos bundles the repositories a service operates on. Inside a
// transaction every repo is rebuilt against the tx handle so all reads
// and writes of one operation share the same transaction.
type Repos struct {
	Users         repository.UserRepository
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	ReadStatus    repository.ReadStatusRepository
	Reactions     repository.ReactionRepository
}

// NewRepos builds the full repository set from one gorm handle.
func NewRepos(db *gorm.DB) Repos {
	return Repos{
		Users:         repository.NewUserRepository(db),
		Conversations: repository.NewConversationRepository(db),
		Messages:      repository.NewMessageRepository(db),
		ReadStatus:    repository.NewReadStatusRepository(db),
		Reactions:     repository.NewReactionRepository(db),
	}
}

// runInTx executes fn in a database transaction. With a nil db (tests
// against in-memory repositories) fn runs directly on the fallback set.
func runInTx(ctx context.Context, db *gorm.DB, fallback Repos, fn func(r Repos) error) error {
	if db == nil {
		return fn(fallback)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

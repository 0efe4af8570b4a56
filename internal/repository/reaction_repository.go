package repository

import (
	"context"
	"errors"

	"matchup-chat/internal/domain/message"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) Create(ctx context.Context, reaction *message.Reaction) error {
	res := r.db.WithContext(ctx).Create(reaction)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return matchup_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresReactionRepository) Delete(ctx context.Context, messageID, userID int64, reactionType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Delete(&message.Reaction{}, "message_id = ? AND user_id = ? AND reaction_type = ?",
			messageID, userID, reactionType)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresReactionRepository) ListForMessage(ctx context.Context, messageID int64) ([]message.Reaction, error) {
	var reactions []message.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

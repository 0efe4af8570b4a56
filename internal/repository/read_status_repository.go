package repository

import (
	"context"
	"errors"

	"matchup-chat/internal/domain/message"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresReadStatusRepository struct {
	db *gorm.DB
}

func NewReadStatusRepository(db *gorm.DB) ReadStatusRepository {
	return &PostgresReadStatusRepository{db: db}
}

func (r *PostgresReadStatusRepository) Create(ctx context.Context, rs *message.ReadStatus) error {
	res := r.db.WithContext(ctx).Create(rs)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return matchup_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresReadStatusRepository) Get(ctx context.Context, messageID, userID int64) (message.ReadStatus, error) {
	var rs message.ReadStatus
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		First(&rs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.ReadStatus{}, matchup_errors.ErrNotFound
		}
		return message.ReadStatus{}, err
	}
	return rs, nil
}

func (r *PostgresReadStatusRepository) CountForMessage(ctx context.Context, messageID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&message.ReadStatus{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

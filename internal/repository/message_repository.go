package repository

import (
	"context"
	"database/sql"
	"errors"

	"matchup-chat/internal/domain/message"
	matchup_errors "matchup-chat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return matchup_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id int64) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, matchup_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) Update(ctx context.Context, m message.Message) error {
	res := r.db.WithContext(ctx).Save(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return matchup_errors.ErrNotFound
	}
	return nil
}

// ListBefore orders newest-first with ids ascending inside a timestamp tie.
// The keyset predicate continues exactly where the cursor message left off.
func (r *PostgresMessageRepository) ListBefore(ctx context.Context, conversationID int64, before *message.Message, limit int) ([]message.Message, error) {
	var messages []message.Message
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)

	if before != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id > ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}

	err := q.Order("created_at DESC, id ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) LatestInConversation(ctx context.Context, conversationID int64) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, matchup_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) UnreadCount(ctx context.Context, conversationID, userID int64, since sql.NullTime) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("conversation_id = ? AND sender_id != ?", conversationID, userID)

	if since.Valid {
		q = q.Where("created_at > ?", since.Time)
	}

	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

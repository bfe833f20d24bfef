package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stitchlink/internal/domain/chat"
	stitch_errors "stitchlink/pkg/errors"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return stitch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) ListSince(ctx context.Context, conversationID uuid.UUID, after time.Time, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND created_at > ?", conversationID, after).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) ListBefore(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND created_at < ?", conversationID, before).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

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

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *chat.Conversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return stitch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, stitch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByThreadKey(ctx context.Context, key string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("thread_key = ?", key).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, stitch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByOrderID(ctx context.Context, orderID uint) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, stitch_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) Update(ctx context.Context, c chat.Conversation) error {
	res := r.db.WithContext(ctx).Save(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stitch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) Lock(ctx context.Context, id uuid.UUID, reviewID uint, preview string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"locked":            true,
			"review_id":         reviewID,
			"last_message_text": preview,
			"last_message_at":   at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stitch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) RecordMessage(ctx context.Context, id uuid.UUID, recipient chat.Role, preview string, at time.Time) error {
	updates := map[string]interface{}{
		"last_message_text": preview,
		"last_message_at":   at,
		"updated_at":        at,
	}
	switch recipient {
	case chat.RoleCustomer:
		updates["unread_customer"] = gorm.Expr("unread_customer + 1")
	case chat.RoleTailor:
		updates["unread_tailor"] = gorm.Expr("unread_tailor + 1")
	default:
		return stitch_errors.ErrInvalidInput
	}

	res := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stitch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) MarkRead(ctx context.Context, id uuid.UUID, reader chat.Role, at time.Time) error {
	var updates map[string]interface{}
	switch reader {
	case chat.RoleCustomer:
		updates = map[string]interface{}{
			"unread_customer":       0,
			"customer_last_read_at": at,
		}
	case chat.RoleTailor:
		updates = map[string]interface{}{
			"unread_tailor":       0,
			"tailor_last_read_at": at,
		}
	default:
		return stitch_errors.ErrInvalidInput
	}

	res := r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stitch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID uint, role chat.Role, page, limit int) ([]chat.Conversation, int64, error) {
	var conversations []chat.Conversation
	var total int64

	q := r.db.WithContext(ctx).Model(&chat.Conversation{})
	switch role {
	case chat.RoleCustomer:
		q = q.Where("customer_id = ?", userID)
	case chat.RoleTailor:
		q = q.Where("tailor_id = ?", userID)
	default:
		return nil, 0, stitch_errors.ErrInvalidInput
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	if err := q.
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

func (r *PostgresConversationRepository) FindReviewedUnlocked(ctx context.Context, limit int) ([]chat.Conversation, error) {
	var conversations []chat.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = conversations.order_id").
		Where("orders.review_id IS NOT NULL AND conversations.locked = ?", false).
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	stitch_errors "stitchlink/pkg/errors"
)

type PostgresOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		seed := order.Event{
			OrderID: o.ID,
			Status:  o.Status,
			Note:    "order requested",
		}
		if err := tx.Create(&seed).Error; err != nil {
			return err
		}
		o.History = append(o.History, seed)
		return nil
	})
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_events.id ASC")
		}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Order{}, stitch_errors.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) Update(ctx context.Context, o order.Order, event order.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("History").Save(&o)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return stitch_errors.ErrNotFound
		}
		event.OrderID = o.ID
		return tx.Create(&event).Error
	})
}

func (r *PostgresOrderRepository) SetReviewID(ctx context.Context, orderID, reviewID uint) error {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", orderID).
		Update("review_id", reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stitch_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) ListEvents(ctx context.Context, orderID uint) ([]order.Event, error) {
	var events []order.Event
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresOrderRepository) ListForUser(ctx context.Context, userID uint, role chat.Role, page, limit int) ([]order.Order, int64, error) {
	var orders []order.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&order.Order{})
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
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

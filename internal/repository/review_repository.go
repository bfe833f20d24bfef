package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stitchlink/internal/domain/review"
	stitch_errors "stitchlink/pkg/errors"
)

type PostgresReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &PostgresReviewRepository{db: db}
}

func (r *PostgresReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	res := r.db.WithContext(ctx).Create(rev)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return stitch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresReviewRepository) GetByID(ctx context.Context, id uint) (review.Review, error) {
	var rev review.Review
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review.Review{}, stitch_errors.ErrNotFound
		}
		return review.Review{}, err
	}
	return rev, nil
}

func (r *PostgresReviewRepository) GetByOrderID(ctx context.Context, orderID uint) (review.Review, error) {
	var rev review.Review
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review.Review{}, stitch_errors.ErrNotFound
		}
		return review.Review{}, err
	}
	return rev, nil
}

func (r *PostgresReviewRepository) ListForTailor(ctx context.Context, tailorID uint, page, limit int) ([]review.Review, int64, error) {
	var reviews []review.Review
	var total int64

	q := r.db.WithContext(ctx).Model(&review.Review{}).Where("tailor_id = ?", tailorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	if err := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

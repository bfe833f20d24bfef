package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stitchlink/internal/domain/tailor"
	stitch_errors "stitchlink/pkg/errors"
)

type PostgresTailorRepository struct {
	db *gorm.DB
}

func NewTailorRepository(db *gorm.DB) TailorRepository {
	return &PostgresTailorRepository{db: db}
}

func (r *PostgresTailorRepository) Create(ctx context.Context, t *tailor.Tailor) error {
	res := r.db.WithContext(ctx).Create(t)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return stitch_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresTailorRepository) GetByID(ctx context.Context, id uint) (tailor.Tailor, error) {
	var t tailor.Tailor
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tailor.Tailor{}, stitch_errors.ErrNotFound
		}
		return tailor.Tailor{}, err
	}
	return t, nil
}

func (r *PostgresTailorRepository) GetByUserID(ctx context.Context, userID uint) (tailor.Tailor, error) {
	var t tailor.Tailor
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tailor.Tailor{}, stitch_errors.ErrNotFound
		}
		return tailor.Tailor{}, err
	}
	return t, nil
}

package services

import (
	"context"

	"stitchlink/internal/domain/tailor"
	redisx "stitchlink/internal/redis"
	"stitchlink/internal/repository"
)

// Directory resolves tailor ids and display snapshots. The profile CRUD that
// populates it lives outside the engine.
type Directory interface {
	Resolve(ctx context.Context, tailorID uint) (tailor.Tailor, error)
	ResolveByUserID(ctx context.Context, userID uint) (tailor.Tailor, error)
}

// TailorDirectory backs Directory with the tailors table and an optional
// read-through snapshot cache. A nil cache just means direct reads.
type TailorDirectory struct {
	repo  repository.TailorRepository
	cache *redisx.SnapshotCache
}

func NewTailorDirectory(repo repository.TailorRepository, cache *redisx.SnapshotCache) *TailorDirectory {
	return &TailorDirectory{repo: repo, cache: cache}
}

func (d *TailorDirectory) Resolve(ctx context.Context, tailorID uint) (tailor.Tailor, error) {
	if d.cache != nil {
		if cached, err := d.cache.GetTailor(ctx, tailorID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	t, err := d.repo.GetByID(ctx, tailorID)
	if err != nil {
		return tailor.Tailor{}, err
	}

	if d.cache != nil {
		_ = d.cache.SetTailor(ctx, &t)
	}
	return t, nil
}

func (d *TailorDirectory) ResolveByUserID(ctx context.Context, userID uint) (tailor.Tailor, error) {
	// The user-to-tailor mapping changes even less often than the profile,
	// but keeping a second key per user is not worth the invalidation, so
	// this path always hits the table.
	return d.repo.GetByUserID(ctx, userID)
}

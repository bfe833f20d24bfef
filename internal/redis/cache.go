package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"stitchlink/internal/domain/tailor"
)

// Cache key patterns:
// - tailor:{tailor_id} - display snapshot, short TTL

// CacheConfig contains configuration for caching
type CacheConfig struct {
	TailorTTL time.Duration // TTL for tailor snapshot cache (default 5m)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TailorTTL: 5 * time.Minute,
	}
}

// SnapshotCache keeps tailor display snapshots in Redis so conversation
// ensure and list reads stay join-free. Stale entries only delay a snapshot
// backfill until the next repair pass, so a short TTL is enough.
type SnapshotCache struct {
	client *goredis.Client
	config CacheConfig
}

func NewSnapshotCache(client *goredis.Client, config CacheConfig) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		config: config,
	}
}

// GetTailor retrieves a tailor snapshot from cache. A nil result with nil
// error is a cache miss.
func (c *SnapshotCache) GetTailor(ctx context.Context, tailorID uint) (*tailor.Tailor, error) {
	key := fmt.Sprintf("tailor:%d", tailorID)
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t tailor.Tailor
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetTailor stores a tailor snapshot in cache
func (c *SnapshotCache) SetTailor(ctx context.Context, t *tailor.Tailor) error {
	key := fmt.Sprintf("tailor:%d", t.ID)
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.config.TailorTTL).Err()
}

// InvalidateTailor removes a tailor snapshot from cache
func (c *SnapshotCache) InvalidateTailor(ctx context.Context, tailorID uint) error {
	key := fmt.Sprintf("tailor:%d", tailorID)
	return c.client.Del(ctx, key).Err()
}

// Ping checks if Redis is available
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// LatestRosterKey is the cache key holding the most recent roster.
const LatestRosterKey = "roster:latest"

// CacheRepository keeps the latest roster in Redis so restarts can serve
// data before the sources are read again.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository. A nil client turns every
// call into a no-op miss.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// GetRoster returns the cached roster or appErrors.ErrCacheMiss.
func (r *CacheRepository) GetRoster(ctx context.Context) (*models.Roster, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, LatestRosterKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", LatestRosterKey, err)
	}

	var roster models.Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		r.logger.Warn("discarding unreadable cached roster", zap.Error(err))
		return nil, appErrors.ErrCacheMiss
	}
	return &roster, nil
}

// SetRoster stores roster with the given TTL.
func (r *CacheRepository) SetRoster(ctx context.Context, roster *models.Roster, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("marshal roster for cache: %w", err)
	}

	if err := r.client.Set(ctx, LatestRosterKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", LatestRosterKey, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hourbank/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	BalanceCacheTTL    = 30 * time.Second // Balances move on every transfer
	AdminStatsCacheTTL = 60 * time.Second
)

// Key prefixes
const (
	balanceCachePrefix = "cache:balance:"
	adminStatsKey      = "cache:admin:stats"
)

// CachedBalance represents a cached bank-hour balance.
type CachedBalance struct {
	UserID    string  `json:"user_id"`
	BankHours float64 `json:"bank_hours"`
}

// GetBalance retrieves a user's balance from cache.
func (s *CacheStore) GetBalance(ctx context.Context, userID string) (*CachedBalance, error) {
	data, err := s.client.Get(ctx, balanceCachePrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var balance CachedBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// SetBalance stores a user's balance in cache.
func (s *CacheStore) SetBalance(ctx context.Context, balance *CachedBalance) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, balanceCachePrefix+balance.UserID, data, BalanceCacheTTL).Err()
}

// InvalidateBalances removes the cached balances of the given users.
func (s *CacheStore) InvalidateBalances(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = balanceCachePrefix + id
	}
	return s.client.Del(ctx, keys...).Err()
}

// GetAdminStats retrieves the cached platform statistics.
func (s *CacheStore) GetAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	data, err := s.client.Get(ctx, adminStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.AdminStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetAdminStats stores platform statistics in cache.
func (s *CacheStore) SetAdminStats(ctx context.Context, stats *domain.AdminStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, adminStatsKey, data, AdminStatsCacheTTL).Err()
}

// InvalidateAdminStats drops the cached platform statistics.
func (s *CacheStore) InvalidateAdminStats(ctx context.Context) error {
	return s.client.Del(ctx, adminStatsKey).Err()
}

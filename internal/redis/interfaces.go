package redis

import (
	"context"
	"time"

	"hourbank/internal/domain"
)

// CacheStoreInterface defines the cache operations used by services.
type CacheStoreInterface interface {
	GetBalance(ctx context.Context, userID string) (*CachedBalance, error)
	SetBalance(ctx context.Context, balance *CachedBalance) error
	InvalidateBalances(ctx context.Context, userIDs ...string) error
	GetAdminStats(ctx context.Context) (*domain.AdminStats, error)
	SetAdminStats(ctx context.Context, stats *domain.AdminStats) error
	InvalidateAdminStats(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireUserLock(ctx context.Context, userID string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseUserLock(ctx context.Context, userID, token string) error
	AcquireSlotLock(ctx context.Context, serviceID, date string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSlotLock(ctx context.Context, serviceID, date, token string) error
}

// IdempotencyStoreInterface defines storage for replayable responses.
type IdempotencyStoreInterface interface {
	Get(ctx context.Context, userID, key string) (*StoredResponse, error)
	Save(ctx context.Context, userID, key string, resp *StoredResponse) error
}

// Ensure concrete types implement interfaces.
var (
	_ CacheStoreInterface = (*CacheStore)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)

	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
)

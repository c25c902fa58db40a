package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client   *redis.Client
	newToken func() string
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{
		client:   client,
		newToken: func() string { return uuid.New().String() },
	}
}

func userLockKey(userID string) string {
	return fmt.Sprintf("lock:user:%s", userID)
}

func slotLockKey(serviceID, date string) string {
	return fmt.Sprintf("lock:slot:%s:%s", serviceID, date)
}

func (s *LockStore) acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := s.newToken()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (s *LockStore) release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
}

// AcquireUserLock attempts to acquire a lock on a user's balance.
// Returns the holder token, or false if the lock is already held.
func (s *LockStore) AcquireUserLock(ctx context.Context, userID string, ttl time.Duration) (string, bool, error) {
	return s.acquire(ctx, userLockKey(userID), ttl)
}

// ReleaseUserLock releases the lock on a user's balance if token still holds it.
func (s *LockStore) ReleaseUserLock(ctx context.Context, userID, token string) error {
	return s.release(ctx, userLockKey(userID), token)
}

// AcquireSlotLock locks the booking calendar of a service for one date.
func (s *LockStore) AcquireSlotLock(ctx context.Context, serviceID, date string, ttl time.Duration) (string, bool, error) {
	return s.acquire(ctx, slotLockKey(serviceID, date), ttl)
}

// ReleaseSlotLock releases a service+date booking lock if token still holds it.
func (s *LockStore) ReleaseSlotLock(ctx context.Context, serviceID, date, token string) error {
	return s.release(ctx, slotLockKey(serviceID, date), token)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyTTL is how long a replayable response is kept.
const IdempotencyTTL = 24 * time.Hour

const idempotencyPrefix = "idempotency:"

// StoredResponse is a response recorded under an Idempotency-Key.
type StoredResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// IdempotencyStore keeps responses to mutating requests so retries replay them.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: IdempotencyTTL}
}

// IdempotencyKey namespaces a client key by caller so two users cannot collide.
func IdempotencyKey(userID, key string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return idempotencyPrefix + userID + ":" + key
}

// Get returns the stored response, or nil when there is none.
func (s *IdempotencyStore) Get(ctx context.Context, userID, key string) (*StoredResponse, error) {
	data, err := s.client.Get(ctx, IdempotencyKey(userID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp StoredResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Save records a response for later replay.
func (s *IdempotencyStore) Save(ctx context.Context, userID, key string, resp *StoredResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, IdempotencyKey(userID, key), data, s.ttl).Err()
}

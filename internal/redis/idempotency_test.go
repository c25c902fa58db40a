package redis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "idempotency:u1:k", IdempotencyKey("u1", "k"))
	assert.NotEqual(t, IdempotencyKey("u1", "k"), IdempotencyKey("u2", "k"))
	assert.Equal(t, "idempotency:anonymous:k", IdempotencyKey("", "k"))
}

func TestIdempotencyStore_SaveAndGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ctx := context.Background()

	resp := &StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       json.RawMessage(`{"id":"b1"}`),
		Headers:    http.Header{"Content-Type": {"application/json"}},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	mock.ExpectSet("idempotency:u1:k1", data, IdempotencyTTL).SetVal("OK")
	mock.ExpectGet("idempotency:u1:k1").SetVal(string(data))

	store := NewIdempotencyStore(client)
	require.NoError(t, store.Save(ctx, "u1", "k1", resp))

	got, err := store.Get(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.Equal(t, resp, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("idempotency:u1:k1").RedisNil()

	got, err := NewIdempotencyStore(client).Get(context.Background(), "u1", "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("idempotency:u1:k1").SetErr(errors.New("connection refused"))

	got, err := NewIdempotencyStore(client).Get(context.Background(), "u1", "k1")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore_GetCorrupt(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("idempotency:u1:k1").SetVal("not-json")

	_, err := NewIdempotencyStore(client).Get(context.Background(), "u1", "k1")
	assert.Error(t, err)
}

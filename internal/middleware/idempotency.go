package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hourbank/internal/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "Idempotent-Replay"
)

// recordingWriter copies everything written to the client into body.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// Idempotency replays the stored response when a caller repeats a mutating
// request with the same Idempotency-Key. It must run after JWTAuth so keys
// are scoped per caller. Store failures degrade to normal processing.
func Idempotency(store redis.IdempotencyStoreInterface, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := UserID(c)
		entry := log.WithFields(logrus.Fields{"user_id": userID, "idempotency_key": key})

		stored, err := store.Get(ctx, userID, key)
		if err != nil {
			entry.WithError(err).Warn("idempotency lookup failed")
		}
		if stored != nil {
			c.Header(replayHeader, "true")
			c.Data(stored.StatusCode, stored.Headers.Get("Content-Type"), stored.Body)
			c.Abort()
			return
		}

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// server errors stay retryable
		status := w.Status()
		if status < http.StatusOK || status >= http.StatusInternalServerError {
			return
		}
		resp := &redis.StoredResponse{
			StatusCode: status,
			Body:       w.body.Bytes(),
			Headers:    http.Header{},
		}
		if ct := w.Header().Get("Content-Type"); ct != "" {
			resp.Headers.Set("Content-Type", ct)
		}
		if err := store.Save(ctx, userID, key, resp); err != nil {
			entry.WithError(err).Warn("idempotency store failed")
		}
	}
}

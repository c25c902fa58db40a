package logging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// Severity ranks an error entry.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category groups an error entry by the area it came from.
type Category string

const (
	CategoryUser        Category = "user"
	CategoryService     Category = "service"
	CategoryTransaction Category = "transaction"
	CategoryBooking     Category = "booking"
	CategoryAuth        Category = "auth"
	CategoryAPI         Category = "api"
	CategorySystem      Category = "system"
	CategoryAdmin       Category = "admin"
)

// Entry is one recorded error or notable event.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	Severity  Severity       `json:"severity"`
	Category  Category       `json:"category"`
	Operation string         `json:"operation,omitempty"`
	Component string         `json:"component,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// ErrorLogger writes entries to logrus, reports serious ones to New Relic and
// keeps the most recent entries in memory for the admin console.
type ErrorLogger struct {
	log   logrus.FieldLogger
	mu    sync.Mutex
	ring  []Entry
	next  int
	full  bool
	clock func() time.Time
}

// NewErrorLogger creates an ErrorLogger retaining up to limit entries.
func NewErrorLogger(log logrus.FieldLogger, limit int) *ErrorLogger {
	if limit <= 0 {
		limit = 50
	}
	return &ErrorLogger{
		log:   log,
		ring:  make([]Entry, limit),
		clock: time.Now,
	}
}

// Log records an entry. err may be nil for informational entries.
func (l *ErrorLogger) Log(ctx context.Context, err error, e Entry) Entry {
	e.ID = uuid.New().String()
	e.Timestamp = l.clock()
	if e.Message == "" && err != nil {
		e.Message = err.Error()
	}

	fields := logrus.Fields{
		"severity": e.Severity,
		"category": e.Category,
	}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	if e.Component != "" {
		fields["component"] = e.Component
	}
	if e.UserID != "" {
		fields["user_id"] = e.UserID
	}
	for k, v := range e.Fields {
		fields[k] = v
	}
	entry := l.log.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}

	switch e.Severity {
	case SeverityCritical, SeverityHigh:
		entry.Error(e.Message)
		if err == nil {
			err = errors.New(e.Message)
		}
		newrelic.FromContext(ctx).NoticeError(newrelic.Error{
			Message: err.Error(),
			Class:   fmt.Sprintf("%s/%s", e.Category, e.Severity),
			Attributes: map[string]any{
				"operation": e.Operation,
				"component": e.Component,
			},
		})
	case SeverityMedium:
		entry.Warn(e.Message)
	default:
		entry.Info(e.Message)
	}

	l.mu.Lock()
	l.ring[l.next] = e
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()

	return e
}

// Recent returns up to limit stored entries, newest first. limit <= 0 returns all.
func (l *ErrorLogger) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.ring)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (l.next - i + len(l.ring)) % len(l.ring)
		out = append(out, l.ring[idx])
	}
	return out
}

// Clear drops all stored entries.
func (l *ErrorLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = make([]Entry, len(l.ring))
	l.next = 0
	l.full = false
}

// UserNotFound records a lookup of a missing user.
func (l *ErrorLogger) UserNotFound(ctx context.Context, userID, operation, component string) {
	l.Log(ctx, fmt.Errorf("user not found: %s", userID), Entry{
		Severity:  SeverityHigh,
		Category:  CategoryUser,
		Operation: operation,
		Component: component,
		UserID:    userID,
	})
}

// ServiceError records a failure while handling a listed service.
func (l *ErrorLogger) ServiceError(ctx context.Context, serviceID, operation string, err error) {
	l.Log(ctx, err, Entry{
		Severity:  SeverityMedium,
		Category:  CategoryService,
		Operation: operation,
		Component: "ListingService",
		Fields:    map[string]any{"service_id": serviceID},
	})
}

// TransactionError records a failure while processing a transaction.
func (l *ErrorLogger) TransactionError(ctx context.Context, transactionID, operation string, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["transaction_id"] = transactionID
	l.Log(ctx, err, Entry{
		Severity:  SeverityHigh,
		Category:  CategoryTransaction,
		Operation: operation,
		Component: "LedgerService",
		Fields:    fields,
	})
}

// AuthError records an authentication failure.
func (l *ErrorLogger) AuthError(ctx context.Context, operation string, err error, userID string) {
	l.Log(ctx, err, Entry{
		Severity:  SeverityCritical,
		Category:  CategoryAuth,
		Operation: operation,
		Component: "UserService",
		UserID:    userID,
	})
}

// APIError records an unexpected failure surfaced by an HTTP endpoint.
func (l *ErrorLogger) APIError(ctx context.Context, method, path string, err error) {
	l.Log(ctx, err, Entry{
		Severity:  SeverityHigh,
		Category:  CategoryAPI,
		Operation: method + " " + path,
		Component: "handler",
	})
}

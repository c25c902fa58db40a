package repository

import (
	"context"

	"hourbank/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)

	// MarkRead marks a single notification read. The notification must belong to userID.
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead marks every notification of the user read and returns how many changed.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

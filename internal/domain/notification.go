package domain

import "time"

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationBookingRequested     NotificationType = "BOOKING_REQUESTED"
	NotificationBookingConfirmed     NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled     NotificationType = "BOOKING_CANCELLED"
	NotificationBookingCompleted     NotificationType = "BOOKING_COMPLETED"
	NotificationBookingUpdated       NotificationType = "BOOKING_UPDATED"
	NotificationTransactionRequested NotificationType = "TRANSACTION_REQUESTED"
	NotificationTransactionUpdated   NotificationType = "TRANSACTION_UPDATED"
	NotificationHoursReceived        NotificationType = "BANK_HOURS_RECEIVED"
	NotificationRatingReceived       NotificationType = "RATING_RECEIVED"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	RelatedID string
	CreatedAt time.Time
}

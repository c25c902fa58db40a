package domain

import "time"

// TransactionStatus represents the lifecycle state of a service exchange.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusInProgress TransactionStatus = "IN_PROGRESS"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

// Transaction records a service exchanged between a provider and a consumer.
type Transaction struct {
	ID          string
	ProviderID  string
	ConsumerID  string
	ServiceID   string
	BookingID   string
	HoursSpent  float64
	Status      TransactionStatus
	Description string
	Rating      int
	Feedback    string
	CreatedAt   time.Time
	CompletedAt time.Time
	UpdatedAt   time.Time
}

// CanTransition reports whether moving from the current status to next is allowed.
func (t *Transaction) CanTransition(next TransactionStatus) bool {
	switch t.Status {
	case TransactionStatusPending:
		return next == TransactionStatusInProgress || next == TransactionStatusCancelled
	case TransactionStatusInProgress:
		return next == TransactionStatusCompleted || next == TransactionStatusCancelled
	}
	return false
}

// Involves reports whether the user is either party of the transaction.
func (t *Transaction) Involves(userID string) bool {
	return t.ProviderID == userID || t.ConsumerID == userID
}

// TransferResult describes a completed bank-hour movement.
type TransferResult struct {
	TransactionID  string
	FromUserID     string
	ToUserID       string
	Hours          float64
	FromNewBalance float64
	ToNewBalance   float64
	TransferredAt  time.Time
}

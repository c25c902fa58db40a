package repository

import (
	"context"

	"hourbank/internal/domain"
)

// TransactionRepository defines the persistence operations for transactions.
type TransactionRepository interface {
	// Create persists a new transaction.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByID retrieves a transaction by ID.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// Update updates an existing transaction.
	Update(ctx context.Context, txn *domain.Transaction) error

	// ListByUser retrieves transactions where the user is either party.
	ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)

	// ListByProvider retrieves transactions the user provided.
	ListByProvider(ctx context.Context, providerID string) ([]*domain.Transaction, error)

	// List retrieves up to limit transactions, newest first.
	List(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

package repository

import (
	"context"

	"hourbank/internal/domain"
)

// RatingRepository defines the persistence operations for ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error

	// GetByTransaction returns nil if the transaction has not been rated.
	GetByTransaction(ctx context.Context, transactionID string) (*domain.Rating, error)

	ListByRatedUser(ctx context.Context, userID string) ([]*domain.Rating, error)
}

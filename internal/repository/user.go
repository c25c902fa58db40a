package repository

import (
	"context"

	"hourbank/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by e-mail (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List retrieves up to limit users, newest first.
	List(ctx context.Context, limit int) ([]*domain.User, error)

	// UpdateProfile updates the user-editable profile fields.
	UpdateProfile(ctx context.Context, user *domain.User) error

	// SetBankHours overwrites a user's balance.
	SetBankHours(ctx context.Context, id string, hours float64) error

	// AdjustBankHours adds delta to a balance and returns the new balance.
	// Returns ErrInsufficientBalance if the result would be negative.
	AdjustBankHours(ctx context.Context, id string, delta float64) (float64, error)

	// IncrementTransactions bumps the completed transaction counter.
	IncrementTransactions(ctx context.Context, id string) error

	// UpdateRating stores a recomputed average rating.
	UpdateRating(ctx context.Context, id string, rating float64) error

	// UpdateStatus sets the account status.
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
}

package repository

import (
	"context"

	"hourbank/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// Update writes the booking if its stored status is still from.
	// Returns ErrStaleStatus otherwise.
	Update(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error

	// ListActiveByServiceAndDate retrieves bookings that still hold a slot
	// for a service on a date.
	ListActiveByServiceAndDate(ctx context.Context, serviceID, date string) ([]*domain.Booking, error)

	// ListByUser retrieves a user's bookings in the given role between two
	// dates (inclusive). Empty bounds are open.
	ListByUser(ctx context.Context, userID string, role domain.BookingRole, from, to string) ([]*domain.Booking, error)
}

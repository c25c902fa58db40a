package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// BookingRepository implements repository.BookingRepository using PostgreSQL.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, service_id, provider_id, consumer_id, to_char(booking_date, 'YYYY-MM-DD'),
	start_time, end_time, duration, total_cost, status, notes, provider_notes, cancellation_reason,
	transaction_id, created_at, confirmed_at, cancelled_at, completed_at, updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, service_id, provider_id, consumer_id, booking_date, start_time, end_time,
			duration, total_cost, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		b.ID,
		b.ServiceID,
		b.ProviderID,
		b.ConsumerID,
		b.BookingDate,
		b.StartTime,
		b.EndTime,
		b.Duration,
		b.TotalCost,
		b.Status,
		b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return mapWriteError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update writes the mutable booking fields, guarded on the status the
// caller last saw.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, provider_notes = $2, cancellation_reason = $3, transaction_id = $4,
			confirmed_at = $5, cancelled_at = $6, completed_at = $7, updated_at = now()
		WHERE id = $8 AND status = $9
	`
	result, err := r.q.ExecContext(ctx, query,
		b.Status,
		b.ProviderNotes,
		b.CancellationReason,
		nullString(b.TransactionID),
		nullTime(b.ConfirmedAt),
		nullTime(b.CancelledAt),
		nullTime(b.CompletedAt),
		b.ID,
		from,
	)
	if err != nil {
		return err
	}
	if err := expectOneRow(result); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrStaleStatus
		}
		return err
	}
	return nil
}

// ListActiveByServiceAndDate retrieves non-cancelled bookings of a service on a date.
func (r *BookingRepository) ListActiveByServiceAndDate(ctx context.Context, serviceID, date string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE service_id = $1 AND booking_date = $2
			AND status NOT IN ('CANCELLED_BY_CONSUMER', 'CANCELLED_BY_PROVIDER')
		ORDER BY start_time
	`
	return r.list(ctx, query, serviceID, date)
}

// ListByUser retrieves a user's bookings in one role, ordered by date and time.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, role domain.BookingRole, from, to string) ([]*domain.Booking, error) {
	column := "consumer_id"
	if role == domain.BookingRoleProvider {
		column = "provider_id"
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s = $1`, bookingColumns, column)
	args := []any{userID}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND booking_date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND booking_date <= $%d", len(args))
	}
	query += " ORDER BY booking_date, start_time"

	return r.list(ctx, query, args...)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b             domain.Booking
		transactionID sql.NullString
		confirmedAt   sql.NullTime
		cancelledAt   sql.NullTime
		completedAt   sql.NullTime
	)
	err := row.Scan(
		&b.ID,
		&b.ServiceID,
		&b.ProviderID,
		&b.ConsumerID,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.Duration,
		&b.TotalCost,
		&b.Status,
		&b.Notes,
		&b.ProviderNotes,
		&b.CancellationReason,
		&transactionID,
		&b.CreatedAt,
		&confirmedAt,
		&cancelledAt,
		&completedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.TransactionID = transactionID.String
	if confirmedAt.Valid {
		b.ConfirmedAt = confirmedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = cancelledAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = completedAt.Time
	}
	return &b, nil
}

// Ensure BookingRepository implements repository.BookingRepository.
var _ repository.BookingRepository = (*BookingRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository using PostgreSQL.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a SQL transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

const transactionColumns = `id, provider_id, consumer_id, service_id, booking_id, hours_spent, status,
	description, rating, feedback, created_at, completed_at, updated_at`

// Create persists a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, provider_id, consumer_id, service_id, booking_id, hours_spent, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		t.ID,
		t.ProviderID,
		t.ConsumerID,
		t.ServiceID,
		nullString(t.BookingID),
		t.HoursSpent,
		t.Status,
		t.Description,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return mapWriteError(err)
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update writes status, rating and completion fields.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, rating = $2, feedback = $3, completed_at = $4, updated_at = now()
		WHERE id = $5
	`
	result, err := r.q.ExecContext(ctx, query,
		t.Status,
		t.Rating,
		t.Feedback,
		nullTime(t.CompletedAt),
		t.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListByUser retrieves transactions where the user is either party, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE provider_id = $1 OR consumer_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByProvider retrieves transactions the user provided, newest first.
func (r *TransactionRepository) ListByProvider(ctx context.Context, providerID string) ([]*domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
}

// List retrieves up to limit transactions, newest first.
func (r *TransactionRepository) List(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		bookingID   sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.ProviderID,
		&t.ConsumerID,
		&t.ServiceID,
		&bookingID,
		&t.HoursSpent,
		&t.Status,
		&t.Description,
		&t.Rating,
		&t.Feedback,
		&t.CreatedAt,
		&completedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.BookingID = bookingID.String
	if completedAt.Valid {
		t.CompletedAt = completedAt.Time
	}
	return &t, nil
}

// Ensure TransactionRepository implements repository.TransactionRepository.
var _ repository.TransactionRepository = (*TransactionRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, email, username, password_hash, first_name, last_name, bank_hours, skills,
	bio, profile_picture, rating, total_transactions, role, status, created_at, updated_at`

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, bank_hours, skills,
			bio, profile_picture, rating, total_transactions, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.BankHours,
		textArray(user.Skills),
		user.Bio,
		user.ProfilePicture,
		user.Rating,
		user.TotalTransactions,
		user.Role,
		user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by e-mail.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

// List retrieves up to limit users.
func (r *UserRepository) List(ctx context.Context, limit int) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile updates the user-editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, skills = $3, bio = $4, profile_picture = $5, updated_at = now()
		WHERE id = $6
	`
	result, err := r.q.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		textArray(user.Skills),
		user.Bio,
		user.ProfilePicture,
		user.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// SetBankHours overwrites a user's balance.
func (r *UserRepository) SetBankHours(ctx context.Context, id string, hours float64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET bank_hours = $1, updated_at = now() WHERE id = $2`, hours, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// AdjustBankHours applies delta to a balance, refusing to go below zero.
func (r *UserRepository) AdjustBankHours(ctx context.Context, id string, delta float64) (float64, error) {
	query := `
		UPDATE users SET bank_hours = bank_hours + $1, updated_at = now()
		WHERE id = $2 AND bank_hours + $1 >= 0
		RETURNING bank_hours
	`
	var balance float64
	err := r.q.QueryRowContext(ctx, query, delta, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// Distinguish a missing user from a guarded debit.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return 0, getErr
	}
	return 0, repository.ErrInsufficientBalance
}

// IncrementTransactions bumps the completed transaction counter.
func (r *UserRepository) IncrementTransactions(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE users SET total_transactions = total_transactions + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// UpdateRating stores a recomputed average rating.
func (r *UserRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET rating = $1, updated_at = now() WHERE id = $2`, rating, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// UpdateStatus sets the account status.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var skills pq.StringArray
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.BankHours,
		&skills,
		&user.Bio,
		&user.ProfilePicture,
		&user.Rating,
		&user.TotalTransactions,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Skills = []string(skills)
	return &user, nil
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userRowColumns = []string{
	"id", "email", "username", "password_hash", "first_name", "last_name", "bank_hours", "skills",
	"bio", "profile_picture", "rating", "total_transactions", "role", "status", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &domain.User{ID: "u1", Email: "a@b.c", Username: "alice", BankHours: 10, Rating: 5}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := NewUserRepository(db).Create(context.Background(), &domain.User{ID: "u1"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u1", "a@b.c", "alice", "hash", "Alice", "Smith", 12.5, "{cooking,gardening}",
			"", "", 4.5, 3, "USER", "ACTIVE", now, now,
		))

	user, err := NewUserRepository(db).GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 12.5, user.BankHours)
	assert.Equal(t, []string{"cooking", "gardening"}, user.Skills)
	assert.Equal(t, domain.UserStatusActive, user.Status)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := NewUserRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_AdjustBankHours(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("UPDATE users SET bank_hours = bank_hours \\+ \\$1").
		WithArgs(-2.5, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}).AddRow(7.5))

	balance, err := NewUserRepository(db).AdjustBankHours(context.Background(), "u1", -2.5)
	require.NoError(t, err)
	assert.Equal(t, 7.5, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AdjustBankHoursInsufficient(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("UPDATE users SET bank_hours").
		WithArgs(-20.0, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}))
	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u1", "a@b.c", "alice", "hash", "", "", 10.0, "{}", "", "", 5.0, 0, "USER", "ACTIVE", now, now,
		))

	_, err := NewUserRepository(db).AdjustBankHours(context.Background(), "u1", -20)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
}

func TestUserRepository_AdjustBankHoursMissingUser(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("UPDATE users SET bank_hours").
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}))
	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := NewUserRepository(db).AdjustBankHours(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("UPDATE users SET status").
		WithArgs(domain.UserStatusSuspended, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserRepository(db).UpdateStatus(context.Background(), "ghost", domain.UserStatusSuspended)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_WithTx(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET total_transactions").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, NewUserRepositoryWithTx(tx).IncrementTransactions(context.Background(), "u1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

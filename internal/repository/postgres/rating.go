package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	q Querier
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{q: db}
}

// NewRatingRepositoryWithTx creates a rating repository using a transaction.
func NewRatingRepositoryWithTx(tx *sql.Tx) *RatingRepository {
	return &RatingRepository{q: tx}
}

const ratingColumns = `id, transaction_id, rater_id, rated_user_id, score, feedback, categories, created_at`

// Create persists a rating. A second rating for the same transaction is a conflict.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (id, transaction_id, rater_id, rated_user_id, score, feedback, categories)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.q.QueryRowContext(ctx, query,
		rating.ID,
		rating.TransactionID,
		rating.RaterID,
		rating.RatedUserID,
		rating.Score,
		rating.Feedback,
		textArray(rating.Categories),
	).Scan(&rating.CreatedAt)
	return mapWriteError(err)
}

// GetByTransaction returns the rating for a transaction, or nil if it has none.
func (r *RatingRepository) GetByTransaction(ctx context.Context, transactionID string) (*domain.Rating, error) {
	rating, err := scanRating(r.q.QueryRowContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE transaction_id = $1`, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rating, err
}

// ListByRatedUser retrieves the ratings a user received, newest first.
func (r *RatingRepository) ListByRatedUser(ctx context.Context, userID string) ([]*domain.Rating, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE rated_user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*domain.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func scanRating(row rowScanner) (*domain.Rating, error) {
	var rating domain.Rating
	var categories pq.StringArray
	err := row.Scan(
		&rating.ID,
		&rating.TransactionID,
		&rating.RaterID,
		&rating.RatedUserID,
		&rating.Score,
		&rating.Feedback,
		&categories,
		&rating.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rating.Categories = []string(categories)
	return &rating, nil
}

// Ensure RatingRepository implements repository.RatingRepository.
var _ repository.RatingRepository = (*RatingRepository)(nil)

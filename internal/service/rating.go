package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
	"hourbank/internal/repository/postgres"
)

// DefaultRating is the average reported for a user with no rated work.
const DefaultRating = 5.0

// RatingService records consumer ratings and maintains provider averages.
type RatingService struct {
	db                  *sql.DB
	txnRepo             repository.TransactionRepository
	ratingRepo          repository.RatingRepository
	notificationService *NotificationService
	log                 logrus.FieldLogger
}

// NewRatingService creates a new RatingService.
func NewRatingService(
	db *sql.DB,
	txnRepo repository.TransactionRepository,
	ratingRepo repository.RatingRepository,
	notificationService *NotificationService,
	log logrus.FieldLogger,
) *RatingService {
	return &RatingService{
		db:                  db,
		txnRepo:             txnRepo,
		ratingRepo:          ratingRepo,
		notificationService: notificationService,
		log:                 log,
	}
}

// RateRequest contains a consumer's rating of a completed transaction.
type RateRequest struct {
	TransactionID string
	Score         int
	Feedback      string
	Categories    []string
}

// Rate stores the consumer's rating and refreshes the provider's average.
func (s *RatingService) Rate(ctx context.Context, raterID string, req RateRequest) (rating *domain.Rating, err error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, ErrInvalidScore
	}

	txn, err := s.txnRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.ConsumerID != raterID {
		return nil, ErrForbidden
	}
	if txn.Status != domain.TransactionStatusCompleted {
		return nil, ErrTransactionNotCompleted
	}
	if txn.Rating > 0 {
		return nil, ErrAlreadyRated
	}
	existing, err := s.ratingRepo.GetByTransaction(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRated
	}

	rating = &domain.Rating{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		RaterID:       raterID,
		RatedUserID:   txn.ProviderID,
		Score:         req.Score,
		Feedback:      strings.TrimSpace(req.Feedback),
		Categories:    cleanList(req.Categories),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRatingRepo := postgres.NewRatingRepositoryWithTx(tx)
	txTxnRepo := postgres.NewTransactionRepositoryWithTx(tx)
	txUserRepo := postgres.NewUserRepositoryWithTx(tx)

	if err = txRatingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrAlreadyRated
		}
		return nil, err
	}

	txn.Rating = rating.Score
	txn.Feedback = rating.Feedback
	if err = txTxnRepo.Update(ctx, txn); err != nil {
		return nil, err
	}

	provided, err := txTxnRepo.ListByProvider(ctx, txn.ProviderID)
	if err != nil {
		return nil, err
	}
	average := AverageFor(provided, txn.ProviderID)
	if err = txUserRepo.UpdateRating(ctx, txn.ProviderID, average); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if notifyErr := s.notificationService.NotifyRatingReceived(ctx, rating); notifyErr != nil {
		s.log.WithError(notifyErr).Warn("failed to notify rated user")
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"provider_id":    txn.ProviderID,
		"score":          rating.Score,
		"average":        average,
	}).Info("transaction rated")
	return rating, nil
}

// UserRatings is a user's rating summary and the ratings behind it.
type UserRatings struct {
	Stats   domain.RatingStats
	Ratings []*domain.Rating
}

// ForUser returns the rating summary of a provider.
func (s *RatingService) ForUser(ctx context.Context, userID string) (*UserRatings, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	provided, err := s.txnRepo.ListByProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.ListByRatedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserRatings{Stats: StatsFor(provided, userID), Ratings: ratings}, nil
}

// AverageFor averages the ratings of completed transactions userID provided,
// rounded to one decimal. Users with none get DefaultRating.
func AverageFor(txns []*domain.Transaction, userID string) float64 {
	sum, n := 0, 0
	for _, t := range txns {
		if rated(t, userID) {
			sum += t.Rating
			n++
		}
	}
	if n == 0 {
		return DefaultRating
	}
	return roundTenth(float64(sum) / float64(n))
}

// StatsFor builds the rating breakdown of a provider.
func StatsFor(txns []*domain.Transaction, userID string) domain.RatingStats {
	stats := domain.RatingStats{
		Average:   AverageFor(txns, userID),
		Breakdown: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	for _, t := range txns {
		if !rated(t, userID) {
			continue
		}
		stats.Total++
		score := int(math.Round(float64(t.Rating)))
		if score >= 1 && score <= 5 {
			stats.Breakdown[score]++
		}
	}
	return stats
}

// FormatRating renders a rating with one decimal.
func FormatRating(r float64) string {
	return fmt.Sprintf("%.1f", r)
}

// Stars returns which of five stars are filled for a rating.
func Stars(r float64) [5]bool {
	var stars [5]bool
	filled := int(math.Round(r))
	for i := 0; i < 5 && i < filled; i++ {
		stars[i] = true
	}
	return stars
}

func rated(t *domain.Transaction, userID string) bool {
	return t.Status == domain.TransactionStatusCompleted && t.ProviderID == userID && t.Rating > 0
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

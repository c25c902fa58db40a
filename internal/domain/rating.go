package domain

import "time"

// Rating is a consumer's score for a completed transaction.
type Rating struct {
	ID            string
	TransactionID string
	RaterID       string
	RatedUserID   string
	Score         int
	Feedback      string
	Categories    []string
	CreatedAt     time.Time
}

// RatingStats summarises the ratings a provider has received.
type RatingStats struct {
	Average   float64
	Total     int
	Breakdown map[int]int
}

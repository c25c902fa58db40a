package domain

import (
	"math"
	"time"
)

// Default booking constraints applied when a service leaves them unset.
const (
	DefaultMinBookingHours    = 0.5
	DefaultMaxBookingHours    = 8.0
	DefaultAdvanceBookingDays = 30
)

// Service is a listing offered by a provider in exchange for bank hours.
type Service struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    string
	// HourlyDuration is the number of bank hours charged per hour of service.
	HourlyDuration int
	IsActive       bool
	Tags           []string

	RequiresScheduling bool
	MinBookingHours    float64
	MaxBookingHours    float64
	AdvanceBookingDays int
	CancellationHours  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingBounds returns the min/max booking length in hours, with defaults applied.
func (s *Service) BookingBounds() (float64, float64) {
	min, max := s.MinBookingHours, s.MaxBookingHours
	if min <= 0 {
		min = DefaultMinBookingHours
	}
	if max <= 0 {
		max = DefaultMaxBookingHours
	}
	return min, max
}

// BookingHorizonDays returns how many days ahead the service can be booked.
func (s *Service) BookingHorizonDays() int {
	if s.AdvanceBookingDays <= 0 {
		return DefaultAdvanceBookingDays
	}
	return s.AdvanceBookingDays
}

// Cost returns the bank-hour price of booking the service for the given hours.
func (s *Service) Cost(hours float64) float64 {
	return math.Round(hours*float64(NormalizeHourlyDuration(float64(s.HourlyDuration)))*100) / 100
}

// NormalizeHourlyDuration coerces a duration to a positive whole number of hours.
// Missing or invalid values default to 1.
func NormalizeHourlyDuration(d float64) int {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 1
	}
	n := int(math.Floor(math.Abs(d)))
	if n < 1 {
		return 1
	}
	return n
}

// ServiceFilter narrows a service listing.
type ServiceFilter struct {
	Category   string
	Query      string
	UserID     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

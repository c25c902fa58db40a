package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "PENDING"
	BookingStatusConfirmed           BookingStatus = "CONFIRMED"
	BookingStatusInProgress          BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted           BookingStatus = "COMPLETED"
	BookingStatusCancelledByConsumer BookingStatus = "CANCELLED_BY_CONSUMER"
	BookingStatusCancelledByProvider BookingStatus = "CANCELLED_BY_PROVIDER"
	BookingStatusNoShowConsumer      BookingStatus = "NO_SHOW_CONSUMER"
	BookingStatusNoShowProvider      BookingStatus = "NO_SHOW_PROVIDER"
)

// BookingRole selects which side of a booking a user is viewed from.
type BookingRole string

const (
	BookingRoleProvider BookingRole = "PROVIDER"
	BookingRoleConsumer BookingRole = "CONSUMER"
)

// Booking is a reservation of a time slot for a scheduled service.
type Booking struct {
	ID                 string
	ServiceID          string
	ProviderID         string
	ConsumerID         string
	BookingDate        string // YYYY-MM-DD
	StartTime          string // HH:MM
	EndTime            string // HH:MM
	Duration           float64
	TotalCost          float64
	Status             BookingStatus
	Notes              string
	ProviderNotes      string
	CancellationReason string
	TransactionID      string
	CreatedAt          time.Time
	ConfirmedAt        time.Time
	CancelledAt        time.Time
	CompletedAt        time.Time
	UpdatedAt          time.Time
}

// IsCancelled reports whether either party cancelled the booking.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelledByConsumer || b.Status == BookingStatusCancelledByProvider
}

// IsFinal reports whether the booking can no longer change state.
func (b *Booking) IsFinal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusCancelledByConsumer, BookingStatusCancelledByProvider,
		BookingStatusNoShowConsumer, BookingStatusNoShowProvider:
		return true
	}
	return false
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusConfirmed,
		BookingStatusCancelledByConsumer,
		BookingStatusCancelledByProvider,
	},
	BookingStatusConfirmed: {
		BookingStatusInProgress,
		BookingStatusCancelledByConsumer,
		BookingStatusCancelledByProvider,
		BookingStatusNoShowConsumer,
		BookingStatusNoShowProvider,
	},
	BookingStatusInProgress: {
		BookingStatusCompleted,
	},
}

// CanTransition reports whether the booking may move to next.
func (b *Booking) CanTransition(next BookingStatus) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// HoldsSlot reports whether the booking still occupies its time slot.
func (b *Booking) HoldsSlot() bool {
	return !b.IsCancelled()
}

// StartsAt returns the booking start as a time in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 15:04", b.BookingDate+" "+b.StartTime, loc)
}

// Color returns the calendar colour associated with the booking status.
func (b *Booking) Color() string {
	switch b.Status {
	case BookingStatusPending:
		return "#ffc107"
	case BookingStatusConfirmed:
		return "#28a745"
	case BookingStatusInProgress:
		return "#007bff"
	case BookingStatusCancelledByConsumer, BookingStatusCancelledByProvider:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

// BookingCalendarEvent is a calendar projection of a booking.
type BookingCalendarEvent struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	Color   string
	Booking *Booking
}

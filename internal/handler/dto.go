package handler

import (
	"time"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

// UserResponse is the HTTP response for the caller's own account.
type UserResponse struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	Username          string   `json:"username"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	DisplayName       string   `json:"display_name"`
	BankHours         float64  `json:"bank_hours"`
	Skills            []string `json:"skills"`
	Bio               string   `json:"bio,omitempty"`
	ProfilePicture    string   `json:"profile_picture,omitempty"`
	Rating            float64  `json:"rating"`
	TotalTransactions int      `json:"total_transactions"`
	Role              string   `json:"role"`
	Status            string   `json:"status"`
	CreatedAt         string   `json:"created_at"`
}

// PublicUserResponse is what other members see of a user.
type PublicUserResponse struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	DisplayName       string   `json:"display_name"`
	Skills            []string `json:"skills"`
	Bio               string   `json:"bio,omitempty"`
	ProfilePicture    string   `json:"profile_picture,omitempty"`
	Rating            float64  `json:"rating"`
	RatingLabel       string   `json:"rating_label"`
	TotalTransactions int      `json:"total_transactions"`
	MemberSince       string   `json:"member_since"`
}

// ServiceResponse is the HTTP response for a service listing.
type ServiceResponse struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"user_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	HourlyDuration     int      `json:"hourly_duration"`
	IsActive           bool     `json:"is_active"`
	Tags               []string `json:"tags"`
	RequiresScheduling bool     `json:"requires_scheduling"`
	MinBookingHours    float64  `json:"min_booking_hours"`
	MaxBookingHours    float64  `json:"max_booking_hours"`
	AdvanceBookingDays int      `json:"advance_booking_days"`
	CancellationHours  int      `json:"cancellation_hours"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// ScheduleResponse is the HTTP response for a weekly schedule.
type ScheduleResponse struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	DayOfWeek int    `json:"day_of_week"`
	DayName   string `json:"day_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

// ExceptionResponse is the HTTP response for a schedule exception.
type ExceptionResponse struct {
	ID            string `json:"id"`
	ServiceID     string `json:"service_id"`
	ExceptionDate string `json:"exception_date"`
	Type          string `json:"type"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// TimeSlotResponse is one candidate booking slot.
type TimeSlotResponse struct {
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	IsAvailable    bool   `json:"is_available"`
	ConflictReason string `json:"conflict_reason,omitempty"`
}

// BookingResponse is the HTTP response for a booking.
type BookingResponse struct {
	ID                 string  `json:"id"`
	ServiceID          string  `json:"service_id"`
	ProviderID         string  `json:"provider_id"`
	ConsumerID         string  `json:"consumer_id"`
	BookingDate        string  `json:"booking_date"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Duration           float64 `json:"duration"`
	TotalCost          float64 `json:"total_cost"`
	Status             string  `json:"status"`
	Notes              string  `json:"notes,omitempty"`
	ProviderNotes      string  `json:"provider_notes,omitempty"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
	TransactionID      string  `json:"transaction_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
	ConfirmedAt        string  `json:"confirmed_at,omitempty"`
	CancelledAt        string  `json:"cancelled_at,omitempty"`
	CompletedAt        string  `json:"completed_at,omitempty"`
}

// CalendarEventResponse is a booking placed on a calendar.
type CalendarEventResponse struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Color   string          `json:"color"`
	Booking BookingResponse `json:"booking"`
}

// TransactionResponse is the HTTP response for a transaction.
type TransactionResponse struct {
	ID          string  `json:"id"`
	ProviderID  string  `json:"provider_id"`
	ConsumerID  string  `json:"consumer_id"`
	ServiceID   string  `json:"service_id"`
	BookingID   string  `json:"booking_id,omitempty"`
	HoursSpent  float64 `json:"hours_spent"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	Rating      int     `json:"rating,omitempty"`
	Feedback    string  `json:"feedback,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt string  `json:"completed_at,omitempty"`
}

// RatingResponse is the HTTP response for a rating.
type RatingResponse struct {
	ID            string   `json:"id"`
	TransactionID string   `json:"transaction_id"`
	RaterID       string   `json:"rater_id"`
	RatedUserID   string   `json:"rated_user_id"`
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// NotificationResponse is the HTTP response for a notification.
type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	RelatedID string `json:"related_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		DisplayName:       u.DisplayName(),
		BankHours:         u.BankHours,
		Skills:            nonNil(u.Skills),
		Bio:               u.Bio,
		ProfilePicture:    u.ProfilePicture,
		Rating:            u.Rating,
		TotalTransactions: u.TotalTransactions,
		Role:              string(u.Role),
		Status:            string(u.Status),
		CreatedAt:         formatTime(u.CreatedAt),
	}
}

func toPublicUserResponse(u *domain.User) PublicUserResponse {
	return PublicUserResponse{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName(),
		Skills:            nonNil(u.Skills),
		Bio:               u.Bio,
		ProfilePicture:    u.ProfilePicture,
		Rating:            u.Rating,
		RatingLabel:       service.FormatRating(u.Rating),
		TotalTransactions: u.TotalTransactions,
		MemberSince:       formatTime(u.CreatedAt),
	}
}

func toServiceResponse(s *domain.Service) ServiceResponse {
	min, max := s.BookingBounds()
	return ServiceResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		Title:              s.Title,
		Description:        s.Description,
		Category:           s.Category,
		HourlyDuration:     s.HourlyDuration,
		IsActive:           s.IsActive,
		Tags:               nonNil(s.Tags),
		RequiresScheduling: s.RequiresScheduling,
		MinBookingHours:    min,
		MaxBookingHours:    max,
		AdvanceBookingDays: s.BookingHorizonDays(),
		CancellationHours:  s.CancellationHours,
		CreatedAt:          formatTime(s.CreatedAt),
		UpdatedAt:          formatTime(s.UpdatedAt),
	}
}

func toServiceResponses(services []*domain.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResponse(s))
	}
	return out
}

func toScheduleResponse(s *domain.ServiceSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		ServiceID: s.ServiceID,
		DayOfWeek: s.DayOfWeek,
		DayName:   domain.DayName(s.DayOfWeek),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		IsActive:  s.IsActive,
	}
}

func toExceptionResponse(e *domain.ScheduleException) ExceptionResponse {
	return ExceptionResponse{
		ID:            e.ID,
		ServiceID:     e.ServiceID,
		ExceptionDate: e.ExceptionDate,
		Type:          string(e.Type),
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Reason:        e.Reason,
	}
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		ServiceID:          b.ServiceID,
		ProviderID:         b.ProviderID,
		ConsumerID:         b.ConsumerID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Duration:           b.Duration,
		TotalCost:          b.TotalCost,
		Status:             string(b.Status),
		Notes:              b.Notes,
		ProviderNotes:      b.ProviderNotes,
		CancellationReason: b.CancellationReason,
		TransactionID:      b.TransactionID,
		CreatedAt:          formatTime(b.CreatedAt),
		ConfirmedAt:        formatTime(b.ConfirmedAt),
		CancelledAt:        formatTime(b.CancelledAt),
		CompletedAt:        formatTime(b.CompletedAt),
	}
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		ProviderID:  t.ProviderID,
		ConsumerID:  t.ConsumerID,
		ServiceID:   t.ServiceID,
		BookingID:   t.BookingID,
		HoursSpent:  t.HoursSpent,
		Status:      string(t.Status),
		Description: t.Description,
		Rating:      t.Rating,
		Feedback:    t.Feedback,
		CreatedAt:   formatTime(t.CreatedAt),
		CompletedAt: formatTime(t.CompletedAt),
	}
}

func toTransactionResponses(txns []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toRatingResponse(r *domain.Rating) RatingResponse {
	return RatingResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		RaterID:       r.RaterID,
		RatedUserID:   r.RatedUserID,
		Score:         r.Score,
		Feedback:      r.Feedback,
		Categories:    r.Categories,
		CreatedAt:     formatTime(r.CreatedAt),
	}
}

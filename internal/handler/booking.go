package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for booking a slot.
type CreateBookingRequest struct {
	ServiceID string  `json:"service_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	Duration  float64 `json:"duration" binding:"required"`
	Notes     string  `json:"notes"`
}

// BookingStatusRequest is the HTTP request body for a booking status change.
type BookingStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	ProviderNotes string `json:"provider_notes"`
	Reason        string `json:"reason"`
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "service_id, date, start_time and duration are required")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), callerID(c), service.CreateBookingRequest{
		ServiceID: req.ServiceID,
		Date:      req.Date,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// List handles GET /v1/bookings?role=&from=&to=
func (h *BookingHandler) List(c *gin.Context) {
	bookings, ok := h.list(c)
	if !ok {
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	respondJSON(c, http.StatusOK, out)
}

// Calendar handles GET /v1/bookings/calendar?role=&from=&to=
func (h *BookingHandler) Calendar(c *gin.Context) {
	bookings, ok := h.list(c)
	if !ok {
		return
	}

	events := h.bookingService.CalendarEvents(c.Request.Context(), bookings)
	out := make([]CalendarEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, CalendarEventResponse{
			ID:      e.ID,
			Title:   e.Title,
			Start:   e.Start.Format("2006-01-02T15:04:05"),
			End:     e.End.Format("2006-01-02T15:04:05"),
			Color:   e.Color,
			Booking: toBookingResponse(e.Booking),
		})
	}
	respondJSON(c, http.StatusOK, out)
}

func (h *BookingHandler) list(c *gin.Context) ([]*domain.Booking, bool) {
	role := domain.BookingRole(strings.ToUpper(c.Query("role")))
	bookings, err := h.bookingService.ListBookings(c.Request.Context(), callerID(c), role, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return bookings, true
}

// UpdateStatus handles POST /v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req BookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), callerID(c), c.Param("id"), service.StatusUpdate{
		Status:        domain.BookingStatus(strings.ToUpper(req.Status)),
		ProviderNotes: req.ProviderNotes,
		Reason:        req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

const defaultSlotDuration = 1.0

// ScheduleHandler handles HTTP requests for weekly schedules, date exceptions
// and availability.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ScheduleRequest is the HTTP request body for a weekly schedule.
type ScheduleRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

// ExceptionRequest is the HTTP request body for a schedule exception.
type ExceptionRequest struct {
	Date      string `json:"date" binding:"required"`
	Type      string `json:"type" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// AvailabilityResponse lists the candidate slots for one day.
type AvailabilityResponse struct {
	ServiceID string             `json:"service_id"`
	Date      string             `json:"date"`
	Duration  float64            `json:"duration"`
	Slots     []TimeSlotResponse `json:"slots"`
}

func (r ScheduleRequest) input() service.ScheduleInput {
	return service.ScheduleInput{
		DayOfWeek: *r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		IsActive:  r.IsActive,
	}
}

// List handles GET /v1/services/:id/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.scheduleService.ListSchedules(c.Request.Context(), c.Param("id"), c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toScheduleResponse(s))
	}
	respondJSON(c, http.StatusOK, out)
}

// Create handles POST /v1/services/:id/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "day_of_week, start_time and end_time are required")
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), callerID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toScheduleResponse(schedule))
}

// Update handles PUT /v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "day_of_week, start_time and end_time are required")
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(c.Request.Context(), callerID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toScheduleResponse(schedule))
}

// Delete handles DELETE /v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExceptions handles GET /v1/services/:id/exceptions
func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	exceptions, err := h.scheduleService.ListExceptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ExceptionResponse, 0, len(exceptions))
	for _, e := range exceptions {
		out = append(out, toExceptionResponse(e))
	}
	respondJSON(c, http.StatusOK, out)
}

// CreateException handles POST /v1/services/:id/exceptions
func (h *ScheduleHandler) CreateException(c *gin.Context) {
	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "date and type are required")
		return
	}

	exception, err := h.scheduleService.CreateException(c.Request.Context(), callerID(c), c.Param("id"), service.ExceptionInput{
		Date:      req.Date,
		Type:      domain.ScheduleExceptionType(req.Type),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toExceptionResponse(exception))
}

// DeleteException handles DELETE /v1/exceptions/:id
func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	if err := h.scheduleService.DeleteException(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Availability handles GET /v1/services/:id/availability?date=&duration=
func (h *ScheduleHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		respondBadRequest(c, "date is required")
		return
	}
	duration, ok := queryFloat(c, "duration", defaultSlotDuration)
	if !ok {
		respondBadRequest(c, "invalid duration")
		return
	}

	serviceID := c.Param("id")
	slots, err := h.scheduleService.GetAvailableTimeSlots(c.Request.Context(), serviceID, date, duration)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TimeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, TimeSlotResponse{
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			IsAvailable:    s.IsAvailable,
			ConflictReason: s.ConflictReason,
		})
	}
	respondJSON(c, http.StatusOK, AvailabilityResponse{
		ServiceID: serviceID,
		Date:      date,
		Duration:  duration,
		Slots:     out,
	})
}

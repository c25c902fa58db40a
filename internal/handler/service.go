package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

// ServiceHandler handles HTTP requests for service listings.
type ServiceHandler struct {
	listingService *service.ListingService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(listingService *service.ListingService) *ServiceHandler {
	return &ServiceHandler{listingService: listingService}
}

// ServiceRequest is the HTTP request body for creating or replacing a service.
type ServiceRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	HourlyDuration     float64  `json:"hourly_duration"`
	Tags               []string `json:"tags"`
	IsActive           *bool    `json:"is_active"`
	RequiresScheduling bool     `json:"requires_scheduling"`
	MinBookingHours    float64  `json:"min_booking_hours"`
	MaxBookingHours    float64  `json:"max_booking_hours"`
	AdvanceBookingDays int      `json:"advance_booking_days"`
	CancellationHours  int      `json:"cancellation_hours"`
}

func (r ServiceRequest) input() service.ServiceInput {
	return service.ServiceInput{
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		HourlyDuration:     r.HourlyDuration,
		Tags:               r.Tags,
		IsActive:           r.IsActive,
		RequiresScheduling: r.RequiresScheduling,
		MinBookingHours:    r.MinBookingHours,
		MaxBookingHours:    r.MaxBookingHours,
		AdvanceBookingDays: r.AdvanceBookingDays,
		CancellationHours:  r.CancellationHours,
	}
}

// List handles GET /v1/services?category=&q=&limit=&offset=
func (h *ServiceHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		respondBadRequest(c, "invalid limit")
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		respondBadRequest(c, "invalid offset")
		return
	}

	services, err := h.listingService.ListServices(c.Request.Context(), domain.ServiceFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	}, false)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toServiceResponses(services))
}

// Get handles GET /v1/services/:id
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.listingService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toServiceResponse(svc))
}

// Create handles POST /v1/services
func (h *ServiceHandler) Create(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	svc, err := h.listingService.CreateService(c.Request.Context(), callerID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toServiceResponse(svc))
}

// Update handles PUT /v1/services/:id
func (h *ServiceHandler) Update(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	svc, err := h.listingService.UpdateService(c.Request.Context(), callerID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toServiceResponse(svc))
}

// Delete handles DELETE /v1/services/:id
func (h *ServiceHandler) Delete(c *gin.Context) {
	if err := h.listingService.DeleteService(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByUser handles GET /v1/users/:id/services
func (h *ServiceHandler) ListByUser(c *gin.Context) {
	services, err := h.listingService.ListByUser(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toServiceResponses(services))
}

// ListMine handles GET /v1/me/services, inactive listings included.
func (h *ServiceHandler) ListMine(c *gin.Context) {
	userID := callerID(c)
	services, err := h.listingService.ListByUser(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toServiceResponses(services))
}

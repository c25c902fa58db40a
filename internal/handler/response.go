package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hourbank/internal/auth"
	"hourbank/internal/middleware"
	"hourbank/internal/repository"
	"hourbank/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Unmapped errors are hidden from the client and attached to the gin context
// for the request logger.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidServiceID),
		errors.Is(err, service.ErrInvalidService),
		errors.Is(err, service.ErrInvalidBookingBounds),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrDateOutOfRange),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidHours),
		errors.Is(err, service.ErrSameUser),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrSchedulingRequired),
		errors.Is(err, service.ErrSchedulingNotRequired),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrInvalidPassword):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrBadToken):
		return http.StatusUnauthorized

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrUserSuspended),
		errors.Is(err, service.ErrOwnService):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrStaleStatus),
		errors.Is(err, service.ErrAccountExists),
		errors.Is(err, service.ErrScheduleOverlap),
		errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrServiceInactive),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrCancellationWindow),
		errors.Is(err, service.ErrTransactionNotInProgress),
		errors.Is(err, service.ErrTransactionNotCompleted),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrResourceBusy):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// callerID returns the authenticated user's ID.
func callerID(c *gin.Context) string {
	return middleware.UserID(c)
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

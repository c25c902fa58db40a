package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/service"
)

const defaultErrorLimit = 50

// AdminHandler handles HTTP requests for the admin console.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// BankHoursRequest is the HTTP request body for setting a user's balance.
type BankHoursRequest struct {
	BankHours *float64 `json:"bank_hours" binding:"required"`
	Reason    string   `json:"reason"`
}

// UserStatusRequest is the HTTP request body for suspending or reactivating a user.
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// HealthResponse is the admin system health view.
type HealthResponse struct {
	domain.AdminStats
	Score       int    `json:"score"`
	Status      string `json:"status"`
	LastChecked string `json:"last_checked"`
}

// AdminUserResponse is a user row in the admin user list.
type AdminUserResponse struct {
	UserResponse
	ServicesCount     int    `json:"services_count"`
	TransactionsCount int    `json:"transactions_count"`
	LastActivity      string `json:"last_activity,omitempty"`
	ActivityStatus    string `json:"activity_status"`
}

// AdminUserDetailsResponse is everything an admin sees for one user.
type AdminUserDetailsResponse struct {
	User         UserResponse          `json:"user"`
	Services     []ServiceResponse     `json:"services"`
	Transactions []TransactionResponse `json:"transactions"`
}

// Stats handles GET /v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, stats)
}

// Health handles GET /v1/admin/health
func (h *AdminHandler) Health(c *gin.Context) {
	health, err := h.adminService.SystemHealth(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, HealthResponse{
		AdminStats:  health.AdminStats,
		Score:       health.Score,
		Status:      string(health.Status),
		LastChecked: formatTime(health.LastChecked),
	})
}

// Users handles GET /v1/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.adminService.UsersWithStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]AdminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, AdminUserResponse{
			UserResponse:      toUserResponse(u.User),
			ServicesCount:     u.ServicesCount,
			TransactionsCount: u.TransactionsCount,
			LastActivity:      formatTime(u.LastActivity),
			ActivityStatus:    string(u.Status),
		})
	}
	respondJSON(c, http.StatusOK, out)
}

// UserDetails handles GET /v1/admin/users/:id
func (h *AdminHandler) UserDetails(c *gin.Context) {
	details, err := h.adminService.UserDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, AdminUserDetailsResponse{
		User:         toUserResponse(details.User),
		Services:     toServiceResponses(details.Services),
		Transactions: toTransactionResponses(details.Transactions),
	})
}

// UpdateBankHours handles PUT /v1/admin/users/:id/bank-hours
func (h *AdminHandler) UpdateBankHours(c *gin.Context) {
	var req BankHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "bank_hours is required")
		return
	}

	user, err := h.adminService.UpdateBankHours(c.Request.Context(), callerID(c), c.Param("id"), *req.BankHours, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// UpdateStatus handles PUT /v1/admin/users/:id/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), callerID(c), c.Param("id"),
		domain.UserStatus(strings.ToUpper(req.Status)), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// Errors handles GET /v1/admin/errors?limit=
func (h *AdminHandler) Errors(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultErrorLimit)
	if !ok {
		respondBadRequest(c, "invalid limit")
		return
	}
	entries := h.adminService.RecentErrors(limit)
	if entries == nil {
		entries = []logging.Entry{}
	}
	respondJSON(c, http.StatusOK, entries)
}

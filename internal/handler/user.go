package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hourbank/internal/service"
)

// UserHandler handles HTTP requests for accounts and profiles.
type UserHandler struct {
	userService   *service.UserService
	ratingService *service.RatingService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, ratingService *service.RatingService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ratingService: ratingService,
	}
}

// UpdateProfileRequest is the HTTP request body for a profile update.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Skills         []string `json:"skills"`
	Bio            *string  `json:"bio"`
	ProfilePicture *string  `json:"profile_picture"`
}

// ProfileResponse is a public profile with the user's offers and history.
type ProfileResponse struct {
	User                  PublicUserResponse    `json:"user"`
	Services              []ServiceResponse     `json:"services"`
	CompletedTransactions []TransactionResponse `json:"completed_transactions"`
}

// BalanceResponse is the HTTP response for a balance lookup.
type BalanceResponse struct {
	UserID    string  `json:"user_id"`
	BankHours float64 `json:"bank_hours"`
}

// RatingsResponse is a provider's rating summary.
type RatingsResponse struct {
	Average   float64          `json:"average"`
	Label     string           `json:"label"`
	Stars     [5]bool          `json:"stars"`
	Total     int              `json:"total"`
	Breakdown map[int]int      `json:"breakdown"`
	Ratings   []RatingResponse `json:"ratings"`
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /v1/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), callerID(c), service.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Skills:         req.Skills,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// Balance handles GET /v1/me/balance
func (h *UserHandler) Balance(c *gin.Context) {
	userID := callerID(c)
	hours, err := h.userService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, BalanceResponse{UserID: userID, BankHours: hours})
}

// GetProfile handles GET /v1/users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ProfileResponse{
		User:                  toPublicUserResponse(profile.User),
		Services:              toServiceResponses(profile.Services),
		CompletedTransactions: toTransactionResponses(profile.CompletedTransactions),
	})
}

// Ratings handles GET /v1/users/:id/ratings
func (h *UserHandler) Ratings(c *gin.Context) {
	result, err := h.ratingService.ForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	ratings := make([]RatingResponse, 0, len(result.Ratings))
	for _, r := range result.Ratings {
		ratings = append(ratings, toRatingResponse(r))
	}
	respondJSON(c, http.StatusOK, RatingsResponse{
		Average:   result.Stats.Average,
		Label:     service.FormatRating(result.Stats.Average),
		Stars:     service.Stars(result.Stats.Average),
		Total:     result.Stats.Total,
		Breakdown: result.Stats.Breakdown,
		Ratings:   ratings,
	})
}

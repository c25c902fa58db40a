package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

// TransactionHandler handles HTTP requests for direct service exchanges and ratings.
type TransactionHandler struct {
	txnService    *service.TransactionService
	ratingService *service.RatingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnService *service.TransactionService, ratingService *service.RatingService) *TransactionHandler {
	return &TransactionHandler{
		txnService:    txnService,
		ratingService: ratingService,
	}
}

// RequestServiceRequest is the HTTP request body for requesting a service.
type RequestServiceRequest struct {
	ServiceID   string `json:"service_id" binding:"required"`
	Description string `json:"description"`
}

// TransactionStatusRequest is the HTTP request body for a transaction status change.
type TransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RateRequest is the HTTP request body for rating a completed transaction.
type RateRequest struct {
	Score      int      `json:"score" binding:"required"`
	Feedback   string   `json:"feedback"`
	Categories []string `json:"categories"`
}

// Request handles POST /v1/transactions
func (h *TransactionHandler) Request(c *gin.Context) {
	var req RequestServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "service_id is required")
		return
	}

	txn, err := h.txnService.RequestService(c.Request.Context(), callerID(c), req.ServiceID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// List handles GET /v1/transactions?status=&type=provided|received
func (h *TransactionHandler) List(c *gin.Context) {
	role := service.TransactionRole(strings.ToLower(c.Query("type")))
	switch role {
	case service.TransactionRoleAny, service.TransactionRoleProvided, service.TransactionRoleReceived:
	default:
		respondBadRequest(c, "type must be provided or received")
		return
	}

	txns, err := h.txnService.ListForUser(c.Request.Context(), callerID(c), service.TransactionFilter{
		Status: domain.TransactionStatus(strings.ToUpper(c.Query("status"))),
		Role:   role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransactionResponses(txns))
}

// Get handles GET /v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.txnService.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransactionResponse(txn))
}

// UpdateStatus handles POST /v1/transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	var req TransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	txn, err := h.txnService.UpdateStatus(c.Request.Context(), callerID(c), c.Param("id"),
		domain.TransactionStatus(strings.ToUpper(req.Status)))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransactionResponse(txn))
}

// Rate handles POST /v1/transactions/:id/rating
func (h *TransactionHandler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "score is required")
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), callerID(c), service.RateRequest{
		TransactionID: c.Param("id"),
		Score:         req.Score,
		Feedback:      req.Feedback,
		Categories:    req.Categories,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toRatingResponse(rating))
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/cache"
	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
	"paisatrack/internal/services"
)

// TransactionHandler serves transaction endpoints.
type TransactionHandler struct {
	txs   services.TransactionServicer
	cache cache.Service
}

// NewTransactionHandler creates a transaction handler.
func NewTransactionHandler(txs services.TransactionServicer, cache cache.Service) *TransactionHandler {
	return &TransactionHandler{txs: txs, cache: cache}
}

type createTransactionRequest struct {
	WalletID    string   `json:"walletId" binding:"required"`
	ToWallet    *string  `json:"toWallet"`
	Type        string   `json:"type" binding:"required,transaction_type"`
	Amount      int64    `json:"amount" binding:"required,gt=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Merchant    string   `json:"merchant"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
}

type updateTransactionRequest struct {
	WalletID    *string   `json:"walletId"`
	Type        *string   `json:"type" binding:"omitempty,transaction_type"`
	Amount      *int64    `json:"amount" binding:"omitempty,gt=0"`
	Category    *string   `json:"category"`
	Subcategory *string   `json:"subcategory"`
	Merchant    *string   `json:"merchant"`
	Notes       *string   `json:"notes"`
	Tags        *[]string `json:"tags"`
	Date        *string   `json:"date"`
}

type listTransactionsQuery struct {
	WalletID     string `form:"walletId"`
	Category     string `form:"category"`
	Type         string `form:"type" binding:"omitempty,transaction_type"`
	StartDate    string `form:"startDate"`
	EndDate      string `form:"endDate"`
	IncludeStats bool   `form:"includeStats"`
	pagination.PageRequest
}

// Create godoc
// @Summary Record a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createTransactionRequest true "Transaction details"
// @Success 201 {object} map[string]interface{}
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.CreateTransactionInput{
		WalletID:    req.WalletID,
		ToWalletID:  req.ToWallet,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Merchant:    req.Merchant,
		Notes:       req.Notes,
		Tags:        req.Tags,
	}
	if req.Date != "" {
		date, err := parseFlexibleTime(req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format"))
			return
		}
		input.Date = date
	}

	userID := getUserID(c)
	txn, err := h.txs.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	statusCreated(c, txn)
}

// List godoc
// @Summary List transactions with optional filters
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param walletId query string false "Filter by wallet"
// @Param category query string false "Filter by category"
// @Param type query string false "Filter by type"
// @Param startDate query string false "Inclusive start date"
// @Param endDate query string false "Inclusive end date"
// @Param includeStats query bool false "Include aggregate stats"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	filter, err := h.buildFilter(query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	userID := getUserID(c)
	txns, meta, err := h.txs.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payload := gin.H{
		"transactions": txns,
		"pagination":   meta,
	}
	if query.IncludeStats {
		stats, err := h.txs.Stats(c.Request.Context(), userID, filter)
		if err != nil {
			respondWithError(c, err)
			return
		}
		payload["stats"] = stats
	}

	respondSuccess(c, http.StatusOK, payload)
}

// Get godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} map[string]interface{}
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.txs.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, txn)
}

// Update godoc
// @Summary Edit an income or expense transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body updateTransactionRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /transactions/{id} [patch]
func (h *TransactionHandler) Update(c *gin.Context) {
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.UpdateTransactionInput{
		WalletID:    req.WalletID,
		Amount:      req.Amount,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Merchant:    req.Merchant,
		Notes:       req.Notes,
		Tags:        req.Tags,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		input.Type = &t
	}
	if req.Date != nil {
		date, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format"))
			return
		}
		input.Date = &date
	}

	userID := getUserID(c)
	txn, err := h.txs.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondSuccess(c, http.StatusOK, txn)
}

// Delete godoc
// @Summary Delete a transaction and reverse its balance effect
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} map[string]interface{}
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if err := h.txs.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondMessage(c, http.StatusOK, "Transaction deleted")
}

// Stats godoc
// @Summary Aggregate transaction statistics
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param walletId query string false "Filter by wallet"
// @Param category query string false "Filter by category"
// @Param type query string false "Filter by type"
// @Param startDate query string false "Inclusive start date"
// @Param endDate query string false "Inclusive end date"
// @Success 200 {object} map[string]interface{}
// @Router /transactions/stats [get]
func (h *TransactionHandler) Stats(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	filter, err := h.buildFilter(query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.txs.Stats(c.Request.Context(), getUserID(c), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

func (h *TransactionHandler) buildFilter(query listTransactionsQuery) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{
		WalletID: query.WalletID,
		Category: query.Category,
		Type:     models.TransactionType(query.Type),
		Page:     query.PageRequest,
	}

	// Bare end dates are inclusive of the whole day.
	parse := func(s string, endOfDay bool) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			if endOfDay {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			return &t, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format")
		}
		return &t, nil
	}

	var err error
	if filter.StartDate, err = parse(query.StartDate, false); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parse(query.EndDate, true); err != nil {
		return filter, err
	}
	return filter, nil
}

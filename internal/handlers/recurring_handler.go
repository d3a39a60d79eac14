package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/cache"
	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
	"paisatrack/internal/services"
)

// RecurringHandler serves recurring rule endpoints.
type RecurringHandler struct {
	rules services.RecurringServicer
	cache cache.Service
}

// NewRecurringHandler creates a recurring rule handler.
func NewRecurringHandler(rules services.RecurringServicer, cache cache.Service) *RecurringHandler {
	return &RecurringHandler{rules: rules, cache: cache}
}

type createRuleRequest struct {
	WalletID string `json:"walletId" binding:"required"`
	Type     string `json:"type" binding:"required,transaction_type"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Category string `json:"category" binding:"required,min=1,max=100"`
	Cadence  string `json:"cadence" binding:"required,cadence"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

type updateRuleRequest struct {
	WalletID *string `json:"walletId"`
	Amount   *int64  `json:"amount" binding:"omitempty,gt=0"`
	Category *string `json:"category" binding:"omitempty,min=1,max=100"`
	Cadence  *string `json:"cadence" binding:"omitempty,cadence"`
	EndsAt   *string `json:"endsAt"`
}

// Create godoc
// @Summary Create a recurring rule
// @Tags recurring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createRuleRequest true "Rule details"
// @Success 201 {object} map[string]interface{}
// @Router /recurring [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.CreateRuleInput{
		WalletID: req.WalletID,
		Type:     models.TransactionType(req.Type),
		Amount:   req.Amount,
		Category: req.Category,
		Cadence:  models.Cadence(req.Cadence),
	}
	var err error
	if input.StartsAt, err = optionalTime(req.StartsAt); err != nil {
		respondWithError(c, err)
		return
	}
	if req.EndsAt != "" {
		endsAt, err := optionalTime(req.EndsAt)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.EndsAt = &endsAt
	}

	userID := getUserID(c)
	rule, err := h.rules.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	statusCreated(c, rule)
}

// List godoc
// @Summary List recurring rules
// @Tags recurring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /recurring [get]
func (h *RecurringHandler) List(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context(), getUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rules)
}

// Get godoc
// @Summary Get a recurring rule
// @Tags recurring
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Router /recurring/{id} [get]
func (h *RecurringHandler) Get(c *gin.Context) {
	rule, err := h.rules.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rule)
}

// Update godoc
// @Summary Update a recurring rule
// @Tags recurring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Param request body updateRuleRequest true "Rule fields"
// @Success 200 {object} map[string]interface{}
// @Router /recurring/{id} [patch]
func (h *RecurringHandler) Update(c *gin.Context) {
	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.UpdateRuleInput{
		WalletID: req.WalletID,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if req.Cadence != nil {
		cadence := models.Cadence(*req.Cadence)
		input.Cadence = &cadence
	}
	if req.EndsAt != nil {
		endsAt, err := optionalTime(*req.EndsAt)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.EndsAt = &endsAt
	}

	userID := getUserID(c)
	rule, err := h.rules.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondSuccess(c, http.StatusOK, rule)
}

// Delete godoc
// @Summary Delete a recurring rule
// @Tags recurring
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Router /recurring/{id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if err := h.rules.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondMessage(c, http.StatusOK, "Recurring rule deleted")
}

func optionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := parseFlexibleTime(s)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format")
	}
	return t, nil
}

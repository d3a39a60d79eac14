package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/cache"
	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/services"
)

// BudgetHandler serves budget endpoints.
type BudgetHandler struct {
	budgets services.BudgetServicer
	cache   cache.Service
}

// NewBudgetHandler creates a budget handler.
func NewBudgetHandler(budgets services.BudgetServicer, cache cache.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, cache: cache}
}

type createBudgetRequest struct {
	Category       string  `json:"category" binding:"required,min=1,max=100"`
	Amount         int64   `json:"amount" binding:"required,gt=0"`
	Month          int     `json:"month" binding:"required,min=1,max=12"`
	Year           int     `json:"year" binding:"required,min=2000,max=2200"`
	AlertThreshold float64 `json:"alertThreshold" binding:"omitempty,gt=0"`
}

type updateBudgetRequest struct {
	Amount         *int64   `json:"amount" binding:"omitempty,gt=0"`
	AlertThreshold *float64 `json:"alertThreshold" binding:"omitempty,gt=0"`
}

// normalizeThreshold accepts the threshold as either a fraction (0.8) or a
// percentage (80) and stores it as a fraction.
func normalizeThreshold(v float64) (float64, error) {
	if v > 1 {
		v = v / 100
	}
	if v <= 0 || v > 1 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Alert threshold must be between 0 and 100")
	}
	return v, nil
}

// Create godoc
// @Summary Create a monthly budget for a category
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createBudgetRequest true "Budget details"
// @Success 201 {object} map[string]interface{}
// @Router /budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req createBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.CreateBudgetInput{
		Category: req.Category,
		Amount:   req.Amount,
		Month:    req.Month,
		Year:     req.Year,
	}
	if req.AlertThreshold > 0 {
		threshold, err := normalizeThreshold(req.AlertThreshold)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.AlertThreshold = threshold
	}

	userID := getUserID(c)
	budget, err := h.budgets.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	statusCreated(c, budget)
}

// List godoc
// @Summary List budgets, optionally for a month
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Success 200 {object} map[string]interface{}
// @Router /budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	month, year, err := monthYearQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgets.List(c.Request.Context(), getUserID(c), month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, budgets)
}

// Get godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 200 {object} map[string]interface{}
// @Router /budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	budget, err := h.budgets.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, budget)
}

// Update godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Param request body updateBudgetRequest true "Budget fields"
// @Success 200 {object} map[string]interface{}
// @Router /budgets/{id} [patch]
func (h *BudgetHandler) Update(c *gin.Context) {
	var req updateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	input := services.UpdateBudgetInput{Amount: req.Amount}
	if req.AlertThreshold != nil {
		threshold, err := normalizeThreshold(*req.AlertThreshold)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.AlertThreshold = &threshold
	}

	userID := getUserID(c)
	budget, err := h.budgets.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondSuccess(c, http.StatusOK, budget)
}

// Delete godoc
// @Summary Delete a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 200 {object} map[string]interface{}
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if err := h.budgets.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondMessage(c, http.StatusOK, "Budget deleted")
}

// Summary godoc
// @Summary Spending summary against budgets for a month
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} map[string]interface{}
// @Router /budgets/summary [get]
func (h *BudgetHandler) Summary(c *gin.Context) {
	month, year, err := monthYearQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if month == 0 || year == 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month and year are required"))
		return
	}

	entries, err := h.budgets.Summary(c.Request.Context(), getUserID(c), month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, entries)
}

func monthYearQuery(c *gin.Context) (int, int, error) {
	parse := func(name string, lo, hi int) (int, error) {
		s := c.Query(name)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < lo || n > hi {
			return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name)
		}
		return n, nil
	}

	month, err := parse("month", 1, 12)
	if err != nil {
		return 0, 0, err
	}
	year, err := parse("year", 2000, 2200)
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

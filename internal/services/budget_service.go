package services

import (
	"context"
	goerrors "errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/logger"
	"paisatrack/internal/models"
	"paisatrack/internal/notify"
)

// CreateBudgetInput carries the fields for creating a budget.
// AlertThreshold is a fraction of the budget amount (0.8 means 80%).
type CreateBudgetInput struct {
	Category       string
	Amount         int64
	Month          int
	Year           int
	AlertThreshold float64
}

// UpdateBudgetInput carries optional budget fields; nil fields are unchanged.
type UpdateBudgetInput struct {
	Amount         *int64
	AlertThreshold *float64
}

// BudgetSummaryEntry reports one budget's standing for a month.
// Percentage is capped at 100.
type BudgetSummaryEntry struct {
	BudgetID       string  `json:"budgetId"`
	Category       string  `json:"category"`
	Budgeted       int64   `json:"budgeted"`
	Spent          int64   `json:"spent"`
	Remaining      int64   `json:"remaining"`
	Percentage     int     `json:"percentage"`
	AlertThreshold float64 `json:"alertThreshold"`
}

type budgetService struct {
	db       *gorm.DB
	notifier notify.Notifier
}

// NewBudgetService creates a budget service. Threshold alerts are delivered
// through the notifier.
func NewBudgetService(db *gorm.DB, notifier notify.Notifier) BudgetServicer {
	return &budgetService{db: db, notifier: notifier}
}

func (s *budgetService) Create(ctx context.Context, userID string, input CreateBudgetInput) (*models.Budget, error) {
	if input.Month < 1 || input.Month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Month must be between 1 and 12")
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Budget{}).
		Where("user_id = ? AND category = ? AND month = ? AND year = ?",
			userID, input.Category, input.Month, input.Year).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	threshold := input.AlertThreshold
	if threshold <= 0 {
		threshold = 0.8
	}

	budget := &models.Budget{
		UserID:         userID,
		Category:       input.Category,
		Amount:         input.Amount,
		Month:          input.Month,
		Year:           input.Year,
		AlertThreshold: threshold,
	}
	budget.Spent = s.spentFor(ctx, userID, budget.Category, budget.Month, budget.Year)

	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

func (s *budgetService) List(ctx context.Context, userID string, month, year int) ([]models.Budget, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if month > 0 {
		query = query.Where("month = ?", month)
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}

	var budgets []models.Budget
	if err := query.Order("year DESC, month DESC, category ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

func (s *budgetService) Get(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrBudgetNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

func (s *budgetService) Update(ctx context.Context, userID, budgetID string, input UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.Get(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
		}
		budget.Amount = *input.Amount
	}
	if input.AlertThreshold != nil {
		budget.AlertThreshold = *input.AlertThreshold
	}

	budget.Spent = s.spentFor(ctx, userID, budget.Category, budget.Month, budget.Year)

	if err := s.db.WithContext(ctx).Save(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.maybeAlert(ctx, budget)
	return budget, nil
}

func (s *budgetService) Delete(ctx context.Context, userID, budgetID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Delete(&models.Budget{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

func (s *budgetService) Summary(ctx context.Context, userID string, month, year int) ([]BudgetSummaryEntry, error) {
	budgets, err := s.List(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	entries := make([]BudgetSummaryEntry, 0, len(budgets))
	for _, b := range budgets {
		spent := s.spentFor(ctx, userID, b.Category, b.Month, b.Year)
		entries = append(entries, BudgetSummaryEntry{
			BudgetID:       b.ID,
			Category:       b.Category,
			Budgeted:       b.Amount,
			Spent:          spent,
			Remaining:      b.Amount - spent,
			Percentage:     usagePercent(spent, b.Amount),
			AlertThreshold: b.AlertThreshold,
		})
	}
	return entries, nil
}

// spentFor sums expense transactions in the budget's category over the
// calendar month. Failures degrade to zero; the summary endpoint recomputes
// on every read so a stale hint is harmless.
func (s *budgetService) spentFor(ctx context.Context, userID, category string, month, year int) int64 {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var total *int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND category = ? AND type = ?", userID, category, models.TransactionTypeExpense).
		Where("date >= ? AND date < ?", start, end).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		logger.Get().Warnw("computing budget spend failed", "category", category, "error", err)
		return 0
	}
	if total == nil {
		return 0
	}
	return *total
}

// maybeAlert notifies the user when spending has reached the alert
// threshold. Delivery failures are logged, never surfaced to the caller.
func (s *budgetService) maybeAlert(ctx context.Context, budget *models.Budget) {
	if budget.Amount <= 0 {
		return
	}
	if float64(budget.Spent) < budget.AlertThreshold*float64(budget.Amount) {
		return
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", budget.UserID).Error; err != nil {
		logger.Get().Warnw("loading user for budget alert failed", "userId", budget.UserID, "error", err)
		return
	}

	alert := notify.BudgetAlert{
		Category:         budget.Category,
		Budgeted:         budget.Amount,
		Spent:            budget.Spent,
		ThresholdPercent: int(math.Round(budget.AlertThreshold * 100)),
	}
	if err := s.notifier.NotifyBudgetAlert(user.Email, alert); err != nil {
		logger.Get().Warnw("sending budget alert failed", "category", budget.Category, "error", err)
	}
}

// usagePercent returns spent as a percentage of amount, rounded and capped
// at 100. A zero amount reports zero.
func usagePercent(spent, amount int64) int {
	if amount <= 0 {
		return 0
	}
	pct := int(math.Round(float64(spent) / float64(amount) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

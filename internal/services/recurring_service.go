package services

import (
	"context"
	goerrors "errors"
	"time"

	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
)

// CreateRuleInput carries the fields for creating a recurring rule.
// Transfers cannot recur: a rule has no destination wallet, so only
// income and expense rules are accepted.
type CreateRuleInput struct {
	WalletID string
	Type     models.TransactionType
	Amount   int64
	Category string
	Cadence  models.Cadence
	StartsAt time.Time
	EndsAt   *time.Time
}

// UpdateRuleInput carries optional rule fields; nil fields are unchanged.
type UpdateRuleInput struct {
	WalletID *string
	Amount   *int64
	Category *string
	Cadence  *models.Cadence
	EndsAt   *time.Time
}

type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a recurring rule service backed by the given database.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// NextRunDate computes the run after from for a cadence. Weekly advances
// exactly seven days. Monthly advances one calendar month, clamping the day
// to the last valid day of the target month, so Jan 31 schedules Feb 28
// (or 29 in a leap year) rather than spilling into March.
func NextRunDate(from time.Time, cadence models.Cadence) (time.Time, error) {
	switch cadence {
	case models.CadenceWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.CadenceMonthly:
		y, m, d := from.Date()
		m++
		if last := daysIn(y, m); d > last {
			d = last
		}
		return time.Date(y, m, d, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location()), nil
	default:
		return time.Time{}, apperrors.ErrInvalidCadence
	}
}

// daysIn returns the number of days in a month. Month may be out of range;
// time.Date normalizes it.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (s *recurringService) Create(ctx context.Context, userID string, input CreateRuleInput) (*models.RecurringRule, error) {
	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionType, "Recurring rules support income and expense only")
	}
	switch input.Cadence {
	case models.CadenceWeekly, models.CadenceMonthly:
	default:
		return nil, apperrors.ErrInvalidCadence
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}

	// The rule's wallet must exist and belong to the user.
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ? AND user_id = ?", input.WalletID, userID).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrWalletNotFound
	}

	startsAt := input.StartsAt
	if startsAt.IsZero() {
		startsAt = time.Now()
	}

	rule := &models.RecurringRule{
		UserID:    userID,
		WalletID:  input.WalletID,
		Type:      input.Type,
		Amount:    input.Amount,
		Category:  input.Category,
		Cadence:   input.Cadence,
		NextRunAt: startsAt,
		EndsAt:    input.EndsAt,
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

func (s *recurringService) List(ctx context.Context, userID string) ([]models.RecurringRule, error) {
	var rules []models.RecurringRule
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("next_run_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

func (s *recurringService) Get(ctx context.Context, userID, ruleID string) (*models.RecurringRule, error) {
	var rule models.RecurringRule
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", ruleID, userID).
		First(&rule).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRuleNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

func (s *recurringService) Update(ctx context.Context, userID, ruleID string, input UpdateRuleInput) (*models.RecurringRule, error) {
	rule, err := s.Get(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}

	if input.WalletID != nil {
		// Same ownership check as Create; a rule must never point at a
		// wallet its user cannot spend from.
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Wallet{}).
			Where("id = ? AND user_id = ?", *input.WalletID, userID).
			Count(&count).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrWalletNotFound
		}
		rule.WalletID = *input.WalletID
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
		}
		rule.Amount = *input.Amount
	}
	if input.Category != nil {
		rule.Category = *input.Category
	}
	if input.EndsAt != nil {
		rule.EndsAt = input.EndsAt
	}
	if input.Cadence != nil && *input.Cadence != rule.Cadence {
		// Changing cadence reschedules from now rather than stretching or
		// shrinking the pending period.
		next, err := NextRunDate(time.Now(), *input.Cadence)
		if err != nil {
			return nil, err
		}
		rule.Cadence = *input.Cadence
		rule.NextRunAt = next
	}

	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

func (s *recurringService) Delete(ctx context.Context, userID, ruleID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", ruleID, userID).
		Delete(&models.RecurringRule{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRuleNotFound
	}
	return nil
}

func (s *recurringService) DueRules(ctx context.Context, now time.Time) ([]models.RecurringRule, error) {
	var rules []models.RecurringRule
	err := s.db.WithContext(ctx).
		Where("next_run_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("next_run_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

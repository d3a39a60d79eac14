package services

import (
	"context"
	goerrors "errors"
	"time"

	"gorm.io/gorm"

	"paisatrack/internal/classify"
	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/logger"
	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
)

// CreateTransactionInput carries the fields for recording a transaction.
// Amount is in minor units (paise) and must be positive; the sign of the
// balance effect is implied by Type.
type CreateTransactionInput struct {
	WalletID    string
	ToWalletID  *string
	Type        models.TransactionType
	Amount      int64
	Currency    string
	Category    string
	Subcategory string
	Merchant    string
	Notes       string
	Tags        []string
	Date        time.Time
}

// UpdateTransactionInput carries optional fields for editing an income or
// expense transaction; nil fields are unchanged.
type UpdateTransactionInput struct {
	WalletID    *string
	Type        *models.TransactionType
	Amount      *int64
	Category    *string
	Subcategory *string
	Merchant    *string
	Notes       *string
	Tags        *[]string
	Date        *time.Time
}

// TransactionFilter narrows transaction queries.
type TransactionFilter struct {
	WalletID  string
	Category  string
	Type      models.TransactionType
	StartDate *time.Time
	EndDate   *time.Time
	Page      pagination.PageRequest
}

// CategoryStat aggregates spending for one category.
type CategoryStat struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

// TransactionStats summarizes transactions over a filter window.
type TransactionStats struct {
	TotalIncome  int64          `json:"totalIncome"`
	TotalExpense int64          `json:"totalExpense"`
	Net          int64          `json:"net"`
	Count        int64          `json:"count"`
	ByCategory   []CategoryStat `json:"byCategory"`
}

type transactionService struct {
	db       *gorm.DB
	wallets  WalletServicer
	currency string
}

// NewTransactionService creates a transaction service. Wallet balance
// effects go through the wallet service so both layers share one notion
// of an atomic delta.
func NewTransactionService(db *gorm.DB, wallets WalletServicer, defaultCurrency string) TransactionServicer {
	return &transactionService{db: db, wallets: wallets, currency: defaultCurrency}
}

func (s *transactionService) Create(ctx context.Context, userID string, input CreateTransactionInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}

	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if input.ToWalletID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Destination wallet is only valid for transfers")
		}
		if input.Category == "" {
			input.Category = classify.Categorize(input.Merchant, input.Notes)
		}
		if len(input.Tags) == 0 {
			input.Tags = classify.SuggestTags(input.Category, input.Merchant, input.Notes)
		}
	case models.TransactionTypeTransfer:
		if input.ToWalletID == nil || *input.ToWalletID == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Transfer requires a destination wallet")
		}
		if *input.ToWalletID == input.WalletID {
			return nil, apperrors.ErrSameWalletTransfer
		}
		input.Category = ""
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}

	if input.Currency == "" {
		input.Currency = s.currency
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	txn := &models.Transaction{
		UserID:      userID,
		WalletID:    input.WalletID,
		ToWalletID:  input.ToWalletID,
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Merchant:    input.Merchant,
		Notes:       input.Notes,
		Tags:        input.Tags,
		Date:        input.Date,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyEffect(tx, txn, +1); err != nil {
			return err
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) List(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, pagination.PageMeta, error) {
	filter.Page.Normalize()

	query := s.filtered(s.db.WithContext(ctx), userID, filter).Session(&gorm.Session{})

	var total int64
	if err := query.Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return nil, pagination.PageMeta{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	err := query.
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(filter.Page)).
		Find(&txns).Error
	if err != nil {
		return nil, pagination.PageMeta{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return txns, pagination.NewPageMeta(total, filter.Page), nil
}

func (s *transactionService) Get(ctx context.Context, userID, txID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", txID, userID).
		First(&txn).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

func (s *transactionService) Update(ctx context.Context, userID, txID string, input UpdateTransactionInput) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.Where("id = ? AND user_id = ?", txID, userID).First(&txn).Error
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if txn.Type == models.TransactionTypeTransfer {
			return apperrors.ErrTransactionNotEditable
		}
		if input.Type != nil {
			switch *input.Type {
			case models.TransactionTypeIncome, models.TransactionTypeExpense:
			default:
				return apperrors.ErrInvalidTypeChange
			}
		}
		if input.Amount != nil && *input.Amount <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
		}

		// Undo the old balance effect before mutating, then apply the new one.
		if err := s.applyEffect(tx, &txn, -1); err != nil {
			return err
		}

		if input.WalletID != nil {
			txn.WalletID = *input.WalletID
		}
		if input.Type != nil {
			txn.Type = *input.Type
		}
		if input.Amount != nil {
			txn.Amount = *input.Amount
		}
		if input.Category != nil {
			txn.Category = *input.Category
		}
		if input.Subcategory != nil {
			txn.Subcategory = *input.Subcategory
		}
		if input.Merchant != nil {
			txn.Merchant = *input.Merchant
		}
		if input.Notes != nil {
			txn.Notes = *input.Notes
		}
		if input.Tags != nil {
			txn.Tags = *input.Tags
		}
		if input.Date != nil {
			txn.Date = *input.Date
		}

		if err := s.applyEffect(tx, &txn, +1); err != nil {
			return err
		}
		if err := tx.Save(&txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updated = &txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction and reverses its balance effect. A wallet
// that no longer exists is skipped with a warning; any other reversal
// failure aborts the delete and flags the ledger for reconciliation.
func (s *transactionService) Delete(ctx context.Context, userID, txID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.Where("id = ? AND user_id = ?", txID, userID).First(&txn).Error
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.applyEffect(tx, &txn, -1); err != nil {
			if isWalletNotFound(err) {
				logger.Get().Warnw("deleting transaction whose wallet is gone, skipping balance reversal",
					"transactionId", txn.ID, "walletId", txn.WalletID)
			} else {
				logger.Get().Errorw("balance reversal failed during delete, manual reconciliation required",
					"transactionId", txn.ID, "error", err)
				return apperrors.Wrap(apperrors.ErrReconciliationRequired, err)
			}
		}

		if err := tx.Delete(&txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *transactionService) Stats(ctx context.Context, userID string, filter TransactionFilter) (*TransactionStats, error) {
	base := s.filtered(s.db.WithContext(ctx), userID, filter).Session(&gorm.Session{})

	stats := &TransactionStats{}

	if err := base.Model(&models.Transaction{}).Count(&stats.Count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type typeTotal struct {
		Type  models.TransactionType
		Total int64
	}
	var totals []typeTotal
	err := base.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range totals {
		switch t.Type {
		case models.TransactionTypeIncome:
			stats.TotalIncome = t.Total
		case models.TransactionTypeExpense:
			stats.TotalExpense = t.Total
		}
	}
	stats.Net = stats.TotalIncome - stats.TotalExpense

	err = base.Model(&models.Transaction{}).
		Where("type = ?", models.TransactionTypeExpense).
		Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("category").
		Order("total DESC").
		Scan(&stats.ByCategory).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stats, nil
}

func (s *transactionService) MaterializeRule(tx *gorm.DB, rule *models.RecurringRule, runAt time.Time) (*models.Transaction, error) {
	txn := &models.Transaction{
		UserID:          rule.UserID,
		WalletID:        rule.WalletID,
		Type:            rule.Type,
		Amount:          rule.Amount,
		Currency:        s.currency,
		Category:        rule.Category,
		Date:            runAt,
		IsRecurring:     true,
		RecurringRuleID: &rule.ID,
	}

	if err := s.applyEffect(tx, txn, +1); err != nil {
		return nil, err
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// applyEffect applies (sign = +1) or reverses (sign = -1) a transaction's
// balance effect on the wallets it touches.
func (s *transactionService) applyEffect(tx *gorm.DB, txn *models.Transaction, sign int64) error {
	switch txn.Type {
	case models.TransactionTypeIncome:
		return s.wallets.ApplyDelta(tx, txn.UserID, txn.WalletID, sign*txn.Amount)
	case models.TransactionTypeExpense:
		return s.wallets.ApplyDelta(tx, txn.UserID, txn.WalletID, -sign*txn.Amount)
	case models.TransactionTypeTransfer:
		if err := s.wallets.ApplyDelta(tx, txn.UserID, txn.WalletID, -sign*txn.Amount); err != nil {
			return err
		}
		if err := s.wallets.ApplyDelta(tx, txn.UserID, *txn.ToWalletID, sign*txn.Amount); err != nil {
			if isWalletNotFound(err) {
				return apperrors.WithMessage(apperrors.ErrWalletNotFound, "Destination wallet not found")
			}
			return err
		}
		return nil
	default:
		return apperrors.ErrInvalidTransactionType
	}
}

func (s *transactionService) filtered(db *gorm.DB, userID string, filter TransactionFilter) *gorm.DB {
	query := db.Where("user_id = ?", userID)
	if filter.WalletID != "" {
		query = query.Where("wallet_id = ?", filter.WalletID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	return query
}

func isWalletNotFound(err error) bool {
	var appErr *apperrors.AppError
	return goerrors.As(err, &appErr) && appErr.Code == apperrors.ErrWalletNotFound.Code
}

// Package services contains the business logic layer.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
)

// UserServicer handles user registration, authentication and profiles.
type UserServicer interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.User, error)
}

// WalletServicer manages wallets and their balances.
type WalletServicer interface {
	Create(ctx context.Context, userID string, input CreateWalletInput) (*models.Wallet, error)
	List(ctx context.Context, userID string) ([]models.Wallet, error)
	Get(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	Update(ctx context.Context, userID, walletID string, input UpdateWalletInput) (*models.Wallet, error)
	Delete(ctx context.Context, userID, walletID string) error

	// ApplyDelta atomically adjusts a wallet's current balance inside the
	// given transaction handle. It reports ErrWalletNotFound when the wallet
	// does not exist or is not owned by the user.
	ApplyDelta(tx *gorm.DB, userID, walletID string, delta int64) error

	// Recompute rebuilds a wallet's current balance from its opening balance
	// and full transaction history.
	Recompute(tx *gorm.DB, userID, walletID string) error
}

// TransactionServicer records and queries money movements.
type TransactionServicer interface {
	Create(ctx context.Context, userID string, input CreateTransactionInput) (*models.Transaction, error)
	List(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, pagination.PageMeta, error)
	Get(ctx context.Context, userID, txID string) (*models.Transaction, error)
	Update(ctx context.Context, userID, txID string, input UpdateTransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, userID, txID string) error
	Stats(ctx context.Context, userID string, filter TransactionFilter) (*TransactionStats, error)

	// MaterializeRule spawns the transaction a recurring rule describes,
	// dated runAt, inside the given transaction handle.
	MaterializeRule(tx *gorm.DB, rule *models.RecurringRule, runAt time.Time) (*models.Transaction, error)
}

// RecurringServicer manages recurring rule templates.
type RecurringServicer interface {
	Create(ctx context.Context, userID string, input CreateRuleInput) (*models.RecurringRule, error)
	List(ctx context.Context, userID string) ([]models.RecurringRule, error)
	Get(ctx context.Context, userID, ruleID string) (*models.RecurringRule, error)
	Update(ctx context.Context, userID, ruleID string, input UpdateRuleInput) (*models.RecurringRule, error)
	Delete(ctx context.Context, userID, ruleID string) error

	// DueRules returns rules whose NextRunAt is at or before now and that
	// have not ended.
	DueRules(ctx context.Context, now time.Time) ([]models.RecurringRule, error)
}

// BudgetServicer manages budgets and spending summaries.
type BudgetServicer interface {
	Create(ctx context.Context, userID string, input CreateBudgetInput) (*models.Budget, error)
	List(ctx context.Context, userID string, month, year int) ([]models.Budget, error)
	Get(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	Update(ctx context.Context, userID, budgetID string, input UpdateBudgetInput) (*models.Budget, error)
	Delete(ctx context.Context, userID, budgetID string) error
	Summary(ctx context.Context, userID string, month, year int) ([]BudgetSummaryEntry, error)
}

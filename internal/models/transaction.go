package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "Income"
	TransactionTypeExpense  TransactionType = "Expense"
	TransactionTypeTransfer TransactionType = "Transfer"
)

// Transaction represents a single recorded money movement.
// Amount is always stored positive; its sign is implied by Type.
// Category is required for Income/Expense and absent for Transfer;
// ToWalletID is required for Transfer and absent otherwise.
type Transaction struct {
	Base
	UserID      string          `gorm:"not null;index:idx_tx_user_date" json:"userId"`
	WalletID    string          `gorm:"not null;index" json:"walletId"`
	ToWalletID  *string         `gorm:"index" json:"toWallet,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Currency    string          `gorm:"not null;default:'INR'" json:"currency"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Tags        []string        `gorm:"serializer:json" json:"tags,omitempty"`
	Date        time.Time       `gorm:"not null;index:idx_tx_user_date,sort:desc" json:"date"`

	IsRecurring     bool    `gorm:"default:false" json:"isRecurring"`
	RecurringRuleID *string `gorm:"index" json:"recurringRuleId,omitempty"`

	Wallet   Wallet  `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	ToWallet *Wallet `gorm:"foreignKey:ToWalletID" json:"toWalletDoc,omitempty"`
}

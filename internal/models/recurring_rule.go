package models

import "time"

// Cadence represents the recurrence interval for a recurring rule
type Cadence string

const (
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// RecurringRule is a template that periodically spawns transactions.
// NextRunAt is the authoritative next materialization time; it only moves
// forward, by exactly one cadence step per materialization.
type RecurringRule struct {
	Base
	UserID    string          `gorm:"not null;index" json:"userId"`
	WalletID  string          `gorm:"not null" json:"walletId"`
	Type      TransactionType `gorm:"not null" json:"type"`
	Amount    int64           `gorm:"type:bigint;not null" json:"amount"`
	Category  string          `gorm:"not null" json:"category"`
	Cadence   Cadence         `gorm:"not null" json:"cadence"`
	NextRunAt time.Time       `gorm:"not null;index" json:"nextRunAt"`
	EndsAt    *time.Time      `json:"endsAt,omitempty"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
}

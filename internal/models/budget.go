package models

// Budget is a per-category, per-month spending ceiling with an alert threshold.
// At most one budget exists per (user, category, month, year).
//
// Spent is a denormalized hint refreshed on budget mutation; alert evaluation
// and summaries recompute it from the transaction stream and never trust the
// stored value as ground truth.
type Budget struct {
	Base
	UserID         string  `gorm:"not null;uniqueIndex:idx_budget_period" json:"userId"`
	Category       string  `gorm:"not null;uniqueIndex:idx_budget_period" json:"category"`
	Amount         int64   `gorm:"type:bigint;not null" json:"amount"`
	Month          int     `gorm:"not null;uniqueIndex:idx_budget_period" json:"month"`
	Year           int     `gorm:"not null;uniqueIndex:idx_budget_period" json:"year"`
	AlertThreshold float64 `gorm:"not null;default:0.8" json:"alertThreshold"`
	Spent          int64   `gorm:"type:bigint;not null;default:0" json:"spent"`
}

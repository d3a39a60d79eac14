package models

// WalletType represents the kind of account a wallet tracks
type WalletType string

const (
	WalletTypeCash  WalletType = "Cash"
	WalletTypeBank  WalletType = "Bank"
	WalletTypeCard  WalletType = "Card"
	WalletTypeOther WalletType = "Other"
)

// Wallet is a named container of funds owned by a single user.
// CurrentBalance always equals OpeningBalance plus the net effect of every
// non-deleted transaction touching the wallet; it is only ever mutated
// through atomic balance deltas or a full recompute from history.
type Wallet struct {
	Base
	UserID         string     `gorm:"not null;index" json:"userId"`
	Name           string     `gorm:"not null" json:"name"`
	Type           WalletType `gorm:"not null;default:'Cash'" json:"type"`
	OpeningBalance int64      `gorm:"type:bigint;not null;default:0" json:"openingBalance"`
	CurrentBalance int64      `gorm:"type:bigint;not null;default:0" json:"currentBalance"`

	Transactions []Transaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}

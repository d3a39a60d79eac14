package models

// User represents the user model in the database
type User struct {
	Base
	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `json:"-"`
	GoogleID *string `gorm:"uniqueIndex" json:"-"` // OAuth users carry no password

	Wallets      []Wallet      `gorm:"foreignKey:UserID" json:"wallets,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}

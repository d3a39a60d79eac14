package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paisatrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestWallet creates a wallet with zero balances.
func CreateTestWallet(t *testing.T, db *gorm.DB, userID string) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, userID, 0)
}

// CreateTestWalletWithBalance creates a wallet with the given opening and
// current balance (in paise).
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Wallet %d", nextID()),
		Type:           models.WalletTypeCash,
		OpeningBalance: balance,
		CurrentBalance: balance,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestTransaction creates a transaction of the given type and amount
// (in paise), dated now. It does not touch wallet balances.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, walletID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		WalletID: walletID,
		Type:     txType,
		Amount:   amount,
		Currency: "INR",
		Category: "Others",
		Date:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for the given category and period.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, month, year int, amount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:         userID,
		Category:       category,
		Amount:         amount,
		Month:          month,
		Year:           year,
		AlertThreshold: 0.8,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestRule creates a recurring rule due at the given time.
func CreateTestRule(t *testing.T, db *gorm.DB, userID, walletID string, cadence models.Cadence, nextRunAt time.Time) *models.RecurringRule {
	t.Helper()

	rule := &models.RecurringRule{
		UserID:    userID,
		WalletID:  walletID,
		Type:      models.TransactionTypeExpense,
		Amount:    50000,
		Category:  "Rent",
		Cadence:   cadence,
		NextRunAt: nextRunAt,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring rule: %v", err)
	}
	return rule
}

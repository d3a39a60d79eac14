package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance checks a wallet's current balance in the database.
func AssertBalance(t *testing.T, db *gorm.DB, walletID string, want int64) {
	t.Helper()

	var wallet models.Wallet
	if err := db.First(&wallet, "id = ?", walletID).Error; err != nil {
		t.Fatalf("failed to load wallet %s: %v", walletID, err)
	}
	if wallet.CurrentBalance != want {
		t.Errorf("wallet %s balance = %d, want %d", walletID, wallet.CurrentBalance, want)
	}
}

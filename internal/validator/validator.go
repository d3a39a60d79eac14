// Package validator registers custom validation tags with Gin's binding validator.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"paisatrack/internal/models"
)

// Register installs custom validators on Gin's default binding engine.
// Call once during startup before handling requests.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("wallet_type", validWalletType)
	_ = v.RegisterValidation("transaction_type", validTransactionType)
	_ = v.RegisterValidation("cadence", validCadence)
}

func validWalletType(fl validator.FieldLevel) bool {
	switch models.WalletType(fl.Field().String()) {
	case models.WalletTypeCash, models.WalletTypeBank, models.WalletTypeCard, models.WalletTypeOther:
		return true
	}
	return false
}

func validTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
		return true
	}
	return false
}

func validCadence(fl validator.FieldLevel) bool {
	switch models.Cadence(fl.Field().String()) {
	case models.CadenceWeekly, models.CadenceMonthly:
		return true
	}
	return false
}

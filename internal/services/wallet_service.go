package services

import (
	"context"
	goerrors "errors"

	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
)

// CreateWalletInput carries the fields for creating a wallet.
type CreateWalletInput struct {
	Name           string
	Type           models.WalletType
	OpeningBalance int64
}

// UpdateWalletInput carries optional wallet fields; nil fields are unchanged.
type UpdateWalletInput struct {
	Name           *string
	Type           *models.WalletType
	OpeningBalance *int64
}

type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a wallet service backed by the given database.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

func (s *walletService) Create(ctx context.Context, userID string, input CreateWalletInput) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:         userID,
		Name:           input.Name,
		Type:           input.Type,
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
	}
	if wallet.Type == "" {
		wallet.Type = models.WalletTypeCash
	}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallet, nil
}

func (s *walletService) List(ctx context.Context, userID string) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallets, nil
}

func (s *walletService) Get(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", walletID, userID).
		First(&wallet).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrWalletNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

func (s *walletService) Update(ctx context.Context, userID, walletID string, input UpdateWalletInput) (*models.Wallet, error) {
	var updated *models.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		err := tx.Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrWalletNotFound
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if input.Name != nil {
			wallet.Name = *input.Name
		}
		if input.Type != nil {
			wallet.Type = *input.Type
		}
		openingChanged := input.OpeningBalance != nil && *input.OpeningBalance != wallet.OpeningBalance
		if openingChanged {
			wallet.OpeningBalance = *input.OpeningBalance
		}

		if err := tx.Save(&wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Editing the opening balance invalidates the running balance,
		// so rebuild it from history.
		if openingChanged {
			if err := s.Recompute(tx, userID, walletID); err != nil {
				return err
			}
			if err := tx.Where("id = ?", walletID).First(&wallet).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		updated = &wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a wallet that has never been used. A wallet referenced by
// any transaction, as source or transfer destination, cannot be deleted.
func (s *walletService) Delete(ctx context.Context, userID, walletID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		err := tx.Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrWalletNotFound
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var count int64
		err = tx.Model(&models.Transaction{}).
			Where("wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrWalletHasTransactions
		}

		if err := tx.Delete(&wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ApplyDelta adjusts the wallet balance with a single atomic increment so
// concurrent transactions never read-modify-write a stale balance.
func (s *walletService) ApplyDelta(tx *gorm.DB, userID, walletID string, delta int64) error {
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND user_id = ?", walletID, userID).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

// Recompute derives the current balance as:
//
//	opening + incomes - expenses - transfers out + transfers in
func (s *walletService) Recompute(tx *gorm.DB, userID, walletID string) error {
	var wallet models.Wallet
	err := tx.Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrWalletNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sum := func(dest *int64, query *gorm.DB) error {
		var total *int64
		if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if total != nil {
			*dest = *total
		}
		return nil
	}

	var incomes, expenses, transfersOut, transfersIn int64
	if err := sum(&incomes, tx.Model(&models.Transaction{}).
		Where("wallet_id = ? AND type = ?", walletID, models.TransactionTypeIncome)); err != nil {
		return err
	}
	if err := sum(&expenses, tx.Model(&models.Transaction{}).
		Where("wallet_id = ? AND type = ?", walletID, models.TransactionTypeExpense)); err != nil {
		return err
	}
	if err := sum(&transfersOut, tx.Model(&models.Transaction{}).
		Where("wallet_id = ? AND type = ?", walletID, models.TransactionTypeTransfer)); err != nil {
		return err
	}
	if err := sum(&transfersIn, tx.Model(&models.Transaction{}).
		Where("to_wallet_id = ? AND type = ?", walletID, models.TransactionTypeTransfer)); err != nil {
		return err
	}

	balance := wallet.OpeningBalance + incomes - expenses - transfersOut + transfersIn
	err = tx.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn("current_balance", balance).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

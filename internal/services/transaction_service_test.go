package services

import (
	"context"
	"testing"
	"time"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
	"paisatrack/internal/testutil"
)

func TestTransactionService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := NewWalletService(db)
	svc := NewTransactionService(db, wallets, "INR")
	user := testutil.CreateTestUser(t, db)

	t.Run("income increases wallet balance", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   5000,
			Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		if txn.Currency != "INR" {
			t.Errorf("expected default currency INR, got %s", txn.Currency)
		}
		testutil.AssertBalance(t, db, wallet.ID, 15000)
	})

	t.Run("expense decreases wallet balance", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Category: "Groceries",
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 7000)
	})

	t.Run("transfer conserves total balance", func(t *testing.T) {
		source := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)
		dest := testutil.CreateTestWalletWithBalance(t, db, user.ID, 2000)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   source.ID,
			ToWalletID: &dest.ID,
			Type:       models.TransactionTypeTransfer,
			Amount:     4000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, source.ID, 6000)
		testutil.AssertBalance(t, db, dest.ID, 6000)
	})

	t.Run("rejects transfer to the same wallet", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   wallet.ID,
			ToWalletID: &wallet.ID,
			Type:       models.TransactionTypeTransfer,
			Amount:     1000,
		})
		testutil.AssertAppError(t, err, apperrors.ErrSameWalletTransfer.Code)
		testutil.AssertBalance(t, db, wallet.ID, 10000)
	})

	t.Run("rejects transfer without destination", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeTransfer,
			Amount:   1000,
		})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("rejects destination wallet on expense", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		other := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   wallet.ID,
			ToWalletID: &other.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     1000,
		})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("failed transfer rolls back source debit", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)
		missing := "no-such-wallet"

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   wallet.ID,
			ToWalletID: &missing,
			Type:       models.TransactionTypeTransfer,
			Amount:     4000,
		})
		testutil.AssertAppError(t, err, apperrors.ErrWalletNotFound.Code)
		testutil.AssertBalance(t, db, wallet.ID, 10000)
	})

	t.Run("auto-categorizes when category is empty", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   45000,
			Merchant: "Zomato",
		})
		testutil.AssertNoError(t, err)

		if txn.Category != "Food & Dining" {
			t.Errorf("expected auto category Food & Dining, got %q", txn.Category)
		}
		if len(txn.Tags) == 0 {
			t.Error("expected suggested tags")
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   0,
		})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("rejects wallet owned by another user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, other.ID)

		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   1000,
			Category: "Salary",
		})
		testutil.AssertAppError(t, err, apperrors.ErrWalletNotFound.Code)
	})
}

func TestTransactionService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := NewWalletService(db)
	svc := NewTransactionService(db, wallets, "INR")
	user := testutil.CreateTestUser(t, db)

	t.Run("amount change re-applies the balance effect", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Category: "Groceries",
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 7000)

		newAmount := int64(5000)
		_, err = svc.Update(context.Background(), user.ID, txn.ID, UpdateTransactionInput{Amount: &newAmount})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 5000)
	})

	t.Run("income to expense flips the effect", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   2000,
			Category: "Salary",
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 12000)

		expense := models.TransactionTypeExpense
		_, err = svc.Update(context.Background(), user.ID, txn.ID, UpdateTransactionInput{Type: &expense})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 8000)
	})

	t.Run("moving to another wallet moves the effect", func(t *testing.T) {
		first := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)
		second := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: first.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   1000,
			Category: "Transport",
		})
		testutil.AssertNoError(t, err)

		_, err = svc.Update(context.Background(), user.ID, txn.ID, UpdateTransactionInput{WalletID: &second.ID})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, first.ID, 10000)
		testutil.AssertBalance(t, db, second.ID, 9000)
	})

	t.Run("transfers cannot be edited", func(t *testing.T) {
		source := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)
		dest := testutil.CreateTestWalletWithBalance(t, db, user.ID, 0)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   source.ID,
			ToWalletID: &dest.ID,
			Type:       models.TransactionTypeTransfer,
			Amount:     1000,
		})
		testutil.AssertNoError(t, err)

		amount := int64(2000)
		_, err = svc.Update(context.Background(), user.ID, txn.ID, UpdateTransactionInput{Amount: &amount})
		testutil.AssertAppError(t, err, apperrors.ErrTransactionNotEditable.Code)
	})

	t.Run("cannot change type to transfer", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		txn := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, 1000)

		transfer := models.TransactionTypeTransfer
		_, err := svc.Update(context.Background(), user.ID, txn.ID, UpdateTransactionInput{Type: &transfer})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidTypeChange.Code)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		amount := int64(100)
		_, err := svc.Update(context.Background(), user.ID, "missing", UpdateTransactionInput{Amount: &amount})
		testutil.AssertAppError(t, err, apperrors.ErrTransactionNotFound.Code)
	})
}

func TestTransactionService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := NewWalletService(db)
	svc := NewTransactionService(db, wallets, "INR")
	user := testutil.CreateTestUser(t, db)

	t.Run("reverses expense on delete", func(t *testing.T) {
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Category: "Groceries",
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, wallet.ID, 7000)

		testutil.AssertNoError(t, svc.Delete(context.Background(), user.ID, txn.ID))
		testutil.AssertBalance(t, db, wallet.ID, 10000)

		_, err = svc.Get(context.Background(), user.ID, txn.ID)
		testutil.AssertAppError(t, err, apperrors.ErrTransactionNotFound.Code)
	})

	t.Run("reverses both sides of a transfer", func(t *testing.T) {
		source := testutil.CreateTestWalletWithBalance(t, db, user.ID, 10000)
		dest := testutil.CreateTestWalletWithBalance(t, db, user.ID, 0)

		txn, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			WalletID:   source.ID,
			ToWalletID: &dest.ID,
			Type:       models.TransactionTypeTransfer,
			Amount:     4000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.Delete(context.Background(), user.ID, txn.ID))
		testutil.AssertBalance(t, db, source.ID, 10000)
		testutil.AssertBalance(t, db, dest.ID, 0)
	})

	t.Run("proceeds when the wallet no longer exists", func(t *testing.T) {
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		txn := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, 1000)

		// Hard-delete the wallet out from under the transaction.
		testutil.AssertNoError(t, db.Unscoped().Delete(&models.Wallet{}, "id = ?", wallet.ID).Error)

		testutil.AssertNoError(t, svc.Delete(context.Background(), user.ID, txn.ID))

		_, err := svc.Get(context.Background(), user.ID, txn.ID)
		testutil.AssertAppError(t, err, apperrors.ErrTransactionNotFound.Code)
	})
}

func TestTransactionService_ListAndStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := NewWalletService(db)
	svc := NewTransactionService(db, wallets, "INR")
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 100000)
	other := testutil.CreateTestWalletWithBalance(t, db, user.ID, 100000)

	seed := []CreateTransactionInput{
		{WalletID: wallet.ID, Type: models.TransactionTypeIncome, Amount: 50000, Category: "Salary", Date: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		{WalletID: wallet.ID, Type: models.TransactionTypeExpense, Amount: 12000, Category: "Groceries", Date: time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)},
		{WalletID: wallet.ID, Type: models.TransactionTypeExpense, Amount: 8000, Category: "Transport", Date: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)},
		{WalletID: other.ID, Type: models.TransactionTypeExpense, Amount: 6000, Category: "Groceries", Date: time.Date(2026, 7, 20, 18, 0, 0, 0, time.UTC)},
	}
	for _, input := range seed {
		_, err := svc.Create(context.Background(), user.ID, input)
		testutil.AssertNoError(t, err)
	}

	t.Run("filters by wallet", func(t *testing.T) {
		txns, meta, err := svc.List(context.Background(), user.ID, TransactionFilter{WalletID: wallet.ID})
		testutil.AssertNoError(t, err)

		if len(txns) != 3 || meta.Total != 3 {
			t.Errorf("expected 3 transactions, got %d (total %d)", len(txns), meta.Total)
		}
	})

	t.Run("filters by category and date window", func(t *testing.T) {
		start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)
		txns, _, err := svc.List(context.Background(), user.ID, TransactionFilter{
			Category:  "Groceries",
			StartDate: &start,
			EndDate:   &end,
		})
		testutil.AssertNoError(t, err)

		if len(txns) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(txns))
		}
		if txns[0].Amount != 12000 {
			t.Errorf("expected the August groceries entry, got amount %d", txns[0].Amount)
		}
	})

	t.Run("orders newest first and paginates", func(t *testing.T) {
		txns, meta, err := svc.List(context.Background(), user.ID, TransactionFilter{
			Page: pagination.PageRequest{Page: 1, Limit: 2},
		})
		testutil.AssertNoError(t, err)

		if len(txns) != 2 || meta.Pages != 2 {
			t.Fatalf("expected 2 of 4 transactions over 2 pages, got %d (pages %d)", len(txns), meta.Pages)
		}
		if txns[0].Date.Before(txns[1].Date) {
			t.Error("expected newest-first ordering")
		}
	})

	t.Run("stats aggregate filtered window", func(t *testing.T) {
		stats, err := svc.Stats(context.Background(), user.ID, TransactionFilter{WalletID: wallet.ID})
		testutil.AssertNoError(t, err)

		if stats.TotalIncome != 50000 || stats.TotalExpense != 20000 || stats.Net != 30000 {
			t.Errorf("unexpected totals: %+v", stats)
		}
		if len(stats.ByCategory) != 2 {
			t.Fatalf("expected 2 expense categories, got %d", len(stats.ByCategory))
		}
		if stats.ByCategory[0].Category != "Groceries" {
			t.Errorf("expected Groceries to lead by spend, got %s", stats.ByCategory[0].Category)
		}
	})
}

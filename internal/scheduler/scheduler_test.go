package scheduler

import (
	"context"
	"testing"
	"time"

	"paisatrack/internal/models"
	"paisatrack/internal/services"
	"paisatrack/internal/testutil"
)

func TestProcessDueRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := services.NewWalletService(db)
	txs := services.NewTransactionService(db, wallets, "INR")
	rules := services.NewRecurringService(db)
	sched := New(db, rules, txs)

	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 1000000)

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	runAt := now.Add(-2 * time.Hour)

	t.Run("materializes a due rule exactly once", func(t *testing.T) {
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceMonthly, runAt)

		testutil.AssertNoError(t, sched.ProcessDueRules(context.Background(), now))

		var spawned []models.Transaction
		err := db.Where("recurring_rule_id = ?", rule.ID).Find(&spawned).Error
		testutil.AssertNoError(t, err)
		if len(spawned) != 1 {
			t.Fatalf("expected 1 materialized transaction, got %d", len(spawned))
		}

		txn := spawned[0]
		if !txn.IsRecurring || txn.Amount != rule.Amount || txn.Category != rule.Category {
			t.Errorf("unexpected materialized transaction: %+v", txn)
		}
		if !txn.Date.Equal(runAt) {
			t.Errorf("expected transaction dated %v, got %v", runAt, txn.Date)
		}

		// Rule expense of 50000 applied once.
		testutil.AssertBalance(t, db, wallet.ID, 950000)

		var reloaded models.RecurringRule
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", rule.ID).Error)
		// Aug 31 advances to Sep 30, the last valid day of September.
		want := time.Date(2026, 9, 30, 8, 0, 0, 0, time.UTC)
		if !reloaded.NextRunAt.Equal(want) {
			t.Errorf("expected next run advanced to %v, got %v", want, reloaded.NextRunAt)
		}

		// A second sweep at the same instant must be a no-op.
		testutil.AssertNoError(t, sched.ProcessDueRules(context.Background(), now))
		err = db.Where("recurring_rule_id = ?", rule.ID).Find(&spawned).Error
		testutil.AssertNoError(t, err)
		if len(spawned) != 1 {
			t.Errorf("expected still 1 transaction after second sweep, got %d", len(spawned))
		}
		testutil.AssertBalance(t, db, wallet.ID, 950000)
	})

	t.Run("ignores rules that are not yet due", func(t *testing.T) {
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceWeekly, now.Add(time.Hour))

		testutil.AssertNoError(t, sched.ProcessDueRules(context.Background(), now))

		var spawned []models.Transaction
		err := db.Where("recurring_rule_id = ?", rule.ID).Find(&spawned).Error
		testutil.AssertNoError(t, err)
		if len(spawned) != 0 {
			t.Errorf("expected no transactions for a future rule, got %d", len(spawned))
		}
	})

	t.Run("one failing rule does not block the rest", func(t *testing.T) {
		// A rule pointing at a deleted wallet fails to materialize.
		deadWallet := testutil.CreateTestWallet(t, db, user.ID)
		broken := testutil.CreateTestRule(t, db, user.ID, deadWallet.ID, models.CadenceWeekly, runAt)
		testutil.AssertNoError(t, db.Unscoped().Delete(&models.Wallet{}, "id = ?", deadWallet.ID).Error)

		healthy := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceWeekly, runAt)

		testutil.AssertNoError(t, sched.ProcessDueRules(context.Background(), now))

		var spawned []models.Transaction
		err := db.Where("recurring_rule_id = ?", healthy.ID).Find(&spawned).Error
		testutil.AssertNoError(t, err)
		if len(spawned) != 1 {
			t.Errorf("expected healthy rule materialized, got %d transactions", len(spawned))
		}

		err = db.Where("recurring_rule_id = ?", broken.ID).Find(&spawned).Error
		testutil.AssertNoError(t, err)
		if len(spawned) != 0 {
			t.Errorf("expected broken rule to spawn nothing, got %d", len(spawned))
		}
	})
}

package services

import (
	"context"
	"testing"
	"time"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
	"paisatrack/internal/testutil"
)

func TestNextRunDate(t *testing.T) {
	tests := []struct {
		name    string
		from    time.Time
		cadence models.Cadence
		want    time.Time
	}{
		{
			name:    "weekly adds seven days",
			from:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceWeekly,
			want:    time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "weekly crosses month boundary",
			from:    time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceWeekly,
			want:    time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly keeps the day of month",
			from:    time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceMonthly,
			want:    time.Date(2026, 5, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "jan 31 clamps to feb 28",
			from:    time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceMonthly,
			want:    time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "jan 31 clamps to feb 29 in a leap year",
			from:    time.Date(2028, 1, 31, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceMonthly,
			want:    time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "march 31 clamps to april 30",
			from:    time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceMonthly,
			want:    time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "december wraps to january",
			from:    time.Date(2026, 12, 20, 9, 0, 0, 0, time.UTC),
			cadence: models.CadenceMonthly,
			want:    time.Date(2027, 1, 20, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRunDate(tt.from, tt.cadence)
			testutil.AssertNoError(t, err)
			if !got.Equal(tt.want) {
				t.Errorf("NextRunDate(%v, %s) = %v, want %v", tt.from, tt.cadence, got, tt.want)
			}
		})
	}

	t.Run("invalid cadence", func(t *testing.T) {
		_, err := NextRunDate(time.Now(), models.Cadence("daily"))
		testutil.AssertAppError(t, err, apperrors.ErrInvalidCadence.Code)
	})
}

func TestRecurringService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db)
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)

	t.Run("creates an expense rule", func(t *testing.T) {
		starts := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		rule, err := svc.Create(context.Background(), user.ID, CreateRuleInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   150000,
			Category: "Rent",
			Cadence:  models.CadenceMonthly,
			StartsAt: starts,
		})
		testutil.AssertNoError(t, err)

		if !rule.NextRunAt.Equal(starts) {
			t.Errorf("expected first run at %v, got %v", starts, rule.NextRunAt)
		}
	})

	t.Run("rejects transfer rules", func(t *testing.T) {
		_, err := svc.Create(context.Background(), user.ID, CreateRuleInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeTransfer,
			Amount:   1000,
			Category: "Move",
			Cadence:  models.CadenceWeekly,
		})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidTransactionType.Code)
	})

	t.Run("rejects unknown cadence", func(t *testing.T) {
		_, err := svc.Create(context.Background(), user.ID, CreateRuleInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   1000,
			Category: "Rent",
			Cadence:  models.Cadence("daily"),
		})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidCadence.Code)
	})

	t.Run("rejects unknown wallet", func(t *testing.T) {
		_, err := svc.Create(context.Background(), user.ID, CreateRuleInput{
			WalletID: "missing",
			Type:     models.TransactionTypeExpense,
			Amount:   1000,
			Category: "Rent",
			Cadence:  models.CadenceWeekly,
		})
		testutil.AssertAppError(t, err, apperrors.ErrWalletNotFound.Code)
	})
}

func TestRecurringService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db)
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)

	t.Run("cadence change reschedules from now", func(t *testing.T) {
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceMonthly,
			time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC))

		weekly := models.CadenceWeekly
		before := time.Now()
		updated, err := svc.Update(context.Background(), user.ID, rule.ID, UpdateRuleInput{Cadence: &weekly})
		testutil.AssertNoError(t, err)

		wantEarliest := before.AddDate(0, 0, 7).Add(-time.Minute)
		wantLatest := time.Now().AddDate(0, 0, 7).Add(time.Minute)
		if updated.NextRunAt.Before(wantEarliest) || updated.NextRunAt.After(wantLatest) {
			t.Errorf("expected next run roughly a week from now, got %v", updated.NextRunAt)
		}
	})

	t.Run("rejects moving a rule to an unknown wallet", func(t *testing.T) {
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceMonthly,
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))

		missing := "no-such-wallet"
		_, err := svc.Update(context.Background(), user.ID, rule.ID, UpdateRuleInput{WalletID: &missing})
		testutil.AssertAppError(t, err, apperrors.ErrWalletNotFound.Code)
	})

	t.Run("rejects moving a rule to another user's wallet", func(t *testing.T) {
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceMonthly,
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))

		other := testutil.CreateTestUser(t, db)
		foreign := testutil.CreateTestWallet(t, db, other.ID)

		_, err := svc.Update(context.Background(), user.ID, rule.ID, UpdateRuleInput{WalletID: &foreign.ID})
		testutil.AssertAppError(t, err, apperrors.ErrWalletNotFound.Code)
	})

	t.Run("amount change keeps the schedule", func(t *testing.T) {
		next := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		rule := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceMonthly, next)

		amount := int64(99999)
		updated, err := svc.Update(context.Background(), user.ID, rule.ID, UpdateRuleInput{Amount: &amount})
		testutil.AssertNoError(t, err)

		if !updated.NextRunAt.Equal(next) {
			t.Errorf("expected schedule unchanged, got %v", updated.NextRunAt)
		}
		if updated.Amount != 99999 {
			t.Errorf("expected amount 99999, got %d", updated.Amount)
		}
	})
}

func TestRecurringService_DueRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db)
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	due := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceWeekly, now.Add(-time.Hour))
	testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceWeekly, now.Add(time.Hour))

	ended := testutil.CreateTestRule(t, db, user.ID, wallet.ID, models.CadenceWeekly, now.Add(-time.Hour))
	endsAt := now.Add(-24 * time.Hour)
	ended.EndsAt = &endsAt
	testutil.AssertNoError(t, db.Save(ended).Error)

	rules, err := svc.DueRules(context.Background(), now)
	testutil.AssertNoError(t, err)

	if len(rules) != 1 {
		t.Fatalf("expected exactly 1 due rule, got %d", len(rules))
	}
	if rules[0].ID != due.ID {
		t.Errorf("expected rule %s, got %s", due.ID, rules[0].ID)
	}
}

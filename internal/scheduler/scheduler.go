// Package scheduler materializes due recurring rules on a cron cadence.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/logger"
	"paisatrack/internal/models"
	"paisatrack/internal/services"
)

// errAlreadyAdvanced signals that another worker advanced the rule first.
var errAlreadyAdvanced = apperrors.WithMessage(apperrors.ErrInternalServer, "rule already advanced")

// Scheduler runs a periodic sweep over recurring rules and spawns the
// transactions they describe. Ticks never overlap: a tick that fires while
// the previous one is still running is skipped.
type Scheduler struct {
	db      *gorm.DB
	rules   services.RecurringServicer
	txs     services.TransactionServicer
	cron    *cron.Cron
	running atomic.Bool
	timeout time.Duration
}

// New creates a scheduler over the given services.
func New(db *gorm.DB, rules services.RecurringServicer, txs services.TransactionServicer) *Scheduler {
	return &Scheduler{
		db:      db,
		rules:   rules,
		txs:     txs,
		cron:    cron.New(),
		timeout: 10 * time.Minute,
	}
}

// Start begins ticking on the given cron spec, e.g. "0 * * * *" for hourly.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	logger.Get().Infow("recurring rule scheduler started", "spec", spec)
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Infow("recurring rule scheduler stopped")
}

func (s *Scheduler) tick() {
	if !s.running.CompareAndSwap(false, true) {
		logger.Get().Warnw("scheduler tick skipped, previous tick still running")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.ProcessDueRules(ctx, time.Now()); err != nil {
		logger.Get().Errorw("processing due rules failed", "error", err)
	}
}

// ProcessDueRules materializes every rule due at or before now. Each rule
// is handled in its own database transaction that first advances NextRunAt
// with a compare-and-swap, so a rule is materialized at most once per
// period even if two instances sweep concurrently. One failing rule does
// not block the rest.
func (s *Scheduler) ProcessDueRules(ctx context.Context, now time.Time) error {
	due, err := s.rules.DueRules(ctx, now)
	if err != nil {
		return err
	}

	var processed, skipped, failed int
	for i := range due {
		rule := due[i]
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.processRule(ctx, &rule)
		switch {
		case err == nil:
			processed++
		case err == errAlreadyAdvanced:
			skipped++
		default:
			failed++
			logger.Get().Errorw("materializing recurring rule failed",
				"ruleId", rule.ID, "error", err)
		}
	}

	if processed > 0 || skipped > 0 || failed > 0 {
		logger.Get().Infow("recurring rule sweep finished",
			"due", len(due), "processed", processed, "skipped", skipped, "failed", failed)
	}
	return nil
}

func (s *Scheduler) processRule(ctx context.Context, rule *models.RecurringRule) error {
	next, err := services.NextRunDate(rule.NextRunAt, rule.Cadence)
	if err != nil {
		return err
	}

	runAt := rule.NextRunAt
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Advance only if NextRunAt is still what we read. Losing the race
		// means another sweep owns this period.
		res := tx.Model(&models.RecurringRule{}).
			Where("id = ? AND next_run_at = ?", rule.ID, runAt).
			Update("next_run_at", next)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadyAdvanced
		}

		if _, err := s.txs.MaterializeRule(tx, rule, runAt); err != nil {
			return err
		}
		return nil
	})
}

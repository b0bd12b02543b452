// Package jobs runs the periodic wallet maintenance batches.
package jobs

import (
	"context"
	"fmt"
	"time"

	"clanwallet/config"
	"clanwallet/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job names, also used as metric labels
const (
	JobMonthlyTax          = "monthly_tax"
	JobRefundGiveaways     = "refund_expired_giveaways"
	JobReconcileWithdrawal = "reconcile_withdrawals"
)

// JobMetrics records job outcomes
type JobMetrics interface {
	RecordJobRun(job string, success bool)
}

// Scheduler runs the tax, giveaway refund and withdrawal reconciliation jobs on cron schedules
type Scheduler struct {
	cron        *cron.Cron
	cfg         *config.Config
	location    *time.Location
	tax         service.TaxService
	giveaways   service.GiveawayService
	withdrawals service.WithdrawalService
	metrics     JobMetrics
	now         func() time.Time
}

// NewScheduler creates a scheduler in the configured timezone
func NewScheduler(cfg *config.Config, tax service.TaxService, giveaways service.GiveawayService, withdrawals service.WithdrawalService, metrics JobMetrics) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone %q: %w", cfg.SchedulerTimezone, err)
	}

	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Scheduler{
		cron:        c,
		cfg:         cfg,
		location:    loc,
		tax:         tax,
		giveaways:   giveaways,
		withdrawals: withdrawals,
		metrics:     metrics,
		now:         time.Now,
	}, nil
}

// Start registers the enabled jobs and starts the scheduler. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.MonthlyTaxEnabled {
		if _, err := s.cron.AddFunc(s.cfg.TaxCron, func() { s.RunMonthlyTax(ctx) }); err != nil {
			return fmt.Errorf("invalid TAX_CRON %q: %w", s.cfg.TaxCron, err)
		}
	}
	if _, err := s.cron.AddFunc(s.cfg.RefundCron, func() { s.RunGiveawayRefunds(ctx) }); err != nil {
		return fmt.Errorf("invalid REFUND_CRON %q: %w", s.cfg.RefundCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, func() { s.RunWithdrawalReconciliation(ctx) }); err != nil {
		return fmt.Errorf("invalid RECONCILE_CRON %q: %w", s.cfg.ReconcileCron, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone":   s.location.String(),
		"jobs":       len(s.cron.Entries()),
		"monthlyTax": s.cfg.MonthlyTaxEnabled,
	}).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Scheduler stopped")
}

// RunMonthlyTax deducts the monthly tax for the current month in the scheduler's timezone
func (s *Scheduler) RunMonthlyTax(ctx context.Context) {
	run, err := s.tax.DeductMonthlyTax(ctx, s.now().In(s.location))
	s.record(JobMonthlyTax, err)
	if err != nil {
		log.WithError(err).Error("Monthly tax job failed")
		return
	}

	log.WithFields(log.Fields{
		"period":     run.Period,
		"charged":    run.WalletsCharged,
		"skipped":    run.WalletsSkipped,
		"collected":  run.TotalCollected,
		"alreadyRan": run.AlreadyRan,
	}).Info("Monthly tax job finished")
}

// RunGiveawayRefunds refunds the unredeemed value of expired giveaways
func (s *Scheduler) RunGiveawayRefunds(ctx context.Context) {
	refunded, err := s.giveaways.RefundExpired(ctx)
	s.record(JobRefundGiveaways, err)
	if err != nil {
		log.WithError(err).WithField("refunded", refunded).Error("Giveaway refund job failed")
		return
	}
	if refunded > 0 {
		log.WithField("refunded", refunded).Info("Refunded expired giveaways")
	}
}

// RunWithdrawalReconciliation re-applies the wallet debit of confirmed withdrawals
func (s *Scheduler) RunWithdrawalReconciliation(ctx context.Context) {
	reconciled, err := s.withdrawals.ReconcileWithdrawals(ctx)
	s.record(JobReconcileWithdrawal, err)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"reconciled": reconciled,
			"critical":   true,
		}).Error("Withdrawal reconciliation job failed")
		return
	}
	if reconciled > 0 {
		log.WithField("reconciled", reconciled).Warn("Reconciled withdrawals with missing wallet debits")
	}
}

func (s *Scheduler) record(job string, err error) {
	if s.metrics != nil {
		s.metrics.RecordJobRun(job, err == nil)
	}
}

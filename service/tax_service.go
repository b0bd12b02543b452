package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clanwallet/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// maxRecordedFailures caps the per-wallet failures kept in a run summary
const maxRecordedFailures = 20

type taxService struct {
	uowFactory UnitOfWorkFactory
}

// NewTaxService creates a new tax service
func NewTaxService(uowFactory UnitOfWorkFactory) TaxService {
	return &taxService{
		uowFactory: uowFactory,
	}
}

type taxPlan struct {
	setting  *models.TaxSetting
	existing *models.TaxRun
	wallets  []*models.Wallet
	below    int
}

func (s *taxService) plan(ctx context.Context, period string) (*taxPlan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.TaxRepository().GetRunByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax run: %w", err)
	}
	if existing != nil {
		return &taxPlan{existing: existing}, nil
	}

	setting, err := uow.TaxRepository().GetLatestSetting(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax setting: %w", err)
	}
	if setting == nil || !setting.Amount.IsPositive() {
		return nil, ErrTaxNotConfigured
	}

	wallets, err := uow.WalletRepository().GetWithBalanceAtLeast(ctx, setting.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to get taxable wallets: %w", err)
	}
	below, err := uow.WalletRepository().CountWithBalanceBelow(ctx, setting.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to count untaxable wallets: %w", err)
	}

	return &taxPlan{setting: setting, wallets: wallets, below: below}, nil
}

func (s *taxService) DeductMonthlyTax(ctx context.Context, now time.Time) (*models.TaxRun, error) {
	period := models.TaxPeriod(now)

	plan, err := s.plan(ctx, period)
	if err != nil {
		return nil, err
	}
	if plan.existing != nil {
		plan.existing.AlreadyRan = true
		log.WithField("period", period).Info("Monthly tax already ran for period")
		return plan.existing, nil
	}

	startedAt := time.Now()
	amount := plan.setting.Amount
	reference := models.TaxReference(period)

	var (
		charged        int
		alreadyCharged int
		skipped        = plan.below
		total          = decimal.Zero
		failures       []map[string]any
		failureCount   int
	)

	for _, wallet := range plan.wallets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		applied, err := s.chargeWallet(ctx, wallet, amount, reference, period)
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			// Balance dropped below the tax amount since the wallet was listed
			skipped++
		case err != nil:
			failureCount++
			if len(failures) < maxRecordedFailures {
				failures = append(failures, map[string]any{
					"wallet_id": wallet.ID.String(),
					"error":     err.Error(),
				})
			}
			log.WithError(err).WithFields(log.Fields{
				"walletID": wallet.ID,
				"period":   period,
			}).Error("Failed to deduct monthly tax from wallet")
		case !applied:
			alreadyCharged++
		default:
			charged++
			total = total.Add(amount)
		}
	}

	run := &models.TaxRun{
		Period:         period,
		TaxAmount:      amount,
		WalletsCharged: charged,
		WalletsSkipped: skipped,
		TotalCollected: total,
		ExecutionSummary: map[string]interface{}{
			"already_charged": alreadyCharged,
			"failed":          failureCount,
			"failures":        failures,
			"started_at":      startedAt.UTC(),
			"duration_ms":     time.Since(startedAt).Milliseconds(),
		},
	}

	fields := log.Fields{
		"period":         period,
		"taxAmount":      amount,
		"charged":        charged,
		"alreadyCharged": alreadyCharged,
		"skipped":        skipped,
		"failed":         failureCount,
		"totalCollected": total,
	}

	// An incomplete run is not recorded so that a rerun picks up the failed wallets
	if failureCount > 0 {
		log.WithFields(fields).Error("Monthly tax run incomplete")
		return run, fmt.Errorf("monthly tax for %s incomplete: %d of %d wallets failed", period, failureCount, len(plan.wallets))
	}

	recorded, err := s.recordRun(ctx, run)
	if err != nil {
		return nil, err
	}
	if !recorded {
		run.AlreadyRan = true
	}

	log.WithFields(fields).Info("Monthly tax run completed")
	return run, nil
}

// chargeWallet debits one wallet and books the earnings row in its own transaction.
// Returns false when the wallet was already charged for the period.
func (s *taxService) chargeWallet(ctx context.Context, wallet *models.Wallet, amount decimal.Decimal, reference, period string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry, err := uow.WalletRepository().ApplyChange(ctx, wallet.ID, amount.Neg(), models.TransactionTypeTaxDeduction, reference, map[string]any{
		"period": period,
	})
	if err != nil {
		return false, err
	}
	if !entry.Applied {
		return false, nil
	}

	txID := entry.TransactionID
	if err := uow.EarningsRepository().Record(ctx, &models.Earning{
		TransactionID: &txID,
		Amount:        amount,
		Source:        models.EarningSourceTax,
	}); err != nil {
		return false, fmt.Errorf("failed to record tax earnings: %w", err)
	}

	RecordBalanceChange(uow, wallet.UserID, entry, amount.Neg(), models.TransactionTypeTaxDeduction, reference)

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (s *taxService) recordRun(ctx context.Context, run *models.TaxRun) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	created, err := uow.TaxRepository().CreateRun(ctx, run)
	if err != nil {
		return false, fmt.Errorf("failed to record tax run: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

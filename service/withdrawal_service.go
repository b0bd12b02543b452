package service

import (
	"context"
	"fmt"
	"time"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// reconcileBatchSize caps how many intents one reconciliation pass re-applies
const reconcileBatchSize = 100

type withdrawalService struct {
	uowFactory     UnitOfWorkFactory
	gateway        PaymentGateway
	recipients     *recipientResolver
	reconcileGrace time.Duration
	now            func() time.Time
}

// NewWithdrawalService creates a new withdrawal service.
// reconcileGrace is how long a confirmed transfer may wait for its wallet debit
// before the reconciliation pass picks it up.
func NewWithdrawalService(uowFactory UnitOfWorkFactory, gateway PaymentGateway, reconcileGrace time.Duration) WithdrawalService {
	return &withdrawalService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		recipients:     &recipientResolver{uowFactory: uowFactory, gateway: gateway},
		reconcileGrace: reconcileGrace,
		now:            time.Now,
	}
}

func (s *withdrawalService) CreateTransferRecipient(ctx context.Context, userID uuid.UUID, details models.BankDetails) (*paystack.Recipient, error) {
	return s.recipients.create(ctx, userID, details)
}

func (s *withdrawalService) CheckAvailability(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalAvailability, error) {
	availability := &models.WithdrawalAvailability{
		Amount:         amount,
		Fee:            WithdrawalFee(amount),
		TotalDeduction: WithdrawalTotal(amount),
		MinAmount:      MinWithdrawal,
		MaxAmount:      MaxWithdrawal,
	}

	if err := ValidateWithdrawalAmount(amount); err != nil {
		availability.Reason = err.Error()
		return availability, nil
	}

	wallet, err := s.loadWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		availability.WalletBalance = wallet.Balance
	}
	if availability.WalletBalance.LessThan(availability.TotalDeduction) {
		availability.Reason = ErrInsufficientFunds.Error()
		return availability, nil
	}

	balances, err := s.gateway.GetBalance(ctx)
	if err != nil {
		return nil, &ProviderError{Op: "get balance", Err: err}
	}
	for _, b := range balances {
		if b.Currency == models.DefaultCurrency {
			availability.ProviderBalance = paystack.FromKobo(b.Balance)
		}
	}
	if availability.ProviderBalance.LessThan(amount) {
		availability.Reason = "Withdrawals are temporarily unavailable, please try again later"
		return availability, nil
	}

	availability.Available = true
	return availability, nil
}

func (s *withdrawalService) loadWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

func (s *withdrawalService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, recipientCode string) (*models.Withdrawal, error) {
	if err := ValidateWithdrawalAmount(amount); err != nil {
		return nil, err
	}
	fee := WithdrawalFee(amount)
	total := amount.Add(fee)

	// Pre-flight checks; nothing has been written yet
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	profile, err := uow.ProfileRepository().GetByID(ctx, userID)
	if err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	uow.Rollback()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if wallet == nil || wallet.Balance.LessThan(total) {
		return nil, ErrInsufficientFunds
	}

	code, err := s.recipients.resolve(ctx, profile, recipientCode)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	withdrawal := &models.Withdrawal{
		ID:            id,
		UserID:        userID,
		WalletID:      wallet.ID,
		Amount:        amount,
		Fee:           fee,
		Reference:     "withdrawal_" + id.String(),
		RecipientCode: code,
		Status:        models.WithdrawalStatusPending,
	}

	if err := s.createIntent(ctx, withdrawal); err != nil {
		return nil, err
	}

	transfer, err := s.gateway.InitiateTransfer(ctx, paystack.TransferRequest{
		Amount:    paystack.ToKobo(amount),
		Recipient: code,
		Reference: withdrawal.Reference,
		Reason:    "Clan wallet withdrawal",
		Currency:  models.DefaultCurrency,
	})
	if err != nil {
		reason := err.Error()
		if tErr := s.transition(ctx, withdrawal, models.WithdrawalStatusFailed, &reason); tErr != nil {
			log.WithError(tErr).WithField("withdrawalID", withdrawal.ID).Error("Failed to mark withdrawal as failed")
		}
		return nil, &ProviderError{Op: "initiate transfer", Err: err}
	}

	withdrawal.TransferCode = &transfer.TransferCode
	if err := s.transition(ctx, withdrawal, models.WithdrawalStatusProviderConfirmed, nil); err != nil {
		// The ledger step below still runs; reconciliation covers a failure there too
		log.WithError(err).WithFields(log.Fields{
			"withdrawalID": withdrawal.ID,
			"transferCode": transfer.TransferCode,
			"critical":     true,
		}).Error("Failed to record provider confirmation for withdrawal")
	}

	if err := s.applyLedger(ctx, withdrawal); err != nil {
		return withdrawal, err
	}

	log.WithFields(log.Fields{
		"withdrawalID": withdrawal.ID,
		"userID":       userID,
		"amount":       amount,
		"fee":          fee,
	}).Info("Withdrawal completed")

	return withdrawal, nil
}

func (s *withdrawalService) createIntent(ctx context.Context, withdrawal *models.Withdrawal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.WithdrawalRepository().Create(ctx, withdrawal); err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		WithdrawalID: withdrawal.ID,
		UserID:       withdrawal.UserID,
		Amount:       withdrawal.Amount,
		NewStatus:    withdrawal.Status,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// transition stores a new status on the intent in its own transaction
func (s *withdrawalService) transition(ctx context.Context, withdrawal *models.Withdrawal, status models.WithdrawalStatus, reason *string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	updated := *withdrawal
	updated.Status = status
	updated.FailureReason = reason
	if err := uow.WithdrawalRepository().UpdateStatus(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		WithdrawalID: withdrawal.ID,
		UserID:       withdrawal.UserID,
		Amount:       withdrawal.Amount,
		OldStatus:    withdrawal.Status,
		NewStatus:    status,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	*withdrawal = updated
	return nil
}

// applyLedger debits amount plus fee, books the fee as earnings and marks the intent
// applied, all in one transaction. Re-running it for the same intent is a no-op debit.
func (s *withdrawalService) applyLedger(ctx context.Context, withdrawal *models.Withdrawal) error {
	err := s.applyLedgerTx(ctx, withdrawal)
	if err == nil {
		return nil
	}

	log.WithError(err).WithFields(log.Fields{
		"withdrawalID": withdrawal.ID,
		"userID":       withdrawal.UserID,
		"reference":    withdrawal.Reference,
		"amount":       withdrawal.Amount,
		"fee":          withdrawal.Fee,
		"critical":     true,
	}).Error("Provider transfer succeeded but wallet was not debited")

	if withdrawal.Status != models.WithdrawalStatusFailedToUpdateWallet {
		reason := err.Error()
		if tErr := s.transition(ctx, withdrawal, models.WithdrawalStatusFailedToUpdateWallet, &reason); tErr != nil {
			log.WithError(tErr).WithField("withdrawalID", withdrawal.ID).Error("Failed to mark withdrawal for reconciliation")
		}
	}

	return fmt.Errorf("%w: %v", ErrFailedToUpdateWallet, err)
}

func (s *withdrawalService) applyLedgerTx(ctx context.Context, withdrawal *models.Withdrawal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total := withdrawal.TotalDeduction()
	metadata := map[string]any{
		"withdrawal_id":  withdrawal.ID.String(),
		"amount":         withdrawal.Amount.StringFixed(2),
		"fee":            withdrawal.Fee.StringFixed(2),
		"recipient_code": withdrawal.RecipientCode,
	}
	if withdrawal.TransferCode != nil {
		metadata["transfer_code"] = *withdrawal.TransferCode
	}

	entry, err := uow.WalletRepository().ApplyChange(ctx, withdrawal.WalletID, total.Neg(), models.TransactionTypeWithdrawal, withdrawal.Reference, metadata)
	if err != nil {
		return err
	}

	if withdrawal.Fee.IsPositive() {
		txID := entry.TransactionID
		if err := uow.EarningsRepository().Record(ctx, &models.Earning{
			TransactionID: &txID,
			Amount:        withdrawal.Fee,
			Source:        models.EarningSourceWithdrawalFee,
		}); err != nil {
			return fmt.Errorf("failed to record withdrawal fee: %w", err)
		}
	}

	updated := *withdrawal
	updated.Status = models.WithdrawalStatusLedgerApplied
	updated.FailureReason = nil
	if err := uow.WithdrawalRepository().UpdateStatus(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}

	RecordBalanceChange(uow, withdrawal.UserID, entry, total.Neg(), models.TransactionTypeWithdrawal, withdrawal.Reference)
	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		WithdrawalID: withdrawal.ID,
		UserID:       withdrawal.UserID,
		Amount:       withdrawal.Amount,
		OldStatus:    withdrawal.Status,
		NewStatus:    updated.Status,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	*withdrawal = updated
	return nil
}

func (s *withdrawalService) ReconcileWithdrawals(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	pending, err := uow.WithdrawalRepository().GetNeedingLedger(ctx, s.now().Add(-s.reconcileGrace), reconcileBatchSize)
	uow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to get withdrawals needing ledger: %w", err)
	}

	applied := 0
	for _, withdrawal := range pending {
		if ctx.Err() != nil {
			return applied, ctx.Err()
		}
		if err := s.applyLedger(ctx, withdrawal); err != nil {
			continue
		}
		applied++
	}

	if len(pending) > 0 {
		log.WithFields(log.Fields{
			"found":   len(pending),
			"applied": applied,
		}).Info("Reconciled withdrawals")
	}

	return applied, nil
}

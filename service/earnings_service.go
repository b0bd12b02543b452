package service

import (
	"context"
	"fmt"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type earningsService struct {
	uowFactory UnitOfWorkFactory
	gateway    PaymentGateway
	recipients *recipientResolver
}

// NewEarningsService creates a new earnings service
func NewEarningsService(uowFactory UnitOfWorkFactory, gateway PaymentGateway) EarningsService {
	return &earningsService{
		uowFactory: uowFactory,
		gateway:    gateway,
		recipients: &recipientResolver{uowFactory: uowFactory, gateway: gateway},
	}
}

func (s *earningsService) ProcessCashout(ctx context.Context, requesterID uuid.UUID, amount decimal.Decimal) (*models.EarningsCashout, error) {
	if !amount.IsPositive() {
		return nil, newValidationError("Amount must be greater than 0")
	}
	if !amount.Equal(roundAmount(amount)) {
		return nil, newValidationError("Amount cannot have more than 2 decimal places")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	profile, err := uow.ProfileRepository().GetByID(ctx, requesterID)
	uow.Rollback()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if !profile.Role.CanCashOutEarnings() {
		return nil, ErrForbidden
	}

	recipientCode, err := s.recipients.resolve(ctx, profile, "")
	if err != nil {
		return nil, err
	}

	cashout, err := s.reserve(ctx, requesterID, amount)
	if err != nil {
		return nil, err
	}

	transfer, err := s.gateway.InitiateTransfer(ctx, paystack.TransferRequest{
		Amount:    paystack.ToKobo(amount),
		Recipient: recipientCode,
		Reference: cashout.Reference,
		Reason:    "Clan earnings cashout",
		Currency:  models.DefaultCurrency,
	})
	if err != nil {
		reason := err.Error()
		cashout.Status = models.CashoutStatusFailed
		cashout.FailureReason = &reason
		if uErr := s.update(ctx, cashout); uErr != nil {
			log.WithError(uErr).WithField("cashoutID", cashout.ID).Error("Failed to mark earnings cashout as failed")
		}
		return nil, &ProviderError{Op: "initiate transfer", Err: err}
	}

	cashout.Status = models.CashoutStatusSuccess
	cashout.TransferCode = &transfer.TransferCode
	if err := s.update(ctx, cashout); err != nil {
		// The row stays pending, which still counts against the ceiling
		log.WithError(err).WithFields(log.Fields{
			"cashoutID":    cashout.ID,
			"transferCode": transfer.TransferCode,
			"critical":     true,
		}).Error("Provider transfer succeeded but cashout was not updated")
		return cashout, fmt.Errorf("%w: %v", ErrFailedToUpdateWallet, err)
	}

	log.WithFields(log.Fields{
		"cashoutID":   cashout.ID,
		"requestedBy": requesterID,
		"amount":      amount,
	}).Info("Earnings cashout completed")

	return cashout, nil
}

// reserve checks the ceiling and records a pending cashout under the cashout lock,
// so concurrent requests cannot both spend the same earnings
func (s *earningsService) reserve(ctx context.Context, requesterID uuid.UUID, amount decimal.Decimal) (*models.EarningsCashout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.EarningsRepository().LockCashouts(ctx); err != nil {
		return nil, err
	}

	summary, err := uow.EarningsRepository().GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get earnings summary: %w", err)
	}
	if amount.GreaterThan(summary.Available) {
		return nil, newValidationError("Amount exceeds available earnings of ₦%s", summary.Available.StringFixed(2))
	}

	cashout := &models.EarningsCashout{
		RequestedBy: requesterID,
		Amount:      amount,
		Reference:   "earnings_cashout_" + uuid.New().String(),
		Status:      models.CashoutStatusPending,
	}
	if err := uow.EarningsRepository().CreateCashout(ctx, cashout); err != nil {
		return nil, fmt.Errorf("failed to create cashout: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return cashout, nil
}

func (s *earningsService) update(ctx context.Context, cashout *models.EarningsCashout) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.EarningsRepository().UpdateCashout(ctx, cashout); err != nil {
		return fmt.Errorf("failed to update cashout: %w", err)
	}
	uow.EventBus().Publish(events.EarningsCashoutEvent{
		CashoutID:   cashout.ID,
		RequestedBy: cashout.RequestedBy,
		Amount:      cashout.Amount,
		Status:      cashout.Status,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

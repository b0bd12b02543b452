package service

import (
	"context"
	"fmt"
	"strings"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultTransactionLimit is how many recent transactions GetWallet returns by default
const DefaultTransactionLimit = 20

type walletService struct {
	uowFactory UnitOfWorkFactory
	gateway    PaymentGateway
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory, gateway PaymentGateway) WalletService {
	return &walletService{
		uowFactory: uowFactory,
		gateway:    gateway,
	}
}

func (s *walletService) VerifyDeposit(ctx context.Context, userID uuid.UUID, reference string) (*paystack.Transaction, *models.DepositResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil, newValidationError("Payment reference is required")
	}

	charge, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, nil, &ProviderError{Op: "verify transaction", Err: err}
	}
	if !charge.Succeeded() {
		log.WithFields(log.Fields{
			"userID":    userID,
			"reference": reference,
			"status":    charge.Status,
		}).Info("Payment verification returned a non-successful charge")
		return charge, nil, ErrPaymentNotSuccessful
	}

	profile, err := s.getProfile(ctx, func(repo ProfileRepository) (*models.Profile, error) {
		return repo.GetByID(ctx, userID)
	})
	if err != nil {
		return charge, nil, fmt.Errorf("failed to load caller profile: %w", err)
	}
	if profile == nil {
		return charge, nil, ErrProfileNotFound
	}
	if !strings.EqualFold(strings.TrimSpace(charge.Customer.Email), strings.TrimSpace(profile.Email)) {
		log.WithFields(log.Fields{
			"userID":    userID,
			"reference": reference,
		}).Warn("Payment verification attempted for another member's charge")
		return charge, nil, newValidationError("Payment does not belong to this account")
	}

	result, err := s.creditDeposit(ctx, userID, charge, "verify")
	if err != nil {
		return charge, nil, err
	}
	return charge, result, nil
}

func (s *walletService) HandleChargeSuccess(ctx context.Context, charge *paystack.Transaction) (*models.DepositResult, error) {
	if charge == nil || charge.Reference == "" {
		return nil, newValidationError("Charge reference is required")
	}
	if !charge.Succeeded() {
		return nil, ErrPaymentNotSuccessful
	}

	profile, err := s.getProfile(ctx, func(repo ProfileRepository) (*models.Profile, error) {
		return repo.GetByEmail(ctx, charge.Customer.Email)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payer: %w", err)
	}
	if profile == nil {
		log.WithFields(log.Fields{
			"reference": charge.Reference,
			"email":     charge.Customer.Email,
		}).Warn("Webhook charge has no matching profile")
		return nil, ErrProfileNotFound
	}

	return s.creditDeposit(ctx, profile.ID, charge, "webhook")
}

// getProfile resolves a profile outside the credit transaction; the profile table is a read model
func (s *walletService) getProfile(ctx context.Context, get func(ProfileRepository) (*models.Profile, error)) (*models.Profile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return get(uow.ProfileRepository())
}

// creditDeposit credits a verified charge to the user's wallet. A reference that was
// already credited is a successful no-op. The money has already been collected, so
// only the minimum applies here; the maximum is a pre-payment limit.
func (s *walletService) creditDeposit(ctx context.Context, userID uuid.UUID, charge *paystack.Transaction, source string) (*models.DepositResult, error) {
	amount := charge.AmountNaira()
	if amount.LessThan(MinDeposit) {
		return nil, ErrMinimumDeposit
	}

	metadata := map[string]any{
		"source":           source,
		"paystack_id":      charge.ID,
		"channel":          charge.Channel,
		"gateway_response": charge.GatewayResponse,
		"display_fee":      DepositFee(amount).StringFixed(2),
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry, err := uow.WalletRepository().Credit(ctx, userID, amount, charge.Reference, models.TransactionTypeDeposit, metadata)
	if err != nil {
		return nil, err
	}

	result := &models.DepositResult{
		Amount:           amount,
		NewBalance:       entry.NewBalance,
		AlreadyProcessed: !entry.Applied,
		DisplayFee:       DepositFee(amount),
	}

	if entry.TransactionID != uuid.Nil {
		tx, err := uow.TransactionRepository().GetByID(ctx, entry.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load deposit transaction: %w", err)
		}
		result.Transaction = tx
	}

	RecordBalanceChange(uow, userID, entry, amount, models.TransactionTypeDeposit, charge.Reference)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":           userID,
		"reference":        charge.Reference,
		"amount":           amount,
		"alreadyProcessed": result.AlreadyProcessed,
		"source":           source,
	}).Info("Deposit processed")

	return result, nil
}

func (s *walletService) TransferFunds(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount decimal.Decimal) (*models.TransferResult, error) {
	recipientIGN = strings.TrimSpace(recipientIGN)
	if recipientIGN == "" {
		return nil, newValidationError("Recipient IGN is required")
	}
	if !amount.IsPositive() {
		return nil, newValidationError("Transfer amount must be positive")
	}
	if !amount.Equal(roundAmount(amount)) {
		return nil, newValidationError("Transfer amount cannot have more than 2 decimal places")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	result, err := uow.WalletRepository().ExecuteTransfer(ctx, senderID, recipientIGN, amount, TransferFee)
	if err != nil {
		return nil, err
	}

	total := TransferTotal(amount)
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          senderID,
		WalletID:        result.SenderWalletID,
		OldBalance:      result.NewBalance.Add(total),
		NewBalance:      result.NewBalance,
		ChangeAmount:    total.Neg(),
		TransactionType: models.TransactionTypeTransferOut,
		Reference:       result.ReferenceOut,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          result.RecipientID,
		WalletID:        result.RecipientWalletID,
		OldBalance:      result.RecipientBalance.Sub(amount),
		NewBalance:      result.RecipientBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		Reference:       result.ReferenceIn,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"senderID":    senderID,
		"recipientID": result.RecipientID,
		"amount":      amount,
		"fee":         result.Fee,
	}).Info("Transfer completed")

	return result, nil
}

func (s *walletService) GetWallet(ctx context.Context, userID uuid.UUID, limit int) (*models.WalletSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultTransactionLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	// Wallets are created on first credit
	if wallet == nil {
		return &models.WalletSummary{
			Wallet: &models.Wallet{
				UserID:   userID,
				Balance:  decimal.Zero,
				Currency: models.DefaultCurrency,
			},
			RecentTransactions: []*models.Transaction{},
		}, nil
	}

	txs, err := uow.TransactionRepository().GetByWallet(ctx, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return &models.WalletSummary{
		Wallet:             wallet,
		RecentTransactions: txs,
	}, nil
}

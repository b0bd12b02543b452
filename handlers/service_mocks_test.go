package handlers

import (
	"context"
	"time"

	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) VerifyDeposit(ctx context.Context, userID uuid.UUID, reference string) (*paystack.Transaction, *models.DepositResult, error) {
	args := m.Called(ctx, userID, reference)
	var charge *paystack.Transaction
	if args.Get(0) != nil {
		charge = args.Get(0).(*paystack.Transaction)
	}
	var result *models.DepositResult
	if args.Get(1) != nil {
		result = args.Get(1).(*models.DepositResult)
	}
	return charge, result, args.Error(2)
}

func (m *MockWalletService) HandleChargeSuccess(ctx context.Context, charge *paystack.Transaction) (*models.DepositResult, error) {
	args := m.Called(ctx, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositResult), args.Error(1)
}

func (m *MockWalletService) TransferFunds(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount decimal.Decimal) (*models.TransferResult, error) {
	args := m.Called(ctx, senderID, recipientIGN, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferResult), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID uuid.UUID, limit int) (*models.WalletSummary, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletSummary), args.Error(1)
}

type MockWithdrawalService struct {
	mock.Mock
}

func (m *MockWithdrawalService) CreateTransferRecipient(ctx context.Context, userID uuid.UUID, details models.BankDetails) (*paystack.Recipient, error) {
	args := m.Called(ctx, userID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Recipient), args.Error(1)
}

func (m *MockWithdrawalService) CheckAvailability(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalAvailability, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalAvailability), args.Error(1)
}

func (m *MockWithdrawalService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, recipientCode string) (*models.Withdrawal, error) {
	args := m.Called(ctx, userID, amount, recipientCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalService) ReconcileWithdrawals(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockGiveawayService struct {
	mock.Mock
}

func (m *MockGiveawayService) CreateGiveaway(ctx context.Context, creatorID uuid.UUID, params models.CreateGiveawayParams) (*models.Giveaway, error) {
	args := m.Called(ctx, creatorID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayService) RedeemCode(ctx context.Context, userID uuid.UUID, code string) (*models.RedeemResult, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedeemResult), args.Error(1)
}

func (m *MockGiveawayService) RefundExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockTaxService struct {
	mock.Mock
}

func (m *MockTaxService) DeductMonthlyTax(ctx context.Context, now time.Time) (*models.TaxRun, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxRun), args.Error(1)
}

type MockEarningsService struct {
	mock.Mock
}

func (m *MockEarningsService) ProcessCashout(ctx context.Context, requesterID uuid.UUID, amount decimal.Decimal) (*models.EarningsCashout, error) {
	args := m.Called(ctx, requesterID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EarningsCashout), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, req models.NotificationRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) BroadcastExcept(ctx context.Context, excludeID uuid.UUID, req models.NotificationRequest) (int, error) {
	args := m.Called(ctx, excludeID, req)
	return args.Int(0), args.Error(1)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func clanMaster() *models.Profile {
	p := testProfile(TestUser1ID, "Boss", models.RoleClanMaster)
	code := "RCP_BOSS"
	p.PaystackRecipientCode = &code
	return p
}

func TestEarningsService_ProcessCashout(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.ExpectCommit()
	service := NewEarningsService(mocks.Factory, mocks.Gateway)

	mocks.ProfileRepo.On("GetByID", ctx, TestUser1ID).Return(clanMaster(), nil)
	mocks.EarningsRepo.On("LockCashouts", ctx).Return(nil)
	mocks.EarningsRepo.On("GetSummary", ctx).Return(&models.EarningsSummary{
		TotalEarned:    decimal.RequireFromString("5000"),
		TotalCashedOut: decimal.RequireFromString("1000"),
		Available:      decimal.RequireFromString("4000"),
	}, nil)
	mocks.EarningsRepo.On("CreateCashout", ctx, mock.MatchedBy(func(c *models.EarningsCashout) bool {
		return c.Status == models.CashoutStatusPending && strings.HasPrefix(c.Reference, "earnings_cashout_")
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.EarningsCashout).ID = 9
	})
	mocks.Gateway.On("InitiateTransfer", ctx, mock.MatchedBy(func(req paystack.TransferRequest) bool {
		return req.Amount == 400000 && req.Recipient == "RCP_BOSS"
	})).Return(&paystack.Transfer{TransferCode: "TRF_E"}, nil)
	mocks.EarningsRepo.On("UpdateCashout", ctx, mock.MatchedBy(func(c *models.EarningsCashout) bool {
		return c.Status == models.CashoutStatusSuccess && c.TransferCode != nil && *c.TransferCode == "TRF_E"
	})).Return(nil)
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.EarningsCashoutEvent) bool {
		return e.CashoutID == 9 && e.Status == models.CashoutStatusSuccess
	})).Return()

	cashout, err := service.ProcessCashout(ctx, TestUser1ID, decimal.RequireFromString("4000"))

	require.NoError(t, err)
	assert.Equal(t, models.CashoutStatusSuccess, cashout.Status)
	mocks.AssertAllExpectations(t)
}

func TestEarningsService_ProcessCashout_ExceedsCeiling(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewEarningsService(mocks.Factory, mocks.Gateway)

	mocks.ProfileRepo.On("GetByID", ctx, TestUser1ID).Return(clanMaster(), nil)
	mocks.EarningsRepo.On("LockCashouts", ctx).Return(nil)
	mocks.EarningsRepo.On("GetSummary", ctx).Return(&models.EarningsSummary{
		TotalEarned:    decimal.RequireFromString("5000"),
		TotalCashedOut: decimal.RequireFromString("4500"),
		Available:      decimal.RequireFromString("500"),
	}, nil)

	_, err := service.ProcessCashout(ctx, TestUser1ID, decimal.RequireFromString("501"))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Message, "500.00")
	mocks.Gateway.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything)
	mocks.EarningsRepo.AssertNotCalled(t, "CreateCashout", mock.Anything, mock.Anything)
}

func TestEarningsService_ProcessCashout_Forbidden(t *testing.T) {
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleMember, models.RoleModerator} {
		t.Run(string(role), func(t *testing.T) {
			mocks := NewTestMocks()
			service := NewEarningsService(mocks.Factory, mocks.Gateway)
			mocks.ProfileRepo.On("GetByID", ctx, TestUser1ID).Return(testProfile(TestUser1ID, "Grunt", role), nil)

			_, err := service.ProcessCashout(ctx, TestUser1ID, decimal.RequireFromString("100"))

			assert.ErrorIs(t, err, ErrForbidden)
			mocks.EarningsRepo.AssertNotCalled(t, "GetSummary", mock.Anything)
		})
	}
}

func TestEarningsService_ProcessCashout_ProviderFailureReleasesCeiling(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.ExpectCommit()
	mocks.AllowEvents()
	service := NewEarningsService(mocks.Factory, mocks.Gateway)

	mocks.ProfileRepo.On("GetByID", ctx, TestUser1ID).Return(clanMaster(), nil)
	mocks.EarningsRepo.On("LockCashouts", ctx).Return(nil)
	mocks.EarningsRepo.On("GetSummary", ctx).Return(&models.EarningsSummary{Available: decimal.RequireFromString("1000")}, nil)
	mocks.EarningsRepo.On("CreateCashout", ctx, mock.Anything).Return(nil)
	mocks.Gateway.On("InitiateTransfer", ctx, mock.Anything).Return(nil, &paystack.APIError{StatusCode: 400, Message: "Invalid recipient"})
	mocks.EarningsRepo.On("UpdateCashout", ctx, mock.MatchedBy(func(c *models.EarningsCashout) bool {
		return c.Status == models.CashoutStatusFailed && c.FailureReason != nil
	})).Return(nil)

	_, err := service.ProcessCashout(ctx, TestUser1ID, decimal.RequireFromString("1000"))

	var pErr *ProviderError
	assert.True(t, errors.As(err, &pErr))
	mocks.AssertAllExpectations(t)
}

func TestEarningsService_ProcessCashout_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewEarningsService(mocks.Factory, mocks.Gateway)

	_, err := service.ProcessCashout(ctx, TestUser1ID, decimal.Zero)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	mocks.Factory.AssertNotCalled(t, "Create")
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var taxRunTime = time.Date(2026, 10, 1, 0, 5, 0, 0, time.UTC)

func taxEntry(walletID uuid.UUID, applied bool) *models.LedgerEntry {
	return &models.LedgerEntry{
		TransactionID: uuid.New(),
		WalletID:      walletID,
		NewBalance:    decimal.RequireFromString("50"),
		Applied:       applied,
	}
}

func TestTaxService_DeductMonthlyTax(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.ExpectCommit()
	mocks.AllowEvents()
	service := NewTaxService(mocks.Factory)

	rich := testWallet(uuid.New(), uuid.New(), "100")
	exact := testWallet(uuid.New(), uuid.New(), "50")
	drained := testWallet(uuid.New(), uuid.New(), "60")
	charged := testWallet(uuid.New(), uuid.New(), "75")

	mocks.TaxRepo.On("GetRunByPeriod", ctx, "2026-10").Return(nil, nil)
	mocks.TaxRepo.On("GetLatestSetting", ctx).Return(&models.TaxSetting{Amount: decimal.RequireFromString("50")}, nil)
	mocks.WalletRepo.On("GetWithBalanceAtLeast", ctx, decimalEq("50")).Return([]*models.Wallet{rich, exact, drained, charged}, nil)
	mocks.WalletRepo.On("CountWithBalanceBelow", ctx, decimalEq("50")).Return(2, nil)

	ref := "monthly_tax_2026-10"
	mocks.WalletRepo.On("ApplyChange", ctx, rich.ID, decimalEq("-50"), models.TransactionTypeTaxDeduction, ref, mock.Anything).Return(taxEntry(rich.ID, true), nil)
	mocks.WalletRepo.On("ApplyChange", ctx, exact.ID, decimalEq("-50"), models.TransactionTypeTaxDeduction, ref, mock.Anything).Return(taxEntry(exact.ID, true), nil)
	mocks.WalletRepo.On("ApplyChange", ctx, drained.ID, decimalEq("-50"), models.TransactionTypeTaxDeduction, ref, mock.Anything).Return(nil, ErrInsufficientFunds)
	mocks.WalletRepo.On("ApplyChange", ctx, charged.ID, decimalEq("-50"), models.TransactionTypeTaxDeduction, ref, mock.Anything).Return(taxEntry(charged.ID, false), nil)

	mocks.EarningsRepo.On("Record", ctx, mock.MatchedBy(func(e *models.Earning) bool {
		return e.Source == models.EarningSourceTax && e.Amount.Equal(decimal.RequireFromString("50"))
	})).Return(nil).Times(2)

	mocks.TaxRepo.On("CreateRun", ctx, mock.MatchedBy(func(r *models.TaxRun) bool {
		return r.Period == "2026-10" && r.WalletsCharged == 2 && r.WalletsSkipped == 3 &&
			r.TotalCollected.Equal(decimal.RequireFromString("100"))
	})).Return(true, nil)

	run, err := service.DeductMonthlyTax(ctx, taxRunTime)

	require.NoError(t, err)
	assert.False(t, run.AlreadyRan)
	assert.Equal(t, 2, run.WalletsCharged)
	assert.Equal(t, 3, run.WalletsSkipped)
	assert.Equal(t, 1, run.ExecutionSummary["already_charged"])
	assert.True(t, run.TotalCollected.Equal(decimal.RequireFromString("100")))
	mocks.AssertAllExpectations(t)
}

func TestTaxService_DeductMonthlyTax_AlreadyRan(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewTaxService(mocks.Factory)

	mocks.TaxRepo.On("GetRunByPeriod", ctx, "2026-10").Return(&models.TaxRun{Period: "2026-10", WalletsCharged: 7}, nil)

	run, err := service.DeductMonthlyTax(ctx, taxRunTime)

	require.NoError(t, err)
	assert.True(t, run.AlreadyRan)
	assert.Equal(t, 7, run.WalletsCharged)
	mocks.TaxRepo.AssertNotCalled(t, "GetLatestSetting", mock.Anything)
	mocks.WalletRepo.AssertNotCalled(t, "ApplyChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaxService_DeductMonthlyTax_NotConfigured(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewTaxService(mocks.Factory)

	mocks.TaxRepo.On("GetRunByPeriod", ctx, "2026-10").Return(nil, nil)
	mocks.TaxRepo.On("GetLatestSetting", ctx).Return(nil, nil)

	_, err := service.DeductMonthlyTax(ctx, taxRunTime)

	assert.ErrorIs(t, err, ErrTaxNotConfigured)
}

func TestTaxService_DeductMonthlyTax_FailureLeavesPeriodOpen(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.ExpectCommit()
	service := NewTaxService(mocks.Factory)

	broken := testWallet(uuid.New(), uuid.New(), "500")

	mocks.TaxRepo.On("GetRunByPeriod", ctx, "2026-10").Return(nil, nil)
	mocks.TaxRepo.On("GetLatestSetting", ctx).Return(&models.TaxSetting{Amount: decimal.RequireFromString("50")}, nil)
	mocks.WalletRepo.On("GetWithBalanceAtLeast", ctx, decimalEq("50")).Return([]*models.Wallet{broken}, nil)
	mocks.WalletRepo.On("CountWithBalanceBelow", ctx, decimalEq("50")).Return(0, nil)
	mocks.WalletRepo.On("ApplyChange", ctx, broken.ID, decimalEq("-50"), models.TransactionTypeTaxDeduction, "monthly_tax_2026-10", mock.Anything).
		Return(nil, errors.New("deadlock detected"))

	run, err := service.DeductMonthlyTax(ctx, taxRunTime)

	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 1, run.ExecutionSummary["failed"])
	mocks.TaxRepo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
}

package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWithdrawalFee(t *testing.T) {
	tests := []struct {
		amount string
		fee    string
		total  string
		net    string
	}{
		{"500", "20", "520", "480"},
		{"600", "24", "624", "576"},
		{"30000", "1200", "31200", "28800"},
		{"777.77", "31.11", "808.88", "746.66"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := d(tt.amount)
			assert.True(t, d(tt.fee).Equal(WithdrawalFee(amount)), "fee")
			assert.True(t, d(tt.total).Equal(WithdrawalTotal(amount)), "total")
			assert.True(t, d(tt.net).Equal(NetPayout(amount)), "net")
		})
	}
}

func TestTransferTotal(t *testing.T) {
	assert.True(t, d("1050").Equal(TransferTotal(d("1000"))))
	assert.True(t, d("50.01").Equal(TransferTotal(d("0.01"))))
}

func TestDepositFeeIsDisplayOnly(t *testing.T) {
	assert.True(t, d("40").Equal(DepositFee(d("1000"))))
}

func TestValidateWithdrawalAmount(t *testing.T) {
	assert.NoError(t, ValidateWithdrawalAmount(d("500")))
	assert.NoError(t, ValidateWithdrawalAmount(d("30000")))

	var vErr *ValidationError
	err := ValidateWithdrawalAmount(d("499.99"))
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Minimum withdrawal amount is ₦500", err.Error())

	err = ValidateWithdrawalAmount(d("30000.01"))
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Maximum withdrawal amount is ₦30000", err.Error())
}

func TestValidateDepositAmount(t *testing.T) {
	assert.NoError(t, ValidateDepositAmount(d("500")))
	assert.NoError(t, ValidateDepositAmount(d("50000")))
	assert.ErrorIs(t, ValidateDepositAmount(d("499")), ErrMinimumDeposit)

	var vErr *ValidationError
	assert.True(t, errors.As(ValidateDepositAmount(d("50001")), &vErr))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "insufficient_funds", Code(ErrInsufficientFunds))
	assert.Equal(t, "minimum_deposit", Code(ErrMinimumDeposit))
	assert.Equal(t, "failed_to_update_wallet", Code(errors.Join(errors.New("db down"), ErrFailedToUpdateWallet)))
	assert.Equal(t, "", Code(errors.New("boom")))
}

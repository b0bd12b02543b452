package service

import (
	"github.com/shopspring/decimal"
)

var (
	// TransferFee is charged to the sender of a peer transfer, on top of the amount
	TransferFee = decimal.NewFromInt(50)

	WithdrawalFeeRate = decimal.RequireFromString("0.04")
	DepositFeeRate    = decimal.RequireFromString("0.04")

	MinWithdrawal = decimal.NewFromInt(500)
	MaxWithdrawal = decimal.NewFromInt(30000)
	MinDeposit    = decimal.NewFromInt(500)
	MaxDeposit    = decimal.NewFromInt(50000)
)

// WithdrawalFee is the platform fee on a withdrawal of amount
func WithdrawalFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(WithdrawalFeeRate).Round(2)
}

// WithdrawalTotal is what the wallet loses for a withdrawal of amount
func WithdrawalTotal(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(WithdrawalFee(amount))
}

// NetPayout is amount minus the withdrawal fee
func NetPayout(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(WithdrawalFee(amount))
}

// DepositFee is the deposit fee shown to the payer. It is not deducted from the credit.
func DepositFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(DepositFeeRate).Round(2)
}

// TransferTotal is what the sender loses for a transfer of amount
func TransferTotal(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(TransferFee)
}

// ValidateWithdrawalAmount checks the withdrawal bounds
func ValidateWithdrawalAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinWithdrawal) {
		return newValidationError("Minimum withdrawal amount is ₦%s", MinWithdrawal.StringFixed(0))
	}
	if amount.GreaterThan(MaxWithdrawal) {
		return newValidationError("Maximum withdrawal amount is ₦%s", MaxWithdrawal.StringFixed(0))
	}
	return nil
}

// ValidateDepositAmount checks the deposit bounds of a payment that has not been made yet.
// Verified charges are only held to MinDeposit.
func ValidateDepositAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinDeposit) {
		return ErrMinimumDeposit
	}
	if amount.GreaterThan(MaxDeposit) {
		return newValidationError("Maximum deposit amount is ₦%s", MaxDeposit.StringFixed(0))
	}
	return nil
}

func roundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

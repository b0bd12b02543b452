package service

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds     = errors.New("Insufficient funds")
	ErrRecipientNotFound     = errors.New("Recipient not found")
	ErrSelfTransfer          = errors.New("Cannot transfer to yourself")
	ErrMinimumDeposit        = errors.New("Minimum deposit amount is ₦500")
	ErrWalletNotFound        = errors.New("Wallet not found")
	ErrProfileNotFound       = errors.New("Profile not found")
	ErrForbidden             = errors.New("You do not have permission to perform this action")
	ErrPaymentNotSuccessful  = errors.New("Payment was not successful")
	ErrNoBankDetails         = errors.New("No bank details on file")
	ErrTaxNotConfigured      = errors.New("Tax amount is not configured")
	ErrFailedToUpdateWallet  = errors.New("Transfer sent but wallet update failed; funds are safe and will be reconciled")
	ErrGiveawayCodeCollision = errors.New("giveaway code already exists")
)

// ValidationError is an input error rejected before any side effect
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a payment provider failure
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Code returns the machine-readable code of known domain errors, or "" otherwise
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrMinimumDeposit):
		return "minimum_deposit"
	case errors.Is(err, ErrFailedToUpdateWallet):
		return "failed_to_update_wallet"
	case errors.Is(err, ErrRecipientNotFound):
		return "recipient_not_found"
	}
	return ""
}

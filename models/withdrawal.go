package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the step a withdrawal intent has reached
type WithdrawalStatus string

const (
	WithdrawalStatusPending              WithdrawalStatus = "pending"
	WithdrawalStatusProviderConfirmed    WithdrawalStatus = "provider_confirmed"
	WithdrawalStatusLedgerApplied        WithdrawalStatus = "ledger_applied"
	WithdrawalStatusFailed               WithdrawalStatus = "failed"
	WithdrawalStatusFailedToUpdateWallet WithdrawalStatus = "failed_to_update_wallet"
)

// NeedsLedger reports whether the provider moved money but the wallet has not been debited yet
func (s WithdrawalStatus) NeedsLedger() bool {
	return s == WithdrawalStatusProviderConfirmed || s == WithdrawalStatusFailedToUpdateWallet
}

// Withdrawal is the durable intent record of a payout to a member's bank account
type Withdrawal struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	UserID        uuid.UUID        `db:"user_id" json:"user_id"`
	WalletID      uuid.UUID        `db:"wallet_id" json:"wallet_id"`
	Amount        decimal.Decimal  `db:"amount" json:"amount"`
	Fee           decimal.Decimal  `db:"fee" json:"fee"`
	Reference     string           `db:"reference" json:"reference"`
	RecipientCode string           `db:"recipient_code" json:"recipient_code"`
	TransferCode  *string          `db:"transfer_code" json:"transfer_code,omitempty"`
	Status        WithdrawalStatus `db:"status" json:"status"`
	FailureReason *string          `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// TotalDeduction is what the wallet loses once the withdrawal is applied
func (w *Withdrawal) TotalDeduction() decimal.Decimal {
	return w.Amount.Add(w.Fee)
}

// WithdrawalAvailability answers whether a withdrawal of a given amount can go through now
type WithdrawalAvailability struct {
	Available       bool            `json:"available"`
	Reason          string          `json:"reason,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Fee             decimal.Decimal `json:"fee"`
	TotalDeduction  decimal.Decimal `json:"total_deduction"`
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	ProviderBalance decimal.Decimal `json:"provider_balance"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
}

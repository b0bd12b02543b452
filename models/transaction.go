package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance change a ledger row records
type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeTransferIn       TransactionType = "transfer_in"
	TransactionTypeTransferOut      TransactionType = "transfer_out"
	TransactionTypeGiveawayCreated  TransactionType = "giveaway_created"
	TransactionTypeGiveawayRedeemed TransactionType = "giveaway_redeemed"
	TransactionTypeGiveawayRefund   TransactionType = "giveaway_refund"
	TransactionTypeTaxDeduction     TransactionType = "tax_deduction"
)

// IsCredit reports whether the transaction type increases the wallet balance
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferIn, TransactionTypeGiveawayRedeemed, TransactionTypeGiveawayRefund:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a ledger row
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// DefaultCurrency is the only currency the clan wallet settles in
const DefaultCurrency = "NGN"

// Transaction is an append-only record of a balance-affecting event.
// Amount is always a positive magnitude; direction follows from Type.
type Transaction struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	WalletID      uuid.UUID         `db:"wallet_id" json:"wallet_id"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal   `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal   `db:"balance_after" json:"balance_after"`
	Status        TransactionStatus `db:"status" json:"status"`
	Reference     string            `db:"reference" json:"reference"`
	Currency      string            `db:"currency" json:"currency"`
	Metadata      map[string]any    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

// LedgerEntry is the outcome of one of the atomic ledger procedures.
// Applied is false when the reference had already been recorded and nothing changed.
type LedgerEntry struct {
	TransactionID uuid.UUID
	WalletID      uuid.UUID
	NewBalance    decimal.Decimal
	Applied       bool
}

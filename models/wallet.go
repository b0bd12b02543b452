package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a single user's balance
type Wallet struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// WalletSummary is a wallet together with its most recent ledger rows
type WalletSummary struct {
	Wallet             *Wallet        `json:"wallet"`
	RecentTransactions []*Transaction `json:"recent_transactions"`
}

// TransferResult is returned after a successful peer transfer
type TransferResult struct {
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	RecipientID       uuid.UUID       `json:"recipient_id"`
	RecipientIGN      string          `json:"recipient_ign"`
	ReferenceOut      string          `json:"reference_out"`
	ReferenceIn       string          `json:"reference_in"`
	NewBalance        decimal.Decimal `json:"new_balance"`
	SenderWalletID    uuid.UUID       `json:"-"`
	RecipientWalletID uuid.UUID       `json:"-"`
	RecipientBalance  decimal.Decimal `json:"-"`
}

// DepositResult is returned by deposit verification and webhook crediting
type DepositResult struct {
	Transaction      *Transaction    `json:"transaction"`
	Amount           decimal.Decimal `json:"amount"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	AlreadyProcessed bool            `json:"already_processed"`
	DisplayFee       decimal.Decimal `json:"display_fee"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarningSource names what produced a platform earning
type EarningSource string

const (
	EarningSourceWithdrawalFee EarningSource = "withdrawal_fee"
	EarningSourceTransferFee   EarningSource = "transfer_fee"
	EarningSourceTax           EarningSource = "tax"
)

// Earning is a clan-level revenue row
type Earning struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID *uuid.UUID      `db:"transaction_id" json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Source        EarningSource   `db:"source" json:"source"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// CashoutStatus tracks an earnings cashout
type CashoutStatus string

const (
	CashoutStatusPending CashoutStatus = "pending"
	CashoutStatusSuccess CashoutStatus = "success"
	CashoutStatusFailed  CashoutStatus = "failed"
)

// EarningsCashout records money moved out of the clan earnings pool
type EarningsCashout struct {
	ID            int64           `db:"id" json:"id"`
	RequestedBy   uuid.UUID       `db:"requested_by" json:"requested_by"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Reference     string          `db:"reference" json:"reference"`
	TransferCode  *string         `db:"transfer_code" json:"transfer_code,omitempty"`
	Status        CashoutStatus   `db:"status" json:"status"`
	FailureReason *string         `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// EarningsSummary is the cashout ceiling breakdown
type EarningsSummary struct {
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalCashedOut decimal.Decimal `json:"total_cashed_out"`
	Available      decimal.Decimal `json:"available"`
}

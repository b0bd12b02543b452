package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Giveaway is a batch of single-use redemption codes funded by its creator
type Giveaway struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Message       string          `db:"message" json:"message"`
	CodeValue     decimal.Decimal `db:"code_value" json:"code_value"`
	TotalCodes    int             `db:"total_codes" json:"total_codes"`
	RedeemedCount int             `db:"redeemed_count" json:"redeemed_count"`
	ExpiresAt     time.Time       `db:"expires_at" json:"expires_at"`
	IsPrivate     bool            `db:"is_private" json:"is_private"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
	RefundedAt    *time.Time      `db:"refunded_at" json:"refunded_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	Codes         []string        `db:"-" json:"codes,omitempty"`
}

// TotalCost is the amount debited from the creator
func (g *Giveaway) TotalCost() decimal.Decimal {
	return g.CodeValue.Mul(decimal.NewFromInt(int64(g.TotalCodes)))
}

// UnredeemedValue is the amount still locked in unredeemed codes
func (g *Giveaway) UnredeemedValue() decimal.Decimal {
	return g.CodeValue.Mul(decimal.NewFromInt(int64(g.TotalCodes - g.RedeemedCount)))
}

// IsExpired reports whether the giveaway has expired at the given time
func (g *Giveaway) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// GiveawayCode is one single-use redemption code
type GiveawayCode struct {
	Code       string          `db:"code" json:"code"`
	GiveawayID uuid.UUID       `db:"giveaway_id" json:"giveaway_id"`
	Value      decimal.Decimal `db:"value" json:"value"`
	IsRedeemed bool            `db:"is_redeemed" json:"is_redeemed"`
	RedeemedBy *uuid.UUID      `db:"redeemed_by" json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time      `db:"redeemed_at" json:"redeemed_at,omitempty"`
}

// Redemption failure messages; clients match on these strings.
const (
	RedeemMessageInvalidCode     = "Invalid code"
	RedeemMessageAlreadyRedeemed = "Code already redeemed"
	RedeemMessageExpired         = "Code expired"
	RedeemMessageCooldown        = "Cooldown active"
)

// RedeemResult is the response contract of a redemption attempt
type RedeemResult struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	NewBalance *decimal.Decimal `json:"new_balance,omitempty"`
	GiveawayID *uuid.UUID       `json:"-"`
}

// CreateGiveawayParams are the validated inputs of a giveaway creation
type CreateGiveawayParams struct {
	Title          string
	Message        string
	CodeValue      decimal.Decimal
	TotalCodes     int
	ExpiresInHours int
	IsPrivate      bool
}

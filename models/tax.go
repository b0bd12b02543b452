package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxSetting is a configured monthly tax amount; the newest row wins
type TaxSetting struct {
	ID        int64           `db:"id"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

// TaxRun records one monthly tax deduction batch
type TaxRun struct {
	ID               int64                  `db:"id" json:"id"`
	Period           string                 `db:"period" json:"period"`
	TaxAmount        decimal.Decimal        `db:"tax_amount" json:"tax_amount"`
	WalletsCharged   int                    `db:"wallets_charged" json:"wallets_charged"`
	WalletsSkipped   int                    `db:"wallets_skipped" json:"wallets_skipped"`
	TotalCollected   decimal.Decimal        `db:"total_collected" json:"total_collected"`
	ExecutionSummary map[string]interface{} `db:"execution_summary" json:"execution_summary,omitempty"`
	CreatedAt        time.Time              `db:"created_at" json:"created_at"`
	AlreadyRan       bool                   `db:"-" json:"already_ran"`
}

// TaxPeriod formats the month a tax run belongs to, in t's own location
func TaxPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// TaxReference is the ledger reference shared by every deduction of a period
func TaxReference(period string) string {
	return "monthly_tax_" + period
}

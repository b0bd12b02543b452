package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clanwallet/database"
	"clanwallet/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TaxRepository implements the TaxRepository interface
type TaxRepository struct {
	q queryable
}

// NewTaxRepository creates a new tax repository
func NewTaxRepository(db *database.DB) *TaxRepository {
	return &TaxRepository{q: db.Pool}
}

// newTaxRepositoryWithTx creates a new tax repository with a transaction
func newTaxRepositoryWithTx(tx queryable) *TaxRepository {
	return &TaxRepository{q: tx}
}

// GetLatestSetting returns the newest configured tax amount
func (r *TaxRepository) GetLatestSetting(ctx context.Context) (*models.TaxSetting, error) {
	query := `
		SELECT id, amount, created_at
		FROM tax_settings
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var setting models.TaxSetting
	err := r.q.QueryRow(ctx, query).Scan(&setting.ID, &setting.Amount, &setting.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest tax setting: %w", err)
	}
	return &setting, nil
}

// CreateSetting stores a new tax amount; it becomes the active setting
func (r *TaxRepository) CreateSetting(ctx context.Context, amount decimal.Decimal) (*models.TaxSetting, error) {
	query := `
		INSERT INTO tax_settings (amount)
		VALUES ($1)
		RETURNING id, amount, created_at
	`

	var setting models.TaxSetting
	if err := r.q.QueryRow(ctx, query, amount).Scan(&setting.ID, &setting.Amount, &setting.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create tax setting: %w", err)
	}
	return &setting, nil
}

// GetRunByPeriod returns the completed run of a period
func (r *TaxRepository) GetRunByPeriod(ctx context.Context, period string) (*models.TaxRun, error) {
	query := `
		SELECT id, period, tax_amount, wallets_charged, wallets_skipped, total_collected,
		       execution_summary, created_at
		FROM tax_runs
		WHERE period = $1
	`

	var (
		run         models.TaxRun
		summaryJSON []byte
	)
	err := r.q.QueryRow(ctx, query, period).Scan(
		&run.ID,
		&run.Period,
		&run.TaxAmount,
		&run.WalletsCharged,
		&run.WalletsSkipped,
		&run.TotalCollected,
		&summaryJSON,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tax run for period %s: %w", period, err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}
	return &run, nil
}

// CreateRun records a completed run. Returns false if the period was already recorded.
func (r *TaxRepository) CreateRun(ctx context.Context, run *models.TaxRun) (bool, error) {
	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return false, fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO tax_runs (period, tax_amount, wallets_charged, wallets_skipped, total_collected, execution_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (period) DO NOTHING
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.Period,
		run.TaxAmount,
		run.WalletsCharged,
		run.WalletsSkipped,
		run.TotalCollected,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create tax run for period %s: %w", run.Period, err)
	}
	return true, nil
}

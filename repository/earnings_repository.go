package repository

import (
	"context"
	"fmt"

	"clanwallet/database"
	"clanwallet/models"
)

// EarningsRepository implements the EarningsRepository interface
type EarningsRepository struct {
	q queryable
}

// NewEarningsRepository creates a new earnings repository
func NewEarningsRepository(db *database.DB) *EarningsRepository {
	return &EarningsRepository{q: db.Pool}
}

// newEarningsRepositoryWithTx creates a new earnings repository with a transaction
func newEarningsRepositoryWithTx(tx queryable) *EarningsRepository {
	return &EarningsRepository{q: tx}
}

// Record inserts an earnings row. A second row for the same transaction is ignored.
func (r *EarningsRepository) Record(ctx context.Context, earning *models.Earning) error {
	query := `
		INSERT INTO earnings (transaction_id, amount, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (transaction_id) WHERE transaction_id IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, earning.TransactionID, earning.Amount, earning.Source).
		Scan(&earning.ID, &earning.CreatedAt)
	if err != nil && !isNoRows(err) {
		return fmt.Errorf("failed to record %s earning: %w", earning.Source, err)
	}
	return nil
}

// LockCashouts takes a transaction-scoped advisory lock so concurrent cashouts see each other
func (r *EarningsRepository) LockCashouts(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('earnings_cashout'))`); err != nil {
		return fmt.Errorf("failed to lock earnings cashouts: %w", err)
	}
	return nil
}

// GetSummary returns total earnings, non-failed cashouts and the difference
func (r *EarningsRepository) GetSummary(ctx context.Context) (*models.EarningsSummary, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM earnings),
			(SELECT COALESCE(SUM(amount), 0) FROM earnings_cashouts WHERE status <> 'failed')
	`

	var summary models.EarningsSummary
	if err := r.q.QueryRow(ctx, query).Scan(&summary.TotalEarned, &summary.TotalCashedOut); err != nil {
		return nil, fmt.Errorf("failed to get earnings summary: %w", err)
	}

	summary.Available = summary.TotalEarned.Sub(summary.TotalCashedOut)
	return &summary, nil
}

// CreateCashout inserts a cashout row
func (r *EarningsRepository) CreateCashout(ctx context.Context, cashout *models.EarningsCashout) error {
	query := `
		INSERT INTO earnings_cashouts (requested_by, amount, reference, transfer_code, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		cashout.RequestedBy,
		cashout.Amount,
		cashout.Reference,
		cashout.TransferCode,
		cashout.Status,
		cashout.FailureReason,
	).Scan(&cashout.ID, &cashout.CreatedAt, &cashout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create earnings cashout: %w", err)
	}
	return nil
}

// UpdateCashout stores the cashout's status, transfer code and failure reason
func (r *EarningsRepository) UpdateCashout(ctx context.Context, cashout *models.EarningsCashout) error {
	query := `
		UPDATE earnings_cashouts
		SET status = $1, transfer_code = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		cashout.Status,
		cashout.TransferCode,
		cashout.FailureReason,
		cashout.ID,
	).Scan(&cashout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update earnings cashout %d: %w", cashout.ID, err)
	}
	return nil
}

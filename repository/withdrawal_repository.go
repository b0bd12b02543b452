package repository

import (
	"context"
	"fmt"
	"time"

	"clanwallet/database"
	"clanwallet/models"
)

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create inserts a new withdrawal intent
func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, user_id, wallet_id, amount, fee, reference, recipient_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		w.ID,
		w.UserID,
		w.WalletID,
		w.Amount,
		w.Fee,
		w.Reference,
		w.RecipientCode,
		w.Status,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal %s: %w", w.Reference, err)
	}
	return nil
}

// UpdateStatus stores the intent's status, transfer code and failure reason
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, w *models.Withdrawal) error {
	query := `
		UPDATE withdrawals
		SET status = $1, transfer_code = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, w.Status, w.TransferCode, w.FailureReason, w.ID).Scan(&w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %s to %s: %w", w.ID, w.Status, err)
	}
	return nil
}

// GetNeedingLedger returns intents whose provider transfer succeeded but whose
// wallet debit has not been applied, last touched before olderThan
func (r *WithdrawalRepository) GetNeedingLedger(ctx context.Context, olderThan time.Time, limit int) ([]*models.Withdrawal, error) {
	query := `
		SELECT id, user_id, wallet_id, amount, fee, reference, recipient_code, transfer_code,
		       status, failure_reason, created_at, updated_at
		FROM withdrawals
		WHERE status IN ('provider_confirmed', 'failed_to_update_wallet')
		  AND updated_at < $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawals needing ledger: %w", err)
	}
	defer rows.Close()

	var withdrawals []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.WalletID,
			&w.Amount,
			&w.Fee,
			&w.Reference,
			&w.RecipientCode,
			&w.TransferCode,
			&w.Status,
			&w.FailureReason,
			&w.CreatedAt,
			&w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}
	return withdrawals, nil
}

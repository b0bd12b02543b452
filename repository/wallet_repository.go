package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clanwallet/database"
	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUserID retrieves a user's wallet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w models.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.Currency,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, err)
	}
	return &w, nil
}

// GetWithBalanceAtLeast returns wallets whose balance is >= min
func (r *WalletRepository) GetWithBalanceAtLeast(ctx context.Context, min decimal.Decimal) ([]*models.Wallet, error) {
	query := `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE balance >= $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, min)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets with balance >= %s: %w", min, err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}
	return wallets, nil
}

// CountWithBalanceBelow counts wallets whose balance is < limit
func (r *WalletRepository) CountWithBalanceBelow(ctx context.Context, limit decimal.Decimal) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE balance < $1`, limit).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wallets below %s: %w", limit, err)
	}
	return count, nil
}

// Credit adds amount to the user's wallet, creating it if absent.
// A reference that was already recorded returns Applied=false and changes nothing.
func (r *WalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string, txType models.TransactionType, metadata map[string]any) (*models.LedgerEntry, error) {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT out_transaction_id, out_wallet_id, out_new_balance, out_applied
		FROM credit_wallet($1, $2, $3, $4, $5, $6)
	`

	var (
		entry models.LedgerEntry
		txID  uuid.NullUUID
	)
	err = r.q.QueryRow(ctx, query,
		userID,
		amount,
		reference,
		models.DefaultCurrency,
		string(txType),
		metadataJSON,
	).Scan(&txID, &entry.WalletID, &entry.NewBalance, &entry.Applied)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet for user %s: %w", userID, mapProcedureError(err))
	}

	if txID.Valid {
		entry.TransactionID = txID.UUID
	}
	return &entry, nil
}

// ApplyChange applies a signed balance change to a wallet and records the ledger row.
// A reference already recorded on the wallet returns Applied=false and changes nothing.
func (r *WalletRepository) ApplyChange(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, reference string, metadata map[string]any) (*models.LedgerEntry, error) {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT out_transaction_id, out_new_balance, out_applied
		FROM update_wallet_and_create_transaction($1, $2, $3, $4, $5, $6)
	`

	entry := models.LedgerEntry{WalletID: walletID}
	err = r.q.QueryRow(ctx, query,
		walletID,
		amount,
		string(txType),
		reference,
		models.DefaultCurrency,
		metadataJSON,
	).Scan(&entry.TransactionID, &entry.NewBalance, &entry.Applied)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s of %s to wallet %s: %w", txType, amount, walletID, mapProcedureError(err))
	}
	return &entry, nil
}

// ExecuteTransfer moves amount between members and charges fee to the sender
func (r *WalletRepository) ExecuteTransfer(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount, fee decimal.Decimal) (*models.TransferResult, error) {
	query := `
		SELECT out_reference_out, out_reference_in, out_recipient_id, out_recipient_ign,
		       out_sender_wallet_id, out_sender_balance, out_recipient_wallet_id, out_recipient_balance
		FROM execute_user_transfer($1, $2, $3, $4)
	`

	result := models.TransferResult{Amount: amount, Fee: fee}
	err := r.q.QueryRow(ctx, query, senderID, recipientIGN, amount, fee).Scan(
		&result.ReferenceOut,
		&result.ReferenceIn,
		&result.RecipientID,
		&result.RecipientIGN,
		&result.SenderWalletID,
		&result.NewBalance,
		&result.RecipientWalletID,
		&result.RecipientBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute transfer from %s to %q: %w", senderID, recipientIGN, mapProcedureError(err))
	}
	return &result, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}
	return data, nil
}

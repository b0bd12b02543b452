package repository

import (
	"context"
	"errors"
	"fmt"

	"clanwallet/database"
	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository implements the ProfileRepository interface
type ProfileRepository struct {
	q queryable
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{q: db.Pool}
}

// newProfileRepositoryWithTx creates a new profile repository with a transaction
func newProfileRepositoryWithTx(tx queryable) *ProfileRepository {
	return &ProfileRepository{q: tx}
}

const profileColumns = `
	id, email, ign, role, bank_account_number, bank_code, bank_account_name,
	paystack_recipient_code, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.IGN,
		&p.Role,
		&p.BankAccountNumber,
		&p.BankCode,
		&p.BankAccountName,
		&p.PaystackRecipientCode,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a profile by its auth subject id
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return profile, nil
}

// GetByEmail retrieves a profile by email, case-insensitively
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER(TRIM($1))`

	profile, err := scanProfile(r.q.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return profile, nil
}

// GetAllIDs returns the ids of every member
func (r *ProfileRepository) GetAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile ids: %w", err)
	}
	return ids, nil
}

// UpdateBankDetails stores payout bank info and the provider recipient code
func (r *ProfileRepository) UpdateBankDetails(ctx context.Context, id uuid.UUID, details models.BankDetails) error {
	query := `
		UPDATE profiles
		SET bank_account_number = $1,
		    bank_code = $2,
		    bank_account_name = $3,
		    paystack_recipient_code = $4,
		    updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query,
		details.AccountNumber,
		details.BankCode,
		details.AccountName,
		details.RecipientCode,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank details for profile %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

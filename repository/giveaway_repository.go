package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clanwallet/database"
	"clanwallet/models"
	"clanwallet/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// GiveawayRepository implements the GiveawayRepository interface
type GiveawayRepository struct {
	q queryable
}

// NewGiveawayRepository creates a new giveaway repository
func NewGiveawayRepository(db *database.DB) *GiveawayRepository {
	return &GiveawayRepository{q: db.Pool}
}

// newGiveawayRepositoryWithTx creates a new giveaway repository with a transaction
func newGiveawayRepositoryWithTx(tx queryable) *GiveawayRepository {
	return &GiveawayRepository{q: tx}
}

const giveawayColumns = `
	id, title, message, code_value, total_codes, redeemed_count, expires_at,
	is_private, created_by, refunded_at, created_at`

func scanGiveaway(row pgx.Row) (*models.Giveaway, error) {
	var g models.Giveaway
	err := row.Scan(
		&g.ID,
		&g.Title,
		&g.Message,
		&g.CodeValue,
		&g.TotalCodes,
		&g.RedeemedCount,
		&g.ExpiresAt,
		&g.IsPrivate,
		&g.CreatedBy,
		&g.RefundedAt,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateWithCodes inserts a giveaway and all of its codes in one statement
func (r *GiveawayRepository) CreateWithCodes(ctx context.Context, createdBy uuid.UUID, params models.CreateGiveawayParams, expiresAt time.Time, codes []string) (uuid.UUID, error) {
	query := `SELECT create_giveaway_with_codes($1, $2, $3, $4, $5, $6, $7)`

	var id uuid.UUID
	err := r.q.QueryRow(ctx, query,
		createdBy,
		params.Title,
		params.Message,
		params.CodeValue,
		expiresAt,
		params.IsPrivate,
		codes,
	).Scan(&id)
	if isUniqueViolation(err, "giveaway_codes_pkey") {
		return uuid.Nil, service.ErrGiveawayCodeCollision
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create giveaway: %w", mapProcedureError(err))
	}
	return id, nil
}

// GetByID retrieves a giveaway by id
func (r *GiveawayRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id = $1`

	giveaway, err := scanGiveaway(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
	}
	return giveaway, nil
}

// Redeem atomically redeems a code and credits the redeemer.
// Failures the caller can act on come back as Success=false with a message, not as errors.
func (r *GiveawayRepository) Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.RedeemResult, error) {
	query := `
		SELECT out_success, out_message, out_amount, out_new_balance, out_giveaway_id
		FROM redeem_giveaway_code($1, $2)
	`

	var (
		result     models.RedeemResult
		amount     decimal.NullDecimal
		newBalance decimal.NullDecimal
		giveawayID uuid.NullUUID
	)
	err := r.q.QueryRow(ctx, query, code, userID).Scan(
		&result.Success,
		&result.Message,
		&amount,
		&newBalance,
		&giveawayID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem giveaway code: %w", mapProcedureError(err))
	}

	if amount.Valid {
		result.Amount = &amount.Decimal
	}
	if newBalance.Valid {
		result.NewBalance = &newBalance.Decimal
	}
	if giveawayID.Valid {
		result.GiveawayID = &giveawayID.UUID
	}
	return &result, nil
}

// GetExpiredUnrefunded returns expired giveaways that have not been refunded yet
func (r *GiveawayRepository) GetExpiredUnrefunded(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	query := `
		SELECT ` + giveawayColumns + `
		FROM giveaways
		WHERE expires_at <= $1 AND refunded_at IS NULL
		ORDER BY expires_at
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired giveaways: %w", err)
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaways: %w", err)
	}
	return giveaways, nil
}

// MarkRefunded stamps refunded_at and returns the updated row.
// Returns nil when another run already refunded the giveaway.
func (r *GiveawayRepository) MarkRefunded(ctx context.Context, id uuid.UUID, at time.Time) (*models.Giveaway, error) {
	query := `
		UPDATE giveaways
		SET refunded_at = $2
		WHERE id = $1 AND refunded_at IS NULL
		RETURNING ` + giveawayColumns

	giveaway, err := scanGiveaway(r.q.QueryRow(ctx, query, id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark giveaway %s refunded: %w", id, err)
	}
	return giveaway, nil
}

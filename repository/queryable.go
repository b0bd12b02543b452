package repository

import (
	"context"
	"errors"

	"clanwallet/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// SQLSTATEs raised by the wallet procedures
const (
	sqlStateInsufficientFunds = "CW001"
	sqlStateRecipientNotFound = "CW002"
	sqlStateMinimumDeposit    = "CW003"
	sqlStateInvalidInput      = "CW005"
	sqlStateWalletNotFound    = "CW006"
	sqlStateSelfTransfer      = "CW007"

	sqlStateCheckViolation  = "23514"
	sqlStateUniqueViolation = "23505"
)

// mapProcedureError turns procedure and constraint failures into service errors
func mapProcedureError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case sqlStateInsufficientFunds:
		return service.ErrInsufficientFunds
	case sqlStateRecipientNotFound:
		return service.ErrRecipientNotFound
	case sqlStateMinimumDeposit:
		return service.ErrMinimumDeposit
	case sqlStateInvalidInput:
		return &service.ValidationError{Message: pgErr.Message}
	case sqlStateWalletNotFound:
		return service.ErrWalletNotFound
	case sqlStateSelfTransfer:
		return service.ErrSelfTransfer
	case sqlStateCheckViolation:
		if pgErr.ConstraintName == "wallets_balance_check" {
			return service.ErrInsufficientFunds
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation && pgErr.ConstraintName == constraint
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

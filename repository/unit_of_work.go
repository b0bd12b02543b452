package repository

import (
	"context"
	"errors"
	"fmt"

	"clanwallet/database"
	"clanwallet/events"
	"clanwallet/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	profileRepo      service.ProfileRepository
	walletRepo       service.WalletRepository
	transactionRepo  service.TransactionRepository
	earningsRepo     service.EarningsRepository
	giveawayRepo     service.GiveawayRepository
	taxRepo          service.TaxRepository
	withdrawalRepo   service.WithdrawalRepository
	notificationRepo service.NotificationRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.profileRepo = newProfileRepositoryWithTx(tx)
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.earningsRepo = newEarningsRepositoryWithTx(tx)
	u.giveawayRepo = newGiveawayRepositoryWithTx(tx)
	u.taxRepo = newTaxRepositoryWithTx(tx)
	u.withdrawalRepo = newWithdrawalRepositoryWithTx(tx)
	u.notificationRepo = newNotificationRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func notStarted() {
	panic("unit of work not started - call Begin() first")
}

// ProfileRepository returns the profile repository for this unit of work
func (u *unitOfWork) ProfileRepository() service.ProfileRepository {
	if u.profileRepo == nil {
		notStarted()
	}
	return u.profileRepo
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() service.WalletRepository {
	if u.walletRepo == nil {
		notStarted()
	}
	return u.walletRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		notStarted()
	}
	return u.transactionRepo
}

// EarningsRepository returns the earnings repository for this unit of work
func (u *unitOfWork) EarningsRepository() service.EarningsRepository {
	if u.earningsRepo == nil {
		notStarted()
	}
	return u.earningsRepo
}

// GiveawayRepository returns the giveaway repository for this unit of work
func (u *unitOfWork) GiveawayRepository() service.GiveawayRepository {
	if u.giveawayRepo == nil {
		notStarted()
	}
	return u.giveawayRepo
}

// TaxRepository returns the tax repository for this unit of work
func (u *unitOfWork) TaxRepository() service.TaxRepository {
	if u.taxRepo == nil {
		notStarted()
	}
	return u.taxRepo
}

// WithdrawalRepository returns the withdrawal repository for this unit of work
func (u *unitOfWork) WithdrawalRepository() service.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		notStarted()
	}
	return u.withdrawalRepo
}

// NotificationRepository returns the notification repository for this unit of work
func (u *unitOfWork) NotificationRepository() service.NotificationRepository {
	if u.notificationRepo == nil {
		notStarted()
	}
	return u.notificationRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		notStarted()
	}
	return u.transactionalBus
}

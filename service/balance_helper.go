package service

import (
	"clanwallet/events"
	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordBalanceChange emits the balance change event of an applied ledger entry.
// Entries that were no-ops (reference already recorded) emit nothing.
// signedAmount is negative for debits. Events are flushed after the unit of work commits.
func RecordBalanceChange(uow UnitOfWork, userID uuid.UUID, entry *models.LedgerEntry, signedAmount decimal.Decimal, txType models.TransactionType, reference string) {
	if entry == nil || !entry.Applied {
		return
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		WalletID:        entry.WalletID,
		OldBalance:      entry.NewBalance.Sub(signedAmount),
		NewBalance:      entry.NewBalance,
		ChangeAmount:    signedAmount,
		TransactionType: txType,
		Reference:       reference,
	})
}

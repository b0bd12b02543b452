package events

import (
	"context"
	"sync"

	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange         EventType = "balance_change"
	EventTypeGiveawayCreated       EventType = "giveaway_created"
	EventTypeGiveawayRedeemed      EventType = "giveaway_redeemed"
	EventTypeWithdrawalStateChange EventType = "withdrawal_state_change"
	EventTypeEarningsCashout       EventType = "earnings_cashout"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed change to a wallet balance
type BalanceChangeEvent struct {
	UserID          uuid.UUID              `json:"user_id"`
	WalletID        uuid.UUID              `json:"wallet_id"`
	OldBalance      decimal.Decimal        `json:"old_balance"`
	NewBalance      decimal.Decimal        `json:"new_balance"`
	ChangeAmount    decimal.Decimal        `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Reference       string                 `json:"reference"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// GiveawayCreatedEvent is emitted once a funded giveaway and its codes are committed
type GiveawayCreatedEvent struct {
	Giveaway   *models.Giveaway `json:"giveaway"`
	CreatorIGN string           `json:"creator_ign"`
}

func (e GiveawayCreatedEvent) Type() EventType {
	return EventTypeGiveawayCreated
}

// GiveawayRedeemedEvent is emitted after a code has been redeemed
type GiveawayRedeemedEvent struct {
	GiveawayID uuid.UUID       `json:"giveaway_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Code       string          `json:"code"`
	Amount     decimal.Decimal `json:"amount"`
}

func (e GiveawayRedeemedEvent) Type() EventType {
	return EventTypeGiveawayRedeemed
}

// WithdrawalStateChangeEvent represents a withdrawal intent transition
type WithdrawalStateChangeEvent struct {
	WithdrawalID uuid.UUID               `json:"withdrawal_id"`
	UserID       uuid.UUID               `json:"user_id"`
	Amount       decimal.Decimal         `json:"amount"`
	OldStatus    models.WithdrawalStatus `json:"old_status"`
	NewStatus    models.WithdrawalStatus `json:"new_status"`
}

func (e WithdrawalStateChangeEvent) Type() EventType {
	return EventTypeWithdrawalStateChange
}

// EarningsCashoutEvent is emitted when clan earnings are paid out
type EarningsCashoutEvent struct {
	CashoutID   int64                `json:"cashout_id"`
	RequestedBy uuid.UUID            `json:"requested_by"`
	Amount      decimal.Decimal      `json:"amount"`
	Status      models.CashoutStatus `json:"status"`
}

func (e EarningsCashoutEvent) Type() EventType {
	return EventTypeEarningsCashout
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range []EventType{
		EventTypeBalanceChange,
		EventTypeGiveawayCreated,
		EventTypeGiveawayRedeemed,
		EventTypeWithdrawalStateChange,
		EventTypeEarningsCashout,
	} {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queueing event until commit")
	b.pending = append(b.pending, e)
}

// Flush emits the pending events; called after a successful commit.
// Handlers get a background context so they outlive the request.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
	return nil
}

// Discard drops the pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

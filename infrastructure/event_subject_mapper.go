package infrastructure

import (
	"fmt"

	"clanwallet/events"
	"clanwallet/models"
)

const (
	// WalletEventsStream holds committed wallet domain events
	WalletEventsStream = "clanwallet_wallet_events"
	// PushStream holds push notification requests for the delivery worker
	PushStream = "clanwallet_push"

	walletSubjectPrefix = "clanwallet.wallet."
	pushSubjectPrefix   = "clanwallet.push."
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return walletSubjectPrefix + "balance_changed"
	case events.EventTypeGiveawayCreated:
		return walletSubjectPrefix + "giveaway_created"
	case events.EventTypeGiveawayRedeemed:
		return walletSubjectPrefix + "giveaway_redeemed"
	case events.EventTypeWithdrawalStateChange:
		return walletSubjectPrefix + "withdrawal_state_changed"
	case events.EventTypeEarningsCashout:
		return walletSubjectPrefix + "earnings_cashout"
	default:
		return fmt.Sprintf("%sunknown.%s", walletSubjectPrefix, event.Type())
	}
}

// MapPushSubject returns the subject push requests of a notification type go to
func (m *EventSubjectMapper) MapPushSubject(notificationType models.NotificationType) string {
	if notificationType == "" {
		notificationType = models.NotificationTypeGeneral
	}
	return pushSubjectPrefix + string(notificationType)
}

// WalletSubjects returns the subjects bound to the wallet events stream
func (m *EventSubjectMapper) WalletSubjects() []string {
	return []string{walletSubjectPrefix + ">"}
}

// PushSubjects returns the subjects bound to the push stream
func (m *EventSubjectMapper) PushSubjects() []string {
	return []string{pushSubjectPrefix + "*"}
}

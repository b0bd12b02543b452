package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "clanwallet"

// EventEnvelope wraps every message published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

func newEnvelope(eventType string, payload any) ([]byte, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       data,
	}
	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return envelopeData, envelope.EventID, nil
}

// NATSEventPublisher forwards committed domain events from the in-process bus to NATS
type NATSEventPublisher struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	metrics       *observability.MetricsProvider
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher, subjectMapper *EventSubjectMapper, metrics *observability.MetricsProvider) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		metrics:       metrics,
	}
}

// Publish publishes an event to its NATS subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	subject := p.subjectMapper.MapEventToSubject(event)

	data, eventID, err := newEnvelope(string(event.Type()), event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}
	p.metrics.RecordNATSMessagePublished(string(event.Type()))

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   eventID,
		"subject":   subject,
	}).Debug("Published event to NATS")
	return nil
}

// Attach forwards every event emitted on bus. Bus handlers run after commit,
// so only committed changes reach NATS.
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := p.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Error("Failed to forward event to NATS")
		}
	})
}

// PublishPush implements service.PushPublisher
func (p *NATSEventPublisher) PublishPush(ctx context.Context, msg *models.PushMessage) error {
	subject := p.subjectMapper.MapPushSubject(msg.Type)

	data, eventID, err := newEnvelope("push_notification", msg)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish push notification: %w", err)
	}
	p.metrics.RecordNATSMessagePublished("push_notification")

	log.WithFields(log.Fields{
		"eventId":    eventID,
		"subject":    subject,
		"recipients": len(msg.UserIDs),
	}).Debug("Published push notification to NATS")
	return nil
}

// EnsureStreams creates the wallet event and push streams
func EnsureStreams(client *NATSClient, mapper *EventSubjectMapper) error {
	if err := client.EnsureStream(WalletEventsStream, "Committed clan wallet domain events", mapper.WalletSubjects()); err != nil {
		return err
	}
	return client.EnsureStream(PushStream, "Clan wallet push notification requests", mapper.PushSubjects())
}

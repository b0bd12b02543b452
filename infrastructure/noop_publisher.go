package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// NoopPublisher drops every message. Used when NATS is disabled.
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish does nothing with the message
func (n *NoopPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	log.WithField("subject", subject).Debug("NATS disabled, dropping message")
	return nil
}

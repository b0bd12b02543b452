package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC-SHA512 of the raw webhook body
const SignatureHeader = "x-paystack-signature"

// EventChargeSuccess is the only webhook event that credits a wallet
const EventChargeSuccess = "charge.success"

// WebhookEvent is the envelope of every Paystack webhook
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// VerifySignature checks the webhook signature in constant time
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// Sign computes the signature Paystack would send for body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhookEvent decodes a raw webhook body
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("webhook event has no type")
	}
	return &event, nil
}

// Charge decodes the data of a charge.* event
func (e *WebhookEvent) Charge() (*Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(e.Data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode charge data: %w", err)
	}
	if tx.Reference == "" {
		return nil, fmt.Errorf("charge has no reference")
	}
	return &tx, nil
}

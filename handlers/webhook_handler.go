package handlers

import (
	"errors"
	"net/http"

	"clanwallet/paystack"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	wallets service.WalletService
	secret  string
}

// NewWebhookHandler creates a webhook handler verifying signatures with secret
func NewWebhookHandler(wallets service.WalletService, secret string) *WebhookHandler {
	return &WebhookHandler{
		wallets: wallets,
		secret:  secret,
	}
}

// PaystackWebhook credits charge.success payments. Only the status code is meaningful to the provider.
func (h *WebhookHandler) PaystackWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !paystack.VerifySignature(h.secret, body, c.GetHeader(paystack.SignatureHeader)) {
		log.WithField("client_ip", c.ClientIP()).Warn("Rejected webhook with invalid signature")
		c.Status(http.StatusUnauthorized)
		return
	}

	event, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		log.WithError(err).Warn("Failed to parse webhook payload")
		c.Status(http.StatusBadRequest)
		return
	}

	if event.Event != paystack.EventChargeSuccess {
		log.WithField("event", event.Event).Debug("Ignoring webhook event")
		c.Status(http.StatusOK)
		return
	}

	charge, err := event.Charge()
	if err != nil {
		log.WithError(err).Warn("Failed to decode charge from webhook")
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.wallets.HandleChargeSuccess(c.Request.Context(), charge)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			c.Status(http.StatusNotFound)
		case errors.As(err, &vErr), errors.Is(err, service.ErrMinimumDeposit), errors.Is(err, service.ErrPaymentNotSuccessful):
			// Redelivery cannot change the outcome; acknowledge it
			log.WithError(err).WithField("reference", charge.Reference).Warn("Webhook charge not credited")
			c.Status(http.StatusOK)
		default:
			log.WithError(err).WithField("reference", charge.Reference).Error("Failed to credit webhook charge")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	log.WithFields(log.Fields{
		"reference":        charge.Reference,
		"alreadyProcessed": result.AlreadyProcessed,
	}).Info("Webhook charge handled")
	c.Status(http.StatusOK)
}

package handlers

import (
	"errors"
	"net/http"

	"clanwallet/paystack"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// errorStatus maps a service error to its HTTP status
func errorStatus(err error) int {
	var vErr *service.ValidationError
	var pErr *service.ProviderError

	switch {
	case errors.Is(err, service.ErrFailedToUpdateWallet):
		return http.StatusInternalServerError
	case errors.As(err, &vErr),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrRecipientNotFound),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrMinimumDeposit),
		errors.Is(err, service.ErrPaymentNotSuccessful),
		errors.Is(err, service.ErrNoBankDetails),
		errors.Is(err, service.ErrTaxNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrWalletNotFound):
		return http.StatusNotFound
	case errors.As(err, &pErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorMessage returns the client-facing message of err
func errorMessage(err error, status int) string {
	var pErr *service.ProviderError
	if errors.As(err, &pErr) {
		var apiErr *paystack.APIError
		if errors.As(pErr.Err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "Payment provider request failed"
	}
	if errors.Is(err, service.ErrFailedToUpdateWallet) {
		return service.ErrFailedToUpdateWallet.Error()
	}
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// respondError writes the {error, code?} body for err
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	body := gin.H{"error": errorMessage(err, status)}
	if code := service.Code(err); code != "" {
		body["code"] = code
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("route", c.FullPath()).Error("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

package handlers

import (
	"net/http"
	"time"

	"clanwallet/middleware"
	"clanwallet/models"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminHandler serves the clan treasury and broadcast operations
type AdminHandler struct {
	tax           service.TaxService
	earnings      service.EarningsService
	notifications service.NotificationService
	now           func() time.Time
}

// NewAdminHandler creates an admin handler. Tax periods are computed in loc.
func NewAdminHandler(tax service.TaxService, earnings service.EarningsService, notifications service.NotificationService, loc *time.Location) *AdminHandler {
	return &AdminHandler{
		tax:           tax,
		earnings:      earnings,
		notifications: notifications,
		now:           func() time.Time { return time.Now().In(loc) },
	}
}

// DeductMonthlyTax runs the tax batch for the current month
func (h *AdminHandler) DeductMonthlyTax(c *gin.Context) {
	run, err := h.tax.DeductMonthlyTax(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Monthly tax deducted"
	if run.AlreadyRan {
		message = "Monthly tax already deducted for " + run.Period
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"run":     run,
	})
}

type cashoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ProcessEarningsCashout pays clan earnings to the caller's bank account
func (h *AdminHandler) ProcessEarningsCashout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req cashoutRequest
	if !bindJSON(c, &req) {
		return
	}

	cashout, err := h.earnings.ProcessCashout(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Earnings cashout successful",
		"cashout": cashout,
	})
}

type sendNotificationRequest struct {
	Type       models.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	UserID     *uuid.UUID              `json:"user_id"`
	Data       map[string]any          `json:"data"`
	ActionData map[string]any          `json:"action_data"`
}

// SendNotification notifies one member or broadcasts to all
func (h *AdminHandler) SendNotification(c *gin.Context) {
	if !middleware.IsServiceRole(c) {
		if _, ok := currentUser(c); !ok {
			return
		}
	}

	var req sendNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	sent, err := h.notifications.Send(c.Request.Context(), models.NotificationRequest{
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		UserID:     req.UserID,
		Data:       req.Data,
		ActionData: req.ActionData,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sent":    sent,
	})
}

package handlers

import (
	"net/http"

	"clanwallet/models"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GiveawayHandler serves giveaway creation and redemption
type GiveawayHandler struct {
	giveaways service.GiveawayService
}

// NewGiveawayHandler creates a giveaway handler
func NewGiveawayHandler(giveaways service.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{giveaways: giveaways}
}

type createGiveawayRequest struct {
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	CodeValue      decimal.Decimal `json:"code_value"`
	TotalCodes     int             `json:"total_codes"`
	ExpiresInHours int             `json:"expires_in_hours"`
	IsPrivate      bool            `json:"is_private"`
}

// CreateGiveaway funds a giveaway from the caller's wallet
func (h *GiveawayHandler) CreateGiveaway(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGiveawayRequest
	if !bindJSON(c, &req) {
		return
	}

	giveaway, err := h.giveaways.CreateGiveaway(c.Request.Context(), userID, models.CreateGiveawayParams{
		Title:          req.Title,
		Message:        req.Message,
		CodeValue:      req.CodeValue,
		TotalCodes:     req.TotalCodes,
		ExpiresInHours: req.ExpiresInHours,
		IsPrivate:      req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"giveaway_id": giveaway.ID,
		"giveaway":    giveaway,
	})
}

type redeemGiveawayRequest struct {
	Code string `json:"code"`
}

// RedeemGiveaway redeems a code for the caller. Rejected codes answer 400 with the same body shape.
func (h *GiveawayHandler) RedeemGiveaway(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req redeemGiveawayRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.giveaways.RedeemCode(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	switch {
	case result.Success:
	case result.Message == models.RedeemMessageCooldown:
		status = http.StatusTooManyRequests
	default:
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clanwallet/models"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	defaultTransactionLimit = 20
	maxTransactionLimit     = 100
)

// WalletHandler serves deposits, peer transfers, withdrawals and wallet reads
type WalletHandler struct {
	wallets     service.WalletService
	withdrawals service.WithdrawalService
}

// NewWalletHandler creates a wallet handler
func NewWalletHandler(wallets service.WalletService, withdrawals service.WithdrawalService) *WalletHandler {
	return &WalletHandler{
		wallets:     wallets,
		withdrawals: withdrawals,
	}
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

// VerifyPayment verifies a provider payment and credits the caller's wallet
func (h *WalletHandler) VerifyPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req verifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	charge, result, err := h.wallets.VerifyDeposit(c.Request.Context(), userID, req.Reference)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotSuccessful) && charge != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": false,
				"error":  err.Error(),
				"data":   charge,
			})
			return
		}
		respondError(c, err)
		return
	}

	message := "Payment verified successfully"
	if result.AlreadyProcessed {
		message = "Payment already processed"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      true,
		"message":     message,
		"data":        charge,
		"transaction": result.Transaction,
		"amount":      result.Amount,
		"new_balance": result.NewBalance,
		"display_fee": result.DisplayFee,
	})
}

type transferFundsRequest struct {
	RecipientIGN string          `json:"recipient_ign"`
	Amount       decimal.Decimal `json:"amount"`
}

// TransferFunds moves money to another member by IGN
func (h *WalletHandler) TransferFunds(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req transferFundsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.wallets.TransferFunds(c.Request.Context(), userID, req.RecipientIGN, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Successfully transferred ₦" + result.Amount.StringFixed(2) + " to " + result.RecipientIGN,
		"amount":      result.Amount,
		"fee":         result.Fee,
		"new_balance": result.NewBalance,
		"reference":   result.ReferenceOut,
	})
}

// Paystack transfer sub-endpoints
const (
	endpointCreateRecipient   = "create-transfer-recipient"
	endpointInitiateTransfer  = "initiate-transfer"
	endpointCheckAvailability = "check-withdrawal-availability"
)

type paystackTransferRequest struct {
	Endpoint      string          `json:"endpoint"`
	AccountNumber string          `json:"account_number"`
	BankCode      string          `json:"bank_code"`
	AccountName   string          `json:"account_name"`
	Amount        decimal.Decimal `json:"amount"`
	RecipientCode string          `json:"recipient_code"`
}

// PaystackTransfer dispatches the withdrawal sub-endpoints
func (h *WalletHandler) PaystackTransfer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req paystackTransferRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	switch req.Endpoint {
	case endpointCreateRecipient:
		if req.AccountNumber == "" || req.BankCode == "" {
			badRequest(c, "Account number and bank code are required")
			return
		}
		recipient, err := h.withdrawals.CreateTransferRecipient(ctx, userID, models.BankDetails{
			AccountNumber: req.AccountNumber,
			BankCode:      req.BankCode,
			AccountName:   req.AccountName,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  true,
			"message": "Transfer recipient created",
			"data":    recipient,
		})

	case endpointCheckAvailability:
		availability, err := h.withdrawals.CheckAvailability(ctx, userID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, availability)

	case endpointInitiateTransfer:
		withdrawal, err := h.withdrawals.Withdraw(ctx, userID, req.Amount, req.RecipientCode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  true,
			"message": "Withdrawal successful",
			"data":    withdrawal,
		})

	default:
		badRequest(c, "Invalid endpoint")
	}
}

// GetWallet returns the caller's balance and latest transactions
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := defaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxTransactionLimit)
	}

	summary, err := h.wallets.GetWallet(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

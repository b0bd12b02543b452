package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clanwallet/middleware"
	"clanwallet/models"
	"clanwallet/paystack"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testServiceKey    = "test-service-role-key"
	testWebhookSecret = "sk_test_secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router        *gin.Engine
	wallets       *MockWalletService
	withdrawals   *MockWithdrawalService
	giveaways     *MockGiveawayService
	tax           *MockTaxService
	earnings      *MockEarningsService
	notifications *MockNotificationService
	userID        uuid.UUID
	userAuth      string
	now           time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		wallets:       new(MockWalletService),
		withdrawals:   new(MockWithdrawalService),
		giveaways:     new(MockGiveawayService),
		tax:           new(MockTaxService),
		earnings:      new(MockEarningsService),
		notifications: new(MockNotificationService),
		userID:        uuid.New(),
		now:           time.Date(2026, 10, 1, 0, 5, 0, 0, time.UTC),
	}

	claims := middleware.Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	s.userAuth = "Bearer " + token

	admin := NewAdminHandler(s.tax, s.earnings, s.notifications, time.UTC)
	admin.now = func() time.Time { return s.now }

	s.router = NewRouter(RouterConfig{
		JWTSecret:      testJWTSecret,
		ServiceRoleKey: testServiceKey,
	},
		NewWalletHandler(s.wallets, s.withdrawals),
		NewWebhookHandler(s.wallets, testWebhookSecret),
		NewGiveawayHandler(s.giveaways),
		admin,
	)

	t.Cleanup(func() {
		s.wallets.AssertExpectations(t)
		s.withdrawals.AssertExpectations(t)
		s.giveaways.AssertExpectations(t)
		s.tax.AssertExpectations(t)
		s.earnings.AssertExpectations(t)
		s.notifications.AssertExpectations(t)
	})
	return s
}

func (s *testServer) do(method, path string, body interface{}, authorization string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decEq(s string) interface{} {
	expected := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodOptions, "/transfer-funds", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTransferFunds(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("TransferFunds", mock.Anything, s.userID, "Viper", decEq("1000")).Return(&models.TransferResult{
			Amount:       decimal.NewFromInt(1000),
			Fee:          decimal.NewFromInt(50),
			RecipientIGN: "Viper",
			ReferenceOut: "transfer_to_Viper_1",
			NewBalance:   decimal.NewFromInt(950),
		}, nil)

		w := s.do(http.MethodPost, "/transfer-funds", gin.H{"recipient_ign": "Viper", "amount": 1000}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Successfully transferred ₦1000.00 to Viper", decodeBody(t, w)["message"])
	})

	t.Run("insufficient funds", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("TransferFunds", mock.Anything, s.userID, "Viper", decEq("1000")).Return(nil, service.ErrInsufficientFunds)

		w := s.do(http.MethodPost, "/transfer-funds", gin.H{"recipient_ign": "Viper", "amount": "1000"}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Insufficient funds", body["error"])
		assert.Equal(t, "insufficient_funds", body["code"])
	})

	t.Run("recipient not found", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("TransferFunds", mock.Anything, s.userID, "Ghost", decEq("10")).Return(nil, service.ErrRecipientNotFound)

		w := s.do(http.MethodPost, "/transfer-funds", gin.H{"recipient_ign": "Ghost", "amount": 10}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "recipient_not_found", decodeBody(t, w)["code"])
	})

	t.Run("requires auth", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/transfer-funds", gin.H{"recipient_ign": "Viper", "amount": 10}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/transfer-funds", []byte(`{"amount": "lots"}`), s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("credited", func(t *testing.T) {
		s := newTestServer(t)
		charge := &paystack.Transaction{Status: "success", Reference: "ref_1", Amount: 100000}
		s.wallets.On("VerifyDeposit", mock.Anything, s.userID, "ref_1").Return(charge, &models.DepositResult{
			Transaction: &models.Transaction{Reference: "ref_1"},
			Amount:      decimal.NewFromInt(1000),
			NewBalance:  decimal.NewFromInt(1000),
		}, nil)

		w := s.do(http.MethodPost, "/verify-payment", gin.H{"reference": "ref_1"}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["status"])
		assert.Equal(t, "Payment verified successfully", body["message"])
		assert.NotNil(t, body["data"])
		assert.NotNil(t, body["transaction"])
	})

	t.Run("already processed", func(t *testing.T) {
		s := newTestServer(t)
		charge := &paystack.Transaction{Status: "success", Reference: "ref_1", Amount: 100000}
		s.wallets.On("VerifyDeposit", mock.Anything, s.userID, "ref_1").Return(charge, &models.DepositResult{
			AlreadyProcessed: true,
		}, nil)

		w := s.do(http.MethodPost, "/verify-payment", gin.H{"reference": "ref_1"}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Payment already processed", decodeBody(t, w)["message"])
	})

	t.Run("payment not successful", func(t *testing.T) {
		s := newTestServer(t)
		charge := &paystack.Transaction{Status: "abandoned", Reference: "ref_2"}
		s.wallets.On("VerifyDeposit", mock.Anything, s.userID, "ref_2").Return(charge, nil, service.ErrPaymentNotSuccessful)

		w := s.do(http.MethodPost, "/verify-payment", gin.H{"reference": "ref_2"}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["status"])
		assert.NotNil(t, body["data"])
	})

	t.Run("minimum deposit", func(t *testing.T) {
		s := newTestServer(t)
		charge := &paystack.Transaction{Status: "success", Reference: "ref_3", Amount: 10000}
		s.wallets.On("VerifyDeposit", mock.Anything, s.userID, "ref_3").Return(charge, nil, service.ErrMinimumDeposit)

		w := s.do(http.MethodPost, "/verify-payment", gin.H{"reference": "ref_3"}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "minimum_deposit", decodeBody(t, w)["code"])
	})

	t.Run("provider error", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("VerifyDeposit", mock.Anything, s.userID, "ref_4").Return(nil, nil, &service.ProviderError{
			Op:  "verify transaction",
			Err: &paystack.APIError{StatusCode: http.StatusBadRequest, Message: "Transaction reference not found"},
		})

		w := s.do(http.MethodPost, "/verify-payment", gin.H{"reference": "ref_4"}, s.userAuth)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Transaction reference not found", decodeBody(t, w)["error"])
	})
}

func TestPaystackTransfer(t *testing.T) {
	t.Run("create transfer recipient", func(t *testing.T) {
		s := newTestServer(t)
		details := models.BankDetails{AccountNumber: "0123456789", BankCode: "058", AccountName: "Ada Obi"}
		s.withdrawals.On("CreateTransferRecipient", mock.Anything, s.userID, details).
			Return(&paystack.Recipient{RecipientCode: "RCP_1"}, nil)

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{
			"endpoint":       "create-transfer-recipient",
			"account_number": "0123456789",
			"bank_code":      "058",
			"account_name":   "Ada Obi",
		}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "RCP_1", data["recipient_code"])
	})

	t.Run("create transfer recipient requires bank details", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "create-transfer-recipient"}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("check availability", func(t *testing.T) {
		s := newTestServer(t)
		s.withdrawals.On("CheckAvailability", mock.Anything, s.userID, decEq("1000")).Return(&models.WithdrawalAvailability{
			Available: false,
			Reason:    "Insufficient funds",
		}, nil)

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "check-withdrawal-availability", "amount": 1000}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["available"])
		assert.Equal(t, "Insufficient funds", body["reason"])
	})

	t.Run("initiate transfer", func(t *testing.T) {
		s := newTestServer(t)
		s.withdrawals.On("Withdraw", mock.Anything, s.userID, decEq("1000"), "").Return(&models.Withdrawal{
			Status: models.WithdrawalStatusLedgerApplied,
		}, nil)

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "initiate-transfer", "amount": 1000}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Withdrawal successful", decodeBody(t, w)["message"])
	})

	t.Run("ledger failure after transfer", func(t *testing.T) {
		s := newTestServer(t)
		s.withdrawals.On("Withdraw", mock.Anything, s.userID, decEq("1000"), "RCP_1").
			Return(&models.Withdrawal{}, fmt.Errorf("%w: connection reset", service.ErrFailedToUpdateWallet))

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{
			"endpoint":       "initiate-transfer",
			"amount":         1000,
			"recipient_code": "RCP_1",
		}, s.userAuth)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "failed_to_update_wallet", body["code"])
		assert.Equal(t, service.ErrFailedToUpdateWallet.Error(), body["error"])
	})

	t.Run("provider failure", func(t *testing.T) {
		s := newTestServer(t)
		s.withdrawals.On("Withdraw", mock.Anything, s.userID, decEq("1000"), "").
			Return(nil, &service.ProviderError{Op: "initiate transfer", Err: errors.New("timeout")})

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "initiate-transfer", "amount": 1000}, s.userAuth)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Payment provider request failed", decodeBody(t, w)["error"])
	})

	t.Run("bounds", func(t *testing.T) {
		s := newTestServer(t)
		s.withdrawals.On("Withdraw", mock.Anything, s.userID, decEq("100"), "").
			Return(nil, service.ValidateWithdrawalAmount(decimal.NewFromInt(100)))

		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "initiate-transfer", "amount": 100}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Minimum withdrawal amount is ₦500", decodeBody(t, w)["error"])
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/paystack-transfer", gin.H{"endpoint": "drain-everything"}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid endpoint", decodeBody(t, w)["error"])
	})
}

func TestPaystackWebhook(t *testing.T) {
	chargeBody := []byte(`{"event":"charge.success","data":{"status":"success","reference":"ref_9","amount":50000,"customer":{"email":"ada@clan.gg"}}}`)

	webhook := func(s *testServer, body []byte, signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/paystack-webhook", bytes.NewReader(body))
		req.Header.Set("x-paystack-signature", signature)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}
	isCharge := mock.MatchedBy(func(c *paystack.Transaction) bool {
		return c.Reference == "ref_9" && c.Amount == 50000 && c.Customer.Email == "ada@clan.gg"
	})

	t.Run("credits charge", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("HandleChargeSuccess", mock.Anything, isCharge).Return(&models.DepositResult{}, nil)

		w := webhook(s, chargeBody, paystack.Sign(testWebhookSecret, chargeBody))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid signature has no side effects", func(t *testing.T) {
		s := newTestServer(t)
		w := webhook(s, chargeBody, paystack.Sign("sk_wrong", chargeBody))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		s.wallets.AssertNotCalled(t, "HandleChargeSuccess", mock.Anything, mock.Anything)
	})

	t.Run("missing signature", func(t *testing.T) {
		s := newTestServer(t)
		w := webhook(s, chargeBody, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown payer", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("HandleChargeSuccess", mock.Anything, isCharge).Return(nil, service.ErrProfileNotFound)

		w := webhook(s, chargeBody, paystack.Sign(testWebhookSecret, chargeBody))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("below minimum is acknowledged", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("HandleChargeSuccess", mock.Anything, isCharge).Return(nil, service.ErrMinimumDeposit)

		w := webhook(s, chargeBody, paystack.Sign(testWebhookSecret, chargeBody))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database failure", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("HandleChargeSuccess", mock.Anything, isCharge).Return(nil, errors.New("connection refused"))

		w := webhook(s, chargeBody, paystack.Sign(testWebhookSecret, chargeBody))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("other events are acknowledged", func(t *testing.T) {
		s := newTestServer(t)
		body := []byte(`{"event":"transfer.success","data":{"reference":"withdrawal_1"}}`)
		w := webhook(s, body, paystack.Sign(testWebhookSecret, body))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCreateGiveaway(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		giveawayID := uuid.New()
		params := mock.MatchedBy(func(p models.CreateGiveawayParams) bool {
			return p.Title == "Weekend drop" && p.CodeValue.Equal(decimal.NewFromInt(100)) &&
				p.TotalCodes == 5 && p.ExpiresInHours == 24 && !p.IsPrivate
		})
		s.giveaways.On("CreateGiveaway", mock.Anything, s.userID, params).Return(&models.Giveaway{
			ID:    giveawayID,
			Title: "Weekend drop",
			Codes: []string{"AAAA1111"},
		}, nil)

		w := s.do(http.MethodPost, "/create-giveaway", gin.H{
			"title":            "Weekend drop",
			"code_value":       100,
			"total_codes":      5,
			"expires_in_hours": 24,
		}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, giveawayID.String(), body["giveaway_id"])
	})

	t.Run("validation error", func(t *testing.T) {
		s := newTestServer(t)
		s.giveaways.On("CreateGiveaway", mock.Anything, s.userID, mock.Anything).
			Return(nil, &service.ValidationError{Message: "Title is required"})

		w := s.do(http.MethodPost, "/create-giveaway", gin.H{"code_value": 100}, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Title is required", decodeBody(t, w)["error"])
	})
}

func TestRedeemGiveaway(t *testing.T) {
	amount := decimal.NewFromInt(100)
	balance := decimal.NewFromInt(600)

	tests := []struct {
		name       string
		result     *models.RedeemResult
		wantStatus int
	}{
		{"redeemed", &models.RedeemResult{Success: true, Amount: &amount, NewBalance: &balance}, http.StatusOK},
		{"invalid code", &models.RedeemResult{Message: models.RedeemMessageInvalidCode}, http.StatusBadRequest},
		{"already redeemed", &models.RedeemResult{Message: models.RedeemMessageAlreadyRedeemed}, http.StatusBadRequest},
		{"cooldown", &models.RedeemResult{Message: models.RedeemMessageCooldown}, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.giveaways.On("RedeemCode", mock.Anything, s.userID, "abcd2345").Return(tt.result, nil)

			w := s.do(http.MethodPost, "/redeem-giveaway", gin.H{"code": "abcd2345"}, s.userAuth)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.result.Success, body["success"])
			if tt.result.Message != "" {
				assert.Equal(t, tt.result.Message, body["message"])
			}
		})
	}
}

func TestDeductMonthlyTax(t *testing.T) {
	t.Run("service role runs the batch", func(t *testing.T) {
		s := newTestServer(t)
		s.tax.On("DeductMonthlyTax", mock.Anything, s.now).Return(&models.TaxRun{
			Period:         "2026-10",
			WalletsCharged: 3,
		}, nil)

		w := s.do(http.MethodPost, "/deduct-monthly-tax", nil, "Bearer "+testServiceKey)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Monthly tax deducted", body["message"])
		run := body["run"].(map[string]interface{})
		assert.Equal(t, float64(3), run["wallets_charged"])
	})

	t.Run("already ran", func(t *testing.T) {
		s := newTestServer(t)
		s.tax.On("DeductMonthlyTax", mock.Anything, s.now).Return(&models.TaxRun{Period: "2026-10", AlreadyRan: true}, nil)

		w := s.do(http.MethodPost, "/deduct-monthly-tax", nil, "Bearer "+testServiceKey)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Monthly tax already deducted for 2026-10", decodeBody(t, w)["message"])
	})

	t.Run("member token is rejected", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/deduct-monthly-tax", nil, s.userAuth)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t)
		s.tax.On("DeductMonthlyTax", mock.Anything, s.now).Return(nil, service.ErrTaxNotConfigured)

		w := s.do(http.MethodPost, "/deduct-monthly-tax", nil, "Bearer "+testServiceKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProcessEarningsCashout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		s.earnings.On("ProcessCashout", mock.Anything, s.userID, decEq("4000")).Return(&models.EarningsCashout{
			ID:     9,
			Status: models.CashoutStatusSuccess,
		}, nil)

		w := s.do(http.MethodPost, "/process-earnings-cashout", gin.H{"amount": 4000}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["success"])
	})

	t.Run("forbidden role", func(t *testing.T) {
		s := newTestServer(t)
		s.earnings.On("ProcessCashout", mock.Anything, s.userID, decEq("4000")).Return(nil, service.ErrForbidden)

		w := s.do(http.MethodPost, "/process-earnings-cashout", gin.H{"amount": 4000}, s.userAuth)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSendNotification(t *testing.T) {
	t.Run("service role broadcast", func(t *testing.T) {
		s := newTestServer(t)
		req := mock.MatchedBy(func(r models.NotificationRequest) bool {
			return r.UserID == nil && r.Title == "Scrim tonight" && r.Type == models.NotificationTypeGeneral
		})
		s.notifications.On("Send", mock.Anything, req).Return(12, nil)

		w := s.do(http.MethodPost, "/send-notification", gin.H{
			"type":    "general",
			"title":   "Scrim tonight",
			"message": "9pm WAT",
		}, "Bearer "+testServiceKey)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(12), decodeBody(t, w)["sent"])
	})

	t.Run("member targets one user", func(t *testing.T) {
		s := newTestServer(t)
		target := uuid.New()
		req := mock.MatchedBy(func(r models.NotificationRequest) bool {
			return r.UserID != nil && *r.UserID == target && r.ActionData["screen"] == "wallet"
		})
		s.notifications.On("Send", mock.Anything, req).Return(1, nil)

		w := s.do(http.MethodPost, "/send-notification", gin.H{
			"type":        "wallet",
			"title":       "Paid",
			"message":     "Check your wallet",
			"user_id":     target.String(),
			"action_data": gin.H{"screen": "wallet"},
		}, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := newTestServer(t)
		s.notifications.On("Send", mock.Anything, mock.Anything).Return(0, service.ErrProfileNotFound)

		w := s.do(http.MethodPost, "/send-notification", gin.H{
			"title":   "Paid",
			"message": "Check your wallet",
			"user_id": uuid.NewString(),
		}, "Bearer "+testServiceKey)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/send-notification", gin.H{"title": "x", "message": "y"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetWallet(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("GetWallet", mock.Anything, s.userID, defaultTransactionLimit).Return(&models.WalletSummary{
			Wallet: &models.Wallet{UserID: s.userID, Balance: decimal.NewFromInt(2500)},
		}, nil)

		w := s.do(http.MethodGet, "/wallet", nil, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
		wallet := decodeBody(t, w)["wallet"].(map[string]interface{})
		assert.Equal(t, "2500", wallet["balance"])
	})

	t.Run("limit is capped", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("GetWallet", mock.Anything, s.userID, maxTransactionLimit).Return(&models.WalletSummary{}, nil)

		w := s.do(http.MethodGet, "/wallet?limit=5000", nil, s.userAuth)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodGet, "/wallet?limit=-1", nil, s.userAuth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no wallet", func(t *testing.T) {
		s := newTestServer(t)
		s.wallets.On("GetWallet", mock.Anything, s.userID, defaultTransactionLimit).Return(nil, service.ErrWalletNotFound)

		w := s.do(http.MethodGet, "/wallet", nil, s.userAuth)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

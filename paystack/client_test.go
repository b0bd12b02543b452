package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	endpoint string
	success  bool
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *fakeObserver) RecordProviderRequest(endpoint string, success bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{endpoint: endpoint, success: success})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "sk_test_secret", 5*time.Second)
}

func TestClient_VerifyTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"id": 42,
				"status": "success",
				"reference": "ref_123",
				"amount": 150000,
				"currency": "NGN",
				"channel": "card",
				"customer": {"email": "player@clan.gg", "customer_code": "CUS_1"},
				"metadata": ""
			}
		}`))
	})

	tx, err := client.VerifyTransaction(context.Background(), "ref_123")
	require.NoError(t, err)

	assert.True(t, tx.Succeeded())
	assert.Equal(t, "ref_123", tx.Reference)
	assert.True(t, decimal.NewFromInt(1500).Equal(tx.AmountNaira()))
	assert.Equal(t, "player@clan.gg", tx.Customer.Email)
}

func TestClient_StatusFalseIsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	})

	_, err := client.VerifyTransaction(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "Transaction reference not found", apiErr.Message)
}

func TestClient_Non2xxIsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Insufficient balance"}`))
	})

	_, err := client.InitiateTransfer(context.Background(), TransferRequest{Amount: 50000, Recipient: "RCP_1", Reference: "w_1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient balance", apiErr.Message)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := client.GetBalance(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestClient_CreateTransferRecipientDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transferrecipient", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body RecipientRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nuban", body.Type)
		assert.Equal(t, "NGN", body.Currency)
		assert.Equal(t, "0123456789", body.AccountNumber)
		assert.Equal(t, "058", body.BankCode)

		w.Write([]byte(`{"status": true, "message": "Transfer recipient created", "data": {
			"recipient_code": "RCP_abc", "name": "Ada Player", "type": "nuban", "currency": "NGN",
			"details": {"account_number": "0123456789", "account_name": "ADA PLAYER", "bank_code": "058", "bank_name": "GTBank"}
		}}`))
	})

	recipient, err := client.CreateTransferRecipient(context.Background(), RecipientRequest{
		Name:          "Ada Player",
		AccountNumber: "0123456789",
		BankCode:      "058",
	})
	require.NoError(t, err)
	assert.Equal(t, "RCP_abc", recipient.RecipientCode)
	assert.Equal(t, "GTBank", recipient.Details.BankName)
}

func TestClient_InitiateTransferSendsKobo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body TransferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "balance", body.Source)
		assert.Equal(t, int64(60000), body.Amount)
		assert.Equal(t, "RCP_abc", body.Recipient)
		assert.Equal(t, "withdrawal_1", body.Reference)

		w.Write([]byte(`{"status": true, "message": "Transfer has been queued", "data": {
			"transfer_code": "TRF_1", "reference": "withdrawal_1", "status": "pending", "amount": 60000, "currency": "NGN"
		}}`))
	})

	transfer, err := client.InitiateTransfer(context.Background(), TransferRequest{
		Amount:    ToKobo(decimal.NewFromInt(600)),
		Recipient: "RCP_abc",
		Reference: "withdrawal_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRF_1", transfer.TransferCode)
	assert.Equal(t, "pending", transfer.Status)
}

func TestClient_GetBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance", r.URL.Path)
		w.Write([]byte(`{"status": true, "message": "Balances retrieved", "data": [{"currency": "NGN", "balance": 12345600}]}`))
	})

	balances, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "NGN", balances[0].Currency)
	assert.True(t, decimal.NewFromInt(123456).Equal(FromKobo(balances[0].Balance)))
}

func TestClient_ObserverSeesOutcome(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"status": true, "message": "ok", "data": []}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	})
	observer := &fakeObserver{}
	client.WithObserver(observer)

	_, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	_, err = client.GetBalance(context.Background())
	require.Error(t, err)

	require.Len(t, observer.calls, 2)
	assert.Equal(t, recordedCall{endpoint: "get_balance", success: true}, observer.calls[0])
	assert.Equal(t, recordedCall{endpoint: "get_balance", success: false}, observer.calls[1])
}

func TestKoboConversion(t *testing.T) {
	assert.Equal(t, int64(50000), ToKobo(decimal.NewFromInt(500)))
	assert.Equal(t, int64(2450), ToKobo(decimal.RequireFromString("24.50")))
	assert.True(t, decimal.RequireFromString("0.99").Equal(FromKobo(99)))
}

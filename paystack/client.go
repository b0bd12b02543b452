package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// RequestObserver receives the outcome of every provider call
type RequestObserver interface {
	RecordProviderRequest(endpoint string, success bool, duration time.Duration)
}

// Client is a Paystack REST API client
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	observer   RequestObserver
}

// NewClient creates a new Paystack client
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithObserver attaches a request observer (metrics)
func (c *Client) WithObserver(observer RequestObserver) *Client {
	c.observer = observer
	return c
}

// APIError is returned when Paystack answers with a non-2xx status or status=false
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack error (status %d): %s", e.StatusCode, e.Message)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Customer is the payer attached to a transaction
type Customer struct {
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
}

// Transaction is a collected payment, as returned by verify and the charge.success webhook
type Transaction struct {
	ID              int64           `json:"id"`
	Status          string          `json:"status"`
	Reference       string          `json:"reference"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	Channel         string          `json:"channel"`
	GatewayResponse string          `json:"gateway_response"`
	PaidAt          *time.Time      `json:"paid_at"`
	Customer        Customer        `json:"customer"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

// Succeeded reports whether the payment was collected
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

// AmountNaira converts the kobo amount to naira
func (t *Transaction) AmountNaira() decimal.Decimal {
	return FromKobo(t.Amount)
}

// RecipientRequest creates a bank transfer recipient
type RecipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

// RecipientDetails are the resolved bank details of a recipient
type RecipientDetails struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code"`
	BankName      string `json:"bank_name"`
}

// Recipient is a transfer recipient registered with Paystack
type Recipient struct {
	RecipientCode string           `json:"recipient_code"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Currency      string           `json:"currency"`
	Details       RecipientDetails `json:"details"`
}

// TransferRequest initiates a payout from the platform balance. Amount is in kobo.
type TransferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// Transfer is the provider's view of an initiated payout
type Transfer struct {
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Balance is the platform balance in one currency, in kobo
type Balance struct {
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"`
}

// VerifyTransaction looks up a payment by reference
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	path := "/transaction/verify/" + url.PathEscape(reference)

	var tx Transaction
	if err := c.doRequest(ctx, "verify_transaction", http.MethodGet, path, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransferRecipient registers a bank account as a transfer recipient
func (c *Client) CreateTransferRecipient(ctx context.Context, req RecipientRequest) (*Recipient, error) {
	if req.Type == "" {
		req.Type = "nuban"
	}
	if req.Currency == "" {
		req.Currency = "NGN"
	}

	var recipient Recipient
	if err := c.doRequest(ctx, "create_transfer_recipient", http.MethodPost, "/transferrecipient", req, &recipient); err != nil {
		return nil, err
	}
	return &recipient, nil
}

// InitiateTransfer sends money from the platform balance to a recipient
func (c *Client) InitiateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	if req.Source == "" {
		req.Source = "balance"
	}

	var transfer Transfer
	if err := c.doRequest(ctx, "initiate_transfer", http.MethodPost, "/transfer", req, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// GetBalance returns the platform balances
func (c *Client) GetBalance(ctx context.Context) ([]Balance, error) {
	var balances []Balance
	if err := c.doRequest(ctx, "get_balance", http.MethodGet, "/balance", nil, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, method, path string, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.RecordProviderRequest(endpoint, err == nil, time.Since(start))
		}
	}()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call paystack %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read paystack response: %w", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("failed to decode paystack response: %w", jsonErr)
	}

	if resp.StatusCode >= 400 || !env.Status {
		log.WithFields(log.Fields{
			"endpoint":   endpoint,
			"statusCode": resp.StatusCode,
			"message":    env.Message,
		}).Warn("Paystack request failed")
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode paystack %s data: %w", endpoint, err)
		}
	}
	return nil
}

// FromKobo converts an integer kobo amount to naira
func FromKobo(kobo int64) decimal.Decimal {
	return decimal.New(kobo, -2)
}

// ToKobo converts a naira amount to integer kobo
func ToKobo(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

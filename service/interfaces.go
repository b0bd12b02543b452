package service

import (
	"context"
	"time"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfileRepository defines the interface for the member profile read model
type ProfileRepository interface {
	// GetByID retrieves a profile by its auth subject id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// GetByEmail retrieves a profile by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)

	// GetAllIDs returns the ids of every member
	GetAllIDs(ctx context.Context) ([]uuid.UUID, error)

	// UpdateBankDetails stores payout bank info and the provider recipient code
	UpdateBankDetails(ctx context.Context, id uuid.UUID, details models.BankDetails) error
}

// WalletRepository defines the interface for wallet data access and the atomic ledger procedures
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)

	// GetWithBalanceAtLeast returns wallets whose balance is >= min
	GetWithBalanceAtLeast(ctx context.Context, min decimal.Decimal) ([]*models.Wallet, error)

	// CountWithBalanceBelow counts wallets whose balance is < limit
	CountWithBalanceBelow(ctx context.Context, limit decimal.Decimal) (int, error)

	// Credit adds amount to the user's wallet, creating it if absent (credit_wallet)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string, txType models.TransactionType, metadata map[string]any) (*models.LedgerEntry, error)

	// ApplyChange applies a signed balance change to a wallet (update_wallet_and_create_transaction)
	ApplyChange(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, reference string, metadata map[string]any) (*models.LedgerEntry, error)

	// ExecuteTransfer moves amount between members and charges fee to the sender (execute_user_transfer)
	ExecuteTransfer(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount, fee decimal.Decimal) (*models.TransferResult, error)
}

// TransactionRepository defines the interface for ledger row reads
type TransactionRepository interface {
	// GetByID retrieves a transaction by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)

	// GetByWallet returns the latest transactions of a wallet
	GetByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]*models.Transaction, error)
}

// EarningsRepository defines the interface for clan earnings and cashouts
type EarningsRepository interface {
	// Record inserts an earnings row; a second row for the same transaction is ignored
	Record(ctx context.Context, earning *models.Earning) error

	// LockCashouts serializes cashouts until the surrounding transaction ends
	LockCashouts(ctx context.Context) error

	// GetSummary returns total earnings, non-failed cashouts and the difference
	GetSummary(ctx context.Context) (*models.EarningsSummary, error)

	// CreateCashout inserts a cashout row
	CreateCashout(ctx context.Context, cashout *models.EarningsCashout) error

	// UpdateCashout stores the cashout's status, transfer code and failure reason
	UpdateCashout(ctx context.Context, cashout *models.EarningsCashout) error
}

// GiveawayRepository defines the interface for giveaways and their codes
type GiveawayRepository interface {
	// CreateWithCodes inserts a giveaway and all of its codes (create_giveaway_with_codes)
	CreateWithCodes(ctx context.Context, createdBy uuid.UUID, params models.CreateGiveawayParams, expiresAt time.Time, codes []string) (uuid.UUID, error)

	// GetByID retrieves a giveaway by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.Giveaway, error)

	// Redeem atomically redeems a code and credits the redeemer (redeem_giveaway_code)
	Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.RedeemResult, error)

	// GetExpiredUnrefunded returns expired giveaways that have not been refunded yet
	GetExpiredUnrefunded(ctx context.Context, now time.Time) ([]*models.Giveaway, error)

	// MarkRefunded stamps refunded_at and returns the locked row, or nil if it was already refunded
	MarkRefunded(ctx context.Context, id uuid.UUID, at time.Time) (*models.Giveaway, error)
}

// TaxRepository defines the interface for tax settings and tax runs
type TaxRepository interface {
	// GetLatestSetting returns the newest configured tax amount
	GetLatestSetting(ctx context.Context) (*models.TaxSetting, error)

	// GetRunByPeriod returns the completed run of a period
	GetRunByPeriod(ctx context.Context, period string) (*models.TaxRun, error)

	// CreateRun records a completed run; returns false if the period was already recorded
	CreateRun(ctx context.Context, run *models.TaxRun) (bool, error)
}

// WithdrawalRepository defines the interface for withdrawal intents
type WithdrawalRepository interface {
	// Create inserts a new withdrawal intent
	Create(ctx context.Context, withdrawal *models.Withdrawal) error

	// UpdateStatus stores the intent's status, transfer code and failure reason
	UpdateStatus(ctx context.Context, withdrawal *models.Withdrawal) error

	// GetNeedingLedger returns intents whose provider transfer succeeded but whose
	// wallet debit has not been applied, last touched before olderThan
	GetNeedingLedger(ctx context.Context, olderThan time.Time, limit int) ([]*models.Withdrawal, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	// CreateBatch inserts notifications
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ProfileRepository() ProfileRepository
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	EarningsRepository() EarningsRepository
	GiveawayRepository() GiveawayRepository
	TaxRepository() TaxRepository
	WithdrawalRepository() WithdrawalRepository
	NotificationRepository() NotificationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PaymentGateway is the subset of the payment provider API the wallet uses
type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
	CreateTransferRecipient(ctx context.Context, req paystack.RecipientRequest) (*paystack.Recipient, error)
	InitiateTransfer(ctx context.Context, req paystack.TransferRequest) (*paystack.Transfer, error)
	GetBalance(ctx context.Context) ([]paystack.Balance, error)
}

// CooldownStore tracks per-key cooldown windows
type CooldownStore interface {
	// Remaining returns how long the cooldown for key still runs (0 if none)
	Remaining(ctx context.Context, key string) (time.Duration, error)

	// Start begins a cooldown for key
	Start(ctx context.Context, key string, ttl time.Duration) error
}

// PushPublisher hands push notifications to the delivery pipeline
type PushPublisher interface {
	PublishPush(ctx context.Context, msg *models.PushMessage) error
}

// WalletService defines the interface for deposits, transfers and wallet reads
type WalletService interface {
	// VerifyDeposit verifies a provider payment and credits the caller's wallet
	VerifyDeposit(ctx context.Context, userID uuid.UUID, reference string) (*paystack.Transaction, *models.DepositResult, error)

	// HandleChargeSuccess credits the wallet of the member who paid (webhook)
	HandleChargeSuccess(ctx context.Context, charge *paystack.Transaction) (*models.DepositResult, error)

	// TransferFunds sends amount to another member by IGN; the sender also pays the transfer fee
	TransferFunds(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount decimal.Decimal) (*models.TransferResult, error)

	// GetWallet returns the balance and the latest transactions
	GetWallet(ctx context.Context, userID uuid.UUID, limit int) (*models.WalletSummary, error)
}

// WithdrawalService defines the interface for payouts to members' bank accounts
type WithdrawalService interface {
	// CreateTransferRecipient registers the member's bank account with the provider
	CreateTransferRecipient(ctx context.Context, userID uuid.UUID, details models.BankDetails) (*paystack.Recipient, error)

	// CheckAvailability reports whether a withdrawal of amount can go through now
	CheckAvailability(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalAvailability, error)

	// Withdraw pays amount out to the member and debits amount plus fee
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, recipientCode string) (*models.Withdrawal, error)

	// ReconcileWithdrawals re-applies the wallet debit of confirmed transfers
	ReconcileWithdrawals(ctx context.Context) (int, error)
}

// GiveawayService defines the interface for giveaway operations
type GiveawayService interface {
	// CreateGiveaway funds a giveaway from the creator's wallet and issues its codes
	CreateGiveaway(ctx context.Context, creatorID uuid.UUID, params models.CreateGiveawayParams) (*models.Giveaway, error)

	// RedeemCode redeems a code for the user
	RedeemCode(ctx context.Context, userID uuid.UUID, code string) (*models.RedeemResult, error)

	// RefundExpired returns the value of unredeemed codes of expired giveaways to their creators
	RefundExpired(ctx context.Context) (int, error)
}

// TaxService defines the interface for the monthly tax batch
type TaxService interface {
	// DeductMonthlyTax charges the configured tax to every wallet that can afford it
	DeductMonthlyTax(ctx context.Context, now time.Time) (*models.TaxRun, error)
}

// EarningsService defines the interface for clan earnings cashouts
type EarningsService interface {
	// ProcessCashout pays clan earnings out to the requester's bank account
	ProcessCashout(ctx context.Context, requesterID uuid.UUID, amount decimal.Decimal) (*models.EarningsCashout, error)
}

// NotificationService defines the interface for in-app and push notifications
type NotificationService interface {
	// Send notifies one member, or every member when req.UserID is nil
	Send(ctx context.Context, req models.NotificationRequest) (int, error)

	// BroadcastExcept notifies every member but one
	BroadcastExcept(ctx context.Context, excludeID uuid.UUID, req models.NotificationRequest) (int, error)
}

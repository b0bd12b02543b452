package service

import (
	"context"
	"time"

	"clanwallet/events"
	"clanwallet/models"
	"clanwallet/paystack"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProfileRepository) UpdateBankDetails(ctx context.Context, id uuid.UUID, details models.BankDetails) error {
	args := m.Called(ctx, id, details)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWithBalanceAtLeast(ctx context.Context, min decimal.Decimal) ([]*models.Wallet, error) {
	args := m.Called(ctx, min)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) CountWithBalanceBelow(ctx context.Context, limit decimal.Decimal) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string, txType models.TransactionType, metadata map[string]any) (*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, reference, txType, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockWalletRepository) ApplyChange(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, reference string, metadata map[string]any) (*models.LedgerEntry, error) {
	args := m.Called(ctx, walletID, amount, txType, reference, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockWalletRepository) ExecuteTransfer(ctx context.Context, senderID uuid.UUID, recipientIGN string, amount, fee decimal.Decimal) (*models.TransferResult, error) {
	args := m.Called(ctx, senderID, recipientIGN, amount, fee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferResult), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockEarningsRepository is a mock implementation of EarningsRepository
type MockEarningsRepository struct {
	mock.Mock
}

func (m *MockEarningsRepository) Record(ctx context.Context, earning *models.Earning) error {
	args := m.Called(ctx, earning)
	return args.Error(0)
}

func (m *MockEarningsRepository) LockCashouts(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEarningsRepository) GetSummary(ctx context.Context) (*models.EarningsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EarningsSummary), args.Error(1)
}

func (m *MockEarningsRepository) CreateCashout(ctx context.Context, cashout *models.EarningsCashout) error {
	args := m.Called(ctx, cashout)
	return args.Error(0)
}

func (m *MockEarningsRepository) UpdateCashout(ctx context.Context, cashout *models.EarningsCashout) error {
	args := m.Called(ctx, cashout)
	return args.Error(0)
}

// MockGiveawayRepository is a mock implementation of GiveawayRepository
type MockGiveawayRepository struct {
	mock.Mock
}

func (m *MockGiveawayRepository) CreateWithCodes(ctx context.Context, createdBy uuid.UUID, params models.CreateGiveawayParams, expiresAt time.Time, codes []string) (uuid.UUID, error) {
	args := m.Called(ctx, createdBy, params, expiresAt, codes)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockGiveawayRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Giveaway, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.RedeemResult, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedeemResult), args.Error(1)
}

func (m *MockGiveawayRepository) GetExpiredUnrefunded(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) MarkRefunded(ctx context.Context, id uuid.UUID, at time.Time) (*models.Giveaway, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

// MockTaxRepository is a mock implementation of TaxRepository
type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) GetLatestSetting(ctx context.Context) (*models.TaxSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxSetting), args.Error(1)
}

func (m *MockTaxRepository) GetRunByPeriod(ctx context.Context, period string) (*models.TaxRun, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxRun), args.Error(1)
}

func (m *MockTaxRepository) CreateRun(ctx context.Context, run *models.TaxRun) (bool, error) {
	args := m.Called(ctx, run)
	return args.Bool(0), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, withdrawal *models.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetNeedingLedger(ctx context.Context, olderThan time.Time, limit int) ([]*models.Withdrawal, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Withdrawal), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repository getters return whatever SetRepositories configured.
type MockUnitOfWork struct {
	mock.Mock
	profileRepo      ProfileRepository
	walletRepo       WalletRepository
	transactionRepo  TransactionRepository
	earningsRepo     EarningsRepository
	giveawayRepo     GiveawayRepository
	taxRepo          TaxRepository
	withdrawalRepo   WithdrawalRepository
	notificationRepo NotificationRepository
	eventBus         EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(mocks *TestMocks) {
	m.profileRepo = mocks.ProfileRepo
	m.walletRepo = mocks.WalletRepo
	m.transactionRepo = mocks.TransactionRepo
	m.earningsRepo = mocks.EarningsRepo
	m.giveawayRepo = mocks.GiveawayRepo
	m.taxRepo = mocks.TaxRepo
	m.withdrawalRepo = mocks.WithdrawalRepo
	m.notificationRepo = mocks.NotificationRepo
	m.eventBus = mocks.EventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ProfileRepository() ProfileRepository           { return m.profileRepo }
func (m *MockUnitOfWork) WalletRepository() WalletRepository             { return m.walletRepo }
func (m *MockUnitOfWork) TransactionRepository() TransactionRepository   { return m.transactionRepo }
func (m *MockUnitOfWork) EarningsRepository() EarningsRepository         { return m.earningsRepo }
func (m *MockUnitOfWork) GiveawayRepository() GiveawayRepository         { return m.giveawayRepo }
func (m *MockUnitOfWork) TaxRepository() TaxRepository                   { return m.taxRepo }
func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository     { return m.withdrawalRepo }
func (m *MockUnitOfWork) NotificationRepository() NotificationRepository { return m.notificationRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher                       { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Transaction), args.Error(1)
}

func (m *MockPaymentGateway) CreateTransferRecipient(ctx context.Context, req paystack.RecipientRequest) (*paystack.Recipient, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Recipient), args.Error(1)
}

func (m *MockPaymentGateway) InitiateTransfer(ctx context.Context, req paystack.TransferRequest) (*paystack.Transfer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Transfer), args.Error(1)
}

func (m *MockPaymentGateway) GetBalance(ctx context.Context) ([]paystack.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paystack.Balance), args.Error(1)
}

// MockCooldownStore is a mock implementation of CooldownStore
type MockCooldownStore struct {
	mock.Mock
}

func (m *MockCooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCooldownStore) Start(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

// MockPushPublisher is a mock implementation of PushPublisher
type MockPushPublisher struct {
	mock.Mock
}

func (m *MockPushPublisher) PublishPush(ctx context.Context, msg *models.PushMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, req models.NotificationRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) BroadcastExcept(ctx context.Context, excludeID uuid.UUID, req models.NotificationRequest) (int, error) {
	args := m.Called(ctx, excludeID, req)
	return args.Int(0), args.Error(1)
}

package service

import (
	"testing"

	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Test IDs - fixed so failures are easy to read
var (
	TestUser1ID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	TestUser2ID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	TestUser3ID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	TestWallet1ID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	TestWallet2ID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	TestTxID      = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	ProfileRepo      *MockProfileRepository
	WalletRepo       *MockWalletRepository
	TransactionRepo  *MockTransactionRepository
	EarningsRepo     *MockEarningsRepository
	GiveawayRepo     *MockGiveawayRepository
	TaxRepo          *MockTaxRepository
	WithdrawalRepo   *MockWithdrawalRepository
	NotificationRepo *MockNotificationRepository
	EventPublisher   *MockEventPublisher
	Gateway          *MockPaymentGateway
	UoW              *MockUnitOfWork
	Factory          *MockUnitOfWorkFactory
}

// NewTestMocks creates a new set of mocks with a unit of work that can be
// begun, committed and rolled back any number of times
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		ProfileRepo:      new(MockProfileRepository),
		WalletRepo:       new(MockWalletRepository),
		TransactionRepo:  new(MockTransactionRepository),
		EarningsRepo:     new(MockEarningsRepository),
		GiveawayRepo:     new(MockGiveawayRepository),
		TaxRepo:          new(MockTaxRepository),
		WithdrawalRepo:   new(MockWithdrawalRepository),
		NotificationRepo: new(MockNotificationRepository),
		EventPublisher:   new(MockEventPublisher),
		Gateway:          new(MockPaymentGateway),
		UoW:              new(MockUnitOfWork),
		Factory:          new(MockUnitOfWorkFactory),
	}
	m.UoW.SetRepositories(m)
	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Rollback").Return(nil)
	return m
}

// ExpectCommit allows commits on the unit of work
func (m *TestMocks) ExpectCommit() {
	m.UoW.On("Commit").Return(nil)
}

// AllowEvents accepts any published event
func (m *TestMocks) AllowEvents() {
	m.EventPublisher.On("Publish", mock.Anything).Return()
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.ProfileRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.EarningsRepo.AssertExpectations(t)
	m.GiveawayRepo.AssertExpectations(t)
	m.TaxRepo.AssertExpectations(t)
	m.WithdrawalRepo.AssertExpectations(t)
	m.NotificationRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Gateway.AssertExpectations(t)
}

// testProfile returns a member profile with bank details on file
func testProfile(id uuid.UUID, ign string, role models.Role) *models.Profile {
	account := "0123456789"
	bank := "058"
	name := ign + " Account"
	return &models.Profile{
		ID:                id,
		Email:             ign + "@clan.gg",
		IGN:               ign,
		Role:              role,
		BankAccountNumber: &account,
		BankCode:          &bank,
		BankAccountName:   &name,
	}
}

func testWallet(id, userID uuid.UUID, balance string) *models.Wallet {
	return &models.Wallet{
		ID:       id,
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: models.DefaultCurrency,
	}
}

// decimalEq matches a decimal argument by value
func decimalEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}

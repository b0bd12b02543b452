package testutil

import (
	"context"
	"strings"
	"testing"

	"clanwallet/database"
	"clanwallet/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestProfile inserts a member profile. Profiles are owned by the auth
// provider, so the ledger code never creates them itself.
func CreateTestProfile(t *testing.T, db *database.DB, ign string, role models.Role) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		ID:    uuid.New(),
		Email: strings.ToLower(ign) + "@clan.gg",
		IGN:   ign,
		Role:  role,
	}

	err := db.QueryRow(context.Background(), `
		INSERT INTO profiles (id, email, ign, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, profile.ID, profile.Email, profile.IGN, string(profile.Role)).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	require.NoError(t, err)

	return profile
}

// CreateTestMember inserts a member profile with a funded wallet.
// A zero balance still creates the wallet.
func CreateTestMember(t *testing.T, db *database.DB, ign string, balance string) (*models.Profile, *models.Wallet) {
	t.Helper()

	profile := CreateTestProfile(t, db, ign, models.RoleMember)
	wallet := CreateTestWallet(t, db, profile.ID, balance)
	return profile, wallet
}

// CreateTestWallet inserts a wallet with the given balance, bypassing the ledger
func CreateTestWallet(t *testing.T, db *database.DB, userID uuid.UUID, balance string) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: models.DefaultCurrency,
	}

	err := db.QueryRow(context.Background(), `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, wallet.UserID, wallet.Balance, wallet.Currency).Scan(&wallet.ID, &wallet.CreatedAt, &wallet.UpdatedAt)
	require.NoError(t, err)

	return wallet
}

// CreateTestTaxSetting configures the monthly tax amount
func CreateTestTaxSetting(t *testing.T, db *database.DB, amount string) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO tax_settings (amount) VALUES ($1)`,
		decimal.RequireFromString(amount),
	)
	require.NoError(t, err)
}

// WalletBalance reads a wallet balance straight from the table
func WalletBalance(t *testing.T, db *database.DB, walletID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CountTransactions counts ledger rows with the given reference
func CountTransactions(t *testing.T, db *database.DB, reference string) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM transactions WHERE reference = $1`, reference).Scan(&count)
	require.NoError(t, err)
	return count
}

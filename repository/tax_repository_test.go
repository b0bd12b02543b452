package repository

import (
	"context"
	"testing"

	"clanwallet/models"
	"clanwallet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxRepository_Settings(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTaxRepository(testDB.DB)
	ctx := context.Background()

	setting, err := repo.GetLatestSetting(ctx)
	require.NoError(t, err)
	assert.Nil(t, setting)

	_, err = repo.CreateSetting(ctx, dec("50"))
	require.NoError(t, err)
	_, err = repo.CreateSetting(ctx, dec("75"))
	require.NoError(t, err)

	setting, err = repo.GetLatestSetting(ctx)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.True(t, dec("75").Equal(setting.Amount))
}

func TestTaxRepository_Runs(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTaxRepository(testDB.DB)
	ctx := context.Background()

	run := &models.TaxRun{
		Period:         "2026-10",
		TaxAmount:      dec("50"),
		WalletsCharged: 12,
		WalletsSkipped: 3,
		TotalCollected: dec("600"),
		ExecutionSummary: map[string]interface{}{
			"already_charged": 0,
			"failed":          0,
		},
	}

	created, err := repo.CreateRun(ctx, run)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, run.ID)

	duplicate := *run
	created, err = repo.CreateRun(ctx, &duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetRunByPeriod(ctx, "2026-10")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 12, stored.WalletsCharged)
	assert.Equal(t, 3, stored.WalletsSkipped)
	assert.True(t, dec("600").Equal(stored.TotalCollected))
	assert.EqualValues(t, 0, stored.ExecutionSummary["failed"])

	missing, err := repo.GetRunByPeriod(ctx, "2026-11")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colabora/internal/models/db_models"
)

// RevenueSeries relies on postgres date_trunc and is not covered here.
func TestDashboardRepositoryAggregates(t *testing.T) {
	db := newTestDB(t)
	donors := NewDonorRepository(db)
	donations := NewDonationRepository(db)
	repo := NewDashboardRepository(db)
	ctx := context.Background()

	ana := seedDonor(t, donors, "ana@x.com")
	luis := seedDonor(t, donors, "luis@x.com")
	seedDonor(t, donors, "eva@x.com")

	sub := "sub_1"
	quarterly := db_models.PeriodicityQuarterly
	require.NoError(t, donors.Update(ctx, luis.ID, db_models.DonorPatch{
		Periodicity:            &quarterly,
		ProviderSubscriptionID: &sub,
	}))

	seedDonation(t, donations, ana.ID, "pi_1", "25.00", db_models.PeriodicityOneOff, nil)
	seedDonation(t, donations, luis.ID, "cs_1", "30.00", db_models.PeriodicityQuarterly, &sub)
	seedDonation(t, donations, luis.ID, "in_2", "30.00", db_models.PeriodicityQuarterly, &sub)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	total, err := repo.CountDonors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	fresh, err := repo.CountNewDonors(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh)

	stale, err := repo.CountNewDonors(ctx, start.Add(-48*time.Hour), start.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, stale)

	recurring, err := repo.CountRecurringDonors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recurring)

	totals, err := repo.DonationTotals(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Count)
	assert.True(t, decimal.RequireFromString("85").Equal(totals.Sum), "sum %s", totals.Sum)

	commitments, err := repo.RecurringCommitments(ctx)
	require.NoError(t, err)
	require.Len(t, commitments, 1)
	assert.Equal(t, luis.ID.String(), commitments[0].DonorID)
	assert.Equal(t, db_models.PeriodicityQuarterly, commitments[0].Periodicity)
	assert.True(t, decimal.RequireFromString("30").Equal(commitments[0].Amount))

	mix, err := repo.PeriodicityMix(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, mix, 2)
	assert.Equal(t, db_models.PeriodicityQuarterly, mix[0].Periodicity)
	assert.Equal(t, int64(2), mix[0].Count)

	recent, err := repo.RecentDonations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, d := range recent {
		assert.NotNil(t, d.Donor)
	}
}

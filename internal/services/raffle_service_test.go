package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/currency"
	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRaffleFixture(t *testing.T) (*memory.Store, *RaffleServiceImpl) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Partners().Create(context.Background(), &models.Partner{ID: "p1", Name: "Siam Spa"}))

	svc := NewRaffleService(store.Raffles(), store.Entries(), store.Partners(), currency.NewNormalizer(nil, "THB"), 0)
	svc.now = func() time.Time { return testNow }
	return store, svc
}

func validInput() CreateRaffleInput {
	return CreateRaffleInput{
		Title:           "  Spa day  ",
		PartnerID:       "p1",
		PrizeValue:      500,
		Currency:        "thb",
		GamePrice:       100,
		DrawDate:        testNow.Add(24 * time.Hour),
		PrizesAvailable: 2,
	}
}

func TestCreateRaffleDerivesPolicyFields(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		currency  string
		wantUSD   float64
		wantDelay time.Duration
		wantCode  string
	}{
		{"low tier in THB", 500, "thb", 14, 24 * time.Hour, "THB"},
		{"mid tier in THB", 800, "THB", 22.4, 72 * time.Hour, "THB"},
		{"high tier in USD", 100, "USD", 100, 168 * time.Hour, "USD"},
		{"blank currency uses default", 500, "", 14, 24 * time.Hour, "THB"},
		{"unknown currency uses default rate", 500, "XYZ", 14, 24 * time.Hour, "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newRaffleFixture(t)
			in := validInput()
			in.PrizeValue = tt.value
			in.Currency = tt.currency

			raffle, err := svc.Create(context.Background(), in)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantUSD, raffle.PrizeValueUSD, 1e-9)
			assert.Equal(t, tt.wantCode, raffle.Currency)
			require.NotNil(t, raffle.MinimumDrawDate)
			assert.True(t, raffle.MinimumDrawDate.Equal(testNow.Add(tt.wantDelay)))
		})
	}
}

func TestCreateRaffleInitialState(t *testing.T) {
	store, svc := newRaffleFixture(t)
	in := validInput()
	in.IsDigitalPrize = true
	in.SecretCodes = []string{" A ", "B", "A", "C\t"}

	raffle, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	stored, err := store.Raffles().FindByID(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spa day", stored.Title)
	assert.Equal(t, "Siam Spa", stored.PartnerName)
	assert.Equal(t, models.DrawStatusPending, stored.DrawStatus)
	assert.True(t, stored.Active)
	assert.Equal(t, 2, stored.PrizesAvailable)
	assert.Equal(t, 2, stored.PrizesRemaining)
	assert.Equal(t, 3, stored.ValidityMonths)
	assert.Equal(t, []string{"A", "B", "C"}, stored.SecretCodes)
	assert.Empty(t, stored.UsedSecretCodes)
	assert.Zero(t, stored.TotalTicketsCollected)
}

func TestCreateRaffleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateRaffleInput)
	}{
		{"blank title", func(in *CreateRaffleInput) { in.Title = "   " }},
		{"no partner", func(in *CreateRaffleInput) { in.PartnerID = "" }},
		{"unknown partner", func(in *CreateRaffleInput) { in.PartnerID = "nobody" }},
		{"no prizes", func(in *CreateRaffleInput) { in.PrizesAvailable = 0 }},
		{"negative value", func(in *CreateRaffleInput) { in.PrizeValue = -1 }},
		{"negative game price", func(in *CreateRaffleInput) { in.GamePrice = -1 }},
		{"no draw date", func(in *CreateRaffleInput) { in.DrawDate = time.Time{} }},
		{"codes on physical prize", func(in *CreateRaffleInput) { in.SecretCodes = []string{"A"} }},
		{"blank secret code", func(in *CreateRaffleInput) {
			in.IsDigitalPrize = true
			in.SecretCodes = []string{"", " B "}
		}},
		{"whitespace secret code", func(in *CreateRaffleInput) {
			in.IsDigitalPrize = true
			in.SecretCodes = []string{"A", "   "}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newRaffleFixture(t)
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdatePrizeTermsRecomputesFromCreation(t *testing.T) {
	store, svc := newRaffleFixture(t)
	raffle, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// later edits still anchor the minimum wait to the creation time
	svc.now = func() time.Time { return testNow.Add(12 * time.Hour) }
	value := 100.0
	code := "usd"
	updated, err := svc.UpdatePrizeTerms(context.Background(), raffle.ID, PrizeTermsInput{PrizeValue: &value, Currency: &code})
	require.NoError(t, err)

	assert.Equal(t, "USD", updated.Currency)
	assert.InDelta(t, 100, updated.PrizeValueUSD, 1e-9)
	require.NotNil(t, updated.MinimumDrawDate)
	assert.True(t, updated.MinimumDrawDate.Equal(testNow.Add(168*time.Hour)))

	stored, err := store.Raffles().FindByID(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, stored.PrizeValueUSD, 1e-9)
}

func TestUpdatePrizeTermsLoweredGamePricePromotes(t *testing.T) {
	store, svc := newRaffleFixture(t)
	raffle, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = store.Raffles().IncrementTickets(context.Background(), raffle.ID, 40)
	require.NoError(t, err)

	gamePrice := 40
	updated, err := svc.UpdatePrizeTerms(context.Background(), raffle.ID, PrizeTermsInput{GamePrice: &gamePrice})
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusEligible, updated.DrawStatus)
}

func TestUpdatePrizeTermsRejectsBadValues(t *testing.T) {
	_, svc := newRaffleFixture(t)
	raffle, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	months := 0
	_, err = svc.UpdatePrizeTerms(context.Background(), raffle.ID, PrizeTermsInput{ValidityMonths: &months})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Cancel(context.Background(), raffle.ID)
	require.NoError(t, err)
	value := 10.0
	_, err = svc.UpdatePrizeTerms(context.Background(), raffle.ID, PrizeTermsInput{PrizeValue: &value})
	assert.ErrorIs(t, err, ErrRaffleClosed)
}

func TestAddSecretCodes(t *testing.T) {
	_, svc := newRaffleFixture(t)
	in := validInput()
	in.IsDigitalPrize = true
	in.SecretCodes = []string{"A"}
	raffle, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	updated, err := svc.AddSecretCodes(context.Background(), raffle.ID, []string{" B ", "A", "", "C", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, updated.SecretCodes)

	_, err = svc.AddSecretCodes(context.Background(), raffle.ID, []string{" ", ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	physical, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.AddSecretCodes(context.Background(), physical.ID, []string{"X"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelRaffle(t *testing.T) {
	store, svc := newRaffleFixture(t)
	raffle, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusCancelled, cancelled.DrawStatus)
	assert.False(t, cancelled.Active)

	// idempotent
	_, err = svc.Cancel(context.Background(), raffle.ID)
	require.NoError(t, err)

	due, err := store.Raffles().FindDue(context.Background(), testNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, store.Raffles().Create(context.Background(), &models.Raffle{
		ID: "done", DrawStatus: models.DrawStatusDrawn, Active: false, PrizesAvailable: 1,
	}))
	_, err = svc.Cancel(context.Background(), "done")
	assert.ErrorIs(t, err, ErrRaffleClosed)
}

func TestRaffleStats(t *testing.T) {
	store, svc := newRaffleFixture(t)
	ctx := context.Background()
	minimum := testNow.Add(-time.Hour)
	require.NoError(t, store.Raffles().Create(ctx, &models.Raffle{
		ID:                    "r1",
		Title:                 "Codes",
		GamePrice:             200,
		TotalTicketsCollected: 50,
		DrawDate:              testNow.Add(6 * time.Hour),
		MinimumDrawDate:       &minimum,
		DrawStatus:            models.DrawStatusPending,
		Active:                true,
		IsDigitalPrize:        true,
		SecretCodes:           []string{"A", "B", "C"},
		UsedSecretCodes:       []string{"A"},
		PrizesAvailable:       2,
		PrizesRemaining:       2,
	}))
	for _, e := range []models.Entry{
		{ID: "e1", UserID: "u1", RaffleID: "r1", TicketsUsed: 20},
		{ID: "e2", UserID: "u2", RaffleID: "r1", TicketsUsed: 20},
		{ID: "e3", UserID: "u1", RaffleID: "r1", TicketsUsed: 10},
	} {
		entry := e
		require.NoError(t, store.Entries().Create(ctx, &entry))
	}

	stats, err := svc.Stats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, stats.ProgressPercentage)
	assert.Equal(t, int64(3), stats.TotalEntries)
	assert.Equal(t, 2, stats.TotalParticipants)
	assert.Equal(t, 50, stats.LedgerTickets)
	assert.Equal(t, 2, stats.SecretCodesRemaining)
	assert.InDelta(t, 6, stats.HoursUntilDraw, 1e-9)
	assert.False(t, stats.Eligibility.ThresholdMet)
	assert.False(t, stats.Eligibility.DrawDateReached)
	assert.True(t, stats.Eligibility.MinimumWaitMet)
	assert.True(t, stats.Eligibility.StatusEvaluable)
	assert.False(t, stats.Eligibility.CanDraw)

	_, err = svc.Stats(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestListRaffles(t *testing.T) {
	_, svc := newRaffleFixture(t)
	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	later := validInput()
	later.DrawDate = testNow.Add(96 * time.Hour)
	second, err := svc.Create(context.Background(), later)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), second.ID)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), repositories.RaffleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	active, err := svc.List(context.Background(), repositories.RaffleFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

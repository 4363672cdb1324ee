package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRaffle(t *testing.T, store *Store, mutate func(r *models.Raffle)) *models.Raffle {
	t.Helper()
	r := &models.Raffle{
		ID:              "raffle-1",
		Title:           "Coffee voucher",
		DrawDate:        time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		DrawStatus:      models.DrawStatusEligible,
		Active:          true,
		GamePrice:       10,
		PrizesAvailable: 2,
		PrizesRemaining: 2,
	}
	if mutate != nil {
		mutate(r)
	}
	require.NoError(t, store.Raffles().Create(context.Background(), r))
	return r
}

func TestRecordDrawCompareAndSet(t *testing.T) {
	store := New()
	seedRaffle(t, store, func(r *models.Raffle) {
		r.DrawStatus = models.DrawStatusPending
		r.TotalTicketsCollected = 10
	})
	repo := store.Raffles()
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// an entry promoting the raffle mid-evaluation does not block the draw
	require.NoError(t, repo.MarkEligible(ctx, "raffle-1"))

	recorded, err := repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 2, DrawnAt: at})
	require.NoError(t, err)
	assert.Equal(t, 1, recorded.Raffle.PrizesRemaining)
	assert.True(t, recorded.Raffle.Active)
	assert.Equal(t, models.DrawStatusDrawn, recorded.Raffle.DrawStatus)
	assert.Equal(t, models.DrawStatusEligible, recorded.PreviousStatus)
	assert.Nil(t, recorded.PreviousDrawnAt)

	// stale expectation loses
	_, err = repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 2, DrawnAt: at})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	recorded, err = repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 1, DrawnAt: at.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 0, recorded.Raffle.PrizesRemaining)
	assert.False(t, recorded.Raffle.Active)
	assert.Equal(t, models.DrawStatusDrawn, recorded.PreviousStatus)
	require.NotNil(t, recorded.PreviousDrawnAt)
	assert.True(t, recorded.PreviousDrawnAt.Equal(at))
}

func TestRecordDrawRejectsCancelledRaffle(t *testing.T) {
	store := New()
	seedRaffle(t, store, nil)
	repo := store.Raffles()
	ctx := context.Background()
	require.NoError(t, repo.Cancel(ctx, "raffle-1", time.Now()))

	_, err := repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 2, DrawnAt: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestRestorePrizeUnit(t *testing.T) {
	store := New()
	seedRaffle(t, store, nil)
	repo := store.Raffles()
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	recorded, err := repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 2, DrawnAt: at})
	require.NoError(t, err)

	restore := repositories.PrizeUnitRestore{
		ExpectedRemaining: recorded.Raffle.PrizesRemaining,
		Status:            recorded.PreviousStatus,
		DrawnAt:           recorded.PreviousDrawnAt,
	}
	require.NoError(t, repo.RestorePrizeUnit(ctx, "raffle-1", restore))

	r, err := repo.FindByID(ctx, "raffle-1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.PrizesRemaining)
	assert.True(t, r.Active)
	assert.Equal(t, models.DrawStatusEligible, r.DrawStatus)
	assert.Nil(t, r.DrawnAt)

	// applying it twice would mint a prize unit
	assert.ErrorIs(t, repo.RestorePrizeUnit(ctx, "raffle-1", restore), repositories.ErrConflict)
}

func TestRestorePrizeUnitLeavesCancelledRaffle(t *testing.T) {
	store := New()
	seedRaffle(t, store, nil)
	repo := store.Raffles()
	ctx := context.Background()

	recorded, err := repo.RecordDraw(ctx, "raffle-1", repositories.RaffleDrawUpdate{ExpectedRemaining: 2, DrawnAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, "raffle-1", time.Now()))

	err = repo.RestorePrizeUnit(ctx, "raffle-1", repositories.PrizeUnitRestore{
		ExpectedRemaining: recorded.Raffle.PrizesRemaining,
		Status:            recorded.PreviousStatus,
	})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	r, err := repo.FindByID(ctx, "raffle-1")
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusCancelled, r.DrawStatus)
	assert.False(t, r.Active)
	assert.Equal(t, 1, r.PrizesRemaining)
}

func TestEntryDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	entries := store.Entries()
	require.NoError(t, entries.Create(ctx, &models.Entry{ID: "e1", UserID: "u1", RaffleID: "raffle-1", TicketsUsed: 3}))
	require.NoError(t, entries.Create(ctx, &models.Entry{ID: "e2", UserID: "u2", RaffleID: "raffle-1", TicketsUsed: 5}))

	require.NoError(t, entries.Delete(ctx, "e1"))
	assert.ErrorIs(t, entries.Delete(ctx, "e1"), repositories.ErrNotFound)

	total, err := entries.SumTicketsByRaffleID(ctx, "raffle-1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestClaimSecretCodeIsExclusive(t *testing.T) {
	store := New()
	seedRaffle(t, store, func(r *models.Raffle) {
		r.IsDigitalPrize = true
		r.SecretCodes = []string{"A1", "B2"}
	})
	repo := store.Raffles()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ClaimSecretCode(ctx, "raffle-1", "A1") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	assert.ErrorIs(t, repo.ClaimSecretCode(ctx, "raffle-1", "ZZ"), repositories.ErrConflict)

	require.NoError(t, repo.ReleaseSecretCode(ctx, "raffle-1", "A1"))
	r, err := repo.FindByID(ctx, "raffle-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, r.CodePool().Available())
}

func TestExtendRequiresObservedState(t *testing.T) {
	store := New()
	original := seedRaffle(t, store, func(r *models.Raffle) { r.DrawStatus = models.DrawStatusPending })
	repo := store.Raffles()
	ctx := context.Background()
	now := original.DrawDate.Add(time.Minute)

	err := repo.Extend(ctx, "raffle-1", repositories.RaffleExtension{
		ExpectedStatus:   models.DrawStatusPending,
		ExpectedDrawDate: original.DrawDate.Add(time.Hour),
		NewDrawDate:      now.Add(24 * time.Hour),
		ExtendedAt:       now,
	})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	err = repo.Extend(ctx, "raffle-1", repositories.RaffleExtension{
		ExpectedStatus:   models.DrawStatusPending,
		ExpectedDrawDate: original.DrawDate,
		NewDrawDate:      now.Add(24 * time.Hour),
		ExtendedAt:       now,
	})
	require.NoError(t, err)

	r, err := repo.FindByID(ctx, "raffle-1")
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusExtended, r.DrawStatus)
	assert.True(t, r.DrawDate.Equal(now.Add(24*time.Hour)))
	require.NotNil(t, r.LastExtensionDate)
	assert.True(t, r.LastExtensionDate.Equal(now))
}

func TestFindDueFiltersAndOrders(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	add := func(id string, status models.DrawStatus, active bool, drawDate time.Time) {
		require.NoError(t, store.Raffles().Create(ctx, &models.Raffle{
			ID: id, DrawStatus: status, Active: active, DrawDate: drawDate, PrizesRemaining: 1,
		}))
	}
	add("late", models.DrawStatusPending, true, now.Add(-time.Hour))
	add("early", models.DrawStatusExtended, true, now.Add(-48*time.Hour))
	add("future", models.DrawStatusEligible, true, now.Add(time.Hour))
	add("cancelled", models.DrawStatusCancelled, false, now.Add(-time.Hour))
	add("finished", models.DrawStatusDrawn, false, now.Add(-time.Hour))

	due, err := store.Raffles().FindDue(ctx, now)
	require.NoError(t, err)
	ids := make([]string, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"early", "late"}, ids)
}

func TestIncrementTicketsAndMarkEligible(t *testing.T) {
	store := New()
	seedRaffle(t, store, func(r *models.Raffle) { r.DrawStatus = models.DrawStatusPending })
	repo := store.Raffles()
	ctx := context.Background()

	r, err := repo.IncrementTickets(ctx, "raffle-1", 6)
	require.NoError(t, err)
	assert.Equal(t, 6, r.TotalTicketsCollected)
	require.NoError(t, repo.MarkEligible(ctx, "raffle-1"))
	r, _ = repo.FindByID(ctx, "raffle-1")
	assert.Equal(t, models.DrawStatusPending, r.DrawStatus)

	_, err = repo.IncrementTickets(ctx, "raffle-1", 4)
	require.NoError(t, err)
	require.NoError(t, repo.MarkEligible(ctx, "raffle-1"))
	r, _ = repo.FindByID(ctx, "raffle-1")
	assert.Equal(t, models.DrawStatusEligible, r.DrawStatus)
	assert.Equal(t, 2, r.TotalEntries)

	require.NoError(t, repo.Cancel(ctx, "raffle-1", time.Now()))
	_, err = repo.IncrementTickets(ctx, "raffle-1", 1)
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestDebitTickets(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "u1", Tickets: 5}))

	u, err := store.Users().DebitTickets(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Tickets)

	_, err = store.Users().DebitTickets(ctx, "u1", 3)
	assert.ErrorIs(t, err, repositories.ErrInsufficientTickets)

	_, err = store.Users().DebitTickets(ctx, "missing", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
)

var _ repositories.RaffleRepository = (*RaffleRepository)(nil)

// RaffleRepository is the in-memory raffle collection
type RaffleRepository struct {
	s *Store
}

func (r *RaffleRepository) Create(_ context.Context, raffle *models.Raffle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.raffles[raffle.ID]; exists {
		return fmt.Errorf("raffle %s already exists", raffle.ID)
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now()
	}
	raffle.UpdatedAt = time.Now()
	r.s.raffles[raffle.ID] = *cloneRaffle(*raffle)
	return nil
}

func (r *RaffleRepository) FindByID(_ context.Context, id string) (*models.Raffle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	raffle, ok := r.s.raffles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneRaffle(raffle), nil
}

func (r *RaffleRepository) FindAll(_ context.Context, filter repositories.RaffleFilter) ([]*models.Raffle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Raffle, 0, len(r.s.raffles))
	for _, raffle := range r.s.raffles {
		if filter.ActiveOnly && !raffle.Active {
			continue
		}
		if filter.Category != "" && raffle.Category != filter.Category {
			continue
		}
		out = append(out, cloneRaffle(raffle))
	}
	sortByDrawDate(out)
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *RaffleRepository) FindDue(_ context.Context, now time.Time) ([]*models.Raffle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Raffle{}
	for _, raffle := range r.s.raffles {
		if raffle.Active && raffle.DrawStatus.IsEvaluable() && !raffle.DrawDate.After(now) {
			out = append(out, cloneRaffle(raffle))
		}
	}
	sortByDrawDate(out)
	return out, nil
}

func sortByDrawDate(raffles []*models.Raffle) {
	sort.SliceStable(raffles, func(i, j int) bool {
		if raffles[i].DrawDate.Equal(raffles[j].DrawDate) {
			return raffles[i].ID < raffles[j].ID
		}
		return raffles[i].DrawDate.Before(raffles[j].DrawDate)
	})
}

func (r *RaffleRepository) UpdatePrizeTerms(_ context.Context, raffle *models.Raffle) error {
	return r.mutate(raffle.ID, func(stored *models.Raffle) error {
		stored.PrizeValue = raffle.PrizeValue
		stored.Currency = raffle.Currency
		stored.PrizeValueUSD = raffle.PrizeValueUSD
		stored.MinimumDrawDate = cloneTime(raffle.MinimumDrawDate)
		stored.ValidityMonths = raffle.ValidityMonths
		stored.GamePrice = raffle.GamePrice
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *RaffleRepository) Cancel(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(stored *models.Raffle) error {
		stored.DrawStatus = models.DrawStatusCancelled
		stored.Active = false
		stored.UpdatedAt = at
		return nil
	})
}

func (r *RaffleRepository) Extend(_ context.Context, id string, ext repositories.RaffleExtension) error {
	return r.mutate(id, func(stored *models.Raffle) error {
		if !stored.Active || stored.DrawStatus != ext.ExpectedStatus || !stored.DrawDate.Equal(ext.ExpectedDrawDate) {
			return repositories.ErrConflict
		}
		extendedAt := ext.ExtendedAt
		stored.DrawDate = ext.NewDrawDate
		stored.LastExtensionDate = &extendedAt
		stored.DrawStatus = models.DrawStatusExtended
		stored.UpdatedAt = extendedAt
		return nil
	})
}

func (r *RaffleRepository) RecordDraw(_ context.Context, id string, upd repositories.RaffleDrawUpdate) (*repositories.RecordedDraw, error) {
	var result *repositories.RecordedDraw
	err := r.mutate(id, func(stored *models.Raffle) error {
		if upd.ExpectedRemaining <= 0 || !stored.Active ||
			!stored.DrawStatus.IsEvaluable() || stored.PrizesRemaining != upd.ExpectedRemaining {
			return repositories.ErrConflict
		}
		result = &repositories.RecordedDraw{
			PreviousStatus:  stored.DrawStatus,
			PreviousDrawnAt: stored.DrawnAt,
		}
		drawnAt := upd.DrawnAt
		stored.PrizesRemaining--
		stored.Active = stored.PrizesRemaining > 0
		stored.DrawStatus = models.DrawStatusDrawn
		stored.DrawnAt = &drawnAt
		stored.UpdatedAt = drawnAt
		result.Raffle = cloneRaffle(*stored)
		return nil
	})
	if err == repositories.ErrNotFound {
		return nil, repositories.ErrConflict
	}
	return result, err
}

func (r *RaffleRepository) RestorePrizeUnit(_ context.Context, id string, restore repositories.PrizeUnitRestore) error {
	return r.mutate(id, func(stored *models.Raffle) error {
		if stored.DrawStatus != models.DrawStatusDrawn || stored.PrizesRemaining != restore.ExpectedRemaining {
			return repositories.ErrConflict
		}
		stored.PrizesRemaining++
		stored.Active = true
		stored.DrawStatus = restore.Status
		stored.DrawnAt = cloneTime(restore.DrawnAt)
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *RaffleRepository) ClaimSecretCode(_ context.Context, id string, code string) error {
	err := r.mutate(id, func(stored *models.Raffle) error {
		pool := stored.CodePool()
		if !pool.Contains(code) || pool.IsUsed(code) {
			return repositories.ErrConflict
		}
		stored.UsedSecretCodes = append(stored.UsedSecretCodes, code)
		stored.UpdatedAt = time.Now()
		return nil
	})
	if err == repositories.ErrNotFound {
		return repositories.ErrConflict
	}
	return err
}

func (r *RaffleRepository) ReleaseSecretCode(_ context.Context, id string, code string) error {
	return r.mutate(id, func(stored *models.Raffle) error {
		kept := stored.UsedSecretCodes[:0]
		for _, used := range stored.UsedSecretCodes {
			if used != code {
				kept = append(kept, used)
			}
		}
		stored.UsedSecretCodes = kept
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *RaffleRepository) AddSecretCodes(_ context.Context, id string, codes []string) (*models.Raffle, error) {
	var result *models.Raffle
	err := r.mutate(id, func(stored *models.Raffle) error {
		present := make(map[string]struct{}, len(stored.SecretCodes))
		for _, c := range stored.SecretCodes {
			present[c] = struct{}{}
		}
		for _, c := range codes {
			if _, ok := present[c]; ok {
				continue
			}
			present[c] = struct{}{}
			stored.SecretCodes = append(stored.SecretCodes, c)
		}
		stored.UpdatedAt = time.Now()
		result = cloneRaffle(*stored)
		return nil
	})
	return result, err
}

func (r *RaffleRepository) IncrementTickets(_ context.Context, id string, tickets int) (*models.Raffle, error) {
	var result *models.Raffle
	err := r.mutate(id, func(stored *models.Raffle) error {
		if !stored.Active || stored.PrizesRemaining <= 0 || stored.DrawStatus == models.DrawStatusCancelled {
			return repositories.ErrConflict
		}
		stored.TotalTicketsCollected += tickets
		stored.TotalEntries++
		stored.UpdatedAt = time.Now()
		result = cloneRaffle(*stored)
		return nil
	})
	if err == repositories.ErrNotFound {
		return nil, repositories.ErrConflict
	}
	return result, err
}

func (r *RaffleRepository) MarkEligible(_ context.Context, id string) error {
	err := r.mutate(id, func(stored *models.Raffle) error {
		if stored.DrawStatus != models.DrawStatusPending && stored.DrawStatus != models.DrawStatusExtended {
			return nil
		}
		if stored.ThresholdMet() {
			stored.DrawStatus = models.DrawStatusEligible
			stored.UpdatedAt = time.Now()
		}
		return nil
	})
	if err == repositories.ErrNotFound {
		return nil
	}
	return err
}

// mutate applies fn to the stored raffle under the write lock. The change is
// kept only when fn returns nil.
func (r *RaffleRepository) mutate(id string, fn func(stored *models.Raffle) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	raffle, ok := r.s.raffles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	working := cloneRaffle(raffle)
	if err := fn(working); err != nil {
		return err
	}
	r.s.raffles[id] = *working
	return nil
}

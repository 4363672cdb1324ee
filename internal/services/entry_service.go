package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/metrics"
	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

var _ EntryService = (*EntryServiceImpl)(nil)

// EntryServiceImpl is the append-only entry ledger
type EntryServiceImpl struct {
	raffleRepo repositories.RaffleRepository
	entryRepo  repositories.EntryRepository
	userRepo   repositories.UserRepository
	now        func() time.Time
}

// NewEntryService creates a new EntryServiceImpl
func NewEntryService(
	raffleRepo repositories.RaffleRepository,
	entryRepo repositories.EntryRepository,
	userRepo repositories.UserRepository,
) *EntryServiceImpl {
	return &EntryServiceImpl{
		raffleRepo: raffleRepo,
		entryRepo:  entryRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// Enter spends tickets on a raffle: debit the user, append the entry, then
// bump the raffle's running totals and promote it to eligible once the
// threshold is met.
func (s *EntryServiceImpl) Enter(ctx context.Context, userID, raffleID string, tickets int) (*models.Entry, error) {
	if tickets <= 0 {
		return nil, fmt.Errorf("%w: tickets must be positive", ErrInvalidInput)
	}

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %w", err)
	}
	if !acceptsEntries(raffle) {
		return nil, fmt.Errorf("%w: raffle %s is closed", ErrRaffleClosed, raffleID)
	}

	if _, err := s.userRepo.DebitTickets(ctx, userID, tickets); err != nil {
		return nil, fmt.Errorf("failed to debit tickets: %w", err)
	}

	entry := &models.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		RaffleID:    raffle.ID,
		RaffleTitle: raffle.Title,
		TicketsUsed: tickets,
		Timestamp:   s.now(),
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		s.refund(ctx, userID, tickets)
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	updated, err := s.raffleRepo.IncrementTickets(ctx, raffle.ID, tickets)
	if err != nil {
		// The raffle closed between the check and the increment. The entry was
		// never counted, so it is withdrawn and the tickets are returned.
		if delErr := s.entryRepo.Delete(ctx, entry.ID); delErr != nil {
			slog.Error("Failed to withdraw uncounted entry", "error", delErr, "entryId", entry.ID, "raffleId", raffle.ID)
		}
		s.refund(ctx, userID, tickets)
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: raffle %s closed during entry", ErrRaffleClosed, raffleID)
		}
		return nil, fmt.Errorf("failed to update raffle totals: %w", err)
	}

	if updated.ThresholdMet() && (updated.DrawStatus == models.DrawStatusPending || updated.DrawStatus == models.DrawStatusExtended) {
		if err := s.raffleRepo.MarkEligible(ctx, raffle.ID); err != nil {
			slog.Warn("Failed to mark raffle eligible", "error", err, "raffleId", raffle.ID)
		}
	}

	metrics.RecordEntry(tickets)
	slog.Debug("Raffle entry created", "entryId", entry.ID, "raffleId", raffle.ID, "userId", userID, "tickets", tickets)
	return entry, nil
}

func (s *EntryServiceImpl) refund(ctx context.Context, userID string, tickets int) {
	if err := s.userRepo.CreditTickets(ctx, userID, tickets); err != nil {
		slog.Error("CRITICAL: Failed to refund tickets", "error", err, "userId", userID, "tickets", tickets)
	}
}

// ListByRaffle returns a raffle's entries in ledger order
func (s *EntryServiceImpl) ListByRaffle(ctx context.Context, raffleID string) ([]*models.Entry, error) {
	return s.entryRepo.FindByRaffleID(ctx, raffleID)
}

// ListByUser returns a user's most recent entries
func (s *EntryServiceImpl) ListByUser(ctx context.Context, userID string, limit int64) ([]*models.Entry, error) {
	return s.entryRepo.FindByUserID(ctx, userID, limit)
}

// TicketTotal sums tickets straight from the ledger
func (s *EntryServiceImpl) TicketTotal(ctx context.Context, raffleID string) (int, error) {
	return s.entryRepo.SumTicketsByRaffleID(ctx, raffleID)
}

func acceptsEntries(r *models.Raffle) bool {
	return r.Active && r.PrizesRemaining > 0 && r.DrawStatus != models.DrawStatusCancelled
}

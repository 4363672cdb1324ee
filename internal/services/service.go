package services

import (
	"context"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
)

// DrawService defines the raffle draw engine
type DrawService interface {
	// EvaluateDue evaluates every due raffle once, one winner at most per raffle
	EvaluateDue(ctx context.Context) (*models.DrawReport, error)

	// EvaluateOne runs the same evaluation for a single raffle
	EvaluateOne(ctx context.Context, raffleID string) (models.DrawOutcome, error)

	// DrawAll draws min(prizesRemaining, entries) winners without replacement
	DrawAll(ctx context.Context, raffleID string) ([]models.DrawOutcome, error)
}

// EntryService defines the entry ledger operations
type EntryService interface {
	Enter(ctx context.Context, userID, raffleID string, tickets int) (*models.Entry, error)
	ListByRaffle(ctx context.Context, raffleID string) ([]*models.Entry, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]*models.Entry, error)
	TicketTotal(ctx context.Context, raffleID string) (int, error)
}

// RaffleService defines raffle administration and read operations
type RaffleService interface {
	Create(ctx context.Context, input CreateRaffleInput) (*models.Raffle, error)
	UpdatePrizeTerms(ctx context.Context, raffleID string, input PrizeTermsInput) (*models.Raffle, error)
	AddSecretCodes(ctx context.Context, raffleID string, codes []string) (*models.Raffle, error)
	Cancel(ctx context.Context, raffleID string) (*models.Raffle, error)
	List(ctx context.Context, filter repositories.RaffleFilter) ([]*models.Raffle, error)
	Get(ctx context.Context, raffleID string) (*models.Raffle, error)
	Stats(ctx context.Context, raffleID string) (*models.RaffleStats, error)
}

// VoucherService defines voucher and winner reads
type VoucherService interface {
	ListUserVouchers(ctx context.Context, userID string) ([]*models.Voucher, error)
	GetVoucher(ctx context.Context, voucherID, requesterID string, isAdmin bool) (*models.Voucher, error)
	ListRaffleWinners(ctx context.Context, raffleID string) ([]*models.Winner, error)
	ListUserWinnings(ctx context.Context, userID string) ([]*models.Winner, error)
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an atomic conditional update matched no document
	ErrConflict = errors.New("conditional update did not match")
	// ErrInsufficientTickets is returned when a user's balance cannot cover a debit
	ErrInsufficientTickets = errors.New("insufficient tickets")
)

// RaffleDrawUpdate carries the fields the draw engine writes when a prize unit is drawn.
// ExpectedRemaining guards the compare-and-set; the raffle must also be active and in an
// evaluable status.
type RaffleDrawUpdate struct {
	ExpectedRemaining int
	DrawnAt           time.Time
}

// RecordedDraw is the raffle after a prize unit was consumed, plus the fields the draw overwrote
type RecordedDraw struct {
	Raffle          *models.Raffle
	PreviousStatus  models.DrawStatus
	PreviousDrawnAt *time.Time
}

// PrizeUnitRestore undoes a RecordDraw. It applies only while the raffle is still drawn
// with ExpectedRemaining units left, otherwise ErrConflict is returned and nothing changes.
type PrizeUnitRestore struct {
	ExpectedRemaining int
	Status            models.DrawStatus
	DrawnAt           *time.Time
}

// RaffleExtension carries the fields the draw engine writes on a threshold miss
type RaffleExtension struct {
	ExpectedStatus   models.DrawStatus
	ExpectedDrawDate time.Time
	NewDrawDate      time.Time
	ExtendedAt       time.Time
}

// RaffleFilter narrows raffle listings
type RaffleFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int64
}

// RaffleRepository defines the interface for raffle data operations
type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) error
	FindByID(ctx context.Context, id string) (*models.Raffle, error)
	FindAll(ctx context.Context, filter RaffleFilter) ([]*models.Raffle, error)
	// FindDue returns active raffles in an evaluable status whose drawDate <= now, oldest drawDate first
	FindDue(ctx context.Context, now time.Time) ([]*models.Raffle, error)
	UpdatePrizeTerms(ctx context.Context, raffle *models.Raffle) error
	Cancel(ctx context.Context, id string, at time.Time) error

	// Atomic writers used by the draw engine and the entry ledger
	Extend(ctx context.Context, id string, ext RaffleExtension) error
	RecordDraw(ctx context.Context, id string, upd RaffleDrawUpdate) (*RecordedDraw, error)
	RestorePrizeUnit(ctx context.Context, id string, restore PrizeUnitRestore) error
	ClaimSecretCode(ctx context.Context, id string, code string) error
	ReleaseSecretCode(ctx context.Context, id string, code string) error
	AddSecretCodes(ctx context.Context, id string, codes []string) (*models.Raffle, error)
	IncrementTickets(ctx context.Context, id string, tickets int) (*models.Raffle, error)
	MarkEligible(ctx context.Context, id string) error
}

// EntryRepository defines the interface for the append-only entry ledger
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	// Delete withdraws an entry whose raffle totals could not be updated
	Delete(ctx context.Context, id string) error
	FindByRaffleID(ctx context.Context, raffleID string) ([]*models.Entry, error)
	FindByUserID(ctx context.Context, userID string, limit int64) ([]*models.Entry, error)
	CountByRaffleID(ctx context.Context, raffleID string) (int64, error)
	SumTicketsByRaffleID(ctx context.Context, raffleID string) (int, error)
	CountParticipants(ctx context.Context, raffleID string) (int, error)
}

// VoucherRepository defines the interface for voucher data operations
type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id string) (*models.Voucher, error)
	FindByUserID(ctx context.Context, userID string) ([]*models.Voucher, error)
	ExistsByReference(ctx context.Context, ref string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// WinnerRepository defines the interface for winner data operations
type WinnerRepository interface {
	Create(ctx context.Context, winner *models.Winner) error
	FindByRaffleID(ctx context.Context, raffleID string) ([]*models.Winner, error)
	FindByUserID(ctx context.Context, userID string) ([]*models.Winner, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	// DebitTickets atomically subtracts tickets only when the balance covers them
	DebitTickets(ctx context.Context, id string, tickets int) (*models.User, error)
	CreditTickets(ctx context.Context, id string, tickets int) error
}

// PartnerRepository defines the interface for partner data operations
type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	FindByID(ctx context.Context, id string) (*models.Partner, error)
}

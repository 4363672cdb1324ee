// Package memory provides in-memory implementations of the repository
// interfaces. They mirror the conditional-update semantics of the MongoDB
// repositories and are safe for concurrent use. Intended for tests and local
// development.
package memory

import (
	"sync"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
)

// Store holds every collection behind one lock
type Store struct {
	mu       sync.RWMutex
	raffles  map[string]models.Raffle
	entries  []models.Entry
	vouchers map[string]models.Voucher
	winners  []models.Winner
	users    map[string]models.User
	partners map[string]models.Partner
}

// New creates an empty store.
func New() *Store {
	return &Store{
		raffles:  make(map[string]models.Raffle),
		vouchers: make(map[string]models.Voucher),
		users:    make(map[string]models.User),
		partners: make(map[string]models.Partner),
	}
}

// Raffles returns the raffle repository view of the store
func (s *Store) Raffles() *RaffleRepository { return &RaffleRepository{s: s} }

// Entries returns the entry repository view of the store
func (s *Store) Entries() *EntryRepository { return &EntryRepository{s: s} }

// Vouchers returns the voucher repository view of the store
func (s *Store) Vouchers() *VoucherRepository { return &VoucherRepository{s: s} }

// Winners returns the winner repository view of the store
func (s *Store) Winners() *WinnerRepository { return &WinnerRepository{s: s} }

// Users returns the user repository view of the store
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Partners returns the partner repository view of the store
func (s *Store) Partners() *PartnerRepository { return &PartnerRepository{s: s} }

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaffle(r models.Raffle) *models.Raffle {
	r.MinimumDrawDate = cloneTime(r.MinimumDrawDate)
	r.LastExtensionDate = cloneTime(r.LastExtensionDate)
	r.DrawnAt = cloneTime(r.DrawnAt)
	r.SecretCodes = cloneStrings(r.SecretCodes)
	r.UsedSecretCodes = cloneStrings(r.UsedSecretCodes)
	return &r
}

func cloneVoucher(v models.Voucher) *models.Voucher {
	v.RedeemedAt = cloneTime(v.RedeemedAt)
	return &v
}

func cloneWinner(w models.Winner) *models.Winner {
	w.NotifiedAt = cloneTime(w.NotifiedAt)
	return &w
}

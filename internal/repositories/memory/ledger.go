package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
)

var (
	_ repositories.EntryRepository   = (*EntryRepository)(nil)
	_ repositories.VoucherRepository = (*VoucherRepository)(nil)
	_ repositories.WinnerRepository  = (*WinnerRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.PartnerRepository = (*PartnerRepository)(nil)
)

// EntryRepository -------------------------------------------------------------

// EntryRepository is the in-memory append-only entry ledger
type EntryRepository struct {
	s *Store
}

func (r *EntryRepository) Create(_ context.Context, entry *models.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r *EntryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.entries {
		if r.s.entries[i].ID == id {
			r.s.entries = append(r.s.entries[:i], r.s.entries[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *EntryRepository) FindByRaffleID(_ context.Context, raffleID string) ([]*models.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Entry{}
	for i := range r.s.entries {
		if r.s.entries[i].RaffleID == raffleID {
			e := r.s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *EntryRepository) FindByUserID(_ context.Context, userID string, limit int64) ([]*models.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Entry{}
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].UserID != userID {
			continue
		}
		e := r.s.entries[i]
		out = append(out, &e)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *EntryRepository) CountByRaffleID(_ context.Context, raffleID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, e := range r.s.entries {
		if e.RaffleID == raffleID {
			n++
		}
	}
	return n, nil
}

func (r *EntryRepository) SumTicketsByRaffleID(_ context.Context, raffleID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := 0
	for _, e := range r.s.entries {
		if e.RaffleID == raffleID {
			total += e.TicketsUsed
		}
	}
	return total, nil
}

func (r *EntryRepository) CountParticipants(_ context.Context, raffleID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range r.s.entries {
		if e.RaffleID == raffleID {
			seen[e.UserID] = struct{}{}
		}
	}
	return len(seen), nil
}

// VoucherRepository -----------------------------------------------------------

// VoucherRepository is the in-memory voucher collection
type VoucherRepository struct {
	s *Store
}

func (r *VoucherRepository) Create(_ context.Context, voucher *models.Voucher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.vouchers[voucher.ID]; exists {
		return fmt.Errorf("voucher %s already exists", voucher.ID)
	}
	for _, v := range r.s.vouchers {
		if v.VoucherRef == voucher.VoucherRef {
			return repositories.ErrConflict
		}
	}
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = time.Now()
	}
	voucher.UpdatedAt = voucher.CreatedAt
	r.s.vouchers[voucher.ID] = *cloneVoucher(*voucher)
	return nil
}

func (r *VoucherRepository) FindByID(_ context.Context, id string) (*models.Voucher, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vouchers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneVoucher(v), nil
}

func (r *VoucherRepository) FindByUserID(_ context.Context, userID string) ([]*models.Voucher, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Voucher{}
	for _, v := range r.s.vouchers {
		if v.UserID == userID {
			out = append(out, cloneVoucher(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *VoucherRepository) ExistsByReference(_ context.Context, ref string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, v := range r.s.vouchers {
		if v.VoucherRef == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *VoucherRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.vouchers, id)
	return nil
}

// WinnerRepository ------------------------------------------------------------

// WinnerRepository is the in-memory winner collection
type WinnerRepository struct {
	s *Store
}

func (r *WinnerRepository) Create(_ context.Context, winner *models.Winner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if winner.CreatedAt.IsZero() {
		winner.CreatedAt = time.Now()
	}
	r.s.winners = append(r.s.winners, *cloneWinner(*winner))
	return nil
}

func (r *WinnerRepository) FindByRaffleID(_ context.Context, raffleID string) ([]*models.Winner, error) {
	return r.find(func(w models.Winner) bool { return w.RaffleID == raffleID }), nil
}

func (r *WinnerRepository) FindByUserID(_ context.Context, userID string) ([]*models.Winner, error) {
	return r.find(func(w models.Winner) bool { return w.UserID == userID }), nil
}

func (r *WinnerRepository) find(match func(models.Winner) bool) []*models.Winner {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Winner{}
	for i := len(r.s.winners) - 1; i >= 0; i-- {
		if match(r.s.winners[i]) {
			out = append(out, cloneWinner(r.s.winners[i]))
		}
	}
	return out
}

func (r *WinnerRepository) MarkNotified(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.winners {
		if r.s.winners[i].ID == id {
			notifiedAt := at
			r.s.winners[i].Notified = true
			r.s.winners[i].NotifiedAt = &notifiedAt
			return nil
		}
	}
	return repositories.ErrNotFound
}

// UserRepository --------------------------------------------------------------

// UserRepository is the in-memory user collection
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) DebitTickets(_ context.Context, id string, tickets int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if u.Tickets < tickets {
		return nil, repositories.ErrInsufficientTickets
	}
	u.Tickets -= tickets
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return &u, nil
}

func (r *UserRepository) CreditTickets(_ context.Context, id string, tickets int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Tickets += tickets
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

// PartnerRepository -----------------------------------------------------------

// PartnerRepository is the in-memory partner collection
type PartnerRepository struct {
	s *Store
}

func (r *PartnerRepository) Create(_ context.Context, partner *models.Partner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = time.Now()
	}
	r.s.partners[partner.ID] = *partner
	return nil
}

func (r *PartnerRepository) FindByID(_ context.Context, id string) (*models.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.partners[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

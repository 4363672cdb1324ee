// Package lock provides per-raffle evaluation leases so a scheduled tick and an
// admin-triggered draw do not evaluate the same raffle at the same time.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned when another holder owns the lease
var ErrNotAcquired = errors.New("lock is held by another evaluation")

// Locker hands out leases keyed by name. The returned release func is safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is an in-process Locker
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates a LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire takes the lease for key or fails fast with ErrNotAcquired
func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrNotAcquired
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

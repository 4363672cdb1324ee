package models

import "strings"

// SecretCodePool is the digital-prize code inventory of a raffle: an ordered queue of
// codes still available and the set of codes already handed out.
// Storage keeps the admin-supplied list and the consumed subset; the queue is derived.
type SecretCodePool struct {
	all  []string
	used map[string]struct{}
}

// NewSecretCodePool builds a pool from the full code list and the consumed subset
func NewSecretCodePool(all, used []string) SecretCodePool {
	u := make(map[string]struct{}, len(used))
	for _, c := range used {
		u[c] = struct{}{}
	}
	return SecretCodePool{all: all, used: u}
}

// Available returns the unconsumed codes in original list order, without duplicates.
// Blank codes are never handed out.
func (p SecretCodePool) Available() []string {
	seen := make(map[string]struct{}, len(p.all))
	available := make([]string, 0, len(p.all))
	for _, c := range p.all {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := p.used[c]; ok {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		available = append(available, c)
	}
	return available
}

// Next returns the code at the head of the available queue
func (p SecretCodePool) Next() (string, bool) {
	available := p.Available()
	if len(available) == 0 {
		return "", false
	}
	return available[0], true
}

// IsUsed reports whether the code has already been handed out
func (p SecretCodePool) IsUsed(code string) bool {
	_, ok := p.used[code]
	return ok
}

// Contains reports whether the code belongs to the pool at all
func (p SecretCodePool) Contains(code string) bool {
	for _, c := range p.all {
		if c == code {
			return true
		}
	}
	return false
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyTiers(t *testing.T) {
	tests := []struct {
		valueUSD float64
		expected time.Duration
	}{
		{0, 24 * time.Hour},
		{10, 24 * time.Hour},
		{15, 24 * time.Hour},
		{15.01, 72 * time.Hour},
		{20, 72 * time.Hour},
		{25, 72 * time.Hour},
		{25.5, 168 * time.Hour},
		{1000, 168 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MinimumDrawDelay(tt.valueUSD), "minimum delay for %v", tt.valueUSD)
		assert.Equal(t, tt.expected, ExtensionPeriod(tt.valueUSD), "extension for %v", tt.valueUSD)
	}
}

func TestMinimumDrawDate(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, created.Add(24*time.Hour), MinimumDrawDate(created, 10))
	assert.Equal(t, created.Add(7*24*time.Hour), MinimumDrawDate(created, 300))
}

func TestVoucherValidUntil(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(90*24*time.Hour), VoucherValidUntil(from, 3))
	assert.Equal(t, from, VoucherValidUntil(from, 0))
}

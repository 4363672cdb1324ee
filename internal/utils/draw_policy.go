package utils

import "time"

// Prize-value tiers in USD. Low-value prizes resolve quickly, high-value prizes
// get a longer entry window.
const (
	LowTierMaxUSD = 15.0
	MidTierMaxUSD = 25.0

	LowTierDelay  = 24 * time.Hour
	MidTierDelay  = 3 * 24 * time.Hour
	HighTierDelay = 7 * 24 * time.Hour
)

func tierDuration(valueUSD float64) time.Duration {
	switch {
	case valueUSD <= LowTierMaxUSD:
		return LowTierDelay
	case valueUSD <= MidTierMaxUSD:
		return MidTierDelay
	default:
		return HighTierDelay
	}
}

// MinimumDrawDelay returns how long after creation a raffle must wait before it can be drawn
func MinimumDrawDelay(valueUSD float64) time.Duration {
	return tierDuration(valueUSD)
}

// ExtensionPeriod returns how far the draw date moves when the ticket threshold is missed
func ExtensionPeriod(valueUSD float64) time.Duration {
	return tierDuration(valueUSD)
}

// MinimumDrawDate computes the earliest allowed draw time for a raffle created at createdAt
func MinimumDrawDate(createdAt time.Time, valueUSD float64) time.Time {
	return createdAt.Add(MinimumDrawDelay(valueUSD))
}

// VoucherValidUntil approximates validityMonths as 30-day blocks
func VoucherValidUntil(from time.Time, validityMonths int) time.Time {
	return from.Add(time.Duration(validityMonths) * 30 * 24 * time.Hour)
}

// Package currency converts prize face values into USD for draw-policy tier lookups.
package currency

import (
	"strings"
)

// BaseCurrency is the fallback used when no default is configured
const BaseCurrency = "THB"

// DefaultRates is the built-in currency -> USD multiplier table
var DefaultRates = map[string]float64{
	"USD": 1.0,
	"THB": 0.028,
	"EUR": 1.08,
	"GBP": 1.27,
	"JPY": 0.0067,
	"SGD": 0.74,
	"MYR": 0.21,
	"AUD": 0.66,
}

// Normalizer converts amounts to USD using a fixed rate table. Unknown codes
// fall back to the default currency's rate. It never fails.
type Normalizer struct {
	rates       map[string]float64
	defaultCode string
}

// NewNormalizer creates a Normalizer. A nil or empty rates map selects DefaultRates,
// an empty defaultCode selects BaseCurrency. Codes are matched case-insensitively.
func NewNormalizer(rates map[string]float64, defaultCode string) *Normalizer {
	if len(rates) == 0 {
		rates = DefaultRates
	}
	table := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		table[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	if _, ok := table["USD"]; !ok {
		table["USD"] = 1.0
	}
	if defaultCode == "" {
		defaultCode = BaseCurrency
	}
	return &Normalizer{rates: table, defaultCode: strings.ToUpper(defaultCode)}
}

// ToUSD converts amount in currencyCode to USD
func (n *Normalizer) ToUSD(amount float64, currencyCode string) float64 {
	return amount * n.Rate(currencyCode)
}

// Rate returns the USD multiplier applied to currencyCode
func (n *Normalizer) Rate(currencyCode string) float64 {
	if rate, ok := n.rates[strings.ToUpper(strings.TrimSpace(currencyCode))]; ok {
		return rate
	}
	if rate, ok := n.rates[n.defaultCode]; ok {
		return rate
	}
	// default missing from a custom table; treat amounts as USD
	return 1.0
}

// Supported reports whether currencyCode has its own entry in the table
func (n *Normalizer) Supported(currencyCode string) bool {
	_, ok := n.rates[strings.ToUpper(strings.TrimSpace(currencyCode))]
	return ok
}

// Default returns the fallback currency code
func (n *Normalizer) Default() string {
	return n.defaultCode
}

package models

import (
	"time"
)

// DrawStatus represents where a raffle sits in its draw lifecycle
type DrawStatus string

const (
	DrawStatusPending   DrawStatus = "pending"
	DrawStatusEligible  DrawStatus = "eligible"
	DrawStatusExtended  DrawStatus = "extended"
	DrawStatusDrawn     DrawStatus = "drawn"
	DrawStatusCancelled DrawStatus = "cancelled"
)

// EvaluableStatuses are the statuses the automatic draw cycle picks up (combined with active=true).
var EvaluableStatuses = []DrawStatus{
	DrawStatusPending,
	DrawStatusEligible,
	DrawStatusExtended,
	DrawStatusDrawn,
}

// IsEvaluable reports whether the status can still be picked up by the draw engine
func (s DrawStatus) IsEvaluable() bool {
	for _, st := range EvaluableStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Raffle represents a prize pool tied to a partner business
type Raffle struct {
	ID          string `bson:"_id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
	PartnerID   string `bson:"partnerId" json:"partnerId"`
	PartnerName string `bson:"partnerName,omitempty" json:"partnerName,omitempty"`

	// Prize terms
	PrizeValue     float64 `bson:"prizeValue" json:"prizeValue"`
	Currency       string  `bson:"currency" json:"currency"`
	PrizeValueUSD  float64 `bson:"prizeValueUSD" json:"prizeValueUSD"` // Derived at create/update time
	IsDigitalPrize bool    `bson:"isDigitalPrize" json:"isDigitalPrize"`
	ValidityMonths int     `bson:"validityMonths" json:"validityMonths"`

	// Threshold terms
	GamePrice             int `bson:"gamePrice" json:"gamePrice"` // Total tickets required before a draw can succeed
	TicketCost            int `bson:"ticketCost,omitempty" json:"ticketCost,omitempty"`
	TotalTicketsCollected int `bson:"totalTicketsCollected" json:"totalTicketsCollected"`
	TotalEntries          int `bson:"totalEntries" json:"totalEntries"`

	// Scheduling state
	DrawDate          time.Time  `bson:"drawDate" json:"drawDate"`
	MinimumDrawDate   *time.Time `bson:"minimumDrawDate,omitempty" json:"minimumDrawDate,omitempty"`
	LastExtensionDate *time.Time `bson:"lastExtensionDate,omitempty" json:"lastExtensionDate,omitempty"`
	DrawnAt           *time.Time `bson:"drawnAt,omitempty" json:"drawnAt,omitempty"`
	DrawStatus        DrawStatus `bson:"drawStatus" json:"drawStatus"`
	Active            bool       `bson:"active" json:"active"`

	// Inventory
	PrizesAvailable int `bson:"prizesAvailable" json:"prizesAvailable"`
	PrizesRemaining int `bson:"prizesRemaining" json:"prizesRemaining"`

	// Digital prize pool
	SecretCodes     []string `bson:"secretCodes,omitempty" json:"-"`
	UsedSecretCodes []string `bson:"usedSecretCodes,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ThresholdMet reports whether enough tickets were collected for a draw to succeed
func (r *Raffle) ThresholdMet() bool {
	return r.TotalTicketsCollected >= r.GamePrice
}

// CodePool returns the raffle's secret-code pool view
func (r *Raffle) CodePool() SecretCodePool {
	return NewSecretCodePool(r.SecretCodes, r.UsedSecretCodes)
}

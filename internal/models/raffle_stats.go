package models

import (
	"time"
)

// RaffleStats is the admin/public progress view of a raffle
type RaffleStats struct {
	RaffleID              string     `json:"raffleId"`
	Title                 string     `json:"title"`
	DrawStatus            DrawStatus `json:"drawStatus"`
	Active                bool       `json:"active"`
	PrizeValue            float64    `json:"prizeValue"`
	Currency              string     `json:"currency"`
	PrizeValueUSD         float64    `json:"prizeValueUSD"`
	TotalTicketsCollected int        `json:"totalTicketsCollected"`
	LedgerTickets         int        `json:"ledgerTickets"`
	GamePrice             int        `json:"gamePrice"`
	ProgressPercentage    float64    `json:"progressPercentage"`
	TotalEntries          int64      `json:"totalEntries"`
	TotalParticipants     int        `json:"totalParticipants"`
	PrizesRemaining       int        `json:"prizesRemaining"`
	SecretCodesRemaining  int        `json:"secretCodesRemaining"`
	DrawDate              time.Time  `json:"drawDate"`
	MinimumDrawDate       *time.Time `json:"minimumDrawDate,omitempty"`
	HoursUntilDraw        float64    `json:"hoursUntilDraw"`
	Eligibility           struct {
		ThresholdMet    bool `json:"thresholdMet"`
		DrawDateReached bool `json:"drawDateReached"`
		MinimumWaitMet  bool `json:"minimumWaitMet"`
		StatusEvaluable bool `json:"statusEvaluable"`
		CanDraw         bool `json:"canDraw"`
	} `json:"eligibility"`
}

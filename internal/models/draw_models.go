package models

import (
	"time"
)

// OutcomeKind classifies the result of evaluating one raffle
type OutcomeKind string

const (
	OutcomeDrawn    OutcomeKind = "drawn"
	OutcomeExtended OutcomeKind = "extended"
	OutcomeSkipped  OutcomeKind = "skipped"
	OutcomeError    OutcomeKind = "error"
)

// Failure codes recorded in draw reports
const (
	FailureGateNotMet        = "GATE_NOT_MET"
	FailureNoEntries         = "NO_ENTRIES"
	FailureWinnerUserMissing = "WINNER_USER_MISSING"
	FailureNoCodesAvailable  = "NO_CODES_AVAILABLE"
	FailureNotEvaluable      = "NOT_EVALUABLE"
	FailureConcurrentUpdate  = "CONCURRENT_UPDATE"
	FailureRaffleBusy        = "RAFFLE_BUSY"
	FailureInternal          = "INTERNAL"
)

// DrawOutcome is the result of one draw attempt on one raffle
type DrawOutcome struct {
	RaffleID        string      `json:"raffleId"`
	Title           string      `json:"title"`
	Kind            OutcomeKind `json:"kind"`
	Code            string      `json:"code,omitempty"`
	Error           string      `json:"error,omitempty"`
	CurrentTickets  int         `json:"currentTickets"`
	RequiredTickets int         `json:"requiredTickets"`
	NewDrawDate     *time.Time  `json:"newDrawDate,omitempty"`
	VoucherID       string      `json:"voucherId,omitempty"`
	WinnerID        string      `json:"winnerId,omitempty"`
	UserID          string      `json:"userId,omitempty"`
	EntryID         string      `json:"entryId,omitempty"`
	PrizesRemaining int         `json:"prizesRemaining"`
}

// DrawFailure is the admin-facing summary line of a failed raffle evaluation
type DrawFailure struct {
	RaffleID string `json:"raffleId"`
	Title    string `json:"title"`
	Code     string `json:"code"`
	Error    string `json:"error"`
}

// DrawReport summarises one invocation of the draw batch
type DrawReport struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Processed  []string      `json:"processed"`
	Drawn      []string      `json:"drawn"`
	Extended   []string      `json:"extended"`
	Errors     []DrawFailure `json:"errors"`
	Outcomes   []DrawOutcome `json:"outcomes"`
}

// NewDrawReport creates an empty report with non-nil slices
func NewDrawReport(startedAt time.Time) *DrawReport {
	return &DrawReport{
		StartedAt: startedAt,
		Processed: []string{},
		Drawn:     []string{},
		Extended:  []string{},
		Errors:    []DrawFailure{},
		Outcomes:  []DrawOutcome{},
	}
}

// Add records an outcome in the report lists
func (r *DrawReport) Add(o DrawOutcome) {
	r.Processed = append(r.Processed, o.RaffleID)
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case OutcomeDrawn:
		r.Drawn = append(r.Drawn, o.RaffleID)
	case OutcomeExtended:
		r.Extended = append(r.Extended, o.RaffleID)
	default:
		r.Errors = append(r.Errors, DrawFailure{
			RaffleID: o.RaffleID,
			Title:    o.Title,
			Code:     o.Code,
			Error:    o.Error,
		})
	}
}

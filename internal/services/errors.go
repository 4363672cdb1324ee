package services

import "errors"

// Draw taxonomy. None of these abort a batch; each is recorded against its raffle.
var (
	ErrGateNotMet         = errors.New("minimum draw date not reached")
	ErrNoEntries          = errors.New("ticket threshold met but raffle has no entries")
	ErrWinnerUserMissing  = errors.New("winning entry references a missing user")
	ErrNoCodesAvailable   = errors.New("no secret codes available")
	ErrRaffleNotEvaluable = errors.New("raffle is not in an evaluable state")
	ErrConcurrentDraw     = errors.New("raffle changed during evaluation")
	ErrRaffleBusy         = errors.New("raffle is being evaluated by another run")
)

// Request-level errors returned by the ledger and administration services
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRaffleClosed = errors.New("raffle is not accepting changes")
	ErrForbidden    = errors.New("forbidden")
)

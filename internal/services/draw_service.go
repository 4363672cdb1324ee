package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/currency"
	"github.com/ArowuTest/winwai-raffle-backend/internal/events"
	"github.com/ArowuTest/winwai-raffle-backend/internal/lock"
	"github.com/ArowuTest/winwai-raffle-backend/internal/metrics"
	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/ArowuTest/winwai-raffle-backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	triggerBatch  = "batch"
	triggerSingle = "single"
	triggerManual = "manual"

	maxCodeClaimAttempts = 5
	maxReferenceAttempts = 5
	publishTimeout       = 5 * time.Second
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl is the raffle draw engine. It owns every transition of a
// raffle's scheduling and inventory fields and is the only writer of vouchers
// and winners.
type DrawServiceImpl struct {
	raffleRepo  repositories.RaffleRepository
	entryRepo   repositories.EntryRepository
	voucherRepo repositories.VoucherRepository
	winnerRepo  repositories.WinnerRepository
	userRepo    repositories.UserRepository
	partnerRepo repositories.PartnerRepository

	normalizer *currency.Normalizer
	locker     lock.Locker
	publisher  events.Publisher
	random     RandomSource
	codes      CodeGenerator
	now        func() time.Time

	defaultValidityMonths int
}

// DrawOption customises a DrawServiceImpl
type DrawOption func(*DrawServiceImpl)

// WithClock overrides the time source
func WithClock(now func() time.Time) DrawOption {
	return func(s *DrawServiceImpl) { s.now = now }
}

// WithRandomSource overrides the winner selection source
func WithRandomSource(r RandomSource) DrawOption {
	return func(s *DrawServiceImpl) { s.random = r }
}

// WithCodeGenerator overrides voucher reference and verification code generation
func WithCodeGenerator(g CodeGenerator) DrawOption {
	return func(s *DrawServiceImpl) { s.codes = g }
}

// WithLocker overrides the per-raffle lease
func WithLocker(l lock.Locker) DrawOption {
	return func(s *DrawServiceImpl) { s.locker = l }
}

// WithPublisher sets the voucher event publisher
func WithPublisher(p events.Publisher) DrawOption {
	return func(s *DrawServiceImpl) { s.publisher = p }
}

// WithDefaultValidityMonths sets the voucher validity used when a raffle has none
func WithDefaultValidityMonths(months int) DrawOption {
	return func(s *DrawServiceImpl) {
		if months > 0 {
			s.defaultValidityMonths = months
		}
	}
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	raffleRepo repositories.RaffleRepository,
	entryRepo repositories.EntryRepository,
	voucherRepo repositories.VoucherRepository,
	winnerRepo repositories.WinnerRepository,
	userRepo repositories.UserRepository,
	partnerRepo repositories.PartnerRepository,
	normalizer *currency.Normalizer,
	opts ...DrawOption,
) *DrawServiceImpl {
	s := &DrawServiceImpl{
		raffleRepo:            raffleRepo,
		entryRepo:             entryRepo,
		voucherRepo:           voucherRepo,
		winnerRepo:            winnerRepo,
		userRepo:              userRepo,
		partnerRepo:           partnerRepo,
		normalizer:            normalizer,
		locker:                lock.NewLocalLocker(),
		publisher:             events.NopPublisher{},
		random:                NewRandomSource(time.Now().UnixNano()),
		codes:                 NewCodeGenerator(),
		now:                   time.Now,
		defaultValidityMonths: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = currency.NewNormalizer(nil, "")
	}
	return s
}

// --- Batch and single evaluation ---

// EvaluateDue evaluates every active raffle in an evaluable status whose draw
// date has arrived. Raffles are processed sequentially and a failure on one
// raffle is recorded in the report without stopping the batch.
func (s *DrawServiceImpl) EvaluateDue(ctx context.Context) (*models.DrawReport, error) {
	started := s.now()
	report := models.NewDrawReport(started)

	raffles, err := s.raffleRepo.FindDue(ctx, started)
	if err != nil {
		slog.Error("Failed to load due raffles", "error", err)
		return nil, fmt.Errorf("failed to load due raffles: %w", err)
	}

	for _, raffle := range raffles {
		if ctx.Err() != nil {
			slog.Warn("Draw batch interrupted", "error", ctx.Err(), "remaining", len(raffles)-len(report.Processed))
			break
		}
		report.Add(s.evaluate(ctx, raffle.ID, raffle.Title, triggerBatch))
	}

	report.FinishedAt = s.now()
	metrics.RecordDrawBatch(triggerBatch, report.FinishedAt.Sub(started))
	slog.Info("Draw batch completed",
		"processed", len(report.Processed),
		"drawn", len(report.Drawn),
		"extended", len(report.Extended),
		"errors", len(report.Errors),
	)
	return report, nil
}

// EvaluateOne evaluates a single raffle with the same gates as the batch.
// The returned error is non-nil only when the raffle cannot be loaded.
func (s *DrawServiceImpl) EvaluateOne(ctx context.Context, raffleID string) (models.DrawOutcome, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return models.DrawOutcome{RaffleID: raffleID}, fmt.Errorf("failed to load raffle %s: %w", raffleID, err)
	}
	return s.evaluate(ctx, raffle.ID, raffle.Title, triggerSingle), nil
}

// evaluate takes the raffle's lease, reloads it and runs one evaluation pass
func (s *DrawServiceImpl) evaluate(ctx context.Context, raffleID, title, trigger string) models.DrawOutcome {
	outcome := models.DrawOutcome{RaffleID: raffleID, Title: title}

	release, err := s.locker.Acquire(ctx, raffleID)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			err = ErrRaffleBusy
		}
		s.fail(&outcome, err)
		s.record(trigger, outcome)
		return outcome
	}
	defer release()

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		s.fail(&outcome, fmt.Errorf("failed to reload raffle: %w", err))
		s.record(trigger, outcome)
		return outcome
	}
	outcome = newOutcome(raffle)

	if err := s.evaluateRaffle(ctx, raffle, &outcome); err != nil {
		s.fail(&outcome, err)
	}
	s.record(trigger, outcome)
	return outcome
}

// evaluateRaffle runs the gate -> threshold -> draw sequence on a freshly loaded raffle
func (s *DrawServiceImpl) evaluateRaffle(ctx context.Context, raffle *models.Raffle, outcome *models.DrawOutcome) error {
	now := s.now()

	if !raffle.Active || !raffle.DrawStatus.IsEvaluable() || raffle.DrawDate.After(now) {
		return fmt.Errorf("%w: status=%s active=%t drawDate=%s",
			ErrRaffleNotEvaluable, raffle.DrawStatus, raffle.Active, raffle.DrawDate.Format(time.RFC3339))
	}

	// Minimum-wait gate
	if raffle.MinimumDrawDate != nil && now.Before(*raffle.MinimumDrawDate) {
		return fmt.Errorf("%w: earliest draw at %s", ErrGateNotMet, raffle.MinimumDrawDate.Format(time.RFC3339))
	}

	// Threshold check
	if !raffle.ThresholdMet() {
		return s.extend(ctx, raffle, now, outcome)
	}

	// Population check
	entries, err := s.entryRepo.FindByRaffleID(ctx, raffle.ID)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		slog.Error("Raffle has tickets but no entries", "raffleId", raffle.ID, "totalTicketsCollected", raffle.TotalTicketsCollected)
		return ErrNoEntries
	}

	// Winner selection, one entry one chance
	entry := entries[s.random.Intn(len(entries))]

	award, err := s.award(ctx, raffle, entry, now)
	if err != nil {
		return err
	}
	award.apply(outcome)
	return nil
}

// extend pushes the draw date out by the raffle's tier extension period
func (s *DrawServiceImpl) extend(ctx context.Context, raffle *models.Raffle, now time.Time, outcome *models.DrawOutcome) error {
	newDrawDate := now.Add(utils.ExtensionPeriod(s.valueUSD(raffle)))
	err := s.raffleRepo.Extend(ctx, raffle.ID, repositories.RaffleExtension{
		ExpectedStatus:   raffle.DrawStatus,
		ExpectedDrawDate: raffle.DrawDate,
		NewDrawDate:      newDrawDate,
		ExtendedAt:       now,
	})
	if errors.Is(err, repositories.ErrConflict) {
		return ErrConcurrentDraw
	}
	if err != nil {
		return fmt.Errorf("failed to extend raffle: %w", err)
	}

	outcome.Kind = models.OutcomeExtended
	outcome.NewDrawDate = &newDrawDate
	slog.Info("Raffle extended",
		"raffleId", raffle.ID,
		"currentTickets", raffle.TotalTicketsCollected,
		"requiredTickets", raffle.GamePrice,
		"newDrawDate", newDrawDate,
	)
	return nil
}

// --- Manual draw ---

// DrawAll draws up to every remaining prize unit in one pass, sampling entries
// without replacement. The minimum-wait and threshold gates do not apply.
// Per-winner failures are reported in the returned outcomes.
func (s *DrawServiceImpl) DrawAll(ctx context.Context, raffleID string) ([]models.DrawOutcome, error) {
	started := s.now()
	release, err := s.locker.Acquire(ctx, raffleID)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrRaffleBusy
		}
		return nil, fmt.Errorf("failed to acquire raffle lease: %w", err)
	}
	defer release()

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle %s: %w", raffleID, err)
	}
	if !raffle.Active || raffle.DrawStatus == models.DrawStatusCancelled || raffle.PrizesRemaining <= 0 {
		return nil, fmt.Errorf("%w: status=%s active=%t prizesRemaining=%d",
			ErrRaffleNotEvaluable, raffle.DrawStatus, raffle.Active, raffle.PrizesRemaining)
	}

	entries, err := s.entryRepo.FindByRaffleID(ctx, raffle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		outcome := newOutcome(raffle)
		s.fail(&outcome, ErrNoEntries)
		s.record(triggerManual, outcome)
		return []models.DrawOutcome{outcome}, nil
	}

	picks := sampleIndexes(s.random, len(entries), raffle.PrizesRemaining)
	outcomes := make([]models.DrawOutcome, 0, len(picks))
	current := raffle

	for _, i := range picks {
		outcome := newOutcome(current)
		award, err := s.award(ctx, current, entries[i], s.now())
		if err != nil {
			s.fail(&outcome, err)
			s.record(triggerManual, outcome)
			outcomes = append(outcomes, outcome)
			if errors.Is(err, ErrNoCodesAvailable) || errors.Is(err, ErrConcurrentDraw) {
				break
			}
			continue
		}
		award.apply(&outcome)
		s.record(triggerManual, outcome)
		outcomes = append(outcomes, outcome)
		current = award.raffle
	}

	metrics.RecordDrawBatch(triggerManual, s.now().Sub(started))
	slog.Info("Manual draw completed", "raffleId", raffle.ID, "attempted", len(picks), "prizesRemaining", current.PrizesRemaining)
	return outcomes, nil
}

// --- Prize award ---

type awardResult struct {
	raffle  *models.Raffle
	entry   *models.Entry
	voucher *models.Voucher
	winner  *models.Winner
}

func (a *awardResult) apply(o *models.DrawOutcome) {
	o.Kind = models.OutcomeDrawn
	o.VoucherID = a.voucher.ID
	o.WinnerID = a.winner.ID
	o.UserID = a.winner.UserID
	o.EntryID = a.entry.ID
	o.PrizesRemaining = a.raffle.PrizesRemaining
}

// award turns a winning entry into a voucher and winner. Order: resolve user,
// claim a secret code, consume the prize unit with a compare-and-set, then
// persist voucher and winner. Any failure after a claim is rolled back unless
// the raffle moved on (cancelled, drawn again) in the meantime.
func (s *DrawServiceImpl) award(ctx context.Context, raffle *models.Raffle, entry *models.Entry, now time.Time) (*awardResult, error) {
	user, err := s.userRepo.FindByID(ctx, entry.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		slog.Warn("Winning entry references missing user", "raffleId", raffle.ID, "entryId", entry.ID, "userId", entry.UserID)
		return nil, fmt.Errorf("%w: user %s", ErrWinnerUserMissing, entry.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load winning user: %w", err)
	}

	partner := s.lookupPartner(ctx, raffle)

	secretCode := ""
	if raffle.IsDigitalPrize {
		secretCode, err = s.claimSecretCode(ctx, raffle)
		if err != nil {
			return nil, err
		}
	}
	releaseCode := func() {
		if secretCode == "" {
			return
		}
		if err := s.raffleRepo.ReleaseSecretCode(ctx, raffle.ID, secretCode); err != nil {
			slog.Error("Failed to release secret code", "error", err, "raffleId", raffle.ID)
		}
	}

	recorded, err := s.raffleRepo.RecordDraw(ctx, raffle.ID, repositories.RaffleDrawUpdate{
		ExpectedRemaining: raffle.PrizesRemaining,
		DrawnAt:           now,
	})
	if err != nil {
		releaseCode()
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrConcurrentDraw
		}
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}
	updated := recorded.Raffle
	rollback := func() {
		err := s.raffleRepo.RestorePrizeUnit(ctx, raffle.ID, repositories.PrizeUnitRestore{
			ExpectedRemaining: updated.PrizesRemaining,
			Status:            recorded.PreviousStatus,
			DrawnAt:           recorded.PreviousDrawnAt,
		})
		switch {
		case errors.Is(err, repositories.ErrConflict):
			slog.Warn("Raffle changed since the draw, prize unit not restored", "raffleId", raffle.ID)
		case err != nil:
			slog.Error("Failed to restore prize unit", "error", err, "raffleId", raffle.ID)
		}
		releaseCode()
	}

	voucher, err := s.issueVoucher(ctx, raffle, partner, user, secretCode, now)
	if err != nil {
		rollback()
		return nil, err
	}

	winner := &models.Winner{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		RaffleID:  raffle.ID,
		EntryID:   entry.ID,
		VoucherID: voucher.ID,
		DrawnAt:   now,
		CreatedAt: now,
	}
	if err := s.winnerRepo.Create(ctx, winner); err != nil {
		if delErr := s.voucherRepo.Delete(ctx, voucher.ID); delErr != nil {
			slog.Error("Failed to delete orphaned voucher", "error", delErr, "voucherId", voucher.ID)
		}
		rollback()
		return nil, fmt.Errorf("failed to create winner: %w", err)
	}

	metrics.RecordVoucherIssued(voucher.IsDigitalPrize)
	slog.Info("Raffle winner drawn",
		"raffleId", raffle.ID,
		"winnerId", winner.ID,
		"userId", user.ID,
		"voucherRef", voucher.VoucherRef,
		"prizesRemaining", updated.PrizesRemaining,
	)

	s.notify(ctx, voucher, winner)
	return &awardResult{raffle: updated, entry: entry, voucher: voucher, winner: winner}, nil
}

// claimSecretCode takes the head of the available queue with an atomic claim,
// reloading the pool when a concurrent claim wins the race
func (s *DrawServiceImpl) claimSecretCode(ctx context.Context, raffle *models.Raffle) (string, error) {
	pool := raffle.CodePool()
	for attempt := 0; attempt < maxCodeClaimAttempts; attempt++ {
		code, ok := pool.Next()
		if !ok {
			slog.Warn("Digital raffle has no secret codes left", "raffleId", raffle.ID)
			return "", ErrNoCodesAvailable
		}
		err := s.raffleRepo.ClaimSecretCode(ctx, raffle.ID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return "", fmt.Errorf("failed to claim secret code: %w", err)
		}
		fresh, err := s.raffleRepo.FindByID(ctx, raffle.ID)
		if err != nil {
			return "", fmt.Errorf("failed to reload secret code pool: %w", err)
		}
		pool = fresh.CodePool()
	}
	return "", ErrConcurrentDraw
}

// issueVoucher builds and stores the voucher, regenerating the reference on collision
func (s *DrawServiceImpl) issueVoucher(ctx context.Context, raffle *models.Raffle, partner *models.Partner, user *models.User, secretCode string, now time.Time) (*models.Voucher, error) {
	verification, err := s.codes.VerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	validityMonths := raffle.ValidityMonths
	if validityMonths <= 0 {
		validityMonths = s.defaultValidityMonths
	}

	voucher := &models.Voucher{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		UserName:         user.Name,
		UserEmail:        user.Email,
		RaffleID:         raffle.ID,
		RaffleTitle:      raffle.Title,
		PartnerID:        raffle.PartnerID,
		PartnerName:      raffle.PartnerName,
		PrizeValue:       raffle.PrizeValue,
		Currency:         raffle.Currency,
		IsDigitalPrize:   raffle.IsDigitalPrize,
		SecretCode:       secretCode,
		VerificationCode: verification,
		Status:           models.VoucherStatusActive,
		ValidUntil:       utils.VoucherValidUntil(now, validityMonths),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if partner != nil {
		voucher.PartnerName = partner.Name
		voucher.PartnerEmail = partner.Email
		voucher.PartnerWhatsapp = partner.Whatsapp
		voucher.PartnerLine = partner.Line
		voucher.PartnerAddress = partner.Address
	}

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.codes.VoucherReference(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate voucher reference: %w", err)
		}
		taken, err := s.voucherRepo.ExistsByReference(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to check voucher reference: %w", err)
		}
		if taken {
			slog.Debug("Voucher reference collision", "voucherRef", ref)
			continue
		}
		voucher.VoucherRef = ref
		err = s.voucherRepo.Create(ctx, voucher)
		if errors.Is(err, repositories.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create voucher: %w", err)
		}
		return voucher, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique voucher reference after %d attempts", maxReferenceAttempts)
}

// lookupPartner returns nil when the partner record is gone; the raffle's
// cached partner name is used instead
func (s *DrawServiceImpl) lookupPartner(ctx context.Context, raffle *models.Raffle) *models.Partner {
	if raffle.PartnerID == "" {
		return nil
	}
	partner, err := s.partnerRepo.FindByID(ctx, raffle.PartnerID)
	if err != nil {
		slog.Warn("Partner lookup failed, voucher will carry no contact details", "error", err, "raffleId", raffle.ID, "partnerId", raffle.PartnerID)
		return nil
	}
	return partner
}

// notify publishes the voucher event and flags the winner. Failures are logged only.
func (s *DrawServiceImpl) notify(ctx context.Context, voucher *models.Voucher, winner *models.Winner) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.publisher.PublishVoucherIssued(pubCtx, events.VoucherIssued{
		WinnerID:       winner.ID,
		VoucherID:      voucher.ID,
		VoucherRef:     voucher.VoucherRef,
		UserID:         voucher.UserID,
		UserEmail:      voucher.UserEmail,
		RaffleID:       voucher.RaffleID,
		RaffleTitle:    voucher.RaffleTitle,
		PartnerName:    voucher.PartnerName,
		IsDigitalPrize: voucher.IsDigitalPrize,
		ValidUntil:     voucher.ValidUntil,
		DrawnAt:        winner.DrawnAt,
	})
	if err != nil {
		slog.Warn("Failed to publish voucher event", "error", err, "winnerId", winner.ID)
		return
	}
	notifiedAt := s.now()
	if err := s.winnerRepo.MarkNotified(ctx, winner.ID, notifiedAt); err != nil {
		slog.Warn("Failed to mark winner notified", "error", err, "winnerId", winner.ID)
		return
	}
	winner.Notified = true
	winner.NotifiedAt = &notifiedAt
}

// --- Helpers ---

// valueUSD prefers the cached USD value and derives it for records written without one
func (s *DrawServiceImpl) valueUSD(raffle *models.Raffle) float64 {
	if raffle.PrizeValueUSD > 0 || raffle.PrizeValue == 0 {
		return raffle.PrizeValueUSD
	}
	return s.normalizer.ToUSD(raffle.PrizeValue, raffle.Currency)
}

func newOutcome(raffle *models.Raffle) models.DrawOutcome {
	return models.DrawOutcome{
		RaffleID:        raffle.ID,
		Title:           raffle.Title,
		CurrentTickets:  raffle.TotalTicketsCollected,
		RequiredTickets: raffle.GamePrice,
		PrizesRemaining: raffle.PrizesRemaining,
	}
}

// fail classifies err into the outcome's kind and report code
func (s *DrawServiceImpl) fail(o *models.DrawOutcome, err error) {
	o.Error = err.Error()
	switch {
	case errors.Is(err, ErrGateNotMet):
		o.Kind, o.Code = models.OutcomeSkipped, models.FailureGateNotMet
	case errors.Is(err, ErrRaffleNotEvaluable):
		o.Kind, o.Code = models.OutcomeSkipped, models.FailureNotEvaluable
	case errors.Is(err, ErrRaffleBusy):
		o.Kind, o.Code = models.OutcomeSkipped, models.FailureRaffleBusy
	case errors.Is(err, ErrNoEntries):
		o.Kind, o.Code = models.OutcomeError, models.FailureNoEntries
	case errors.Is(err, ErrWinnerUserMissing):
		o.Kind, o.Code = models.OutcomeError, models.FailureWinnerUserMissing
	case errors.Is(err, ErrNoCodesAvailable):
		o.Kind, o.Code = models.OutcomeError, models.FailureNoCodesAvailable
	case errors.Is(err, ErrConcurrentDraw):
		o.Kind, o.Code = models.OutcomeError, models.FailureConcurrentUpdate
	default:
		o.Kind, o.Code = models.OutcomeError, models.FailureInternal
		slog.Error("Raffle evaluation failed", "error", err, "raffleId", o.RaffleID)
	}
}

func (s *DrawServiceImpl) record(trigger string, o models.DrawOutcome) {
	metrics.RecordDrawOutcome(trigger, string(o.Kind), o.Code)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/currency"
	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/ArowuTest/winwai-raffle-backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

var _ RaffleService = (*RaffleServiceImpl)(nil)

// CreateRaffleInput carries the admin-supplied fields of a new raffle
type CreateRaffleInput struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Image           string    `json:"image"`
	PartnerID       string    `json:"partnerId" binding:"required"`
	PrizeValue      float64   `json:"prizeValue"`
	Currency        string    `json:"currency"`
	IsDigitalPrize  bool      `json:"isDigitalPrize"`
	ValidityMonths  int       `json:"validityMonths"`
	GamePrice       int       `json:"gamePrice"`
	TicketCost      int       `json:"ticketCost"`
	DrawDate        time.Time `json:"drawDate" binding:"required"`
	PrizesAvailable int       `json:"prizesAvailable" binding:"required"`
	SecretCodes     []string  `json:"secretCodes"`
}

// PrizeTermsInput carries a partial update of the prize terms. Nil fields are left unchanged.
type PrizeTermsInput struct {
	PrizeValue     *float64 `json:"prizeValue"`
	Currency       *string  `json:"currency"`
	ValidityMonths *int     `json:"validityMonths"`
	GamePrice      *int     `json:"gamePrice"`
}

// RaffleServiceImpl handles raffle administration and reads
type RaffleServiceImpl struct {
	raffleRepo  repositories.RaffleRepository
	entryRepo   repositories.EntryRepository
	partnerRepo repositories.PartnerRepository
	normalizer  *currency.Normalizer
	now         func() time.Time

	defaultValidityMonths int
}

// NewRaffleService creates a new RaffleServiceImpl
func NewRaffleService(
	raffleRepo repositories.RaffleRepository,
	entryRepo repositories.EntryRepository,
	partnerRepo repositories.PartnerRepository,
	normalizer *currency.Normalizer,
	defaultValidityMonths int,
) *RaffleServiceImpl {
	if normalizer == nil {
		normalizer = currency.NewNormalizer(nil, "")
	}
	if defaultValidityMonths <= 0 {
		defaultValidityMonths = 3
	}
	return &RaffleServiceImpl{
		raffleRepo:            raffleRepo,
		entryRepo:             entryRepo,
		partnerRepo:           partnerRepo,
		normalizer:            normalizer,
		now:                   time.Now,
		defaultValidityMonths: defaultValidityMonths,
	}
}

// Create validates the input, derives prizeValueUSD and minimumDrawDate and stores a pending raffle
func (s *RaffleServiceImpl) Create(ctx context.Context, input CreateRaffleInput) (*models.Raffle, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	partner, err := s.partnerRepo.FindByID(ctx, input.PartnerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown partner %s", ErrInvalidInput, input.PartnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load partner: %w", err)
	}

	now := s.now()
	code := s.currencyCode(input.Currency)
	valueUSD := s.normalizer.ToUSD(input.PrizeValue, code)
	minimumDrawDate := utils.MinimumDrawDate(now, valueUSD)

	validityMonths := input.ValidityMonths
	if validityMonths <= 0 {
		validityMonths = s.defaultValidityMonths
	}

	raffle := &models.Raffle{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        input.Category,
		Image:           input.Image,
		PartnerID:       partner.ID,
		PartnerName:     partner.Name,
		PrizeValue:      input.PrizeValue,
		Currency:        code,
		PrizeValueUSD:   valueUSD,
		IsDigitalPrize:  input.IsDigitalPrize,
		ValidityMonths:  validityMonths,
		GamePrice:       input.GamePrice,
		TicketCost:      input.TicketCost,
		DrawDate:        input.DrawDate,
		MinimumDrawDate: &minimumDrawDate,
		DrawStatus:      models.DrawStatusPending,
		Active:          true,
		PrizesAvailable: input.PrizesAvailable,
		PrizesRemaining: input.PrizesAvailable,
		SecretCodes:     cleanSecretCodes(input.SecretCodes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.raffleRepo.Create(ctx, raffle); err != nil {
		slog.Error("Failed to create raffle", "error", err)
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	slog.Info("Raffle created", "raffleId", raffle.ID, "prizeValueUSD", valueUSD, "minimumDrawDate", minimumDrawDate)
	return raffle, nil
}

func validateCreate(input CreateRaffleInput) error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case input.PartnerID == "":
		return fmt.Errorf("%w: partnerId is required", ErrInvalidInput)
	case input.PrizesAvailable <= 0:
		return fmt.Errorf("%w: prizesAvailable must be positive", ErrInvalidInput)
	case input.PrizeValue < 0:
		return fmt.Errorf("%w: prizeValue must not be negative", ErrInvalidInput)
	case input.GamePrice < 0:
		return fmt.Errorf("%w: gamePrice must not be negative", ErrInvalidInput)
	case input.DrawDate.IsZero():
		return fmt.Errorf("%w: drawDate is required", ErrInvalidInput)
	case !input.IsDigitalPrize && len(input.SecretCodes) > 0:
		return fmt.Errorf("%w: secret codes are only valid for digital prizes", ErrInvalidInput)
	}
	for _, c := range input.SecretCodes {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: secret codes must not be blank", ErrInvalidInput)
		}
	}
	return nil
}

// cleanSecretCodes trims codes and drops blanks and duplicates, keeping first-seen order
func cleanSecretCodes(codes []string) []string {
	cleaned := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return models.NewSecretCodePool(cleaned, nil).Available()
}

// UpdatePrizeTerms applies the changed terms and recomputes prizeValueUSD and
// minimumDrawDate from the raffle's creation time
func (s *RaffleServiceImpl) UpdatePrizeTerms(ctx context.Context, raffleID string, input PrizeTermsInput) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %w", err)
	}
	if raffle.DrawStatus == models.DrawStatusCancelled {
		return nil, fmt.Errorf("%w: raffle %s is cancelled", ErrRaffleClosed, raffleID)
	}

	if input.PrizeValue != nil {
		if *input.PrizeValue < 0 {
			return nil, fmt.Errorf("%w: prizeValue must not be negative", ErrInvalidInput)
		}
		raffle.PrizeValue = *input.PrizeValue
	}
	if input.Currency != nil {
		raffle.Currency = s.currencyCode(*input.Currency)
	}
	if input.ValidityMonths != nil {
		if *input.ValidityMonths <= 0 {
			return nil, fmt.Errorf("%w: validityMonths must be positive", ErrInvalidInput)
		}
		raffle.ValidityMonths = *input.ValidityMonths
	}
	if input.GamePrice != nil {
		if *input.GamePrice < 0 {
			return nil, fmt.Errorf("%w: gamePrice must not be negative", ErrInvalidInput)
		}
		raffle.GamePrice = *input.GamePrice
	}

	raffle.PrizeValueUSD = s.normalizer.ToUSD(raffle.PrizeValue, raffle.Currency)
	minimumDrawDate := utils.MinimumDrawDate(raffle.CreatedAt, raffle.PrizeValueUSD)
	raffle.MinimumDrawDate = &minimumDrawDate

	if err := s.raffleRepo.UpdatePrizeTerms(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update prize terms: %w", err)
	}
	// a lowered gamePrice can complete the threshold
	if err := s.raffleRepo.MarkEligible(ctx, raffle.ID); err != nil {
		slog.Warn("Failed to mark raffle eligible", "error", err, "raffleId", raffle.ID)
	}

	slog.Info("Raffle prize terms updated", "raffleId", raffle.ID, "prizeValueUSD", raffle.PrizeValueUSD, "minimumDrawDate", minimumDrawDate)
	return s.raffleRepo.FindByID(ctx, raffle.ID)
}

// AddSecretCodes appends new codes to a digital raffle's pool
func (s *RaffleServiceImpl) AddSecretCodes(ctx context.Context, raffleID string, codes []string) (*models.Raffle, error) {
	cleaned := cleanSecretCodes(codes)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no codes supplied", ErrInvalidInput)
	}

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %w", err)
	}
	if !raffle.IsDigitalPrize {
		return nil, fmt.Errorf("%w: raffle %s is not a digital prize", ErrInvalidInput, raffleID)
	}
	if raffle.DrawStatus == models.DrawStatusCancelled {
		return nil, fmt.Errorf("%w: raffle %s is cancelled", ErrRaffleClosed, raffleID)
	}

	updated, err := s.raffleRepo.AddSecretCodes(ctx, raffleID, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to add secret codes: %w", err)
	}
	slog.Info("Secret codes added", "raffleId", raffleID, "submitted", len(cleaned), "available", len(updated.CodePool().Available()))
	return updated, nil
}

// Cancel moves a raffle to the terminal cancelled state
func (s *RaffleServiceImpl) Cancel(ctx context.Context, raffleID string) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %w", err)
	}
	if raffle.DrawStatus == models.DrawStatusCancelled {
		return raffle, nil
	}
	if !raffle.Active && raffle.PrizesRemaining == 0 {
		return nil, fmt.Errorf("%w: raffle %s has already been fully drawn", ErrRaffleClosed, raffleID)
	}
	if err := s.raffleRepo.Cancel(ctx, raffleID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to cancel raffle: %w", err)
	}
	slog.Info("Raffle cancelled", "raffleId", raffleID)
	return s.raffleRepo.FindByID(ctx, raffleID)
}

// List returns raffles matching the filter ordered by draw date
func (s *RaffleServiceImpl) List(ctx context.Context, filter repositories.RaffleFilter) ([]*models.Raffle, error) {
	return s.raffleRepo.FindAll(ctx, filter)
}

// Get returns a single raffle
func (s *RaffleServiceImpl) Get(ctx context.Context, raffleID string) (*models.Raffle, error) {
	return s.raffleRepo.FindByID(ctx, raffleID)
}

// Stats reports ticket progress, participation and draw eligibility for a raffle
func (s *RaffleServiceImpl) Stats(ctx context.Context, raffleID string) (*models.RaffleStats, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.CountByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	participants, err := s.entryRepo.CountParticipants(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	ledgerTickets, err := s.entryRepo.SumTicketsByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tickets: %w", err)
	}

	now := s.now()
	stats := &models.RaffleStats{
		RaffleID:              raffle.ID,
		Title:                 raffle.Title,
		DrawStatus:            raffle.DrawStatus,
		Active:                raffle.Active,
		PrizeValue:            raffle.PrizeValue,
		Currency:              raffle.Currency,
		PrizeValueUSD:         raffle.PrizeValueUSD,
		TotalTicketsCollected: raffle.TotalTicketsCollected,
		LedgerTickets:         ledgerTickets,
		GamePrice:             raffle.GamePrice,
		ProgressPercentage:    progress(raffle.TotalTicketsCollected, raffle.GamePrice),
		TotalEntries:          entries,
		TotalParticipants:     participants,
		PrizesRemaining:       raffle.PrizesRemaining,
		DrawDate:              raffle.DrawDate,
		MinimumDrawDate:       raffle.MinimumDrawDate,
		HoursUntilDraw:        math.Max(0, raffle.DrawDate.Sub(now).Hours()),
	}
	if raffle.IsDigitalPrize {
		stats.SecretCodesRemaining = len(raffle.CodePool().Available())
	}

	e := &stats.Eligibility
	e.ThresholdMet = raffle.ThresholdMet()
	e.DrawDateReached = !raffle.DrawDate.After(now)
	e.MinimumWaitMet = raffle.MinimumDrawDate == nil || !now.Before(*raffle.MinimumDrawDate)
	e.StatusEvaluable = raffle.Active && raffle.DrawStatus.IsEvaluable()
	e.CanDraw = e.ThresholdMet && e.DrawDateReached && e.MinimumWaitMet && e.StatusEvaluable &&
		(!raffle.IsDigitalPrize || stats.SecretCodesRemaining > 0)
	return stats, nil
}

func progress(collected, required int) float64 {
	if required <= 0 {
		return 100
	}
	return math.Min(100, math.Round(float64(collected)/float64(required)*10000)/100)
}

func (s *RaffleServiceImpl) currencyCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.normalizer.Default()
	}
	return code
}

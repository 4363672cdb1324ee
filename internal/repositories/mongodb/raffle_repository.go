package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure RaffleRepository implements the interface
var _ repositories.RaffleRepository = (*RaffleRepository)(nil)

// RaffleRepository implements the repositories.RaffleRepository interface
type RaffleRepository struct {
	collection *mongo.Collection
}

// NewRaffleRepository creates a new RaffleRepository
func NewRaffleRepository(db *mongo.Database) *RaffleRepository {
	return &RaffleRepository{
		collection: db.Collection("raffles"),
	}
}

// Create inserts a new raffle
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now()
	}
	raffle.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, raffle)
	return err
}

// FindByID finds a raffle by ID
func (r *RaffleRepository) FindByID(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle)
	if err != nil {
		return nil, translateErr(err)
	}
	return &raffle, nil
}

// FindAll lists raffles sorted by draw date ascending
func (r *RaffleRepository) FindAll(ctx context.Context, filter repositories.RaffleFilter) ([]*models.Raffle, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	opts := options.Find().SetSort(bson.M{"drawDate": 1})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raffles []*models.Raffle
	if err := cursor.All(ctx, &raffles); err != nil {
		return nil, err
	}
	if raffles == nil {
		raffles = []*models.Raffle{}
	}
	return raffles, nil
}

// FindDue finds active raffles in an evaluable status whose draw date has arrived
func (r *RaffleRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Raffle, error) {
	filter := bson.M{
		"active":     true,
		"drawStatus": bson.M{"$in": models.EvaluableStatuses},
		"drawDate":   bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.M{"drawDate": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due raffles: %w", err)
	}
	defer cursor.Close(ctx)

	var raffles []*models.Raffle
	if err := cursor.All(ctx, &raffles); err != nil {
		return nil, fmt.Errorf("failed to decode due raffles: %w", err)
	}
	if raffles == nil {
		raffles = []*models.Raffle{}
	}
	return raffles, nil
}

// UpdatePrizeTerms rewrites the admin-owned prize terms and their derived fields
func (r *RaffleRepository) UpdatePrizeTerms(ctx context.Context, raffle *models.Raffle) error {
	raffle.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"prizeValue":      raffle.PrizeValue,
		"currency":        raffle.Currency,
		"prizeValueUSD":   raffle.PrizeValueUSD,
		"minimumDrawDate": raffle.MinimumDrawDate,
		"validityMonths":  raffle.ValidityMonths,
		"gamePrice":       raffle.GamePrice,
		"updatedAt":       raffle.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": raffle.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Cancel moves a raffle to the terminal cancelled state
func (r *RaffleRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"drawStatus": models.DrawStatusCancelled,
		"active":     false,
		"updatedAt":  at,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Extend pushes the draw date out, guarded on the status and draw date that were evaluated
func (r *RaffleRepository) Extend(ctx context.Context, id string, ext repositories.RaffleExtension) error {
	filter := bson.M{
		"_id":        id,
		"active":     true,
		"drawStatus": ext.ExpectedStatus,
		"drawDate":   ext.ExpectedDrawDate,
	}
	update := bson.M{"$set": bson.M{
		"drawDate":          ext.NewDrawDate,
		"lastExtensionDate": ext.ExtendedAt,
		"drawStatus":        models.DrawStatusExtended,
		"updatedAt":         ext.ExtendedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// RecordDraw consumes one prize unit with a compare-and-set on prizesRemaining. The raffle
// must still be active and evaluable; a status change in between (pending to eligible) does not matter.
func (r *RaffleRepository) RecordDraw(ctx context.Context, id string, upd repositories.RaffleDrawUpdate) (*repositories.RecordedDraw, error) {
	if upd.ExpectedRemaining <= 0 {
		return nil, repositories.ErrConflict
	}
	filter := bson.M{
		"_id":             id,
		"active":          true,
		"drawStatus":      bson.M{"$in": models.EvaluableStatuses},
		"prizesRemaining": upd.ExpectedRemaining,
	}
	remaining := upd.ExpectedRemaining - 1
	update := bson.M{
		"$set": bson.M{
			"prizesRemaining": remaining,
			"active":          remaining > 0,
			"drawStatus":      models.DrawStatusDrawn,
			"drawnAt":         upd.DrawnAt,
			"updatedAt":       upd.DrawnAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Raffle
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrConflict
		}
		return nil, err
	}

	after := before
	drawnAt := upd.DrawnAt
	after.PrizesRemaining = remaining
	after.Active = remaining > 0
	after.DrawStatus = models.DrawStatusDrawn
	after.DrawnAt = &drawnAt
	after.UpdatedAt = drawnAt
	return &repositories.RecordedDraw{
		Raffle:          &after,
		PreviousStatus:  before.DrawStatus,
		PreviousDrawnAt: before.DrawnAt,
	}, nil
}

// RestorePrizeUnit gives back a prize unit consumed by a draw that could not be completed.
// A raffle that moved on since the draw (cancelled, drawn again) is left untouched.
func (r *RaffleRepository) RestorePrizeUnit(ctx context.Context, id string, restore repositories.PrizeUnitRestore) error {
	filter := bson.M{
		"_id":             id,
		"drawStatus":      models.DrawStatusDrawn,
		"prizesRemaining": restore.ExpectedRemaining,
	}
	set := bson.M{
		"prizesRemaining": restore.ExpectedRemaining + 1,
		"active":          true,
		"drawStatus":      restore.Status,
		"updatedAt":       time.Now(),
	}
	update := bson.M{"$set": set}
	if restore.DrawnAt != nil {
		set["drawnAt"] = *restore.DrawnAt
	} else {
		update["$unset"] = bson.M{"drawnAt": ""}
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// ClaimSecretCode atomically marks a pool code as used. The filter rejects codes outside
// the pool and codes already consumed, so two concurrent claims of one code cannot both match.
func (r *RaffleRepository) ClaimSecretCode(ctx context.Context, id string, code string) error {
	filter := bson.M{
		"_id":             id,
		"secretCodes":     code,
		"usedSecretCodes": bson.M{"$ne": code},
	}
	update := bson.M{
		"$push": bson.M{"usedSecretCodes": code},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// ReleaseSecretCode returns a claimed code to the pool
func (r *RaffleRepository) ReleaseSecretCode(ctx context.Context, id string, code string) error {
	update := bson.M{
		"$pull": bson.M{"usedSecretCodes": code},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// AddSecretCodes appends codes to the pool, skipping ones already present
func (r *RaffleRepository) AddSecretCodes(ctx context.Context, id string, codes []string) (*models.Raffle, error) {
	update := bson.M{
		"$addToSet": bson.M{"secretCodes": bson.M{"$each": codes}},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raffle models.Raffle
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&raffle)
	if err != nil {
		return nil, translateErr(err)
	}
	return &raffle, nil
}

// IncrementTickets atomically adds an entry's tickets to the raffle's running totals
func (r *RaffleRepository) IncrementTickets(ctx context.Context, id string, tickets int) (*models.Raffle, error) {
	filter := bson.M{
		"_id":             id,
		"active":          true,
		"prizesRemaining": bson.M{"$gt": 0},
		"drawStatus":      bson.M{"$ne": models.DrawStatusCancelled},
	}
	update := bson.M{
		"$inc": bson.M{"totalTicketsCollected": tickets, "totalEntries": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raffle models.Raffle
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrConflict
		}
		return nil, err
	}
	return &raffle, nil
}

// MarkEligible promotes a pending or extended raffle once its ticket threshold is met
func (r *RaffleRepository) MarkEligible(ctx context.Context, id string) error {
	filter := bson.M{
		"_id":        id,
		"drawStatus": bson.M{"$in": []models.DrawStatus{models.DrawStatusPending, models.DrawStatusExtended}},
		"$expr":      bson.M{"$gte": bson.A{"$totalTicketsCollected", "$gamePrice"}},
	}
	update := bson.M{"$set": bson.M{
		"drawStatus": models.DrawStatusEligible,
		"updatedAt":  time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

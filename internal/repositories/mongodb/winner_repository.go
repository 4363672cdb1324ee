package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.WinnerRepository = (*WinnerRepository)(nil)

// WinnerRepository implements the repositories.WinnerRepository interface
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) *WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// Create creates a new winner
func (r *WinnerRepository) Create(ctx context.Context, winner *models.Winner) error {
	if winner.CreatedAt.IsZero() {
		winner.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, winner)
	return err
}

// FindByRaffleID finds the winners of a raffle, most recent first
func (r *WinnerRepository) FindByRaffleID(ctx context.Context, raffleID string) ([]*models.Winner, error) {
	return r.find(ctx, bson.M{"raffleId": raffleID})
}

// FindByUserID finds a user's wins, most recent first
func (r *WinnerRepository) FindByUserID(ctx context.Context, userID string) ([]*models.Winner, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *WinnerRepository) find(ctx context.Context, filter bson.M) ([]*models.Winner, error) {
	opts := options.Find().SetSort(bson.M{"drawnAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.Winner{}
	}
	return winners, nil
}

// MarkNotified flags a winner as notified
func (r *WinnerRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"notified": true, "notifiedAt": at}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

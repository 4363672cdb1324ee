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

var _ repositories.EntryRepository = (*EntryRepository)(nil)

// EntryRepository implements the repositories.EntryRepository interface.
// Entries are never updated; Delete only withdraws an entry that was never counted.
type EntryRepository struct {
	collection *mongo.Collection
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{
		collection: db.Collection("entries"),
	}
}

// Create appends an entry to the ledger
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// Delete removes an entry from the ledger
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindByRaffleID returns every entry of a raffle in insertion order
func (r *EntryRepository) FindByRaffleID(ctx context.Context, raffleID string) ([]*models.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"raffleId": raffleID}, opts)
}

// FindByUserID returns a user's most recent entries
func (r *EntryRepository) FindByUserID(ctx context.Context, userID string, limit int64) ([]*models.Entry, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func (r *EntryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Entry, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	return entries, nil
}

// CountByRaffleID counts the entries of a raffle
func (r *EntryRepository) CountByRaffleID(ctx context.Context, raffleID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"raffleId": raffleID})
}

// SumTicketsByRaffleID totals the tickets spent on a raffle straight from the ledger
func (r *EntryRepository) SumTicketsByRaffleID(ctx context.Context, raffleID string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"raffleId": raffleID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$ticketsUsed"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// CountParticipants counts distinct users with at least one entry in a raffle
func (r *EntryRepository) CountParticipants(ctx context.Context, raffleID string) (int, error) {
	users, err := r.collection.Distinct(ctx, "userId", bson.M{"raffleId": raffleID})
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

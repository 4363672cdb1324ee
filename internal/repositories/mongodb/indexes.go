package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the draw engine and ledger queries rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"raffles": {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "drawStatus", Value: 1}, {Key: "drawDate", Value: 1}}},
		},
		"entries": {
			{Keys: bson.D{{Key: "raffleId", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		"vouchers": {
			{Keys: bson.D{{Key: "voucherRef", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"winners": {
			{Keys: bson.D{{Key: "raffleId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

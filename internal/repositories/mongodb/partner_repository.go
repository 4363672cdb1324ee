package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.PartnerRepository = (*PartnerRepository)(nil)

// PartnerRepository implements the repositories.PartnerRepository interface
type PartnerRepository struct {
	collection *mongo.Collection
}

// NewPartnerRepository creates a new PartnerRepository
func NewPartnerRepository(db *mongo.Database) *PartnerRepository {
	return &PartnerRepository{
		collection: db.Collection("partners"),
	}
}

// Create inserts a partner
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, partner)
	return err
}

// FindByID finds a partner by ID
func (r *PartnerRepository) FindByID(ctx context.Context, id string) (*models.Partner, error) {
	var partner models.Partner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&partner)
	if err != nil {
		return nil, translateErr(err)
	}
	return &partner, nil
}

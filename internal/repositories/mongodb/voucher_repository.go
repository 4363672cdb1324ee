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

var _ repositories.VoucherRepository = (*VoucherRepository)(nil)

// VoucherRepository implements the repositories.VoucherRepository interface
type VoucherRepository struct {
	collection *mongo.Collection
}

// NewVoucherRepository creates a new VoucherRepository
func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{
		collection: db.Collection("vouchers"),
	}
}

// Create inserts a voucher. The unique index on voucherRef surfaces a reference
// collision as ErrConflict.
func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = time.Now()
	}
	voucher.UpdatedAt = voucher.CreatedAt
	_, err := r.collection.InsertOne(ctx, voucher)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrConflict
	}
	return err
}

// FindByID finds a voucher by ID
func (r *VoucherRepository) FindByID(ctx context.Context, id string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&voucher)
	if err != nil {
		return nil, translateErr(err)
	}
	return &voucher, nil
}

// FindByUserID lists a user's vouchers, newest first
func (r *VoucherRepository) FindByUserID(ctx context.Context, userID string) ([]*models.Voucher, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vouchers []*models.Voucher
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	if vouchers == nil {
		vouchers = []*models.Voucher{}
	}
	return vouchers, nil
}

// ExistsByReference reports whether a voucher reference is already taken
func (r *VoucherRepository) ExistsByReference(ctx context.Context, ref string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"voucherRef": ref}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a voucher. Only used to unwind a draw that failed after issuance.
func (r *VoucherRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

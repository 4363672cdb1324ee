package mongodb

import (
	"errors"

	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateErr maps driver sentinel errors onto repository errors
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

package repository

import (
	"context"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPriceCheckRepository implements the PriceCheckRepository interface
type MongoPriceCheckRepository struct {
	collection *mongo.Collection
}

// NewMongoPriceCheckRepository creates a new MongoDB price check repository
func NewMongoPriceCheckRepository(db *mongo.Database, logger logger.Logger) repository.PriceCheckRepository {
	collection := db.Collection("priceChecks")

	// Create indexes for better performance
	ctx := context.Background()

	requestIDIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "requestId", Value: 1},
			{Key: "checkedAt", Value: -1},
		},
	}

	cycleIndex := mongo.IndexModel{
		Keys: bson.M{"cycleId": 1},
	}

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		requestIDIndex,
		cycleIndex,
	}); err != nil {
		logger.Warn("Failed to create price check indexes", "error", err)
	}

	return &MongoPriceCheckRepository{
		collection: collection,
	}
}

// Save records one evaluation result
func (r *MongoPriceCheckRepository) Save(ctx context.Context, check *entity.PriceCheck) error {
	_, err := r.collection.InsertOne(ctx, check)
	return err
}

// FindByRequestID returns the most recent checks for a request
func (r *MongoPriceCheckRepository) FindByRequestID(ctx context.Context, requestID uint, limit int) ([]*entity.PriceCheck, error) {
	opts := options.Find().
		SetSort(bson.M{"checkedAt": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"requestId": requestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checks []*entity.PriceCheck
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

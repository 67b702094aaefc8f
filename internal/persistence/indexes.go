package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the indexes the schema relies on. Safe to run at
// every startup: CreateMany is a no-op for indexes that already exist.
func EnsureIndexes(ctx context.Context, m *Mongo, logger *zap.Logger) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		CollectionCategories: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		CollectionFeedback: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		CollectionComments: {
			{Keys: bson.D{{Key: "feedback", Value: 1}}},
		},
	}

	for collection, models := range specs {
		if _, err := m.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
		logger.Info("indexes ensured", zap.String("collection", collection), zap.Int("count", len(models)))
	}
	return nil
}

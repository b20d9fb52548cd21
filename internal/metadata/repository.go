package metadata

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Exists(ctx context.Context, fileName string) (bool, error)
	Upsert(ctx context.Context, record CompletionRecord) error
}

type MongoDBRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database, collectionName string) Repository {
	return &MongoDBRepository{
		collection: db.Collection(collectionName),
	}
}

func (r *MongoDBRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	filter := bson.M{"_id": fileName}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := r.collection.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up completion record: %w", err)
	}
	return true, nil
}

func (r *MongoDBRepository) Upsert(ctx context.Context, record CompletionRecord) error {
	filter := bson.M{"_id": record.FileName}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, record, opts); err != nil {
		return fmt.Errorf("failed to upsert completion record: %w", err)
	}
	return nil
}

package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureProcessedCollection creates the secondary indexes on the
// processed-files collection. The _id index (file name) already gives the
// uniqueness the pipeline relies on; these speed up operational queries.
func EnsureProcessedCollection(ctx context.Context, db *mongo.Database, collectionName string) error {
	collection := db.Collection(collectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "processed_at", Value: -1}},
			Options: options.Index().SetName("idx_" + collectionName + "_processed_at"),
		},
		{
			Keys:    bson.D{{Key: "file_path", Value: 1}},
			Options: options.Index().SetName("idx_" + collectionName + "_file_path"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}

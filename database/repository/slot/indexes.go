package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the slot queries rely on.
func (repo *MongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Overlap queries scan one provider/staff/day at a time.
			Keys: bson.D{
				{Key: "providerId", Value: 1},
				{Key: "staffId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start", Value: 1},
			},
		},
		{
			// Reconciliation scans by status + expiry.
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "holdExpiresAt", Value: 1},
			},
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}

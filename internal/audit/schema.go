package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EnsureIndexes creates idempotent indexes on the audit collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		collection string
		model      mongo.IndexModel
	}

	indexes := []idx{
		{
			collection: "auth_events",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "occurred_at", Value: -1}},
			},
		},
		{
			collection: "auth_events",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "remote_addr", Value: 1}},
			},
		},
		{
			collection: "policy_events",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "occurred_at", Value: -1}},
			},
		},
		{
			collection: "policy_events",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "account_id", Value: 1}},
			},
		},
		{
			collection: "sector_events",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "occurred_at", Value: -1}},
			},
		},
	}

	for _, i := range indexes {
		_, err := db.Collection(i.collection).Indexes().CreateOne(ctx, i.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", i.collection, err)
		}
	}

	return nil
}

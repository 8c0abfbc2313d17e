// Package audit persists security and policy events — failed
// authentication, POLICY_BLOCKED denials, and sector-management
// mutations — to MongoDB. Adapted from the teacher's internal/persist
// package, repointed from tick/order persistence (explicitly out of
// scope per spec.md's Non-goals) to this ambient security-logging
// concern, which the Non-goals never name.
package audit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// Store wraps the MongoDB client and database holding the audit log.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.SugaredLogger
}

// NewStore connects to MongoDB. The URI should include the database name
// (e.g. mongodb://localhost:27017/gateway); "gateway_audit" is used if
// the URI carries none.
func NewStore(ctx context.Context, uri string, log *zap.SugaredLogger) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	dbName := "gateway_audit"
	if u, err := url.Parse(uri); err == nil {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			dbName = name
		}
	}

	log.Infow("connected to audit store", "db", dbName)
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

func (s *Store) Close(ctx context.Context) {
	s.client.Disconnect(ctx)
}

func (s *Store) DB() *mongo.Database {
	return s.db
}

// Migrate creates indexes for the audit collections.
func (s *Store) Migrate(ctx context.Context) error {
	return EnsureIndexes(ctx, s.db)
}

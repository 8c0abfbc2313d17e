package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthEvent records a rejected authentication attempt against either wire
// surface (spec.md §4.4's AUTH_MISSING / AUTH_INVALID).
type AuthEvent struct {
	OccurredAt time.Time `bson:"occurred_at"`
	Surface    string    `bson:"surface"` // "http" or "rpc"
	RemoteAddr string    `bson:"remote_addr"`
	Reason     string    `bson:"reason"`
}

// PolicyEvent records a trading call the Policy Gate refused to forward to
// the adapter (spec.md §4.3).
type PolicyEvent struct {
	OccurredAt time.Time `bson:"occurred_at"`
	AccountID  string    `bson:"account_id"`
	Operation  string    `bson:"operation"`
	Mode       string    `bson:"mode"`
}

// SectorEvent records a sector-membership mutation (add/remove stock),
// the one mutating adapter call the spec exempts from gating.
type SectorEvent struct {
	OccurredAt time.Time `bson:"occurred_at"`
	Action     string    `bson:"action"` // "add" or "remove"
	Sector     string    `bson:"sector"`
	Code       string    `bson:"code"`
}

// RecordAuthFailure inserts an AuthEvent, best-effort — a failed write here
// must never block the caller's own failure response.
func (s *Store) RecordAuthFailure(ctx context.Context, surface, remoteAddr, reason string) {
	ev := AuthEvent{OccurredAt: time.Now(), Surface: surface, RemoteAddr: remoteAddr, Reason: reason}
	if _, err := s.db.Collection("auth_events").InsertOne(ctx, ev); err != nil {
		s.log.Warnw("failed to record auth event", "error", err)
	}
}

// RecordPolicyBlock inserts a PolicyEvent.
func (s *Store) RecordPolicyBlock(ctx context.Context, accountID, operation, mode string) {
	ev := PolicyEvent{OccurredAt: time.Now(), AccountID: accountID, Operation: operation, Mode: mode}
	if _, err := s.db.Collection("policy_events").InsertOne(ctx, ev); err != nil {
		s.log.Warnw("failed to record policy event", "error", err)
	}
}

// RecordSectorMutation inserts a SectorEvent.
func (s *Store) RecordSectorMutation(ctx context.Context, action, sector, code string) {
	ev := SectorEvent{OccurredAt: time.Now(), Action: action, Sector: sector, Code: code}
	if _, err := s.db.Collection("sector_events").InsertOne(ctx, ev); err != nil {
		s.log.Warnw("failed to record sector event", "error", err)
	}
}

// RunRetention periodically deletes audit events older than the retention
// window. Blocks until ctx is cancelled. retentionDays <= 0 disables it.
func RunRetention(ctx context.Context, store *Store, retentionDays int) {
	if retentionDays <= 0 {
		store.log.Infow("audit retention disabled (keep forever)")
		return
	}

	const interval = 1 * time.Hour
	store.log.Infow("audit retention enabled", "retention_days", retentionDays, "sweep_interval", interval)

	prune(ctx, store, retentionDays)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune(ctx, store, retentionDays)
		}
	}
}

func prune(ctx context.Context, store *Store, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	filter := bson.M{"occurred_at": bson.M{"$lt": cutoff}}

	for _, coll := range []string{"auth_events", "policy_events", "sector_events"} {
		result, err := store.db.Collection(coll).DeleteMany(ctx, filter)
		if err != nil {
			store.log.Warnw("audit retention prune failed", "collection", coll, "error", err)
			continue
		}
		if result.DeletedCount > 0 {
			store.log.Infow("audit retention pruned", "collection", coll, "deleted", result.DeletedCount)
		}
	}
}

// Package tradesession implements the Trading Session Registry (spec.md
// §4.2, §3): session ids, per-session connection state, and order
// records. In-memory only — a restart invalidates every session.
package tradesession

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/metrics"
)

// ID is an opaque, unguessable, non-reusable session identifier.
type ID string

// Session is the server-side handle for a live authenticated trading
// connection (spec.md §3).
type Session struct {
	ID          ID
	AccountID   string
	AccountType adapter.AccountType
	ConnectedAt time.Time

	mu       sync.RWMutex
	snapshot adapter.AccountSnapshot
	orders   map[string]adapter.Order
}

// AccountSnapshot returns the last-refreshed account snapshot.
func (s *Session) AccountSnapshot() adapter.AccountSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// RefreshSnapshot replaces the cached snapshot (called by get_account_info).
func (s *Session) RefreshSnapshot(snap adapter.AccountSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// RecordOrder stores/updates an order under this session.
func (s *Session) RecordOrder(o adapter.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = o
}

// Orders returns a shallow copy of the order map.
func (s *Session) Orders() []adapter.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]adapter.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

// Registry is the in-memory Session Registry. Guarded by a single mutex
// held only for map operations, per spec.md §5.
type Registry struct {
	mu       sync.RWMutex
	sessions map[ID]*Session
	ad       adapter.Adapter
}

func New(ad adapter.Adapter) *Registry {
	return &Registry{sessions: make(map[ID]*Session), ad: ad}
}

// Connect authenticates against the adapter and allocates a new session id.
// AUTH_FAILED from the adapter is surfaced verbatim.
func (r *Registry) Connect(ctx context.Context, accountID, password string, accountType adapter.AccountType) (ID, error) {
	snap, err := r.ad.Connect(ctx, accountID, password, accountType)
	if err != nil {
		return "", gwerrors.Wrap(gwerrors.UpstreamFailure, "connect failed", err)
	}

	id := ID(uuid.NewString())
	sess := &Session{
		ID: id, AccountID: accountID, AccountType: accountType,
		ConnectedAt: time.Now(), snapshot: snap, orders: make(map[string]adapter.Order),
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()
	metrics.TradeSessions.Inc()

	return id, nil
}

// Disconnect is idempotent.
func (r *Registry) Disconnect(ctx context.Context, id ID) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	metrics.TradeSessions.Dec()
	return r.ad.Disconnect(ctx, sess.AccountID)
}

// Lookup returns the session or FAILED_PRECONDITION (NOT_CONNECTED) for an
// unknown or disconnected id.
func (r *Registry) Lookup(id ID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, gwerrors.New(gwerrors.FailedPrecondition, "not connected")
	}
	return sess, nil
}

// IsConnected reports whether id names a live session.
func (r *Registry) IsConnected(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Count returns the number of live sessions (used by Lifecycle during
// shutdown bookkeeping and by tests).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DisconnectAll tears down every live session, best-effort, used during
// graceful shutdown.
func (r *Registry) DisconnectAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]ID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		_ = r.Disconnect(ctx, id)
	}
}

package subscription

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/metrics"
	"github.com/ndrandal/quant-gateway/internal/mode"
)

// Caps bounds the manager's behavior, loaded once from config.
type Caps struct {
	MaxSubs         int
	QueueDepth      int
	HeartbeatTimeout time.Duration
	FirehoseEnabled bool
}

// Manager owns the set of live subscriptions, the symbol index, and each
// subscription's bounded queue (spec.md §4.4 State). The guarded state is
// only the map/index bookkeeping — O(1) operations under mu; each queue is
// its own synchronization primitive and is never touched while mu is held.
type Manager struct {
	mu       sync.RWMutex
	subs     map[ID]*Subscription
	bySymbol map[adapter.SymbolCode]map[ID]bool
	firehose map[ID]bool

	caps Caps
	ad   adapter.Adapter
	m    mode.Mode
	log  *zap.SugaredLogger
}

// New builds a Subscription Manager bound to the given adapter and caps.
func New(ad adapter.Adapter, m mode.Mode, caps Caps, log *zap.SugaredLogger) *Manager {
	return &Manager{
		subs:     make(map[ID]*Subscription),
		bySymbol: make(map[adapter.SymbolCode]map[ID]bool),
		firehose: make(map[ID]bool),
		caps:     caps,
		ad:       ad,
		m:        m,
		log:      log,
	}
}

func touch(s *Subscription) {
	atomic.StoreInt64(&s.lastActivityNano, time.Now().UnixNano())
}

func lastActivity(s *Subscription) time.Time {
	return time.Unix(0, atomic.LoadInt64(&s.lastActivityNano))
}

func setActive(s *Subscription, v bool) {
	n := int32(0)
	if v {
		n = 1
	}
	atomic.StoreInt32(&s.active, n)
}

func isActive(s *Subscription) bool {
	return atomic.LoadInt32(&s.active) == 1
}

// Subscribe registers a per-symbol subscription (spec.md §4.4).
func (m *Manager) Subscribe(symbols []adapter.SymbolCode, adj adapter.Adjust) (ID, error) {
	clean := make([]adapter.SymbolCode, 0, len(symbols))
	for _, s := range symbols {
		t := strings.TrimSpace(s)
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return "", gwerrors.New(gwerrors.EmptySymbols, "symbols must not be empty or blank")
	}

	m.mu.Lock()
	if len(m.subs) >= m.caps.MaxSubs {
		m.mu.Unlock()
		return "", gwerrors.New(gwerrors.SubLimit, "subscription limit reached")
	}

	id := ID(uuid.NewString())
	sub := &Subscription{
		ID:        id,
		Symbols:   toSet(clean),
		Adjust:    adj,
		Kind:      KindPerSymbol,
		queue:     NewBoundedQueue[adapter.TickFrame](m.caps.QueueDepth),
		createdAt: time.Now(),
	}
	setActive(sub, true)
	touch(sub)

	m.subs[id] = sub
	for _, s := range clean {
		if m.bySymbol[s] == nil {
			m.bySymbol[s] = make(map[ID]bool)
		}
		m.bySymbol[s][id] = true
	}
	m.mu.Unlock()

	if m.m == mode.Mock {
		// MOCK never touches the adapter (spec.md I5); the simulation
		// adapter still generates frames, but via SubscribeSymbols on the
		// simulation instance itself is fine since Simulation *is* the
		// MOCK-mode adapter — no real/native call occurs either way.
	}

	if err := m.ad.SubscribeSymbols(clean, adj, m.dispatch); err != nil {
		m.rollback(id, clean)
		return "", gwerrors.Wrap(gwerrors.UpstreamFailure, "adapter subscribe failed", err)
	}

	metrics.ActiveSubscriptions.Inc()
	return id, nil
}

// SubscribeFirehose registers a firehose subscription that receives every
// inbound frame regardless of symbol.
func (m *Manager) SubscribeFirehose() (ID, error) {
	if !m.caps.FirehoseEnabled {
		return "", gwerrors.New(gwerrors.FailedPrecondition, "firehose disabled")
	}
	if m.m == mode.Mock {
		return "", gwerrors.New(gwerrors.FailedPrecondition, "firehose not supported in simulation mode")
	}

	m.mu.Lock()
	if len(m.subs) >= m.caps.MaxSubs {
		m.mu.Unlock()
		return "", gwerrors.New(gwerrors.SubLimit, "subscription limit reached")
	}

	id := ID(uuid.NewString())
	sub := &Subscription{
		ID:        id,
		Symbols:   map[adapter.SymbolCode]bool{},
		Kind:      KindFirehose,
		queue:     NewBoundedQueue[adapter.TickFrame](m.caps.QueueDepth),
		createdAt: time.Now(),
	}
	setActive(sub, true)
	touch(sub)

	m.subs[id] = sub
	m.firehose[id] = true
	m.mu.Unlock()

	if err := m.ad.SubscribeFirehose(nil, m.dispatch); err != nil {
		m.mu.Lock()
		delete(m.subs, id)
		delete(m.firehose, id)
		m.mu.Unlock()
		return "", gwerrors.Wrap(gwerrors.UpstreamFailure, "adapter firehose subscribe failed", err)
	}

	metrics.ActiveSubscriptions.Inc()
	return id, nil
}

func (m *Manager) rollback(id ID, symbols []adapter.SymbolCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
	for _, s := range symbols {
		if set, ok := m.bySymbol[s]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(m.bySymbol, s)
			}
		}
	}
}

// Unsubscribe idempotently tears down a subscription (spec.md §4.4, I2).
func (m *Manager) Unsubscribe(id ID) error {
	m.mu.Lock()
	sub, ok := m.subs[id]
	if !ok {
		m.mu.Unlock()
		return nil // idempotent: already gone
	}
	if !isActive(sub) {
		m.mu.Unlock()
		return nil
	}
	setActive(sub, false)
	delete(m.subs, id)

	var orphaned []adapter.SymbolCode
	for s := range sub.Symbols {
		set := m.bySymbol[s]
		delete(set, id)
		if len(set) == 0 {
			delete(m.bySymbol, s)
			orphaned = append(orphaned, s)
		}
	}
	wasFirehose := m.firehose[id]
	delete(m.firehose, id)
	m.mu.Unlock()

	sub.queue.Close()
	metrics.ActiveSubscriptions.Dec()
	metrics.QueueDepth.DeleteLabelValues(string(id))

	if wasFirehose {
		return m.ad.Unsubscribe("*")
	}
	for _, s := range orphaned {
		if err := m.ad.Unsubscribe(s); err != nil {
			m.log.Warnw("adapter unsubscribe failed", "symbol", s, "error", err)
		}
	}
	return nil
}

// Describe returns a point-in-time snapshot of one subscription.
func (m *Manager) Describe(id ID) (Descriptor, error) {
	m.mu.RLock()
	sub, ok := m.subs[id]
	m.mu.RUnlock()
	if !ok {
		return Descriptor{}, gwerrors.New(gwerrors.NotFound, "unknown subscription")
	}
	return describe(sub), nil
}

// List returns descriptors for every live subscription (shallow copy under
// the lock, per spec.md §5).
func (m *Manager) List() []Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Descriptor, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, describe(sub))
	}
	return out
}

func describe(sub *Subscription) Descriptor {
	syms := make([]adapter.SymbolCode, 0, len(sub.Symbols))
	for s := range sub.Symbols {
		syms = append(syms, s)
	}
	return Descriptor{
		ID: sub.ID, Symbols: syms, Adjust: sub.Adjust, Kind: sub.Kind,
		Active: isActive(sub), CreatedAt: sub.createdAt, LastActivityAt: lastActivity(sub),
		QueueDepth: sub.queue.Len(), Dropped: sub.queue.Dropped(),
	}
}

// Count returns the number of live subscriptions (for P1/P3 tests and the
// SUB_LIMIT check surface).
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// SweepIdle removes subscriptions whose last activity exceeds the
// heartbeat timeout (spec.md §4.4 sweep_idle). Never fires mid-frame: it
// only ever calls the same Unsubscribe path a client-initiated unsubscribe
// would.
func (m *Manager) SweepIdle() {
	if m.caps.HeartbeatTimeout <= 0 {
		return
	}
	m.mu.RLock()
	var stale []ID
	now := time.Now()
	for id, sub := range m.subs {
		if now.Sub(lastActivity(sub)) > m.caps.HeartbeatTimeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.log.Infow("idle sweep: unsubscribing", "subscription_id", id)
		_ = m.Unsubscribe(id)
	}
}

// dispatch is invoked on the adapter's callback thread for every inbound
// frame. It looks up the union of by_symbol[symbol] and firehose, then
// performs one non-blocking, drop-oldest enqueue per matching
// subscription (spec.md §4.4 Cross-thread delivery, I1).
func (m *Manager) dispatch(frame adapter.TickFrame) {
	m.mu.RLock()
	var targets []*Subscription
	for id := range m.bySymbol[frame.Symbol] {
		if sub, ok := m.subs[id]; ok {
			targets = append(targets, sub)
		}
	}
	for id := range m.firehose {
		if sub, ok := m.subs[id]; ok {
			targets = append(targets, sub)
		}
	}
	m.mu.RUnlock()

	metrics.FramesDispatched.Inc()
	for _, sub := range targets {
		if !isActive(sub) {
			continue
		}
		before := sub.queue.Dropped()
		sub.queue.Push(frame)
		metrics.QueueDepth.WithLabelValues(string(sub.ID)).Set(float64(sub.queue.Len()))
		if sub.queue.Dropped() > before {
			metrics.FramesDropped.WithLabelValues(string(sub.ID)).Inc()
			m.log.Warnw("queue full, dropped oldest frame", "subscription_id", sub.ID, "symbol", frame.Symbol)
		}
	}
}

// Stream returns an async consumer for the given subscription id. A
// returned (frame, true) pair also touches last_activity_at; (zero, false)
// signals the subscription is no longer active or ctx was cancelled.
// Starting a second concurrent consumer on the same id is undefined per
// spec.md §4.4 Consumer contract.
func (m *Manager) Stream(id ID) (*Stream, error) {
	m.mu.RLock()
	sub, ok := m.subs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, gwerrors.New(gwerrors.NotFound, "unknown subscription")
	}
	return &Stream{sub: sub}, nil
}

func toSet(symbols []adapter.SymbolCode) map[adapter.SymbolCode]bool {
	set := make(map[adapter.SymbolCode]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}


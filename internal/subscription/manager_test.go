package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/mode"
)

// fakeAdapter embeds a nil adapter.Adapter so it satisfies the full
// interface; only the streaming methods the Subscription Manager actually
// calls are overridden.
type fakeAdapter struct {
	adapter.Adapter
	mu          sync.Mutex
	subscribed  map[adapter.SymbolCode]adapter.OnFrame
	unsubscribed []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{subscribed: make(map[adapter.SymbolCode]adapter.OnFrame)}
}

func (f *fakeAdapter) SubscribeSymbols(symbols []adapter.SymbolCode, adj adapter.Adjust, cb adapter.OnFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range symbols {
		f.subscribed[s] = cb
	}
	return nil
}

func (f *fakeAdapter) SubscribeFirehose(markets []string, cb adapter.OnFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed["*"] = cb
	return nil
}

func (f *fakeAdapter) Unsubscribe(symbolOrStar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, symbolOrStar)
	return nil
}

func (f *fakeAdapter) push(symbol adapter.SymbolCode, price float64) {
	f.mu.Lock()
	cb, ok := f.subscribed[symbol]
	if !ok {
		cb, ok = f.subscribed["*"]
	}
	f.mu.Unlock()
	if ok {
		cb(adapter.TickFrame{Symbol: symbol, Price: price, Timestamp: time.Now()})
	}
}

func testManager(t *testing.T, caps Caps) (*Manager, *fakeAdapter) {
	t.Helper()
	fa := newFakeAdapter()
	logger := zap.NewNop().Sugar()
	return New(fa, mode.Dev, caps, logger), fa
}

// P1: subscribe/unsubscribe never exceeds max_subs; attempts past the cap
// fail with SUB_LIMIT and leave state unchanged.
func TestSubscribeCapEnforced(t *testing.T) {
	mgr, _ := testManager(t, Caps{MaxSubs: 3, QueueDepth: 8})

	var ids []ID
	for i := 0; i < 3; i++ {
		id, err := mgr.Subscribe([]adapter.SymbolCode{"SYM" + string(rune('A'+i))}, adapter.AdjustNone)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, 3, mgr.Count())

	_, err := mgr.Subscribe([]adapter.SymbolCode{"SYMZ"}, adapter.AdjustNone)
	require.Error(t, err)
	assert.Equal(t, gwerrors.SubLimit, gwerrors.KindOf(err))
	assert.Equal(t, 3, mgr.Count())

	require.NoError(t, mgr.Unsubscribe(ids[0]))
	assert.Equal(t, 2, mgr.Count())

	_, err = mgr.Subscribe([]adapter.SymbolCode{"SYMZ"}, adapter.AdjustNone)
	require.NoError(t, err)
	assert.Equal(t, 3, mgr.Count())
}

func TestSubscribeRejectsEmptySymbols(t *testing.T) {
	mgr, _ := testManager(t, Caps{MaxSubs: 10, QueueDepth: 8})
	_, err := mgr.Subscribe(nil, adapter.AdjustNone)
	require.Error(t, err)
	assert.Equal(t, gwerrors.EmptySymbols, gwerrors.KindOf(err))

	_, err = mgr.Subscribe([]adapter.SymbolCode{"   "}, adapter.AdjustNone)
	require.Error(t, err)
	assert.Equal(t, gwerrors.EmptySymbols, gwerrors.KindOf(err))
}

// P2: after Unsubscribe(id) returns, no frame for that id is ever
// delivered to its iterator, even for frames the adapter produced just
// before the call.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	mgr, fa := testManager(t, Caps{MaxSubs: 10, QueueDepth: 8})
	id, err := mgr.Subscribe([]adapter.SymbolCode{"AAA"}, adapter.AdjustNone)
	require.NoError(t, err)

	stream, err := mgr.Stream(id)
	require.NoError(t, err)

	fa.push("AAA", 10)
	require.NoError(t, mgr.Unsubscribe(id))
	fa.push("AAA", 11) // produced after unsubscribe; must never arrive

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, ok := stream.Next(ctx)
	assert.False(t, ok, "stream must complete once inactive, delivering nothing further")
}

// P4: a slow consumer that never drains reaches at most queue_depth items;
// the drop counter equals the excess pushes.
func TestQueueDropOldestBoundsDepth(t *testing.T) {
	mgr, fa := testManager(t, Caps{MaxSubs: 10, QueueDepth: 4})
	id, err := mgr.Subscribe([]adapter.SymbolCode{"BBB"}, adapter.AdjustNone)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		fa.push("BBB", float64(i))
	}

	desc, err := mgr.Describe(id)
	require.NoError(t, err)
	assert.LessOrEqual(t, desc.QueueDepth, 4)
	assert.Equal(t, uint64(6), desc.Dropped)
}

// P3: N concurrent subscriptions on the same symbol each observe frames in
// the order the adapter delivered them (reordering forbidden, loss via
// drop-oldest permitted).
func TestFanOutPreservesPerSubscriberOrder(t *testing.T) {
	mgr, fa := testManager(t, Caps{MaxSubs: 10, QueueDepth: 64})

	const n = 4
	ids := make([]ID, n)
	for i := range ids {
		id, err := mgr.Subscribe([]adapter.SymbolCode{"CCC"}, adapter.AdjustNone)
		require.NoError(t, err)
		ids[i] = id
	}

	const k = 20
	for i := 0; i < k; i++ {
		fa.push("CCC", float64(i))
	}

	for _, id := range ids {
		stream, err := mgr.Stream(id)
		require.NoError(t, err)
		last := -1.0
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		for {
			frame, ok := stream.Next(ctx)
			if !ok {
				break
			}
			assert.Greater(t, frame.Price, last)
			last = frame.Price
		}
		cancel()
	}
}

func TestFirehoseDisabledWhenCapOff(t *testing.T) {
	mgr, _ := testManager(t, Caps{MaxSubs: 10, QueueDepth: 8, FirehoseEnabled: false})
	_, err := mgr.SubscribeFirehose()
	require.Error(t, err)
	assert.Equal(t, gwerrors.FailedPrecondition, gwerrors.KindOf(err))
}

func TestFirehoseRefusedInMock(t *testing.T) {
	fa := newFakeAdapter()
	mgr := New(fa, mode.Mock, Caps{MaxSubs: 10, QueueDepth: 8, FirehoseEnabled: true}, zap.NewNop().Sugar())
	_, err := mgr.SubscribeFirehose()
	require.Error(t, err)
	assert.Equal(t, gwerrors.FailedPrecondition, gwerrors.KindOf(err))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	mgr, _ := testManager(t, Caps{MaxSubs: 10, QueueDepth: 8})
	id, err := mgr.Subscribe([]adapter.SymbolCode{"DDD"}, adapter.AdjustNone)
	require.NoError(t, err)
	require.NoError(t, mgr.Unsubscribe(id))
	require.NoError(t, mgr.Unsubscribe(id))
}

func TestSweepIdleRemovesStaleSubscriptions(t *testing.T) {
	mgr, _ := testManager(t, Caps{MaxSubs: 10, QueueDepth: 8, HeartbeatTimeout: 10 * time.Millisecond})
	id, err := mgr.Subscribe([]adapter.SymbolCode{"EEE"}, adapter.AdjustNone)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	mgr.SweepIdle()

	_, err = mgr.Describe(id)
	require.Error(t, err)
	assert.Equal(t, gwerrors.NotFound, gwerrors.KindOf(err))
}

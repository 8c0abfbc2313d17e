// Package subscription implements the Subscription Manager (spec.md §4.4):
// lifecycle, the symbol→subscribers index, bounded per-subscriber queues,
// and the bridge between the adapter's callback thread and the server's
// async push loops.
//
// This is an adaptation of the teacher's internal/session Manager/Client
// fan-out (symbol-keyed client map, per-client bounded send buffer) split
// into its two spec-mandated halves: this package owns subscriptions,
// the symbol index and the queues; internal/streamendpoint owns the
// socket each subscription is (optionally) bound to.
package subscription

import (
	"time"

	"github.com/ndrandal/quant-gateway/internal/adapter"
)

// ID is an opaque, server-generated subscription identifier.
type ID string

// Kind distinguishes a per-symbol subscription from a firehose one.
type Kind int

const (
	KindPerSymbol Kind = iota
	KindFirehose
)

// Subscription is the server-side handle described in spec.md §3.
type Subscription struct {
	ID      ID
	Symbols map[adapter.SymbolCode]bool
	Adjust  adapter.Adjust
	Kind    Kind

	queue *BoundedQueue[adapter.TickFrame]

	createdAt time.Time
	// lastActivityNano is read by the idle sweeper and written by the
	// streaming endpoint on every yield; both happen from different
	// goroutines so it is accessed only via atomic helpers on Manager.
	lastActivityNano int64
	active           int32 // 0/1, accessed via atomic helpers on Manager
}

// Descriptor is the read-only introspection view returned by Describe/List.
type Descriptor struct {
	ID             ID
	Symbols        []adapter.SymbolCode
	Adjust         adapter.Adjust
	Kind           Kind
	Active         bool
	CreatedAt      time.Time
	LastActivityAt time.Time
	QueueDepth     int
	Dropped        uint64
}

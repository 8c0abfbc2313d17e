package subscription

import (
	"context"

	"github.com/ndrandal/quant-gateway/internal/adapter"
)

// Stream is the single-consumer async iterator over one subscription's
// queue (spec.md §4.4 Consumer contract). It completes once the
// subscription is no longer active.
type Stream struct {
	sub *Subscription
}

// Next blocks for the next frame, touching last_activity_at on every
// yield. Returns (frame, true) or (zero, false) when the subscription has
// gone inactive or ctx is done.
func (s *Stream) Next(ctx context.Context) (adapter.TickFrame, bool) {
	if !isActive(s.sub) {
		var zero adapter.TickFrame
		return zero, false
	}
	frame, ok := s.sub.queue.Next(ctx)
	if !ok {
		var zero adapter.TickFrame
		return zero, false
	}
	touch(s.sub)
	return frame, true
}

// ID returns the bound subscription's id.
func (s *Stream) ID() ID { return s.sub.ID }

// Package policy implements the single decision point that converts
// run-mode + config into a boolean permission for mutating trading calls
// (spec.md §4.3). The decision lives exactly once: every caller that needs
// to know whether a trading call may reach the adapter goes through Allow.
package policy

import (
	"github.com/ndrandal/quant-gateway/internal/mode"
)

// Op identifies the kind of call being gated.
type Op int

const (
	// OpMutatingTrade covers order submission and cancellation.
	OpMutatingTrade Op = iota
	// OpFirehose covers firehose subscription, which is a read but is
	// refused in MOCK mode per spec.md §4.4.
	OpFirehose
)

// Gate is a pure function of (op, mode, allowRealTrading) — no state, no
// side effects, safe to call from any goroutine without synchronization.
type Gate struct{}

func New() Gate { return Gate{} }

// Allow reports whether op may proceed given the run mode and the
// allow_real_trading config flag.
func (Gate) Allow(op Op, m mode.Mode, allowRealTrading bool) bool {
	switch op {
	case OpMutatingTrade:
		return m == mode.Prod && allowRealTrading
	case OpFirehose:
		return m != mode.Mock
	default:
		return false
	}
}

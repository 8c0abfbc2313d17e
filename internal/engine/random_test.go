package engine

import "testing"

// The MOCK adapter seeds one RNG per Simulation (spec.md §9's deterministic
// test-dependency requirement); two simulations seeded identically must
// reproduce the identical tick stream.
func TestRNGDeterministic(t *testing.T) {
	r1, r2 := NewRNG(42), NewRNG(42)
	for i := 0; i < 1000; i++ {
		if r1.Uint32() != r2.Uint32() {
			t.Fatalf("determinism broken at iteration %d", i)
		}
	}
}

func TestRNGDistinctSeedsDiverge(t *testing.T) {
	r1, r2 := NewRNG(42), NewRNG(43)
	same := 0
	for i := 0; i < 100; i++ {
		if r1.Uint32() == r2.Uint32() {
			same++
		}
	}
	if same > 5 {
		t.Fatalf("different seeds produced %d/100 identical values", same)
	}
}

func TestRNGFloat64Bounds(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 10000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64() = %f, out of [0, 1)", v)
		}
	}
}

func TestRNGIntRangeBounds(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 1000; i++ {
		if v := r.IntRange(5, 15); v < 5 || v > 15 {
			t.Fatalf("IntRange(5,15) = %d, out of range", v)
		}
	}
}

// WeightedPick backs the order-book simulator's action mix (engine used by
// orderbook.Simulator.Step); it must respect zero-weight entries.
func TestRNGWeightedPickSkipsZeroWeight(t *testing.T) {
	r := NewRNG(1)
	weights := []float64{0, 1, 0}
	for i := 0; i < 200; i++ {
		if idx := r.WeightedPick(weights); idx != 1 {
			t.Fatalf("WeightedPick chose index %d, want 1 (only nonzero weight)", idx)
		}
	}
}

// StateBytes/RestoreStateBytes round-trip: a Simulation doesn't use this
// today, but the Gaussian spare-value reset on restore is a real invariant
// restoration depends on if deterministic replay is ever added.
func TestRNGStateRoundTrip(t *testing.T) {
	r := NewRNG(99)
	_ = r.Uint64()
	saved := r.StateBytes()

	restored := NewRNG(1)
	restored.RestoreStateBytes(saved)

	want, got := r.Uint64(), restored.Uint64()
	if want != got {
		t.Fatalf("restored RNG diverged: want %d, got %d", want, got)
	}
}

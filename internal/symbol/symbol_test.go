package symbol

import "testing"

// AllSymbols is the gateway's synthetic 30-symbol universe (spec.md §4.1's
// market_data/instrument_info catalogue draws from it exclusively — there
// is no upstream exchange to query).

func TestAllSymbolsCount(t *testing.T) {
	syms := AllSymbols()
	if len(syms) != 30 {
		t.Fatalf("expected 30 symbols, got %d", len(syms))
	}
}

func TestLocateCodesAndTickersUnique(t *testing.T) {
	locates := make(map[uint16]bool)
	tickers := make(map[string]bool)
	for _, s := range AllSymbols() {
		if locates[s.LocateCode] {
			t.Fatalf("duplicate locate code %d for %s", s.LocateCode, s.Ticker)
		}
		locates[s.LocateCode] = true
		if tickers[s.Ticker] {
			t.Fatalf("duplicate ticker %s", s.Ticker)
		}
		tickers[s.Ticker] = true
	}
}

// InstrumentInfo (adapter.Simulation) projects LotSize/ListedDate straight
// off the Symbol table now instead of a single hardcoded constant, so every
// entry must actually carry usable values.
func TestLotSizeAndListedDatePopulated(t *testing.T) {
	for _, s := range AllSymbols() {
		if s.LotSize <= 0 {
			t.Fatalf("%s has non-positive lot size %d", s.Ticker, s.LotSize)
		}
		if len(s.ListedDate) != 8 {
			t.Fatalf("%s listed date %q not in YYYYMMDD form", s.Ticker, s.ListedDate)
		}
	}
}

func TestByTickerAndByLocateLookup(t *testing.T) {
	byTicker := ByTicker()
	s, ok := byTicker["NEXO"]
	if !ok || s.LocateCode != 1 {
		t.Fatalf("ByTicker[NEXO] = %+v, ok=%v", s, ok)
	}
	if _, ok := byTicker["ZZZZ"]; ok {
		t.Fatal("expected ZZZZ to be missing from ByTicker")
	}

	byLocate := ByLocate()
	s, ok = byLocate[1]
	if !ok || s.Ticker != "NEXO" {
		t.Fatalf("ByLocate[1] = %+v, ok=%v", s, ok)
	}
	if _, ok := byLocate[999]; ok {
		t.Fatal("expected locate 999 to be missing from ByLocate")
	}
}

func TestSymbolsBySectorCounts(t *testing.T) {
	m := SymbolsBySector()
	expected := map[Sector]int{
		SectorTech: 6, SectorFinance: 5, SectorHealthcare: 4, SectorEnergy: 4,
		SectorConsumer: 4, SectorIndustrial: 4, SectorStress: 1, SectorETF: 2,
	}
	if len(Sectors()) != len(expected) {
		t.Fatalf("expected %d sectors, got %d", len(expected), len(Sectors()))
	}
	for sec, want := range expected {
		if got := len(m[sec]); got != want {
			t.Errorf("sector %s: expected %d symbols, got %d", sec, want, got)
		}
	}
}

// BLITZ is the only stress symbol, and the one engine.StressController's
// variable cadence is meant to apply to (spec.md's stress-feed scenario).
func TestBLITZIsTheOnlyStressSymbol(t *testing.T) {
	blitz, ok := ByTicker()["BLITZ"]
	if !ok || !blitz.IsStress || blitz.Sector != SectorStress {
		t.Fatalf("BLITZ = %+v, ok=%v", blitz, ok)
	}
	for _, s := range AllSymbols() {
		if s.Ticker != "BLITZ" && s.IsStress {
			t.Fatalf("%s should not be marked as stress", s.Ticker)
		}
	}
}

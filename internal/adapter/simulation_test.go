package adapter

import (
	"context"
	"testing"
	"time"
)

// L2Order/L2Transaction project the order-book simulator's ITCH event
// stream onto the gateway's own row shapes (spec.md §4.1's l2_order /
// l2_transaction catalogue entries), not the teacher's raw ITCH frames.
func TestL2OrderProjectsAddEvents(t *testing.T) {
	sim := NewSimulation(1)
	rows, err := sim.L2Order(context.Background(), []SymbolCode{"NEXO"}, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("L2Order: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one L2Order row from the seeded book")
	}
	for _, r := range rows {
		if r.Side != "BUY" && r.Side != "SELL" {
			t.Fatalf("unexpected side %q", r.Side)
		}
		if r.Volume <= 0 {
			t.Fatalf("expected positive volume, got %d", r.Volume)
		}
	}
}

func TestL2TransactionProjectsTrades(t *testing.T) {
	sim := NewSimulation(2)
	rows, err := sim.L2Transaction(context.Background(), []SymbolCode{"NEXO", "QBIT"}, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("L2Transaction: %v", err)
	}
	for _, r := range rows {
		if r.BuyOrderRef == 0 && r.SellOrderRef == 0 {
			t.Fatal("trade row must attribute an aggressor order ref")
		}
	}
}

// L2Quote must read the real multi-level order-book depth (spec.md §4.1),
// not a single synthetic best-bid/best-ask pair.
func TestL2QuoteReturnsMultipleLevels(t *testing.T) {
	sim := NewSimulation(8)
	rows, err := sim.L2Quote(context.Background(), []SymbolCode{"NEXO"}, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("L2Quote: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0].Bids) == 0 || len(rows[0].Asks) == 0 {
		t.Fatal("expected a seeded multi-level ladder on both sides")
	}
	if rows[0].Bids[0][0] <= rows[0].Bids[len(rows[0].Bids)-1][0] {
		t.Fatal("bid levels must be sorted descending by price")
	}
	if rows[0].Asks[0][0] >= rows[0].Asks[len(rows[0].Asks)-1][0] {
		t.Fatal("ask levels must be sorted ascending by price")
	}
}

// StartDownload for the two ITCH-shaped kinds must actually put the
// simulated book activity through the wire encoders, not a placeholder.
func TestStartDownloadEncodesL2Binary(t *testing.T) {
	sim := NewSimulation(3)
	task, err := sim.StartDownload(context.Background(), "l2_order", nil)
	if err != nil {
		t.Fatalf("StartDownload: %v", err)
	}
	if task.ByteSize <= 0 {
		t.Fatal("expected a positive ITCH-encoded byte size")
	}
	if task.FilePath[len(task.FilePath)-5:] != ".itch" {
		t.Fatalf("expected .itch extension, got %q", task.FilePath)
	}
}

func TestStartDownloadEncodesL2JSON(t *testing.T) {
	sim := NewSimulation(4)
	task, err := sim.StartDownload(context.Background(), "l2_transaction", map[string]string{"format": "json"})
	if err != nil {
		t.Fatalf("StartDownload: %v", err)
	}
	if task.ByteSize <= 0 {
		t.Fatal("expected a positive JSON-encoded byte size")
	}
	if task.FilePath[len(task.FilePath)-5:] != ".json" {
		t.Fatalf("expected .json extension, got %q", task.FilePath)
	}
}

func TestStartDownloadOtherKindsUnaffected(t *testing.T) {
	sim := NewSimulation(5)
	task, err := sim.StartDownload(context.Background(), "market_data", nil)
	if err != nil {
		t.Fatalf("StartDownload: %v", err)
	}
	if task.ByteSize != 0 {
		t.Fatalf("non-L2 download kinds must not carry an ITCH byte size, got %d", task.ByteSize)
	}
}

// Sector-management mutations (spec.md §4.1) must actually change the
// simulation's sector index, since they feed both SectorList/Sector and
// the audit trail upstream in dataservice.
func TestSectorMutationsRoundTrip(t *testing.T) {
	sim := NewSimulation(6)
	ctx := context.Background()

	if err := sim.AddStockToSector(ctx, "Tech", "ZEBR"); err != nil {
		t.Fatalf("AddStockToSector: %v", err)
	}
	list, err := sim.StockListInSector(ctx, "Tech")
	if err != nil {
		t.Fatalf("StockListInSector: %v", err)
	}
	found := false
	for _, code := range list {
		if code == "ZEBR" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ZEBR to appear in Tech sector after AddStockToSector")
	}

	if err := sim.RemoveStockFromSector(ctx, "Tech", "ZEBR"); err != nil {
		t.Fatalf("RemoveStockFromSector: %v", err)
	}
	list, err = sim.StockListInSector(ctx, "Tech")
	if err != nil {
		t.Fatalf("StockListInSector: %v", err)
	}
	for _, code := range list {
		if code == "ZEBR" {
			t.Fatal("ZEBR should have been removed from Tech sector")
		}
	}
}

// The callback thread's cadence is driven by the stress controller rather
// than a fixed interval: a fresh simulation must not be nil on that field,
// and repeated Tick() calls must keep returning a positive interval.
func TestStressControllerDrivesCadence(t *testing.T) {
	sim := NewSimulation(7)
	if sim.stress == nil {
		t.Fatal("Simulation must own a stress controller")
	}
	for i := 0; i < 50; i++ {
		interval, numActions := sim.stress.Tick()
		if interval <= 0 {
			t.Fatalf("Tick() returned non-positive interval %v", interval)
		}
		if numActions <= 0 {
			t.Fatalf("Tick() returned non-positive numActions %d", numActions)
		}
	}
}

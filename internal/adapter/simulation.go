package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ndrandal/quant-gateway/internal/engine"
	"github.com/ndrandal/quant-gateway/internal/itch"
	"github.com/ndrandal/quant-gateway/internal/orderbook"
	"github.com/ndrandal/quant-gateway/internal/symbol"
)

// Simulation generates plausible tick streams and reference data on demand
// and accepts orders instantly — no native dependency, viable on any
// developer box per spec.md §9. Price motion is grounded on the teacher's
// engine.MarketEngine (sector-correlated GBM).
type Simulation struct {
	mu       sync.Mutex
	rng      *engine.RNG
	market   *engine.MarketEngine
	syms     []symbol.Symbol
	byCode   map[SymbolCode]*symbol.Symbol
	sectors  map[string][]string

	stress    *engine.StressController

	subCb     OnFrame
	subSyms   map[SymbolCode]bool
	firehose  bool
	stopCh    chan struct{}
	running   bool

	accounts map[string]*simAccount
	orderSeq int64
	downloads map[string]DownloadTask

	books map[SymbolCode]*orderbook.Simulator
}

type simAccount struct {
	snapshot AccountSnapshot
	orders   map[string]Order
	trades   []Trade
}

// NewSimulation builds a Simulation adapter seeded with the gateway's
// synthetic 30-symbol universe (teacher's symbol.AllSymbols()).
func NewSimulation(seed int64) *Simulation {
	syms := symbol.AllSymbols()
	rng := engine.NewRNG(seed)
	market := engine.NewMarketEngine(rng, syms)

	byCode := make(map[SymbolCode]*symbol.Symbol, len(syms))
	sectors := make(map[string][]string)
	for i := range syms {
		s := &syms[i]
		byCode[s.Ticker] = s
		sectors[string(s.Sector)] = append(sectors[string(s.Sector)], s.Ticker)
	}

	return &Simulation{
		rng:       rng,
		market:    market,
		syms:      syms,
		byCode:    byCode,
		sectors:   sectors,
		stress:    engine.NewStressController(rng, engine.DefaultStressConfig()),
		subSyms:   make(map[SymbolCode]bool),
		accounts:  make(map[string]*simAccount),
		downloads: make(map[string]DownloadTask),
		books:     make(map[SymbolCode]*orderbook.Simulator),
	}
}

func (s *Simulation) resolve(code SymbolCode) (*symbol.Symbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym, ok := s.byCode[code]
	return sym, ok
}

// --- read-only data ---

func (s *Simulation) MarketData(ctx context.Context, symbols []SymbolCode, start, end string, period string, fields []string, adj Adjust) ([]Bar, error) {
	var out []Bar
	for _, code := range symbols {
		sym, ok := s.resolve(code)
		if !ok {
			continue
		}
		price := s.market.Price(sym.LocateCode)
		out = append(out, Bar{
			Symbol: code, Date: start, Open: price * 0.995, High: price * 1.01,
			Low: price * 0.99, Close: price, Volume: 100000, Amount: price * 100000,
			Period: period, AdjustKnd: adj,
		})
	}
	return out, nil
}

func (s *Simulation) Financial(ctx context.Context, symbols []SymbolCode, tables []string, start, end string) ([]FinancialTable, error) {
	var out []FinancialTable
	for _, code := range symbols {
		for _, t := range tables {
			out = append(out, FinancialTable{Symbol: code, Table: t, Rows: []map[string]any{
				{"period": end, "revenue": 1_000_000.0, "net_income": 120_000.0},
			}})
		}
	}
	return out, nil
}

func (s *Simulation) SectorList(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sectors))
	for name := range s.sectors {
		out = append(out, name)
	}
	return out, nil
}

func (s *Simulation) StockListInSector(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.sectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown sector %q", name)
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (s *Simulation) IndexWeight(ctx context.Context, code string, date string) ([]IndexWeight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IndexWeight, 0, len(s.syms))
	n := float64(len(s.syms))
	for _, sym := range s.syms {
		out = append(out, IndexWeight{StockCode: sym.Ticker, Weight: 1 / n})
	}
	return out, nil
}

func (s *Simulation) TradingCalendar(ctx context.Context, year int) (TradingCalendar, error) {
	cal := TradingCalendar{Year: year}
	d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	for d.Year() == year {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			cal.TradingDates = append(cal.TradingDates, d.Format("20060102"))
		}
		d = d.AddDate(0, 0, 1)
	}
	return cal, nil
}

func (s *Simulation) InstrumentInfo(ctx context.Context, code string) (Instrument, error) {
	sym, ok := s.resolve(code)
	if !ok {
		return Instrument{}, fmt.Errorf("unknown instrument %q", code)
	}
	return Instrument{
		Code: sym.Ticker, Name: sym.Name, Market: "SIM",
		LotSize: sym.LotSize, TickSize: sym.TickSize, ListedDate: sym.ListedDate,
	}, nil
}

func (s *Simulation) Holidays(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func (s *Simulation) PeriodList(ctx context.Context) ([]string, error) {
	return []string{"1m", "5m", "15m", "30m", "60m", "1d"}, nil
}

func (s *Simulation) DataDir(ctx context.Context) (string, error) {
	return "./data/simulation", nil
}

func (s *Simulation) CBInfo(ctx context.Context, code string) (map[string]any, error) {
	return map[string]any{"code": code, "convertible": false}, nil
}

func (s *Simulation) IPOInfo(ctx context.Context) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func (s *Simulation) DividFactors(ctx context.Context, code string) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func (s *Simulation) TickRange(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]TickFrame, error) {
	var out []TickFrame
	for _, code := range symbols {
		sym, ok := s.resolve(code)
		if !ok {
			continue
		}
		out = append(out, TickFrame{Symbol: code, Price: s.market.Price(sym.LocateCode), Timestamp: start})
	}
	return out, nil
}

func (s *Simulation) KlineRange(ctx context.Context, symbols []SymbolCode, start, end time.Time, period string) ([]Bar, error) {
	return s.MarketData(ctx, symbols, start.Format("20060102"), end.Format("20060102"), period, nil, AdjustNone)
}

// L2Quote reads the full multi-level depth off the same order-book
// simulator L2Order/L2Transaction drive, rather than fabricating a single
// synthetic level — a fresh book is seeded at the current price on first
// use, so even a symbol with no prior L2Order/L2Transaction call returns a
// real ladder.
func (s *Simulation) L2Quote(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Quote, error) {
	var out []L2Quote
	for _, code := range symbols {
		sym, ok := s.resolve(code)
		if !ok {
			continue
		}
		depth := s.bookFor(sym).Book().Depth()

		q := L2Quote{Symbol: code, Timestamp: start}
		for _, lvl := range depth.Bids {
			q.Bids = append(q.Bids, [2]float64{lvl.Price, float64(lvl.TotalShares)})
		}
		for _, lvl := range depth.Asks {
			q.Asks = append(q.Asks, [2]float64{lvl.Price, float64(lvl.TotalShares)})
		}
		out = append(out, q)
	}
	return out, nil
}

// bookFor lazily builds and seeds the per-symbol order book simulator,
// grounded on the teacher's orderbook.Simulator (ITCH-flavored add/cancel/
// replace/trade/replenish mix).
func (s *Simulation) bookFor(sym *symbol.Symbol) *orderbook.Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim, ok := s.books[sym.Ticker]
	if ok {
		return sim
	}
	book := orderbook.NewBook(sym.LocateCode, sym.TickSize)
	sim = orderbook.NewSimulator(s.rng, book, sym.LocateCode, sym.TickSize)
	sim.Initialize(s.market.Price(sym.LocateCode))
	s.books[sym.Ticker] = sim
	return sim
}

// L2Order replays a batch of simulated order-book events (add/cancel/
// replace) for each symbol and projects the ITCH add-order messages onto
// the L2Order row shape; non-add events only mutate book state.
func (s *Simulation) L2Order(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Order, error) {
	var out []L2Order
	for _, code := range symbols {
		sym, ok := s.resolve(code)
		if !ok {
			continue
		}
		sim := s.bookFor(sym)
		msgs := sim.Step(s.market.Price(sym.LocateCode), 20)
		for _, m := range msgs {
			if m.Type != itch.MsgAddOrder && m.Type != itch.MsgAddOrderMPID {
				continue
			}
			side := "BUY"
			if m.Side == byte(orderbook.SideSell) {
				side = "SELL"
			}
			out = append(out, L2Order{
				Symbol:    code,
				Timestamp: start,
				OrderRef:  m.OrderRef,
				Side:      side,
				Price:     m.Price,
				Volume:    int64(m.Shares),
				OrderType: "LIMIT",
			})
		}
	}
	return out, nil
}

// L2Transaction replays the same simulated event stream and projects
// its trade messages onto the L2Transaction row shape; the paired
// order-executed messages are skipped, so each execution yields one row.
func (s *Simulation) L2Transaction(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Transaction, error) {
	var out []L2Transaction
	for _, code := range symbols {
		sym, ok := s.resolve(code)
		if !ok {
			continue
		}
		sim := s.bookFor(sym)
		msgs := sim.Step(s.market.Price(sym.LocateCode), 20)
		for _, m := range msgs {
			if m.Type != itch.MsgTrade {
				continue
			}
			row := L2Transaction{
				Symbol:    code,
				Timestamp: start,
				Price:     m.Price,
				Volume:    int64(m.Shares),
			}
			if m.Side == byte(orderbook.SideSell) {
				row.SellOrderRef = m.OrderRef
			} else {
				row.BuyOrderRef = m.OrderRef
			}
			out = append(out, row)
		}
	}
	return out, nil
}

// --- downloads ---

// StartDownload synthesizes a completed download job. For the two ITCH-
// shaped kinds (l2_order, l2_transaction) it actually drives the order-book
// simulator and puts the resulting messages through the ITCH wire encoders
// (params["format"]=="json" selects itch.EncodeJSON, anything else
// itch.EncodeBinary) so ByteSize reflects a real encoded payload rather
// than a guess; every other kind keeps the CSV placeholder path.
func (s *Simulation) StartDownload(ctx context.Context, kind string, params map[string]string) (DownloadTask, error) {
	s.mu.Lock()
	s.orderSeq++
	id := fmt.Sprintf("dl-%d", s.orderSeq)
	s.mu.Unlock()

	task := DownloadTask{ID: id, Kind: kind, Status: DownloadDone, Progress: 1, FilePath: "./data/" + id + ".csv"}

	switch kind {
	case "l2_order", "l2_transaction":
		asJSON := params["format"] == "json"
		ext := ".itch"
		if asJSON {
			ext = ".json"
		}
		task.FilePath = "./data/" + id + ext

		for i := range s.syms {
			sym := &s.syms[i]
			sim := s.bookFor(sym)
			msgs := sim.Step(s.market.Price(sym.LocateCode), 5)
			for _, m := range msgs {
				if asJSON {
					b, err := itch.EncodeJSON(&m)
					if err == nil {
						task.ByteSize += len(b)
					}
				} else {
					task.ByteSize += len(itch.EncodeBinary(&m))
				}
			}
		}
	}

	s.mu.Lock()
	s.downloads[id] = task
	s.mu.Unlock()
	return task, nil
}

func (s *Simulation) DownloadStatus(ctx context.Context, id string) (DownloadTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.downloads[id]
	if !ok {
		return DownloadTask{}, fmt.Errorf("unknown download %q", id)
	}
	return t, nil
}

// --- streaming ---

func (s *Simulation) SubscribeSymbols(symbols []SymbolCode, adj Adjust, cb OnFrame) error {
	s.mu.Lock()
	for _, code := range symbols {
		s.subSyms[code] = true
	}
	s.subCb = cb
	needStart := !s.running
	s.mu.Unlock()
	if needStart {
		s.startCallbackThread()
	}
	return nil
}

func (s *Simulation) SubscribeFirehose(markets []string, cb OnFrame) error {
	s.mu.Lock()
	s.firehose = true
	s.subCb = cb
	needStart := !s.running
	s.mu.Unlock()
	if needStart {
		s.startCallbackThread()
	}
	return nil
}

func (s *Simulation) Unsubscribe(symbolOrStar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if symbolOrStar == "*" {
		s.firehose = false
	} else {
		delete(s.subSyms, symbolOrStar)
	}
	if !s.firehose && len(s.subSyms) == 0 && s.running {
		close(s.stopCh)
		s.running = false
	}
	return nil
}

// startCallbackThread is the adapter's single private thread that generates
// ticks and invokes OnFrame, mirroring the teacher's per-symbol runner
// goroutines but collapsed into one goroutine per adapter instance since
// the simulation only ever has one registered subscriber callback (the
// Subscription Manager's bridge).
func (s *Simulation) startCallbackThread() {
	s.mu.Lock()
	s.stopCh = make(chan struct{})
	s.running = true
	stop := s.stopCh
	s.mu.Unlock()

	go func() {
		// The cadence itself comes from the stress controller: calm phases
		// wake rarely and emit a single action, burst phases wake almost
		// every millisecond and replay the tick several times, so a
		// subscriber sees the same sector-correlated GBM feed run at a
		// variable rate instead of a fixed 200ms heartbeat.
		interval, numActions := s.stress.Tick()
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for {
			select {
			case <-stop:
				return
			case <-timer.C:
				s.mu.Lock()
				s.market.GenerateSectorShocks()
				var targets []*symbol.Symbol
				if s.firehose {
					for i := range s.syms {
						targets = append(targets, &s.syms[i])
					}
				} else {
					for code := range s.subSyms {
						if sym, ok := s.byCode[code]; ok {
							targets = append(targets, sym)
						}
					}
				}
				cb := s.subCb
				s.mu.Unlock()

				for action := 0; action < numActions; action++ {
					for _, sym := range targets {
						price := s.market.Tick(sym.LocateCode)
						if cb != nil {
							cb(TickFrame{
								Symbol: sym.Ticker, Price: price, Volume: 100,
								BidPrice: price - sym.TickSize, BidSize: 300,
								AskPrice: price + sym.TickSize, AskSize: 300,
								Timestamp: time.Now(),
							})
						}
					}
				}

				interval, numActions = s.stress.Tick()
				timer.Reset(interval)
			}
		}
	}()
}

// --- sector management ---

func (s *Simulation) AddStockToSector(ctx context.Context, sector, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectors[sector] = append(s.sectors[sector], code)
	return nil
}

func (s *Simulation) RemoveStockFromSector(ctx context.Context, sector, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sectors[sector]
	for i, c := range list {
		if c == code {
			s.sectors[sector] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// --- trading: replies instantly, never touches real broker state ---

func (s *Simulation) Connect(ctx context.Context, accountID, password string, accountType AccountType) (AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := AccountSnapshot{
		AccountID: accountID, AccountType: accountType,
		Asset: Asset{TotalAssets: 1_000_000, CashBalance: 1_000_000},
	}
	s.accounts[accountID] = &simAccount{snapshot: snap, orders: make(map[string]Order)}
	return snap, nil
}

func (s *Simulation) Disconnect(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, accountID)
	return nil
}

func (s *Simulation) SubmitOrder(ctx context.Context, accountID string, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return Order{}, fmt.Errorf("account %q not connected", accountID)
	}
	s.orderSeq++
	o.OrderID = fmt.Sprintf("SIM-%d", s.orderSeq)
	o.Status = StatusFilled
	o.SubmittedAt = time.Now()
	o.FilledVolume = o.Volume
	o.FilledAmount = o.Price * float64(o.Volume)
	o.AvgPrice = o.Price
	acct.orders[o.OrderID] = o
	acct.trades = append(acct.trades, Trade{
		TradeID: fmt.Sprintf("T-%d", s.orderSeq), OrderID: o.OrderID, Symbol: o.Symbol,
		Side: o.Side, Price: o.Price, Volume: o.Volume, TradedAt: o.SubmittedAt,
	})
	return o, nil
}

func (s *Simulation) CancelOrder(ctx context.Context, accountID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %q not connected", accountID)
	}
	o, ok := acct.orders[orderID]
	if !ok {
		return fmt.Errorf("unknown order %q", orderID)
	}
	o.Status = StatusCancelled
	acct.orders[orderID] = o
	return nil
}

func (s *Simulation) QueryPositions(ctx context.Context, accountID string) ([]Position, error) {
	return []Position{}, nil
}

func (s *Simulation) QueryAsset(ctx context.Context, accountID string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return Asset{}, fmt.Errorf("account %q not connected", accountID)
	}
	return acct.snapshot.Asset, nil
}

func (s *Simulation) QueryOrders(ctx context.Context, accountID string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %q not connected", accountID)
	}
	out := make([]Order, 0, len(acct.orders))
	for _, o := range acct.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *Simulation) QueryTrades(ctx context.Context, accountID string) ([]Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %q not connected", accountID)
	}
	out := make([]Trade, len(acct.trades))
	copy(out, acct.trades)
	return out, nil
}

func (s *Simulation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.running = false
	}
	return nil
}

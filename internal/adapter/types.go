// Package adapter implements the uniform façade over the proprietary
// native market-data and trading library (spec.md §4.1). Three concrete
// variants — Simulation, ReadLive and Live — implement the same Adapter
// interface; callers never type-switch on the concrete variant.
package adapter

import "time"

// SymbolCode identifies a tradable instrument, e.g. "000001.SZ".
type SymbolCode = string

// Adjust is the price-adjustment kind for historical/quote data.
type Adjust int

const (
	AdjustNone Adjust = iota
	AdjustFront
	AdjustBack
)

func ParseAdjust(s string) (Adjust, bool) {
	switch s {
	case "", "none":
		return AdjustNone, true
	case "front":
		return AdjustFront, true
	case "back":
		return AdjustBack, true
	default:
		return AdjustNone, false
	}
}

// TickFrame is an opaque, immutable-after-creation snapshot of market state
// for one symbol, as emitted by the adapter's callback thread.
type TickFrame struct {
	Symbol    SymbolCode
	Price     float64
	Volume    int64
	BidPrice  float64
	BidSize   int64
	AskPrice  float64
	AskSize   int64
	Timestamp time.Time
}

// OnFrame is invoked on the adapter's single private callback thread.
type OnFrame func(TickFrame)

// Bar is one OHLCV row for market_data/kline operations.
type Bar struct {
	Symbol    SymbolCode
	Date      string // YYYYMMDD
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Amount    float64
	Period    string
	AdjustKnd Adjust
}

// FinancialTable is one financial-statement table row set for a symbol.
type FinancialTable struct {
	Symbol string
	Table  string
	Rows   []map[string]any
}

// Sector is a named grouping of stocks.
type Sector struct {
	Name      string
	StockList []string
}

// IndexWeight is one constituent weight of an index on a date.
type IndexWeight struct {
	StockCode string
	Weight    float64
}

// TradingCalendar holds a year's trading days and holidays.
type TradingCalendar struct {
	Year          int
	TradingDates  []string
	Holidays      []string
}

// Instrument is reference metadata for a tradable symbol.
type Instrument struct {
	Code       string
	Name       string
	Market     string
	LotSize    int
	TickSize   float64
	ListedDate string
}

// DownloadTask describes an in-flight or completed bulk-download job.
type DownloadTask struct {
	ID        string
	Kind      string
	Status    DownloadStatus
	Progress  float64
	FilePath  string
	Error     string
	ByteSize  int // wire-encoded payload size, set for l2_order/l2_transaction downloads
}

type DownloadStatus int

const (
	DownloadPending DownloadStatus = iota
	DownloadRunning
	DownloadDone
	DownloadFailed
)

// L2Quote/L2Order/L2Transaction are Level-2 market microstructure rows.
type L2Quote struct {
	Symbol    SymbolCode
	Timestamp time.Time
	Bids      [][2]float64 // price, size
	Asks      [][2]float64
}

type L2Order struct {
	Symbol      SymbolCode
	Timestamp   time.Time
	OrderRef    uint64
	Side        string
	Price       float64
	Volume      int64
	OrderType   string
}

type L2Transaction struct {
	Symbol      SymbolCode
	Timestamp   time.Time
	Price       float64
	Volume      int64
	BuyOrderRef uint64
	SellOrderRef uint64
}

// OrderSide / OrderType / OrderStatus / AccountType mirror the stable
// binary-RPC enumerations of spec.md §6.
type OrderSide int

const (
	SideBuy OrderSide = iota
	SideSell
)

type OrderType int

const (
	OrderLimit OrderType = iota
	OrderMarket
)

type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusSubmitted
	StatusPartialFilled
	StatusFilled
	StatusCancelled
	StatusRejected
)

func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

func ParseOrderSide(s string) (OrderSide, bool) {
	switch s {
	case "BUY", "buy":
		return SideBuy, true
	case "SELL", "sell":
		return SideSell, true
	default:
		return 0, false
	}
}

func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "LIMIT", "limit":
		return OrderLimit, true
	case "MARKET", "market":
		return OrderMarket, true
	default:
		return 0, false
	}
}

type AccountType int

const (
	AccountStock AccountType = iota
	AccountFutures
	AccountMargin
)

func ParseAccountType(s string) (AccountType, bool) {
	switch s {
	case "", "stock":
		return AccountStock, true
	case "futures":
		return AccountFutures, true
	case "margin":
		return AccountMargin, true
	default:
		return 0, false
	}
}

// Order is the adapter-level view of a submitted order.
type Order struct {
	OrderID      string
	Symbol       SymbolCode
	Side         OrderSide
	Type         OrderType
	Volume       int64
	Price        float64
	Status       OrderStatus
	SubmittedAt  time.Time
	FilledVolume int64
	FilledAmount float64
	AvgPrice     float64
}

// Position is one held instrument position for an account.
type Position struct {
	Symbol       SymbolCode
	Volume       int64
	AvailVolume  int64
	AvgCost      float64
	MarketValue  float64
	UnrealizedPL float64
}

// Asset is the account-level cash/equity snapshot.
type Asset struct {
	TotalAssets float64
	CashBalance float64
	MarketValue float64
	FrozenCash  float64
}

// Trade is one execution (fill) report.
type Trade struct {
	TradeID  string
	OrderID  string
	Symbol   SymbolCode
	Side     OrderSide
	Price    float64
	Volume   int64
	TradedAt time.Time
}

// AccountSnapshot bundles asset + identity info returned by connect.
type AccountSnapshot struct {
	AccountID   string
	AccountType AccountType
	Asset       Asset
	Positions   []Position
}

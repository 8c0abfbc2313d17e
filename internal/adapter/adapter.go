package adapter

import (
	"context"
	"time"
)

// Adapter is the uniform façade over the native brokerage library.
//
// Guarantee: OnFrame callbacks registered through SubscribeSymbols /
// SubscribeFirehose are invoked on a single private thread per adapter
// instance; that thread starts on first subscribe and stops on Close; the
// callback never re-enters the adapter.
type Adapter interface {
	// Market & reference data (read-only, all variants serve these).
	MarketData(ctx context.Context, symbols []SymbolCode, start, end string, period string, fields []string, adj Adjust) ([]Bar, error)
	Financial(ctx context.Context, symbols []SymbolCode, tables []string, start, end string) ([]FinancialTable, error)
	SectorList(ctx context.Context) ([]string, error)
	StockListInSector(ctx context.Context, name string) ([]string, error)
	IndexWeight(ctx context.Context, code string, date string) ([]IndexWeight, error)
	TradingCalendar(ctx context.Context, year int) (TradingCalendar, error)
	InstrumentInfo(ctx context.Context, code string) (Instrument, error)
	Holidays(ctx context.Context) ([]string, error)
	PeriodList(ctx context.Context) ([]string, error)
	DataDir(ctx context.Context) (string, error)
	CBInfo(ctx context.Context, code string) (map[string]any, error)
	IPOInfo(ctx context.Context) ([]map[string]any, error)
	DividFactors(ctx context.Context, code string) ([]map[string]any, error)
	TickRange(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]TickFrame, error)
	KlineRange(ctx context.Context, symbols []SymbolCode, start, end time.Time, period string) ([]Bar, error)
	L2Quote(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Quote, error)
	L2Order(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Order, error)
	L2Transaction(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Transaction, error)

	// Downloads.
	StartDownload(ctx context.Context, kind string, params map[string]string) (DownloadTask, error)
	DownloadStatus(ctx context.Context, id string) (DownloadTask, error)

	// Streaming.
	SubscribeSymbols(symbols []SymbolCode, adj Adjust, cb OnFrame) error
	SubscribeFirehose(markets []string, cb OnFrame) error
	Unsubscribe(symbolOrStar string) error

	// Sector management (mutating, but not order-mutating; never gated).
	AddStockToSector(ctx context.Context, sector, code string) error
	RemoveStockFromSector(ctx context.Context, sector, code string) error

	// Trading (mutating calls are subject to the policy gate upstream of
	// this interface; ReadLive rejects SubmitOrder and CancelOrder here with
	// a *PolicyError naming the operation).
	Connect(ctx context.Context, accountID, password string, accountType AccountType) (AccountSnapshot, error)
	Disconnect(ctx context.Context, accountID string) error
	SubmitOrder(ctx context.Context, accountID string, o Order) (Order, error)
	CancelOrder(ctx context.Context, accountID, orderID string) error
	QueryPositions(ctx context.Context, accountID string) ([]Position, error)
	QueryAsset(ctx context.Context, accountID string) (Asset, error)
	QueryOrders(ctx context.Context, accountID string) ([]Order, error)
	QueryTrades(ctx context.Context, accountID string) ([]Trade, error)

	// Close stops the callback thread and releases native resources.
	Close() error
}

// ErrPolicyBlocked is a PolicyError with an empty Op. ReadLive does not
// return this value: each refusal is a fresh *PolicyError naming its
// operation, so errors.Is against ErrPolicyBlocked does not match it.
var ErrPolicyBlocked = &PolicyError{Op: ""}

// PolicyError marks an adapter call refused by an adapter variant's own
// read/write posture (distinct from the server-side Policy Gate of
// spec.md §4.3, which decides *before* reaching the adapter at all).
type PolicyError struct {
	Op string
}

func (e *PolicyError) Error() string {
	return "adapter: operation not permitted in this mode: " + e.Op
}

func policyBlocked(op string) error { return &PolicyError{Op: op} }

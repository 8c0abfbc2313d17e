package adapter

import (
	"context"
	"time"
)

// NativeClient is the boundary object for the proprietary native
// brokerage library itself. Spec.md §1 explicitly puts the native library
// out of scope: "modelled only through the adapter interface in §4.6." The
// gateway therefore never ships a concrete implementation of NativeClient
// beyond what's needed for the ReadLive/Live wiring to compile and for
// tests to substitute a fake; Lifecycle injects the real implementation
// in a deployment that links the native library.
type NativeClient interface {
	MarketData(ctx context.Context, symbols []SymbolCode, start, end, period string, fields []string, adj Adjust) ([]Bar, error)
	Financial(ctx context.Context, symbols []SymbolCode, tables []string, start, end string) ([]FinancialTable, error)
	SectorList(ctx context.Context) ([]string, error)
	StockListInSector(ctx context.Context, name string) ([]string, error)
	IndexWeight(ctx context.Context, code, date string) ([]IndexWeight, error)
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
	StartDownload(ctx context.Context, kind string, params map[string]string) (DownloadTask, error)
	DownloadStatus(ctx context.Context, id string) (DownloadTask, error)
	SubscribeSymbols(symbols []SymbolCode, adj Adjust, cb OnFrame) error
	SubscribeFirehose(markets []string, cb OnFrame) error
	Unsubscribe(symbolOrStar string) error
	AddStockToSector(ctx context.Context, sector, code string) error
	RemoveStockFromSector(ctx context.Context, sector, code string) error
	Connect(ctx context.Context, accountID, password string, accountType AccountType) (AccountSnapshot, error)
	Disconnect(ctx context.Context, accountID string) error
	SubmitOrder(ctx context.Context, accountID string, o Order) (Order, error)
	CancelOrder(ctx context.Context, accountID, orderID string) error
	QueryPositions(ctx context.Context, accountID string) ([]Position, error)
	QueryAsset(ctx context.Context, accountID string) (Asset, error)
	QueryOrders(ctx context.Context, accountID string) ([]Order, error)
	QueryTrades(ctx context.Context, accountID string) ([]Trade, error)
	Close() error
}

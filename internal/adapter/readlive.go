package adapter

import (
	"context"
	"time"
)

// ReadLive delegates every read to the native library via NativeClient but
// rejects every order-mutating operation with a PolicyError, so it is safe
// to run against a live market-data feed without ever being able to place
// a real order (spec.md §4.1).
type ReadLive struct {
	native NativeClient
}

func NewReadLive(native NativeClient) *ReadLive {
	return &ReadLive{native: native}
}

func (r *ReadLive) MarketData(ctx context.Context, symbols []SymbolCode, start, end string, period string, fields []string, adj Adjust) ([]Bar, error) {
	return r.native.MarketData(ctx, symbols, start, end, period, fields, adj)
}
func (r *ReadLive) Financial(ctx context.Context, symbols []SymbolCode, tables []string, start, end string) ([]FinancialTable, error) {
	return r.native.Financial(ctx, symbols, tables, start, end)
}
func (r *ReadLive) SectorList(ctx context.Context) ([]string, error) { return r.native.SectorList(ctx) }
func (r *ReadLive) StockListInSector(ctx context.Context, name string) ([]string, error) {
	return r.native.StockListInSector(ctx, name)
}
func (r *ReadLive) IndexWeight(ctx context.Context, code string, date string) ([]IndexWeight, error) {
	return r.native.IndexWeight(ctx, code, date)
}
func (r *ReadLive) TradingCalendar(ctx context.Context, year int) (TradingCalendar, error) {
	return r.native.TradingCalendar(ctx, year)
}
func (r *ReadLive) InstrumentInfo(ctx context.Context, code string) (Instrument, error) {
	return r.native.InstrumentInfo(ctx, code)
}
func (r *ReadLive) Holidays(ctx context.Context) ([]string, error) { return r.native.Holidays(ctx) }
func (r *ReadLive) PeriodList(ctx context.Context) ([]string, error) { return r.native.PeriodList(ctx) }
func (r *ReadLive) DataDir(ctx context.Context) (string, error)       { return r.native.DataDir(ctx) }
func (r *ReadLive) CBInfo(ctx context.Context, code string) (map[string]any, error) {
	return r.native.CBInfo(ctx, code)
}
func (r *ReadLive) IPOInfo(ctx context.Context) ([]map[string]any, error) { return r.native.IPOInfo(ctx) }
func (r *ReadLive) DividFactors(ctx context.Context, code string) ([]map[string]any, error) {
	return r.native.DividFactors(ctx, code)
}
func (r *ReadLive) TickRange(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]TickFrame, error) {
	return r.native.TickRange(ctx, symbols, start, end)
}
func (r *ReadLive) KlineRange(ctx context.Context, symbols []SymbolCode, start, end time.Time, period string) ([]Bar, error) {
	return r.native.KlineRange(ctx, symbols, start, end, period)
}
func (r *ReadLive) L2Quote(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Quote, error) {
	return r.native.L2Quote(ctx, symbols, start, end)
}
func (r *ReadLive) L2Order(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Order, error) {
	return r.native.L2Order(ctx, symbols, start, end)
}
func (r *ReadLive) L2Transaction(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Transaction, error) {
	return r.native.L2Transaction(ctx, symbols, start, end)
}
func (r *ReadLive) StartDownload(ctx context.Context, kind string, params map[string]string) (DownloadTask, error) {
	return r.native.StartDownload(ctx, kind, params)
}
func (r *ReadLive) DownloadStatus(ctx context.Context, id string) (DownloadTask, error) {
	return r.native.DownloadStatus(ctx, id)
}
func (r *ReadLive) SubscribeSymbols(symbols []SymbolCode, adj Adjust, cb OnFrame) error {
	return r.native.SubscribeSymbols(symbols, adj, cb)
}
func (r *ReadLive) SubscribeFirehose(markets []string, cb OnFrame) error {
	return r.native.SubscribeFirehose(markets, cb)
}
func (r *ReadLive) Unsubscribe(symbolOrStar string) error { return r.native.Unsubscribe(symbolOrStar) }
func (r *ReadLive) AddStockToSector(ctx context.Context, sector, code string) error {
	return r.native.AddStockToSector(ctx, sector, code)
}
func (r *ReadLive) RemoveStockFromSector(ctx context.Context, sector, code string) error {
	return r.native.RemoveStockFromSector(ctx, sector, code)
}

func (r *ReadLive) Connect(ctx context.Context, accountID, password string, accountType AccountType) (AccountSnapshot, error) {
	return r.native.Connect(ctx, accountID, password, accountType)
}
func (r *ReadLive) Disconnect(ctx context.Context, accountID string) error {
	return r.native.Disconnect(ctx, accountID)
}

// Order-mutating operations: always refused.
func (r *ReadLive) SubmitOrder(ctx context.Context, accountID string, o Order) (Order, error) {
	return Order{}, policyBlocked("submit_order")
}
func (r *ReadLive) CancelOrder(ctx context.Context, accountID, orderID string) error {
	return policyBlocked("cancel_order")
}

func (r *ReadLive) QueryPositions(ctx context.Context, accountID string) ([]Position, error) {
	return r.native.QueryPositions(ctx, accountID)
}
func (r *ReadLive) QueryAsset(ctx context.Context, accountID string) (Asset, error) {
	return r.native.QueryAsset(ctx, accountID)
}
func (r *ReadLive) QueryOrders(ctx context.Context, accountID string) ([]Order, error) {
	return r.native.QueryOrders(ctx, accountID)
}
func (r *ReadLive) QueryTrades(ctx context.Context, accountID string) ([]Trade, error) {
	return r.native.QueryTrades(ctx, accountID)
}

func (r *ReadLive) Close() error {
	if r.native == nil {
		return nil
	}
	return r.native.Close()
}

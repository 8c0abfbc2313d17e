package adapter

import (
	"context"
	"time"
)

// Live delegates everything — reads and mutating trading calls alike — to
// the native library. The Policy Gate (spec.md §4.3) is the only thing
// standing between a client request and a real trade; Live itself applies
// no restriction of its own.
type Live struct {
	native NativeClient
}

func NewLive(native NativeClient) *Live {
	return &Live{native: native}
}

func (l *Live) MarketData(ctx context.Context, symbols []SymbolCode, start, end string, period string, fields []string, adj Adjust) ([]Bar, error) {
	return l.native.MarketData(ctx, symbols, start, end, period, fields, adj)
}
func (l *Live) Financial(ctx context.Context, symbols []SymbolCode, tables []string, start, end string) ([]FinancialTable, error) {
	return l.native.Financial(ctx, symbols, tables, start, end)
}
func (l *Live) SectorList(ctx context.Context) ([]string, error) { return l.native.SectorList(ctx) }
func (l *Live) StockListInSector(ctx context.Context, name string) ([]string, error) {
	return l.native.StockListInSector(ctx, name)
}
func (l *Live) IndexWeight(ctx context.Context, code string, date string) ([]IndexWeight, error) {
	return l.native.IndexWeight(ctx, code, date)
}
func (l *Live) TradingCalendar(ctx context.Context, year int) (TradingCalendar, error) {
	return l.native.TradingCalendar(ctx, year)
}
func (l *Live) InstrumentInfo(ctx context.Context, code string) (Instrument, error) {
	return l.native.InstrumentInfo(ctx, code)
}
func (l *Live) Holidays(ctx context.Context) ([]string, error)   { return l.native.Holidays(ctx) }
func (l *Live) PeriodList(ctx context.Context) ([]string, error) { return l.native.PeriodList(ctx) }
func (l *Live) DataDir(ctx context.Context) (string, error)      { return l.native.DataDir(ctx) }
func (l *Live) CBInfo(ctx context.Context, code string) (map[string]any, error) {
	return l.native.CBInfo(ctx, code)
}
func (l *Live) IPOInfo(ctx context.Context) ([]map[string]any, error) { return l.native.IPOInfo(ctx) }
func (l *Live) DividFactors(ctx context.Context, code string) ([]map[string]any, error) {
	return l.native.DividFactors(ctx, code)
}
func (l *Live) TickRange(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]TickFrame, error) {
	return l.native.TickRange(ctx, symbols, start, end)
}
func (l *Live) KlineRange(ctx context.Context, symbols []SymbolCode, start, end time.Time, period string) ([]Bar, error) {
	return l.native.KlineRange(ctx, symbols, start, end, period)
}
func (l *Live) L2Quote(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Quote, error) {
	return l.native.L2Quote(ctx, symbols, start, end)
}
func (l *Live) L2Order(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Order, error) {
	return l.native.L2Order(ctx, symbols, start, end)
}
func (l *Live) L2Transaction(ctx context.Context, symbols []SymbolCode, start, end time.Time) ([]L2Transaction, error) {
	return l.native.L2Transaction(ctx, symbols, start, end)
}
func (l *Live) StartDownload(ctx context.Context, kind string, params map[string]string) (DownloadTask, error) {
	return l.native.StartDownload(ctx, kind, params)
}
func (l *Live) DownloadStatus(ctx context.Context, id string) (DownloadTask, error) {
	return l.native.DownloadStatus(ctx, id)
}
func (l *Live) SubscribeSymbols(symbols []SymbolCode, adj Adjust, cb OnFrame) error {
	return l.native.SubscribeSymbols(symbols, adj, cb)
}
func (l *Live) SubscribeFirehose(markets []string, cb OnFrame) error {
	return l.native.SubscribeFirehose(markets, cb)
}
func (l *Live) Unsubscribe(symbolOrStar string) error { return l.native.Unsubscribe(symbolOrStar) }
func (l *Live) AddStockToSector(ctx context.Context, sector, code string) error {
	return l.native.AddStockToSector(ctx, sector, code)
}
func (l *Live) RemoveStockFromSector(ctx context.Context, sector, code string) error {
	return l.native.RemoveStockFromSector(ctx, sector, code)
}
func (l *Live) Connect(ctx context.Context, accountID, password string, accountType AccountType) (AccountSnapshot, error) {
	return l.native.Connect(ctx, accountID, password, accountType)
}
func (l *Live) Disconnect(ctx context.Context, accountID string) error {
	return l.native.Disconnect(ctx, accountID)
}
func (l *Live) SubmitOrder(ctx context.Context, accountID string, o Order) (Order, error) {
	return l.native.SubmitOrder(ctx, accountID, o)
}
func (l *Live) CancelOrder(ctx context.Context, accountID, orderID string) error {
	return l.native.CancelOrder(ctx, accountID, orderID)
}
func (l *Live) QueryPositions(ctx context.Context, accountID string) ([]Position, error) {
	return l.native.QueryPositions(ctx, accountID)
}
func (l *Live) QueryAsset(ctx context.Context, accountID string) (Asset, error) {
	return l.native.QueryAsset(ctx, accountID)
}
func (l *Live) QueryOrders(ctx context.Context, accountID string) ([]Order, error) {
	return l.native.QueryOrders(ctx, accountID)
}
func (l *Live) QueryTrades(ctx context.Context, accountID string) ([]Trade, error) {
	return l.native.QueryTrades(ctx, accountID)
}
func (l *Live) Close() error {
	if l.native == nil {
		return nil
	}
	return l.native.Close()
}

// Package dataservice implements the Data Service (spec.md §4.6): a thin
// façade over the Upstream Adapter plus the Subscription Manager, with
// input validation and response shaping. It is the one set of value types
// shared, unchanged, by both wire surfaces (spec.md §4.7, §9).
package dataservice

import (
	"context"
	"regexp"
	"time"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/subscription"
)

var dateRe = regexp.MustCompile(`^\d{8}$`)

// Service façades market/reference-data reads and subscription lifecycle.
type Service struct {
	ad    adapter.Adapter
	sub   *subscription.Manager
	audit *audit.Store // nil when audit logging is disabled
}

func New(ad adapter.Adapter, sub *subscription.Manager, auditStore *audit.Store) *Service {
	return &Service{ad: ad, sub: sub, audit: auditStore}
}

func validateSymbols(symbols []string) error {
	for _, s := range symbols {
		if s == "" {
			return gwerrors.New(gwerrors.EmptySymbols, "symbol list contains a blank entry")
		}
	}
	if len(symbols) == 0 {
		return gwerrors.New(gwerrors.EmptySymbols, "symbol list must not be empty")
	}
	return nil
}

func toSymbolCodes(symbols []string) []adapter.SymbolCode {
	out := make([]adapter.SymbolCode, len(symbols))
	for i, s := range symbols {
		out[i] = adapter.SymbolCode(s)
	}
	return out
}

func validateDateRange(start, end string) error {
	if start != "" && !dateRe.MatchString(start) {
		return gwerrors.New(gwerrors.InvalidArgument, "start_date must be YYYYMMDD")
	}
	if end != "" && !dateRe.MatchString(end) {
		return gwerrors.New(gwerrors.InvalidArgument, "end_date must be YYYYMMDD")
	}
	if start != "" && end != "" && start > end {
		return gwerrors.New(gwerrors.InvalidArgument, "start_date must not be after end_date")
	}
	return nil
}

// MarketData is POST /data/market.
func (s *Service) MarketData(ctx context.Context, symbols []string, start, end, period string, fields []string, adjustType string) ([]adapter.Bar, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	adj, ok := adapter.ParseAdjust(adjustType)
	if !ok {
		return nil, gwerrors.New(gwerrors.InvalidArgument, "adjust_type must be one of none, front, back")
	}
	bars, err := s.ad.MarketData(ctx, toSymbolCodes(symbols), start, end, period, fields, adj)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "market_data failed", err)
	}
	return bars, nil
}

// Financial is POST /data/financial.
func (s *Service) Financial(ctx context.Context, symbols []string, tables []string, start, end string) ([]adapter.FinancialTable, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, gwerrors.New(gwerrors.InvalidArgument, "table_list must not be empty")
	}
	out, err := s.ad.Financial(ctx, toSymbolCodes(symbols), tables, start, end)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "financial failed", err)
	}
	return out, nil
}

// SectorList is GET /data/sectors. Upstream errors on this idempotent read
// are retried once, best-effort, per spec.md §7.
func (s *Service) SectorList(ctx context.Context) ([]string, error) {
	out, err := s.ad.SectorList(ctx)
	if err != nil {
		out, err = s.ad.SectorList(ctx)
	}
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "sector_list failed", err)
	}
	return out, nil
}

// Sector is POST /data/sector.
func (s *Service) Sector(ctx context.Context, name string) (adapter.Sector, error) {
	if name == "" {
		return adapter.Sector{}, gwerrors.New(gwerrors.InvalidArgument, "sector_name must not be empty")
	}
	list, err := s.ad.StockListInSector(ctx, name)
	if err != nil {
		return adapter.Sector{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "stock_list_in_sector failed", err)
	}
	return adapter.Sector{Name: name, StockList: list}, nil
}

// IndexWeight is POST /data/index-weight.
func (s *Service) IndexWeight(ctx context.Context, code, date string) ([]adapter.IndexWeight, error) {
	if code == "" {
		return nil, gwerrors.New(gwerrors.InvalidArgument, "index_code must not be empty")
	}
	out, err := s.ad.IndexWeight(ctx, code, date)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "index_weight failed", err)
	}
	return out, nil
}

// TradingCalendar is GET /data/trading-calendar/{year}, retried once on
// upstream failure (idempotent read).
func (s *Service) TradingCalendar(ctx context.Context, year int) (adapter.TradingCalendar, error) {
	if year < 1990 || year > 2100 {
		return adapter.TradingCalendar{}, gwerrors.New(gwerrors.InvalidArgument, "year out of range")
	}
	cal, err := s.ad.TradingCalendar(ctx, year)
	if err != nil {
		cal, err = s.ad.TradingCalendar(ctx, year)
	}
	if err != nil {
		return adapter.TradingCalendar{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "trading_calendar failed", err)
	}
	return cal, nil
}

// InstrumentInfo is GET /data/instrument/{code}, retried once on upstream
// failure (idempotent read).
func (s *Service) InstrumentInfo(ctx context.Context, code string) (adapter.Instrument, error) {
	if code == "" {
		return adapter.Instrument{}, gwerrors.New(gwerrors.InvalidArgument, "code must not be empty")
	}
	inst, err := s.ad.InstrumentInfo(ctx, code)
	if err != nil {
		inst, err = s.ad.InstrumentInfo(ctx, code)
	}
	if err != nil {
		return adapter.Instrument{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "instrument_info failed", err)
	}
	return inst, nil
}

// --- Level-2 / download catalogue (spec.md §4.1, SPEC_FULL supplement) ---

func (s *Service) Holidays(ctx context.Context) ([]string, error) {
	out, err := s.ad.Holidays(ctx)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "holidays failed", err)
	}
	return out, nil
}

func (s *Service) PeriodList(ctx context.Context) ([]string, error) {
	out, err := s.ad.PeriodList(ctx)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "period_list failed", err)
	}
	return out, nil
}

func (s *Service) TickRange(ctx context.Context, symbols []string, start, end time.Time) ([]adapter.TickFrame, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}
	out, err := s.ad.TickRange(ctx, toSymbolCodes(symbols), start, end)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "tick_range failed", err)
	}
	return out, nil
}

func (s *Service) KlineRange(ctx context.Context, symbols []string, start, end time.Time, period string) ([]adapter.Bar, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}
	out, err := s.ad.KlineRange(ctx, toSymbolCodes(symbols), start, end, period)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "kline_range failed", err)
	}
	return out, nil
}

func (s *Service) StartDownload(ctx context.Context, kind string, params map[string]string) (adapter.DownloadTask, error) {
	if kind == "" {
		return adapter.DownloadTask{}, gwerrors.New(gwerrors.InvalidArgument, "download kind must not be empty")
	}
	task, err := s.ad.StartDownload(ctx, kind, params)
	if err != nil {
		return adapter.DownloadTask{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "start_download failed", err)
	}
	return task, nil
}

// AddStockToSector is POST /data/sector/stock (spec.md §4.1 "sector-
// management mutations"). Never gated by the Policy Gate — it is a
// reference-data edit, not an order mutation — but it is best-effort
// audited like every other state change the gateway allows.
func (s *Service) AddStockToSector(ctx context.Context, sector, code string) error {
	if sector == "" || code == "" {
		return gwerrors.New(gwerrors.InvalidArgument, "sector and stock_code must not be empty")
	}
	if err := s.ad.AddStockToSector(ctx, sector, code); err != nil {
		return gwerrors.Wrap(gwerrors.UpstreamFailure, "add_stock_to_sector failed", err)
	}
	if s.audit != nil {
		s.audit.RecordSectorMutation(ctx, "add", sector, code)
	}
	return nil
}

// RemoveStockFromSector is DELETE /data/sector/stock.
func (s *Service) RemoveStockFromSector(ctx context.Context, sector, code string) error {
	if sector == "" || code == "" {
		return gwerrors.New(gwerrors.InvalidArgument, "sector and stock_code must not be empty")
	}
	if err := s.ad.RemoveStockFromSector(ctx, sector, code); err != nil {
		return gwerrors.Wrap(gwerrors.UpstreamFailure, "remove_stock_from_sector failed", err)
	}
	if s.audit != nil {
		s.audit.RecordSectorMutation(ctx, "remove", sector, code)
	}
	return nil
}

// --- subscription lifecycle (delegates straight to the Subscription Manager) ---

func (s *Service) Subscribe(symbols []string, adjustType, subscriptionType string) (subscription.ID, error) {
	adj, ok := adapter.ParseAdjust(adjustType)
	if !ok {
		return "", gwerrors.New(gwerrors.InvalidArgument, "adjust_type must be one of none, front, back")
	}
	if subscriptionType == "firehose" {
		return s.sub.SubscribeFirehose()
	}
	return s.sub.Subscribe(toSymbolCodes(symbols), adj)
}

func (s *Service) Unsubscribe(id subscription.ID) error {
	return s.sub.Unsubscribe(id)
}

func (s *Service) Describe(id subscription.ID) (subscription.Descriptor, error) {
	return s.sub.Describe(id)
}

func (s *Service) ListSubscriptions() []subscription.Descriptor {
	return s.sub.List()
}

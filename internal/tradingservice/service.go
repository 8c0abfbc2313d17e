// Package tradingservice implements the Trading Service (spec.md §4.6): a
// thin façade over the Session Registry and the Policy Gate. Every
// order-mutating call passes through the gate first; a denial never
// reaches the adapter and is answered with a simulated=true response.
package tradingservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/metrics"
	"github.com/ndrandal/quant-gateway/internal/mode"
	"github.com/ndrandal/quant-gateway/internal/policy"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
)

// OrderResult wraps an order response with the policy-gate outcome, so
// dispatch can attach the simulated marker without re-deriving it.
type OrderResult struct {
	Order     adapter.Order
	Simulated bool
}

// CancelResult mirrors OrderResult for cancel_order.
type CancelResult struct {
	Simulated bool
}

// RiskInfo is the `/trading/risk/{sid}` shape (spec.md §6). position_ratio
// and cash_ratio are computed from the account's own snapshot rather than
// returned as fixed placeholders, and concentration (largest position) is
// added since a single scalar ratio hides where the exposure actually sits.
type RiskInfo struct {
	TotalAssets       float64 `json:"total_assets"`
	MarketValue       float64 `json:"market_value"`
	CashBalance       float64 `json:"cash_balance"`
	PositionRatio     float64 `json:"position_ratio"` // market value / total assets
	CashRatio         float64 `json:"cash_ratio"`      // cash balance / total assets
	LargestPositionID string  `json:"largest_position_id"`
	LargestPositionPL float64 `json:"largest_position_unrealized_pl"`
}

type Service struct {
	sessions *tradesession.Registry
	gate     policy.Gate
	m        mode.Mode
	allowRT  bool
	audit    *audit.Store // nil when audit logging is disabled
}

func New(sessions *tradesession.Registry, gate policy.Gate, m mode.Mode, allowRealTrading bool, auditStore *audit.Store) *Service {
	return &Service{sessions: sessions, gate: gate, m: m, allowRT: allowRealTrading, audit: auditStore}
}

// Connect is connect_trade_account. Never gated — establishing a session
// is not itself an order mutation.
func (s *Service) Connect(ctx context.Context, accountID, password string, accountType adapter.AccountType) (tradesession.ID, error) {
	if accountID == "" || password == "" {
		return "", gwerrors.New(gwerrors.InvalidArgument, "account_id and password are required")
	}
	return s.sessions.Connect(ctx, accountID, password, accountType)
}

// Disconnect is disconnect_trade_account. Never gated.
func (s *Service) Disconnect(ctx context.Context, id tradesession.ID) error {
	return s.sessions.Disconnect(ctx, id)
}

// GetAccountInfo refreshes and returns the account snapshot. A read, never
// gated.
func (s *Service) GetAccountInfo(ctx context.Context, id tradesession.ID, ad adapter.Adapter) (adapter.AccountSnapshot, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return adapter.AccountSnapshot{}, err
	}
	asset, err := ad.QueryAsset(ctx, sess.AccountID)
	if err != nil {
		return adapter.AccountSnapshot{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "query_asset failed", err)
	}
	positions, err := ad.QueryPositions(ctx, sess.AccountID)
	if err != nil {
		return adapter.AccountSnapshot{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "query_positions failed", err)
	}
	snap := adapter.AccountSnapshot{Asset: asset, Positions: positions}
	sess.RefreshSnapshot(snap)
	return snap, nil
}

// GetRiskInfo is the `/trading/risk/{sid}` read (spec.md §6): a derived
// view over the same snapshot GetAccountInfo refreshes, never gated.
func (s *Service) GetRiskInfo(ctx context.Context, id tradesession.ID, ad adapter.Adapter) (RiskInfo, error) {
	snap, err := s.GetAccountInfo(ctx, id, ad)
	if err != nil {
		return RiskInfo{}, err
	}

	risk := RiskInfo{
		TotalAssets: snap.Asset.TotalAssets,
		MarketValue: snap.Asset.MarketValue,
		CashBalance: snap.Asset.CashBalance,
	}
	if snap.Asset.TotalAssets != 0 {
		risk.PositionRatio = snap.Asset.MarketValue / snap.Asset.TotalAssets
		risk.CashRatio = snap.Asset.CashBalance / snap.Asset.TotalAssets
	}

	var largestExposure float64
	for _, p := range snap.Positions {
		if risk.LargestPositionID == "" || p.MarketValue > largestExposure {
			largestExposure = p.MarketValue
			risk.LargestPositionID = string(p.Symbol)
			risk.LargestPositionPL = p.UnrealizedPL
		}
	}
	return risk, nil
}

// SubmitOrder is submit_order, the canonical order-mutating call (spec.md
// §4.3, §4.6). A policy denial never reaches the adapter: it synthesizes a
// simulated fill response instead of returning an error, per spec.md's
// "graceful degradation in read-only deployments" requirement.
func (s *Service) SubmitOrder(ctx context.Context, id tradesession.ID, ad adapter.Adapter, o adapter.Order) (OrderResult, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return OrderResult{}, err
	}
	if o.Symbol == "" || o.Volume <= 0 {
		return OrderResult{}, gwerrors.New(gwerrors.InvalidArgument, "symbol and a positive volume are required")
	}

	if !s.gate.Allow(policy.OpMutatingTrade, s.m, s.allowRT) {
		metrics.PolicyDenials.WithLabelValues("submit_order").Inc()
		if s.audit != nil {
			s.audit.RecordPolicyBlock(ctx, sess.AccountID, "submit_order", s.m.String())
		}
		simulated := o
		simulated.OrderID = "sim-" + uuid.NewString()
		simulated.Status = adapter.StatusFilled
		simulated.SubmittedAt = time.Now()
		simulated.FilledVolume = o.Volume
		simulated.AvgPrice = o.Price
		sess.RecordOrder(simulated)
		return OrderResult{Order: simulated, Simulated: true}, nil
	}

	placed, err := ad.SubmitOrder(ctx, sess.AccountID, o)
	if err != nil {
		return OrderResult{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "submit_order failed", err)
	}
	sess.RecordOrder(placed)
	return OrderResult{Order: placed, Simulated: false}, nil
}

// CancelOrder is cancel_order, gated the same way as SubmitOrder.
func (s *Service) CancelOrder(ctx context.Context, id tradesession.ID, ad adapter.Adapter, orderID string) (CancelResult, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return CancelResult{}, err
	}
	if orderID == "" {
		return CancelResult{}, gwerrors.New(gwerrors.InvalidArgument, "order_id is required")
	}

	if !s.gate.Allow(policy.OpMutatingTrade, s.m, s.allowRT) {
		metrics.PolicyDenials.WithLabelValues("cancel_order").Inc()
		if s.audit != nil {
			s.audit.RecordPolicyBlock(ctx, sess.AccountID, "cancel_order", s.m.String())
		}
		return CancelResult{Simulated: true}, nil
	}

	if err := ad.CancelOrder(ctx, sess.AccountID, orderID); err != nil {
		return CancelResult{}, gwerrors.Wrap(gwerrors.UpstreamFailure, "cancel_order failed", err)
	}
	return CancelResult{Simulated: false}, nil
}

// QueryPositions, QueryOrders, QueryTrades are reads; never gated.

func (s *Service) QueryPositions(ctx context.Context, id tradesession.ID, ad adapter.Adapter) ([]adapter.Position, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return nil, err
	}
	out, err := ad.QueryPositions(ctx, sess.AccountID)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "query_positions failed", err)
	}
	return out, nil
}

func (s *Service) QueryOrders(ctx context.Context, id tradesession.ID, ad adapter.Adapter) ([]adapter.Order, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return nil, err
	}
	out, err := ad.QueryOrders(ctx, sess.AccountID)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "query_orders failed", err)
	}
	return out, nil
}

func (s *Service) QueryTrades(ctx context.Context, id tradesession.ID, ad adapter.Adapter) ([]adapter.Trade, error) {
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		return nil, err
	}
	out, err := ad.QueryTrades(ctx, sess.AccountID)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.UpstreamFailure, "query_trades failed", err)
	}
	return out, nil
}

package rpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
)

// --- Health ---

type healthServer struct{}

func (s *healthServer) check(ctx context.Context, req *HealthCheckRequest) (*HealthCheckResponse, error) {
	return &HealthCheckResponse{Status: okStatus(), Serving: "SERVING"}, nil
}

var healthServiceDesc = grpc.ServiceDesc{
	ServiceName: "gateway.Health",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: healthCheckHandler},
		{MethodName: "Watch", Handler: healthCheckHandler}, // streaming Watch degrades to one-shot Check (spec.md supplement)
	},
}

func healthCheckHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(HealthCheckRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*healthServer).check(ctx, req)
}

// --- DataService ---
//
// Representative subset of the catalogue: MarketData, SectorList, the
// subscription lifecycle pair. Every other Data Service operation follows
// the identical dec→call service→wrap-Status shape; spec.md §9 asks that
// business logic never duplicate across surfaces, which is exactly what
// this thin handler layer preserves.

type dataServer struct {
	deps Deps
}

func (s *dataServer) marketData(ctx context.Context, req *MarketDataRequest) (*MarketDataResponse, error) {
	bars, err := s.deps.Data.MarketData(ctx, req.StockCodes, req.StartDate, req.EndDate, req.Period, req.Fields, req.AdjustType)
	if err != nil {
		return nil, statusFor(err)
	}
	return &MarketDataResponse{Status: okStatus(), Bars: bars}, nil
}

func (s *dataServer) sectorList(ctx context.Context, _ *SectorListRequest) (*SectorListResponse, error) {
	sectors, err := s.deps.Data.SectorList(ctx)
	if err != nil {
		return nil, statusFor(err)
	}
	return &SectorListResponse{Status: okStatus(), Sectors: sectors}, nil
}

func (s *dataServer) subscribe(ctx context.Context, req *SubscribeRequest) (*SubscribeResponse, error) {
	id, err := s.deps.Data.Subscribe(req.Symbols, req.AdjustType, req.SubscriptionType)
	if err != nil {
		return nil, statusFor(err)
	}
	return &SubscribeResponse{Status: okStatus(), SubscriptionID: string(id)}, nil
}

func (s *dataServer) unsubscribe(ctx context.Context, req *UnsubscribeRequest) (*UnsubscribeResponse, error) {
	if err := s.deps.Data.Unsubscribe(subscription.ID(req.SubscriptionID)); err != nil {
		return nil, statusFor(err)
	}
	return &UnsubscribeResponse{Status: okStatus(), Success: true}, nil
}

var dataServiceDesc = grpc.ServiceDesc{
	ServiceName: "gateway.DataService",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MarketData", Handler: dataMarketDataHandler},
		{MethodName: "SectorList", Handler: dataSectorListHandler},
		{MethodName: "Subscribe", Handler: dataSubscribeHandler},
		{MethodName: "Unsubscribe", Handler: dataUnsubscribeHandler},
	},
}

func dataMarketDataHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(MarketDataRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*dataServer).marketData(ctx, req)
}

func dataSectorListHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(SectorListRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*dataServer).sectorList(ctx, req)
}

func dataSubscribeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(SubscribeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*dataServer).subscribe(ctx, req)
}

func dataUnsubscribeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(UnsubscribeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*dataServer).unsubscribe(ctx, req)
}

// --- TradingService ---

type tradingServer struct {
	deps Deps
}

func (s *tradingServer) connect(ctx context.Context, req *ConnectRequest) (*ConnectResponse, error) {
	acctType, ok := adapter.ParseAccountType(req.AccountType)
	if !ok {
		return nil, statusFor(gwerrors.New(gwerrors.InvalidArgument, "account_type must be one of stock, futures, margin"))
	}
	id, err := s.deps.Trading.Connect(ctx, req.AccountID, req.Password, acctType)
	if err != nil {
		return nil, statusFor(err)
	}
	snap, err := s.deps.Trading.GetAccountInfo(ctx, id, s.deps.Adapter)
	if err != nil {
		return nil, statusFor(err)
	}
	return &ConnectResponse{Status: okStatus(), SessionID: string(id), AccountInfo: snap}, nil
}

func (s *tradingServer) submitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	side, ok := adapter.ParseOrderSide(req.Side)
	if !ok {
		return nil, statusFor(gwerrors.New(gwerrors.InvalidArgument, "side must be BUY or SELL"))
	}
	otype, ok := adapter.ParseOrderType(req.OrderType)
	if !ok {
		return nil, statusFor(gwerrors.New(gwerrors.InvalidArgument, "order_type must be LIMIT or MARKET"))
	}
	res, err := s.deps.Trading.SubmitOrder(ctx, tradesession.ID(req.SessionID), s.deps.Adapter, adapter.Order{
		Symbol: req.StockCode, Side: side, Type: otype, Volume: req.Volume, Price: req.Price,
	})
	if err != nil {
		return nil, statusFor(err)
	}
	return &SubmitOrderResponse{Status: okStatus(), OrderID: res.Order.OrderID, Simulated: res.Simulated}, nil
}

func (s *tradingServer) cancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error) {
	res, err := s.deps.Trading.CancelOrder(ctx, tradesession.ID(req.SessionID), s.deps.Adapter, req.OrderID)
	if err != nil {
		return nil, statusFor(err)
	}
	return &CancelOrderResponse{Status: okStatus(), Simulated: res.Simulated}, nil
}

var tradingServiceDesc = grpc.ServiceDesc{
	ServiceName: "gateway.TradingService",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Connect", Handler: tradingConnectHandler},
		{MethodName: "SubmitOrder", Handler: tradingSubmitOrderHandler},
		{MethodName: "CancelOrder", Handler: tradingCancelOrderHandler},
	},
}

func tradingConnectHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ConnectRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*tradingServer).connect(ctx, req)
}

func tradingSubmitOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(SubmitOrderRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*tradingServer).submitOrder(ctx, req)
}

func tradingCancelOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(CancelOrderRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*tradingServer).cancelOrder(ctx, req)
}

// Package lifecycle implements cold start and graceful shutdown (spec.md
// §4.8): wiring every component in dependency order, bringing up both
// wire surfaces, and tearing them down in the reverse order on signal.
package lifecycle

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/config"
	"github.com/ndrandal/quant-gateway/internal/dataservice"
	"github.com/ndrandal/quant-gateway/internal/dispatch/httpapi"
	"github.com/ndrandal/quant-gateway/internal/dispatch/rpcapi"
	"github.com/ndrandal/quant-gateway/internal/mode"
	"github.com/ndrandal/quant-gateway/internal/policy"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
	"github.com/ndrandal/quant-gateway/internal/tradingservice"
)

// shutdownGrace bounds how long shutdown waits for in-flight request-reply
// calls before exiting anyway (spec.md §4.8).
const shutdownGrace = 10 * time.Second

// Gateway owns every long-lived component built during Start and torn down
// during Stop.
type Gateway struct {
	cfg *config.Config
	log *zap.SugaredLogger

	ad        adapter.Adapter
	sessions  *tradesession.Registry
	subs      *subscription.Manager
	auditSt   *audit.Store
	sweepStop context.CancelFunc

	httpSrv   *http.Server
	httpLis   net.Listener
	rpcLis    net.Listener
	rpcCancel context.CancelFunc
	rpcDone   chan struct{}
}

// httpListenerAddr returns the bound HTTP address, useful in tests where
// port 0 asks the OS to pick one.
func (gw *Gateway) httpListenerAddr() string {
	if gw.httpLis == nil {
		return ""
	}
	return gw.httpLis.Addr().String()
}

// Start wires every component in the order spec.md §4.8 prescribes: config
// (already loaded) → adapter → registry/policy/subscription manager →
// services → both surfaces → ready.
func Start(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Gateway, error) {
	gw := &Gateway{cfg: cfg, log: log}

	gw.ad = buildAdapter(cfg.App.Mode)
	gw.sessions = tradesession.New(gw.ad)

	caps := subscription.Caps{
		MaxSubs:          cfg.Upstream.MaxSubs,
		QueueDepth:       cfg.Upstream.QueueDepth,
		HeartbeatTimeout: cfg.Upstream.HeartbeatTimeout,
		FirehoseEnabled:  cfg.Upstream.FirehoseEnabled,
	}
	gw.subs = subscription.New(gw.ad, cfg.App.Mode, caps, log)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	gw.sweepStop = cancelSweep
	go runIdleSweep(sweepCtx, gw.subs, cfg.Upstream.IdleSweepInterval)

	if cfg.Upstream.AuditMongoURI != "" {
		st, err := audit.NewStore(ctx, cfg.Upstream.AuditMongoURI, log)
		if err != nil {
			log.Warnw("audit store unavailable, continuing without security audit logging", "error", err)
		} else {
			if err := st.Migrate(ctx); err != nil {
				log.Warnw("audit index setup failed", "error", err)
			}
			go audit.RunRetention(sweepCtx, st, cfg.Upstream.AuditRetentionDays)
			gw.auditSt = st
		}
	}

	dataSvc := dataservice.New(gw.ad, gw.subs, gw.auditSt)
	tradingSvc := tradingservice.New(gw.sessions, policy.New(), cfg.App.Mode, cfg.App.AllowRealTrading, gw.auditSt)

	if err := gw.startHTTP(dataSvc, tradingSvc); err != nil {
		return nil, err
	}
	if err := gw.startRPC(dataSvc, tradingSvc); err != nil {
		return nil, err
	}

	log.Infow("gateway ready", "mode", cfg.App.Mode, "http_addr", gw.httpSrv.Addr, "rpc_addr", gw.rpcLis.Addr())
	return gw, nil
}

func buildAdapter(m mode.Mode) adapter.Adapter {
	switch m {
	case mode.Mock:
		return adapter.NewSimulation(time.Now().UnixNano())
	case mode.Dev:
		return adapter.NewReadLive(nil)
	default: // mode.Prod
		return adapter.NewLive(nil)
	}
}

func runIdleSweep(ctx context.Context, subs *subscription.Manager, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			subs.SweepIdle()
		}
	}
}

func (gw *Gateway) startHTTP(dataSvc *dataservice.Service, tradingSvc *tradingservice.Service) error {
	router := httpapi.NewRouter(httpapi.Deps{
		Data:    dataSvc,
		Trading: tradingSvc,
		Adapter: gw.ad,
		Subs:    gw.subs,
		Audit:   gw.auditSt,
		Log:     gw.log,
		StartAt: time.Now(),
	}, gw.cfg.Security.Tokens, gw.cfg.CORS.AllowedOrigins, gw.cfg.CORS.AllowedMethods)

	addr := fmt.Sprintf("%s:%d", gw.cfg.HTTP.Host, gw.cfg.HTTP.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", addr, err)
	}
	gw.httpLis = lis
	gw.httpSrv = &http.Server{Handler: router}
	go func() {
		if err := gw.httpSrv.Serve(lis); err != nil && err != http.ErrServerClosed {
			gw.log.Errorw("http server stopped", "error", err)
		}
	}()
	return nil
}

func (gw *Gateway) startRPC(dataSvc *dataservice.Service, tradingSvc *tradingservice.Service) error {
	addr := fmt.Sprintf("%s:%d", gw.cfg.RPC.Host, gw.cfg.RPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen rpc %s: %w", addr, err)
	}
	gw.rpcLis = lis

	srv := rpcapi.NewServer(rpcapi.Deps{
		Data:    dataSvc,
		Trading: tradingSvc,
		Adapter: gw.ad,
		Subs:    gw.subs,
		Audit:   gw.auditSt,
		Log:     gw.log,
	}, gw.cfg.Security.Tokens)

	rpcCtx, cancel := context.WithCancel(context.Background())
	gw.rpcCancel = cancel
	gw.rpcDone = make(chan struct{})
	go func() {
		defer close(gw.rpcDone)
		if err := rpcapi.Serve(rpcCtx, srv, lis); err != nil {
			gw.log.Errorw("rpc server stopped", "error", err)
		}
	}()
	return nil
}

// Stop performs graceful shutdown per spec.md §4.8: stop accepting on both
// surfaces, cancel subscription iterators and unsubscribe every live id,
// stop the adapter thread, wait (bounded) for in-flight calls, exit.
func (gw *Gateway) Stop(ctx context.Context) {
	gw.log.Infow("shutdown: stopping new connections")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	if gw.httpSrv != nil {
		_ = gw.httpSrv.Shutdown(shutdownCtx)
	}
	if gw.rpcCancel != nil {
		gw.rpcCancel() // triggers rpcapi.Serve's GracefulStop, which closes the listener
	}

	gw.log.Infow("shutdown: unsubscribing every live subscription")
	for _, desc := range gw.subs.List() {
		_ = gw.subs.Unsubscribe(desc.ID)
	}

	gw.log.Infow("shutdown: disconnecting every live trading session")
	gw.sessions.DisconnectAll(shutdownCtx)

	if gw.sweepStop != nil {
		gw.sweepStop()
	}

	if gw.ad != nil {
		if err := gw.ad.Close(); err != nil {
			gw.log.Warnw("adapter close failed", "error", err)
		}
	}

	if gw.auditSt != nil {
		gw.auditSt.Close(shutdownCtx)
	}

	gw.log.Infow("shutdown complete")
}

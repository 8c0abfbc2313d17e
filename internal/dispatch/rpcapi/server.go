package rpcapi

import (
	"context"
	"crypto/subtle"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/dataservice"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/metrics"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
	"github.com/ndrandal/quant-gateway/internal/tradingservice"
)

const maxMessageSize = 50 * 1024 * 1024 // 50 MiB per spec.md §6

// Deps mirrors httpapi.Deps — the RPC surface calls the identical service
// objects, per spec.md §9 ("do not grow a second copy of business logic
// under the RPC tree").
type Deps struct {
	Data    *dataservice.Service
	Trading *tradingservice.Service
	Adapter adapter.Adapter
	Subs    *subscription.Manager
	Audit   *audit.Store
	Log     *zap.SugaredLogger
}

// NewServer builds the grpc.Server with the JSON codec, auth interceptor,
// keepalive, and the three services of spec.md §6.
func NewServer(deps Deps, tokens []string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.UnaryInterceptor(authInterceptor(tokens, deps.Audit, deps.Log)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	)

	srv.RegisterService(&healthServiceDesc, &healthServer{})
	srv.RegisterService(&dataServiceDesc, &dataServer{deps: deps})
	srv.RegisterService(&tradingServiceDesc, &tradingServer{deps: deps})
	return srv
}

// Serve blocks accepting connections on lis until ctx is cancelled.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()
	select {
	case <-ctx.Done():
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

const authHeaderKey = "authorization"

func authInterceptor(tokens []string, auditStore *audit.Store, log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := authenticatedHandler(ctx, req, info, handler, tokens, auditStore)
		code := codes.OK
		if err != nil {
			code = status.Code(err)
		}
		metrics.RPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		return resp, err
	}
}

func authenticatedHandler(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler, tokens []string, auditStore *audit.Store) (interface{}, error) {
	if info.FullMethod == "/gateway.Health/Check" {
		return handler(ctx, req) // health checks never require auth
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok || len(md.Get(authHeaderKey)) == 0 {
		recordAuthFailure(ctx, auditStore, "missing authorization metadata")
		return nil, status.Error(codes.Unauthenticated, "missing authorization metadata")
	}

	token, ok := stripBearer(md.Get(authHeaderKey)[0])
	if !ok || !tokenAllowed(tokens, token) {
		recordAuthFailure(ctx, auditStore, "invalid token")
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return handler(ctx, req)
}

func recordAuthFailure(ctx context.Context, auditStore *audit.Store, reason string) {
	if auditStore == nil {
		return
	}
	remote := "unknown"
	if p, ok := peerAddr(ctx); ok {
		remote = p
	}
	auditStore.RecordAuthFailure(ctx, "rpc", remote, reason)
}

func stripBearer(v string) (string, bool) {
	const prefix = "Bearer "
	if len(v) <= len(prefix) || v[:len(prefix)] != prefix {
		return "", false
	}
	return v[len(prefix):], true
}

func peerAddr(ctx context.Context) (string, bool) {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "", false
	}
	return p.Addr.String(), true
}

func tokenAllowed(tokens []string, candidate string) bool {
	matched := false
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched
}

// statusFor maps the gateway error taxonomy onto grpc status codes, the
// RPC analogue of httpapi.statusFor (spec.md §4.7).
func statusFor(err error) error {
	if err == nil {
		return nil
	}
	kind := gwerrors.KindOf(err)
	msg := err.Error()
	if ge, ok := err.(*gwerrors.Error); ok {
		msg = ge.Message
	}
	switch kind {
	case gwerrors.AuthMissing, gwerrors.AuthInvalid:
		return status.Error(codes.Unauthenticated, msg)
	case gwerrors.InvalidArgument, gwerrors.EmptySymbols:
		return status.Error(codes.InvalidArgument, msg)
	case gwerrors.FailedPrecondition:
		return status.Error(codes.FailedPrecondition, msg)
	case gwerrors.NotFound:
		return status.Error(codes.NotFound, msg)
	case gwerrors.SubLimit:
		return status.Error(codes.ResourceExhausted, msg)
	case gwerrors.UpstreamFailure:
		return status.Error(codes.Unavailable, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}

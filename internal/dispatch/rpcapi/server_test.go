package rpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/dataservice"
	"github.com/ndrandal/quant-gateway/internal/mode"
	"github.com/ndrandal/quant-gateway/internal/subscription"
)

const bufSize = 1 << 20

func dialBuf(t *testing.T, srv *grpc.Server) (*grpc.ClientConn, func()) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.Dial() }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	require.NoError(t, err)
	return conn, func() { conn.Close(); srv.Stop() }
}

func newTestServer(t *testing.T) *grpc.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	sim := adapter.NewSimulation(1)
	subs := subscription.New(sim, mode.Mock, subscription.Caps{MaxSubs: 10, QueueDepth: 8, HeartbeatTimeout: time.Minute, FirehoseEnabled: true}, log)
	return NewServer(Deps{
		Data: dataservice.New(sim, subs, nil),
		Log:  log,
	}, []string{"t"})
}

func TestHealthCheckNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)
	conn, cleanup := dialBuf(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp HealthCheckResponse
	err := conn.Invoke(ctx, "/gateway.Health/Check", &HealthCheckRequest{}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "SERVING", resp.Serving)
}

func TestMarketDataRejectsMissingAuth(t *testing.T) {
	srv := newTestServer(t)
	conn, cleanup := dialBuf(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp MarketDataResponse
	err := conn.Invoke(ctx, "/gateway.DataService/MarketData", &MarketDataRequest{StockCodes: []string{"NEXO"}}, &resp)
	require.Error(t, err)
}

func TestMarketDataSucceedsWithAuth(t *testing.T) {
	srv := newTestServer(t)
	conn, cleanup := dialBuf(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer t")

	var resp MarketDataResponse
	err := conn.Invoke(ctx, "/gateway.DataService/MarketData",
		&MarketDataRequest{StockCodes: []string{"NEXO"}, StartDate: "20240101", EndDate: "20240102"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status.Code)
}

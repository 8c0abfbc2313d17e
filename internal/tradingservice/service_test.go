package tradingservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/mode"
	"github.com/ndrandal/quant-gateway/internal/policy"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
)

func connected(t *testing.T, sim *adapter.Simulation) (*tradesession.Registry, tradesession.ID) {
	t.Helper()
	reg := tradesession.New(sim)
	id, err := reg.Connect(context.Background(), "acct_1", "pw", adapter.AccountStock)
	require.NoError(t, err)
	return reg, id
}

// In Dev mode without allow_real_trading, submit_order must never reach the
// adapter and must answer with a simulated fill.
func TestSubmitOrderBlockedOutsideProd(t *testing.T) {
	sim := adapter.NewSimulation(1)
	reg, id := connected(t, sim)
	svc := New(reg, policy.New(), mode.Dev, false, nil)

	res, err := svc.SubmitOrder(context.Background(), id, sim, adapter.Order{
		Symbol: "AAA", Side: adapter.SideBuy, Type: adapter.OrderMarket, Volume: 100,
	})
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Equal(t, adapter.StatusFilled, res.Order.Status)

	orders, err := svc.QueryOrders(context.Background(), id, sim)
	require.NoError(t, err)
	assert.Empty(t, orders, "simulated order must never reach the adapter")
}

// Prod mode with allow_real_trading lets submit_order reach the adapter.
func TestSubmitOrderAllowedInProdWithFlag(t *testing.T) {
	sim := adapter.NewSimulation(1)
	reg, id := connected(t, sim)
	svc := New(reg, policy.New(), mode.Prod, true, nil)

	res, err := svc.SubmitOrder(context.Background(), id, sim, adapter.Order{
		Symbol: "AAA", Side: adapter.SideBuy, Type: adapter.OrderMarket, Volume: 100,
	})
	require.NoError(t, err)
	assert.False(t, res.Simulated)
	assert.NotEmpty(t, res.Order.OrderID)
}

func TestCancelOrderBlockedOutsideProd(t *testing.T) {
	sim := adapter.NewSimulation(1)
	reg, id := connected(t, sim)
	svc := New(reg, policy.New(), mode.Dev, false, nil)

	res, err := svc.CancelOrder(context.Background(), id, sim, "whatever")
	require.NoError(t, err)
	assert.True(t, res.Simulated)
}

// GetRiskInfo derives its ratios from the account snapshot rather than a
// separate upstream call, so a fresh connection's cash/position split must
// sum to 1 (all cash, no positions yet).
func TestGetRiskInfoDerivesRatiosFromSnapshot(t *testing.T) {
	sim := adapter.NewSimulation(1)
	reg, id := connected(t, sim)
	svc := New(reg, policy.New(), mode.Dev, false, nil)

	risk, err := svc.GetRiskInfo(context.Background(), id, sim)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, risk.PositionRatio+risk.CashRatio, 0.0001)
	assert.Empty(t, risk.LargestPositionID, "fresh account should have no positions")
}

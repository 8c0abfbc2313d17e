package tradesession

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
)

// P5: connect followed by a session-scoped call succeeds; a bogus id fails
// with FAILED_PRECONDITION; disconnect is idempotent.
func TestConnectLookupDisconnect(t *testing.T) {
	sim := adapter.NewSimulation(1)
	reg := New(sim)

	id, err := reg.Connect(context.Background(), "test_account_001", "pw", adapter.AccountStock)
	require.NoError(t, err)
	assert.True(t, reg.IsConnected(id))

	sess, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, "test_account_001", sess.AccountID)

	_, err = reg.Lookup(ID("bogus"))
	require.Error(t, err)
	assert.Equal(t, gwerrors.FailedPrecondition, gwerrors.KindOf(err))

	require.NoError(t, reg.Disconnect(context.Background(), id))
	assert.False(t, reg.IsConnected(id))
	require.NoError(t, reg.Disconnect(context.Background(), id)) // idempotent
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/dataservice"
	"github.com/ndrandal/quant-gateway/internal/mode"
	"github.com/ndrandal/quant-gateway/internal/policy"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
	"github.com/ndrandal/quant-gateway/internal/tradingservice"
)

const testToken = "test-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop().Sugar()
	sim := adapter.NewSimulation(1)
	subs := subscription.New(sim, mode.Mock, subscription.Caps{MaxSubs: 10, QueueDepth: 8, HeartbeatTimeout: time.Minute, FirehoseEnabled: true}, log)
	sessions := tradesession.New(sim)

	deps := Deps{
		Data:    dataservice.New(sim, subs, nil),
		Trading: tradingservice.New(sessions, policy.New(), mode.Mock, false, nil),
		Adapter: sim,
		Subs:    subs,
		Audit:   nil,
		Log:     log,
		StartAt: time.Now(),
	}
	return NewRouter(deps, []string{testToken}, []string{"*"}, []string{"GET", "POST", "DELETE"})
}

func TestHealthRequiresNoAuth(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/data/sectors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIAcceptsValidToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/data/sectors", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestMarketDataRejectsEmptySymbols(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(marketDataRequest{StockCodes: nil, StartDate: "20240101", EndDate: "20240102"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/data/market", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "EMPTY_SYMBOLS", env.Code)
}

func TestSubscribeThenDescribeRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(subscribeRequest{Symbols: []string{"NEXO"}, AdjustType: "none"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/data/subscription", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	subID := data["subscription_id"].(string)
	require.NotEmpty(t, subID)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/data/subscription/"+subID, nil)
	getReq.Header.Set("Authorization", "Bearer "+testToken)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusOK, getW.Code)
}

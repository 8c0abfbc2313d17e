// Package metrics exposes the gateway's operational counters and gauges
// via prometheus/client_golang, grounded on the manifests of the
// retrieval pack's trading-system repos (go-coffee, cryptorun,
// market-data-simulator-go, and others all declare this dependency).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gateway",
		Subsystem: "subscription",
		Name:      "active_total",
		Help:      "Number of live subscriptions held by the Subscription Manager.",
	})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gateway",
		Subsystem: "subscription",
		Name:      "queue_depth",
		Help:      "Current queue depth for a subscription.",
	}, []string{"subscription_id"})

	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "subscription",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped by the bounded per-subscription queue.",
	}, []string{"subscription_id"})

	FramesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "subscription",
		Name:      "frames_dispatched_total",
		Help:      "Frames handed from the adapter callback thread to the fan-out path.",
	})

	TradeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gateway",
		Subsystem: "trading",
		Name:      "sessions_active",
		Help:      "Live trading sessions in the Session Registry.",
	})

	PolicyDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "policy",
		Name:      "denials_total",
		Help:      "Mutating trade calls refused by the Policy Gate, by operation.",
	}, []string{"operation"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by the dispatch layer, by route and status class.",
	}, []string{"route", "status_class"})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "Binary-RPC requests served by the dispatch layer, by method and status.",
	}, []string{"method", "status"})
)

// Package metrics exposes the service's Prometheus collectors and the /metrics and /healthz handlers.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsPlaced counts admitted predictions.
	BetsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchday_bets_placed_total",
		Help: "Predictions admitted",
	})
	// BetsRejected counts predictions refused by admission control.
	BetsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchday_bets_rejected_total",
		Help: "Predictions rejected by admission control",
	})
	// BetsSettled counts settled predictions by outcome (won, lost).
	BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_bets_settled_total",
		Help: "Predictions settled, by status",
	}, []string{"status"})
	// LedgerAmount sums posted ledger amounts by transaction type.
	LedgerAmount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_ledger_amount_total",
		Help: "Absolute amount posted to the ledger, by transaction type",
	}, []string{"type"})
	// SpinsAwarded counts lucky spins.
	SpinsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchday_spins_awarded_total",
		Help: "Lucky spins awarded",
	})
	// WithdrawalsRequested counts accepted withdrawal requests.
	WithdrawalsRequested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchday_withdrawals_requested_total",
		Help: "Withdrawal requests accepted",
	})
	// FixtureRequests counts upstream fixture API calls by method and result.
	FixtureRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_fixture_requests_total",
		Help: "Upstream fixture API requests, by method and result",
	}, []string{"method", "result"})
	// FixtureCache counts fixture cache lookups by result (hit, miss, error).
	FixtureCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_fixture_cache_total",
		Help: "Fixture cache lookups, by result",
	}, []string{"result"})
	// EventsPublished counts domain events by type and result.
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_events_published_total",
		Help: "Domain events published, by type and result",
	}, []string{"type", "result"})
	// NotificationsSent counts reviewer notifications by kind and result.
	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_notifications_total",
		Help: "Reviewer notifications, by kind and result",
	}, []string{"kind", "result"})
	// HTTPRequests observes API latency by route and status code.
	HTTPRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchday_http_request_duration_seconds",
		Help:    "HTTP request latency, by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		BetsPlaced,
		BetsRejected,
		BetsSettled,
		LedgerAmount,
		SpinsAwarded,
		WithdrawalsRequested,
		FixtureRequests,
		FixtureCache,
		EventsPublished,
		NotificationsSent,
		HTTPRequests,
	)
}

// ObserveLedger records a posted ledger amount.
func ObserveLedger(txType string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	LedgerAmount.WithLabelValues(txType).Add(float64(amount))
}

// HealthFunc reports whether a dependency is usable.
type HealthFunc func(ctx context.Context) error

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Healthz answers "ok" when every check passes and 503 otherwise.
func Healthz(checks ...HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				c.String(http.StatusServiceUnavailable, fmt.Sprintf("unhealthy: %v", err))
				return
			}
		}
		c.String(http.StatusOK, "ok")
	}
}

// Middleware records request latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, fmt.Sprintf("%d", c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

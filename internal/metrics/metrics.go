// Package metrics exposes Prometheus instrumentation for the client's calls
// to the remote store and for local reconciliation events.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every collector registered by this package.
const Namespace = "filmrate_"

var (
	// StoreRequests counts remote store calls by logical operation and outcome
	// ("ok" or an error kind such as "conflict", "unavailable").
	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrate_store_requests_total",
			Help: "Total number of requests issued to the remote store",
		},
		[]string{"operation", "outcome"},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmrate_store_request_duration_seconds",
			Help:    "Duration of remote store requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// StoreBreakerState is the store circuit breaker state: 0 closed,
	// 1 half-open, 2 open.
	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmrate_store_breaker_state",
			Help: "State of the circuit breaker guarding store calls",
		},
	)

	// WatchlistResyncs counts conflict-triggered resyncs.
	WatchlistResyncs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmrate_watchlist_resyncs_total",
			Help: "Total number of watchlist resyncs after a conflict",
		},
	)

	// StaleResponses counts responses discarded because a newer request for
	// the same (user, film) pair had already been issued.
	StaleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmrate_watchlist_stale_responses_total",
			Help: "Total number of watchlist responses discarded as stale",
		},
	)

	ReviewFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrate_review_fetches_total",
			Help: "Total number of per-film review fetches by result",
		},
		[]string{"result"},
	)
)

// ObserveStoreRequest records one remote call.
func ObserveStoreRequest(operation, outcome string, elapsed time.Duration) {
	StoreRequests.WithLabelValues(operation, outcome).Inc()
	StoreRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// WriteText gathers g and writes the families named with Namespace in the
// Prometheus text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

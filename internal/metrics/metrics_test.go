package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStoreRequest(t *testing.T) {
	before := testutil.ToFloat64(StoreRequests.WithLabelValues("films.list", "ok"))

	ObserveStoreRequest("films.list", "ok", 15*time.Millisecond)

	after := testutil.ToFloat64(StoreRequests.WithLabelValues("films.list", "ok"))
	assert.Equal(t, before+1, after)
}

func TestMetricsLint(t *testing.T) {
	WatchlistResyncs.Add(0)
	StaleResponses.Add(0)
	ReviewFetches.WithLabelValues("loaded").Add(0)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"filmrate_store_requests_total",
		"filmrate_watchlist_resyncs_total",
		"filmrate_watchlist_stale_responses_total",
		"filmrate_review_fetches_total",
		"filmrate_store_breaker_state",
	)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestWriteText_OnlyClientFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	own := prometheus.NewCounter(prometheus.CounterOpts{Name: "filmrate_test_total", Help: "test"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "go_other_total", Help: "test"})
	reg.MustRegister(own, other)
	own.Add(3)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, "# TYPE filmrate_test_total counter")
	assert.Contains(t, out, "filmrate_test_total 3")
	assert.NotContains(t, out, "go_other_total")
}

func TestWriteText_DefaultGatherer(t *testing.T) {
	ObserveStoreRequest("films.list", "ok", time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, prometheus.DefaultGatherer))
	assert.Contains(t, buf.String(), `filmrate_store_requests_total{operation="films.list",outcome="ok"}`)
}

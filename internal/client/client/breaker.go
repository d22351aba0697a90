package client

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/metrics"
)

// BreakerSettings tunes the circuit breaker guarding store calls. Only
// ErrUnavailable failures count against the store: a rejection such as a
// conflict or a validation error is a healthy answer.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a
	// probe request through.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings is used unless WithBreaker overrides it.
var DefaultBreakerSettings = BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}

// errBreakerOpen is returned while the breaker rejects calls.
var errBreakerOpen = errors.New("store temporarily unreachable, not retrying yet")

type response struct {
	status int
	data   []byte
}

func newBreaker(s BreakerSettings, logger logging.Logger) *gobreaker.CircuitBreaker[response] {
	const name = "filmrate-store"
	metrics.StoreBreakerState.Set(breakerStateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "store circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.StoreBreakerState.Set(breakerStateValue(to))
		},
	})
}

// rejected reports whether err came from the breaker itself rather than
// from a call it let through.
func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

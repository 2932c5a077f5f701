package reportoftheweek

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"report_explorer/internal/domain"
	"report_explorer/internal/metrics"
)

// Fetcher is anything that can produce the raw upstream payload.
type Fetcher interface {
	ID() string
	Name() string
	FetchRaw(ctx context.Context) (json.RawMessage, error)
}

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// BreakerSource short-circuits upstream calls after repeated failures.
// While open, fetches fail immediately as upstream errors.
type BreakerSource struct {
	next   Fetcher
	cb     *gobreaker.CircuitBreaker[json.RawMessage]
	logger *slog.Logger
}

func NewBreakerSource(next Fetcher, cfg BreakerConfig, logger *slog.Logger) *BreakerSource {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	logger = logger.With("source", next.ID(), "component", "breaker")
	metrics.BreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        next.ID(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Callers cancelling their own request say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
			metrics.BreakerState.Set(stateValue(to))
		},
	})

	return &BreakerSource{next: next, cb: cb, logger: logger}
}

func (b *BreakerSource) ID() string   { return b.next.ID() }
func (b *BreakerSource) Name() string { return b.next.Name() }

func (b *BreakerSource) FetchRaw(ctx context.Context) (json.RawMessage, error) {
	body, err := b.cb.Execute(func() (json.RawMessage, error) {
		return b.next.FetchRaw(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamFetchesTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Upstream(FetchFailedMessage, err)
	}
	return body, err
}

func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

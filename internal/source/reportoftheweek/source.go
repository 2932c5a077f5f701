package reportoftheweek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"report_explorer/internal/domain"
	"report_explorer/internal/metrics"
)

const (
	SourceID   = "reportoftheweek"
	SourceName = "The Report of the Week"

	DefaultBaseURL = "https://www.thereportoftheweekapi.com/api/v1/reports/"

	// FetchFailedMessage is what API consumers see when the upstream answers
	// with a non-success status.
	FetchFailedMessage = "Failed to fetch reports from external API"

	maxBodyBytes = 32 << 20
)

// Config holds reports API configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source reads the full report list from the external reports API.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new reports source.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchRaw returns the upstream payload exactly as received. The payload is
// only checked to be well-formed JSON.
func (s *Source) FetchRaw(ctx context.Context) (json.RawMessage, error) {
	var body json.RawMessage
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		body, err = s.doRequest(ctx)
		if err == nil {
			return body, nil
		}

		if attempt == s.maxAttempts || !retryable(err) {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, domain.Server("", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return nil, err
}

func (s *Source) doRequest(ctx context.Context) (json.RawMessage, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, domain.Server("", fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ReportExplorer/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamFetch("error", time.Since(start))
		return nil, domain.Server("", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamFetch("status", time.Since(start))
		s.logger.Warn("upstream returned non-success status", "status", resp.StatusCode)
		return nil, &statusError{
			code: resp.StatusCode,
			err:  domain.Upstream(FetchFailedMessage, fmt.Errorf("unexpected status: %d", resp.StatusCode)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordUpstreamFetch("error", time.Since(start))
		return nil, domain.Server("", fmt.Errorf("read response: %w", err))
	}

	if !json.Valid(data) {
		metrics.RecordUpstreamFetch("error", time.Since(start))
		return nil, domain.Server("", errors.New("decode response: upstream returned invalid JSON"))
	}

	metrics.RecordUpstreamFetch("ok", time.Since(start))
	s.logger.Debug("fetched reports", "bytes", len(data), "duration", time.Since(start))

	return json.RawMessage(data), nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if s.maxBackoff > 0 && backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

// statusError remembers the upstream status so retries can skip 4xx answers.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

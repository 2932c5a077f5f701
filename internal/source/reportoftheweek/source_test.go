package reportoftheweek

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/suite"

	"report_explorer/internal/domain"
)

type SourceTestSuite struct {
	suite.Suite
	logger *slog.Logger
	hits   atomic.Int32
}

func (s *SourceTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.hits.Store(0)
}

func TestSourceTestSuite(t *testing.T) {
	suite.Run(t, new(SourceTestSuite))
}

func (s *SourceTestSuite) server(status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.Equal("application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *SourceTestSuite) newSource(url string, attempts int) *Source {
	return New(Config{
		BaseURL:        url,
		Timeout:        time.Second,
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, s.logger)
}

func (s *SourceTestSuite) TestFetchRaw_PassesPayloadThrough() {
	payload := `[{"id":1,"title":"Ep1","score":"8/10","url":"http://x"}]`
	srv := s.server(http.StatusOK, payload)

	body, err := s.newSource(srv.URL, 1).FetchRaw(context.Background())

	s.NoError(err)
	s.JSONEq(payload, string(body))
}

func (s *SourceTestSuite) TestFetchRaw_UpstreamStatusIsUpstreamError() {
	srv := s.server(http.StatusInternalServerError, `{"oops":true}`)

	_, err := s.newSource(srv.URL, 1).FetchRaw(context.Background())

	s.Error(err)
	s.Equal(domain.KindUpstream, domain.KindOf(err))
	s.Equal(FetchFailedMessage, domain.MessageOf(err))
	s.Equal(int32(1), s.hits.Load())
}

func (s *SourceTestSuite) TestFetchRaw_InvalidJSONIsServerError() {
	srv := s.server(http.StatusOK, `<html>not json</html>`)

	_, err := s.newSource(srv.URL, 3).FetchRaw(context.Background())

	s.Error(err)
	s.Equal(domain.KindServer, domain.KindOf(err))
	s.Contains(domain.MessageOf(err), "invalid JSON")
	s.Equal(int32(1), s.hits.Load(), "a malformed body is not retried")
}

func (s *SourceTestSuite) TestFetchRaw_NetworkErrorIsServerError() {
	srv := s.server(http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	_, err := s.newSource(url, 1).FetchRaw(context.Background())

	s.Error(err)
	s.Equal(domain.KindServer, domain.KindOf(err))
	s.Contains(domain.MessageOf(err), "execute request")
}

func (s *SourceTestSuite) TestFetchRaw_RetriesServerErrors() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	body, err := s.newSource(srv.URL, 3).FetchRaw(context.Background())

	s.NoError(err)
	s.Equal("[]", string(body))
	s.Equal(int32(3), s.hits.Load())
}

func (s *SourceTestSuite) TestFetchRaw_DoesNotRetryClientErrors() {
	srv := s.server(http.StatusNotFound, `{}`)

	_, err := s.newSource(srv.URL, 3).FetchRaw(context.Background())

	s.Error(err)
	s.Equal(domain.KindUpstream, domain.KindOf(err))
	s.Equal(int32(1), s.hits.Load())
}

func (s *SourceTestSuite) TestCalculateBackoff() {
	src := New(Config{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second}, s.logger)

	s.Equal(time.Second, src.calculateBackoff(1))
	s.Equal(2*time.Second, src.calculateBackoff(2))
	s.Equal(4*time.Second, src.calculateBackoff(3))
	s.Equal(5*time.Second, src.calculateBackoff(4))
}

func (s *SourceTestSuite) TestBreaker_OpensAfterConsecutiveFailures() {
	srv := s.server(http.StatusBadGateway, `{}`)
	breaker := NewBreakerSource(s.newSource(srv.URL, 1), BreakerConfig{
		FailureThreshold: 2,
		Timeout:          time.Minute,
	}, s.logger)

	for i := 0; i < 2; i++ {
		_, err := breaker.FetchRaw(context.Background())
		s.Equal(domain.KindUpstream, domain.KindOf(err))
	}
	s.Equal(gobreaker.StateOpen, breaker.State())

	_, err := breaker.FetchRaw(context.Background())
	s.Error(err)
	s.ErrorIs(err, gobreaker.ErrOpenState)
	s.Equal(domain.KindUpstream, domain.KindOf(err))
	s.Equal(int32(2), s.hits.Load())
}

package explorer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"report_explorer/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	maxResponseBytes = 32 << 20
)

// APIError is a non-success answer from the report explorer API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the report explorer HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// favoritePayload is the POST body. Nil pointers go out as JSON null.
type favoritePayload struct {
	ReportID string  `json:"report_id"`
	Title    string  `json:"title"`
	Score    *string `json:"score"`
	URL      *string `json:"url"`
}

// Reports fetches the report list. A missing or non-array "reports" field
// yields an empty list.
func (c *Client) Reports(ctx context.Context) ([]domain.Report, error) {
	var envelope struct {
		Reports json.RawMessage `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/reports", nil, &envelope); err != nil {
		return nil, err
	}

	items := arrayItems(envelope.Reports)
	reports := make([]domain.Report, 0, len(items))
	for _, item := range items {
		var r domain.Report
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Favorites fetches saved favorites, newest first.
func (c *Client) Favorites(ctx context.Context) ([]domain.Favorite, error) {
	var envelope struct {
		Favorites json.RawMessage `json:"favorites"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &envelope); err != nil {
		return nil, err
	}

	items := arrayItems(envelope.Favorites)
	favorites := make([]domain.Favorite, 0, len(items))
	for _, item := range items {
		var f domain.Favorite
		if err := json.Unmarshal(item, &f); err != nil {
			continue
		}
		favorites = append(favorites, f)
	}
	return favorites, nil
}

func (c *Client) CreateFavorite(ctx context.Context, payload favoritePayload) (*domain.Favorite, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode favorite: %w", err)
	}

	var envelope struct {
		Favorite *domain.Favorite `json:"favorite"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/favorites", body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Favorite, nil
}

func (c *Client) DeleteFavorite(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func arrayItems(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil
	}
	return items
}

// Package explorer holds the client-side logic of the report explorer:
// loading reports, fuzzy filtering, charting and managing favorites.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"report_explorer/internal/domain"
)

// ErrReportNotFound is returned when saving a report that is not in the
// loaded list.
var ErrReportNotFound = errors.New("item not found")

// Operations reported by OpError.
const (
	OpLoadReports   = "load reviews"
	OpSaveFavorite  = "save favorite"
	OpLoadFavorites = "load favorites"
	OpDelete        = "delete favorite"
)

// OpError records which Explorer operation failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

var opHeadlines = map[string]string{
	OpLoadReports:   "Failed to load reviews",
	OpSaveFavorite:  "Save failed",
	OpLoadFavorites: "Failed to load favorites",
	OpDelete:        "Delete failed",
}

// Describe formats err for display, e.g. "Save failed: title is required".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrReportNotFound) {
		return "Item not found"
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		if headline, ok := opHeadlines[opErr.Op]; ok {
			return headline + ": " + opErr.Err.Error()
		}
	}
	return err.Error()
}

// Filter narrows the loaded reviews. A nil MinScore disables the score filter.
type Filter struct {
	Query    string
	MinScore *float64
}

// ParseMinScore reads a minimum score typed by a user. Blank input means no
// score filter.
func ParseMinScore(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("min score %q is not a number", s)
	}
	return &v, nil
}

// Page is what a view shows after a load or a filter.
type Page struct {
	Reviews []Review
	Chart   Chart
}

func newPage(reviews []Review) Page {
	return Page{Reviews: reviews, Chart: NewChart(reviews)}
}

// State is a snapshot of loaded reviews and their search index. A new State
// replaces the old one on every load; a State is never modified.
type State struct {
	Reviews []Review
	Index   *Index
}

func newState(reports []domain.Report) *State {
	reviews := make([]Review, len(reports))
	titles := make([]string, len(reports))
	for i, r := range reports {
		reviews[i] = NewReview(r)
		titles[i] = r.Title
	}
	return &State{Reviews: reviews, Index: NewIndex(titles)}
}

// Explorer owns the current State. Concurrent loads are not ordered: the
// last one to finish wins.
type Explorer struct {
	client *Client

	mu    sync.RWMutex
	state *State
}

func New(client *Client) *Explorer {
	return &Explorer{
		client: client,
		state:  &State{Index: NewIndex(nil)},
	}
}

func (e *Explorer) State() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Explorer) setState(s *State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// LoadReports fetches every report and makes it the current State.
// On failure the previous State is kept.
func (e *Explorer) LoadReports(ctx context.Context) (Page, error) {
	reports, err := e.client.Reports(ctx)
	if err != nil {
		return Page{}, &OpError{Op: OpLoadReports, Err: err}
	}

	state := newState(reports)
	e.setState(state)
	return newPage(state.Reviews), nil
}

// ApplyFilters runs f against the current State without touching the network.
func (e *Explorer) ApplyFilters(f Filter) Page {
	return newPage(Apply(e.State(), f))
}

// Apply filters the reviews of s. The query is matched against the full list,
// then the score filter is applied to the matches.
func Apply(s *State, f Filter) []Review {
	filtered := s.Reviews

	if strings.TrimSpace(f.Query) != "" && len(s.Reviews) > 0 {
		positions := s.Index.Search(f.Query)
		filtered = make([]Review, 0, len(positions))
		for _, p := range positions {
			filtered = append(filtered, s.Reviews[p])
		}
	}

	if f.MinScore != nil {
		kept := make([]Review, 0, len(filtered))
		for _, r := range filtered {
			if r.ScoreNum != nil && float64(*r.ScoreNum) >= *f.MinScore {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}

	return filtered
}

// SaveFavorite stores the loaded report with the given id as a favorite and
// returns the refreshed favorites list.
func (e *Explorer) SaveFavorite(ctx context.Context, reportID string) ([]domain.Favorite, error) {
	review, ok := e.State().find(reportID)
	if !ok {
		return nil, ErrReportNotFound
	}

	payload := favoritePayload{
		ReportID: review.ID.String(),
		Title:    review.DisplayTitle(),
		Score:    optional(review.Score),
		URL:      optional(review.Link()),
	}
	if _, err := e.client.CreateFavorite(ctx, payload); err != nil {
		return nil, &OpError{Op: OpSaveFavorite, Err: err}
	}

	return e.LoadFavorites(ctx)
}

func (e *Explorer) LoadFavorites(ctx context.Context) ([]domain.Favorite, error) {
	favorites, err := e.client.Favorites(ctx)
	if err != nil {
		return nil, &OpError{Op: OpLoadFavorites, Err: err}
	}
	return favorites, nil
}

// DeleteFavorite removes a favorite and returns the refreshed list.
func (e *Explorer) DeleteFavorite(ctx context.Context, id int64) ([]domain.Favorite, error) {
	if err := e.client.DeleteFavorite(ctx, id); err != nil {
		return nil, &OpError{Op: OpDelete, Err: err}
	}
	return e.LoadFavorites(ctx)
}

func (s *State) find(reportID string) (Review, bool) {
	for _, r := range s.Reviews {
		if r.ID.String() == reportID {
			return r, true
		}
	}
	return Review{}, false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

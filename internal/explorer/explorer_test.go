package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// fakeAPI serves canned responses and records favorite posts.
type fakeAPI struct {
	mu sync.Mutex

	reportsStatus int
	reportsBody   string
	favoritesBody string
	createStatus  int
	createBody    string
	deleteStatus  int

	posted  []map[string]any
	deleted []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/reports":
		w.WriteHeader(f.reportsStatus)
		_, _ = io.WriteString(w, f.reportsBody)
	case r.Method == http.MethodGet && r.URL.Path == "/api/favorites":
		_, _ = io.WriteString(w, f.favoritesBody)
	case r.Method == http.MethodPost && r.URL.Path == "/api/favorites":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.posted = append(f.posted, body)
		w.WriteHeader(f.createStatus)
		_, _ = io.WriteString(w, f.createBody)
	case r.Method == http.MethodDelete && len(r.URL.Path) > len("/api/favorites/"):
		f.deleted = append(f.deleted, r.URL.Path[len("/api/favorites/"):])
		w.WriteHeader(f.deleteStatus)
		_, _ = io.WriteString(w, `{"ok":true}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Not found"}`)
	}
}

func (f *fakeAPI) update(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) snapshot() (posted []map[string]any, deleted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.posted...), append([]string(nil), f.deleted...)
}

type ExplorerTestSuite struct {
	suite.Suite
	api      *fakeAPI
	server   *httptest.Server
	explorer *Explorer
	ctx      context.Context
}

func (s *ExplorerTestSuite) SetupTest() {
	s.api = &fakeAPI{
		reportsStatus: http.StatusOK,
		reportsBody: `{"reports":[
			{"id":1,"title":"Pizza Review","score":"8/10","video_url":"http://v/1"},
			{"id":"b2","title":"","score":"","url":"http://u/2"},
			{"id":3,"title":"Burger Review","score":"great"}
		]}`,
		favoritesBody: `{"favorites":[]}`,
		createStatus:  http.StatusCreated,
		createBody:    `{"favorite":{"id":1,"title":"Pizza Review","created_at":"2024-03-01T12:00:00Z"}}`,
		deleteStatus:  http.StatusOK,
	}
	s.server = httptest.NewServer(s.api)
	s.explorer = New(NewClient(s.server.URL, 5*time.Second))
	s.ctx = context.Background()
}

func (s *ExplorerTestSuite) TearDownTest() {
	s.server.Close()
}

func TestExplorerTestSuite(t *testing.T) {
	suite.Run(t, new(ExplorerTestSuite))
}

func (s *ExplorerTestSuite) TestLoadReports() {
	page, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(page.Reviews, 3)
	s.Equal("1", page.Reviews[0].ID.String())
	s.Require().NotNil(page.Reviews[0].ScoreNum)
	s.Equal(8, *page.Reviews[0].ScoreNum)
	s.Nil(page.Reviews[1].ScoreNum)
	s.Nil(page.Reviews[2].ScoreNum)

	s.Equal([]Bar{{"Pizza Review", 8}, {"Item", 0}, {"Burger Review", 0}}, page.Chart.Bars)
	s.Same(s.explorer.State(), s.explorer.State())
	s.Len(s.explorer.State().Reviews, 3)
}

func (s *ExplorerTestSuite) TestLoadReports_ReplacesState() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)
	before := s.explorer.State()

	s.api.update(func(f *fakeAPI) { f.reportsBody = `{"reports":[{"id":9,"title":"Only"}]}` })
	_, err = s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)

	s.NotSame(before, s.explorer.State())
	s.Len(before.Reviews, 3)
	s.Len(s.explorer.State().Reviews, 1)
}

func (s *ExplorerTestSuite) TestLoadReports_ToleratesMissingArray() {
	for _, body := range []string{`{}`, `{"reports":null}`, `{"reports":{"a":1}}`, `{"reports":"x"}`} {
		s.api.update(func(f *fakeAPI) { f.reportsBody = body })

		page, err := s.explorer.LoadReports(s.ctx)

		s.NoError(err, body)
		s.Empty(page.Reviews, body)
		s.Empty(page.Chart.Bars, body)
	}
}

func (s *ExplorerTestSuite) TestLoadReports_UpstreamFailure() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)

	s.api.update(func(f *fakeAPI) {
		f.reportsStatus = http.StatusBadGateway
		f.reportsBody = `{"error":"Failed to fetch reports from external API"}`
	})

	_, err = s.explorer.LoadReports(s.ctx)

	s.EqualError(err, "load reviews: Failed to fetch reports from external API")
	s.Equal("Failed to load reviews: Failed to fetch reports from external API", Describe(err))
	var apiErr *APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(http.StatusBadGateway, apiErr.Status)
	s.Len(s.explorer.State().Reviews, 3, "failed load keeps the previous state")
}

func (s *ExplorerTestSuite) TestLoadReports_FallsBackToStatusText() {
	s.api.update(func(f *fakeAPI) {
		f.reportsStatus = http.StatusInternalServerError
		f.reportsBody = `not json`
	})

	_, err := s.explorer.LoadReports(s.ctx)

	s.EqualError(err, "load reviews: Internal Server Error")
	s.Equal("Failed to load reviews: Internal Server Error", Describe(err))
}

func (s *ExplorerTestSuite) TestApplyFilters_BeforeLoad() {
	page := s.explorer.ApplyFilters(Filter{Query: "pizza"})

	s.Empty(page.Reviews)
}

func (s *ExplorerTestSuite) TestApplyFilters_DoesNotMutateState() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)

	minScore := 8.0
	page := s.explorer.ApplyFilters(Filter{Query: "review", MinScore: &minScore})

	s.Require().Len(page.Reviews, 1)
	s.Equal("Pizza Review", page.Reviews[0].Title)
	s.Len(s.explorer.State().Reviews, 3)
}

func (s *ExplorerTestSuite) TestSaveFavorite_BuildsPayload() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)
	s.api.update(func(f *fakeAPI) {
		f.favoritesBody = `{"favorites":[{"id":1,"title":"Pizza Review","created_at":"2024-03-01T12:00:00Z"}]}`
	})

	favorites, err := s.explorer.SaveFavorite(s.ctx, "1")
	s.Require().NoError(err)
	s.Len(favorites, 1)

	_, err = s.explorer.SaveFavorite(s.ctx, "b2")
	s.Require().NoError(err)

	posted, _ := s.api.snapshot()
	s.Require().Len(posted, 2)
	s.Equal(map[string]any{
		"report_id": "1",
		"title":     "Pizza Review",
		"score":     "8/10",
		"url":       "http://v/1",
	}, posted[0])
	s.Equal(map[string]any{
		"report_id": "b2",
		"title":     "Untitled",
		"score":     nil,
		"url":       "http://u/2",
	}, posted[1])
}

func (s *ExplorerTestSuite) TestSaveFavorite_UnknownID() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)

	_, err = s.explorer.SaveFavorite(s.ctx, "nope")

	s.ErrorIs(err, ErrReportNotFound)
	s.Equal("item not found", err.Error())
	s.Equal("Item not found", Describe(err))
	posted, _ := s.api.snapshot()
	s.Empty(posted)
}

func (s *ExplorerTestSuite) TestSaveFavorite_ServerRejects() {
	_, err := s.explorer.LoadReports(s.ctx)
	s.Require().NoError(err)
	s.api.update(func(f *fakeAPI) {
		f.createStatus = http.StatusInternalServerError
		f.createBody = `{"error":"relation \"favorites\" does not exist"}`
	})

	_, err = s.explorer.SaveFavorite(s.ctx, "1")

	s.EqualError(err, `save favorite: relation "favorites" does not exist`)
	s.Equal(`Save failed: relation "favorites" does not exist`, Describe(err))
}

func (s *ExplorerTestSuite) TestLoadFavorites_ToleratesMissingArray() {
	s.api.update(func(f *fakeAPI) { f.favoritesBody = `{"ok":true}` })

	favorites, err := s.explorer.LoadFavorites(s.ctx)

	s.NoError(err)
	s.NotNil(favorites)
	s.Empty(favorites)
}

func (s *ExplorerTestSuite) TestDeleteFavorite() {
	favorites, err := s.explorer.DeleteFavorite(s.ctx, 42)

	s.NoError(err)
	s.Empty(favorites)
	_, deleted := s.api.snapshot()
	s.Equal([]string{"42"}, deleted)
}

func (s *ExplorerTestSuite) TestDeleteFavorite_Failure() {
	s.api.update(func(f *fakeAPI) { f.deleteStatus = http.StatusBadRequest })

	_, err := s.explorer.DeleteFavorite(s.ctx, 42)

	s.Error(err)
	var apiErr *APIError
	s.True(errors.As(err, &apiErr))
	s.Equal("Delete failed: Bad Request", Describe(err))
}

func (s *ExplorerTestSuite) TestDescribe_PassesOtherErrorsThrough() {
	s.Equal("", Describe(nil))
	s.Equal("boom", Describe(errors.New("boom")))
}

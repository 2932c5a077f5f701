package explorer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report_explorer/internal/domain"
	"report_explorer/internal/testutil"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;", EscapeHTML(`<script>alert("x")</script>`))
	assert.Equal(t, "Tom &amp; Jerry&#039;s", EscapeHTML("Tom & Jerry's"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
}

func TestRenderReviews_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	reviews := []Review{NewReview(domain.Report{ID: "1", Title: "<script>alert(1)</script>", Score: "9/10"})}

	require.NoError(t, RenderReviews(&buf, reviews))

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "9/10")
}

func TestRenderReviews_Fallbacks(t *testing.T) {
	var buf bytes.Buffer
	reviews := []Review{NewReview(domain.Report{ID: "7"})}

	require.NoError(t, RenderReviews(&buf, reviews))

	out := buf.String()
	assert.Contains(t, out, "Untitled")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, `href="#"`)
	assert.Contains(t, out, `data-save="7"`)
}

func TestRenderReviews_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderReviews(&buf, nil))

	assert.Contains(t, buf.String(), "No results.")
}

func TestRenderFavorites(t *testing.T) {
	var buf bytes.Buffer
	favorites := []domain.Favorite{
		{ID: 1, Title: "With link", Score: testutil.Ptr("8/10"), URL: testutil.Ptr("http://x")},
		{ID: 2, Title: "No link"},
	}

	require.NoError(t, RenderFavorites(&buf, favorites))

	out := buf.String()
	assert.Contains(t, out, `href="http://x"`)
	assert.Contains(t, out, "8/10")
	assert.Contains(t, out, "N/A")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(">Open<")))

	buf.Reset()
	require.NoError(t, RenderFavorites(&buf, nil))
	assert.Contains(t, buf.String(), "No favorites yet.")
}

func TestChart_FirstTenOnly(t *testing.T) {
	reviews := make([]Review, 0, 12)
	for i := 0; i < 12; i++ {
		reviews = append(reviews, NewReview(domain.Report{Title: "t", Score: "5/10"}))
	}

	c := NewChart(reviews)

	assert.Len(t, c.Bars, ChartLimit)
	assert.Equal(t, 10, c.Max)
}

func TestChartSVG_EscapesLabels(t *testing.T) {
	c := NewChart([]Review{NewReview(domain.Report{Title: `<b>"Big"</b>`, Score: "7/10"})})

	svg := string(ChartSVG(c))

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "&lt;b&gt;&quot;Big&quot;&lt;/b&gt;")
	assert.NotContains(t, svg, "<b>")
}

func TestChartSVG_HugeScoreStaysInPlot(t *testing.T) {
	c := NewChart([]Review{
		NewReview(domain.Report{Title: "Huge", Score: "300000000000000000/10"}),
		NewReview(domain.Report{Title: "Small", Score: "8/10"}),
	})

	svg := string(ChartSVG(c))

	assert.NotContains(t, svg, `height="-`)
	assert.NotContains(t, svg, `y="-`)
	assert.Contains(t, svg, `height="208"`)
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	reviews := []Review{NewReview(domain.Report{ID: "1", Title: "Pizza", Score: "8/10"})}

	err := RenderPage(&buf, PageData{
		Query:   "pi<z>",
		Reviews: reviews,
		Chart:   NewChart(reviews),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "pi&lt;z&gt;")
	assert.Contains(t, out, "No favorites yet.")
}

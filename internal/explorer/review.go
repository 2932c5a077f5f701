package explorer

import (
	"regexp"
	"strconv"

	"report_explorer/internal/domain"
)

var scorePattern = regexp.MustCompile(`(\d+)\s*/\s*10`)

// Review is a report with its score parsed for filtering and charting.
type Review struct {
	domain.Report
	ScoreNum *int `json:"score_num"`
}

func NewReview(r domain.Report) Review {
	return Review{Report: r, ScoreNum: ScoreToNumber(r.Score)}
}

// ScoreToNumber extracts N from the first "N/10" in s. It returns nil when
// there is no such fragment.
func ScoreToNumber(s string) *int {
	m := scorePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// DisplayTitle is the title shown on cards.
func (r Review) DisplayTitle() string {
	if r.Title == "" {
		return "Untitled"
	}
	return r.Title
}

func (r Review) DisplayScore() string {
	if r.Score == "" {
		return "N/A"
	}
	return r.Score
}

package explorer

// ChartLimit is how many reviews the score chart shows.
const ChartLimit = 10

const chartMax = 10

// Bar is one column of the score chart.
type Bar struct {
	Label string
	Value int
}

// Chart plots the scores of the first ChartLimit reviews. Max is the top of
// the value axis: 10, or higher if a score exceeds it.
type Chart struct {
	Bars []Bar
	Max  int
}

func NewChart(reviews []Review) Chart {
	n := min(len(reviews), ChartLimit)

	c := Chart{Bars: make([]Bar, 0, n), Max: chartMax}
	for _, r := range reviews[:n] {
		b := Bar{Label: r.Title, Value: 0}
		if b.Label == "" {
			b.Label = "Item"
		}
		if r.ScoreNum != nil {
			b.Value = *r.ScoreNum
		}
		if b.Value > c.Max {
			c.Max = b.Value
		}
		c.Bars = append(c.Bars, b)
	}
	return c
}

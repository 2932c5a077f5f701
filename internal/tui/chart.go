package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"report_explorer/internal/explorer"
)

// chartHeight is the number of lines renderChart uses for a full chart.
const chartHeight = explorer.ChartLimit + 1

const (
	labelWidth   = 24
	maxBarWidth  = 40
	defaultWidth = 80
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	labelStyle = lipgloss.NewStyle().Width(labelWidth)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// renderChart draws c as horizontal bars scaled to 0..c.Max.
func renderChart(c explorer.Chart, width int) string {
	if len(c.Bars) == 0 {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	barSpace := min(max(width-labelWidth-6, 10), maxBarWidth)

	lines := []string{titleStyle.Render("Review Scores")}
	for _, bar := range c.Bars {
		n := 0
		if c.Max > 0 {
			n = min(max(int(float64(bar.Value)/float64(c.Max)*float64(barSpace)), 0), barSpace)
		}
		lines = append(lines, fmt.Sprintf("%s %s %d",
			labelStyle.Render(truncate(bar.Label, labelWidth-1)),
			barStyle.Render(strings.Repeat("█", n)),
			bar.Value,
		))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

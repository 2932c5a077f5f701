package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"report_explorer/internal/domain"
	"report_explorer/internal/explorer"
)

const requestTimeout = 30 * time.Second

type tab int

const (
	tabReports tab = iota
	tabFavorites
)

type field int

const (
	fieldNone field = iota
	fieldQuery
	fieldMinScore
)

type model struct {
	explorer *explorer.Explorer

	queryInput    textinput.Model
	minScoreInput textinput.Model
	editing       field

	reviews   list.Model
	favorites list.Model
	chart     explorer.Chart
	active    tab

	status  string
	err     error
	loading bool
	width   int
	height  int

	open func(url string) error
}

type reviewItem struct {
	review explorer.Review
}

func (r reviewItem) Title() string {
	return r.review.DisplayTitle()
}

func (r reviewItem) Description() string {
	desc := "Score: " + r.review.DisplayScore()
	if link := r.review.Link(); link != "" {
		desc += "  " + link
	}
	return desc
}

func (r reviewItem) FilterValue() string {
	return r.review.Title
}

type favoriteItem struct {
	favorite domain.Favorite
}

func (f favoriteItem) Title() string {
	return f.favorite.Title
}

func (f favoriteItem) Description() string {
	score := "N/A"
	if f.favorite.Score != nil {
		score = *f.favorite.Score
	}
	desc := "Score: " + score
	if f.favorite.URL != nil {
		desc += "  " + *f.favorite.URL
	}
	return desc
}

func (f favoriteItem) FilterValue() string {
	return f.favorite.Title
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

func initialModel(ex *explorer.Explorer) model {
	query := textinput.New()
	query.Placeholder = "Search titles..."
	query.CharLimit = 256
	query.Width = 40

	minScore := textinput.New()
	minScore.Placeholder = "min score"
	minScore.CharLimit = 4
	minScore.Width = 10

	return model{
		explorer:      ex,
		queryInput:    query,
		minScoreInput: minScore,
		reviews:       newList("Reviews"),
		favorites:     newList("Favorites"),
		status:        "Press l to load reviews.",
		open:          openBrowser,
	}
}

type reportsLoadedMsg struct {
	page explorer.Page
	err  error
}

type favoritesMsg struct {
	favorites []domain.Favorite
	note      string
	err       error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) loadReports() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	page, err := m.explorer.LoadReports(ctx)
	return reportsLoadedMsg{page: page, err: err}
}

func (m model) loadFavorites() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	favorites, err := m.explorer.LoadFavorites(ctx)
	return favoritesMsg{favorites: favorites, err: err}
}

func (m model) saveFavorite(reportID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		favorites, err := m.explorer.SaveFavorite(ctx, reportID)
		return favoritesMsg{favorites: favorites, note: "Saved.", err: err}
	}
}

func (m model) deleteFavorite(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		favorites, err := m.explorer.DeleteFavorite(ctx, id)
		return favoritesMsg{favorites: favorites, note: "Deleted.", err: err}
	}
}

// applyFilters runs the current inputs against the loaded reviews.
func (m model) applyFilters() (model, error) {
	minScore, err := explorer.ParseMinScore(m.minScoreInput.Value())
	if err != nil {
		return m, err
	}
	page := m.explorer.ApplyFilters(explorer.Filter{
		Query:    m.queryInput.Value(),
		MinScore: minScore,
	})
	m.showPage(page)
	return m, nil
}

func (m *model) showPage(page explorer.Page) {
	items := make([]list.Item, 0, len(page.Reviews))
	for _, r := range page.Reviews {
		items = append(items, reviewItem{review: r})
	}
	m.reviews.SetItems(items)
	m.reviews.Select(0)
	m.chart = page.Chart
	if len(items) == 0 {
		m.status = "No results."
	} else {
		m.status = fmt.Sprintf("%d reviews.", len(items))
	}
}

func (m *model) showFavorites(favorites []domain.Favorite) {
	items := make([]list.Item, 0, len(favorites))
	for _, f := range favorites {
		items = append(items, favoriteItem{favorite: f})
	}
	m.favorites.SetItems(items)
	if len(items) == 0 {
		m.status = "No favorites yet."
	} else {
		m.status = fmt.Sprintf("%d favorites.", len(items))
	}
}

func (m *model) stopEditing() {
	m.editing = fieldNone
	m.queryInput.Blur()
	m.minScoreInput.Blur()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing != fieldNone {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := max(msg.Height-chartHeight-8, 5)
		m.reviews.SetSize(msg.Width, listHeight)
		m.favorites.SetSize(msg.Width, listHeight)

	case reportsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.showPage(msg.page)

	case favoritesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.showFavorites(msg.favorites)
		if msg.note != "" && len(msg.favorites) > 0 {
			m.status = msg.note
		}
	}

	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return m, nil
	case "enter":
		m.stopEditing()
		next, err := m.applyFilters()
		if err != nil {
			m.err = err
			return m, nil
		}
		next.err = nil
		return next, nil
	case "tab":
		if m.editing == fieldQuery {
			m.editing = fieldMinScore
			m.queryInput.Blur()
			m.minScoreInput.Focus()
		} else {
			m.editing = fieldQuery
			m.minScoreInput.Blur()
			m.queryInput.Focus()
		}
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	if m.editing == fieldQuery {
		m.queryInput, cmd = m.queryInput.Update(msg)
	} else {
		m.minScoreInput, cmd = m.minScoreInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "l":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.status = "Loading..."
		return m, m.loadReports
	case "f":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.active = tabFavorites
		m.status = "Loading favorites..."
		return m, m.loadFavorites
	case "tab":
		if m.active == tabReports {
			m.active = tabFavorites
		} else {
			m.active = tabReports
		}
		return m, nil
	case "/":
		m.active = tabReports
		m.editing = fieldQuery
		m.queryInput.Focus()
		return m, textinput.Blink
	case "m":
		m.active = tabReports
		m.editing = fieldMinScore
		m.minScoreInput.Focus()
		return m, textinput.Blink
	case "enter":
		if m.active != tabReports {
			return m, nil
		}
		next, err := m.applyFilters()
		if err != nil {
			m.err = err
			return m, nil
		}
		next.err = nil
		return next, nil
	case "s":
		if m.active != tabReports {
			return m, nil
		}
		item, ok := m.reviews.SelectedItem().(reviewItem)
		if !ok {
			return m, nil
		}
		m.status = "Saving..."
		return m, m.saveFavorite(item.review.ID.String())
	case "x":
		if m.active != tabFavorites {
			return m, nil
		}
		item, ok := m.favorites.SelectedItem().(favoriteItem)
		if !ok {
			return m, nil
		}
		m.status = "Deleting..."
		return m, m.deleteFavorite(item.favorite.ID)
	case "o":
		if url := m.selectedURL(); url != "" {
			if err := m.open(url); err != nil {
				m.err = fmt.Errorf("open %s: %w", url, err)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.active == tabReports {
		m.reviews, cmd = m.reviews.Update(msg)
	} else {
		m.favorites, cmd = m.favorites.Update(msg)
	}
	return m, cmd
}

func (m model) selectedURL() string {
	if m.active == tabReports {
		if item, ok := m.reviews.SelectedItem().(reviewItem); ok {
			return item.review.Link()
		}
		return ""
	}
	if item, ok := m.favorites.SelectedItem().(favoriteItem); ok && item.favorite.URL != nil {
		return *item.favorite.URL
	}
	return ""
}

var (
	activeTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Underline(true)

	inactiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

func (m model) View() string {
	var b strings.Builder

	reportsLabel, favoritesLabel := inactiveTab, inactiveTab
	if m.active == tabReports {
		reportsLabel = activeTab
	} else {
		favoritesLabel = activeTab
	}
	b.WriteString(reportsLabel.Render("Reviews"))
	b.WriteString("  ")
	b.WriteString(favoritesLabel.Render("Favorites"))
	b.WriteString("\n")

	if m.active == tabReports {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			inputStyle.Render(m.queryInput.View()),
			" ",
			inputStyle.Render(m.minScoreInput.View()),
		))
		b.WriteString("\n")
		b.WriteString(m.reviews.View())
		b.WriteString("\n")
		b.WriteString(renderChart(m.chart, m.width))
	} else {
		b.WriteString(m.favorites.View())
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(explorer.Describe(m.err)))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	help := "[l]oad [/]search [m]in score [enter]apply [s]ave [f]avorites [x]delete [tab]switch [o]pen [q]uit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Run starts the TUI application
func Run(ex *explorer.Explorer) error {
	p := tea.NewProgram(initialModel(ex), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

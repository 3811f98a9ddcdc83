// Package reportui provides the Bubble Tea browser for an analysis run.
package reportui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vgtrends/internal/pipeline"
	"github.com/verte-zerg/vgtrends/internal/report"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

const (
	tabOverview = iota
	tabShares
	tabTrends
	tabCurves
)

type mode int

const (
	modeBrowse mode = iota
	modeSettings
	modeGenres
)

// Settings form fields.
const (
	fieldStart = iota
	fieldEnd
	fieldTop
	fieldLimit
)

const (
	plotHeight  = 12
	defaultTopN = 6
	maxTopN     = 20
	// Width used to pre-render tabs before the first WindowSizeMsg.
	fallbackWidth = 80
)

const (
	colorAccent = lipgloss.Color("#3A8CC8")
	colorBorder = lipgloss.Color("#4A4A4A")
	colorText   = lipgloss.Color("#F0F0F0")
	colorLabel  = lipgloss.Color("#8C8C8C")
	colorDim    = lipgloss.Color("#6E6E6E")
	colorError  = lipgloss.Color("#FF4D4F")
)

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(colorBorder)
	tabStyle       = boxStyle.Padding(0, 1).Foreground(lipgloss.Color("#B0B0B0"))
	activeTabStyle = tabStyle.Bold(true).Foreground(colorText).BorderForeground(colorAccent)
	cardStyle      = boxStyle.Padding(0, 1)
	modalStyle     = boxStyle.Padding(1, 2).BorderForeground(colorAccent)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	cardTitleStyle = lipgloss.NewStyle().Foreground(colorLabel)
	cardValueStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	tableStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Settings selects what part of a run the browser shows.
type Settings struct {
	StartYear int
	EndYear   int
	TopN      int
	Trend     trend.Options
}

// Model implements the Bubble Tea run browser. The collected run never
// changes; every settings change re-analyzes a slice of it.
type Model struct {
	run  pipeline.Result
	view pipeline.Result
	cfg  Settings

	keys keyMap
	help help.Model
	mode mode

	tabs   []string
	tab    int
	pages  []viewport.Model
	shares table.Model

	width  int
	height int

	settings form
	genres   form

	// selection is the genre set drawn on the Curves tab. Unless picked by
	// hand it follows the top N of the current view.
	selection []string
	picked    bool
}

// NewModel constructs a browser over run. Zero settings show the whole run.
func NewModel(run pipeline.Result, cfg Settings) *Model {
	if cfg.StartYear == 0 {
		cfg.StartYear = run.Options.StartYear
	}
	if cfg.EndYear == 0 {
		cfg.EndYear = run.Options.EndYear
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	m := &Model{
		run:    run,
		cfg:    cfg,
		keys:   newKeyMap(),
		help:   help.New(),
		tabs:   []string{"Overview", "Shares", "Trends", "Curves"},
		shares: newShareTable(),
		settings: newForm("Settings (enter to apply, esc to cancel)",
			"Start year: ", "End year: ", "Top genres: ", "Ranking size: "),
		genres: newForm("", "Genres: "),
	}
	m.genres.fields[0].Placeholder = "Action, Shooter, RPG"
	m.pages = make([]viewport.Model, len(m.tabs))
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.redraw()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSettings:
			return m, m.updateSettings(msg)
		case modeGenres:
			return m, m.updateGenres(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	m.keys.Genres.SetEnabled(m.tab == tabCurves)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.switchTab(-1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Next):
		m.switchTab(1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.More):
		m.setTopN(m.cfg.TopN + 1)
		return nil
	case key.Matches(msg, m.keys.Less):
		m.setTopN(m.cfg.TopN - 1)
		return nil
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	case key.Matches(msg, m.keys.Genres):
		return m.openGenres()
	case key.Matches(msg, m.keys.Top):
		m.jump(true)
		return nil
	case key.Matches(msg, m.keys.Bottom):
		m.jump(false)
		return nil
	}
	var cmd tea.Cmd
	if m.tab == tabShares {
		m.shares, cmd = m.shares.Update(msg)
		return cmd
	}
	m.pages[m.tab], cmd = m.pages[m.tab].Update(msg)
	return cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode == modeGenres {
		return frame(m.genreModal(), m.width, m.height)
	}
	headerHeight, bodyHeight := m.heights()
	return strings.Join([]string{
		frame(m.header(), m.width, headerHeight),
		frame(m.body(), m.width, bodyHeight),
		frame(m.footer(), m.width, 1),
	}, "\n")
}

// Settings returns the settings currently applied.
func (m *Model) Settings() Settings {
	return m.cfg
}

// Current returns the analysis of the selected year range.
func (m *Model) Current() pipeline.Result {
	return m.view
}

// heights splits the window into the tab header and the body; the footer
// always takes one line.
func (m *Model) heights() (header, body int) {
	header = max(lipgloss.Height(activeTabStyle.Render("X")), 1) + 1
	return header, max(m.height-header-1, 1)
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body := m.heights()
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = body
	}
	m.sizeShareTable(m.width, body)
	m.settings.setWidth(m.width)
	m.genres.setWidth(modalInnerWidth(m.width) + 2)
	m.help.Width = m.width
}

func (m *Model) switchTab(delta int) {
	n := len(m.tabs)
	m.tab = ((m.tab+delta)%n + n) % n
	if m.tab == tabShares {
		m.shares.Focus()
	} else {
		m.shares.Blur()
	}
}

func (m *Model) jump(top bool) {
	switch {
	case m.tab == tabShares && top:
		m.shares.GotoTop()
	case m.tab == tabShares:
		m.shares.GotoBottom()
	case top:
		m.pages[m.tab].GotoTop()
	default:
		m.pages[m.tab].GotoBottom()
	}
}

func (m *Model) setTopN(n int) {
	m.cfg.TopN = min(max(n, 1), maxTopN)
	m.refresh()
	m.resize()
}

// refresh re-analyzes the selected years and redraws every tab.
func (m *Model) refresh() {
	m.view = pipeline.Subset(m.run, m.cfg.StartYear, m.cfg.EndYear, m.cfg.Trend)
	if !m.picked {
		m.selection = report.TopGenres(m.view.Matrix, m.cfg.TopN)
	}
	m.loadShareTable()
	m.redraw()
}

func (m *Model) redraw() {
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.pages[tabOverview].SetContent(renderOverview(m.view, width))
	m.pages[tabTrends].SetContent(renderTrends(m.view.Report))
	m.pages[tabCurves].SetContent(renderCurves(m.view, m.selection, width))
}

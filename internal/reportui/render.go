package reportui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/pipeline"
	"github.com/verte-zerg/vgtrends/internal/report"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

const noData = "No market share data for the selected years."

func (m *Model) header() string {
	tabs := make([]string, len(m.tabs))
	for i, name := range m.tabs {
		style := tabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	platform := m.run.Options.Platform
	if platform == "" {
		platform = "all"
	}
	limit := m.cfg.Trend.Limit
	if limit <= 0 {
		limit = 3
	}
	summary := fmt.Sprintf("Settings: years=%d-%d  platform=%s  top=%d  ranking=%d",
		m.cfg.StartYear, m.cfg.EndYear, platform, m.cfg.TopN, limit)
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" + mutedStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) footer() string {
	if m.mode == modeSettings {
		return mutedStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	m.keys.Genres.SetEnabled(m.tab == tabCurves)
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) body() string {
	switch {
	case m.mode == modeSettings:
		return m.settings.view()
	case m.tab != tabShares:
		return m.pages[m.tab].View()
	case m.view.Matrix == nil || m.view.Matrix.Len() == 0:
		return noData
	default:
		return tableStyle.Render(m.shares.View())
	}
}

func renderOverview(res pipeline.Result, width int) string {
	if res.Matrix == nil || res.Matrix.Len() == 0 {
		return noData
	}
	cards := renderSummaryCards(res, width)
	var buf bytes.Buffer
	if err := report.RenderInsights(&buf, res.Report); err != nil {
		return fmt.Sprintf("Failed to render insights: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(res pipeline.Result, width int) string {
	records := 0
	for _, y := range res.Matrix.Years() {
		records += len(res.Records[y])
	}
	leader, leaderShare := leadingGenre(res.Matrix)
	latestHHI := "-"
	if n := len(res.Report.Concentration); n > 0 {
		c := res.Report.Concentration[n-1]
		latestHHI = fmt.Sprintf("%.0f %s", c.HHI, c.Label)
	}
	cards := []string{
		metricCard("Years", strconv.Itoa(res.Matrix.Len())),
		metricCard("Records", strconv.Itoa(records)),
		metricCard("Genres", strconv.Itoa(len(res.Matrix.Genres()))),
		metricCard(fmt.Sprintf("Leader %d", res.Report.LastYear), fmt.Sprintf("%s %.1f%%", leader, leaderShare)),
		metricCard("Latest HHI", latestHHI),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

// leadingGenre returns the genre with the largest share in the last year.
func leadingGenre(m *market.ShareMatrix) (string, float64) {
	years := m.Years()
	if len(years) == 0 {
		return "-", 0
	}
	last := years[len(years)-1]
	best, bestShare := "-", -1.0
	for _, g := range m.Genres() {
		if !m.Has(last, g) {
			continue
		}
		if s := m.Share(last, g); s > bestShare {
			best, bestShare = g, s
		}
	}
	if bestShare < 0 {
		return "-", 0
	}
	return best, bestShare
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderTrends(r trend.Report) string {
	if len(r.Concentration) == 0 {
		return noData
	}
	var buf bytes.Buffer
	if err := report.RenderTrendTables(&buf, r); err != nil {
		return fmt.Sprintf("Failed to render trends: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderCurves(res pipeline.Result, genres []string, width int) string {
	if res.Matrix == nil || res.Matrix.Len() == 0 {
		return noData
	}
	if len(genres) == 0 {
		return "No genres selected. Press Enter to set genres."
	}
	header := mutedStyle.Render(fmt.Sprintf("Genres: %s", strings.Join(genres, ", ")))
	var buf bytes.Buffer
	if err := report.RenderShareCurves(&buf, res.Matrix, genres, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func newShareTable() table.Model {
	return table.New(table.WithHeight(1), table.WithStyles(shareTableStyles()))
}

// buildShareTableData lays out the collapsed matrix with the top genres first
// and Other last.
func buildShareTableData(m *market.ShareMatrix, top []string) ([]table.Column, []table.Row) {
	columns := []table.Column{{Title: "Year", Width: 6}}
	if m == nil || m.Len() == 0 {
		return columns, nil
	}
	collapsed := m.Collapse(top)
	genres := append([]string(nil), top...)
	if len(collapsed.Genres()) > len(top) {
		genres = append(genres, market.OtherGenre)
	}
	for _, g := range genres {
		columns = append(columns, table.Column{Title: g, Width: max(7, lipgloss.Width(g))})
	}
	rows := make([]table.Row, 0, collapsed.Len())
	for _, y := range collapsed.Years() {
		row := table.Row{strconv.Itoa(y)}
		for _, g := range genres {
			row = append(row, fmt.Sprintf("%.2f", trend.Round2(collapsed.Share(y, g))))
		}
		rows = append(rows, row)
	}
	return columns, rows
}

func (m *Model) loadShareTable() {
	cols, rows := buildShareTableData(m.view.Matrix, report.TopGenres(m.view.Matrix, m.cfg.TopN))
	// Clear rows first so no old row is drawn against the new columns.
	m.shares.SetRows(nil)
	m.shares.SetColumns(cols)
	m.shares.SetRows(rows)
}

// sizeShareTable leaves one line of the body for the table header border.
func (m *Model) sizeShareTable(width, height int) {
	m.shares.SetWidth(width)
	m.shares.SetHeight(max(height-1, 1))
}

func shareTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

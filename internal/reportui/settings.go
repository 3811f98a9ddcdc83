package reportui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vgtrends/internal/report"
)

func (m *Model) openSettings() tea.Cmd {
	m.mode = modeSettings
	m.settings.err = ""
	m.settings.set(fieldStart, strconv.Itoa(m.cfg.StartYear))
	m.settings.set(fieldEnd, strconv.Itoa(m.cfg.EndYear))
	m.settings.set(fieldTop, strconv.Itoa(m.cfg.TopN))
	limit := ""
	if m.cfg.Trend.Limit > 0 {
		limit = strconv.Itoa(m.cfg.Trend.Limit)
	}
	m.settings.set(fieldLimit, limit)
	return m.settings.focusField(fieldStart)
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.settings.err = ""
		return nil
	case tea.KeyEnter:
		cfg, err := m.parseSettings()
		if err != nil {
			m.settings.err = err.Error()
			return nil
		}
		if cfg.TopN != m.cfg.TopN {
			m.picked = false
		}
		m.cfg = cfg
		m.mode = modeBrowse
		m.settings.err = ""
		m.refresh()
		m.resize()
		return nil
	}
	return m.settings.update(msg)
}

// parseSettings reads the settings form. Empty fields keep the run bounds
// (years) or the current value. Years outside the collected run are rejected
// since nothing could be shown for them.
func (m *Model) parseSettings() (Settings, error) {
	bounds := m.run.Options
	cfg := m.cfg
	var err error
	if cfg.StartYear, err = intOr(m.settings.value(fieldStart), bounds.StartYear); err != nil {
		return cfg, fmt.Errorf("invalid start year (use a year)")
	}
	if cfg.EndYear, err = intOr(m.settings.value(fieldEnd), bounds.EndYear); err != nil {
		return cfg, fmt.Errorf("invalid end year (use a year)")
	}
	if cfg.StartYear < bounds.StartYear || cfg.EndYear > bounds.EndYear {
		return cfg, fmt.Errorf("years must lie within %d-%d", bounds.StartYear, bounds.EndYear)
	}
	if cfg.EndYear < cfg.StartYear {
		return cfg, fmt.Errorf("end year must not be before start year")
	}
	if cfg.TopN, err = intOr(m.settings.value(fieldTop), m.cfg.TopN); err != nil || cfg.TopN < 1 || cfg.TopN > maxTopN {
		return cfg, fmt.Errorf("invalid top genres (use 1-%d)", maxTopN)
	}
	if cfg.Trend.Limit, err = intOr(m.settings.value(fieldLimit), 0); err != nil || cfg.Trend.Limit < 0 {
		return cfg, fmt.Errorf("invalid ranking size (use 0 or a positive integer)")
	}
	return cfg, nil
}

func intOr(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (m *Model) openGenres() tea.Cmd {
	m.mode = modeGenres
	m.genres.err = ""
	m.genres.set(0, strings.Join(m.selection, ", "))
	return m.genres.focusField(0)
}

func (m *Model) updateGenres(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.genres.err = ""
		return nil
	case tea.KeyEnter:
		if err := m.pickGenres(parseGenres(m.genres.value(0))); err != nil {
			m.genres.err = err.Error()
			return nil
		}
		m.mode = modeBrowse
		m.genres.err = ""
		m.redraw()
		return nil
	}
	return m.genres.update(msg)
}

// pickGenres matches names case-insensitively against the genres of the
// current view. No names restores the top N.
func (m *Model) pickGenres(names []string) error {
	if len(names) == 0 {
		m.picked = false
		m.selection = report.TopGenres(m.view.Matrix, m.cfg.TopN)
		return nil
	}
	byKey := make(map[string]string)
	for _, g := range m.view.Matrix.Genres() {
		byKey[strings.ToLower(g)] = g
	}
	picked := make([]string, len(names))
	for i, name := range names {
		g, ok := byKey[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown genre %q", name)
		}
		picked[i] = g
	}
	m.picked = true
	m.selection = picked
	return nil
}

// parseGenres splits a comma separated list, dropping blanks and
// case-insensitive repeats.
func parseGenres(input string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		key := strings.ToLower(part)
		if part == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, part)
	}
	return out
}

func (m *Model) genreModal() string {
	content := m.genres.view(
		mutedStyle.Render("Comma separated genre names. Empty restores the top genres."),
		mutedStyle.Render("Enter to apply / Esc to cancel"),
	)
	content = cardValueStyle.Render("Select Genres") + "\n" + content
	box := modalStyle.Width(modalWidth(m.width)).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

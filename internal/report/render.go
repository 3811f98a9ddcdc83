package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderInsights prints the key findings of a trend report.
func RenderInsights(w io.Writer, r trend.Report) error {
	var lines []string
	lines = append(lines, "=== KEY INSIGHTS ===", "", "Fastest Growing Genres:")
	for _, g := range r.Growing {
		lines = append(lines, fmt.Sprintf("• %s: +%.2f%% growth rate (%.2f%% → %.2f%%)",
			g.Genre, trend.Round2(g.GrowthRate), trend.Round2(g.StartShare), trend.Round2(g.EndShare)))
	}
	if len(r.Growing) == 0 {
		lines = append(lines, "• none")
	}

	lines = append(lines, "", "Fastest Declining Genres:")
	for _, g := range r.Declining {
		lines = append(lines, fmt.Sprintf("• %s: %.2f%% growth rate (%.2f%% → %.2f%%)",
			g.Genre, trend.Round2(g.GrowthRate), trend.Round2(g.StartShare), trend.Round2(g.EndShare)))
	}
	if len(r.Declining) == 0 {
		lines = append(lines, "• none")
	}

	lines = append(lines, "", "Most Stable Genres:")
	for _, s := range r.Stable {
		lines = append(lines, fmt.Sprintf("• %s: %.2f%% coefficient of variation (average market share: %.2f%%)",
			s.Genre, trend.Round2(s.CoefficientOfVariation), trend.Round2(s.MeanShare)))
	}
	if len(r.Stable) == 0 {
		lines = append(lines, "• none")
	}

	lines = append(lines, "", "Market Concentration (HHI):")
	lines = append(lines, concentrationLines(r.Concentration)...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

func concentrationLines(series []trend.Concentration) []string {
	if len(series) == 0 {
		return []string{"• no data"}
	}
	first := series[0]
	last := series[len(series)-1]
	out := []string{
		fmt.Sprintf("• %d: %.2f (%s concentration)", first.Year, trend.Round2(first.HHI), first.Label),
	}
	if len(series) == 1 {
		return out
	}
	out = append(out, fmt.Sprintf("• %d: %.2f (%s concentration)", last.Year, trend.Round2(last.HHI), last.Label))
	if first.HHI < last.HHI {
		out = append(out, fmt.Sprintf("• Market concentration has increased by %.2f points", trend.Round2(last.HHI-first.HHI)))
	} else {
		out = append(out, fmt.Sprintf("• Market concentration has decreased by %.2f points", trend.Round2(first.HHI-last.HHI)))
	}
	return out
}

// RenderShareTable prints the matrix with one row per year and one column per genre.
func RenderShareTable(w io.Writer, m *market.ShareMatrix) error {
	if m.Len() == 0 {
		_, err := fmt.Fprintln(w, "No market share data.")
		return err
	}
	genres := m.Genres()
	headers := append([]string{"Year"}, genres...)
	rightAlign := make(map[int]bool, len(genres))
	for i := range genres {
		rightAlign[i+1] = true
	}
	rows := make([][]string, 0, m.Len())
	for _, y := range m.Years() {
		row := []string{strconv.Itoa(y)}
		for _, g := range genres {
			row = append(row, fmt.Sprintf("%.2f", trend.Round2(m.Share(y, g))))
		}
		rows = append(rows, row)
	}
	lines := append([]string{"Genre Market Share (%)"}, formatTable(headers, rows, rightAlign)...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderTrendTables prints the growth, stability and concentration rankings as tables.
func RenderTrendTables(w io.Writer, r trend.Report) error {
	var lines []string
	growthHeaders := []string{"Genre", "Growth %", "Change", "Start %", "End %"}
	growthAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, section := range []struct {
		title string
		rows  []trend.Growth
	}{
		{"Growing", r.Growing},
		{"Declining", r.Declining},
	} {
		rows := make([][]string, 0, len(section.rows))
		for _, g := range section.rows {
			rows = append(rows, []string{
				g.Genre,
				formatPct(g.GrowthRate),
				formatPct(g.AbsoluteChange),
				formatPct(g.StartShare),
				formatPct(g.EndShare),
			})
		}
		lines = append(lines, fmt.Sprintf("%s (%d → %d)", section.title, r.FirstYear, r.LastYear))
		lines = append(lines, formatTable(growthHeaders, rows, growthAlign)...)
		lines = append(lines, "")
	}

	stableRows := make([][]string, 0, len(r.Stable))
	for _, s := range r.Stable {
		stableRows = append(stableRows, []string{
			s.Genre,
			formatPct(s.CoefficientOfVariation),
			formatPct(s.StdDev),
			formatPct(s.MeanShare),
		})
	}
	lines = append(lines, "Stable")
	lines = append(lines, formatTable([]string{"Genre", "CV %", "Std Dev", "Mean %"}, stableRows,
		map[int]bool{1: true, 2: true, 3: true})...)
	lines = append(lines, "")

	hhiRows := make([][]string, 0, len(r.Concentration))
	hhis := make([]float64, 0, len(r.Concentration))
	for _, c := range r.Concentration {
		hhiRows = append(hhiRows, []string{strconv.Itoa(c.Year), formatPct(c.HHI), c.Label})
		hhis = append(hhis, c.HHI)
	}
	lines = append(lines, "Concentration "+Sparkline(hhis))
	lines = append(lines, formatTable([]string{"Year", "HHI", "Level"}, hhiRows, map[int]bool{1: true})...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderShareCurves plots the share evolution of the given genres on one axis.
// A totalWidth of 0 fits the terminal.
func RenderShareCurves(w io.Writer, m *market.ShareMatrix, genres []string, totalWidth, height int, useColor bool) error {
	if len(genres) == 0 || m.Len() == 0 {
		return nil
	}
	series := make([]Series, 0, len(genres))
	for _, g := range genres {
		series = append(series, Series{Name: g, Values: m.Series(g)})
	}
	years := m.Years()
	xLabels := []string{strconv.Itoa(years[0]), strconv.Itoa(years[len(years)-1])}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	floor := 0.0
	return PlotSeries(w, "Share Evolution (%)", series, xLabels, PlotOptions{
		Width:      width,
		Height:     height,
		ForceColor: useColor,
		Floor:      &floor,
	})
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f", trend.Round2(v))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

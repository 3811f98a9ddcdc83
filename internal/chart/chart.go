// Package chart draws market share charts as PNG and SVG files.
package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/verte-zerg/vgtrends/internal/market"
)

// File names written by Write.
const (
	StackedFile   = "genre_market_share.png"
	TrendPNGFile  = "top_genres_trend.png"
	TrendSVGFile  = "top_genres_trend.svg"
	latestFileFmt = "genre_share_%d.png"
)

const (
	svgWidth  = 900
	svgHeight = 600
)

// Write renders the charts selected by png and svg into dir and returns the
// written paths. m should already be collapsed to the genres worth showing.
func Write(dir string, m *market.ShareMatrix, top []string, png, svg bool) ([]string, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart dir: %w", err)
	}
	var paths []string
	if png {
		years := m.Years()
		last := years[len(years)-1]
		targets := []struct {
			path   string
			render func(string) error
		}{
			{filepath.Join(dir, StackedFile), func(p string) error { return StackedShares(m, p) }},
			{filepath.Join(dir, fmt.Sprintf(latestFileFmt, last)), func(p string) error { return YearShares(m, last, p) }},
			{filepath.Join(dir, TrendPNGFile), func(p string) error { return ShareLines(m, top, p) }},
		}
		for _, t := range targets {
			if err := t.render(t.path); err != nil {
				return paths, err
			}
			paths = append(paths, t.path)
		}
	}
	if svg {
		path := filepath.Join(dir, TrendSVGFile)
		if err := ShareLinesSVG(m, top, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// StackedShares draws every genre of m as a stacked area over the years.
func StackedShares(m *market.ShareMatrix, path string) error {
	p := plot.New()
	p.Title.Text = "Video Game Genre Market Share Over Time"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Market Share (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	years := m.Years()
	lower := make([]float64, len(years))
	for i, genre := range m.Genres() {
		upper := make([]float64, len(years))
		for j, y := range years {
			upper[j] = lower[j] + m.Share(y, genre)
		}
		area, err := plotter.NewPolygon(bandXYs(years, lower, upper))
		if err != nil {
			return fmt.Errorf("failed to build area for %s: %w", genre, err)
		}
		area.Color = plotutil.Color(i)
		area.LineStyle.Width = 0
		p.Add(area)
		p.Legend.Add(genre, area)
		lower = upper
	}
	return save(p, 12*vg.Inch, 8*vg.Inch, path)
}

// YearShares draws the shares of a single year as horizontal bars.
func YearShares(m *market.ShareMatrix, year int, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Video Game Genre Market Share (%d)", year)
	p.X.Label.Text = "Market Share (%)"

	genres := m.Genres()
	values := make(plotter.Values, len(genres))
	for i, g := range genres {
		values[i] = m.Share(year, g)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(genres...)

	labels := make([]string, len(genres))
	xys := make([]plotter.XY, len(genres))
	for i, v := range values {
		labels[i] = fmt.Sprintf("%.1f%%", v)
		xys[i] = plotter.XY{X: v, Y: float64(i)}
	}
	pct, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("failed to build labels: %w", err)
	}
	p.Add(pct)
	return save(p, 10*vg.Inch, 8*vg.Inch, path)
}

// ShareLines draws one line per genre in genres.
func ShareLines(m *market.ShareMatrix, genres []string, path string) error {
	p := plot.New()
	p.Title.Text = "Market Share Evolution of Top Video Game Genres"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Market Share (%)"
	p.Add(plotter.NewGrid())

	years := m.Years()
	for i, genre := range genres {
		xys := make(plotter.XYs, len(years))
		for j, y := range years {
			xys[j] = plotter.XY{X: float64(y), Y: m.Share(y, genre)}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", genre, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(genre, line, points)
	}
	return save(p, 12*vg.Inch, 8*vg.Inch, path)
}

// ShareLinesSVG draws the same series as ShareLines through go-gg.
func ShareLinesSVG(m *market.ShareMatrix, genres []string, path string) error {
	var (
		xs     []int
		ys     []float64
		labels []string
	)
	for _, genre := range genres {
		for _, y := range m.Years() {
			xs = append(xs, y)
			ys = append(ys, m.Share(y, genre))
			labels = append(labels, genre)
		}
	}
	if len(xs) == 0 {
		return nil
	}
	tab := new(table.Builder).
		Add("year", xs).
		Add("share", ys).
		Add("genre", labels).
		Done()

	p := gg.NewPlot(tab)
	p.SetScale("y", gg.NewLinearScaler().Include(0))
	p.Add(gg.LayerLines{X: "year", Y: "share", Color: "genre"})
	p.Add(gg.LayerPoints{X: "year", Y: "share", Color: "genre"})
	p.Add(gg.Title("Market Share Evolution of Top Video Game Genres"))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := p.WriteSVG(f, svgWidth, svgHeight); err != nil {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close on render failure.
			_ = cerr
		}
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// bandXYs outlines the area between lower and upper, left to right along
// upper and back along lower.
func bandXYs(years []int, lower, upper []float64) plotter.XYs {
	out := make(plotter.XYs, 0, 2*len(years))
	for i, y := range years {
		out = append(out, plotter.XY{X: float64(y), Y: upper[i]})
	}
	for i := len(years) - 1; i >= 0; i-- {
		out = append(out, plotter.XY{X: float64(years[i]), Y: lower[i]})
	}
	return out
}

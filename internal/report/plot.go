// Package report renders market share analyses as console text.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is one named curve.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions controls plot size and coloring. Zero values pick defaults.
type PlotOptions struct {
	Width      int
	Height     int
	ForceColor bool
	// Floor pins the bottom of the y axis, so share plots can start at 0%.
	Floor *float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackTermWidth = 80
	axisLabelWidth    = 6
	axisSeparator     = " │ "
	ansiReset         = "\x1b[0m"

	// Each braille cell holds a 2x4 grid of dots.
	dotsPerCol  = 2
	dotsPerRow  = 4
	brailleBase = 0x2800
)

// stroke dashes a curve: a dot at column x is drawn when x%every < on.
type stroke struct {
	name  string
	every int
	on    int
}

func (s stroke) draws(x int) bool {
	if s.every <= 1 {
		return true
	}
	return absInt(x)%s.every < s.on
}

var strokes = [...]stroke{
	{"solid", 1, 1},
	{"dashed", 6, 3},
	{"dotted", 4, 1},
	{"dashdot", 8, 3},
}

// ANSI foreground colors, cycled per curve.
var curveColors = [...]string{
	"\x1b[36m",
	"\x1b[35m",
	"\x1b[33m",
	"\x1b[32m",
	"\x1b[34m",
	"\x1b[31m",
}

// dotBits[col][row] is the braille bit for a dot inside one cell.
var dotBits = [dotsPerCol][dotsPerRow]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// PlotSeries draws every series on one shared y axis using braille dots.
// xLabels, when given, label the first and last column.
func PlotSeries(w io.Writer, title string, series []Series, xLabels []string, opts PlotOptions) error {
	var curves []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			curves = append(curves, s)
		}
	}
	if len(curves) == 0 {
		return nil
	}

	cols := opts.Width
	if cols <= 0 {
		cols = PlotWidthFor(currentTermWidth())
	}
	cols = max(cols, minPlotWidth)
	rows := opts.Height
	if rows <= 0 {
		rows = defaultPlotHeight
	}

	for i := range curves {
		curves[i].Values = fitToWidth(curves[i].Values, cols)
	}
	axis := newYAxis(curves, opts.Floor)

	cv := newCanvas(cols, rows, len(curves))
	for i, s := range curves {
		st := strokes[i%len(strokes)]
		lastX, lastY := -1, -1
		for col, v := range s.Values {
			x, y := col*dotsPerCol, axis.dotRow(v, rows*dotsPerRow)
			if lastX < 0 {
				if st.draws(x) {
					cv.dot(i, x, y)
				}
			} else {
				bresenham(lastX, lastY, x, y, func(px, py int) {
					if st.draws(px) {
						cv.dot(i, px, py)
					}
				})
			}
			lastX, lastY = x, y
		}
	}

	color := colorEnabled(w, opts.ForceColor)
	labels := axis.labels(rows)

	lines := make([]string, 0, rows+4)
	if title != "" {
		lines = append(lines, title)
	}
	for r := 0; r < rows; r++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, labels[r], axisSeparator)
		for c := 0; c < cols; c++ {
			ch, owner := cv.cell(c, r)
			if color && owner >= 0 {
				b.WriteString(curveColors[owner%len(curveColors)])
				b.WriteRune(ch)
				b.WriteString(ansiReset)
				continue
			}
			b.WriteRune(ch)
		}
		lines = append(lines, b.String())
	}
	if len(xLabels) > 0 {
		lines = append(lines, xAxisLine(xLabels, cols))
	}
	lines = append(lines, legendLine(curves, color), "")
	return writeLines(w, lines)
}

// PlotWidthFor returns the number of plot columns that fit in totalWidth
// once the y axis labels are drawn.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-utf8.RuneCountInString(axisSeparator), minPlotWidth)
}

func currentTermWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// yAxis maps values onto dot rows between lo (bottom) and hi (top).
type yAxis struct {
	lo, hi float64
}

func newYAxis(curves []Series, floor *float64) yAxis {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range curves {
		for _, v := range s.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 0
	}
	if floor != nil {
		lo = math.Min(lo, *floor)
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	return yAxis{lo: lo, hi: hi}
}

func (a yAxis) dotRow(v float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	frac := (v - a.lo) / (a.hi - a.lo)
	row := int(math.Round((1 - frac) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

// labels marks the top, middle and bottom rows.
func (a yAxis) labels(rows int) []string {
	out := make([]string, rows)
	if rows == 0 {
		return out
	}
	out[0] = pctLabel(a.hi)
	if rows > 2 {
		out[rows/2] = pctLabel((a.lo + a.hi) / 2)
	}
	if rows > 1 {
		out[rows-1] = pctLabel(a.lo)
	}
	return out
}

func pctLabel(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// canvas keeps one layer of braille bits per curve so the first curve to
// touch a cell decides its color.
type canvas struct {
	cols, rows int
	layers     [][]uint8
}

func newCanvas(cols, rows, n int) *canvas {
	layers := make([][]uint8, n)
	for i := range layers {
		layers[i] = make([]uint8, cols*rows)
	}
	return &canvas{cols: cols, rows: rows, layers: layers}
}

// dot sets the dot at (x, y) in dot coordinates on the given layer.
func (c *canvas) dot(layer, x, y int) {
	col, row := x/dotsPerCol, y/dotsPerRow
	if x < 0 || y < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.layers[layer][row*c.cols+col] |= dotBit(x%dotsPerCol, y%dotsPerRow)
}

// cell merges every layer at (col, row) and reports the owning layer, or -1.
func (c *canvas) cell(col, row int) (rune, int) {
	var bits uint8
	owner := -1
	for i, layer := range c.layers {
		b := layer[row*c.cols+col]
		if b == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		bits |= b
	}
	return brailleRune(bits), owner
}

func dotBit(col, row int) uint8 {
	if col < 0 || col >= dotsPerCol || row < 0 || row >= dotsPerRow {
		return 0
	}
	return dotBits[col][row]
}

func brailleRune(bits uint8) rune {
	return rune(brailleBase + int(bits))
}

// fitToWidth averages values into n buckets when there are more values than
// columns and interpolates linearly when there are fewer.
func fitToWidth(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := range out {
			lo := i * len(values) / n
			hi := max((i+1)*len(values)/n, lo+1)
			sum := 0.0
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		last := len(values) - 1
		for i := range out {
			pos := float64(i) * step
			j := int(pos)
			if j >= last {
				out[i] = values[last]
				continue
			}
			t := pos - float64(j)
			out[i] = values[j] + (values[j+1]-values[j])*t
		}
	}
	return out
}

func xAxisLine(labels []string, cols int) string {
	indent := strings.Repeat(" ", axisLabelWidth+utf8.RuneCountInString(axisSeparator))
	first := labels[0]
	if len(labels) == 1 {
		return indent + first
	}
	last := labels[len(labels)-1]
	gap := max(cols-displayWidth(first)-displayWidth(last), 1)
	return indent + first + strings.Repeat(" ", gap) + last
}

func legendLine(curves []Series, color bool) string {
	marker := brailleRune(dotBits[0][0])
	parts := make([]string, len(curves))
	for i, s := range curves {
		part := fmt.Sprintf("%c %s (%s)", marker, s.Name, strokes[i%len(strokes)].name)
		if color {
			part = curveColors[i%len(curveColors)] + part + ansiReset
		}
		parts[i] = part
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// bresenham visits every dot on the line from (x0, y0) to (x1, y1).
func bresenham(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	e := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTable lays out headers and rows as space separated columns sized to
// their widest cell. Columns listed in rightAlign are padded on the left.
// Trailing spaces are trimmed from every line.
func formatTable(headers []string, rows [][]string, rightAlign map[int]bool) []string {
	all := rows
	if len(headers) > 0 {
		all = append([][]string{headers}, rows...)
	}
	var widths []int
	for _, row := range all {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	if len(widths) == 0 {
		return nil
	}

	lines := make([]string, len(all))
	cells := make([]string, len(widths))
	for li, row := range all {
		for i := range cells {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padCell(cell, widths[i], rightAlign[i])
		}
		lines[li] = strings.TrimRight(strings.Join(cells, " "), " ")
	}
	return lines
}

func padCell(s string, width int, right bool) string {
	fill := width - displayWidth(s)
	if fill <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

package reportui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func modalWidth(termWidth int) int {
	return min(max(termWidth-4, 40), 80)
}

// modalInnerWidth is the text width left inside the modal border and padding.
func modalInnerWidth(termWidth int) int {
	return max(modalWidth(termWidth)-modalStyle.GetHorizontalFrameSize(), 10)
}

// frame returns exactly height lines, each padded to at least width cells.
func frame(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	src := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(src) {
			line = src[i]
		}
		if gap := width - lipgloss.Width(line); gap > 0 {
			line += strings.Repeat(" ", gap)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

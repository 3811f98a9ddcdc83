package report

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	assert.Equal(t, 80-axisWidth, PlotWidthFor(80))
	assert.Equal(t, minPlotWidth, PlotWidthFor(0))
	assert.Equal(t, minPlotWidth, PlotWidthFor(12))
}

package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/vgtrends/internal/market"
)

func matrix(rows map[int]map[string]float64) *market.ShareMatrix {
	m := market.NewShareMatrix()
	for y, row := range rows {
		for g, v := range row {
			m.Set(y, g, v)
		}
	}
	return m
}

func TestHHIExample(t *testing.T) {
	hhi := HHI(map[string]float64{"Action": 50, "RPG": 30, "Shooter": 20})
	assert.InDelta(t, 3800.0, hhi, 1e-9)
	assert.Equal(t, LabelHigh, ConcentrationLabel(hhi))
}

func TestConcentrationLabelThresholds(t *testing.T) {
	cases := []struct {
		hhi  float64
		want string
	}{
		{0, LabelLow},
		{1500, LabelLow},
		{1500.01, LabelModerate},
		{2500, LabelModerate},
		{2500.01, LabelHigh},
		{10000, LabelHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ConcentrationLabel(c.hhi), "hhi=%v", c.hhi)
	}
}

func TestHHIBounds(t *testing.T) {
	assert.InDelta(t, 10000.0, HHI(map[string]float64{"Action": 100}), 1e-9)
	shares := map[string]float64{}
	for _, g := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		shares[g] = 10
	}
	hhi := HHI(shares)
	assert.InDelta(t, 1000.0, hhi, 1e-9)
	assert.GreaterOrEqual(t, hhi, 0.0)
	assert.Equal(t, 0.0, HHI(nil))
}

func TestAnalyzeDecliningExample(t *testing.T) {
	m := matrix(map[int]map[string]float64{
		2000: {"Action": 25, "RPG": 75},
		2023: {"Action": 20, "RPG": 70, "Puzzle": 10},
	})
	r := Analyze(m, Options{})

	require.Len(t, r.Declining, 2)
	assert.Equal(t, "Action", r.Declining[0].Genre)
	assert.InDelta(t, -20.0, r.Declining[0].GrowthRate, 1e-9)
	assert.InDelta(t, -5.0, r.Declining[0].AbsoluteChange, 1e-9)
	assert.Equal(t, "RPG", r.Declining[1].Genre)
	assert.Empty(t, r.Growing)

	for _, g := range append(r.Growing, r.Declining...) {
		assert.NotEqual(t, "Puzzle", g.Genre, "genre absent in first year must not be ranked")
	}
	assert.Equal(t, 2000, r.FirstYear)
	assert.Equal(t, 2023, r.LastYear)
}

func TestAnalyzeExcludesZeroFirstShare(t *testing.T) {
	m := matrix(map[int]map[string]float64{
		2000: {"Action": 100, "Puzzle": 0},
		2001: {"Action": 90, "Puzzle": 10},
	})
	r := Analyze(m, Options{})
	for _, g := range append(r.Growing, r.Declining...) {
		assert.NotEqual(t, "Puzzle", g.Genre)
		assert.False(t, math.IsInf(g.GrowthRate, 0) || math.IsNaN(g.GrowthRate))
	}
}

func TestAnalyzePartitionAndOrder(t *testing.T) {
	m := matrix(map[int]map[string]float64{
		2000: {"A": 10, "B": 10, "C": 10, "D": 10, "E": 20, "F": 20, "G": 20},
		2010: {"A": 20, "B": 30, "C": 11, "D": 40, "E": 10, "F": 20, "G": 5},
	})
	// Shares here do not sum to 100; the analyzer only reads them.
	r := Analyze(m, Options{})

	require.Len(t, r.Growing, 3)
	assert.Equal(t, []string{"D", "B", "A"}, []string{r.Growing[0].Genre, r.Growing[1].Genre, r.Growing[2].Genre})
	for _, g := range r.Growing {
		assert.Greater(t, g.GrowthRate, 0.0)
	}
	require.Len(t, r.Declining, 3)
	assert.Equal(t, []string{"G", "E", "F"}, []string{r.Declining[0].Genre, r.Declining[1].Genre, r.Declining[2].Genre})
	for _, g := range r.Declining {
		assert.LessOrEqual(t, g.GrowthRate, 0.0)
	}
}

func TestAnalyzeSingleYear(t *testing.T) {
	m := matrix(map[int]map[string]float64{2020: {"Action": 50, "RPG": 30, "Shooter": 20}})
	r := Analyze(m, Options{})
	assert.Empty(t, r.Growing)
	assert.Empty(t, r.Declining)
	require.Len(t, r.Concentration, 1)
	assert.InDelta(t, 3800.0, r.Concentration[0].HHI, 1e-9)
	assert.Equal(t, LabelHigh, r.Concentration[0].Label)
}

func TestAnalyzeEmptyMatrix(t *testing.T) {
	r := Analyze(market.NewShareMatrix(), Options{})
	assert.Empty(t, r.Growing)
	assert.Empty(t, r.Declining)
	assert.Empty(t, r.Stable)
	assert.Empty(t, r.Concentration)
}

func TestAnalyzeStability(t *testing.T) {
	m := matrix(map[int]map[string]float64{
		2000: {"Steady": 40, "Swing": 10, "Tiny": 0.5, "Late": 49.5},
		2001: {"Steady": 40, "Swing": 50, "Tiny": 0.5, "Late": 9.5},
		2002: {"Steady": 40, "Swing": 30, "Tiny": 0.5},
	})
	r := Analyze(m, Options{})

	require.Len(t, r.Stable, 3)
	assert.Equal(t, "Steady", r.Stable[0].Genre)
	assert.InDelta(t, 0.0, r.Stable[0].CoefficientOfVariation, 1e-9)
	for _, s := range r.Stable {
		assert.NotEqual(t, "Tiny", s.Genre)
		assert.Greater(t, s.MeanShare, 1.0)
	}
	// Swing: mean 30, population std sqrt(800/3).
	swing := r.Stable[1]
	assert.Equal(t, "Swing", swing.Genre)
	assert.InDelta(t, 30.0, swing.MeanShare, 1e-9)
	assert.InDelta(t, math.Sqrt(800.0/3.0), swing.StdDev, 1e-9)
	assert.InDelta(t, math.Sqrt(800.0/3.0)/30*100, swing.CoefficientOfVariation, 1e-9)
	// Late is absent in 2002 and counts as 0 there.
	assert.Equal(t, "Late", r.Stable[2].Genre)
	assert.InDelta(t, 59.0/3.0, r.Stable[2].MeanShare, 1e-9)
}

func TestAnalyzeLimit(t *testing.T) {
	m := matrix(map[int]map[string]float64{
		2000: {"A": 10, "B": 10, "C": 10},
		2001: {"A": 20, "B": 30, "C": 40},
	})
	r := Analyze(m, Options{Limit: 1})
	require.Len(t, r.Growing, 1)
	assert.Equal(t, "C", r.Growing[0].Genre)
	assert.Len(t, r.Stable, 1)
}

func TestPopulationStdDev(t *testing.T) {
	assert.Equal(t, 0.0, PopulationStdDev(nil))
	assert.Equal(t, 0.0, PopulationStdDev([]float64{5}))
	assert.InDelta(t, 2.0, PopulationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, -20.0, Round2(-19.999))
}

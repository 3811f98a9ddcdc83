// Package trend derives growth, stability and concentration figures from a
// genre share matrix.
package trend

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/vgtrends/internal/market"
)

const (
	defaultLimit        = 3
	defaultMinMeanShare = 1.0

	highConcentration     = 2500
	moderateConcentration = 1500
)

// Concentration labels.
const (
	LabelHigh     = "High"
	LabelModerate = "Moderate"
	LabelLow      = "Low"
)

// Options tunes ranking sizes and the stability cutoff.
type Options struct {
	// Limit truncates each ranking. Zero means 3.
	Limit int
	// MinMeanShare excludes genres whose mean share is at or below it. Zero means 1%.
	MinMeanShare float64
}

// Growth is a genre's change between the first and last year.
type Growth struct {
	Genre          string
	GrowthRate     float64
	AbsoluteChange float64
	StartShare     float64
	EndShare       float64
}

// Stability summarizes how much a genre's share moved across all years.
type Stability struct {
	Genre                  string
	StdDev                 float64
	CoefficientOfVariation float64
	MeanShare              float64
}

// Concentration is the Herfindahl-Hirschman index for one year.
type Concentration struct {
	Year  int
	HHI   float64
	Label string
}

// Report holds every derived ranking. Values carry full precision.
type Report struct {
	FirstYear     int
	LastYear      int
	Growing       []Growth
	Declining     []Growth
	Stable        []Stability
	Concentration []Concentration
}

// Analyze computes the report for m. It never fails: inputs too small for a
// ranking simply produce an empty ranking.
func Analyze(m *market.ShareMatrix, opts Options) Report {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.MinMeanShare == 0 {
		opts.MinMeanShare = defaultMinMeanShare
	}
	var r Report
	years := m.Years()
	if len(years) > 0 {
		r.FirstYear = years[0]
		r.LastYear = years[len(years)-1]
	}
	r.Growing, r.Declining = growthRankings(m, opts.Limit)
	r.Stable = stabilityRanking(m, opts.Limit, opts.MinMeanShare)
	r.Concentration = concentrationSeries(m)
	return r
}

func growthRankings(m *market.ShareMatrix, limit int) (growing, declining []Growth) {
	years := m.Years()
	if len(years) < 2 {
		return nil, nil
	}
	first, last := years[0], years[len(years)-1]
	for _, genre := range m.Genres() {
		if !m.Has(first, genre) || !m.Has(last, genre) {
			continue
		}
		start := m.Share(first, genre)
		end := m.Share(last, genre)
		// Growth from nothing is undefined.
		if start <= 0 {
			continue
		}
		g := Growth{
			Genre:          genre,
			GrowthRate:     (end - start) / start * 100,
			AbsoluteChange: end - start,
			StartShare:     start,
			EndShare:       end,
		}
		if g.GrowthRate > 0 {
			growing = append(growing, g)
		} else {
			declining = append(declining, g)
		}
	}
	sort.SliceStable(growing, func(i, j int) bool {
		return growing[i].GrowthRate > growing[j].GrowthRate
	})
	sort.SliceStable(declining, func(i, j int) bool {
		return declining[i].GrowthRate < declining[j].GrowthRate
	})
	return truncate(growing, limit), truncate(declining, limit)
}

func stabilityRanking(m *market.ShareMatrix, limit int, minMean float64) []Stability {
	if m.Len() == 0 {
		return nil
	}
	var out []Stability
	for _, genre := range m.Genres() {
		series := m.Series(genre)
		mean := stats.Mean(series)
		if mean <= minMean {
			continue
		}
		std := PopulationStdDev(series)
		out = append(out, Stability{
			Genre:                  genre,
			StdDev:                 std,
			CoefficientOfVariation: std / mean * 100,
			MeanShare:              mean,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CoefficientOfVariation < out[j].CoefficientOfVariation
	})
	return truncate(out, limit)
}

func concentrationSeries(m *market.ShareMatrix) []Concentration {
	years := m.Years()
	out := make([]Concentration, 0, len(years))
	for _, y := range years {
		hhi := HHI(m.Row(y))
		out = append(out, Concentration{Year: y, HHI: hhi, Label: ConcentrationLabel(hhi)})
	}
	return out
}

// HHI returns the Herfindahl-Hirschman index of percentage shares.
func HHI(shares map[string]float64) float64 {
	genres := make([]string, 0, len(shares))
	for g := range shares {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	sum := 0.0
	for _, g := range genres {
		frac := shares[g] / 100
		sum += frac * frac
	}
	return sum * 10000
}

// ConcentrationLabel maps an HHI value onto High, Moderate or Low.
func ConcentrationLabel(hhi float64) string {
	switch {
	case hhi > highConcentration:
		return LabelHigh
	case hhi > moderateConcentration:
		return LabelModerate
	default:
		return LabelLow
	}
}

// PopulationStdDev returns the population standard deviation of xs.
func PopulationStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	// stats.Variance is the sample variance; rescale to the population form.
	v := stats.Variance(xs) * float64(n-1) / float64(n)
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Round2 rounds v to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

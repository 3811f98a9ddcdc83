// Package generator builds synthetic top-seller lists.
package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/verte-zerg/vgtrends/internal/model"
)

const (
	baseYear      = 2000
	titlesPerYear = 100
	publishers    = 20
	maxBaseSales  = 15.0
)

// trendLine is a genre's base popularity in baseYear and its yearly drift.
type trendLine struct {
	base  float64
	slope float64
}

var genres = []string{
	"Action", "Adventure", "RPG", "Sports", "Strategy", "Racing",
	"Simulation", "Fighting", "Platformer", "Puzzle", "Shooter",
}

var trendLines = map[string]trendLine{
	"Shooter":    {base: 20, slope: 0.5},
	"RPG":        {base: 15, slope: 0.3},
	"Action":     {base: 25, slope: -0.1},
	"Adventure":  {base: 10, slope: 0.2},
	"Sports":     {base: 15, slope: -0.05},
	"Strategy":   {base: 8, slope: -0.1},
	"Racing":     {base: 7, slope: -0.1},
	"Simulation": {base: 5, slope: 0.3},
	"Fighting":   {base: 6, slope: -0.05},
	"Platformer": {base: 10, slope: -0.2},
	"Puzzle":     {base: 4, slope: 0.1},
}

// Synthetic produces a reproducible top-seller list per year. The same year
// always yields the same records.
type Synthetic struct {
	count int
}

// New returns a Synthetic generator with the default list length.
func New() *Synthetic {
	return &Synthetic{count: titlesPerYear}
}

// NewWithCount returns a Synthetic generator producing count titles per year.
func NewWithCount(count int) *Synthetic {
	if count <= 0 {
		count = titlesPerYear
	}
	return &Synthetic{count: count}
}

// Fetch implements source.Provider. The platform filter does not change the
// synthetic distribution.
func (s *Synthetic) Fetch(ctx context.Context, year int, _ string) ([]model.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Generate(year), nil
}

// Generate builds the list for year, seeded by the year itself.
func (s *Synthetic) Generate(year int) []model.SalesRecord {
	rnd := rand.New(rand.NewSource(int64(year)))

	popularity := make([]float64, len(genres))
	weights := make([]float64, len(genres))
	total := 0.0
	for i, g := range genres {
		popularity[i] = Popularity(g, year)
		weights[i] = math.Max(1, popularity[i])
		total += weights[i]
	}

	records := make([]model.SalesRecord, 0, s.count)
	for i := 0; i < s.count; i++ {
		idx := pickWeighted(rnd, weights, total)
		rankFactor := float64(s.count-i) / float64(s.count)
		genreFactor := math.Max(0, popularity[idx]) / 20
		sales := maxBaseSales * rankFactor * genreFactor * (0.7 + 0.6*rnd.Float64())
		records = append(records, model.SalesRecord{
			Title:     fmt.Sprintf("Game %d (%d)", i+1, year),
			Genre:     genres[idx],
			Sales:     math.Round(sales*100) / 100,
			Publisher: fmt.Sprintf("Publisher %d", i%publishers+1),
			Year:      year,
		})
	}
	return records
}

// Popularity returns the modeled base popularity of genre in year. Unknown
// genres sit at 5.
func Popularity(genre string, year int) float64 {
	line, ok := trendLines[genre]
	if !ok {
		return 5
	}
	return line.base + float64(year-baseYear)*line.slope
}

func pickWeighted(rnd *rand.Rand, weights []float64, total float64) int {
	r := rnd.Float64() * total
	acc := 0.0
	for j, w := range weights {
		acc += w
		if r <= acc {
			return j
		}
	}
	return len(weights) - 1
}

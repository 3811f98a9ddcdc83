package market

import (
	"sort"

	"github.com/verte-zerg/vgtrends/internal/model"
)

// Aggregate computes genre market share for each year. Only records whose
// Year matches the bucket they were supplied under are counted. Years with no
// sales at all are skipped so no row divides by zero.
func Aggregate(years []int, byYear map[int][]model.SalesRecord) *ShareMatrix {
	m := NewShareMatrix()
	for _, year := range years {
		records := byYear[year]
		total := 0.0
		genreSales := map[string]float64{}
		for _, r := range records {
			if r.Year != year {
				continue
			}
			total += r.Sales
			genreSales[r.Genre] += r.Sales
		}
		if total <= 0 {
			continue
		}
		// Iterate genres in a fixed order so float sums are reproducible.
		genres := make([]string, 0, len(genreSales))
		for g := range genreSales {
			genres = append(genres, g)
		}
		sort.Strings(genres)
		for _, g := range genres {
			m.Set(year, g, genreSales[g]/total*100)
		}
	}
	return m
}

// GroupByYear buckets records by their Year field.
func GroupByYear(records []model.SalesRecord) map[int][]model.SalesRecord {
	out := map[int][]model.SalesRecord{}
	for _, r := range records {
		out[r.Year] = append(out[r.Year], r)
	}
	return out
}

// YearRange returns every year from start to end inclusive.
func YearRange(start, end int) []int {
	if end < start {
		return nil
	}
	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years
}

// Package market aggregates yearly sales records into genre market share.
package market

import (
	"sort"
)

// OtherGenre names the column that collects genres outside a kept set.
const OtherGenre = "Other"

// ShareMatrix maps year to genre to percentage share (0-100).
//
// A (year, genre) pair that was not recorded reads as 0 through Share. Has
// reports whether the pair was actually recorded, which matters for growth
// rankings where an absent genre is not the same as a 0% genre.
type ShareMatrix struct {
	years  []int
	genres []string
	shares map[int]map[string]float64
}

// NewShareMatrix returns an empty matrix.
func NewShareMatrix() *ShareMatrix {
	return &ShareMatrix{shares: map[int]map[string]float64{}}
}

// Set records a share for the given year and genre.
func (m *ShareMatrix) Set(year int, genre string, share float64) {
	row, ok := m.shares[year]
	if !ok {
		row = map[string]float64{}
		m.shares[year] = row
		m.years = insertSortedInt(m.years, year)
	}
	if _, ok := row[genre]; !ok && !m.hasGenre(genre) {
		m.genres = insertSortedString(m.genres, genre)
	}
	row[genre] = share
}

// Years returns the years in ascending order.
func (m *ShareMatrix) Years() []int {
	return append([]int(nil), m.years...)
}

// Genres returns every genre recorded in any year, sorted by name.
func (m *ShareMatrix) Genres() []string {
	return append([]string(nil), m.genres...)
}

// Len returns the number of years.
func (m *ShareMatrix) Len() int {
	return len(m.years)
}

// Share returns the share of genre in year, or 0 when not recorded.
func (m *ShareMatrix) Share(year int, genre string) float64 {
	return m.shares[year][genre]
}

// Has reports whether genre was recorded for year.
func (m *ShareMatrix) Has(year int, genre string) bool {
	_, ok := m.shares[year][genre]
	return ok
}

// Row returns a copy of the recorded shares for year.
func (m *ShareMatrix) Row(year int) map[string]float64 {
	row := m.shares[year]
	out := make(map[string]float64, len(row))
	for g, v := range row {
		out[g] = v
	}
	return out
}

// Series returns the share of genre for every year, absent years as 0.
func (m *ShareMatrix) Series(genre string) []float64 {
	out := make([]float64, len(m.years))
	for i, y := range m.years {
		out[i] = m.Share(y, genre)
	}
	return out
}

// Collapse keeps the given genres and sums every other genre into OtherGenre.
// The Other column is only added when something was folded into it. A kept
// genre that is itself named OtherGenre absorbs the folded share.
func (m *ShareMatrix) Collapse(keep []string) *ShareMatrix {
	keepSet := make(map[string]struct{}, len(keep))
	for _, g := range keep {
		keepSet[g] = struct{}{}
	}
	out := NewShareMatrix()
	for _, y := range m.years {
		other := 0.0
		folded := false
		for _, g := range m.genres {
			v, ok := m.shares[y][g]
			if !ok {
				continue
			}
			if _, ok := keepSet[g]; ok {
				out.Set(y, g, v)
				continue
			}
			other += v
			folded = true
		}
		if folded {
			out.Set(y, OtherGenre, out.Share(y, OtherGenre)+other)
		}
	}
	return out
}

// Between returns the rows whose year lies in [start, end].
func (m *ShareMatrix) Between(start, end int) *ShareMatrix {
	out := NewShareMatrix()
	for _, y := range m.years {
		if y < start || y > end {
			continue
		}
		for g, v := range m.shares[y] {
			out.Set(y, g, v)
		}
	}
	return out
}

func (m *ShareMatrix) hasGenre(genre string) bool {
	i := sort.SearchStrings(m.genres, genre)
	return i < len(m.genres) && m.genres[i] == genre
}

func insertSortedInt(xs []int, v int) []int {
	i := sort.SearchInts(xs, v)
	if i < len(xs) && xs[i] == v {
		return xs
	}
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

func insertSortedString(xs []string, v string) []string {
	i := sort.SearchStrings(xs, v)
	if i < len(xs) && xs[i] == v {
		return xs
	}
	xs = append(xs, "")
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

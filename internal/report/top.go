package report

import (
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/vgtrends/internal/market"
)

// TopGenres returns the n genres with the highest mean share across all years.
func TopGenres(m *market.ShareMatrix, n int) []string {
	if n <= 0 || m.Len() == 0 {
		return nil
	}
	type item struct {
		genre string
		mean  float64
	}
	genres := m.Genres()
	items := make([]item, 0, len(genres))
	for _, g := range genres {
		items = append(items, item{genre: g, mean: stats.Mean(m.Series(g))})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].mean == items[j].mean {
			return items[i].genre < items[j].genre
		}
		return items[i].mean > items[j].mean
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].genre)
	}
	return out
}

// CollapseTop keeps the top n genres and folds the rest into market.OtherGenre.
// n <= 0 keeps every genre.
func CollapseTop(m *market.ShareMatrix, n int) *market.ShareMatrix {
	if n <= 0 || n >= len(m.Genres()) {
		return m
	}
	return m.Collapse(TopGenres(m, n))
}

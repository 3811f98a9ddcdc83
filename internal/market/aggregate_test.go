package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/vgtrends/internal/model"
)

func rec(year int, genre string, sales float64) model.SalesRecord {
	return model.SalesRecord{Title: genre + " game", Genre: genre, Sales: sales, Publisher: "P", Year: year}
}

func TestAggregateShares(t *testing.T) {
	byYear := map[int][]model.SalesRecord{
		2020: {rec(2020, "Action", 30), rec(2020, "RPG", 30), rec(2020, "Shooter", 20), rec(2020, "Action", 20)},
	}
	m := Aggregate([]int{2020}, byYear)

	require.Equal(t, []int{2020}, m.Years())
	assert.InDelta(t, 50.0, m.Share(2020, "Action"), 1e-9)
	assert.InDelta(t, 30.0, m.Share(2020, "RPG"), 1e-9)
	assert.InDelta(t, 20.0, m.Share(2020, "Shooter"), 1e-9)
	assert.Equal(t, []string{"Action", "RPG", "Shooter"}, m.Genres())
}

func TestAggregateSharesSumToHundred(t *testing.T) {
	byYear := map[int][]model.SalesRecord{
		2001: {rec(2001, "Action", 1.37), rec(2001, "Puzzle", 0.11), rec(2001, "RPG", 7.9)},
		2002: {rec(2002, "Sports", 3.33), rec(2002, "Racing", 3.33), rec(2002, "Sports", 3.34)},
		2003: {rec(2003, "Fighting", 0.01)},
	}
	m := Aggregate([]int{2001, 2002, 2003}, byYear)
	require.Equal(t, 3, m.Len())
	for _, y := range m.Years() {
		sum := 0.0
		for _, v := range m.Row(y) {
			sum += v
		}
		assert.InDelta(t, 100.0, sum, 0.01, "year %d", y)
	}
}

func TestAggregateSkipsZeroTotalYears(t *testing.T) {
	byYear := map[int][]model.SalesRecord{
		2000: {rec(2000, "Action", 0), rec(2000, "RPG", 0)},
		2001: {rec(2001, "Action", 4)},
	}
	m := Aggregate([]int{1999, 2000, 2001}, byYear)
	assert.Equal(t, []int{2001}, m.Years())
	assert.False(t, m.Has(2000, "Action"))
}

func TestAggregateIgnoresMisfiledYears(t *testing.T) {
	byYear := map[int][]model.SalesRecord{
		2010: {rec(2010, "Action", 1), rec(2011, "RPG", 99)},
	}
	m := Aggregate([]int{2010}, byYear)
	assert.InDelta(t, 100.0, m.Share(2010, "Action"), 1e-9)
	assert.False(t, m.Has(2010, "RPG"))
}

func TestAggregateIsIdempotent(t *testing.T) {
	byYear := map[int][]model.SalesRecord{
		2005: {rec(2005, "Action", 2.1), rec(2005, "RPG", 3.7), rec(2005, "Puzzle", 0.4)},
		2006: {rec(2006, "Action", 1.9), rec(2006, "Strategy", 5.5)},
	}
	years := []int{2005, 2006}
	a := Aggregate(years, byYear)
	b := Aggregate(years, byYear)
	assert.Equal(t, a, b)
}

func TestGroupByYearAndRange(t *testing.T) {
	grouped := GroupByYear([]model.SalesRecord{rec(2000, "A", 1), rec(2001, "B", 1), rec(2000, "C", 1)})
	assert.Len(t, grouped[2000], 2)
	assert.Len(t, grouped[2001], 1)

	assert.Equal(t, []int{2000, 2001, 2002}, YearRange(2000, 2002))
	assert.Nil(t, YearRange(2003, 2002))
}

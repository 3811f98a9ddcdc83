package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/vgtrends/internal/market"
)

func sampleMatrix() *market.ShareMatrix {
	m := market.NewShareMatrix()
	m.Set(2000, "Action", 40)
	m.Set(2000, "RPG", 30)
	m.Set(2000, "Puzzle", 20)
	m.Set(2000, "Sports", 10)
	m.Set(2001, "Action", 50)
	m.Set(2001, "RPG", 30)
	m.Set(2001, "Sports", 20)
	return m
}

func TestTopGenres(t *testing.T) {
	m := sampleMatrix()
	assert.Equal(t, []string{"Action", "RPG"}, TopGenres(m, 2))
	// Puzzle is absent in 2001, so its mean falls below Sports.
	assert.Equal(t, []string{"Action", "RPG", "Sports", "Puzzle"}, TopGenres(m, 10))
	assert.Nil(t, TopGenres(m, 0))
}

func TestTopGenresTieBreaksByName(t *testing.T) {
	m := market.NewShareMatrix()
	m.Set(2000, "b", 50)
	m.Set(2000, "a", 50)
	assert.Equal(t, []string{"a", "b"}, TopGenres(m, 2))
}

func TestCollapseTop(t *testing.T) {
	m := sampleMatrix()
	c := CollapseTop(m, 2)
	require.Equal(t, []string{"Action", market.OtherGenre, "RPG"}, c.Genres())
	assert.InDelta(t, 30.0, c.Share(2000, market.OtherGenre), 1e-9)
	assert.InDelta(t, 20.0, c.Share(2001, market.OtherGenre), 1e-9)
	assert.Same(t, m, CollapseTop(m, 0))
}

func TestCollapseTopFoldsIntoExistingOther(t *testing.T) {
	m := market.NewShareMatrix()
	m.Set(2000, market.OtherGenre, 40)
	m.Set(2000, "Action", 30)
	m.Set(2000, "RPG", 20)
	m.Set(2000, "Puzzle", 10)

	c := CollapseTop(m, 2)
	require.Equal(t, []string{"Action", market.OtherGenre}, c.Genres())
	assert.InDelta(t, 70.0, c.Share(2000, market.OtherGenre), 1e-9)
	assert.InDelta(t, 100.0, c.Share(2000, "Action")+c.Share(2000, market.OtherGenre), 1e-9)
}

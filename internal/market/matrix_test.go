package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShareMatrixDefaultsToZero(t *testing.T) {
	m := NewShareMatrix()
	m.Set(2023, "Action", 20)
	m.Set(2000, "Action", 25)
	m.Set(2023, "Puzzle", 10)

	assert.Equal(t, []int{2000, 2023}, m.Years())
	assert.Equal(t, 0.0, m.Share(2000, "Puzzle"))
	assert.False(t, m.Has(2000, "Puzzle"))
	assert.True(t, m.Has(2023, "Puzzle"))
	assert.Equal(t, []float64{0, 10}, m.Series("Puzzle"))
	assert.Equal(t, []float64{25, 20}, m.Series("Action"))
}

func TestShareMatrixRowIsCopy(t *testing.T) {
	m := NewShareMatrix()
	m.Set(2000, "Action", 50)
	row := m.Row(2000)
	row["Action"] = 1
	assert.Equal(t, 50.0, m.Share(2000, "Action"))
}

func TestShareMatrixCollapse(t *testing.T) {
	m := NewShareMatrix()
	m.Set(2000, "Action", 50)
	m.Set(2000, "RPG", 30)
	m.Set(2000, "Puzzle", 20)
	m.Set(2001, "Action", 100)

	c := m.Collapse([]string{"Action"})
	assert.Equal(t, []string{"Action", OtherGenre}, c.Genres())
	assert.InDelta(t, 50.0, c.Share(2000, OtherGenre), 1e-9)
	assert.False(t, c.Has(2001, OtherGenre))
}

func TestShareMatrixBetween(t *testing.T) {
	m := NewShareMatrix()
	for y := 2000; y <= 2005; y++ {
		m.Set(y, "Action", 100)
	}
	sub := m.Between(2002, 2003)
	assert.Equal(t, []int{2002, 2003}, sub.Years())
	assert.Equal(t, 6, m.Len())
}

func TestShareMatrixCollapseKeepsGenreNamedOther(t *testing.T) {
	m := NewShareMatrix()
	m.Set(2000, OtherGenre, 40)
	m.Set(2000, "Action", 30)
	m.Set(2000, "RPG", 20)
	m.Set(2000, "Puzzle", 10)

	c := m.Collapse([]string{OtherGenre, "Action"})
	assert.Equal(t, []string{"Action", OtherGenre}, c.Genres())
	assert.InDelta(t, 30.0, c.Share(2000, "Action"), 1e-9)
	assert.InDelta(t, 70.0, c.Share(2000, OtherGenre), 1e-9)

	sum := 0.0
	for _, v := range c.Row(2000) {
		sum += v
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsSeededByYear(t *testing.T) {
	g := New()
	a := g.Generate(2010)
	b := g.Generate(2010)
	c := g.Generate(2011)

	require.Len(t, a, titlesPerYear)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateRecordShape(t *testing.T) {
	records := NewWithCount(25).Generate(2015)
	require.Len(t, records, 25)
	known := map[string]bool{}
	for _, g := range genres {
		known[g] = true
	}
	assert.Equal(t, "Game 1 (2015)", records[0].Title)
	assert.Equal(t, "Publisher 1", records[0].Publisher)
	assert.Equal(t, "Publisher 1", records[20].Publisher)
	for _, r := range records {
		assert.Equal(t, 2015, r.Year)
		assert.True(t, known[r.Genre], "unexpected genre %q", r.Genre)
		assert.GreaterOrEqual(t, r.Sales, 0.0)
	}
}

func TestGenerateNonNegativeFarFuture(t *testing.T) {
	for _, r := range New().Generate(2150) {
		assert.GreaterOrEqual(t, r.Sales, 0.0)
	}
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, 20.0, Popularity("Shooter", 2000))
	assert.InDelta(t, 31.5, Popularity("Shooter", 2023), 1e-9)
	assert.InDelta(t, 22.7, Popularity("Action", 2023), 1e-9)
	assert.Equal(t, 5.0, Popularity("Rhythm", 2023))
}

func TestFetchHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Fetch(ctx, 2000, "")
	assert.Error(t, err)

	records, err := New().Fetch(context.Background(), 2000, "PS2")
	require.NoError(t, err)
	assert.Len(t, records, titlesPerYear)
}

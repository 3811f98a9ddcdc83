package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/vgtrends/internal/generator"
	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/source"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWithFixtures(t *testing.T) {
	fixtures := source.Static{
		2000: {
			{Title: "a", Genre: "Action", Sales: 25, Year: 2000},
			{Title: "b", Genre: "RPG", Sales: 75, Year: 2000},
		},
		2001: {},
		2023: {
			{Title: "c", Genre: "Action", Sales: 20, Year: 2023},
			{Title: "d", Genre: "RPG", Sales: 70, Year: 2023},
			{Title: "e", Genre: "Puzzle", Sales: 10, Year: 2023},
		},
	}
	res, err := Run(context.Background(), fixtures, Options{StartYear: 2000, EndYear: 2023}, quietLogger())
	require.NoError(t, err)

	assert.Len(t, res.Years, 24)
	assert.Equal(t, []int{2000, 2023}, res.Matrix.Years())
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Report.Declining, 2)
	assert.Equal(t, "Action", res.Report.Declining[0].Genre)
	assert.InDelta(t, -20.0, res.Report.Declining[0].GrowthRate, 1e-9)
	assert.Len(t, res.Report.Concentration, 2)
	assert.Len(t, res.AllRecords(), 5)
}

func TestRunFallsBackToSynthetic(t *testing.T) {
	failing := source.ProviderFunc(func(context.Context, int, string) ([]model.SalesRecord, error) {
		return nil, errors.New("offline")
	})
	p := &source.Fallback{Primary: failing, Secondary: generator.New(), Logger: quietLogger()}

	res, err := Run(context.Background(), p, Options{StartYear: 2000, EndYear: 2003}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001, 2002, 2003}, res.Matrix.Years())
	for _, y := range res.Matrix.Years() {
		sum := 0.0
		for _, v := range res.Matrix.Row(y) {
			sum += v
		}
		assert.InDelta(t, 100.0, sum, 0.01)
	}
	for _, c := range res.Report.Concentration {
		assert.GreaterOrEqual(t, c.HHI, 0.0)
		assert.LessOrEqual(t, c.HHI, 10000.0)
	}
}

func TestRunRejectsInvertedRange(t *testing.T) {
	_, err := Run(context.Background(), source.Static{}, Options{StartYear: 2010, EndYear: 2000}, quietLogger())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, generator.New(), Options{StartYear: 2000, EndYear: 2001}, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubsetReanalyzes(t *testing.T) {
	years := []int{2000, 2001, 2002}
	records := map[int][]model.SalesRecord{}
	for _, y := range years {
		records[y] = generator.NewWithCount(30).Generate(y)
	}
	full := Analyze(years, records, Options{StartYear: 2000, EndYear: 2002})
	sub := Subset(full, 2001, 2002, trend.Options{Limit: 1})

	assert.Equal(t, full.RunID, sub.RunID)
	assert.Equal(t, []int{2001, 2002}, sub.Matrix.Years())
	assert.Equal(t, 2001, sub.Report.FirstYear)
	assert.LessOrEqual(t, len(sub.Report.Stable), 1)
	assert.Equal(t, 3, full.Matrix.Len())
}

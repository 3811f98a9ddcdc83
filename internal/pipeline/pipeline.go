// Package pipeline runs acquisition, aggregation and trend analysis in order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/source"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

// Options selects the years and platform for a run.
type Options struct {
	StartYear int
	EndYear   int
	Platform  string
	Trend     trend.Options
}

// Result is everything a run produced. Nothing in it is shared with another run.
type Result struct {
	RunID     string
	CreatedAt time.Time
	Options   Options
	Years     []int
	Records   map[int][]model.SalesRecord
	Matrix    *market.ShareMatrix
	Report    trend.Report
}

// Run collects records for every year in the range, then aggregates and
// analyzes them. Per-year acquisition failures are the provider's concern
// (see source.Fallback); Run only fails on a bad range, a cancelled context,
// or a provider error that was not recovered.
func Run(ctx context.Context, p source.Provider, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EndYear < opts.StartYear {
		return Result{}, fmt.Errorf("end year %d is before start year %d", opts.EndYear, opts.StartYear)
	}
	years := market.YearRange(opts.StartYear, opts.EndYear)
	logger.Info("collecting sales data",
		slog.Int("start_year", opts.StartYear),
		slog.Int("end_year", opts.EndYear),
		slog.String("platform", opts.Platform))
	records, err := source.Collect(ctx, p, years, opts.Platform, logger)
	if err != nil {
		return Result{}, err
	}
	res := Analyze(years, records, opts)
	logger.Info("analysis complete",
		slog.String("run_id", res.RunID),
		slog.Int("years", res.Matrix.Len()),
		slog.Int("genres", len(res.Matrix.Genres())))
	return res, nil
}

// Analyze aggregates already collected records. The analyzer only sees the
// aggregated matrix.
func Analyze(years []int, records map[int][]model.SalesRecord, opts Options) Result {
	matrix := market.Aggregate(years, records)
	return Result{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Options:   opts,
		Years:     append([]int(nil), years...),
		Records:   records,
		Matrix:    matrix,
		Report:    trend.Analyze(matrix, opts.Trend),
	}
}

// Subset re-runs aggregation and analysis on the years of res within
// [start, end], keeping the collected records.
func Subset(res Result, start, end int, trendOpts trend.Options) Result {
	var years []int
	for _, y := range res.Years {
		if y >= start && y <= end {
			years = append(years, y)
		}
	}
	opts := res.Options
	opts.StartYear, opts.EndYear = start, end
	opts.Trend = trendOpts
	out := Analyze(years, res.Records, opts)
	out.RunID = res.RunID
	out.CreatedAt = res.CreatedAt
	return out
}

// AllRecords flattens the records in year order.
func (r Result) AllRecords() []model.SalesRecord {
	var out []model.SalesRecord
	for _, y := range r.Years {
		out = append(out, r.Records[y]...)
	}
	return out
}

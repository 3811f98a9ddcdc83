// Package source supplies yearly top-seller records.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/verte-zerg/vgtrends/internal/model"
)

// Provider returns the top-seller records for a year and optional platform.
type Provider interface {
	Fetch(ctx context.Context, year int, platform string) ([]model.SalesRecord, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, year int, platform string) ([]model.SalesRecord, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, year int, platform string) ([]model.SalesRecord, error) {
	return f(ctx, year, platform)
}

// Static serves fixed records keyed by year. Missing years return no records.
type Static map[int][]model.SalesRecord

// Fetch implements Provider.
func (s Static) Fetch(_ context.Context, year int, _ string) ([]model.SalesRecord, error) {
	return append([]model.SalesRecord(nil), s[year]...), nil
}

// Fallback asks Primary first and substitutes Secondary for a year when the
// primary fails or returns nothing.
type Fallback struct {
	Primary   Provider
	Secondary Provider
	Logger    *slog.Logger
}

// Fetch implements Provider.
func (f *Fallback) Fetch(ctx context.Context, year int, platform string) ([]model.SalesRecord, error) {
	logger := f.logger()
	records, err := f.Primary.Fetch(ctx, year, platform)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("primary source failed, using fallback data",
			slog.Int("year", year),
			slog.Any("error", err))
	} else if len(records) == 0 {
		logger.Warn("primary source returned no records, using fallback data",
			slog.Int("year", year))
	} else {
		return records, nil
	}
	records, err = f.Secondary.Fetch(ctx, year, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fallback data for %d: %w", year, err)
	}
	return records, nil
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// Throttled waits on Limiter before every call to Provider.
type Throttled struct {
	Provider Provider
	Limiter  *rate.Limiter
}

// Fetch implements Provider.
func (t *Throttled) Fetch(ctx context.Context, year int, platform string) ([]model.SalesRecord, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}
	return t.Provider.Fetch(ctx, year, platform)
}

// Collect fetches every year in order, one at a time. It stops only when the
// context ends or the provider returns an error.
func Collect(ctx context.Context, p Provider, years []int, platform string, logger *slog.Logger) (map[int][]model.SalesRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[int][]model.SalesRecord, len(years))
	for i, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := p.Fetch(ctx, year, platform)
		if err != nil {
			return nil, fmt.Errorf("failed to collect sales data for %d: %w", year, err)
		}
		logger.Info("collected sales data",
			slog.Int("year", year),
			slog.Int("records", len(records)),
			slog.Int("progress", i+1),
			slog.Int("total", len(years)))
		out[year] = records
	}
	return out, nil
}

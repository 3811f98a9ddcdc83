package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/verte-zerg/vgtrends/internal/chart"
	"github.com/verte-zerg/vgtrends/internal/export"
	"github.com/verte-zerg/vgtrends/internal/logging"
	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/pipeline"
	"github.com/verte-zerg/vgtrends/internal/report"
	"github.com/verte-zerg/vgtrends/internal/store"
)

// writeOutputs writes every selected format. A failing format is logged and
// the remaining ones are still attempted; the first error is returned.
func writeOutputs(ctx context.Context, cfg model.Config, res pipeline.Result, logger *slog.Logger) error {
	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		logger.Error("failed to write output", slog.String("output", what), slog.Any("error", err))
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to write %s: %w", what, err)
		}
	}

	if slices.Contains(cfg.Formats, "csv") {
		w := export.NewCSVWriter(cfg.OutDir, logging.Component(logger, "csv"))
		_, err := w.WriteShares(res.Matrix)
		record("csv", err)
		_, err = w.WriteRecords(res.AllRecords())
		record("csv", err)
	}
	if slices.Contains(cfg.Formats, "xlsx") {
		_, err := export.WriteWorkbook(cfg.OutDir, res, logging.Component(logger, "xlsx"))
		record("xlsx", err)
	}
	if slices.Contains(cfg.Formats, "sqlite") {
		record("sqlite", saveRun(ctx, cfg.DBPath, res, logger))
	}
	png := slices.Contains(cfg.Formats, "png")
	svg := slices.Contains(cfg.Formats, "svg")
	if png || svg {
		top := report.TopGenres(res.Matrix, cfg.TopN)
		paths, err := chart.Write(cfg.OutDir, report.CollapseTop(res.Matrix, cfg.TopN), top, png, svg)
		for _, p := range paths {
			logger.Info("chart written", slog.String("path", p))
		}
		record("charts", err)
	}
	return firstErr
}

func saveRun(ctx context.Context, path string, res pipeline.Result, logger *slog.Logger) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.SaveRun(ctx, res); err != nil {
		return err
	}
	logger.Info("run stored", slog.String("run_id", res.RunID), slog.String("path", path))
	return nil
}

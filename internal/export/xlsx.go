package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/vgtrends/internal/pipeline"
	"github.com/verte-zerg/vgtrends/internal/trend"
)

// Sheet names of the workbook.
const (
	SheetShares        = "Market Share"
	SheetGrowth        = "Growth"
	SheetStability     = "Stability"
	SheetConcentration = "Concentration"
	SheetRecords       = "Records"
)

const colWidth = 16

// WriteWorkbook writes shares, rankings, concentration and records of res as
// one sheet each. Ranking values are rounded to two decimals.
func WriteWorkbook(dir string, res pipeline.Result, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, WorkbookFile)

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetShares); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	genres := res.Matrix.Genres()
	shareCells := make([][]any, 0, res.Matrix.Len())
	for _, y := range res.Matrix.Years() {
		row := []any{y}
		for _, g := range genres {
			row = append(row, res.Matrix.Share(y, g))
		}
		shareCells = append(shareCells, row)
	}
	if err := writeSheet(f, SheetShares, append([]string{"Year"}, genres...), shareCells); err != nil {
		return "", err
	}

	growthHeaders := []string{"Direction", "Genre", "Growth Rate %", "Absolute Change", "Start Share %", "End Share %"}
	var growth [][]any
	for _, g := range res.Report.Growing {
		growth = append(growth, growthRow("growing", g))
	}
	for _, g := range res.Report.Declining {
		growth = append(growth, growthRow("declining", g))
	}
	if err := addSheet(f, SheetGrowth, growthHeaders, growth); err != nil {
		return "", err
	}

	var stable [][]any
	for _, s := range res.Report.Stable {
		stable = append(stable, []any{
			s.Genre,
			trend.Round2(s.CoefficientOfVariation),
			trend.Round2(s.StdDev),
			trend.Round2(s.MeanShare),
		})
	}
	if err := addSheet(f, SheetStability, []string{"Genre", "CV %", "Std Dev", "Mean Share %"}, stable); err != nil {
		return "", err
	}

	var conc [][]any
	for _, c := range res.Report.Concentration {
		conc = append(conc, []any{c.Year, trend.Round2(c.HHI), c.Label})
	}
	if err := addSheet(f, SheetConcentration, []string{"Year", "HHI", "Level"}, conc); err != nil {
		return "", err
	}

	var recs [][]any
	for _, r := range res.AllRecords() {
		recs = append(recs, []any{r.Year, r.Title, r.Genre, r.Sales, r.Publisher})
	}
	if err := addSheet(f, SheetRecords, recordHeaders, recs); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	logger.Debug("wrote workbook", slog.String("path", path), slog.Int("years", res.Matrix.Len()))
	return path, nil
}

func growthRow(direction string, g trend.Growth) []any {
	return []any{
		direction,
		g.Genre,
		trend.Round2(g.GrowthRate),
		trend.Round2(g.AbsoluteChange),
		trend.Round2(g.StartShare),
		trend.Round2(g.EndShare),
	}
}

func addSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return writeSheet(f, sheet, headers, rows)
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s cell %s: %w", sheet, cell, err)
			}
		}
	}
	if len(headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, colWidth); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", sheet, err)
		}
	}
	return nil
}

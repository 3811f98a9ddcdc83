// Package export writes run results to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/model"
)

// File names written into the output directory.
const (
	ShareCSVFile   = "genre_market_share_data.csv"
	RecordsCSVFile = "sales_records.csv"
	WorkbookFile   = "genre_market_share.xlsx"
)

// CSVWriter writes CSV files below a base directory.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteCSV writes headers and records to name, replacing any existing file.
func (w *CSVWriter) WriteCSV(name string, headers []string, records [][]string) (string, error) {
	fullPath := filepath.Join(w.dir, name)
	w.logger.Debug("writing csv file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// WriteShares writes the share matrix, one row per year.
func (w *CSVWriter) WriteShares(m *market.ShareMatrix) (string, error) {
	headers, rows := ShareRows(m)
	return w.WriteCSV(ShareCSVFile, headers, rows)
}

// WriteRecords writes every sales record in the given order.
func (w *CSVWriter) WriteRecords(records []model.SalesRecord) (string, error) {
	return w.WriteCSV(RecordsCSVFile, recordHeaders, recordRows(records))
}

// ShareRows lays out m as a Year column followed by one column per genre.
// Shares keep full precision.
func ShareRows(m *market.ShareMatrix) ([]string, [][]string) {
	genres := m.Genres()
	headers := append([]string{"Year"}, genres...)
	rows := make([][]string, 0, m.Len())
	for _, y := range m.Years() {
		row := make([]string, 0, len(genres)+1)
		row = append(row, strconv.Itoa(y))
		for _, g := range genres {
			row = append(row, formatFloat(m.Share(y, g)))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

var recordHeaders = []string{"Year", "Title", "Genre", "Sales", "Publisher"}

func recordRows(records []model.SalesRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			r.Title,
			r.Genre,
			formatFloat(r.Sales),
			r.Publisher,
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package export

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/pipeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() pipeline.Result {
	records := map[int][]model.SalesRecord{
		2000: {
			{Title: "a", Genre: "Action", Sales: 25, Publisher: "P1", Year: 2000},
			{Title: "b, the sequel", Genre: "RPG", Sales: 75, Publisher: "P2", Year: 2000},
		},
		2001: {
			{Title: "c", Genre: "Action", Sales: 40, Publisher: "P1", Year: 2001},
			{Title: "d", Genre: "RPG", Sales: 60, Publisher: "P2", Year: 2001},
		},
	}
	return pipeline.Analyze([]int{2000, 2001}, records, pipeline.Options{StartYear: 2000, EndYear: 2001})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteShares(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewCSVWriter(dir, quietLogger())

	path, err := w.WriteShares(sampleResult().Matrix)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ShareCSVFile), path)

	rows := readCSV(t, path)
	assert.Equal(t, [][]string{
		{"Year", "Action", "RPG"},
		{"2000", "25", "75"},
		{"2001", "40", "60"},
	}, rows)
}

func TestWriteRecords(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, quietLogger())
	path, err := w.WriteRecords(sampleResult().AllRecords())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 5)
	assert.Equal(t, recordHeaders, rows[0])
	assert.Equal(t, []string{"2000", "b, the sequel", "RPG", "75", "P2"}, rows[2])
}

func TestWriteCSVOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, quietLogger())
	_, err := w.WriteCSV("x.csv", []string{"a"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)
	path, err := w.WriteCSV("x.csv", []string{"a"}, [][]string{{"3"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"3"}}, readCSV(t, path))
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()
	path, err := WriteWorkbook(dir, res, quietLogger())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	assert.Equal(t, []string{SheetShares, SheetGrowth, SheetStability, SheetConcentration, SheetRecords}, f.GetSheetList())

	header, err := f.GetCellValue(SheetShares, "C1")
	require.NoError(t, err)
	assert.Equal(t, "RPG", header)
	share, err := f.GetCellValue(SheetShares, "B3")
	require.NoError(t, err)
	assert.Equal(t, "40", share)

	growth, err := f.GetRows(SheetGrowth)
	require.NoError(t, err)
	require.Len(t, growth, 3)
	assert.Equal(t, []string{"growing", "Action", "60", "15", "25", "40"}, growth[1])
	assert.Equal(t, "declining", growth[2][0])

	conc, err := f.GetRows(SheetConcentration)
	require.NoError(t, err)
	require.Len(t, conc, 3)
	assert.Equal(t, []string{"2000", "6250", "High"}, conc[1])

	recs, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

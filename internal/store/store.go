// Package store persists analysis runs to SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/vgtrends/internal/market"
	"github.com/verte-zerg/vgtrends/internal/model"
	"github.com/verte-zerg/vgtrends/internal/pipeline"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoRuns is returned when the database holds no runs.
var ErrNoRuns = errors.New("no runs stored")

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			start_year INTEGER NOT NULL,
			end_year INTEGER NOT NULL,
			platform TEXT NOT NULL,
			records INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sales_records (
			run_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			title TEXT NOT NULL,
			genre TEXT NOT NULL,
			sales REAL NOT NULL,
			publisher TEXT NOT NULL,
			PRIMARY KEY (run_id, year, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS shares (
			run_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			genre TEXT NOT NULL,
			share REAL NOT NULL,
			PRIMARY KEY (run_id, year, genre)
		);`,
		`CREATE TABLE IF NOT EXISTS concentration (
			run_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			hhi REAL NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (run_id, year)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a run with its records, share matrix and concentration series.
func (s *Store) SaveRun(ctx context.Context, res pipeline.Result) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	records := res.AllRecords()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, start_year, end_year, platform, records) VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID,
		res.CreatedAt.Format(time.RFC3339Nano),
		res.Options.StartYear,
		res.Options.EndYear,
		res.Options.Platform,
		len(records),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	seq := map[int]int{}
	for _, r := range records {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sales_records (run_id, year, seq, title, genre, sales, publisher) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			res.RunID, r.Year, seq[r.Year], r.Title, r.Genre, r.Sales, r.Publisher,
		); err != nil {
			return fmt.Errorf("failed to insert sales record: %w", err)
		}
		seq[r.Year]++
	}

	for _, y := range res.Matrix.Years() {
		for genre, share := range res.Matrix.Row(y) {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO shares (run_id, year, genre, share) VALUES (?, ?, ?, ?)`,
				res.RunID, y, genre, share,
			); err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
	}

	for _, c := range res.Report.Concentration {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO concentration (run_id, year, hhi, label) VALUES (?, ?, ?, ?)`,
			res.RunID, c.Year, c.HHI, c.Label,
		); err != nil {
			return fmt.Errorf("failed to insert concentration: %w", err)
		}
	}

	err = tx.Commit()
	return err
}

// ListRuns returns stored runs, newest first. limit <= 0 returns all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	query := `SELECT id, created_at, start_year, end_year, platform, records FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	var out []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestRun returns the most recently created run, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (model.RunSummary, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return model.RunSummary{}, err
	}
	if len(runs) == 0 {
		return model.RunSummary{}, ErrNoRuns
	}
	return runs[0], nil
}

// LoadRecords returns the sales records of a run grouped by year, in stored order.
func (s *Store) LoadRecords(ctx context.Context, runID string) (map[int][]model.SalesRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, title, genre, sales, publisher FROM sales_records WHERE run_id = ? ORDER BY year, seq`,
		runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	var records []model.SalesRecord
	for rows.Next() {
		var r model.SalesRecord
		if err := rows.Scan(&r.Year, &r.Title, &r.Genre, &r.Sales, &r.Publisher); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return market.GroupByYear(records), nil
}

// LoadShares rebuilds the share matrix stored for a run.
func (s *Store) LoadShares(ctx context.Context, runID string) (*market.ShareMatrix, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, genre, share FROM shares WHERE run_id = ? ORDER BY year, genre`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	m := market.NewShareMatrix()
	for rows.Next() {
		var (
			year  int
			genre string
			share float64
		)
		if err := rows.Scan(&year, &genre, &share); err != nil {
			return nil, err
		}
		m.Set(year, genre, share)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.RunSummary, error) {
	var (
		run       model.RunSummary
		createdAt string
	)
	if err := row.Scan(&run.ID, &createdAt, &run.StartYear, &run.EndYear, &run.Platform, &run.Records); err != nil {
		return model.RunSummary{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("failed to parse run time: %w", err)
	}
	run.CreatedAt = t
	return run, nil
}

// Package model defines shared data structures.
package model

import "time"

// Source modes.
const (
	SourceRemote    = "remote"
	SourceSynthetic = "synthetic"
)

// Config defines analysis settings after flags, env and file are merged.
type Config struct {
	StartYear int      `validate:"gte=1970,lte=2100"`
	EndYear   int      `validate:"gtefield=StartYear,lte=2100"`
	Platform  string   `validate:"max=64"`
	Source    string   `validate:"oneof=remote synthetic"`
	BaseURL   string   `validate:"omitempty,url"`
	Rate      float64  `validate:"gte=0"`
	Timeout   float64  `validate:"gt=0"`
	Titles    int      `validate:"gte=1,lte=1000"`
	TopN      int      `validate:"gte=1,lte=20"`
	Limit     int      `validate:"gte=1,lte=50"`
	MinMean   float64  `validate:"gt=0,lte=100"`
	OutDir    string   `validate:"required"`
	Formats   []string `validate:"dive,oneof=csv xlsx sqlite png svg"`
	DBPath    string
	LogLevel  string `validate:"omitempty,oneof=debug info warn error"`
}

// SalesRecord is a single top-seller entry for a year. Sales are in millions of units.
type SalesRecord struct {
	Title     string
	Genre     string
	Sales     float64
	Publisher string
	Year      int
}

// RunSummary describes a run stored in a SQLite export.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	StartYear int
	EndYear   int
	Platform  string
	Records   int
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. The same layout is read
// from VGTRENDS_* environment variables.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Source   SourceConfig   `toml:"source"`
	Output   OutputConfig   `toml:"output"`
	Log      LogConfig      `toml:"log"`
}

// AnalysisConfig maps analysis-related settings.
type AnalysisConfig struct {
	StartYear *int     `toml:"start-year" split_words:"true"`
	EndYear   *int     `toml:"end-year" split_words:"true"`
	Platform  *string  `toml:"platform"`
	TopN      *int     `toml:"top" split_words:"true"`
	Limit     *int     `toml:"limit"`
	MinMean   *float64 `toml:"min-mean" split_words:"true"`
}

// SourceConfig maps data source settings.
type SourceConfig struct {
	Mode    *string  `toml:"mode"`
	BaseURL *string  `toml:"base-url" split_words:"true"`
	Rate    *float64 `toml:"rate"`
	Timeout *float64 `toml:"timeout"`
	Titles  *int     `toml:"titles"`
}

// OutputConfig maps export settings.
type OutputConfig struct {
	Dir     *string   `toml:"dir"`
	Formats *[]string `toml:"formats"`
	DB      *string   `toml:"db"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

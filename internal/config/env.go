package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. VGTRENDS_ANALYSIS_START_YEAR.
const EnvPrefix = "VGTRENDS"

// LoadEnv reads overrides from the environment. Unset variables stay nil.
func LoadEnv() (FileConfig, error) {
	var cfg FileConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Merge overlays every value set in over onto base.
func Merge(base, over FileConfig) FileConfig {
	out := base
	overlay(&out.Analysis.StartYear, over.Analysis.StartYear)
	overlay(&out.Analysis.EndYear, over.Analysis.EndYear)
	overlay(&out.Analysis.Platform, over.Analysis.Platform)
	overlay(&out.Analysis.TopN, over.Analysis.TopN)
	overlay(&out.Analysis.Limit, over.Analysis.Limit)
	overlay(&out.Analysis.MinMean, over.Analysis.MinMean)
	overlay(&out.Source.Mode, over.Source.Mode)
	overlay(&out.Source.BaseURL, over.Source.BaseURL)
	overlay(&out.Source.Rate, over.Source.Rate)
	overlay(&out.Source.Timeout, over.Source.Timeout)
	overlay(&out.Source.Titles, over.Source.Titles)
	overlay(&out.Output.Dir, over.Output.Dir)
	overlay(&out.Output.Formats, over.Output.Formats)
	overlay(&out.Output.DB, over.Output.DB)
	overlay(&out.Log.Level, over.Log.Level)
	return out
}

func overlay[T any](target **T, value *T) {
	if value != nil {
		*target = value
	}
}

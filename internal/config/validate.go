package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/vgtrends/internal/model"
)

var validate = validator.New()

// flagNames maps model.Config fields onto the CLI flags that set them.
var flagNames = map[string]string{
	"StartYear": "--start",
	"EndYear":   "--end",
	"Platform":  "--platform",
	"Source":    "--source",
	"BaseURL":   "--base-url",
	"Rate":      "--rate",
	"Timeout":   "--timeout",
	"Titles":    "--titles",
	"TopN":      "--top",
	"Limit":     "--limit",
	"MinMean":   "--min-mean",
	"OutDir":    "--out",
	"Formats":   "--format",
	"LogLevel":  "--log-level",
}

// Validate checks cfg and reports the first problem in terms of its flag.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	return describe(verrs[0])
}

func describe(fe validator.FieldError) error {
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	name, ok := flagNames[field]
	if !ok {
		name = field
	}
	switch fe.Tag() {
	case "gte":
		return fmt.Errorf("%s must be >= %s", name, fe.Param())
	case "gt":
		return fmt.Errorf("%s must be > %s", name, fe.Param())
	case "lte":
		return fmt.Errorf("%s must be <= %s", name, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", name, fe.Param())
	case "gtefield":
		return fmt.Errorf("%s must not be before %s", name, flagNames[fe.Param()])
	case "oneof":
		return fmt.Errorf("%s must be one of: %s (got %v)", name, fe.Param(), fe.Value())
	case "required":
		return fmt.Errorf("%s must not be empty", name)
	case "url":
		return fmt.Errorf("%s must be a URL (got %v)", name, fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s)", name, fe.Tag())
	}
}

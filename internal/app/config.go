package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/argcegar/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Paths are program files, directories or glob patterns.
	Paths []string `validate:"min=1,dive,required"`

	LogFormat       string `validate:"oneof=text json auto"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"min=0,max=65535"`

	ReportFormat string `validate:"oneof=yaml json"`
	// Watch re-runs verification whenever a program file changes.
	Watch         bool
	WatchDebounce time.Duration `validate:"min=0"`

	Overrides Overrides
}

// Overrides replace analysis options loaded from files. Nil fields keep the
// loaded value.
type Overrides struct {
	InterpolationOrder    *string
	InterpolationStrategy *string
	RestartStrategy       *string
	WaitlistOrder         *string
	PrecisionScope        *string
	MaxRefinements        *int
	RoundTimeout          *time.Duration
	VerifyInterpolants    *bool
}

// Apply writes every set override into a.
func (o Overrides) Apply(a *config.Analysis) {
	setIf(&a.InterpolationOrder, o.InterpolationOrder)
	setIf(&a.InterpolationStrategy, o.InterpolationStrategy)
	setIf(&a.RestartStrategy, o.RestartStrategy)
	setIf(&a.WaitlistOrder, o.WaitlistOrder)
	setIf(&a.PrecisionScope, o.PrecisionScope)
	setIf(&a.MaxRefinements, o.MaxRefinements)
	setIf(&a.RoundTimeout, o.RoundTimeout)
	setIf(&a.VerifyInterpolants, o.VerifyInterpolants)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

var validate = validator.New()

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one program path is required")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "auto"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "yaml"
	}
	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = 200 * time.Millisecond
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Interpolation orders.
const (
	OrderTopDown  = "top-down"
	OrderBottomUp = "bottom-up"
)

// Interpolation strategies.
const (
	StrategySequential = "sequential"
	StrategyInductive  = "inductive"
	StrategyNested     = "nested"
)

// Precision scopes.
const (
	ScopeLocation = "location"
	ScopeGlobal   = "global"
)

// Waitlist orders.
const (
	WaitlistBFS = "bfs"
	WaitlistDFS = "dfs"
)

// Restart strategies.
const (
	RestartRoot       = "root"
	RestartStrengthen = "strengthen"
)

// Analysis holds the options of one verification run.
type Analysis struct {
	InterpolationOrder    string        `validate:"oneof=top-down bottom-up"`
	InterpolationStrategy string        `validate:"oneof=sequential inductive nested"`
	PrecisionScope        string        `validate:"oneof=location global"`
	WaitlistOrder         string        `validate:"oneof=bfs dfs"`
	RestartStrategy       string        `validate:"oneof=root strengthen"`
	MaxRefinements        int           `validate:"min=0"`
	RoundTimeout          time.Duration `validate:"min=0"`
	VerifyInterpolants    bool
	MaxPathLength         int `validate:"min=0"`
	UseDefPruning         bool
	IgnoreLoopExitAssumes bool
}

// DefaultAnalysis returns the options used when no `analysis` block exists.
func DefaultAnalysis() *Analysis {
	return &Analysis{
		InterpolationOrder:    OrderTopDown,
		InterpolationStrategy: StrategyInductive,
		PrecisionScope:        ScopeLocation,
		WaitlistOrder:         WaitlistDFS,
		RestartStrategy:       RestartRoot,
		MaxRefinements:        50,
		UseDefPruning:         true,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the option values.
func (a *Analysis) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid analysis options: %w", err)
	}
	return nil
}

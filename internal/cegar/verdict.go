package cegar

import (
	"time"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/domain"
)

// Verdict is the outcome of a run.
type Verdict string

const (
	Safe    Verdict = "SAFE"
	Unsafe  Verdict = "UNSAFE"
	Unknown Verdict = "UNKNOWN"
)

// Result is what a run established.
type Result struct {
	Verdict Verdict
	// Reason explains an UNKNOWN verdict.
	Reason string
	Rounds int
	// Counterexample and Model are set for UNSAFE.
	Counterexample argpath.Path
	Model          string
	// Unreliable marks a counterexample that is not the exact path the
	// feasibility check confirmed.
	Unreliable bool
	Nodes      int
	Precision  domain.Precision
	Duration   time.Duration
}

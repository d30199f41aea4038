package interpolation

import (
	"errors"
	"fmt"
)

// Prover failures.
var (
	ErrInterpolationFailed = errors.New("interpolation failed")
	ErrTimeout             = errors.New("refinement timed out")
	ErrFormulaTooLarge     = errors.New("formula too large")
)

// SatError reports that the formulas are satisfiable, so no interpolants
// exist.
type SatError struct {
	// Model describes a satisfying assignment.
	Model string
}

func (e *SatError) Error() string {
	return fmt.Sprintf("formulas are satisfiable: %s", e.Model)
}

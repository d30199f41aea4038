package refine

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/interpolation"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

var (
	// ErrContractViolation wraps structural errors of the graph that escape a
	// refinement round.
	ErrContractViolation = errors.New("internal contract violation")
	// ErrRepeatedCounterexample reports that a round found the same error
	// path as the previous one without growing the precision.
	ErrRepeatedCounterexample = errors.New("repeated counterexample")
	// ErrEmptyIncrement reports that interpolation found nothing to refine
	// and nothing to cut off.
	ErrEmptyIncrement = errors.New("empty precision increment")
)

// Class groups errors by how the analysis reacts to them.
type Class int

const (
	ClassNone Class = iota
	// ClassContract errors are bugs. The analysis aborts.
	ClassContract
	// ClassNonProgress errors mean refinement cannot make progress. The
	// analysis aborts.
	ClassNonProgress
	// ClassProver errors come from the prover. The verdict is unknown.
	ClassProver
	// ClassPath errors come from path replay. The result is unreliable.
	ClassPath
	ClassInterrupted
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassContract:
		return "contract"
	case ClassNonProgress:
		return "non-progress"
	case ClassProver:
		return "prover"
	case ClassPath:
		return "path"
	case ClassInterrupted:
		return "interrupted"
	default:
		return "other"
	}
}

var structural = []error{
	ErrContractViolation,
	argstore.ErrRemoveRoot,
	argstore.ErrCoveredParent,
	argstore.ErrTargetParent,
	argstore.ErrSecondRoot,
	argstore.ErrAlreadyCovered,
	argstore.ErrCoveringChain,
	argstore.ErrHasChildren,
	argstore.ErrStaleRef,
	argstore.ErrInconsistent,
}

// Classify maps err to its class. Interruption wins over every other class.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, shutdown.ErrInterrupted) {
		return ClassInterrupted
	}
	for _, s := range structural {
		if errors.Is(err, s) {
			return ClassContract
		}
	}
	if errors.Is(err, ErrRepeatedCounterexample) || errors.Is(err, ErrEmptyIncrement) {
		return ClassNonProgress
	}
	var sat *interpolation.SatError
	if errors.Is(err, interpolation.ErrInterpolationFailed) ||
		errors.Is(err, interpolation.ErrTimeout) ||
		errors.Is(err, interpolation.ErrFormulaTooLarge) ||
		errors.As(err, &sat) {
		return ClassProver
	}
	var pathErr *argpath.Error
	if errors.As(err, &pathErr) {
		return ClassPath
	}
	return ClassOther
}

// contract marks a graph error as a contract violation. Interruption passes
// through.
func contract(err error) error {
	if err == nil || errors.Is(err, shutdown.ErrInterrupted) || errors.Is(err, ErrContractViolation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrContractViolation, err)
}

package domain

import (
	"context"

	"github.com/specialistvlad/argcegar/internal/cfa"
)

// State is the abstract value wrapped by a graph node.
type State interface {
	Location() *cfa.Location
	IsTarget() bool
	String() string
}

// Domain computes states.
type Domain interface {
	// Initial returns the state at the program entry.
	Initial(entry *cfa.Location) State
	// InitialPrecision returns the precision every exploration starts with.
	InitialPrecision() Precision
	// Successors returns the states reachable from s along e under p. An
	// empty result means e is infeasible from s.
	Successors(ctx context.Context, s State, p Precision, e *cfa.Edge) ([]State, error)
	// Covers reports whether covering soundly over-approximates covered.
	Covers(covering, covered State) bool
}

// Precision is a domain-owned configuration value. Precisions are replaced
// wholesale and never mutated once stored.
type Precision interface {
	// Tag names the domain the precision belongs to.
	Tag() string
	String() string
}

// Refinable is a precision that refinement can strengthen.
type Refinable interface {
	Precision
	// WithIncrement returns a precision tracking everything p tracks plus inc.
	WithIncrement(inc *Increment) Precision
	// Join returns a precision tracking everything either side tracks. A
	// precision with a different tag leaves p unchanged.
	Join(other Precision) Precision
}

// Interpolant is implemented by a domain's interpolant type I.
type Interpolant[I any] interface {
	IsTrivial() bool
	IsFalse() bool
	// Join combines two interpolants for the same node. The result refutes a
	// prefix only if both inputs refute it.
	Join(other I) I
	// MemoryLocations lists the locations the interpolant constrains.
	MemoryLocations() []cfa.MemoryLocation
	String() string
}

// Strengthener is a state that can be conjoined with an interpolant in place
// of re-exploration. The boolean is false when the result is bottom.
type Strengthener[I any] interface {
	State
	Strengthen(itp I) (State, bool)
}

// Feasibility is the verdict of a feasibility check on one path.
type Feasibility struct {
	Feasible bool
	// Directions maps the ID of every node left through an assume edge to
	// the branch taken. It is complete only for feasible paths.
	Directions map[int]bool
	// InfeasibleAt is the index of the first edge that cannot be taken, or
	// -1 for a feasible path.
	InfeasibleAt int
	// Model describes the final state of a feasible path.
	Model string
}

package interpolation

import (
	"context"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/cfa"
)

// Prover is the external proof capability. F is the formula type, I the
// interpolant type.
type Prover[F, I any] interface {
	True() I
	False() I
	// Satisfiable reports whether start followed by formulas has a model,
	// and describes it.
	Satisfiable(ctx context.Context, start I, formulas []F) (bool, string, error)
	// Interpolate returns an I with start ∧ step ⇒ I and I ∧ rest ⇒ goal.
	Interpolate(ctx context.Context, start I, step, rest []F, goal I) (I, error)
	// Implies reports whether from ∧ step ⇒ to.
	Implies(ctx context.Context, from I, step []F, to I) (bool, error)
	// Variables lists the memory locations formulas mention.
	Variables(formulas []F) []cfa.MemoryLocation
	// Opens and Closes mark function call and return formulas.
	Opens(f F) bool
	Closes(f F) bool
	// Key identifies a formula for caching.
	Key(f F) string
}

// Strategy selects how interpolation queries are ordered.
type Strategy int

const (
	// Inductive derives each interpolant from the previous one and the next
	// formula.
	Inductive Strategy = iota
	// Sequential derives each interpolant from the initial interpolant and the
	// whole prefix, walking backwards from the end.
	Sequential
	// Nested treats every function call as one opaque step and only looks
	// inside calls whose exit interpolant is not trivial.
	Nested
)

// ParseStrategy converts "inductive", "sequential" or "nested".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "inductive":
		return Inductive, nil
	case "sequential":
		return Sequential, nil
	case "nested":
		return Nested, nil
	default:
		return Inductive, fmt.Errorf("unknown interpolation strategy %q", s)
	}
}

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Nested:
		return "nested"
	default:
		return "inductive"
	}
}

package interpolation

import (
	"context"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/cfa"
)

// verify checks the sequence laws and that every interpolant only mentions
// variables shared by its prefix (or the initial interpolant) and its suffix.
func (q *queries[F, I]) verify(ctx context.Context, initial I, formulas []F, itps []I) error {
	if len(itps) != len(formulas)-1 {
		return fmt.Errorf("%w: %d interpolants for %d formulas", ErrInterpolationFailed, len(itps), len(formulas))
	}

	prev := initial
	for i, f := range formulas {
		next := q.prover.False()
		if i < len(itps) {
			next = itps[i]
		}
		ok, err := q.implies(ctx, prev, []F{f}, next)
		if err != nil {
			return wrapProverError(err)
		}
		if !ok {
			return fmt.Errorf("%w: %s followed by formula %d does not imply %s", ErrInterpolationFailed, prev, i, next)
		}
		prev = next
	}

	initialVars := initial.MemoryLocations()
	for i, itp := range itps {
		if itp.IsFalse() {
			continue
		}
		prefix := toSet(q.prover.Variables(formulas[:i+1]), initialVars)
		suffix := toSet(q.prover.Variables(formulas[i+1:]))
		for _, m := range itp.MemoryLocations() {
			_, inPrefix := prefix[m]
			_, inSuffix := suffix[m]
			if !inPrefix || !inSuffix {
				return fmt.Errorf("%w: interpolant %d mentions %s outside the shared scope", ErrInterpolationFailed, i, m)
			}
		}
	}
	return nil
}

func toSet(groups ...[]cfa.MemoryLocation) map[cfa.MemoryLocation]struct{} {
	out := make(map[cfa.MemoryLocation]struct{})
	for _, g := range groups {
		for _, m := range g {
			out[m] = struct{}{}
		}
	}
	return out
}

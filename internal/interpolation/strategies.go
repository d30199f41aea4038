package interpolation

import (
	"context"
)

// inductive walks forward: I_i is derived from I_{i-1} and F_i against the
// rest of the formulas and goal.
func (q *queries[F, I]) inductive(ctx context.Context, start I, formulas []F, goal I) ([]I, error) {
	itps := make([]I, 0, len(formulas)-1)
	prev := start
	for i := 0; i < len(formulas)-1; i++ {
		if prev.IsFalse() {
			itps = append(itps, prev)
			continue
		}
		itp, err := q.interpolate(ctx, prev, formulas[i:i+1], formulas[i+1:], goal)
		if err != nil {
			return nil, err
		}
		itps = append(itps, itp)
		prev = itp
	}
	return itps, nil
}

// sequential walks backward: I_i is derived from the initial interpolant and
// F_0..F_i against F_{i+1} and I_{i+1}.
func (q *queries[F, I]) sequential(ctx context.Context, start I, formulas []F) ([]I, error) {
	n := len(formulas)
	itps := make([]I, n-1)
	next := q.prover.False()
	for i := n - 2; i >= 0; i-- {
		itp, err := q.interpolate(ctx, start, formulas[:i+1], formulas[i+1:i+2], next)
		if err != nil {
			return nil, err
		}
		itps[i] = itp
		next = itp
	}
	return itps, nil
}

// block is the formula range [lo, hi).
type block struct{ lo, hi int }

// span is a range of formulas whose inner cuts still need interpolants. The
// interpolant before lo is entry; after hi-1 the result must imply exit.
type span[I any] struct {
	block
	entry, exit I
	// inner marks a span that is exactly one call: its first and last
	// formulas are single steps.
	inner bool
}

// nested interpolates over blocks, where a block is one formula or a whole
// call up to its matching return. A call whose exit interpolant is trivial
// stays opaque and every cut inside it gets the trivial interpolant.
// Otherwise its inner cuts are interpolated against that exit interpolant.
// Calls inside calls are handled the same way through an explicit stack.
func (q *queries[F, I]) nested(ctx context.Context, start I, formulas []F) ([]I, error) {
	n := len(formulas)
	itps := make([]I, n-1)
	stack := []span[I]{{block: block{0, n}, entry: start, exit: q.prover.False()}}

	for len(stack) > 0 {
		sp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		blocks := q.blocks(formulas, sp.block, sp.inner)
		prev := sp.entry
		for i, b := range blocks {
			exit := sp.exit
			if i < len(blocks)-1 {
				itp, err := q.interpolate(ctx, prev, formulas[b.lo:b.hi], formulas[b.hi:sp.hi], sp.exit)
				if err != nil {
					return nil, err
				}
				itps[b.hi-1] = itp
				exit = itp
			}
			if b.hi-b.lo > 1 {
				if exit.IsTrivial() {
					for c := b.lo; c < b.hi-1; c++ {
						itps[c] = q.prover.True()
					}
				} else {
					stack = append(stack, span[I]{block: b, entry: prev, exit: exit, inner: true})
				}
			}
			prev = exit
		}
	}
	return itps, nil
}

// blocks splits r into single formulas and whole calls.
func (q *queries[F, I]) blocks(formulas []F, r block, inner bool) []block {
	var out []block
	lo, hi := r.lo, r.hi
	if inner {
		out = append(out, block{lo, lo + 1})
		lo, hi = lo+1, hi-1
	}
	for i := lo; i < hi; {
		if q.prover.Opens(formulas[i]) {
			if j := q.matchingClose(formulas, i, hi); j >= 0 {
				out = append(out, block{i, j + 1})
				i = j + 1
				continue
			}
		}
		out = append(out, block{i, i + 1})
		i++
	}
	if inner {
		out = append(out, block{r.hi - 1, r.hi})
	}
	return out
}

// matchingClose returns the index of the return matching the call at open,
// or -1 when it does not occur before hi.
func (q *queries[F, I]) matchingClose(formulas []F, open, hi int) int {
	depth := 0
	for i := open; i < hi; i++ {
		switch {
		case q.prover.Opens(formulas[i]):
			depth++
		case q.prover.Closes(formulas[i]):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

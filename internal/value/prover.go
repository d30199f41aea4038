package value

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// ErrNotRefuted reports that the rest of a path is satisfiable from the
// state an interpolant was requested for.
var ErrNotRefuted = errors.New("remaining path is not refuted")

// ProverOptions tune interpolant derivation.
type ProverOptions struct {
	// IgnoreLoopExitAssumes skips loop-exit assume edges while minimizing,
	// which keeps loop counters out of interpolants where possible.
	IgnoreLoopExitAssumes bool
	// UseDefPruning forgets values the rest of the path never reads without
	// checking them one by one.
	UseDefPruning bool
}

// Prover derives interpolants over sequences of edges. Its formulas are
// edges; a segment is a slice of them.
type Prover struct {
	opts ProverOptions
}

// NewProver returns a prover with the given options.
func NewProver(opts ProverOptions) *Prover {
	return &Prover{opts: opts}
}

func (p *Prover) True() Interpolant  { return True() }
func (p *Prover) False() Interpolant { return False() }

// run executes edges from s. It reports false when an edge is infeasible.
func (p *Prover) run(ctx context.Context, s *State, edges []*cfa.Edge, skipLoopExits bool) (*State, bool, error) {
	poll := shutdown.NewPoller(ctx, 32)
	for _, e := range edges {
		if err := poll.Poll(); err != nil {
			return nil, false, err
		}
		if skipLoopExits && e.Kind == cfa.AssumeEdge && e.LoopExit {
			continue
		}
		next, ok, err := transfer(s, e, mode{})
		if err != nil || !ok {
			return nil, false, err
		}
		s = next
	}
	return s, true, nil
}

// reaches reports whether every execution of rest from s is infeasible or
// ends in a state where goal holds.
func (p *Prover) reaches(ctx context.Context, s *State, rest []*cfa.Edge, goal Interpolant, skipLoopExits bool) (bool, error) {
	final, ok, err := p.run(ctx, s, rest, skipLoopExits)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return goal.holdsIn(final), nil
}

// Satisfiable executes formulas from start and describes the final state when
// they can all be taken.
func (p *Prover) Satisfiable(ctx context.Context, start Interpolant, formulas []*cfa.Edge) (bool, string, error) {
	if start.IsFalse() {
		return false, "", nil
	}
	final, ok, err := p.run(ctx, start.state(), formulas, false)
	if err != nil || !ok {
		return false, "", err
	}
	return true, formatValues(final.values), nil
}

// Implies reports whether from, followed by step, implies to.
func (p *Prover) Implies(ctx context.Context, from Interpolant, step []*cfa.Edge, to Interpolant) (bool, error) {
	if from.IsFalse() {
		return true, nil
	}
	return p.reaches(ctx, from.state(), step, to, false)
}

// Interpolate returns an interpolant implied by start followed by step that,
// followed by rest, implies goal. It starts from the strongest state after
// step and forgets values while rest still reaches goal. Values read by
// loop-exit assumptions are tried first.
func (p *Prover) Interpolate(ctx context.Context, start Interpolant, step, rest []*cfa.Edge, goal Interpolant) (Interpolant, error) {
	if start.IsFalse() {
		return False(), nil
	}
	s, ok, err := p.run(ctx, start.state(), step, false)
	if err != nil {
		return Interpolant{}, err
	}
	if !ok {
		return False(), nil
	}

	holds, err := p.reaches(ctx, s, rest, goal, false)
	if err != nil {
		return Interpolant{}, err
	}
	if !holds {
		return Interpolant{}, fmt.Errorf("%w: %d edges after the cut, goal %s", ErrNotRefuted, len(rest), goal)
	}

	skip := p.opts.IgnoreLoopExitAssumes
	if skip {
		relaxed, err := p.reaches(ctx, s, rest, goal, true)
		if err != nil {
			return Interpolant{}, err
		}
		if !relaxed {
			// Only the loop exits refute rest; keep everything.
			return s.Interpolant(), nil
		}
	}

	relevant := make(map[cfa.MemoryLocation]struct{})
	for _, m := range usedBy(rest) {
		relevant[m] = struct{}{}
	}
	for _, m := range goal.MemoryLocations() {
		relevant[m] = struct{}{}
	}

	var loopVars, others []cfa.MemoryLocation
	loopUses := make(map[cfa.MemoryLocation]struct{})
	for _, e := range rest {
		if e.Kind == cfa.AssumeEdge && e.LoopExit {
			for _, m := range e.Uses() {
				loopUses[m] = struct{}{}
			}
		}
	}
	for _, m := range s.Tracked() {
		if _, ok := relevant[m]; !ok && p.opts.UseDefPruning {
			s.forget(m)
			continue
		}
		if _, ok := loopUses[m]; ok {
			loopVars = append(loopVars, m)
		} else {
			others = append(others, m)
		}
	}

	poll := shutdown.NewPoller(ctx, 1)
	for _, m := range append(loopVars, others...) {
		if err := poll.Poll(); err != nil {
			return Interpolant{}, err
		}
		v, _ := s.forget(m)
		ok, err := p.reaches(ctx, s, rest, goal, skip)
		if err != nil {
			return Interpolant{}, err
		}
		if !ok {
			s.assign(m, v)
		}
	}
	return s.Interpolant(), nil
}

// Variables returns every memory location read or written by formulas.
func (p *Prover) Variables(formulas []*cfa.Edge) []cfa.MemoryLocation {
	seen := make(map[cfa.MemoryLocation]struct{})
	var out []cfa.MemoryLocation
	for _, e := range formulas {
		for _, group := range [][]cfa.MemoryLocation{e.Uses(), e.Defs()} {
			for _, m := range group {
				if _, ok := seen[m]; !ok {
					seen[m] = struct{}{}
					out = append(out, m)
				}
			}
		}
	}
	cfa.SortLocations(out)
	return out
}

// Opens reports whether e enters a function.
func (p *Prover) Opens(e *cfa.Edge) bool { return e.IsCall() }

// Closes reports whether e leaves a function.
func (p *Prover) Closes(e *cfa.Edge) bool { return e.IsReturn() }

// Key identifies e within one program.
func (p *Prover) Key(e *cfa.Edge) string { return strconv.Itoa(e.ID) }

func usedBy(edges []*cfa.Edge) []cfa.MemoryLocation {
	var out []cfa.MemoryLocation
	for _, e := range edges {
		out = append(out, e.Uses()...)
	}
	return out
}

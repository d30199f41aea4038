package explore

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/metrics"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/reached"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// Result summarises one call to Run.
type Result struct {
	// Target is the target node that stopped exploration, or nodeid.None
	// when the waitlist ran empty.
	Target   nodeid.Ref
	Expanded int
	Added    int
	Covered  int
}

// Found reports whether exploration stopped at a target.
func (r Result) Found() bool { return !r.Target.IsZero() }

// Explorer drives a domain over a reached set.
type Explorer struct {
	reached *reached.Reached
	domain  domain.Domain
}

// New returns an explorer.
func New(r *reached.Reached, d domain.Domain) *Explorer {
	return &Explorer{reached: r, domain: d}
}

// Start adds the root node for entry with the domain's initial precision.
func (e *Explorer) Start(entry *cfa.Location) (nodeid.Ref, error) {
	root, err := e.reached.Add(e.domain.Initial(entry), e.domain.InitialPrecision())
	if err != nil {
		return nodeid.None, fmt.Errorf("adding root at %s: %w", entry, err)
	}
	return root, nil
}

// Run expands waiting nodes until the waitlist is empty or the expansion of
// a node adds a target. The node is always expanded completely, so a target
// that refinement later cuts off is not rediscovered from the same parent.
func (e *Explorer) Run(ctx context.Context) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	var res Result
	defer func() {
		metrics.ARGSize.Set(float64(e.reached.Size()))
	}()

	for {
		if err := shutdown.Check(ctx); err != nil {
			return res, err
		}
		ref, prec, ok := e.reached.Pop()
		if !ok {
			break
		}
		if e.reached.ARG().IsTarget(ref) {
			res.Target = ref
			break
		}

		target, err := e.expand(ctx, ref, prec, &res)
		if err != nil {
			return res, err
		}
		res.Expanded++
		if !target.IsZero() {
			res.Target = target
			break
		}
	}

	logger.Debug("Exploration stopped.",
		"target", res.Found(),
		"expanded", res.Expanded,
		"added", res.Added,
		"covered", res.Covered,
		"nodes", e.reached.Size(),
		"duration", time.Since(start),
	)
	return res, nil
}

// expand computes the missing successors of ref and returns the first
// target among them.
func (e *Explorer) expand(ctx context.Context, ref nodeid.Ref, prec domain.Precision, res *Result) (nodeid.Ref, error) {
	arg := e.reached.ARG()
	state := arg.State(ref)

	done := make(map[*cfa.Edge]struct{})
	for _, c := range arg.Children(ref) {
		done[c.Edge] = struct{}{}
	}

	target := nodeid.None
	for _, edge := range state.Location().Leaving {
		if _, ok := done[edge]; ok {
			continue
		}
		succs, err := e.domain.Successors(ctx, state, prec, edge)
		if err != nil {
			return nodeid.None, fmt.Errorf("successors of %s along %s: %w", ref, edge, err)
		}
		for _, succ := range succs {
			child, err := e.reached.Add(succ, prec, argstore.ParentLink{Ref: ref, Edge: edge})
			if err != nil {
				return nodeid.None, fmt.Errorf("adding successor of %s: %w", ref, err)
			}
			res.Added++
			if succ.IsTarget() {
				if target.IsZero() {
					target = child
				}
				continue
			}
			if by, ok := e.covering(child, succ); ok {
				if err := e.reached.Cover(child, by); err != nil {
					return nodeid.None, err
				}
				res.Covered++
			}
		}
	}

	if err := e.reached.MarkExpanded(ref); err != nil {
		return nodeid.None, err
	}
	return target, nil
}

// covering returns an uncovered node at succ's location, other than child,
// whose state covers succ.
func (e *Explorer) covering(child nodeid.Ref, succ domain.State) (nodeid.Ref, bool) {
	arg := e.reached.ARG()
	for _, candidate := range e.reached.NodesAt(succ.Location()) {
		if candidate == child || arg.IsTarget(candidate) {
			continue
		}
		if e.domain.Covers(arg.State(candidate), succ) {
			return candidate, true
		}
	}
	return nodeid.None, false
}

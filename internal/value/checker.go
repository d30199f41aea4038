package value

import (
	"context"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// Checker decides path feasibility with every memory location tracked.
type Checker struct{}

// NewChecker returns a feasibility checker.
func NewChecker() *Checker { return &Checker{} }

// Check executes path from the empty state. A feasible path reports the
// direction taken at every assume edge, keyed by the ID of the node the edge
// leaves.
func (c *Checker) Check(ctx context.Context, path argpath.Path) (domain.Feasibility, error) {
	res := domain.Feasibility{Directions: make(map[int]bool)}
	if len(path) == 0 {
		return res, nil
	}
	poll := shutdown.NewPoller(ctx, 64)
	s := NewState(path.First().State.Location())
	for i, el := range path[:len(path)-1] {
		if err := poll.Poll(); err != nil {
			return res, err
		}
		next, ok, err := transfer(s, el.Edge, mode{})
		if err != nil {
			return res, err
		}
		if !ok {
			res.InfeasibleAt = i
			return res, nil
		}
		if el.Edge.Kind == cfa.AssumeEdge {
			res.Directions[el.ID] = el.Edge.Truth
		}
		s = next
	}
	res.Feasible = true
	res.InfeasibleAt = -1
	res.Model = s.String()
	return res, nil
}

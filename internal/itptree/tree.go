package itptree

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// Tree is the interpolation tree over a set of targets. trueItp and falseItp
// are the domain's trivial and contradictory interpolants.
type Tree[I domain.Interpolant[I]] struct {
	arg          argstore.Reader
	root         nodeid.Ref
	targets      []nodeid.Ref
	predecessor  map[nodeid.Ref]nodeid.Ref
	successors   map[nodeid.Ref][]nodeid.Ref
	interpolants map[nodeid.Ref]I
	trueItp      I
	falseItp     I

	order Order
	// top-down: branch arms still to visit, as (branching node, child).
	arms [][2]nodeid.Ref
	// bottom-up: targets still to visit.
	pending []nodeid.Ref
}

// New builds the tree from targets by following first parents until a node
// without parents, or one already in the tree, is reached.
func New[I domain.Interpolant[I]](ctx context.Context, arg argstore.Reader, targets []nodeid.Ref, order Order, trueItp, falseItp I) (*Tree[I], error) {
	t := &Tree[I]{
		arg:          arg,
		root:         nodeid.None,
		targets:      append([]nodeid.Ref(nil), targets...),
		predecessor:  make(map[nodeid.Ref]nodeid.Ref),
		successors:   make(map[nodeid.Ref][]nodeid.Ref),
		interpolants: make(map[nodeid.Ref]I),
		trueItp:      trueItp,
		falseItp:     falseItp,
		order:        order,
	}

	poll := shutdown.NewPoller(ctx, 64)
	inTree := make(map[nodeid.Ref]struct{})
	for _, target := range targets {
		if !arg.Contains(target) {
			return nil, fmt.Errorf("interpolation tree: target %s: %w", target, argstore.ErrStaleRef)
		}
		cur := target
		inTree[cur] = struct{}{}
		for {
			if err := poll.Poll(); err != nil {
				return nil, err
			}
			parents := arg.Parents(cur)
			if len(parents) == 0 {
				if !t.root.IsZero() && t.root != cur {
					return nil, fmt.Errorf("interpolation tree: targets reach two roots %s and %s", t.root, cur)
				}
				t.root = cur
				break
			}
			parent := parents[0]
			t.predecessor[cur] = parent
			t.successors[parent] = append(t.successors[parent], cur)
			if _, seen := inTree[parent]; seen {
				break
			}
			inTree[parent] = struct{}{}
			cur = parent
		}
	}

	switch order {
	case BottomUp:
		t.pending = append([]nodeid.Ref(nil), t.targets...)
	default:
		if !t.root.IsZero() {
			for _, child := range t.successors[t.root] {
				t.arms = append(t.arms, [2]nodeid.Ref{t.root, child})
			}
			slices.Reverse(t.arms)
		}
	}

	ctxlog.FromContext(ctx).Debug("Built interpolation tree.",
		"order", order.String(),
		"targets", len(targets),
		"nodes", len(inTree),
		"root", t.root.String(),
	)
	return t, nil
}

// Root returns the node all paths start from.
func (t *Tree[I]) Root() nodeid.Ref { return t.root }

// Targets returns the targets the tree was built from.
func (t *Tree[I]) Targets() []nodeid.Ref { return t.targets }

// Predecessor returns the tree parent of ref, or nodeid.None for the root.
func (t *Tree[I]) Predecessor(ref nodeid.Ref) nodeid.Ref {
	p, ok := t.predecessor[ref]
	if !ok {
		return nodeid.None
	}
	return p
}

// Successors returns the tree children of ref in insertion order.
func (t *Tree[I]) Successors(ref nodeid.Ref) []nodeid.Ref { return t.successors[ref] }

// Size returns the number of nodes in the tree.
func (t *Tree[I]) Size() int { return len(t.predecessor) + 1 }

// Interpolant returns the interpolant of ref, or the trivial one when none
// was recorded.
func (t *Tree[I]) Interpolant(ref nodeid.Ref) I {
	if itp, ok := t.interpolants[ref]; ok {
		return itp
	}
	return t.trueItp
}

// Interpolants returns the recorded interpolants.
func (t *Tree[I]) Interpolants() map[nodeid.Ref]I { return t.interpolants }

func (t *Tree[I]) hasFalse(ref nodeid.Ref) bool {
	itp, ok := t.interpolants[ref]
	return ok && itp.IsFalse()
}

func (t *Tree[I]) hasNonTrivial(ref nodeid.Ref) bool {
	itp, ok := t.interpolants[ref]
	return ok && !itp.IsTrivial() && !itp.IsFalse()
}

// Update merges itps for the nodes of path: itps[i] belongs to the node
// after the i-th edge, and the last node gets the contradiction. Existing
// interpolants are joined.
func (t *Tree[I]) Update(path argpath.Path, itps []I) error {
	if len(path) < 2 || len(itps) != len(path)-2 {
		return fmt.Errorf("interpolation tree: %d interpolants for a path of %d nodes", len(itps), len(path))
	}
	for i, itp := range itps {
		t.merge(path[i+1].Node, itp)
	}
	t.merge(path.Last().Node, t.falseItp)
	return nil
}

func (t *Tree[I]) merge(ref nodeid.Ref, itp I) {
	if old, ok := t.interpolants[ref]; ok {
		itp = old.Join(itp)
	}
	t.interpolants[ref] = itp
}

// HasNext reports whether paths remain to be interpolated.
func (t *Tree[I]) HasNext() bool {
	if t.order == BottomUp {
		return len(t.pending) > 0
	}
	return len(t.arms) > 0
}

// Next returns the next path and its initial interpolant. An empty path
// means the path is already known to be infeasible and can be skipped.
func (t *Tree[I]) Next() (argpath.Path, I) {
	if t.order == BottomUp {
		target := t.pending[0]
		t.pending = t.pending[1:]
		if t.anyFalseOnPath(target) {
			return nil, t.trueItp
		}
		return t.PathFromRoot(target), t.trueItp
	}
	return t.nextTopDown()
}

// nextTopDown pops one branch arm and walks down its first successors to a
// leaf, pushing every other arm it passes.
func (t *Tree[I]) nextTopDown() (argpath.Path, I) {
	arm := t.arms[len(t.arms)-1]
	t.arms = t.arms[:len(t.arms)-1]
	start, cur := arm[0], arm[1]
	if t.hasFalse(start) {
		return nil, t.trueItp
	}

	path := argpath.Path{t.element(start, cur)}
	for {
		next := t.successors[cur]
		if len(next) == 0 {
			break
		}
		for i := len(next) - 1; i > 0; i-- {
			t.arms = append(t.arms, [2]nodeid.Ref{cur, next[i]})
		}
		path = append(path, t.element(cur, next[0]))
		cur = next[0]
	}
	path = append(path, t.element(cur, nodeid.None))
	return path, t.Interpolant(start)
}

// PathFromRoot returns the tree path from the root to ref.
func (t *Tree[I]) PathFromRoot(ref nodeid.Ref) argpath.Path {
	path := argpath.Path{t.element(ref, nodeid.None)}
	cur := ref
	for {
		p, ok := t.predecessor[cur]
		if !ok {
			break
		}
		path = append(path, t.element(p, cur))
		cur = p
	}
	slices.Reverse(path)
	return path
}

func (t *Tree[I]) anyFalseOnPath(ref nodeid.Ref) bool {
	for cur := ref; ; {
		if t.hasFalse(cur) {
			return true
		}
		p, ok := t.predecessor[cur]
		if !ok {
			return false
		}
		cur = p
	}
}

func (t *Tree[I]) element(ref, next nodeid.Ref) argpath.Element {
	el := argpath.Element{Node: ref, ID: t.arg.ID(ref), State: t.arg.State(ref)}
	if !next.IsZero() {
		el.Edge = t.arg.EdgeTo(ref, next)
	}
	return el
}

// RefinementRoots returns the top-most nodes holding a non-trivial, non-false
// interpolant, in breadth-first order.
func (t *Tree[I]) RefinementRoots() []nodeid.Ref {
	return t.topmost(t.hasNonTrivial)
}

// CutoffRoots returns the top-most nodes holding the contradiction.
func (t *Tree[I]) CutoffRoots() []nodeid.Ref {
	return t.topmost(t.hasFalse)
}

// topmost collects the nodes matching pick that have no matching ancestor.
// The search does not descend below a false interpolant.
func (t *Tree[I]) topmost(pick func(nodeid.Ref) bool) []nodeid.Ref {
	if t.root.IsZero() {
		return nil
	}
	var out []nodeid.Ref
	queue := []nodeid.Ref{t.root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if pick(cur) {
			out = append(out, cur)
			continue
		}
		if t.hasFalse(cur) {
			continue
		}
		queue = append(queue, t.successors[cur]...)
	}
	return out
}

// PrecisionIncrement collects, for the subtree below root's predecessor, the
// memory locations of every non-trivial interpolant of a non-target node,
// keyed by that node's program location.
func (t *Tree[I]) PrecisionIncrement(root nodeid.Ref) *domain.Increment {
	inc := domain.NewIncrement()
	start := t.Predecessor(root)
	if start.IsZero() {
		start = root
	}
	queue := []nodeid.Ref{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if t.hasNonTrivial(cur) && !t.arg.IsTarget(cur) {
			if st := t.arg.State(cur); st != nil {
				inc.Add(st.Location(), t.interpolants[cur].MemoryLocations()...)
			}
		}
		if !t.hasFalse(cur) {
			queue = append(queue, t.successors[cur]...)
		}
	}
	return inc
}

// TargetsInSubtree returns the tree targets at or below ref.
func (t *Tree[I]) TargetsInSubtree(ref nodeid.Ref) []nodeid.Ref {
	var out []nodeid.Ref
	queue := []nodeid.Ref{ref}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		succ := t.successors[cur]
		if len(succ) == 0 {
			out = append(out, cur)
		}
		queue = append(queue, succ...)
	}
	return out
}

package argpath

import (
	"context"
	"slices"

	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

func element(r argstore.Reader, ref nodeid.Ref, edge *cfa.Edge) Element {
	return Element{Node: ref, ID: r.ID(ref), State: r.State(ref), Edge: edge}
}

// tail builds the last element of a path ending at ref. Its edge is the
// first leaving edge of the node's location, if any.
func tail(r argstore.Reader, ref nodeid.Ref) Element {
	var edge *cfa.Edge
	if st := r.State(ref); st != nil && st.Location() != nil && len(st.Location().Leaving) > 0 {
		edge = st.Location().Leaving[0]
	}
	return element(r, ref, edge)
}

// OnePathTo returns a path from the root to target following parent links.
// At merge points it takes the first parent not yet visited.
func OnePathTo(r argstore.Reader, target nodeid.Ref) (Path, error) {
	if !r.Contains(target) {
		return nil, fail(ErrBrokenPath, target, "node is not live")
	}

	rev := Path{tail(r, target)}
	seen := map[nodeid.Ref]struct{}{target: {}}
	cur := target
	for {
		parents := r.Parents(cur)
		if len(parents) == 0 {
			break
		}
		next := nodeid.None
		for _, p := range parents {
			if _, visited := seen[p]; !visited {
				next = p
				break
			}
		}
		if next.IsZero() {
			return nil, fail(ErrBrokenPath, cur, "every parent was already visited")
		}
		seen[next] = struct{}{}
		rev = append(rev, element(r, next, r.EdgeTo(next, cur)))
		cur = next
	}

	slices.Reverse(rev)
	return rev, nil
}

// PathFromBranchingInformation walks forward from root until it reaches a
// target. A node with one child is followed unconditionally. A node with two
// children must branch on complementary assume edges; the child matching
// directions[node ID] is followed. Every visited child must be in candidates.
// If expected is not nodeid.None the path must end there.
func PathFromBranchingInformation(
	r argstore.Reader,
	root nodeid.Ref,
	candidates map[nodeid.Ref]struct{},
	directions map[int]bool,
	expected nodeid.Ref,
) (Path, error) {
	if !r.Contains(root) {
		return nil, fail(ErrBrokenPath, root, "root is not live")
	}

	var path Path
	cur := root
	for !r.IsTarget(cur) {
		children := r.Children(cur)
		var next nodeid.Ref
		var edge *cfa.Edge

		switch len(children) {
		case 0:
			return nil, fail(ErrBrokenPath, cur, "no children")
		case 1:
			next, edge = children[0].Ref, children[0].Edge
		case 2:
			a, b := children[0], children[1]
			if a.Edge == nil || b.Edge == nil || a.Edge.Kind != cfa.AssumeEdge || b.Edge.Kind != cfa.AssumeEdge || a.Edge.Truth == b.Edge.Truth {
				return nil, fail(ErrTooManyBranches, cur, "two children without complementary assumptions")
			}
			dir, ok := directions[r.ID(cur)]
			if !ok {
				return nil, fail(ErrMissingDirection, cur, "node id %d", r.ID(cur))
			}
			if a.Edge.Truth == dir {
				next, edge = a.Ref, a.Edge
			} else {
				next, edge = b.Ref, b.Edge
			}
		default:
			return nil, fail(ErrTooManyBranches, cur, "%d children", len(children))
		}

		if _, ok := candidates[next]; !ok {
			return nil, fail(ErrInconsistentPath, cur, "child %s is not on a path to the target", next)
		}
		path = append(path, element(r, cur, edge))
		cur = next
	}
	path = append(path, tail(r, cur))

	if !expected.IsZero() && cur != expected {
		return nil, fail(ErrWrongTarget, cur, "expected %s", expected)
	}
	return path, nil
}

// AllNodesOnPathsTo returns target and every node from which target can be
// reached through parent links.
func AllNodesOnPathsTo(ctx context.Context, r argstore.Reader, target nodeid.Ref) (map[nodeid.Ref]struct{}, error) {
	poll := shutdown.NewPoller(ctx, 64)
	out := map[nodeid.Ref]struct{}{}
	if !r.Contains(target) {
		return out, nil
	}
	out[target] = struct{}{}
	queue := []nodeid.Ref{target}
	for len(queue) > 0 {
		if err := poll.Poll(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		for _, p := range r.Parents(cur) {
			if _, ok := out[p]; !ok {
				out[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
	return out, nil
}

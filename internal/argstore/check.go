package argstore

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// ErrInconsistent wraps every violation found by Check.
var ErrInconsistent = errors.New("inconsistent graph")

// Check verifies the structural invariants of the graph:
//   - exactly one node, the root, has no parents;
//   - parent and child links mirror each other;
//   - following parents from any node reaches the root without a cycle;
//   - covering and covered-by links mirror each other, coverers are not
//     covered and covered nodes have no children;
//   - targets have no children.
//
// It returns nil or an error joining every violation.
func Check(r Reader) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInconsistent}, args...)...))
	}

	root := r.Root()
	all := r.All()
	if len(all) > 0 && !r.Contains(root) {
		fail("root %s is not live", root)
	}

	for _, ref := range all {
		parents := r.Parents(ref)
		switch {
		case ref == root && len(parents) != 0:
			fail("root %s has parents", ref)
		case ref != root && len(parents) == 0:
			fail("node %s has no parents", ref)
		}
		for _, p := range parents {
			if !r.Contains(p) {
				fail("node %s has dead parent %s", ref, p)
				continue
			}
			if !hasChild(r, p, ref) {
				fail("parent %s does not list child %s", p, ref)
			}
		}

		children := r.Children(ref)
		for _, c := range children {
			if !r.Contains(c.Ref) {
				fail("node %s has dead child %s", ref, c.Ref)
				continue
			}
			if !containsRef(r.Parents(c.Ref), ref) {
				fail("child %s does not list parent %s", c.Ref, ref)
			}
		}
		if r.IsTarget(ref) && len(children) > 0 {
			fail("target %s has children", ref)
		}

		if cov := r.Covering(ref); !cov.IsZero() {
			switch {
			case !r.Contains(cov):
				fail("node %s is covered by dead node %s", ref, cov)
			case r.IsCovered(cov):
				fail("node %s is covered by covered node %s", ref, cov)
			case !containsRef(r.CoveredBy(cov), ref):
				fail("coverer %s does not list %s", cov, ref)
			}
			if len(children) > 0 {
				fail("covered node %s has children", ref)
			}
		}
		for _, covered := range r.CoveredBy(ref) {
			if r.Covering(covered) != ref {
				fail("node %s lists %s as covered, which disagrees", ref, covered)
			}
		}
	}

	// Every node must reach the root through first parents without repeating.
	for _, ref := range all {
		seen := map[nodeid.Ref]struct{}{}
		cur := ref
		for cur != root {
			if _, loop := seen[cur]; loop {
				fail("parent cycle through %s", cur)
				break
			}
			seen[cur] = struct{}{}
			parents := r.Parents(cur)
			if len(parents) == 0 {
				break
			}
			cur = parents[0]
		}
	}

	return errors.Join(errs...)
}

func hasChild(r Reader, parent, child nodeid.Ref) bool {
	for _, c := range r.Children(parent) {
		if c.Ref == child {
			return true
		}
	}
	return false
}

func containsRef(refs []nodeid.Ref, want nodeid.Ref) bool {
	for _, r := range refs {
		if r == want {
			return true
		}
	}
	return false
}

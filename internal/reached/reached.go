package reached

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/node"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/precisionstore"
	"github.com/specialistvlad/argcegar/internal/shutdown"
	"github.com/specialistvlad/argcegar/internal/waitlist"
)

// Reached composes the ARG store, the precision store and the waitlist.
type Reached struct {
	mu         sync.Mutex
	arg        argstore.Store
	precisions precisionstore.Store
	waitlist   *waitlist.Waitlist
	byLocation map[*cfa.Location]map[nodeid.Ref]struct{}
}

// New creates a reached set over the given stores.
func New(arg argstore.Store, precisions precisionstore.Store, order waitlist.Order) *Reached {
	return &Reached{
		arg:        arg,
		precisions: precisions,
		waitlist:   waitlist.New(order),
		byLocation: make(map[*cfa.Location]map[nodeid.Ref]struct{}),
	}
}

// ARG returns the read-only view of the graph.
func (r *Reached) ARG() argstore.Reader { return r.arg }

// Add creates a node, stores its precision and queues it for expansion. A
// call without parents creates the root.
func (r *Reached) Add(state domain.State, prec domain.Precision, parents ...argstore.ParentLink) (nodeid.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.arg.AddNode(state, parents...)
	if err != nil {
		return nodeid.None, err
	}
	r.precisions.Set(ref, prec)
	r.index(ref, state)
	r.waitlist.Add(ref)
	return ref, nil
}

func (r *Reached) index(ref nodeid.Ref, state domain.State) {
	if state == nil {
		return
	}
	loc := state.Location()
	set, ok := r.byLocation[loc]
	if !ok {
		set = make(map[nodeid.Ref]struct{})
		r.byLocation[loc] = set
	}
	set[ref] = struct{}{}
}

func (r *Reached) unindex(ref nodeid.Ref) {
	st := r.arg.State(ref)
	if st == nil {
		return
	}
	if set, ok := r.byLocation[st.Location()]; ok {
		delete(set, ref)
		if len(set) == 0 {
			delete(r.byLocation, st.Location())
		}
	}
}

// Cover records that by subsumes ref and takes ref off the waitlist.
func (r *Reached) Cover(ref, by nodeid.Ref) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.arg.Cover(ref, by); err != nil {
		return err
	}
	r.waitlist.Remove(ref)
	return nil
}

// MarkExpanded records that ref's successors have been computed.
func (r *Reached) MarkExpanded(ref nodeid.Ref) error {
	return r.arg.MarkExpanded(ref)
}

// Enqueue puts ref back on the waitlist.
func (r *Reached) Enqueue(ref nodeid.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitlist.Add(ref)
}

// Pop returns the next live, uncovered node to expand with its precision.
func (r *Reached) Pop() (nodeid.Ref, domain.Precision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		ref, ok := r.waitlist.Pop()
		if !ok {
			return nodeid.None, nil, false
		}
		if !r.arg.Contains(ref) || r.arg.IsCovered(ref) {
			continue
		}
		prec, _ := r.precisions.Get(ref)
		return ref, prec, true
	}
}

// HasWaiting reports whether the waitlist is non-empty.
func (r *Reached) HasWaiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.waitlist.IsEmpty()
}

// Waiting returns the waitlist in pop order.
func (r *Reached) Waiting() []nodeid.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waitlist.Snapshot()
}

// Precision returns the stored precision of ref.
func (r *Reached) Precision(ref nodeid.Ref) domain.Precision {
	p, _ := r.precisions.Get(ref)
	return p
}

// Size returns the number of nodes in the graph.
func (r *Reached) Size() int { return r.arg.Len() }

// Targets returns every target node, ordered by ID.
func (r *Reached) Targets() []nodeid.Ref {
	var out []nodeid.Ref
	for _, ref := range r.arg.All() {
		if r.arg.IsTarget(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// NodesAt returns the uncovered nodes whose state sits at loc, ordered by ID.
func (r *Reached) NodesAt(loc *cfa.Location) []nodeid.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []nodeid.Ref
	for ref := range r.byLocation[loc] {
		if !r.arg.IsCovered(ref) {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.arg.ID(out[i]) < r.arg.ID(out[j]) })
	return out
}

// UncoveredChildren returns the children of ref that are not covered.
func (r *Reached) UncoveredChildren(ref nodeid.Ref) []node.Child {
	var out []node.Child
	for _, c := range r.arg.Children(ref) {
		if !r.arg.IsCovered(c.Ref) {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceState swaps the state of ref, e.g. after strengthening.
func (r *Reached) ReplaceState(ref nodeid.Ref, state domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unindex(ref)
	if err := r.arg.SetState(ref, state); err != nil {
		return err
	}
	r.index(ref, state)
	return nil
}

// ReplacePrecisionEverywhere swaps the sub-precision matching prec's tag in
// the stored precision of every node.
func (r *Reached) ReplacePrecisionEverywhere(prec domain.Precision) {
	r.precisions.Range(func(ref nodeid.Ref, old domain.Precision) bool {
		r.precisions.Set(ref, domain.ReplaceByTag(old, prec))
		return true
	})
}

// RemoveSubtree removes root, its tree descendants and every node any of them
// covers. The parents of removed nodes that survive are re-queued and
// returned in discovery order.
func (r *Reached) RemoveSubtree(ctx context.Context, root nodeid.Ref) ([]nodeid.Ref, error) {
	return r.removeSubtree(ctx, root, nil, true)
}

// RemoveSubtreeWithPrecision is RemoveSubtree, except that every re-seeded
// parent first gets the sub-precision matching prec's tag replaced by prec.
func (r *Reached) RemoveSubtreeWithPrecision(ctx context.Context, root nodeid.Ref, prec domain.Precision) ([]nodeid.Ref, error) {
	return r.removeSubtree(ctx, root, prec, true)
}

// CutOffSubtree removes the same closure as RemoveSubtree but does not
// re-queue root's own parents, so a provably dead branch is not rediscovered.
// Parents of removed covered nodes are still re-queued.
func (r *Reached) CutOffSubtree(ctx context.Context, root nodeid.Ref) ([]nodeid.Ref, error) {
	return r.removeSubtree(ctx, root, nil, false)
}

func (r *Reached) removeSubtree(ctx context.Context, root nodeid.Ref, prec domain.Precision, reseedRoot bool) ([]nodeid.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logger := ctxlog.FromContext(ctx)

	if !r.arg.Contains(root) {
		return nil, fmt.Errorf("remove subtree at %s: %w", root, argstore.ErrStaleRef)
	}
	if len(r.arg.Parents(root)) == 0 {
		return nil, fmt.Errorf("remove subtree at %s: %w", root, argstore.ErrRemoveRoot)
	}

	poll := shutdown.NewPoller(ctx, 64)
	subtree := r.arg.Subtree(root)
	removed := make(map[nodeid.Ref]struct{}, len(subtree))
	order := make([]nodeid.Ref, 0, len(subtree))
	for _, ref := range subtree {
		removed[ref] = struct{}{}
		order = append(order, ref)
	}
	for _, ref := range subtree {
		if err := poll.Poll(); err != nil {
			return nil, err
		}
		for _, covered := range r.arg.CoveredBy(ref) {
			if _, dup := removed[covered]; !dup {
				removed[covered] = struct{}{}
				order = append(order, covered)
			}
		}
	}

	var reseed []nodeid.Ref
	seen := make(map[nodeid.Ref]struct{})
	for _, ref := range order {
		if ref == root && !reseedRoot {
			continue
		}
		for _, p := range r.arg.Parents(ref) {
			if _, gone := removed[p]; gone {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			reseed = append(reseed, p)
		}
	}

	for _, ref := range order {
		if err := poll.Poll(); err != nil {
			return nil, err
		}
		r.unindex(ref)
		r.waitlist.Remove(ref)
		r.precisions.Delete(ref)
		if err := r.arg.Remove(ref); err != nil {
			return nil, fmt.Errorf("remove subtree at %s: %w", root, err)
		}
	}

	for _, p := range reseed {
		if prec != nil {
			old, _ := r.precisions.Get(p)
			r.precisions.Set(p, domain.ReplaceByTag(old, prec))
		}
		r.waitlist.Add(p)
	}

	logger.Debug("Removed subtree.", "root", root.String(), "removed", len(order), "reseeded", len(reseed))
	return reseed, nil
}

// UncoverAndRequeue clears ref's covering link and queues the uncovered
// leaves of its subtree that still await expansion.
func (r *Reached) UncoverAndRequeue(ref nodeid.Ref) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uncoverAndRequeue(ref)
}

func (r *Reached) uncoverAndRequeue(ref nodeid.Ref) error {
	fresh, err := r.arg.Uncover(ref)
	if err != nil {
		return err
	}
	for _, f := range fresh {
		r.waitlist.Add(f)
	}
	return nil
}

// RemoveCoverageOf uncovers every node covered by ref. Afterwards ref covers
// nothing. Call it when ref's state was strengthened.
func (r *Reached) RemoveCoverageOf(ctx context.Context, ref nodeid.Ref) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, covered := range r.arg.CoveredBy(ref) {
		if err := shutdown.Check(ctx); err != nil {
			return err
		}
		if err := r.uncoverAndRequeue(covered); err != nil {
			return fmt.Errorf("remove coverage of %s: %w", ref, err)
		}
	}
	return nil
}

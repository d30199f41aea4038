package inmemoryarg

import (
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/node"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

type slot struct {
	gen  uint32
	node *node.Node // nil when free
}

// Store implements argstore.Store with an arena guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	byID   map[int]nodeid.Ref
	root   nodeid.Ref
	nextID int
}

var _ argstore.Store = (*Store)(nil)

// New creates a new, empty in-memory ARG store.
func New() *Store {
	return &Store{byID: make(map[int]nodeid.Ref)}
}

// get returns the live node for ref. Callers hold the lock.
func (s *Store) get(ref nodeid.Ref) *node.Node {
	if ref.IsZero() || int(ref.Index) >= len(s.slots) {
		return nil
	}
	sl := s.slots[ref.Index]
	if sl.gen != ref.Gen || sl.node == nil {
		return nil
	}
	return sl.node
}

func (s *Store) mustGet(ref nodeid.Ref) (*node.Node, error) {
	n := s.get(ref)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", argstore.ErrStaleRef, ref)
	}
	return n, nil
}

// AddNode creates a node and links it below every parent.
func (s *Store) AddNode(state domain.State, parents ...argstore.ParentLink) (nodeid.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(parents) == 0 && !s.root.IsZero() {
		return nodeid.None, argstore.ErrSecondRoot
	}
	parentNodes := make([]*node.Node, len(parents))
	for i, p := range parents {
		pn, err := s.mustGet(p.Ref)
		if err != nil {
			return nodeid.None, err
		}
		if pn.IsCovered() {
			return nodeid.None, fmt.Errorf("%w: parent %s", argstore.ErrCoveredParent, p.Ref)
		}
		if pn.Target {
			return nodeid.None, fmt.Errorf("%w: parent %s", argstore.ErrTargetParent, p.Ref)
		}
		parentNodes[i] = pn
	}

	ref := s.allocate()
	n := &node.Node{
		Ref:    ref,
		ID:     s.nextID,
		State:  state,
		Target: state != nil && state.IsTarget(),
	}
	s.nextID++
	for i, p := range parents {
		n.Parents = append(n.Parents, p.Ref)
		parentNodes[i].Children = append(parentNodes[i].Children, node.Child{Ref: ref, Edge: p.Edge})
	}
	s.slots[ref.Index].node = n
	s.byID[n.ID] = ref
	if len(parents) == 0 {
		s.root = ref
	}
	return ref, nil
}

// allocate takes a slot from the free list or grows the arena.
func (s *Store) allocate() nodeid.Ref {
	if k := len(s.free); k > 0 {
		idx := s.free[k-1]
		s.free = s.free[:k-1]
		s.slots[idx].gen++
		return nodeid.New(idx, s.slots[idx].gen)
	}
	s.slots = append(s.slots, slot{gen: 1})
	return nodeid.New(uint32(len(s.slots)-1), 1)
}

// Remove detaches ref from every neighbour and frees its slot.
func (s *Store) Remove(ref nodeid.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mustGet(ref)
	if err != nil {
		return err
	}
	if ref == s.root {
		return argstore.ErrRemoveRoot
	}

	for _, p := range n.Parents {
		if pn := s.get(p); pn != nil {
			pn.RemoveChild(ref)
		}
	}
	for _, c := range n.Children {
		if cn := s.get(c.Ref); cn != nil {
			cn.RemoveParent(ref)
		}
	}
	if cov := s.get(n.Covering); cov != nil {
		cov.RemoveCovered(ref)
	}
	for _, covered := range n.CoveredBy {
		if cn := s.get(covered); cn != nil {
			cn.Covering = nodeid.None
		}
	}

	delete(s.byID, n.ID)
	s.slots[ref.Index].node = nil
	s.free = append(s.free, ref.Index)
	return nil
}

// Cover makes by the coverer of ref.
func (s *Store) Cover(ref, by nodeid.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mustGet(ref)
	if err != nil {
		return err
	}
	coverer, err := s.mustGet(by)
	if err != nil {
		return err
	}
	switch {
	case n.IsCovered():
		return fmt.Errorf("%w: %s by %s", argstore.ErrAlreadyCovered, ref, n.Covering)
	case ref == by:
		return fmt.Errorf("%w: %s cannot cover itself", argstore.ErrCoveringChain, ref)
	case coverer.IsCovered():
		return fmt.Errorf("%w: coverer %s is covered by %s", argstore.ErrCoveringChain, by, coverer.Covering)
	case len(n.CoveredBy) > 0:
		return fmt.Errorf("%w: %s covers %d nodes", argstore.ErrCoveringChain, ref, len(n.CoveredBy))
	case len(n.Children) > 0:
		return fmt.Errorf("%w: %s", argstore.ErrHasChildren, ref)
	}

	n.Covering = by
	coverer.CoveredBy = append(coverer.CoveredBy, ref)
	return nil
}

// Uncover clears ref's covering link and returns the uncovered leaves of its
// subtree that still await expansion.
func (s *Store) Uncover(ref nodeid.Ref) ([]nodeid.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mustGet(ref)
	if err != nil {
		return nil, err
	}
	if cov := s.get(n.Covering); cov != nil {
		cov.RemoveCovered(ref)
	}
	n.Covering = nodeid.None

	var fresh []nodeid.Ref
	for _, d := range s.subtree(ref) {
		dn := s.get(d)
		if !dn.Expanded && !dn.IsCovered() {
			fresh = append(fresh, d)
		}
	}
	return fresh, nil
}

// MarkExpanded sets the expanded flag of ref.
func (s *Store) MarkExpanded(ref nodeid.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mustGet(ref)
	if err != nil {
		return err
	}
	n.Expanded = true
	return nil
}

// SetState replaces the wrapped state of ref.
func (s *Store) SetState(ref nodeid.Ref, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mustGet(ref)
	if err != nil {
		return err
	}
	n.State = state
	return nil
}

// --- Reader ---

func (s *Store) Root() nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Store) Contains(ref nodeid.Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ref) != nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) All() []nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	refs := make([]nodeid.Ref, len(ids))
	for i, id := range ids {
		refs[i] = s.byID[id]
	}
	return refs
}

func (s *Store) Node(ref nodeid.Ref) (node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.get(ref)
	if n == nil {
		return node.Node{}, false
	}
	return n.Clone(), true
}

func (s *Store) Lookup(id int) (nodeid.Ref, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.byID[id]
	return ref, ok
}

// ID returns the node ID of ref, or -1 if ref is not live.
func (s *Store) ID(ref nodeid.Ref) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return n.ID
	}
	return -1
}

func (s *Store) State(ref nodeid.Ref) domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return n.State
	}
	return nil
}

func (s *Store) Parents(ref nodeid.Ref) []nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return slices.Clone(n.Parents)
	}
	return nil
}

func (s *Store) Children(ref nodeid.Ref) []node.Child {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return slices.Clone(n.Children)
	}
	return nil
}

func (s *Store) EdgeTo(parent, child nodeid.Ref) *cfa.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(parent); n != nil {
		return n.EdgeTo(child)
	}
	return nil
}

func (s *Store) Covering(ref nodeid.Ref) nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return n.Covering
	}
	return nodeid.None
}

func (s *Store) CoveredBy(ref nodeid.Ref) []nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.get(ref); n != nil {
		return slices.Clone(n.CoveredBy)
	}
	return nil
}

func (s *Store) IsCovered(ref nodeid.Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.get(ref)
	return n != nil && n.IsCovered()
}

func (s *Store) IsTarget(ref nodeid.Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.get(ref)
	return n != nil && n.Target
}

func (s *Store) WasExpanded(ref nodeid.Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.get(ref)
	return n != nil && n.Expanded
}

func (s *Store) Subtree(ref nodeid.Ref) []nodeid.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtree(ref)
}

// subtree walks tree children breadth first. Callers hold the lock.
func (s *Store) subtree(ref nodeid.Ref) []nodeid.Ref {
	if s.get(ref) == nil {
		return nil
	}
	seen := map[nodeid.Ref]struct{}{ref: {}}
	out := []nodeid.Ref{ref}
	for i := 0; i < len(out); i++ {
		for _, c := range s.get(out[i]).Children {
			if _, ok := seen[c.Ref]; ok {
				continue
			}
			if s.get(c.Ref) == nil {
				continue
			}
			seen[c.Ref] = struct{}{}
			out = append(out, c.Ref)
		}
	}
	return out
}

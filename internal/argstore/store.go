// Package argstore defines the interface for storing and mutating the
// abstract reachability graph (ARG).
//
// # Why ARG Store Exists
//
// The ARG store isolates the **graph structure** (nodes, tree edges, covering
// links) from the **per-node precisions** managed by precisionstore and from
// the **exploration order** managed by waitlist. The reached package composes
// all three and is the only caller allowed to mutate the graph.
//
// The store keeps two relations apart:
//   - **Tree edges:** parent/child links, each child labelled with the CFA
//     edge that produced it. Restricted to uncovered nodes they form a tree
//     rooted at a single root.
//   - **Covering:** a separate covers/covered-by relation. A covered node is
//     subsumed by its coverer and is never explored. Covering links are never
//     returned as children.
//
// # Handles
//
// Nodes are addressed by nodeid.Ref handles into an arena. A handle that
// outlives its node is rejected with ErrStaleRef by every mutating operation
// and reads as absent in every query.
package argstore

import (
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/node"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// ParentLink names a parent of a new node and the edge leading from it.
type ParentLink struct {
	Ref  nodeid.Ref
	Edge *cfa.Edge
}

// Reader is the query side of the store. Queries on a ref that is not live
// return zero values.
type Reader interface {
	// Root returns the root node, or nodeid.None for an empty graph.
	Root() nodeid.Ref
	// Contains reports whether ref names a live node.
	Contains(ref nodeid.Ref) bool
	// Len returns the number of live nodes.
	Len() int
	// All returns every live node ordered by ID.
	All() []nodeid.Ref
	// Node returns a snapshot of the node record.
	Node(ref nodeid.Ref) (node.Node, bool)
	// Lookup resolves a node ID, as used in branch directions, to its ref.
	Lookup(id int) (nodeid.Ref, bool)

	ID(ref nodeid.Ref) int
	State(ref nodeid.Ref) domain.State
	Parents(ref nodeid.Ref) []nodeid.Ref
	// Children returns tree children only. Covering links are not children.
	Children(ref nodeid.Ref) []node.Child
	// EdgeTo returns the edge from parent to child, or nil.
	EdgeTo(parent, child nodeid.Ref) *cfa.Edge
	Covering(ref nodeid.Ref) nodeid.Ref
	CoveredBy(ref nodeid.Ref) []nodeid.Ref
	IsCovered(ref nodeid.Ref) bool
	IsTarget(ref nodeid.Ref) bool
	WasExpanded(ref nodeid.Ref) bool

	// Subtree returns ref and all its tree descendants in breadth-first order.
	Subtree(ref nodeid.Ref) []nodeid.Ref
}

// Store is the mutating side of the ARG.
//
// # Thread-Safety Requirements
//
// Implementations must be safe for concurrent use. The analysis itself is
// single-threaded, but the health server and report writers read the graph
// while a round is running.
type Store interface {
	Reader

	// AddNode creates a node for state linked to every parent. A node
	// without parents becomes the root; only one root may exist.
	//
	// Fails with ErrCoveredParent if a parent is covered and with
	// ErrTargetParent if a parent is a target.
	AddNode(state domain.State, parents ...ParentLink) (nodeid.Ref, error)

	// Remove detaches ref from its parents, children, coverer and covered
	// nodes and frees its slot. It does not recurse. Removing the root fails
	// with ErrRemoveRoot.
	Remove(ref nodeid.Ref) error

	// Cover records that by subsumes ref. Fails with ErrAlreadyCovered if ref
	// is covered, ErrCoveringChain if by is covered or ref covers others, and
	// ErrHasChildren if ref already has children.
	Cover(ref, by nodeid.Ref) error

	// Uncover clears ref's covering link. It returns the nodes of ref's
	// subtree that are now uncovered leaves awaiting expansion.
	Uncover(ref nodeid.Ref) ([]nodeid.Ref, error)

	// MarkExpanded records that ref's successors have been computed.
	MarkExpanded(ref nodeid.Ref) error

	// SetState replaces the state of ref. Used when strengthening.
	SetState(ref nodeid.Ref, state domain.State) error
}

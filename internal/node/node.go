package node

import (
	"slices"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// Child is an outgoing tree edge: the child node and the CFA edge whose
// transfer produced it.
type Child struct {
	Ref  nodeid.Ref
	Edge *cfa.Edge
}

// Node is a single vertex of the abstract reachability graph. It wraps one
// abstract state and records how the node relates to the rest of the graph.
type Node struct {
	// Ref is the arena handle of the node.
	Ref nodeid.Ref
	// ID is unique for the lifetime of a graph and never reused, unlike the
	// slot in Ref. Branch directions are keyed by it.
	ID int
	// State is owned by the abstract domain.
	State domain.State

	// Parents is empty only for the root. Parents[0] is the tree parent.
	Parents []nodeid.Ref
	// Children is ordered by insertion.
	Children []Child

	// Covering is the node subsuming this one, or nodeid.None.
	Covering nodeid.Ref
	// CoveredBy lists the nodes this node subsumes.
	CoveredBy []nodeid.Ref

	// Expanded is set once successors have been computed.
	Expanded bool
	// Target marks a property violation. Targets are leaves.
	Target bool
}

// IsCovered reports whether another node subsumes n.
func (n *Node) IsCovered() bool {
	return !n.Covering.IsZero()
}

// EdgeTo returns the edge leading to child, or nil if child is not a child of n.
func (n *Node) EdgeTo(child nodeid.Ref) *cfa.Edge {
	for _, c := range n.Children {
		if c.Ref == child {
			return c.Edge
		}
	}
	return nil
}

// RemoveChild unlinks child. Missing children are ignored.
func (n *Node) RemoveChild(child nodeid.Ref) {
	n.Children = slices.DeleteFunc(n.Children, func(c Child) bool { return c.Ref == child })
}

// RemoveParent unlinks parent. Missing parents are ignored.
func (n *Node) RemoveParent(parent nodeid.Ref) {
	n.Parents = slices.DeleteFunc(n.Parents, func(p nodeid.Ref) bool { return p == parent })
}

// RemoveCovered drops covered from CoveredBy.
func (n *Node) RemoveCovered(covered nodeid.Ref) {
	n.CoveredBy = slices.DeleteFunc(n.CoveredBy, func(c nodeid.Ref) bool { return c == covered })
}

// Clone returns a copy that shares no slices with n.
func (n *Node) Clone() Node {
	c := *n
	c.Parents = slices.Clone(n.Parents)
	c.Children = slices.Clone(n.Children)
	c.CoveredBy = slices.Clone(n.CoveredBy)
	return c
}

// Package argpath extracts root-to-target paths from the abstract
// reachability graph.
//
// A Path is a value: an ordered list of (node, edge) pairs where each edge
// leads to the next element's node. It stays valid after the graph changes,
// though the node handles it carries may go stale.
//
// Two extractors exist. OnePathTo walks parent links backwards and is total.
// PathFromBranchingInformation walks forward from a root and picks, at each
// binary branch, the child named by a direction map supplied by a feasibility
// check; it fails with a typed *Error when the map and the graph disagree.
package argpath

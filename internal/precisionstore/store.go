// Package precisionstore defines the interface for the per-node precision
// map of the reached set.
//
// # Why Precision Store Exists
//
// Precisions are owned by the reached set, not by graph nodes. Keeping them in
// their own store separates **what was explored** (argstore) from **how
// precisely it was explored** (this package). Refinement replaces precisions
// for many nodes at once, while exploration only reads the precision of the
// node it pops.
//
// Precisions are values. A stored precision is never mutated; replacing a
// sub-precision produces a new value that is stored in place of the old one.
package precisionstore

import (
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// Store maps graph nodes to precisions.
//
// # Thread-Safety Requirements
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Set stores p for ref, replacing any previous precision.
	Set(ref nodeid.Ref, p domain.Precision)
	// Get returns the precision of ref.
	Get(ref nodeid.Ref) (domain.Precision, bool)
	// Delete forgets the precision of ref.
	Delete(ref nodeid.Ref)
	// Range calls fn for every stored precision until fn returns false.
	Range(fn func(ref nodeid.Ref, p domain.Precision) bool)
}

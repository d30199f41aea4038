package argstore

import "errors"

// Structural contract violations. Each signals a bug in the caller, never an
// analysis outcome.
var (
	ErrRemoveRoot     = errors.New("the root node cannot be removed")
	ErrCoveredParent  = errors.New("a covered node cannot get children")
	ErrTargetParent   = errors.New("a target node cannot get children")
	ErrSecondRoot     = errors.New("the graph already has a root")
	ErrAlreadyCovered = errors.New("node is already covered")
	ErrCoveringChain  = errors.New("covering would create a chain")
	ErrHasChildren    = errors.New("node with children cannot be covered")
	ErrStaleRef       = errors.New("node reference is not live")
)

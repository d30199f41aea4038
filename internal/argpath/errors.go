package argpath

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// Path reconstruction failures.
var (
	ErrBrokenPath       = errors.New("path ends before reaching a target")
	ErrMissingDirection = errors.New("no branch direction for node")
	ErrTooManyBranches  = errors.New("node is not a binary assume branch")
	ErrInconsistentPath = errors.New("branch directions disagree with the graph")
	ErrWrongTarget      = errors.New("path ends at an unexpected target")
)

// Error carries a reconstruction failure and the node where it happened.
type Error struct {
	Kind   error
	Node   nodeid.Ref
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v at %s", e.Kind, e.Node)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, node nodeid.Ref, format string, args ...any) *Error {
	return &Error{Kind: kind, Node: node, Detail: fmt.Sprintf(format, args...)}
}

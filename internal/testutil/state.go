package testutil

import (
	"github.com/specialistvlad/argcegar/internal/cfa"
)

// State is a minimal domain.State for graph-level tests.
type State struct {
	Name   string
	Loc    *cfa.Location
	Target bool
}

func (s *State) Location() *cfa.Location { return s.Loc }
func (s *State) IsTarget() bool          { return s.Target }
func (s *State) String() string          { return s.Name }

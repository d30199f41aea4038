// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file contains the location and edge types of the automaton.
//

package cfa

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// EdgeKind classifies CFA edges.
type EdgeKind int

const (
	BlankEdge EdgeKind = iota
	StatementEdge
	AssumeEdge
	CallEdge
	ReturnEdge
)

func (k EdgeKind) String() string {
	switch k {
	case BlankEdge:
		return "blank"
	case StatementEdge:
		return "statement"
	case AssumeEdge:
		return "assume"
	case CallEdge:
		return "call"
	case ReturnEdge:
		return "return"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Location is a program point.
type Location struct {
	ID       int
	Function string
	Label    string
	// Error marks a location that violates the property being checked.
	Error bool

	Leaving  []*Edge
	Entering []*Edge

	FunctionEntry bool
	FunctionExit  bool
}

func (l *Location) String() string {
	if l == nil {
		return "<nil>"
	}
	return l.Function + ":" + l.Label
}

// Assignment writes the value of Expr into Target. Expr is evaluated in the
// scope of the edge carrying it.
type Assignment struct {
	Target MemoryLocation
	Expr   hcl.Expression
	Source string
}

// Edge is one transition of the automaton.
type Edge struct {
	ID   int
	Kind EdgeKind
	From *Location
	To   *Location

	// Assignments are simultaneous. Statement, call (parameter binding) and
	// return (result binding) edges use them.
	Assignments []Assignment

	Condition hcl.Expression
	Truth     bool
	// LoopExit marks an assume edge that leaves a loop.
	LoopExit bool

	// Callee is set on call and return edges.
	Callee *Function
	// ReturnSite is the caller location control returns to. It is set on
	// call and return edges.
	ReturnSite *Location

	// Scope resolves the variables of this edge's expressions.
	Scope *Scope

	Text string

	uses []MemoryLocation
	defs []MemoryLocation
}

// IsCall reports whether e enters a function.
func (e *Edge) IsCall() bool { return e != nil && e.Kind == CallEdge }

// IsReturn reports whether e leaves a function.
func (e *Edge) IsReturn() bool { return e != nil && e.Kind == ReturnEdge }

// Uses returns the memory locations read by e.
func (e *Edge) Uses() []MemoryLocation { return e.uses }

// Defs returns the memory locations written by e.
func (e *Edge) Defs() []MemoryLocation { return e.defs }

func (e *Edge) String() string {
	if e == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s -{%s}-> %s", e.From, e.Text, e.To)
}

// Function is one function of the program.
type Function struct {
	Name   string
	Params []MemoryLocation
	Locals []MemoryLocation
	Entry  *Location
	Exit   *Location
	// Result is evaluated in Scope when the function returns. It may be nil.
	Result hcl.Expression
	Scope  *Scope
}

// Program is a complete automaton.
type Program struct {
	Name      string
	Main      *Function
	Functions map[string]*Function
	Globals   []MemoryLocation
	Locations []*Location
	Edges     []*Edge
}

// Location returns the location with the given function and label.
func (p *Program) Location(function, label string) (*Location, bool) {
	for _, loc := range p.Locations {
		if loc.Function == function && loc.Label == label {
			return loc, true
		}
	}
	return nil, false
}

// ErrorLocations returns every location marked as an error.
func (p *Program) ErrorLocations() []*Location {
	var out []*Location
	for _, loc := range p.Locations {
		if loc.Error {
			out = append(out, loc)
		}
	}
	return out
}

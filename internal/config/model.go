package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of one verification
// task: a program plus the options for analysing it.
type Model struct {
	Program  *Program
	Analysis *Analysis
	// Files lists every file the model was loaded from, in load order.
	Files []string
}

// Program is the format-agnostic representation of a `program` block and the
// functions that belong to it.
type Program struct {
	Name      string
	Entry     string
	Globals   []string
	Functions map[string]*Function
	Range     hcl.Range
}

// Function is the format-agnostic representation of a `function` block.
type Function struct {
	Name   string
	Params []string
	Locals []string
	Entry  string
	Exit   string
	Errors []string
	// Result is the expression handed back to callers. It may be nil.
	Result hcl.Expression
	Edges  []*Edge
	Range  hcl.Range
}

// EdgeKind classifies the edges a function body may declare.
type EdgeKind int

const (
	// EdgePlain is an `edge` block: simultaneous assignments or nothing.
	EdgePlain EdgeKind = iota
	// EdgeAssume is one arm of a `branch` block or an `assume` block.
	EdgeAssume
	// EdgeCall is a `call` block.
	EdgeCall
)

func (k EdgeKind) String() string {
	switch k {
	case EdgePlain:
		return "edge"
	case EdgeAssume:
		return "assume"
	case EdgeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Assignment binds a variable name to an expression. Assignments keep source
// order so that builds are deterministic.
type Assignment struct {
	Name string
	Expr hcl.Expression
	// Source is the expression as written, used for display.
	Source string
}

// Edge is one transition of a function body.
type Edge struct {
	Kind   EdgeKind
	From   string
	To     string
	Assign []Assignment

	// Assume edges.
	Condition       hcl.Expression
	ConditionSource string
	Truth           bool

	// Call edges.
	Callee string
	Args   []Assignment
	Result string

	Range hcl.Range
}

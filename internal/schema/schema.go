// Package schema holds the gohcl decoding structs of the program format.
// They mirror the HCL syntax one to one; the hcl loader translates them into
// the format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top level of any program file.
type File struct {
	Programs  []*Program  `hcl:"program,block"`
	Functions []*Function `hcl:"function,block"`
	// Remain holds the analysis block, which may appear in at most one file.
	Remain hcl.Body `hcl:",remain"`
}

// Program is a `program` block.
type Program struct {
	Name    string   `hcl:"name,label"`
	Entry   string   `hcl:"entry"`
	Globals []string `hcl:"globals,optional"`
	Body    hcl.Body `hcl:",body"`
}

// Function is a `function` block.
type Function struct {
	Name   string         `hcl:"name,label"`
	Params []string       `hcl:"params,optional"`
	Locals []string       `hcl:"locals,optional"`
	Entry  string         `hcl:"entry"`
	Exit   string         `hcl:"exit"`
	Errors []string       `hcl:"errors,optional"`
	Result hcl.Expression `hcl:"result,optional"`

	Edges    []*Edge   `hcl:"edge,block"`
	Branches []*Branch `hcl:"branch,block"`
	Assumes  []*Assume `hcl:"assume,block"`
	Calls    []*Call   `hcl:"call,block"`

	Body hcl.Body `hcl:",body"`
}

// Edge is an `edge "from" "to"` block. Without `assign` it is blank.
type Edge struct {
	From   string         `hcl:"from,label"`
	To     string         `hcl:"to,label"`
	Assign hcl.Expression `hcl:"assign,optional"`
	Body   hcl.Body       `hcl:",body"`
}

// Branch is a `branch "at"` block: two complementary assumptions.
type Branch struct {
	At        string         `hcl:"at,label"`
	Condition hcl.Expression `hcl:"condition"`
	Then      string         `hcl:"then"`
	Else      string         `hcl:"else"`
	Body      hcl.Body       `hcl:",body"`
}

// Assume is an `assume "from" "to"` block: a single assumption.
type Assume struct {
	From      string         `hcl:"from,label"`
	To        string         `hcl:"to,label"`
	Condition hcl.Expression `hcl:"condition"`
	Truth     *bool          `hcl:"truth,optional"`
	Body      hcl.Body       `hcl:",body"`
}

// Call is a `call "from" "to"` block.
type Call struct {
	From     string         `hcl:"from,label"`
	To       string         `hcl:"to,label"`
	Function string         `hcl:"function"`
	Args     hcl.Expression `hcl:"args,optional"`
	Result   string         `hcl:"result,optional"`
	Body     hcl.Body       `hcl:",body"`
}

// Analysis is the `analysis` block. Every attribute is optional; unset
// attributes keep their defaults.
type Analysis struct {
	InterpolationOrder    *string `hcl:"interpolation_order,optional"`
	InterpolationStrategy *string `hcl:"interpolation_strategy,optional"`
	PrecisionScope        *string `hcl:"precision_scope,optional"`
	WaitlistOrder         *string `hcl:"waitlist_order,optional"`
	RestartStrategy       *string `hcl:"restart_strategy,optional"`
	MaxRefinements        *int    `hcl:"max_refinements,optional"`
	RoundTimeout          *string `hcl:"round_timeout,optional"`
	VerifyInterpolants    *bool   `hcl:"verify_interpolants,optional"`
	MaxPathLength         *int    `hcl:"max_path_length,optional"`
	UseDefPruning         *bool   `hcl:"use_def_pruning,optional"`
	IgnoreLoopExitAssumes *bool   `hcl:"ignore_loop_exit_assumes,optional"`
}

// AnalysisBlock is the schema used to pick the analysis block out of a
// file's remaining body.
var AnalysisBlock = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "analysis"}},
}

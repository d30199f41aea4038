package cfa

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

func assign(t *testing.T, name, src string) config.Assignment {
	return config.Assignment{Name: name, Expr: expr(t, src), Source: src}
}

func assume(t *testing.T, from, to, cond string, truth bool) *config.Edge {
	return &config.Edge{Kind: config.EdgeAssume, From: from, To: to, Condition: expr(t, cond), ConditionSource: cond, Truth: truth}
}

// loopProgram counts i up to n and fails if i ends above n.
func loopProgram(t *testing.T) *config.Program {
	return &config.Program{
		Name:    "loop",
		Entry:   "main",
		Globals: []string{"g"},
		Functions: map[string]*config.Function{
			"main": {
				Name:   "main",
				Locals: []string{"i", "n"},
				Entry:  "start",
				Exit:   "end",
				Errors: []string{"fail"},
				Edges: []*config.Edge{
					{Kind: config.EdgePlain, From: "start", To: "head", Assign: []config.Assignment{assign(t, "i", "0"), assign(t, "n", "nondet()")}},
					assume(t, "head", "body", "i < n", true),
					assume(t, "head", "after", "i < n", false),
					{Kind: config.EdgePlain, From: "body", To: "head", Assign: []config.Assignment{assign(t, "i", "i + 1")}},
					assume(t, "after", "fail", "i > n && n >= 0", true),
					assume(t, "after", "end", "i > n && n >= 0", false),
				},
			},
		},
	}
}

func TestBuild_Loop(t *testing.T) {
	// --- Arrange ---
	src := loopProgram(t)

	// --- Act ---
	prog, err := Build(context.Background(), src)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, prog.Main)
	assert.Equal(t, "start", prog.Main.Entry.Label)
	assert.True(t, prog.Main.Entry.FunctionEntry)
	assert.True(t, prog.Main.Exit.FunctionExit)

	fail, ok := prog.Location("main", "fail")
	require.True(t, ok)
	assert.True(t, fail.Error)
	assert.Equal(t, []*Location{fail}, prog.ErrorLocations())

	head, ok := prog.Location("main", "head")
	require.True(t, ok)
	require.Len(t, head.Leaving, 2)

	var exits []string
	for _, e := range prog.Edges {
		if e.LoopExit {
			exits = append(exits, e.Text)
		}
	}
	assert.Equal(t, []string{"[!(i < n)]"}, exits)

	start := prog.Main.Entry.Leaving[0]
	assert.Equal(t, StatementEdge, start.Kind)
	assert.Equal(t, []MemoryLocation{"main::i", "main::n"}, start.Defs())
	assert.Empty(t, start.Uses())
	assert.Equal(t, "i = 0; n = nondet()", start.Text)

	inc := head.Leaving[0].To.Leaving[0]
	assert.Equal(t, []MemoryLocation{"main::i"}, inc.Uses())
}

func TestBuild_Call(t *testing.T) {
	src := &config.Program{
		Name:  "calls",
		Entry: "main",
		Functions: map[string]*config.Function{
			"main": {
				Name:   "main",
				Locals: []string{"x", "r"},
				Entry:  "a",
				Exit:   "d",
				Edges: []*config.Edge{
					{Kind: config.EdgePlain, From: "a", To: "b", Assign: []config.Assignment{assign(t, "x", "1")}},
					{Kind: config.EdgeCall, From: "b", To: "c", Callee: "inc", Args: []config.Assignment{assign(t, "v", "x")}, Result: "r"},
					{Kind: config.EdgePlain, From: "c", To: "d"},
				},
			},
			"inc": {
				Name:   "inc",
				Params: []string{"v"},
				Entry:  "in",
				Exit:   "out",
				Result: expr(t, "v + 1"),
				Edges:  []*config.Edge{{Kind: config.EdgePlain, From: "in", To: "out"}},
			},
		},
	}

	prog, err := Build(context.Background(), src)
	require.NoError(t, err)

	b, _ := prog.Location("main", "b")
	require.Len(t, b.Leaving, 1)
	call := b.Leaving[0]
	assert.True(t, call.IsCall())
	assert.Equal(t, prog.Functions["inc"].Entry, call.To)
	assert.Equal(t, []MemoryLocation{"inc::v"}, call.Defs())
	assert.Equal(t, []MemoryLocation{"main::x"}, call.Uses())

	out := prog.Functions["inc"].Exit
	require.Len(t, out.Leaving, 1)
	ret := out.Leaving[0]
	assert.True(t, ret.IsReturn())
	assert.Equal(t, []MemoryLocation{"main::r"}, ret.Defs())
	assert.Equal(t, []MemoryLocation{"inc::v"}, ret.Uses())
	assert.Equal(t, call.ReturnSite, ret.To)

	last := prog.Edges[len(prog.Edges)-1]
	assert.Equal(t, BlankEdge, last.Kind)
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		program     func(t *testing.T) *config.Program
		errContains string
	}{
		{
			name: "undeclared variable",
			program: func(t *testing.T) *config.Program {
				p := loopProgram(t)
				p.Functions["main"].Edges = append(p.Functions["main"].Edges, assume(t, "end", "fail", "z > 0", true))
				return p
			},
			errContains: "Undeclared variable",
		},
		{
			name: "missing entry function",
			program: func(t *testing.T) *config.Program {
				p := loopProgram(t)
				p.Entry = "nope"
				return p
			},
			errContains: "entry function \"nope\"",
		},
		{
			name: "unknown callee",
			program: func(t *testing.T) *config.Program {
				p := loopProgram(t)
				p.Functions["main"].Edges = append(p.Functions["main"].Edges, &config.Edge{Kind: config.EdgeCall, From: "end", To: "x", Callee: "ghost"})
				return p
			},
			errContains: "Unknown function",
		},
		{
			name: "recursion",
			program: func(t *testing.T) *config.Program {
				p := loopProgram(t)
				p.Functions["main"].Edges = append(p.Functions["main"].Edges, &config.Edge{Kind: config.EdgeCall, From: "end", To: "x", Callee: "f"})
				p.Functions["f"] = &config.Function{Name: "f", Entry: "s", Exit: "e", Edges: []*config.Edge{
					{Kind: config.EdgeCall, From: "s", To: "e", Callee: "g"},
				}}
				p.Functions["g"] = &config.Function{Name: "g", Entry: "s", Exit: "e", Edges: []*config.Edge{
					{Kind: config.EdgeCall, From: "s", To: "e", Callee: "f"},
				}}
				return p
			},
			errContains: "recursion is not supported: f -> g -> f",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(context.Background(), tc.program(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestMemoryLocation(t *testing.T) {
	testCases := []struct {
		loc        MemoryLocation
		global     bool
		function   string
		identifier string
	}{
		{loc: Local("main", "i"), function: "main", identifier: "i"},
		{loc: Global("g"), global: true, identifier: "g"},
	}

	for _, tc := range testCases {
		t.Run(tc.loc.String(), func(t *testing.T) {
			assert.Equal(t, tc.global, tc.loc.IsGlobal())
			assert.Equal(t, tc.function, tc.loc.Function())
			assert.Equal(t, tc.identifier, tc.loc.Identifier())
		})
	}
}

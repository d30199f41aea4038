package hcl_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/hcl"
	"github.com/specialistvlad/argcegar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopSource = `
program "loop" {
  entry   = "main"
  globals = ["g"]
}

function "main" {
  locals = ["i", "n", "r"]
  entry  = "start"
  exit   = "end"
  errors = ["fail"]

  edge "start" "head" { assign = { i = 0, n = nondet() } }
  branch "head" {
    condition = i < n
    then      = "body"
    else      = "after"
  }
  edge "body" "head" { assign = { i = i + 1 } }
  call "after" "check" {
    function = "id"
    args     = { v = i }
    result   = "r"
  }
  assume "check" "fail" { condition = r > n }
  assume "check" "end" {
    condition = r > n
    truth     = false
  }
}

function "id" {
  params = ["v"]
  entry  = "in"
  exit   = "out"
  result = v
  edge "in" "out" {}
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	return dir
}

func TestLoader_Load(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	dir := writeFiles(t, map[string]string{"loop.hcl": loopSource})

	// --- Act ---
	model, err := hcl.NewLoader().Load(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "loop.hcl")}, model.Files)
	assert.Equal(t, config.DefaultAnalysis(), model.Analysis)

	p := model.Program
	assert.Equal(t, "loop", p.Name)
	assert.Equal(t, "main", p.Entry)
	assert.Equal(t, []string{"g"}, p.Globals)
	require.Len(t, p.Functions, 2)

	main := p.Functions["main"]
	assert.Equal(t, []string{"fail"}, main.Errors)
	assert.Nil(t, main.Result)
	require.Len(t, main.Edges, 7)

	kinds := make([]string, 0, len(main.Edges))
	for _, e := range main.Edges {
		kinds = append(kinds, e.Kind.String()+" "+e.From+"->"+e.To)
	}
	assert.Equal(t, []string{
		"edge start->head",
		"assume head->body",
		"assume head->after",
		"edge body->head",
		"call after->check",
		"assume check->fail",
		"assume check->end",
	}, kinds)

	start := main.Edges[0]
	require.Len(t, start.Assign, 2)
	assert.Equal(t, "i", start.Assign[0].Name)
	assert.Equal(t, "0", start.Assign[0].Source)
	assert.Equal(t, "n", start.Assign[1].Name)
	assert.Equal(t, "nondet()", start.Assign[1].Source)

	assert.Equal(t, "i < n", main.Edges[1].ConditionSource)
	assert.True(t, main.Edges[1].Truth)
	assert.False(t, main.Edges[2].Truth)

	call := main.Edges[4]
	assert.Equal(t, "id", call.Callee)
	assert.Equal(t, "r", call.Result)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "v", call.Args[0].Name)
	assert.Equal(t, "i", call.Args[0].Source)

	assert.True(t, main.Edges[5].Truth)
	assert.False(t, main.Edges[6].Truth)

	id := p.Functions["id"]
	assert.NotNil(t, id.Result)
	require.Len(t, id.Edges, 1)
	assert.Empty(t, id.Edges[0].Assign)
}

func TestLoader_Analysis(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := writeFiles(t, map[string]string{
		"loop.hcl": loopSource,
		"analysis.hcl": `
analysis {
  interpolation_order    = "bottom-up"
  interpolation_strategy = "nested"
  round_timeout          = "1500ms"
  max_refinements        = 7
  use_def_pruning        = false
}
`,
	})

	model, err := hcl.NewLoader().Load(ctx, dir)

	require.NoError(t, err)
	a := model.Analysis
	assert.Equal(t, config.OrderBottomUp, a.InterpolationOrder)
	assert.Equal(t, config.StrategyNested, a.InterpolationStrategy)
	assert.Equal(t, 1500*time.Millisecond, a.RoundTimeout)
	assert.Equal(t, 7, a.MaxRefinements)
	assert.False(t, a.UseDefPruning)
	assert.Equal(t, config.ScopeLocation, a.PrecisionScope)
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name:        "no program block",
			files:       map[string]string{"a.hcl": `function "main" {` + "\n" + `entry = "a"` + "\n" + `exit = "b"` + "\n}"},
			errContains: "no program block",
		},
		{
			name: "two program blocks",
			files: map[string]string{
				"a.hcl": loopSource,
				"b.hcl": `program "other" { entry = "main" }`,
			},
			errContains: "Duplicate program block",
		},
		{
			name: "duplicate function across files",
			files: map[string]string{
				"a.hcl": loopSource,
				"b.hcl": "function \"id\" {\n  entry = \"x\"\n  exit = \"y\"\n}\n",
			},
			errContains: "Duplicate function",
		},
		{
			name: "two analysis blocks",
			files: map[string]string{
				"a.hcl": loopSource + "\nanalysis {}\n",
				"b.hcl": "analysis {}\n",
			},
			errContains: "Duplicate \"analysis\" block",
		},
		{
			name:        "invalid option",
			files:       map[string]string{"a.hcl": loopSource + "\nanalysis {\n  waitlist_order = \"random\"\n}\n"},
			errContains: "invalid analysis options",
		},
		{
			name:        "invalid duration",
			files:       map[string]string{"a.hcl": loopSource + "\nanalysis {\n  round_timeout = \"soon\"\n}\n"},
			errContains: "invalid round_timeout",
		},
		{
			name:        "non keyword assignment target",
			files:       map[string]string{"a.hcl": "program \"p\" { entry = \"main\" }\nfunction \"main\" {\n  entry = \"a\"\n  exit = \"b\"\n  edge \"a\" \"b\" { assign = { (\"x\") = 1 } }\n}\n"},
			errContains: "Invalid assignment target",
		},
		{
			name:        "unknown top-level block",
			files:       map[string]string{"a.hcl": loopSource + "\nstep \"x\" {}\n"},
			errContains: "failed to decode",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			dir := writeFiles(t, tc.files)

			_, err := hcl.NewLoader().Load(ctx, dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoader_NoFiles(t *testing.T) {
	ctx, _ := testutil.Context(t)

	_, err := hcl.NewLoader().Load(ctx, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files")
}

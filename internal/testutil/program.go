package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/hcl"
	"github.com/stretchr/testify/require"
)

// LoadModel writes src into a temporary program file and loads it.
func LoadModel(t *testing.T, src string) *config.Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	ctx, _ := Context(t)
	model, err := hcl.NewLoader().Load(ctx, path)
	require.NoError(t, err)
	return model
}

// LoadProgram loads src and builds its automaton.
func LoadProgram(t *testing.T, src string) *cfa.Program {
	t.Helper()
	model := LoadModel(t, src)

	ctx, _ := Context(t)
	prog, err := cfa.Build(ctx, model.Program)
	require.NoError(t, err)
	return prog
}

// Edge returns the single edge of prog leaving function::from for
// function::to. It fails the test when there is none or more than one.
func Edge(t *testing.T, prog *cfa.Program, function, from, to string) *cfa.Edge {
	t.Helper()
	loc, ok := prog.Location(function, from)
	require.True(t, ok, "no location %s::%s", function, from)

	var found *cfa.Edge
	for _, e := range loc.Leaving {
		if e.To.Label == to {
			require.Nil(t, found, "more than one edge %s::%s -> %s", function, from, to)
			found = e
		}
	}
	require.NotNil(t, found, "no edge %s::%s -> %s", function, from, to)
	return found
}

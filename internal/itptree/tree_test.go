package itptree

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItp is a conjunction of tracked variables. bottom marks the
// contradiction.
type fakeItp struct {
	vars   []string
	bottom bool
}

var (
	top = fakeItp{}
	bot = fakeItp{bottom: true}
)

func tracks(vars ...string) fakeItp { return fakeItp{vars: vars} }

func (f fakeItp) IsTrivial() bool { return !f.bottom && len(f.vars) == 0 }
func (f fakeItp) IsFalse() bool   { return f.bottom }

func (f fakeItp) Join(other fakeItp) fakeItp {
	switch {
	case f.bottom:
		return other
	case other.bottom:
		return f
	}
	var out []string
	for _, v := range f.vars {
		for _, w := range other.vars {
			if v == w {
				out = append(out, v)
			}
		}
	}
	return fakeItp{vars: out}
}

func (f fakeItp) MemoryLocations() []cfa.MemoryLocation {
	out := make([]cfa.MemoryLocation, len(f.vars))
	for i, v := range f.vars {
		out[i] = cfa.MemoryLocation(v)
	}
	return out
}

func (f fakeItp) String() string {
	if f.bottom {
		return "false"
	}
	if len(f.vars) == 0 {
		return "true"
	}
	return strings.Join(f.vars, "&")
}

// diamond builds R -> A -> B with two targets below B and a third target
// below A through C:
//
//	R - A - B - T1
//	     \   \- T2
//	      C - T3
func diamond(t *testing.T) *testutil.ARG {
	g := testutil.NewARG(t)
	g.Root("R")
	g.Child("R", "A", testutil.Blank(1))
	g.Child("A", "B", testutil.Assume(2, true))
	g.Child("A", "C", testutil.Assume(3, false))
	g.Target("B", "T1", testutil.Assume(4, true))
	g.Target("B", "T2", testutil.Assume(5, false))
	g.Target("C", "T3", testutil.Blank(6))
	return g
}

func build(t *testing.T, g *testutil.ARG, order Order, targets ...string) *Tree[fakeItp] {
	t.Helper()
	tree, err := New(context.Background(), g.Store, g.Refs(targets...), order, top, bot)
	require.NoError(t, err)
	return tree
}

func names(g *testutil.ARG, p argpath.Path) []string {
	return g.Names(p.Nodes())
}

func TestNew_Shape(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)

	// --- Act ---
	tree := build(t, g, TopDown, "T1", "T2", "T3")

	// --- Assert ---
	assert.Equal(t, g.Ref("R"), tree.Root())
	assert.Equal(t, 7, tree.Size())
	assert.Equal(t, []string{"B", "C"}, g.Names(tree.Successors(g.Ref("A"))))
	assert.Equal(t, []string{"T1", "T2"}, g.Names(tree.Successors(g.Ref("B"))))
	assert.Equal(t, g.Ref("A"), tree.Predecessor(g.Ref("B")))
	assert.True(t, tree.Predecessor(g.Ref("R")).IsZero())
	assert.Equal(t, []string{"R", "A", "B", "T2"}, names(g, tree.PathFromRoot(g.Ref("T2"))))
	assert.Equal(t, []string{"T1", "T2", "T3"}, g.Names(tree.TargetsInSubtree(g.Ref("A"))))
	assert.Equal(t, []string{"T3"}, g.Names(tree.TargetsInSubtree(g.Ref("C"))))
}

func TestNew_StaleTarget(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)
	stale := g.Ref("T3")
	require.NoError(t, g.Store.Remove(stale))

	// --- Act ---
	_, err := New(context.Background(), g.Store, append(g.Refs("T1"), stale), TopDown, top, bot)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target")
}

func TestTree_TopDownOrder(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)
	tree := build(t, g, TopDown, "T1", "T2", "T3")

	// --- Act & Assert ---
	require.True(t, tree.HasNext())
	path, initial := tree.Next()
	assert.Equal(t, []string{"R", "A", "B", "T1"}, names(g, path))
	assert.True(t, initial.IsTrivial())
	require.NoError(t, tree.Update(path, []fakeItp{tracks("x"), tracks("x", "y")}))

	path, initial = tree.Next()
	assert.Equal(t, []string{"B", "T2"}, names(g, path))
	assert.Equal(t, "x&y", initial.String())
	require.NoError(t, tree.Update(path, nil))

	path, initial = tree.Next()
	assert.Equal(t, []string{"A", "C", "T3"}, names(g, path))
	assert.Equal(t, "x", initial.String())
	require.NoError(t, tree.Update(path, []fakeItp{tracks("z")}))

	assert.False(t, tree.HasNext())
	assert.Equal(t, []string{"A"}, g.Names(tree.RefinementRoots()))
	assert.Equal(t, []string{"T1", "T2", "T3"}, g.Names(tree.CutoffRoots()))
}

func TestTree_BottomUpOrder(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)
	tree := build(t, g, BottomUp, "T1", "T3")
	var got [][]string

	// --- Act ---
	for tree.HasNext() {
		path, initial := tree.Next()
		require.True(t, initial.IsTrivial())
		got = append(got, names(g, path))
		itps := make([]fakeItp, len(path)-2)
		for i := range itps {
			itps[i] = tracks("x")
		}
		require.NoError(t, tree.Update(path, itps))
	}

	// --- Assert ---
	assert.Equal(t, [][]string{{"R", "A", "B", "T1"}, {"R", "A", "C", "T3"}}, got)
	assert.Equal(t, []string{"A"}, g.Names(tree.RefinementRoots()))
}

func TestTree_FalseCutsOffSharedPrefix(t *testing.T) {
	testCases := []struct {
		name  string
		order Order
	}{
		{name: "top-down", order: TopDown},
		{name: "bottom-up", order: BottomUp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			g := diamond(t)
			tree := build(t, g, tc.order, "T1", "T2")

			// --- Act ---
			path, _ := tree.Next()
			require.Equal(t, []string{"R", "A", "B", "T1"}, names(g, path))
			require.NoError(t, tree.Update(path, []fakeItp{top, bot}))
			require.True(t, tree.HasNext())
			second, _ := tree.Next()

			// --- Assert ---
			assert.Empty(t, second, "T2 lies below a false interpolant")
			assert.False(t, tree.HasNext())
			assert.Equal(t, []string{"B"}, g.Names(tree.CutoffRoots()))
			assert.Empty(t, tree.RefinementRoots())
		})
	}
}

func TestTree_UpdateJoins(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)
	tree := build(t, g, BottomUp, "T1", "T2")
	first := tree.PathFromRoot(g.Ref("T1"))
	second := tree.PathFromRoot(g.Ref("T2"))

	// --- Act ---
	require.NoError(t, tree.Update(first, []fakeItp{tracks("x", "y"), tracks("y")}))
	require.NoError(t, tree.Update(second, []fakeItp{tracks("x"), bot}))

	// --- Assert ---
	assert.Equal(t, "x", tree.Interpolant(g.Ref("A")).String())
	assert.Equal(t, "y", tree.Interpolant(g.Ref("B")).String(), "false is the identity of join")
	assert.True(t, tree.Interpolant(g.Ref("R")).IsTrivial())
	assert.True(t, tree.Interpolant(g.Ref("T2")).IsFalse())
}

func TestTree_UpdateRejectsMismatchedInterpolants(t *testing.T) {
	testCases := []struct {
		name string
		itps []fakeItp
	}{
		{name: "too few", itps: []fakeItp{top}},
		{name: "too many", itps: []fakeItp{top, top, top}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			g := diamond(t)
			tree := build(t, g, BottomUp, "T1")

			// --- Act ---
			err := tree.Update(tree.PathFromRoot(g.Ref("T1")), tc.itps)

			// --- Assert ---
			require.Error(t, err)
			assert.Empty(t, tree.Interpolants())
		})
	}
}

func TestTree_PrecisionIncrement(t *testing.T) {
	// --- Arrange ---
	g := diamond(t)
	tree := build(t, g, BottomUp, "T1", "T3")
	require.NoError(t, tree.Update(tree.PathFromRoot(g.Ref("T1")), []fakeItp{tracks("x"), tracks("main::y")}))
	require.NoError(t, tree.Update(tree.PathFromRoot(g.Ref("T3")), []fakeItp{tracks("x"), tracks("z")}))

	// --- Act ---
	inc := tree.PrecisionIncrement(g.Ref("A"))
	below := tree.PrecisionIncrement(g.Ref("C"))

	// --- Assert ---
	loc := func(name string) *cfa.Location { return g.Store.State(g.Ref(name)).Location() }
	assert.Equal(t, []cfa.MemoryLocation{"x"}, inc.At(loc("A")))
	assert.Equal(t, []cfa.MemoryLocation{"main::y"}, inc.At(loc("B")))
	assert.Equal(t, []cfa.MemoryLocation{"z"}, inc.At(loc("C")))
	assert.Empty(t, inc.At(loc("T1")), "targets carry no increment")
	assert.Equal(t, 3, inc.Size())

	assert.Equal(t, []cfa.MemoryLocation{"x"}, below.At(loc("A")), "collection starts at the root's predecessor")
	assert.Empty(t, below.At(loc("R")))
}

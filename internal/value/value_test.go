package value

import (
	"context"
	"testing"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const branchProgram = `
program "branch" { entry = "main" }

function "main" {
  locals = ["x", "y"]
  entry  = "a"
  exit   = "e"
  errors = ["err"]

  edge "a" "b" { assign = { x = 1, y = nondet() } }
  branch "b" {
    condition = x == 2
    then      = "err"
    else      = "c"
  }
  assume "c" "d" { condition = y == 3 }
  edge "d" "e" { assign = { x = x + y } }
}
`

const callProgram = `
program "calls" { entry = "main" }

function "main" {
  locals = ["x", "r"]
  entry  = "a"
  exit   = "d"
  errors = ["err"]

  edge "a" "b" { assign = { x = 1 } }
  call "b" "c" {
    function = "inc"
    args     = { v = x }
    result   = "r"
  }
  branch "c" {
    condition = r == 2
    then      = "d"
    else      = "err"
  }
}

function "inc" {
  params = ["v"]
  entry  = "in"
  exit   = "out"
  result = v + 1
  edge "in" "out" {}
}
`

// tracking returns a global precision tracking every given memory location.
func tracking(ms ...cfa.MemoryLocation) *Precision {
	inc := domain.NewIncrement()
	inc.Add(nil, ms...)
	return NewPrecision(config.ScopeGlobal).WithIncrement(inc).(*Precision)
}

func step(t *testing.T, d *Domain, s domain.State, p domain.Precision, e *cfa.Edge) *State {
	t.Helper()
	next, err := d.Successors(context.Background(), s, p, e)
	require.NoError(t, err)
	require.Len(t, next, 1, "edge %s is infeasible from %s", e, s)
	return next[0].(*State)
}

func number(t *testing.T, s *State, m cfa.MemoryLocation) int64 {
	t.Helper()
	v, ok := s.Value(m)
	require.True(t, ok, "%s has no value in %s", m, s)
	i, _ := v.AsBigFloat().Int64()
	return i
}

func TestDomain_Successors(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	d := NewDomain(config.ScopeLocation)
	init := d.Initial(prog.Main.Entry)
	ab := testutil.Edge(t, prog, "main", "a", "b")

	testCases := []struct {
		name     string
		prec     domain.Precision
		expected map[cfa.MemoryLocation]int64
	}{
		{name: "initial precision tracks nothing", prec: d.InitialPrecision(), expected: map[cfa.MemoryLocation]int64{}},
		{name: "tracked value is kept", prec: tracking("main::x"), expected: map[cfa.MemoryLocation]int64{"main::x": 1}},
		{name: "composite precision", prec: domain.NewComposite(tracking("main::x", "main::y")), expected: map[cfa.MemoryLocation]int64{"main::x": 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := step(t, d, init, tc.prec, ab)

			assert.Equal(t, ab.To, s.Location())
			assert.Equal(t, len(tc.expected), s.Size(), "nondet() is never known")
			for m, v := range tc.expected {
				assert.Equal(t, v, number(t, s, m))
			}
		})
	}
}

func TestDomain_Assume(t *testing.T) {
	// --- Arrange ---
	prog := testutil.LoadProgram(t, branchProgram)
	d := NewDomain(config.ScopeLocation)
	p := tracking("main::x", "main::y")
	b := step(t, d, d.Initial(prog.Main.Entry), p, testutil.Edge(t, prog, "main", "a", "b"))

	// --- Act ---
	toErr, err := d.Successors(context.Background(), b, p, testutil.Edge(t, prog, "main", "b", "err"))
	require.NoError(t, err)
	c := step(t, d, b, p, testutil.Edge(t, prog, "main", "b", "c"))
	dd := step(t, d, c, p, testutil.Edge(t, prog, "main", "c", "d"))
	e := step(t, d, dd, p, testutil.Edge(t, prog, "main", "d", "e"))

	// --- Assert ---
	assert.Empty(t, toErr, "x == 2 is known to be false")
	_, known := c.Value("main::y")
	assert.False(t, known)
	assert.Equal(t, int64(3), number(t, dd, "main::y"), "y == 3 assigns y")
	assert.Equal(t, int64(4), number(t, e, "main::x"))
	assert.False(t, e.IsTarget())
}

func TestDomain_CallAndReturn(t *testing.T) {
	// --- Arrange ---
	prog := testutil.LoadProgram(t, callProgram)
	d := NewDomain(config.ScopeLocation)
	p := tracking("main::x", "main::r", "inc::v")
	call := testutil.Edge(t, prog, "main", "b", "in")
	ret := testutil.Edge(t, prog, "inc", "out", "c")

	// --- Act ---
	b := step(t, d, d.Initial(prog.Main.Entry), p, testutil.Edge(t, prog, "main", "a", "b"))
	in := step(t, d, b, p, call)
	out := step(t, d, in, p, testutil.Edge(t, prog, "inc", "in", "out"))
	c := step(t, d, out, p, ret)

	// --- Assert ---
	assert.Equal(t, int64(1), number(t, in, "inc::v"))
	assert.Contains(t, in.String(), "stack=[main:c]")
	assert.Equal(t, int64(2), number(t, c, "main::r"))
	_, ok := c.Value("inc::v")
	assert.False(t, ok, "callee variables are dropped on return")
	assert.NotContains(t, c.String(), "stack=")

	toErr, err := d.Successors(context.Background(), c, p, testutil.Edge(t, prog, "main", "c", "err"))
	require.NoError(t, err)
	assert.Empty(t, toErr)

	orphan := NewState(ret.From)
	none, err := d.Successors(context.Background(), orphan, p, ret)
	require.NoError(t, err)
	assert.Empty(t, none, "a return without a pending call has no successor")
}

func TestDomain_Covers(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	b, _ := prog.Location("main", "b")
	c, _ := prog.Location("main", "c")

	at := func(loc *cfa.Location, vals map[cfa.MemoryLocation]cty.Value) *State {
		s := NewState(loc)
		for m, v := range vals {
			s.assign(m, v)
		}
		return s
	}
	one := cty.NumberIntVal(1)
	two := cty.NumberIntVal(2)

	testCases := []struct {
		name     string
		covering *State
		covered  *State
		expected bool
	}{
		{name: "empty covers anything at the same location", covering: at(b, nil), covered: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one}), expected: true},
		{name: "subset covers", covering: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one}), covered: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one, "main::y": two}), expected: true},
		{name: "more values do not cover", covering: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one, "main::y": two}), covered: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one})},
		{name: "different value", covering: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": one}), covered: at(b, map[cfa.MemoryLocation]cty.Value{"main::x": two})},
		{name: "different location", covering: at(b, nil), covered: at(c, nil)},
	}

	d := NewDomain(config.ScopeLocation)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, d.Covers(tc.covering, tc.covered))
		})
	}
}

func TestInterpolant_Join(t *testing.T) {
	one := cty.NumberIntVal(1)
	two := cty.NumberIntVal(2)
	a := NewInterpolant(map[cfa.MemoryLocation]cty.Value{"x": one, "y": one})
	b := NewInterpolant(map[cfa.MemoryLocation]cty.Value{"x": one, "y": two})

	joined := a.Join(b)

	assert.Equal(t, []cfa.MemoryLocation{"x"}, joined.MemoryLocations())
	assert.Equal(t, a, a.Join(False()), "false is the identity")
	assert.Equal(t, b, False().Join(b))
	assert.True(t, a.Join(True()).IsTrivial())
	assert.True(t, False().Join(False()).IsFalse())
	assert.Equal(t, "true", True().String())
	assert.Equal(t, "false", False().String())
	assert.Equal(t, "{x=1, y=2}", b.String())
}

func TestInterpolant_IgnoresUnknownValues(t *testing.T) {
	itp := NewInterpolant(map[cfa.MemoryLocation]cty.Value{
		"x": cty.UnknownVal(cty.Number),
		"y": cty.NullVal(cty.Number),
	})

	assert.True(t, itp.IsTrivial())
	assert.Equal(t, 0, itp.Size())
}

func TestState_Strengthen(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	s := NewState(prog.Main.Entry)
	s.assign("main::x", cty.NumberIntVal(1))

	strong, ok := s.Strengthen(NewInterpolant(map[cfa.MemoryLocation]cty.Value{"main::y": cty.NumberIntVal(3)}))
	require.True(t, ok)
	assert.Equal(t, 2, strong.(*State).Size())
	assert.Equal(t, 1, s.Size(), "the receiver is unchanged")

	_, ok = s.Strengthen(NewInterpolant(map[cfa.MemoryLocation]cty.Value{"main::x": cty.NumberIntVal(2)}))
	assert.False(t, ok, "conflicting value is bottom")

	_, ok = s.Strengthen(False())
	assert.False(t, ok)

	var _ domain.Strengthener[Interpolant] = s
}

func TestPrecision(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	b, _ := prog.Location("main", "b")
	c, _ := prog.Location("main", "c")

	inc := domain.NewIncrement()
	inc.Add(b, "main::x")

	local := NewPrecision(config.ScopeLocation).WithIncrement(inc).(*Precision)
	assert.True(t, local.Tracks(b, "main::x"))
	assert.False(t, local.Tracks(c, "main::x"))
	assert.Equal(t, "value[main:b{main::x}]", local.String())

	global := NewPrecision(config.ScopeGlobal).WithIncrement(inc).(*Precision)
	assert.True(t, global.Tracks(c, "main::x"))

	other := domain.NewIncrement()
	other.Add(c, "main::y")
	joined := local.Join(NewPrecision(config.ScopeLocation).WithIncrement(other)).(*Precision)
	assert.True(t, joined.Tracks(b, "main::x"))
	assert.True(t, joined.Tracks(c, "main::y"))
	assert.Equal(t, 2, joined.Size())
	assert.Equal(t, 1, local.Size(), "join does not mutate")

	assert.Same(t, local, local.Join(domain.NewComposite()), "no value component leaves the precision as is")
}

func pathOf(prog *cfa.Program, edges ...*cfa.Edge) argpath.Path {
	var p argpath.Path
	for i, e := range edges {
		p = append(p, argpath.Element{ID: i, State: NewState(e.From), Edge: e})
	}
	last := edges[len(edges)-1].To
	return append(p, argpath.Element{ID: len(edges), State: NewState(last)})
}

func TestChecker_Check(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	ab := testutil.Edge(t, prog, "main", "a", "b")
	bc := testutil.Edge(t, prog, "main", "b", "c")
	cd := testutil.Edge(t, prog, "main", "c", "d")
	bErr := testutil.Edge(t, prog, "main", "b", "err")

	testCases := []struct {
		name         string
		path         argpath.Path
		feasible     bool
		infeasibleAt int
		directions   map[int]bool
	}{
		{name: "feasible", path: pathOf(prog, ab, bc, cd), feasible: true, infeasibleAt: -1, directions: map[int]bool{1: false, 2: true}},
		{name: "infeasible at the branch", path: pathOf(prog, ab, bErr), infeasibleAt: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NewChecker().Check(context.Background(), tc.path)

			require.NoError(t, err)
			assert.Equal(t, tc.feasible, res.Feasible)
			assert.Equal(t, tc.infeasibleAt, res.InfeasibleAt)
			if tc.feasible {
				assert.Equal(t, tc.directions, res.Directions)
				assert.Contains(t, res.Model, "main::y=3")
			}
		})
	}
}

func TestProver_Interpolate(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	ab := testutil.Edge(t, prog, "main", "a", "b")
	bErr := testutil.Edge(t, prog, "main", "b", "err")
	bc := testutil.Edge(t, prog, "main", "b", "c")
	ctx := context.Background()

	testCases := []struct {
		name     string
		opts     ProverOptions
		expected string
	}{
		{name: "minimal", opts: ProverOptions{}, expected: "{main::x=1}"},
		{name: "use-def pruning", opts: ProverOptions{UseDefPruning: true}, expected: "{main::x=1}"},
		{name: "ignore loop exits", opts: ProverOptions{IgnoreLoopExitAssumes: true}, expected: "{main::x=1}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProver(tc.opts)

			itp, err := p.Interpolate(ctx, True(), []*cfa.Edge{ab}, []*cfa.Edge{bErr}, False())

			require.NoError(t, err)
			assert.Equal(t, tc.expected, itp.String())
		})
	}

	t.Run("error - rest is feasible", func(t *testing.T) {
		_, err := NewProver(ProverOptions{}).Interpolate(ctx, True(), []*cfa.Edge{ab}, []*cfa.Edge{bc}, False())
		assert.ErrorIs(t, err, ErrNotRefuted)
	})

	t.Run("infeasible step yields false", func(t *testing.T) {
		start := NewInterpolant(map[cfa.MemoryLocation]cty.Value{"main::x": cty.NumberIntVal(1)})
		itp, err := NewProver(ProverOptions{}).Interpolate(ctx, start, []*cfa.Edge{bErr}, nil, False())
		require.NoError(t, err)
		assert.True(t, itp.IsFalse())
	})
}

func TestProver_Queries(t *testing.T) {
	prog := testutil.LoadProgram(t, branchProgram)
	ab := testutil.Edge(t, prog, "main", "a", "b")
	bErr := testutil.Edge(t, prog, "main", "b", "err")
	bc := testutil.Edge(t, prog, "main", "b", "c")
	ctx := context.Background()
	p := NewProver(ProverOptions{})
	x1 := NewInterpolant(map[cfa.MemoryLocation]cty.Value{"main::x": cty.NumberIntVal(1)})

	sat, model, err := p.Satisfiable(ctx, True(), []*cfa.Edge{ab, bc})
	require.NoError(t, err)
	assert.True(t, sat)
	assert.Equal(t, "{main::x=1}", model)

	sat, _, err = p.Satisfiable(ctx, True(), []*cfa.Edge{ab, bErr})
	require.NoError(t, err)
	assert.False(t, sat)

	ok, err := p.Implies(ctx, True(), []*cfa.Edge{ab}, x1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Implies(ctx, x1, []*cfa.Edge{bErr}, False())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Implies(ctx, True(), []*cfa.Edge{bc}, x1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []cfa.MemoryLocation{"main::x", "main::y"}, p.Variables([]*cfa.Edge{ab, bErr}))
	assert.False(t, p.Opens(ab))
	assert.Equal(t, p.Key(ab), p.Key(ab))
	assert.NotEqual(t, p.Key(ab), p.Key(bc))
}

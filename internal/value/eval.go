package value

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// NondetFunc returns an arbitrary number. Its result is always unknown.
var NondetFunc = function.New(&function.Spec{
	Description: "Returns an arbitrary number.",
	Params:      []function.Parameter{},
	Type:        function.StaticReturnType(cty.Number),
	Impl: func(_ []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.UnknownVal(retType), nil
	},
})

// Functions lists the functions edge expressions may call.
var Functions = map[string]function.Function{
	"nondet": NondetFunc,
	"abs":    stdlib.AbsoluteFunc,
	"min":    stdlib.MinFunc,
	"max":    stdlib.MaxFunc,
}

// transfer options.
type mode struct {
	// tracks filters the successor's values. nil keeps everything.
	tracks func(loc *cfa.Location, m cfa.MemoryLocation) bool
	// matchReturns requires return edges to match the innermost pending call.
	// Path replay starts from location-less states and turns it off.
	matchReturns bool
}

func evalContext(s *State, scope *cfa.Scope) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(scope.Names()))
	for name, m := range scope.Names() {
		if v, ok := s.values[m]; ok {
			vars[name] = v
		} else {
			vars[name] = cty.DynamicVal
		}
	}
	return &hcl.EvalContext{Variables: vars, Functions: Functions}
}

func evaluate(expr hcl.Expression, ctx *hcl.EvalContext, e *cfa.Edge) (cty.Value, error) {
	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating edge %s: %w", e, diags)
	}
	return v, nil
}

// transfer returns the successor of s along e, or false when e is
// infeasible from s.
func transfer(s *State, e *cfa.Edge, m mode) (*State, bool, error) {
	next := s.clone()
	next.loc = e.To

	switch e.Kind {
	case cfa.BlankEdge:
	case cfa.StatementEdge:
		if err := assignAll(s, next, e); err != nil {
			return nil, false, err
		}
	case cfa.AssumeEdge:
		ok, err := assume(s, next, e)
		if err != nil || !ok {
			return nil, false, err
		}
	case cfa.CallEdge:
		next.dropFunction(e.Callee.Name)
		next.stack = append(next.stack, e.ReturnSite)
		if err := assignAll(s, next, e); err != nil {
			return nil, false, err
		}
	case cfa.ReturnEdge:
		if n := len(next.stack); n > 0 {
			if next.stack[n-1] != e.ReturnSite {
				return nil, false, nil
			}
			next.stack = next.stack[:n-1]
		} else if m.matchReturns {
			return nil, false, nil
		}
		vals, err := evalAssignments(s, e)
		if err != nil {
			return nil, false, err
		}
		next.dropFunction(e.Callee.Name)
		for i, a := range e.Assignments {
			next.assign(a.Target, vals[i])
		}
	default:
		return nil, false, fmt.Errorf("edge %s: unsupported kind %s", e, e.Kind)
	}

	if m.tracks != nil {
		for mem := range next.values {
			if !m.tracks(next.loc, mem) {
				delete(next.values, mem)
			}
		}
	}
	return next, true, nil
}

// evalAssignments evaluates every right-hand side in the pre-state.
func evalAssignments(s *State, e *cfa.Edge) ([]cty.Value, error) {
	ctx := evalContext(s, e.Scope)
	vals := make([]cty.Value, len(e.Assignments))
	for i, a := range e.Assignments {
		v, err := evaluate(a.Expr, ctx, e)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func assignAll(s, next *State, e *cfa.Edge) error {
	vals, err := evalAssignments(s, e)
	if err != nil {
		return err
	}
	for i, a := range e.Assignments {
		next.assign(a.Target, vals[i])
	}
	return nil
}

// assume applies an assume edge. A known condition that disagrees with the
// edge's truth value makes it infeasible. An unknown condition of the form
// `x == c` (or `x != c` on the false branch) assigns c to x.
func assume(s, next *State, e *cfa.Edge) (bool, error) {
	ctx := evalContext(s, e.Scope)
	v, err := evaluate(e.Condition, ctx, e)
	if err != nil {
		return false, err
	}
	if !v.IsKnown() || v.IsNull() {
		assumeAssign(next, e, ctx)
		return true, nil
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("edge %s: condition is not a boolean: %w", e, err)
	}
	return b.True() == e.Truth, nil
}

func assumeAssign(next *State, e *cfa.Edge, ctx *hcl.EvalContext) {
	bin, ok := unwrap(e.Condition).(*hclsyntax.BinaryOpExpr)
	if !ok {
		return
	}
	equality := (bin.Op == hclsyntax.OpEqual && e.Truth) || (bin.Op == hclsyntax.OpNotEqual && !e.Truth)
	if !equality {
		return
	}
	for _, pair := range [][2]hcl.Expression{{bin.LHS, bin.RHS}, {bin.RHS, bin.LHS}} {
		name, ok := variableName(pair[0])
		if !ok {
			continue
		}
		mem, ok := e.Scope.Resolve(name)
		if !ok {
			continue
		}
		if _, known := next.values[mem]; known {
			continue
		}
		v, diags := pair[1].Value(ctx)
		if diags.HasErrors() || !storable(v) {
			continue
		}
		next.values[mem] = v
		return
	}
}

func unwrap(expr hcl.Expression) hcl.Expression {
	for {
		p, ok := expr.(*hclsyntax.ParenthesesExpr)
		if !ok {
			return expr
		}
		expr = p.Expression
	}
}

func variableName(expr hcl.Expression) (string, bool) {
	st, ok := unwrap(expr).(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(st.Traversal) != 1 {
		return "", false
	}
	return st.Traversal.RootName(), true
}

func sortLocations(locs []*cfa.Location) {
	sort.Slice(locs, func(i, j int) bool { return locs[i].ID < locs[j].ID })
}

// This file translates the gohcl schema structs into the format-agnostic
// program model.

package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/hclutil"
	"github.com/specialistvlad/argcegar/internal/schema"
)

type translator struct {
	files map[string]*hcl.File
}

// program merges the decoded blocks of all files. Exactly one program block
// must exist and function names must be unique.
func (t *translator) program(programs []*schema.Program, functions []*schema.Function) (*config.Program, error) {
	switch len(programs) {
	case 0:
		return nil, fmt.Errorf("no program block found")
	case 1:
	default:
		rng := hclutil.BodyRange(programs[1].Body)
		return nil, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Duplicate program block",
			Detail:   "Only one program block is allowed, found \"" + programs[0].Name + "\" and \"" + programs[1].Name + "\".",
			Subject:  &rng,
		}
	}

	p := programs[0]
	out := &config.Program{
		Name:      p.Name,
		Entry:     p.Entry,
		Globals:   p.Globals,
		Functions: make(map[string]*config.Function, len(functions)),
		Range:     hclutil.BodyRange(p.Body),
	}
	for _, f := range functions {
		if prev, ok := out.Functions[f.Name]; ok {
			rng := hclutil.BodyRange(f.Body)
			return nil, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate function",
				Detail:   "Function \"" + f.Name + "\" is already defined at " + prev.Range.String() + ".",
				Subject:  &rng,
			}
		}
		fn, err := t.function(f)
		if err != nil {
			return nil, err
		}
		out.Functions[f.Name] = fn
	}
	return out, nil
}

func (t *translator) function(f *schema.Function) (*config.Function, error) {
	fn := &config.Function{
		Name:   f.Name,
		Params: f.Params,
		Locals: f.Locals,
		Entry:  f.Entry,
		Exit:   f.Exit,
		Errors: f.Errors,
		Range:  hclutil.BodyRange(f.Body),
	}
	if hclutil.IsExprDefined(f.Result) {
		fn.Result = f.Result
	}

	var diags hcl.Diagnostics
	for _, e := range f.Edges {
		edge := &config.Edge{Kind: config.EdgePlain, From: e.From, To: e.To, Range: hclutil.BodyRange(e.Body)}
		if hclutil.IsExprDefined(e.Assign) {
			var d hcl.Diagnostics
			edge.Assign, d = t.assignments(e.Assign)
			diags = append(diags, d...)
		}
		fn.Edges = append(fn.Edges, edge)
	}
	for _, b := range f.Branches {
		rng := hclutil.BodyRange(b.Body)
		src := hclutil.Source(b.Condition, t.files)
		fn.Edges = append(fn.Edges,
			&config.Edge{Kind: config.EdgeAssume, From: b.At, To: b.Then, Condition: b.Condition, ConditionSource: src, Truth: true, Range: rng},
			&config.Edge{Kind: config.EdgeAssume, From: b.At, To: b.Else, Condition: b.Condition, ConditionSource: src, Truth: false, Range: rng},
		)
	}
	for _, a := range f.Assumes {
		truth := true
		if a.Truth != nil {
			truth = *a.Truth
		}
		fn.Edges = append(fn.Edges, &config.Edge{
			Kind:            config.EdgeAssume,
			From:            a.From,
			To:              a.To,
			Condition:       a.Condition,
			ConditionSource: hclutil.Source(a.Condition, t.files),
			Truth:           truth,
			Range:           hclutil.BodyRange(a.Body),
		})
	}
	for _, c := range f.Calls {
		edge := &config.Edge{Kind: config.EdgeCall, From: c.From, To: c.To, Callee: c.Function, Result: c.Result, Range: hclutil.BodyRange(c.Body)}
		if hclutil.IsExprDefined(c.Args) {
			var d hcl.Diagnostics
			edge.Args, d = t.assignments(c.Args)
			diags = append(diags, d...)
		}
		fn.Edges = append(fn.Edges, edge)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid function %q: %w", f.Name, diags)
	}

	// Blocks of different kinds decode into separate slices; restore the
	// order in which they were written.
	sort.SliceStable(fn.Edges, func(i, j int) bool {
		a, b := fn.Edges[i].Range, fn.Edges[j].Range
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Start.Byte < b.Start.Byte
	})
	return fn, nil
}

// assignments reads an object constructor `{ x = expr, ... }` keeping the
// source order of its items.
func (t *translator) assignments(expr hcl.Expression) ([]config.Assignment, hcl.Diagnostics) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	out := make([]config.Assignment, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, kv := range pairs {
		name := hcl.ExprAsKeyword(kv.Key)
		rng := kv.Key.Range()
		if name == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid assignment target",
				Detail:   "An assignment target must be a plain variable name.",
				Subject:  &rng,
			})
			continue
		}
		if _, dup := seen[name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate assignment",
				Detail:   "Variable \"" + name + "\" is assigned twice on the same edge.",
				Subject:  &rng,
			})
			continue
		}
		seen[name] = struct{}{}
		out = append(out, config.Assignment{Name: name, Expr: kv.Value, Source: hclutil.Source(kv.Value, t.files)})
	}
	return out, diags
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file translates the format-agnostic program model into an automaton.
//

package cfa

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
)

type builder struct {
	prog    *Program
	src     *config.Program
	byKey   map[string]*Location
	diags   hcl.Diagnostics
	nextEdg int
}

// Build constructs the automaton for a program model. It resolves every
// variable, rejects recursion and marks loop-exit assume edges.
func Build(ctx context.Context, src *config.Program) (*Program, error) {
	logger := ctxlog.FromContext(ctx)
	if src == nil {
		return nil, fmt.Errorf("no program defined")
	}

	b := &builder{
		prog: &Program{
			Name:      src.Name,
			Functions: make(map[string]*Function),
		},
		src:   src,
		byKey: make(map[string]*Location),
	}
	for _, g := range src.Globals {
		b.prog.Globals = append(b.prog.Globals, Global(g))
	}

	names := make([]string, 0, len(src.Functions))
	for name := range src.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	// Functions first so call edges can refer to any callee.
	for _, name := range names {
		b.declareFunction(src.Functions[name])
	}
	for _, name := range names {
		b.buildEdges(src.Functions[name])
	}
	if b.diags.HasErrors() {
		return nil, fmt.Errorf("invalid program %q: %w", src.Name, b.diags)
	}

	main, ok := b.prog.Functions[src.Entry]
	if !ok {
		return nil, fmt.Errorf("invalid program %q: entry function %q is not defined", src.Name, src.Entry)
	}
	b.prog.Main = main

	if cycle := findRecursion(b.prog, names); cycle != nil {
		return nil, fmt.Errorf("invalid program %q: recursion is not supported: %s", src.Name, strings.Join(cycle, " -> "))
	}

	exits := markLoopExits(b.prog)
	logger.Debug("Built control-flow automaton.",
		"program", src.Name,
		"functions", len(b.prog.Functions),
		"locations", len(b.prog.Locations),
		"edges", len(b.prog.Edges),
		"loop_exits", exits,
	)
	return b.prog, nil
}

func (b *builder) location(function, label string) *Location {
	key := function + "\x00" + label
	if loc, ok := b.byKey[key]; ok {
		return loc
	}
	loc := &Location{ID: len(b.prog.Locations), Function: function, Label: label}
	b.byKey[key] = loc
	b.prog.Locations = append(b.prog.Locations, loc)
	return loc
}

func (b *builder) declareFunction(fn *config.Function) {
	f := &Function{
		Name:   fn.Name,
		Result: fn.Result,
		Scope:  newScope(fn.Name, b.src.Globals, fn.Params, fn.Locals),
	}
	for _, p := range fn.Params {
		f.Params = append(f.Params, Local(fn.Name, p))
	}
	for _, l := range fn.Locals {
		f.Locals = append(f.Locals, Local(fn.Name, l))
	}
	if fn.Entry == "" || fn.Exit == "" {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing entry or exit",
			Detail:   "Function \"" + fn.Name + "\" must name both an entry and an exit location.",
			Subject:  fn.Range.Ptr(),
		})
	}
	f.Entry = b.location(fn.Name, fn.Entry)
	f.Entry.FunctionEntry = true
	f.Exit = b.location(fn.Name, fn.Exit)
	f.Exit.FunctionExit = true
	for _, label := range fn.Errors {
		b.location(fn.Name, label).Error = true
	}
	if fn.Result != nil {
		_, diags := f.Scope.Variables(fn.Result)
		b.diags = append(b.diags, diags...)
	}
	b.prog.Functions[fn.Name] = f
}

func (b *builder) buildEdges(fn *config.Function) {
	f := b.prog.Functions[fn.Name]
	for _, e := range fn.Edges {
		from := b.location(fn.Name, e.From)
		to := b.location(fn.Name, e.To)
		switch e.Kind {
		case config.EdgePlain:
			edge := &Edge{Kind: BlankEdge, From: from, To: to, Scope: f.Scope}
			var parts []string
			for _, a := range e.Assign {
				target, ok := f.Scope.Resolve(a.Name)
				if !ok {
					b.undeclared(fn.Name, a.Name, e.Range)
					continue
				}
				edge.Kind = StatementEdge
				edge.Assignments = append(edge.Assignments, Assignment{Target: target, Expr: a.Expr, Source: a.Source})
				parts = append(parts, a.Name+" = "+a.Source)
			}
			edge.Text = strings.Join(parts, "; ")
			b.addEdge(edge)
		case config.EdgeAssume:
			edge := &Edge{Kind: AssumeEdge, From: from, To: to, Scope: f.Scope, Condition: e.Condition, Truth: e.Truth}
			if e.Truth {
				edge.Text = "[" + e.ConditionSource + "]"
			} else {
				edge.Text = "[!(" + e.ConditionSource + ")]"
			}
			b.addEdge(edge)
		case config.EdgeCall:
			b.buildCall(f, from, to, e)
		}
	}
}

func (b *builder) buildCall(caller *Function, from, to *Location, e *config.Edge) {
	callee, ok := b.prog.Functions[e.Callee]
	if !ok {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown function",
			Detail:   "Function \"" + caller.Name + "\" calls undefined function \"" + e.Callee + "\".",
			Subject:  e.Range.Ptr(),
		})
		return
	}

	call := &Edge{Kind: CallEdge, From: from, To: callee.Entry, Scope: caller.Scope, Callee: callee, ReturnSite: to}
	var args []string
	for _, a := range e.Args {
		target, ok := callee.Scope.Resolve(a.Name)
		if !ok || target.Function() != callee.Name {
			b.diags = append(b.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown parameter",
				Detail:   "Function \"" + callee.Name + "\" has no parameter \"" + a.Name + "\".",
				Subject:  e.Range.Ptr(),
			})
			continue
		}
		call.Assignments = append(call.Assignments, Assignment{Target: target, Expr: a.Expr, Source: a.Source})
		args = append(args, a.Name+" = "+a.Source)
	}
	call.Text = e.Callee + "(" + strings.Join(args, ", ") + ")"
	b.addEdge(call)

	ret := &Edge{Kind: ReturnEdge, From: callee.Exit, To: to, Scope: callee.Scope, Callee: callee, ReturnSite: to}
	ret.Text = "return from " + e.Callee
	if e.Result != "" {
		target, ok := caller.Scope.Resolve(e.Result)
		switch {
		case !ok:
			b.undeclared(caller.Name, e.Result, e.Range)
		case callee.Result == nil:
			b.diags = append(b.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Function has no result",
				Detail:   "Function \"" + callee.Name + "\" does not declare a result, but its caller assigns one to \"" + e.Result + "\".",
				Subject:  e.Range.Ptr(),
			})
		default:
			ret.Assignments = []Assignment{{Target: target, Expr: callee.Result, Source: "result"}}
			ret.Text = e.Result + " = " + ret.Text
		}
	}
	b.addEdge(ret)
}

func (b *builder) undeclared(function, name string, rng hcl.Range) {
	b.diags = append(b.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Undeclared variable",
		Detail:   "Variable \"" + name + "\" is not declared in function \"" + function + "\".",
		Subject:  rng.Ptr(),
	})
}

// addEdge wires e into its locations and precomputes its use/def sets.
func (b *builder) addEdge(e *Edge) {
	e.ID = b.nextEdg
	b.nextEdg++

	seen := make(map[MemoryLocation]struct{})
	addUses := func(expr hcl.Expression) {
		vars, diags := e.Scope.Variables(expr)
		b.diags = append(b.diags, diags...)
		for _, v := range vars {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				e.uses = append(e.uses, v)
			}
		}
	}
	if e.Condition != nil {
		addUses(e.Condition)
	}
	for _, a := range e.Assignments {
		addUses(a.Expr)
		e.defs = append(e.defs, a.Target)
	}

	e.From.Leaving = append(e.From.Leaving, e)
	e.To.Entering = append(e.To.Entering, e)
	b.prog.Edges = append(b.prog.Edges, e)
}

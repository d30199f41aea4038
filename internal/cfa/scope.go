// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements name resolution for edge expressions.
//

package cfa

import (
	"github.com/hashicorp/hcl/v2"
)

// Scope maps bare variable names to memory locations for one function.
type Scope struct {
	Function string
	names    map[string]MemoryLocation
}

func newScope(function string, globals []string, params, locals []string) *Scope {
	s := &Scope{Function: function, names: make(map[string]MemoryLocation)}
	for _, g := range globals {
		s.names[g] = Global(g)
	}
	for _, p := range params {
		s.names[p] = Local(function, p)
	}
	for _, l := range locals {
		s.names[l] = Local(function, l)
	}
	return s
}

// Resolve returns the memory location for a variable name.
func (s *Scope) Resolve(name string) (MemoryLocation, bool) {
	m, ok := s.names[name]
	return m, ok
}

// Names returns the name table. Callers must not modify it.
func (s *Scope) Names() map[string]MemoryLocation { return s.names }

// Variables resolves every variable referenced by expr.
func (s *Scope) Variables(expr hcl.Expression) ([]MemoryLocation, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}
	var out []MemoryLocation
	var diags hcl.Diagnostics
	seen := make(map[MemoryLocation]struct{})
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		m, ok := s.Resolve(name)
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Undeclared variable",
				Detail:   "Variable \"" + name + "\" is not a parameter, local or global of function \"" + s.Function + "\".",
				Subject:  traversal.SourceRange().Ptr(),
			})
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, diags
}

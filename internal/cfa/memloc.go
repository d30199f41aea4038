// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines memory locations, the unit of precision and of
// interpolant content.
//

package cfa

import (
	"sort"
	"strings"
)

const scopeSeparator = "::"

// MemoryLocation names one program variable. Function-scoped variables are
// written `fn::name`, globals just `name`.
type MemoryLocation string

// Local returns the memory location of a function-scoped variable.
func Local(function, name string) MemoryLocation {
	return MemoryLocation(function + scopeSeparator + name)
}

// Global returns the memory location of a global variable.
func Global(name string) MemoryLocation {
	return MemoryLocation(name)
}

// IsGlobal reports whether m is not function scoped.
func (m MemoryLocation) IsGlobal() bool {
	return !strings.Contains(string(m), scopeSeparator)
}

// Function returns the owning function, or "" for globals.
func (m MemoryLocation) Function() string {
	fn, _, found := strings.Cut(string(m), scopeSeparator)
	if !found {
		return ""
	}
	return fn
}

// Identifier returns the bare variable name.
func (m MemoryLocation) Identifier() string {
	_, name, found := strings.Cut(string(m), scopeSeparator)
	if !found {
		return string(m)
	}
	return name
}

func (m MemoryLocation) String() string { return string(m) }

// SortLocations sorts memory locations lexically in place.
func SortLocations(locs []MemoryLocation) {
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
}

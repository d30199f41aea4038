// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package cfa holds the control-flow automaton of the program under
// verification. Each function becomes a set of locations joined by edges:
// blank edges, statement edges carrying simultaneous assignments, assume
// edges carrying a condition and its expected truth, and call/return edge
// pairs that link a call site to the callee's entry and exit.
//
// A CFA is immutable once built. Exploration and refinement only read it, so
// edges and locations are shared by pointer between the graph, paths and
// interpolation queries.
package cfa

// Package interpolation computes interpolant sequences for infeasible
// formula sequences.
//
// Given formulas F_0..F_n and an initial interpolant I_{-1}, Manager returns
// I_0..I_{n-1} with
//
//	I_{-1} ∧ F_0     ⇒ I_0
//	I_{i-1} ∧ F_i    ⇒ I_i
//	I_{n-1} ∧ F_n    ⇒ false
//
// The proof itself is delegated to a Prover. The manager orders the queries
// according to a Strategy, caches answers in the round's session, bounds the
// query size and, when asked to, verifies the result.
package interpolation

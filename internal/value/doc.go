// Package value is an explicit-value analysis over the control-flow
// automaton. It is the reference instance of the capabilities the refinement
// engine consumes:
//
//   - Domain computes successor states by evaluating edge expressions with
//     HCL and go-cty. A variable the precision does not track, or whose value
//     is not known, evaluates to an unknown value.
//   - Checker decides whether a concrete path is feasible and reports the
//     branch directions it took.
//   - Prover derives interpolants by forgetting values from the state after
//     a path prefix for as long as the rest of the path stays infeasible.
//
// Interpolants are partial assignments. The empty assignment is `true`; a
// dedicated contradiction value is `false`.
package value

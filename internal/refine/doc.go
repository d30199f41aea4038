/*
Package refine implements one round of counterexample-guided refinement.

A round collects the targets of the reached set and checks their error paths,
shortest first. A feasible path ends refinement with a counterexample. If
every path is infeasible, the round builds an interpolation tree, computes
interpolants for its paths, and restarts exploration below the refinement
roots with a stronger precision. Nodes whose prefix is already contradictory
are cut off.

Failures are grouped into classes, see Classify. Contract violations and lack
of progress abort the analysis. Prover failures and path replay failures
degrade it.
*/
package refine

/*
Package itptree holds the interpolation tree of one refinement round.

The tree is a view of the slice of the ARG that leads to the round's targets:
every target contributes the chain of first parents up to the root. The tree
never mutates the graph. It hands out paths to interpolate, merges the
resulting interpolants by join, and answers which nodes must be refined or
cut off.

Two orders are supported:

  - TopDown walks from the root and keeps a stack of unvisited branch arms.
    A later arm starts at its branching node and reuses that node's
    interpolant as the initial interpolant.
  - BottomUp interpolates one full root-to-target path per target, always
    starting from the trivial interpolant.
*/
package itptree

/*
Package domain declares the narrow capabilities the reachability graph and the
refinement engine need from an abstract domain. The core never inspects a
concrete domain type: it holds states and precisions through these interfaces
and only asks the questions listed here.

# Capabilities

  - **State**: a node's abstract value. It knows its program location and
    whether it violates the property.
  - **Domain**: computes initial states, successors along an edge and the
    covering order between two states.
  - **Precision**: controls how coarse successor computation is. Refinement
    replaces precisions by tag, so a composite precision keeps one
    sub-precision per domain and only the matching one changes.
  - **Interpolant**: the per-node result of interpolation. It can be trivial
    (`true`), contradictory (`false`), joined with another interpolant for the
    same node, and turned into memory locations for a precision increment.
*/
package domain

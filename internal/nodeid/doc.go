// internal/nodeid/doc.go

/*
Package nodeid provides the handle type used to refer to nodes of the
abstract reachability graph.

A Ref is an arena slot index paired with the generation of that slot. Slots
are reused after a node is removed, and every reuse bumps the generation, so a
Ref held past its node's removal can be detected instead of silently
resolving to an unrelated node.

Ref.String renders `n<index>@<generation>`, e.g. `n12@3`. The zero
Ref is never handed out by a store and prints as `none`.
*/
package nodeid

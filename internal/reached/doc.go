// Package reached provides the reached-set facade: the single entry point
// through which exploration and refinement read and change the abstract
// reachability graph.
//
// # Why Reached Package Exists
//
// Three stores make up the reached set, and every refinement operation has to
// touch all of them consistently. Removing a subtree detaches nodes from the
// graph, forgets their precisions, drops them from the waitlist and re-queues
// the surviving parents, possibly with a new precision. The facade keeps those
// steps together so callers never coordinate the stores themselves.
//
// # Architecture: The Facade Pattern
//
//	┌───────────────────────────────────────────────┐
//	│                Reached Facade                 │
//	│  (explore adds and covers, refine removes,    │
//	│   re-queues and adapts precisions)            │
//	└──────┬──────────────────┬──────────────┬──────┘
//	       │                  │              │
//	       ▼                  ▼              ▼
//	 ┌────────────┐   ┌──────────────┐  ┌──────────┐
//	 │ ARG Store  │   │  Precision   │  │ Waitlist │
//	 │ (structure)│   │    Store     │  │ (order)  │
//	 └────────────┘   └──────────────┘  └──────────┘
//
// **ARG Store** (argstore.Store): nodes, tree edges and covering links.
//
// **Precision Store** (precisionstore.Store): the precision each node was, or
// will be, expanded with.
//
// **Waitlist** (waitlist.Waitlist): nodes awaiting expansion.
//
// A location index over the graph answers "which nodes sit at this program
// location" for the covering check without a full scan.
//
// # Failure Semantics
//
// Removing the root is a contract violation and returns an error wrapping
// argstore.ErrRemoveRoot. Closure walks poll the context and stop with
// shutdown.ErrInterrupted.
package reached

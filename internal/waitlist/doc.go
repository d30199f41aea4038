// Package waitlist decides which graph node is explored next.
//
// # Why Waitlist Exists
//
// Exploration and refinement both feed the same queue: exploration adds every
// new uncovered successor, refinement re-adds the surviving parents of removed
// subtrees and the nodes it uncovers. The waitlist keeps each node at most
// once and forgets nodes removed from the graph, so neither side has to know
// what the other queued.
//
// The order is fixed per run: breadth-first pops the oldest entry,
// depth-first the newest.
package waitlist

package waitlist

import (
	"fmt"

	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// Order selects how Pop chooses among waiting nodes.
type Order int

const (
	// DFS pops the most recently added node.
	DFS Order = iota
	// BFS pops the least recently added node.
	BFS
)

// ParseOrder converts "bfs" or "dfs".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "bfs":
		return BFS, nil
	case "dfs":
		return DFS, nil
	default:
		return DFS, fmt.Errorf("unknown waitlist order %q", s)
	}
}

func (o Order) String() string {
	if o == BFS {
		return "bfs"
	}
	return "dfs"
}

// Waitlist is a set of nodes awaiting exploration. It is not safe for
// concurrent use; the reached set serialises access.
type Waitlist struct {
	order   Order
	entries []nodeid.Ref
	head    int
	members map[nodeid.Ref]struct{}
}

// New creates an empty waitlist.
func New(order Order) *Waitlist {
	return &Waitlist{order: order, members: make(map[nodeid.Ref]struct{})}
}

// Add enqueues ref unless it is already waiting.
func (w *Waitlist) Add(ref nodeid.Ref) {
	if _, ok := w.members[ref]; ok {
		return
	}
	w.members[ref] = struct{}{}
	w.entries = append(w.entries, ref)
}

// Remove drops ref if it is waiting.
func (w *Waitlist) Remove(ref nodeid.Ref) {
	delete(w.members, ref)
}

// Contains reports whether ref is waiting.
func (w *Waitlist) Contains(ref nodeid.Ref) bool {
	_, ok := w.members[ref]
	return ok
}

// Len returns the number of waiting nodes.
func (w *Waitlist) Len() int { return len(w.members) }

// IsEmpty reports whether no node is waiting.
func (w *Waitlist) IsEmpty() bool { return len(w.members) == 0 }

// Pop removes and returns the next node.
func (w *Waitlist) Pop() (nodeid.Ref, bool) {
	for len(w.entries) > w.head {
		var ref nodeid.Ref
		if w.order == BFS {
			ref = w.entries[w.head]
			w.head++
		} else {
			ref = w.entries[len(w.entries)-1]
			w.entries = w.entries[:len(w.entries)-1]
		}
		if _, ok := w.members[ref]; ok {
			delete(w.members, ref)
			w.compact()
			return ref, true
		}
	}
	w.compact()
	return nodeid.None, false
}

// compact drops consumed entries once they dominate the backing slice.
func (w *Waitlist) compact() {
	if w.head > 64 && w.head*2 > len(w.entries) {
		w.entries = append([]nodeid.Ref(nil), w.entries[w.head:]...)
		w.head = 0
	}
	if len(w.members) == 0 {
		w.entries = w.entries[:0]
		w.head = 0
	}
}

// Snapshot returns the waiting nodes in pop order.
func (w *Waitlist) Snapshot() []nodeid.Ref {
	out := make([]nodeid.Ref, 0, len(w.members))
	seen := make(map[nodeid.Ref]struct{})
	live := func(ref nodeid.Ref) {
		if _, ok := w.members[ref]; !ok {
			return
		}
		if _, dup := seen[ref]; dup {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	if w.order == BFS {
		for i := w.head; i < len(w.entries); i++ {
			live(w.entries[i])
		}
	} else {
		for i := len(w.entries) - 1; i >= w.head; i-- {
			live(w.entries[i])
		}
	}
	return out
}

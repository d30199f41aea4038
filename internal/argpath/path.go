package argpath

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

// Element is one step of a path. Edge leads from Node to the next element;
// on the last element it is only informational and may be nil.
type Element struct {
	Node  nodeid.Ref
	ID    int
	State domain.State
	Edge  *cfa.Edge
}

// Path is an ordered sequence of elements from a root to some node.
type Path []Element

// First returns the first element. The path must not be empty.
func (p Path) First() Element { return p[0] }

// Last returns the last element. The path must not be empty.
func (p Path) Last() Element { return p[len(p)-1] }

// Nodes returns the node handles in order.
func (p Path) Nodes() []nodeid.Ref {
	out := make([]nodeid.Ref, len(p))
	for i, e := range p {
		out[i] = e.Node
	}
	return out
}

// Edges returns the edges that connect consecutive elements. The last
// element's edge is not included.
func (p Path) Edges() []*cfa.Edge {
	if len(p) == 0 {
		return nil
	}
	out := make([]*cfa.Edge, 0, len(p)-1)
	for _, e := range p[:len(p)-1] {
		out = append(out, e.Edge)
	}
	return out
}

// Directions returns, for every assume edge on the path, the truth value
// taken at its source node keyed by node ID.
func (p Path) Directions() map[int]bool {
	dirs := make(map[int]bool)
	for _, e := range p[:max(len(p)-1, 0)] {
		if e.Edge != nil && e.Edge.Kind == cfa.AssumeEdge {
			dirs[e.ID] = e.Edge.Truth
		}
	}
	return dirs
}

// Hash identifies the program path taken, independent of node identity, so
// that paths found in different refinement rounds can be compared.
func (p Path) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, e := range p.Edges() {
		id := int64(-1)
		if e != nil {
			id = int64(e.ID)
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		_, _ = d.Write(buf[:])
	}
	if len(p) > 0 && p.Last().State != nil && p.Last().State.Location() != nil {
		_, _ = d.WriteString(p.Last().State.Location().String())
	}
	return d.Sum64()
}

// Prefix returns the first n elements. The last element keeps its edge.
func (p Path) Prefix(n int) Path { return p[:n] }

func (p Path) String() string {
	var b strings.Builder
	for i, e := range p {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(e.Node.String())
		if e.State != nil && e.State.Location() != nil {
			b.WriteString("(" + e.State.Location().String() + ")")
		}
		if i < len(p)-1 && e.Edge != nil {
			b.WriteString(" {" + e.Edge.Text + "}")
		}
	}
	return b.String()
}

package testutil

import (
	"testing"

	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/inmemoryarg"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/stretchr/testify/require"
)

// ARG builds graphs by name for tests.
//
//	g := testutil.NewARG(t)
//	g.Root("R")
//	g.Child("R", "A", testutil.Blank(1))
//	g.Target("A", "T", testutil.Blank(2))
type ARG struct {
	t     *testing.T
	Store *inmemoryarg.Store
	refs  map[string]nodeid.Ref
	names map[nodeid.Ref]string
}

// NewARG returns an empty builder over a fresh in-memory store.
func NewARG(t *testing.T) *ARG {
	return &ARG{
		t:     t,
		Store: inmemoryarg.New(),
		refs:  make(map[string]nodeid.Ref),
		names: make(map[nodeid.Ref]string),
	}
}

func (g *ARG) add(name string, target bool, parents []argstore.ParentLink) nodeid.Ref {
	g.t.Helper()
	st := &State{Name: name, Target: target, Loc: &cfa.Location{Label: name}}
	ref, err := g.Store.AddNode(st, parents...)
	require.NoError(g.t, err)
	g.refs[name] = ref
	g.names[ref] = name
	return ref
}

// Root adds the root node.
func (g *ARG) Root(name string) nodeid.Ref {
	g.t.Helper()
	return g.add(name, false, nil)
}

// Child adds a non-target node below parent.
func (g *ARG) Child(parent, name string, edge *cfa.Edge) nodeid.Ref {
	g.t.Helper()
	return g.add(name, false, []argstore.ParentLink{{Ref: g.Ref(parent), Edge: edge}})
}

// Target adds a target node below parent.
func (g *ARG) Target(parent, name string, edge *cfa.Edge) nodeid.Ref {
	g.t.Helper()
	return g.add(name, true, []argstore.ParentLink{{Ref: g.Ref(parent), Edge: edge}})
}

// Cover makes by the coverer of name.
func (g *ARG) Cover(name, by string) {
	g.t.Helper()
	require.NoError(g.t, g.Store.Cover(g.Ref(name), g.Ref(by)))
}

// Ref returns the handle of a named node.
func (g *ARG) Ref(name string) nodeid.Ref {
	g.t.Helper()
	ref, ok := g.refs[name]
	require.True(g.t, ok, "unknown node %q", name)
	return ref
}

// Refs returns the handles of several named nodes.
func (g *ARG) Refs(names ...string) []nodeid.Ref {
	g.t.Helper()
	out := make([]nodeid.Ref, len(names))
	for i, n := range names {
		out[i] = g.Ref(n)
	}
	return out
}

// Names maps handles back to names, keeping their order. Unknown
// handles map to their String form.
func (g *ARG) Names(refs []nodeid.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		if n, ok := g.names[r]; ok {
			out[i] = n
		} else {
			out[i] = r.String()
		}
	}
	return out
}

// Live returns the names of all live nodes in ID order.
func (g *ARG) Live() []string {
	return g.Names(g.Store.All())
}

// Blank returns a blank edge with the given ID.
func Blank(id int) *cfa.Edge {
	return &cfa.Edge{ID: id, Kind: cfa.BlankEdge, Text: "blank"}
}

// Assume returns an assume edge with the given ID and truth value.
func Assume(id int, truth bool) *cfa.Edge {
	text := "[c]"
	if !truth {
		text = "[!(c)]"
	}
	return &cfa.Edge{ID: id, Kind: cfa.AssumeEdge, Truth: truth, Text: text}
}

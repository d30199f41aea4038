package node

import (
	"testing"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/stretchr/testify/assert"
)

func TestNode_Links(t *testing.T) {
	// --- Arrange ---
	a, b, c := nodeid.New(1, 1), nodeid.New(2, 1), nodeid.New(3, 1)
	ea, eb := &cfa.Edge{ID: 1}, &cfa.Edge{ID: 2}
	n := &Node{
		Ref:       nodeid.New(0, 1),
		Parents:   []nodeid.Ref{c},
		Children:  []Child{{Ref: a, Edge: ea}, {Ref: b, Edge: eb}},
		CoveredBy: []nodeid.Ref{a, b},
	}

	// --- Act ---
	clone := n.Clone()
	n.RemoveChild(a)
	n.RemoveParent(c)
	n.RemoveCovered(b)

	// --- Assert ---
	assert.Equal(t, eb, n.EdgeTo(b))
	assert.Nil(t, n.EdgeTo(a))
	assert.Empty(t, n.Parents)
	assert.Equal(t, []nodeid.Ref{a}, n.CoveredBy)

	assert.Equal(t, ea, clone.EdgeTo(a), "clone must not share slices")
	assert.Equal(t, []nodeid.Ref{c}, clone.Parents)
	assert.Len(t, clone.CoveredBy, 2)
}

func TestNode_IsCovered(t *testing.T) {
	n := &Node{}
	assert.False(t, n.IsCovered())
	n.Covering = nodeid.New(4, 2)
	assert.True(t, n.IsCovered())
}

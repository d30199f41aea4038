package hclutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	p := hclparse.NewParser()
	f, diags := p.ParseHCL([]byte("x = i + 1 < n\n"), "a.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	attrs, diags := f.Body.JustAttributes()
	require.False(t, diags.HasErrors())

	assert.Equal(t, "i + 1 < n", Source(attrs["x"].Expr, p.Files()))
	assert.True(t, IsExprDefined(attrs["x"].Expr))
	assert.Equal(t, "a.hcl", BodyRange(f.Body).Filename)
}

func TestSource_WithoutFile(t *testing.T) {
	expr, diags := hclsyntax.ParseExpression([]byte("counter"), "b.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors())

	assert.Equal(t, "counter", Source(expr, nil))
	assert.False(t, IsExprDefined(nil))
}

func TestFindUniqueBlock(t *testing.T) {
	first := &hcl.Block{Type: "analysis", DefRange: hcl.Range{Filename: "a.hcl", Start: hcl.Pos{Line: 3, Column: 1}}}
	second := &hcl.Block{Type: "analysis", DefRange: hcl.Range{Filename: "b.hcl", Start: hcl.Pos{Line: 1, Column: 1}}}
	blocks := hcl.Blocks{first, {Type: "other"}, second}

	found, diags := FindUniqueBlock(blocks, "analysis")
	assert.Same(t, first, found)
	require.Len(t, diags, 1)
	assert.Equal(t, `Duplicate "analysis" block`, diags[0].Summary)
	assert.Contains(t, diags[0].Detail, "a.hcl:3")
	assert.Equal(t, "b.hcl", diags[0].Subject.Filename)

	found, diags = FindUniqueBlock(blocks[1:2], "analysis")
	assert.Nil(t, found)
	assert.False(t, diags.HasErrors())
}

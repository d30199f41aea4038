package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// IsExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func IsExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// BodyRange returns the source range of a block body.
func BodyRange(body hcl.Body) hcl.Range {
	if b, ok := body.(*hclsyntax.Body); ok {
		return b.SrcRange
	}
	if body == nil {
		return hcl.Range{}
	}
	return body.MissingItemRange()
}

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// Source returns the text of expr as written, looked up in files by the
// expression's file name. It falls back to the traversal key for plain
// variable references and to "" otherwise.
func Source(expr hcl.Expression, files map[string]*hcl.File) string {
	r := expr.Range()
	if f, ok := files[r.Filename]; ok && f != nil && r.End.Byte <= len(f.Bytes) {
		return string(r.SliceBytes(f.Bytes))
	}
	if t, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		return TraversalKey(t)
	}
	return ""
}

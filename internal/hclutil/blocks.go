// Package hclutil holds small helpers over hcl/v2 shared by the loader.
package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock returns the first block of type typ, or nil when there is
// none. Blocks are usually gathered from several files, so every further
// block of that type gets an error diagnostic pointing back at the first.
func FindUniqueBlock(blocks hcl.Blocks, typ string) (*hcl.Block, hcl.Diagnostics) {
	var first *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != typ {
			continue
		}
		if first == nil {
			first = block
			continue
		}
		diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("Duplicate %q block", typ),
			Detail:   fmt.Sprintf("Only one %q block is allowed; the first one is declared at %s.", typ, first.DefRange),
			Subject:  block.DefRange.Ptr(),
		})
	}

	return first, diags
}

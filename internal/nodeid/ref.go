// internal/nodeid/ref.go
package nodeid

import (
	"fmt"
	"sort"
	"strconv"
)

// String serializes the Ref into its canonical representation.
func (r Ref) String() string {
	if r.IsZero() {
		return "none"
	}
	return "n" + strconv.FormatUint(uint64(r.Index), 10) + "@" + strconv.FormatUint(uint64(r.Gen), 10)
}

// Less orders Refs by slot index, then generation. Used to make iteration
// over node sets deterministic.
func (r Ref) Less(other Ref) bool {
	if r.Index != other.Index {
		return r.Index < other.Index
	}
	return r.Gen < other.Gen
}

// Sort sorts refs in place by Less.
func Sort(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}

// GoString makes Refs readable in testify diffs.
func (r Ref) GoString() string {
	return fmt.Sprintf("nodeid.Ref(%s)", r.String())
}

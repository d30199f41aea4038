// internal/nodeid/types.go
package nodeid

// Ref is a generation-checked handle to an arena slot.
type Ref struct {
	Index uint32
	Gen   uint32 // 0 is reserved for the zero Ref.
}

// None is the zero Ref. It never refers to a live node.
var None = Ref{}

// New creates a Ref for the given slot and generation.
func New(index, gen uint32) Ref {
	return Ref{Index: index, Gen: gen}
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

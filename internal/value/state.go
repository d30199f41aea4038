package value

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/zclconf/go-cty/cty"
)

// State is an abstract value state: the program location, the known values
// of tracked memory locations and the return sites of pending calls.
// States are immutable once handed out.
type State struct {
	loc    *cfa.Location
	values map[cfa.MemoryLocation]cty.Value
	// stack holds return sites, innermost last.
	stack []*cfa.Location
}

// NewState returns a state at loc with nothing known.
func NewState(loc *cfa.Location) *State {
	return &State{loc: loc, values: make(map[cfa.MemoryLocation]cty.Value)}
}

func (s *State) Location() *cfa.Location { return s.loc }

func (s *State) IsTarget() bool { return s.loc != nil && s.loc.Error }

// Value returns the known value of m.
func (s *State) Value(m cfa.MemoryLocation) (cty.Value, bool) {
	v, ok := s.values[m]
	return v, ok
}

// Size returns the number of known values.
func (s *State) Size() int { return len(s.values) }

// Tracked returns the memory locations with a known value, sorted.
func (s *State) Tracked() []cfa.MemoryLocation {
	out := make([]cfa.MemoryLocation, 0, len(s.values))
	for m := range s.values {
		out = append(out, m)
	}
	cfa.SortLocations(out)
	return out
}

// Interpolant returns the assignment part of s.
func (s *State) Interpolant() Interpolant { return NewInterpolant(s.values) }

// Strengthen conjoins s with itp. It reports false when the conjunction is
// unsatisfiable.
func (s *State) Strengthen(itp Interpolant) (domain.State, bool) {
	if itp.IsFalse() {
		return nil, false
	}
	out := s.clone()
	for m, v := range itp.values {
		if w, ok := out.values[m]; ok && !w.RawEquals(v) {
			return nil, false
		}
		out.values[m] = v
	}
	return out, true
}

// Equal reports whether both states are at the same location with the same
// call stack and values.
func (s *State) Equal(o *State) bool {
	if s.loc != o.loc || !sameStack(s.stack, o.stack) || len(s.values) != len(o.values) {
		return false
	}
	for m, v := range s.values {
		if w, ok := o.values[m]; !ok || !v.RawEquals(w) {
			return false
		}
	}
	return true
}

func (s *State) clone() *State {
	out := &State{
		loc:    s.loc,
		values: make(map[cfa.MemoryLocation]cty.Value, len(s.values)),
		stack:  append([]*cfa.Location(nil), s.stack...),
	}
	for m, v := range s.values {
		out.values[m] = v
	}
	return out
}

// forget drops the value of m and returns it.
func (s *State) forget(m cfa.MemoryLocation) (cty.Value, bool) {
	v, ok := s.values[m]
	delete(s.values, m)
	return v, ok
}

func (s *State) assign(m cfa.MemoryLocation, v cty.Value) {
	if storable(v) {
		s.values[m] = v
	} else {
		delete(s.values, m)
	}
}

// dropFunction forgets every variable scoped to function.
func (s *State) dropFunction(function string) {
	for m := range s.values {
		if m.Function() == function {
			delete(s.values, m)
		}
	}
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteString(s.loc.String())
	b.WriteString(" ")
	b.WriteString(formatValues(s.values))
	if len(s.stack) > 0 {
		sites := make([]string, len(s.stack))
		for i, l := range s.stack {
			sites[i] = l.String()
		}
		b.WriteString(" stack=[" + strings.Join(sites, " ") + "]")
	}
	return b.String()
}

func sameStack(a, b []*cfa.Location) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// storable reports whether v can be kept as a known value.
func storable(v cty.Value) bool {
	return v != cty.NilVal && v.IsWhollyKnown() && !v.IsNull()
}

func formatValue(v cty.Value) string {
	return string(hclwrite.TokensForValue(v).Bytes())
}

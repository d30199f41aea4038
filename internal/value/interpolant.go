package value

import (
	"sort"
	"strings"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/zclconf/go-cty/cty"
)

// Interpolant is a partial assignment of memory locations to known values,
// or the contradiction. The zero value is the trivial interpolant.
type Interpolant struct {
	values        map[cfa.MemoryLocation]cty.Value
	contradiction bool
}

// True returns the trivial interpolant.
func True() Interpolant { return Interpolant{} }

// False returns the contradiction.
func False() Interpolant { return Interpolant{contradiction: true} }

// NewInterpolant returns the interpolant asserting values. Unknown and null
// values are skipped.
func NewInterpolant(values map[cfa.MemoryLocation]cty.Value) Interpolant {
	itp := Interpolant{values: make(map[cfa.MemoryLocation]cty.Value, len(values))}
	for m, v := range values {
		if storable(v) {
			itp.values[m] = v
		}
	}
	return itp
}

func (i Interpolant) IsTrivial() bool { return !i.contradiction && len(i.values) == 0 }

func (i Interpolant) IsFalse() bool { return i.contradiction }

// Join keeps the assignments both sides agree on. The contradiction is the
// identity.
func (i Interpolant) Join(other Interpolant) Interpolant {
	switch {
	case i.contradiction:
		return other
	case other.contradiction:
		return i
	}
	out := Interpolant{values: make(map[cfa.MemoryLocation]cty.Value)}
	for m, v := range i.values {
		if w, ok := other.values[m]; ok && v.RawEquals(w) {
			out.values[m] = v
		}
	}
	return out
}

// MemoryLocations returns the constrained memory locations, sorted.
func (i Interpolant) MemoryLocations() []cfa.MemoryLocation {
	out := make([]cfa.MemoryLocation, 0, len(i.values))
	for m := range i.values {
		out = append(out, m)
	}
	cfa.SortLocations(out)
	return out
}

// Value returns the value asserted for m.
func (i Interpolant) Value(m cfa.MemoryLocation) (cty.Value, bool) {
	v, ok := i.values[m]
	return v, ok
}

// Size returns the number of assignments.
func (i Interpolant) Size() int { return len(i.values) }

// holdsIn reports whether every assignment of i is present in s.
func (i Interpolant) holdsIn(s *State) bool {
	if i.contradiction {
		return false
	}
	for m, v := range i.values {
		w, ok := s.values[m]
		if !ok || !v.RawEquals(w) {
			return false
		}
	}
	return true
}

// state returns a location-less state asserting i.
func (i Interpolant) state() *State {
	s := &State{values: make(map[cfa.MemoryLocation]cty.Value, len(i.values))}
	for m, v := range i.values {
		s.values[m] = v
	}
	return s
}

func (i Interpolant) String() string {
	if i.contradiction {
		return "false"
	}
	if len(i.values) == 0 {
		return "true"
	}
	return formatValues(i.values)
}

func formatValues(values map[cfa.MemoryLocation]cty.Value) string {
	keys := make([]string, 0, len(values))
	for m := range values {
		keys = append(keys, string(m))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatValue(values[cfa.MemoryLocation(k)])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

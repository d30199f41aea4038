package domain

import (
	"sort"
	"strings"

	"github.com/specialistvlad/argcegar/internal/cfa"
)

// Increment is a location-keyed set of memory locations to start tracking.
type Increment struct {
	byLocation map[*cfa.Location]map[cfa.MemoryLocation]struct{}
}

// NewIncrement returns an empty increment.
func NewIncrement() *Increment {
	return &Increment{byLocation: make(map[*cfa.Location]map[cfa.MemoryLocation]struct{})}
}

// Add records memory locations for loc. Adding an existing pair is a no-op.
func (inc *Increment) Add(loc *cfa.Location, memlocs ...cfa.MemoryLocation) {
	if len(memlocs) == 0 {
		return
	}
	set, ok := inc.byLocation[loc]
	if !ok {
		set = make(map[cfa.MemoryLocation]struct{})
		inc.byLocation[loc] = set
	}
	for _, m := range memlocs {
		set[m] = struct{}{}
	}
}

// Union adds every pair of other to inc.
func (inc *Increment) Union(other *Increment) {
	if other == nil {
		return
	}
	for loc, set := range other.byLocation {
		for m := range set {
			inc.Add(loc, m)
		}
	}
}

// Size returns the number of (location, memory location) pairs.
func (inc *Increment) Size() int {
	if inc == nil {
		return 0
	}
	n := 0
	for _, set := range inc.byLocation {
		n += len(set)
	}
	return n
}

// IsEmpty reports whether inc contains no pairs.
func (inc *Increment) IsEmpty() bool { return inc.Size() == 0 }

// Locations returns the program locations in inc, ordered by ID.
func (inc *Increment) Locations() []*cfa.Location {
	locs := make([]*cfa.Location, 0, len(inc.byLocation))
	for loc := range inc.byLocation {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].ID < locs[j].ID })
	return locs
}

// At returns the sorted memory locations recorded for loc.
func (inc *Increment) At(loc *cfa.Location) []cfa.MemoryLocation {
	set := inc.byLocation[loc]
	out := make([]cfa.MemoryLocation, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	cfa.SortLocations(out)
	return out
}

// All returns every memory location in inc regardless of location, sorted.
func (inc *Increment) All() []cfa.MemoryLocation {
	seen := make(map[cfa.MemoryLocation]struct{})
	for _, set := range inc.byLocation {
		for m := range set {
			seen[m] = struct{}{}
		}
	}
	out := make([]cfa.MemoryLocation, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	cfa.SortLocations(out)
	return out
}

func (inc *Increment) String() string {
	var parts []string
	for _, loc := range inc.Locations() {
		var names []string
		for _, m := range inc.At(loc) {
			names = append(names, string(m))
		}
		parts = append(parts, loc.String()+"{"+strings.Join(names, ",")+"}")
	}
	return "[" + strings.Join(parts, " ") + "]"
}

package value

import (
	"strings"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/domain"
)

// Tag identifies value precisions inside composites.
const Tag = "value"

type memSet map[cfa.MemoryLocation]struct{}

// Precision decides which memory locations the analysis tracks. With
// location scope every program location has its own set; with global scope
// one set applies everywhere. Precisions are immutable.
type Precision struct {
	scope      string
	global     memSet
	byLocation map[*cfa.Location]memSet
}

// NewPrecision returns an empty precision with the given scope, one of
// config.ScopeLocation or config.ScopeGlobal.
func NewPrecision(scope string) *Precision {
	return &Precision{scope: scope, global: memSet{}, byLocation: map[*cfa.Location]memSet{}}
}

func (p *Precision) Tag() string { return Tag }

// Tracks reports whether m is tracked at loc.
func (p *Precision) Tracks(loc *cfa.Location, m cfa.MemoryLocation) bool {
	if _, ok := p.global[m]; ok {
		return true
	}
	_, ok := p.byLocation[loc][m]
	return ok
}

// Size returns the number of tracked (location, memory location) pairs.
func (p *Precision) Size() int {
	n := len(p.global)
	for _, set := range p.byLocation {
		n += len(set)
	}
	return n
}

func (p *Precision) clone() *Precision {
	out := NewPrecision(p.scope)
	for m := range p.global {
		out.global[m] = struct{}{}
	}
	for loc, set := range p.byLocation {
		cp := make(memSet, len(set))
		for m := range set {
			cp[m] = struct{}{}
		}
		out.byLocation[loc] = cp
	}
	return out
}

func (p *Precision) add(loc *cfa.Location, m cfa.MemoryLocation) {
	if p.scope == config.ScopeGlobal {
		p.global[m] = struct{}{}
		return
	}
	set, ok := p.byLocation[loc]
	if !ok {
		set = memSet{}
		p.byLocation[loc] = set
	}
	set[m] = struct{}{}
}

// WithIncrement returns a precision that also tracks inc.
func (p *Precision) WithIncrement(inc *domain.Increment) domain.Precision {
	out := p.clone()
	for _, loc := range inc.Locations() {
		for _, m := range inc.At(loc) {
			out.add(loc, m)
		}
	}
	return out
}

// Join returns a precision tracking what either side tracks. Non-value
// precisions are ignored.
func (p *Precision) Join(other domain.Precision) domain.Precision {
	o, ok := domain.MatchingSubcomponent(other, Tag).(*Precision)
	if !ok || o == nil {
		return p
	}
	out := p.clone()
	for m := range o.global {
		out.global[m] = struct{}{}
	}
	for loc, set := range o.byLocation {
		for m := range set {
			out.add(loc, m)
		}
	}
	return out
}

func (p *Precision) String() string {
	var parts []string
	if len(p.global) > 0 {
		parts = append(parts, "*"+setString(p.global))
	}
	locs := make([]*cfa.Location, 0, len(p.byLocation))
	for loc := range p.byLocation {
		locs = append(locs, loc)
	}
	sortLocations(locs)
	for _, loc := range locs {
		parts = append(parts, loc.String()+setString(p.byLocation[loc]))
	}
	return "value[" + strings.Join(parts, " ") + "]"
}

func setString(set memSet) string {
	ms := make([]cfa.MemoryLocation, 0, len(set))
	for m := range set {
		ms = append(ms, m)
	}
	cfa.SortLocations(ms)
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return "{" + strings.Join(names, ",") + "}"
}

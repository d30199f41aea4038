package value

import (
	"context"
	"fmt"

	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/domain"
)

// Domain is the explicit-value domain.
type Domain struct {
	scope string
}

var _ domain.Domain = (*Domain)(nil)

// NewDomain returns a domain whose initial precision has the given scope.
func NewDomain(scope string) *Domain {
	return &Domain{scope: scope}
}

func (d *Domain) Initial(entry *cfa.Location) domain.State { return NewState(entry) }

// InitialPrecision tracks nothing.
func (d *Domain) InitialPrecision() domain.Precision { return NewPrecision(d.scope) }

func (d *Domain) Successors(_ context.Context, s domain.State, p domain.Precision, e *cfa.Edge) ([]domain.State, error) {
	vs, ok := s.(*State)
	if !ok {
		return nil, fmt.Errorf("value domain: unexpected state type %T", s)
	}
	vp, ok := domain.MatchingSubcomponent(p, Tag).(*Precision)
	if !ok {
		return nil, fmt.Errorf("value domain: no value precision in %v", p)
	}
	next, ok, err := transfer(vs, e, mode{tracks: vp.Tracks, matchReturns: true})
	if err != nil || !ok {
		return nil, err
	}
	return []domain.State{next}, nil
}

// Covers reports whether covering is at the same location and call stack and
// every value it knows is also known, equally, in covered.
func (d *Domain) Covers(covering, covered domain.State) bool {
	a, ok1 := covering.(*State)
	b, ok2 := covered.(*State)
	if !ok1 || !ok2 || a.loc != b.loc || !sameStack(a.stack, b.stack) {
		return false
	}
	return NewInterpolant(a.values).holdsIn(b)
}

package refine

import (
	"fmt"
	"time"

	"github.com/specialistvlad/argcegar/internal/itptree"
)

// Restart selects what happens below a refinement root.
type Restart int

const (
	// RestartRoot removes the subtree of each refinement root and re-explores
	// it with the refined precision.
	RestartRoot Restart = iota
	// RestartStrengthen keeps the graph, conjoins interpolants into the
	// states that carry them and replaces every precision.
	RestartStrengthen
)

// ParseRestart converts "root" or "strengthen".
func ParseRestart(s string) (Restart, error) {
	switch s {
	case "root":
		return RestartRoot, nil
	case "strengthen":
		return RestartStrengthen, nil
	default:
		return RestartRoot, fmt.Errorf("unknown restart strategy %q", s)
	}
}

func (r Restart) String() string {
	if r == RestartStrengthen {
		return "strengthen"
	}
	return "root"
}

// Options configure a Refiner.
type Options struct {
	Order   itptree.Order
	Restart Restart
	// RoundTimeout bounds the interpolation of one round. Zero means none.
	RoundTimeout time.Duration
	// Tag names the sub-precision refinement replaces.
	Tag string
}

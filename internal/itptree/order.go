package itptree

import "fmt"

// Order selects how the tree hands out paths.
type Order int

const (
	TopDown Order = iota
	BottomUp
)

// ParseOrder converts "top-down" or "bottom-up".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "top-down":
		return TopDown, nil
	case "bottom-up":
		return BottomUp, nil
	default:
		return TopDown, fmt.Errorf("unknown interpolation order %q", s)
	}
}

func (o Order) String() string {
	if o == BottomUp {
		return "bottom-up"
	}
	return "top-down"
}

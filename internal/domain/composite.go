package domain

import "strings"

// CompositeTag is the tag of a Composite precision.
const CompositeTag = "composite"

// Composite bundles one sub-precision per domain.
type Composite struct {
	parts []Precision
}

// NewComposite returns a composite of the given sub-precisions.
func NewComposite(parts ...Precision) *Composite {
	return &Composite{parts: append([]Precision(nil), parts...)}
}

func (c *Composite) Tag() string { return CompositeTag }

// Parts returns the sub-precisions in declaration order.
func (c *Composite) Parts() []Precision { return c.parts }

func (c *Composite) String() string {
	names := make([]string, len(c.parts))
	for i, p := range c.parts {
		names[i] = p.String()
	}
	return "composite(" + strings.Join(names, ", ") + ")"
}

// MatchingSubcomponent returns the sub-precision of p with the given tag. p
// itself is returned when it carries the tag. The result is nil when no
// component matches.
func MatchingSubcomponent(p Precision, tag string) Precision {
	if p == nil {
		return nil
	}
	if p.Tag() == tag {
		return p
	}
	if c, ok := p.(*Composite); ok {
		for _, part := range c.parts {
			if m := MatchingSubcomponent(part, tag); m != nil {
				return m
			}
		}
	}
	return nil
}

// ReplaceByTag returns p with the sub-precision whose tag matches
// replacement's tag swapped for replacement. p is left untouched. When nothing
// matches, p is returned as is.
func ReplaceByTag(p Precision, replacement Precision) Precision {
	if p == nil || p.Tag() == replacement.Tag() {
		return replacement
	}
	c, ok := p.(*Composite)
	if !ok {
		return p
	}
	parts := make([]Precision, len(c.parts))
	for i, part := range c.parts {
		parts[i] = ReplaceByTag(part, replacement)
	}
	return &Composite{parts: parts}
}

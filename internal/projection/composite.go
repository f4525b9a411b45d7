package projection

import (
	"strings"
	"sync/atomic"
)

// Composite is an ordered group of projections.
//
// Equality is set-based: order and repetition of parts are ignored, so
// [A, B], [B, A] and [A, A, B] are all equal. EqualOrdered compares the
// sequences strictly. Hash is order-dependent, so composites that are Equal
// but ordered differently may hash differently.
type Composite struct {
	parts []Base

	// hash caches the computed hash; 0 means not yet computed.
	hash atomic.Uint64
}

var _ Base = (*Composite)(nil)

// NewComposite groups parts in order.
func NewComposite(parts ...Base) *Composite {
	c := &Composite{}
	c.parts = append(c.parts, parts...)
	return c
}

// Parts returns the sub-projections in order.
func (c *Composite) Parts() []Base {
	out := make([]Base, len(c.parts))
	copy(out, c.parts)
	return out
}

// SQL implements sqlexpr.SQLer.
func (c *Composite) SQL() string {
	sqls := make([]string, len(c.parts))
	for i, p := range c.parts {
		sqls[i] = p.SQL()
	}
	return strings.Join(sqls, ", ")
}

func (c *Composite) String() string { return c.SQL() }

// Aliases implements Base.
func (c *Composite) Aliases() []string {
	var out []string
	for _, p := range c.parts {
		out = append(out, p.Aliases()...)
	}
	return out
}

// Grouping reports whether any part is an aggregate.
func (c *Composite) Grouping() bool {
	for _, p := range c.parts {
		if p.Grouping() {
			return true
		}
	}
	return false
}

// Terms implements Base.
func (c *Composite) Terms() []string {
	var out []string
	for _, p := range c.parts {
		out = append(out, p.Terms()...)
	}
	return out
}

// Hash implements Base. A hash that computes to 0 is indistinguishable from
// "not computed" and is recomputed on every call.
func (c *Composite) Hash() uint64 {
	if h := c.hash.Load(); h != 0 {
		return h
	}
	var h uint64
	for _, p := range c.parts {
		h = 31*h + p.Hash()
	}
	c.hash.Store(h)
	return h
}

// Equal implements Base. other must be a *Composite with the same set of
// parts, ignoring order and repetition.
func (c *Composite) Equal(other Base) bool {
	o, ok := other.(*Composite)
	if !ok {
		return false
	}
	if c == o {
		return true
	}
	return containsAll(c.parts, o.parts) && containsAll(o.parts, c.parts)
}

// EqualOrdered reports whether other has equal parts in the same order and
// number.
func (c *Composite) EqualOrdered(other *Composite) bool {
	if other == nil || len(c.parts) != len(other.parts) {
		return false
	}
	for i, p := range c.parts {
		if !p.Equal(other.parts[i]) {
			return false
		}
	}
	return true
}

// containsAll reports whether every element of a has an equal in b.
func containsAll(a, b []Base) bool {
outer:
	for _, x := range a {
		for _, y := range b {
			if x.Equal(y) {
				continue outer
			}
		}
		return false
	}
	return true
}

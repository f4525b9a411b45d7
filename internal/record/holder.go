package record

import (
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/typeconv"
)

// EmptyHash is the hash of every empty holder.
const EmptyHash uint64 = 0

var seed = maphash.MakeSeed()

// HolderKey is the identity of a holder: the case-folded relation it belongs
// to plus the field name. It never changes as the value does.
type HolderKey struct {
	Relation string
	Name     string
}

// Slot is the type-erased view of a Holder used for row assembly.
type Slot interface {
	Name() string
	Key() HolderKey
	IsSet() bool
	Clear()
	// Any returns the held value boxed, and whether one is set.
	Any() (any, bool)
	// Load reads the holder's value from row under alias. An absent or NULL
	// cell leaves the holder empty and returns false.
	Load(c typeconv.Converter, row typeconv.Row, alias string) (bool, error)
}

// Holder is a named cell holding an optional T.
//
// owner is a non-owning back reference used only to qualify the holder's
// identity; the holder must not outlive its record.
type Holder[T comparable] struct {
	name  string
	owner Record

	mu    sync.RWMutex
	value T
	set   bool
}

// NewHolder creates an empty holder named name, owned by owner.
// owner may be nil for a free-standing holder.
func NewHolder[T comparable](owner Record, name string) *Holder[T] {
	return &Holder[T]{name: name, owner: owner}
}

// Name returns the field name.
func (h *Holder[T]) Name() string { return h.name }

// Owner returns the owning record, or nil.
func (h *Holder[T]) Owner() Record { return h.owner }

// Get returns the value, or the zero T when empty.
func (h *Holder[T]) Get() T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value
}

// Lookup returns the value and whether it is set.
func (h *Holder[T]) Lookup() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.set
}

// Set stores v and returns h for chaining.
func (h *Holder[T]) Set(v T) *Holder[T] {
	h.mu.Lock()
	h.value = v
	h.set = true
	h.mu.Unlock()
	return h
}

// Clear returns h to the empty state.
func (h *Holder[T]) Clear() {
	h.mu.Lock()
	var zero T
	h.value = zero
	h.set = false
	h.mu.Unlock()
}

// IsSet reports whether a value is held.
func (h *Holder[T]) IsSet() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.set
}

// Any implements Slot.
func (h *Holder[T]) Any() (any, bool) {
	v, ok := h.Lookup()
	if !ok {
		return nil, false
	}
	return v, true
}

// Equal compares held values. Two empty holders are equal; an empty and a
// set holder are not.
func (h *Holder[T]) Equal(other *Holder[T]) bool {
	if other == nil {
		return false
	}
	if h == other {
		return true
	}
	v1, ok1 := h.Lookup()
	v2, ok2 := other.Lookup()
	if ok1 != ok2 {
		return false
	}
	return !ok1 || v1 == v2
}

// Hash hashes the held value, or returns EmptyHash when empty.
// Holders that are Equal hash identically within one process.
func (h *Holder[T]) Hash() uint64 {
	v, ok := h.Lookup()
	if !ok {
		return EmptyHash
	}
	return maphash.Comparable(seed, v)
}

// Key implements Slot.
func (h *Holder[T]) Key() HolderKey {
	var rel string
	if h.owner != nil && h.owner.Relation() != nil {
		rel = schema.Key(schema.NewTable(h.owner.Relation()))
	}
	return HolderKey{Relation: rel, Name: h.name}
}

// SameAs reports whether h and other denote the same field of the same
// relation, regardless of their values.
func (h *Holder[T]) SameAs(other Slot) bool {
	if other == nil {
		return false
	}
	return h.Key() == other.Key()
}

// Load implements Slot.
func (h *Holder[T]) Load(c typeconv.Converter, row typeconv.Row, alias string) (bool, error) {
	v, ok, err := typeconv.Decode[T](c, row, alias)
	if err != nil {
		return false, err
	}
	if !ok {
		h.Clear()
		return false, nil
	}
	h.Set(v)
	return true, nil
}

// String implements fmt.Stringer.
func (h *Holder[T]) String() string {
	v, ok := h.Lookup()
	if !ok {
		return h.name + "=<empty>"
	}
	return fmt.Sprintf("%s=%v", h.name, v)
}

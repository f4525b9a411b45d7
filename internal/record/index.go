package record

// Index maps holders to values by identity. Mutating a holder's value
// never moves its entry. Not safe for concurrent use.
type Index[V any] struct {
	entries map[HolderKey]V
}

// NewIndex creates an empty index.
func NewIndex[V any]() *Index[V] {
	return &Index[V]{entries: make(map[HolderKey]V)}
}

// Put associates v with s.
func (x *Index[V]) Put(s Slot, v V) {
	x.entries[s.Key()] = v
}

// Get returns the value associated with s.
func (x *Index[V]) Get(s Slot) (V, bool) {
	v, ok := x.entries[s.Key()]
	return v, ok
}

// Delete removes s's entry and reports whether one existed.
func (x *Index[V]) Delete(s Slot) bool {
	if _, ok := x.entries[s.Key()]; !ok {
		return false
	}
	delete(x.entries, s.Key())
	return true
}

// Len returns the number of entries.
func (x *Index[V]) Len() int { return len(x.entries) }

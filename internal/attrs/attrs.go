// Package attrs provides an explicit keyed accessor store.
//
// Store replaces ad-hoc map-like facades with named operations: Get
// reports presence instead of returning a sentinel, and All iterates in a
// deterministic order.
package attrs

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// Store is a string-keyed collection of V.
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, v V)
	Remove(key string) bool
	All() iter.Seq2[string, V]
}

// Map is a Store backed by a Go map.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Map[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

var _ Store[int] = (*Map[int])(nil)

// NewMap creates an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{m: make(map[string]V)}
}

// FromMap creates a Map holding a copy of m.
func FromMap[V any](m map[string]V) *Map[V] {
	if m == nil {
		return NewMap[V]()
	}
	return &Map[V]{m: maps.Clone(m)}
}

// Get returns the value for key and whether it exists.
func (a *Map[V]) Get(key string) (V, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.m[key]
	return v, ok
}

// GetOr returns the value for key, or def if absent.
func (a *Map[V]) GetOr(key string, def V) V {
	if v, ok := a.Get(key); ok {
		return v
	}
	return def
}

// Set stores v under key.
func (a *Map[V]) Set(key string, v V) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.m == nil {
		a.m = make(map[string]V)
	}
	a.m[key] = v
}

// Remove deletes key and reports whether it existed.
func (a *Map[V]) Remove(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.m[key]; !ok {
		return false
	}
	delete(a.m, key)
	return true
}

// Len returns the number of entries.
func (a *Map[V]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.m)
}

// Keys returns the keys in sorted order.
func (a *Map[V]) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.m))
}

// All iterates over a snapshot of the entries in sorted key order.
// The map may be modified during iteration.
func (a *Map[V]) All() iter.Seq2[string, V] {
	a.mu.RLock()
	snapshot := maps.Clone(a.m)
	a.mu.RUnlock()

	return func(yield func(string, V) bool) {
		for _, k := range slices.Sorted(maps.Keys(snapshot)) {
			if !yield(k, snapshot[k]) {
				return
			}
		}
	}
}

// Merge copies every entry of src into dst, overwriting existing keys.
func Merge[V any](dst, src Store[V]) {
	for k, v := range src.All() {
		dst.Set(k, v)
	}
}

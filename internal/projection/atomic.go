package projection

import (
	"sync"

	"github.com/roach88/relmap/internal/typeconv"
)

// Atomic is the shared state of single-column projections: the alias and
// the decode path. Concrete projections embed it.
type Atomic[T any] struct {
	env Env

	mu    sync.RWMutex
	alias string
}

func newAtomic[T any](env Env) Atomic[T] {
	return Atomic[T]{env: env, alias: DefaultAlias}
}

// Alias returns the current alias.
func (a *Atomic[T]) Alias() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.alias
}

// SetAlias renames the projection. Concrete projections expose this as As.
func (a *Atomic[T]) SetAlias(alias string) {
	a.mu.Lock()
	a.alias = alias
	a.mu.Unlock()
}

// Aliases implements Base.
func (a *Atomic[T]) Aliases() []string {
	return []string{a.Alias()}
}

// Read implements Projection by decoding the column under the alias.
func (a *Atomic[T]) Read(row typeconv.Row) (T, bool, error) {
	return typeconv.Decode[T](a.env.converter(), row, a.Alias())
}

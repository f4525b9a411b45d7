package projection

import (
	"github.com/zeebo/xxh3"
)

// expressionIdentity is what Expression equality compares, independent of T.
type expressionIdentity interface {
	expressionKey() (expr string, grouping bool)
}

// Expression projects a raw SQL fragment.
type Expression[T any] struct {
	Atomic[T]
	expr     string
	grouping bool
}

var _ Projection[int64] = (*Expression[int64])(nil)

// NewExpression creates a projection of expr. grouping marks aggregates
// such as COUNT(*).
func NewExpression[T any](env Env, expr string, grouping bool) *Expression[T] {
	return &Expression[T]{Atomic: newAtomic[T](env), expr: expr, grouping: grouping}
}

// As sets the alias and returns e.
func (e *Expression[T]) As(alias string) *Expression[T] {
	e.SetAlias(alias)
	return e
}

// Expr returns the unaliased fragment.
func (e *Expression[T]) Expr() string { return e.expr }

// SQL implements sqlexpr.SQLer.
func (e *Expression[T]) SQL() string {
	return e.env.Dialect.ScalarAlias(e.expr, e.Alias())
}

func (e *Expression[T]) String() string { return e.SQL() }

// Grouping implements Base.
func (e *Expression[T]) Grouping() bool { return e.grouping }

// Terms implements Base. Aggregates contribute nothing to GROUP BY.
func (e *Expression[T]) Terms() []string {
	if e.grouping {
		return nil
	}
	return []string{e.expr}
}

func (e *Expression[T]) expressionKey() (string, bool) { return e.expr, e.grouping }

// Hash implements Base.
func (e *Expression[T]) Hash() uint64 {
	flag := "0"
	if e.grouping {
		flag = "1"
	}
	return xxh3.HashString(flag + e.expr)
}

// Equal implements Base: same fragment and grouping flag.
func (e *Expression[T]) Equal(other Base) bool {
	o, ok := other.(expressionIdentity)
	if !ok {
		return false
	}
	expr, grouping := o.expressionKey()
	return e.expr == expr && e.grouping == grouping
}

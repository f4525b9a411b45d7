package projection

import (
	"fmt"

	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/typeconv"
)

// DefaultAlias is the alias an atomic projection starts with.
const DefaultAlias = "this"

// Base is the type-independent part of every projection.
type Base interface {
	sqlexpr.SQLer
	fmt.Stringer

	// Aliases returns the column aliases contributed, in SELECT order.
	Aliases() []string

	// Grouping reports whether the projection is an aggregate.
	Grouping() bool

	// Terms returns the expressions a GROUP BY must repeat when this
	// projection shares a SELECT list with an aggregate.
	Terms() []string

	Hash() uint64
	Equal(other Base) bool
}

// Projection is a Base that decodes a T from a result row.
type Projection[T any] interface {
	Base

	// Read decodes the projection's value from row. ok is false when the
	// value is absent; absence is never an error.
	Read(row typeconv.Row) (v T, ok bool, err error)
}

// Dialect is the rendering a projection needs.
type Dialect interface {
	QualifyColumn(field schema.Field, nodeAlias string) string
	ColumnAlias(field schema.Field, alias, nodeAlias string) string
	ScalarAlias(expr, alias string) string
}

// Env is the rendering and decoding context shared by projections.
// Dialect is required. A nil Converter means typeconv.Standard.
type Env struct {
	Dialect   Dialect
	Converter typeconv.Converter
}

func (e Env) converter() typeconv.Converter {
	if e.Converter == nil {
		return typeconv.Standard{}
	}
	return e.Converter
}

package projection

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/schema"
)

type fieldIdentity interface {
	fieldKey() (node *schema.Node, name string)
}

// Field projects one field of a relation node.
type Field[T any] struct {
	Atomic[T]
	node  *schema.Node
	field schema.Field
}

var _ Projection[string] = (*Field[string])(nil)

// NewField creates a projection of field on node.
func NewField[T any](env Env, node *schema.Node, field schema.Field) *Field[T] {
	return &Field[T]{Atomic: newAtomic[T](env), node: node, field: field}
}

// FieldOf creates a projection of the named field of node's relation.
func FieldOf[T any](env Env, node *schema.Node, name string) (*Field[T], error) {
	f, ok := node.Relation().Field(name)
	if !ok {
		return nil, dberr.Newf(dberr.CodeNotFound, "relation %s has no field %q", node.Relation().Name, name)
	}
	return NewField[T](env, node, f), nil
}

// As sets the alias and returns f.
func (f *Field[T]) As(alias string) *Field[T] {
	f.SetAlias(alias)
	return f
}

// Node returns the relation node.
func (f *Field[T]) Node() *schema.Node { return f.node }

// SchemaField returns the projected field.
func (f *Field[T]) SchemaField() schema.Field { return f.field }

// Expr returns the qualified column without an alias, for use in
// predicates and ORDER BY.
func (f *Field[T]) Expr() string {
	return f.env.Dialect.QualifyColumn(f.field, f.node.Alias())
}

// SQL implements sqlexpr.SQLer.
func (f *Field[T]) SQL() string {
	return f.env.Dialect.ColumnAlias(f.field, f.Alias(), f.node.Alias())
}

func (f *Field[T]) String() string { return f.SQL() }

// Grouping implements Base.
func (f *Field[T]) Grouping() bool { return false }

// Terms implements Base.
func (f *Field[T]) Terms() []string { return []string{f.Expr()} }

func (f *Field[T]) fieldKey() (*schema.Node, string) { return f.node, f.field.Name }

// Hash implements Base.
func (f *Field[T]) Hash() uint64 {
	buf := binary.LittleEndian.AppendUint64(nil, f.node.ID())
	return xxh3.Hash(append(buf, f.field.Name...))
}

// Equal implements Base: same node and field, whatever the aliases.
func (f *Field[T]) Equal(other Base) bool {
	o, ok := other.(fieldIdentity)
	if !ok {
		return false
	}
	node, name := o.fieldKey()
	return f.node == node && f.field.Name == name
}

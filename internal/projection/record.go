package projection

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/record"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/typeconv"
)

type recordIdentity interface {
	recordNode() *schema.Node
}

// Record projects every field of a relation node and assembles them into an
// R built by factory.
//
// The field projections are fixed at construction, one per relation field
// in declaration order, aliased <node alias>_<column>.
type Record[R record.Record] struct {
	Composite
	env     Env
	node    *schema.Node
	fields  []*Field[any]
	factory func() R
}

var _ Projection[*record.Dynamic] = (*Record[*record.Dynamic])(nil)

// NewRecord creates the record projection of node.
func NewRecord[R record.Record](env Env, node *schema.Node, factory func() R) *Record[R] {
	rel := node.Relation()
	p := &Record[R]{
		env:     env,
		node:    node,
		fields:  make([]*Field[any], 0, len(rel.Fields)),
		factory: factory,
	}
	parts := make([]Base, 0, len(rel.Fields))
	for _, f := range rel.Fields {
		fp := NewField[any](env, node, f).As(node.Alias() + "_" + f.ColumnName())
		p.fields = append(p.fields, fp)
		parts = append(parts, fp)
	}
	p.parts = parts
	return p
}

// NewDynamicRecord creates a record projection that decodes into
// record.Dynamic.
func NewDynamicRecord(env Env, node *schema.Node) *Record[*record.Dynamic] {
	rel := node.Relation()
	return NewRecord(env, node, func() *record.Dynamic { return record.NewDynamic(rel) })
}

// Node returns the projected relation node.
func (p *Record[R]) Node() *schema.Node { return p.node }

// Fields returns the field projections in declaration order.
func (p *Record[R]) Fields() []*Field[any] {
	out := make([]*Field[any], len(p.fields))
	copy(out, p.fields)
	return out
}

// Read builds a fresh record and loads every slot from its column.
// The record is absent when a non-nullable column is missing or NULL.
func (p *Record[R]) Read(row typeconv.Row) (R, bool, error) {
	var zero R
	r := p.factory()
	if err := record.CheckShape(r); err != nil {
		return zero, false, err
	}
	if err := p.checkSlots(r.Slots()); err != nil {
		return zero, false, err
	}

	conv := p.env.converter()
	for i, slot := range r.Slots() {
		fp := p.fields[i]
		ok, err := slot.Load(conv, row, fp.Alias())
		if err != nil {
			return zero, false, err
		}
		if !ok && !fp.SchemaField().Nullable {
			return zero, false, nil
		}
	}
	return r, true, nil
}

// checkSlots matches the factory's slots against the node's fields.
func (p *Record[R]) checkSlots(slots []record.Slot) error {
	name := p.node.Relation().Name
	if len(slots) != len(p.fields) {
		return dberr.Newf(dberr.CodeDecode, "record for %s has %d slots, projection has %d fields",
			name, len(slots), len(p.fields))
	}
	for i, slot := range slots {
		if want := p.fields[i].SchemaField().Name; slot.Name() != want {
			return dberr.Newf(dberr.CodeDecode, "record for %s: slot %d is %q, projection field is %q",
				name, i, slot.Name(), want)
		}
	}
	return nil
}

func (p *Record[R]) recordNode() *schema.Node { return p.node }

// Hash implements Base. Only the node contributes.
func (p *Record[R]) Hash() uint64 {
	return xxh3.Hash(binary.LittleEndian.AppendUint64(nil, p.node.ID()))
}

// Equal implements Base: record projections are equal when they project the
// same node.
func (p *Record[R]) Equal(other Base) bool {
	o, ok := other.(recordIdentity)
	return ok && o.recordNode() == p.node
}

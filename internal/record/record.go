package record

import (
	"time"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/schema"
)

// Record is one row's worth of holders for a relation.
type Record interface {
	Relation() *schema.Relation
	// Slots returns the holders in field-declaration order.
	Slots() []Slot
}

// Dynamic is a Record whose holders are derived from the relation's field
// types, for relations that have no Go struct.
//
// Bytes fields are held as string so the holder stays comparable.
type Dynamic struct {
	rel    *schema.Relation
	slots  []Slot
	byName map[string]Slot
}

// NewDynamic creates an empty record for rel.
func NewDynamic(rel *schema.Relation) *Dynamic {
	d := &Dynamic{
		rel:    rel,
		slots:  make([]Slot, 0, len(rel.Fields)),
		byName: make(map[string]Slot, len(rel.Fields)),
	}
	for _, f := range rel.Fields {
		s := d.newSlot(f)
		d.slots = append(d.slots, s)
		d.byName[f.Name] = s
	}
	return d
}

func (d *Dynamic) newSlot(f schema.Field) Slot {
	switch f.Type {
	case schema.TypeInt:
		return NewHolder[int64](d, f.Name)
	case schema.TypeFloat:
		return NewHolder[float64](d, f.Name)
	case schema.TypeBool:
		return NewHolder[bool](d, f.Name)
	case schema.TypeTime:
		return NewHolder[time.Time](d, f.Name)
	default:
		return NewHolder[string](d, f.Name)
	}
}

// Relation implements Record.
func (d *Dynamic) Relation() *schema.Relation { return d.rel }

// Slots implements Record.
func (d *Dynamic) Slots() []Slot { return d.slots }

// Slot returns the holder for the named field.
func (d *Dynamic) Slot(name string) (Slot, bool) {
	s, ok := d.byName[name]
	return s, ok
}

// Values returns the set fields by name. Empty fields are omitted.
func (d *Dynamic) Values() map[string]any {
	out := make(map[string]any, len(d.slots))
	for _, s := range d.slots {
		if v, ok := s.Any(); ok {
			out[s.Name()] = v
		}
	}
	return out
}

// HolderOf returns the typed holder for the named field of r.
func HolderOf[T comparable](r Record, name string) (*Holder[T], error) {
	for _, s := range r.Slots() {
		if s.Name() != name {
			continue
		}
		h, ok := s.(*Holder[T])
		if !ok {
			return nil, dberr.Newf(dberr.CodeDecode, "field %s holds %T", name, s)
		}
		return h, nil
	}
	return nil, dberr.Newf(dberr.CodeNotFound, "relation %s has no field %q", r.Relation().Name, name)
}

// CheckShape verifies that r's slots line up with its relation's fields,
// by count and by name in declaration order.
func CheckShape(r Record) error {
	rel := r.Relation()
	slots := r.Slots()
	if len(slots) != len(rel.Fields) {
		return dberr.Newf(dberr.CodeDecode, "record for %s has %d slots, relation has %d fields",
			rel.Name, len(slots), len(rel.Fields))
	}
	for i, f := range rel.Fields {
		if slots[i].Name() != f.Name {
			return dberr.Newf(dberr.CodeDecode, "record for %s: slot %d is %q, want field %q",
				rel.Name, i, slots[i].Name(), f.Name)
		}
	}
	return nil
}

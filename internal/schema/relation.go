package schema

import (
	"fmt"
	"strings"
)

// Type is the declared type of a field.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeTime   Type = "time"
	TypeBytes  Type = "bytes"
)

// ValidTypes lists the accepted field types.
var ValidTypes = []Type{TypeString, TypeInt, TypeFloat, TypeBool, TypeTime, TypeBytes}

// ParseType converts a type name to a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ValidTypes {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown field type %q: must be one of %v", s, ValidTypes)
}

// Field is one column of a relation.
type Field struct {
	Name       string `json:"name" yaml:"name"`
	Column     string `json:"column,omitempty" yaml:"column,omitempty"`
	Type       Type   `json:"type" yaml:"type"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// ColumnName returns the database column, defaulting to the field name.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// IndexDef declares a secondary index on a relation.
type IndexDef struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Relation is a table-like entity with an ordered field list.
type Relation struct {
	Name    string     `json:"name" yaml:"name"`
	Table   string     `json:"table,omitempty" yaml:"table,omitempty"`
	Fields  []Field    `json:"fields" yaml:"fields"`
	Indexes []IndexDef `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// TableName returns the database table, defaulting to the relation name.
func (r *Relation) TableName() string {
	if r.Table != "" {
		return r.Table
	}
	return r.Name
}

// Field returns the field with the given name.
func (r *Relation) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MustField is like Field but panics if the field does not exist.
// Use only in tests or when the relation is known to be valid.
func (r *Relation) MustField(name string) Field {
	f, ok := r.Field(name)
	if !ok {
		panic(fmt.Sprintf("relation %s has no field %q", r.Name, name))
	}
	return f
}

// FieldNames returns field names in declaration order.
func (r *Relation) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Objects returns the relation's table followed by its indexes.
func (r *Relation) Objects() []Object {
	objs := make([]Object, 0, 1+len(r.Indexes))
	objs = append(objs, NewTable(r))
	for _, def := range r.Indexes {
		objs = append(objs, &Index{
			Name:    def.Name,
			Table:   r.TableName(),
			Columns: def.Columns,
			Unique:  def.Unique,
		})
	}
	return objs
}

// Validate checks names, types, and index columns.
// Field, column and index names must be unique ignoring case.
func (r *Relation) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("relation name is required")
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("relation %s: at least one field is required", r.Name)
	}

	names := make(map[string]bool, len(r.Fields))
	columns := make(map[string]bool, len(r.Fields))
	for i, f := range r.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("relation %s: field[%d]: name is required", r.Name, i)
		}
		if _, err := ParseType(string(f.Type)); err != nil {
			return fmt.Errorf("relation %s: field %s: %w", r.Name, f.Name, err)
		}
		if names[fold(f.Name)] {
			return fmt.Errorf("relation %s: duplicate field %q", r.Name, f.Name)
		}
		names[fold(f.Name)] = true
		if columns[fold(f.ColumnName())] {
			return fmt.Errorf("relation %s: duplicate column %q", r.Name, f.ColumnName())
		}
		columns[fold(f.ColumnName())] = true
	}

	indexes := make(map[string]bool, len(r.Indexes))
	for _, idx := range r.Indexes {
		if strings.TrimSpace(idx.Name) == "" {
			return fmt.Errorf("relation %s: index name is required", r.Name)
		}
		if indexes[fold(idx.Name)] {
			return fmt.Errorf("relation %s: duplicate index %q", r.Name, idx.Name)
		}
		indexes[fold(idx.Name)] = true
		if len(idx.Columns) == 0 {
			return fmt.Errorf("relation %s: index %s: at least one column is required", r.Name, idx.Name)
		}
		for _, col := range idx.Columns {
			if !columns[fold(col)] {
				return fmt.Errorf("relation %s: index %s: unknown column %q", r.Name, idx.Name, col)
			}
		}
	}

	return nil
}

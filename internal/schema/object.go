package schema

import (
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/cases"
)

// Object is a named, independently creatable and droppable database artifact.
type Object interface {
	ObjectName() string
	CreateSQL(ddl DDL) string
	DropSQL(ddl DDL) string
}

// DDL renders data definition statements. Every dialect implements it.
type DDL interface {
	CreateTable(rel *Relation) string
	DropTable(name string) string
	CreateIndex(idx *Index) string
	DropIndex(idx *Index) string
}

// Key returns the identity key of obj: its name, Unicode case-folded.
func Key(obj Object) string {
	return fold(obj.ObjectName())
}

// SameObject reports whether a and b name the same artifact, ignoring case.
func SameObject(a, b Object) bool {
	return Key(a) == Key(b)
}

// HashObject hashes obj's identity key. Objects that are SameObject hash
// identically.
func HashObject(obj Object) uint64 {
	return xxh3.HashString(Key(obj))
}

// fold case-folds s. A Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Table is the table artifact of a relation.
type Table struct {
	Relation *Relation
}

// NewTable creates the table object for rel.
func NewTable(rel *Relation) *Table {
	return &Table{Relation: rel}
}

// ObjectName implements Object.
func (t *Table) ObjectName() string { return t.Relation.TableName() }

// CreateSQL implements Object.
func (t *Table) CreateSQL(ddl DDL) string { return ddl.CreateTable(t.Relation) }

// DropSQL implements Object.
func (t *Table) DropSQL(ddl DDL) string { return ddl.DropTable(t.Relation.TableName()) }

// Index is a secondary index artifact.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// ObjectName implements Object.
func (i *Index) ObjectName() string { return i.Name }

// CreateSQL implements Object.
func (i *Index) CreateSQL(ddl DDL) string { return ddl.CreateIndex(i) }

// DropSQL implements Object.
func (i *Index) DropSQL(ddl DDL) string { return ddl.DropIndex(i) }

// Collector accumulates schema objects, keeping the first object seen for
// each identity key, in insertion order.
type Collector struct {
	seen    map[string]bool
	objects []Object
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]bool)}
}

// Add records objs, skipping any already collected under the same key.
// Returns the number of objects actually added.
func (c *Collector) Add(objs ...Object) int {
	added := 0
	for _, obj := range objs {
		key := Key(obj)
		if c.seen[key] {
			continue
		}
		c.seen[key] = true
		c.objects = append(c.objects, obj)
		added++
	}
	return added
}

// AddRelations adds the objects of each relation.
func (c *Collector) AddRelations(rels ...*Relation) int {
	added := 0
	for _, rel := range rels {
		added += c.Add(rel.Objects()...)
	}
	return added
}

// Contains reports whether an object with obj's identity was collected.
func (c *Collector) Contains(obj Object) bool {
	return c.seen[Key(obj)]
}

// Len returns the number of collected objects.
func (c *Collector) Len() int { return len(c.objects) }

// Objects returns collected objects in insertion order.
func (c *Collector) Objects() []Object {
	out := make([]Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// CreateStatements renders CREATE statements in insertion order.
func (c *Collector) CreateStatements(ddl DDL) []string {
	stmts := make([]string, len(c.objects))
	for i, obj := range c.objects {
		stmts[i] = obj.CreateSQL(ddl)
	}
	return stmts
}

// DropStatements renders DROP statements in reverse insertion order, so
// indexes are dropped before the tables they belong to.
func (c *Collector) DropStatements(ddl DDL) []string {
	stmts := make([]string, 0, len(c.objects))
	for i := len(c.objects) - 1; i >= 0; i-- {
		stmts = append(stmts, c.objects[i].DropSQL(ddl))
	}
	return stmts
}

// Script joins statements into a semicolon-terminated script.
func Script(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, ";\n") + ";\n"
}

// Package dialect renders the database-specific parts of SQL text: identifier
// quoting, qualified columns, column and scalar aliasing, placeholder style,
// and DDL for schema objects.
//
// Three dialects are provided: SQLite (the default store backend), Postgres
// (numbered placeholders, used with the pgx driver) and ANSI (portable
// output for export). They share one implementation parameterized by type
// names and placeholder style.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
)

// Dialect renders SQL for one database family.
type Dialect interface {
	schema.DDL

	// Name returns the canonical dialect name.
	Name() string

	// QuoteIdent quotes name if it is not a plain lower-case identifier.
	QuoteIdent(name string) string

	// QualifyColumn renders field's column qualified by the node alias.
	QualifyColumn(field schema.Field, nodeAlias string) string

	// ColumnAlias renders the qualified column aliased as alias.
	ColumnAlias(field schema.Field, alias, nodeAlias string) string

	// ScalarAlias renders an arbitrary expression aliased as alias.
	ScalarAlias(expr, alias string) string

	// TableRef renders a FROM/JOIN table reference.
	TableRef(rel *schema.Relation, alias string) string

	// Rebind converts '?' placeholders to the driver's native style.
	Rebind(text string) string
}

// typeNames maps field types to column types.
type typeNames map[schema.Type]string

// standard is the shared Dialect implementation.
type standard struct {
	name        string
	types       typeNames
	ifExists    bool   // emit IF [NOT] EXISTS guards
	placeholder string // "" keeps '?', otherwise prefix for numbered params
}

// SQLite renders SQL for SQLite 3.
var SQLite Dialect = &standard{
	name: "sqlite",
	types: typeNames{
		schema.TypeString: "TEXT",
		schema.TypeInt:    "INTEGER",
		schema.TypeFloat:  "REAL",
		schema.TypeBool:   "INTEGER",
		schema.TypeTime:   "TIMESTAMP",
		schema.TypeBytes:  "BLOB",
	},
	ifExists: true,
}

// Postgres renders SQL for PostgreSQL.
var Postgres Dialect = &standard{
	name: "postgres",
	types: typeNames{
		schema.TypeString: "TEXT",
		schema.TypeInt:    "BIGINT",
		schema.TypeFloat:  "DOUBLE PRECISION",
		schema.TypeBool:   "BOOLEAN",
		schema.TypeTime:   "TIMESTAMPTZ",
		schema.TypeBytes:  "BYTEA",
	},
	ifExists:    true,
	placeholder: "$",
}

// ANSI renders portable SQL without vendor extensions.
var ANSI Dialect = &standard{
	name: "ansi",
	types: typeNames{
		schema.TypeString: "VARCHAR(255)",
		schema.TypeInt:    "BIGINT",
		schema.TypeFloat:  "DOUBLE PRECISION",
		schema.TypeBool:   "BOOLEAN",
		schema.TypeTime:   "TIMESTAMP",
		schema.TypeBytes:  "BLOB",
	},
}

var registry = map[string]Dialect{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgx":        Postgres,
	"ansi":       ANSI,
}

// Lookup returns the dialect registered under name (case-insensitive).
// Driver names are accepted as aliases ("sqlite3", "pgx").
func Lookup(name string) (Dialect, error) {
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q: must be one of %v", name, Names())
	}
	return d, nil
}

// Names returns the registered names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *standard) Name() string { return d.name }

func (d *standard) QuoteIdent(name string) string {
	if isPlainIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *standard) QualifyColumn(field schema.Field, nodeAlias string) string {
	col := d.QuoteIdent(field.ColumnName())
	if nodeAlias == "" {
		return col
	}
	return d.QuoteIdent(nodeAlias) + "." + col
}

func (d *standard) ColumnAlias(field schema.Field, alias, nodeAlias string) string {
	return d.ScalarAlias(d.QualifyColumn(field, nodeAlias), alias)
}

func (d *standard) ScalarAlias(expr, alias string) string {
	if alias == "" {
		return expr
	}
	return expr + " AS " + d.QuoteIdent(alias)
}

func (d *standard) TableRef(rel *schema.Relation, alias string) string {
	table := d.QuoteIdent(rel.TableName())
	if alias == "" || alias == rel.TableName() {
		return table
	}
	return table + " AS " + d.QuoteIdent(alias)
}

func (d *standard) Rebind(text string) string {
	if d.placeholder == "" {
		return text
	}
	return sqlexpr.Renumber(text, d.placeholder)
}

// CreateTable renders one column per line in field order, then the
// primary key constraint if any field is marked.
func (d *standard) CreateTable(rel *schema.Relation) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if d.ifExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(d.QuoteIdent(rel.TableName()))
	b.WriteString(" (\n")

	var (
		lines []string
		pk    []string
	)
	for _, f := range rel.Fields {
		line := "  " + d.QuoteIdent(f.ColumnName()) + " " + d.columnType(f.Type)
		if !f.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)
		if f.PrimaryKey {
			pk = append(pk, d.QuoteIdent(f.ColumnName()))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

func (d *standard) DropTable(name string) string {
	if d.ifExists {
		return "DROP TABLE IF EXISTS " + d.QuoteIdent(name)
	}
	return "DROP TABLE " + d.QuoteIdent(name)
}

func (d *standard) CreateIndex(idx *schema.Index) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if d.ifExists {
		b.WriteString("IF NOT EXISTS ")
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = d.QuoteIdent(c)
	}
	fmt.Fprintf(&b, "%s ON %s (%s)", d.QuoteIdent(idx.Name), d.QuoteIdent(idx.Table), strings.Join(cols, ", "))
	return b.String()
}

func (d *standard) DropIndex(idx *schema.Index) string {
	if d.ifExists {
		return "DROP INDEX IF EXISTS " + d.QuoteIdent(idx.Name)
	}
	return "DROP INDEX " + d.QuoteIdent(idx.Name)
}

func (d *standard) columnType(t schema.Type) string {
	if name, ok := d.types[t]; ok {
		return name
	}
	return d.types[schema.TypeString]
}

// isPlainIdent reports whether name can be emitted unquoted: lower-case
// letters, digits and underscores, not starting with a digit, and not a
// reserved word.
func isPlainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !reserved[name]
}

// reserved holds words that must be quoted when used as identifiers.
var reserved = map[string]bool{
	"all": true, "and": true, "as": true, "asc": true, "by": true,
	"case": true, "check": true, "column": true, "constraint": true,
	"create": true, "default": true, "delete": true, "desc": true,
	"distinct": true, "drop": true, "else": true, "end": true,
	"exists": true, "from": true, "group": true, "having": true,
	"in": true, "index": true, "insert": true, "into": true, "is": true,
	"join": true, "key": true, "like": true, "limit": true, "not": true,
	"null": true, "offset": true, "on": true, "or": true, "order": true,
	"primary": true, "references": true, "select": true, "set": true,
	"table": true, "then": true, "to": true, "union": true,
	"unique": true, "update": true, "user": true, "using": true,
	"values": true, "when": true, "where": true, "with": true,
}

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/projection"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
)

// Dialect renders table references.
type Dialect interface {
	TableRef(rel *schema.Relation, alias string) string
}

// JoinKind selects the join operator.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	switch k {
	case LeftJoin:
		return "LEFT JOIN"
	default:
		return "INNER JOIN"
	}
}

// Join adds a relation node to the FROM clause.
// A zero On joins unconditionally.
type Join struct {
	Kind JoinKind
	Node *schema.Node
	On   sqlexpr.Expr
}

// Select describes one SELECT statement.
type Select struct {
	Distinct    bool
	Projections []projection.Base
	From        *schema.Node
	Joins       []Join
	Where       sqlexpr.Expr
	OrderBy     []string
	Limit       int // 0 means no limit
}

// Build renders the statement.
//
// When any projection is an aggregate, the Terms of every projection are
// repeated in GROUP BY. Parameters follow textual order: joins, then where.
// Column aliases must be unique, ignoring case.
func (s Select) Build(d Dialect) (sqlexpr.Expr, error) {
	if len(s.Projections) == 0 {
		return sqlexpr.Expr{}, dberr.New(dberr.CodeQuery, "select has no projections")
	}
	if s.From == nil {
		return sqlexpr.Expr{}, dberr.New(dberr.CodeQuery, "select has no FROM node")
	}
	if err := checkAliases(s.Projections); err != nil {
		return sqlexpr.Expr{}, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}

	cols := make([]string, len(s.Projections))
	grouping := false
	for i, p := range s.Projections {
		cols[i] = p.SQL()
		grouping = grouping || p.Grouping()
	}
	b.WriteString(strings.Join(cols, ", "))

	b.WriteString(" FROM ")
	b.WriteString(tableRef(d, s.From))

	var params []any
	for i, j := range s.Joins {
		if j.Node == nil {
			return sqlexpr.Expr{}, dberr.Newf(dberr.CodeQuery, "join %d has no node", i)
		}
		fmt.Fprintf(&b, " %s %s ON ", j.Kind, tableRef(d, j.Node))
		if j.On.IsZero() {
			b.WriteString("1 = 1")
			continue
		}
		b.WriteString(j.On.Text)
		params = append(params, j.On.Params...)
	}

	if !s.Where.IsZero() {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.Text)
		params = append(params, s.Where.Params...)
	}

	if grouping {
		if terms := groupTerms(s.Projections); len(terms) > 0 {
			b.WriteString(" GROUP BY ")
			b.WriteString(strings.Join(terms, ", "))
		}
	}

	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.OrderBy, ", "))
	}

	if s.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.Limit))
	}

	stmt := sqlexpr.New(b.String(), params...)
	if !stmt.WellFormed() {
		return sqlexpr.Expr{}, dberr.Newf(dberr.CodeQuery,
			"statement has %d placeholders for %d parameters", stmt.Placeholders(), len(stmt.Params))
	}
	return stmt, nil
}

func tableRef(d Dialect, n *schema.Node) string {
	return d.TableRef(n.Relation(), n.Alias())
}

// checkAliases rejects repeated column aliases, which would make row
// lookup ambiguous.
func checkAliases(ps []projection.Base) error {
	seen := make(map[string]bool)
	for _, p := range ps {
		for _, a := range p.Aliases() {
			key := strings.ToLower(a)
			if seen[key] {
				return dberr.Newf(dberr.CodeQuery, "duplicate column alias %q", a)
			}
			seen[key] = true
		}
	}
	return nil
}

// groupTerms collects the non-aggregate terms, without repeats, in order.
func groupTerms(ps []projection.Base) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, p := range ps {
		for _, t := range p.Terms() {
			if seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

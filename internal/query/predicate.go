package query

import (
	"strings"

	"github.com/roach88/relmap/internal/sqlexpr"
)

// Termer is the left-hand side of a predicate: anything that renders an
// unaliased SQL expression. projection.Field and projection.Expression
// satisfy it.
type Termer interface {
	Expr() string
}

// Column is a raw column reference used as a Termer.
type Column string

// Expr implements Termer.
func (c Column) Expr() string { return string(c) }

func compare(t Termer, op string, v any) sqlexpr.Expr {
	return sqlexpr.New(t.Expr()+" "+op+" ?", v)
}

// Eq renders "t = ?". Use IsNull to test for NULL.
func Eq(t Termer, v any) sqlexpr.Expr { return compare(t, "=", v) }

// Ne renders "t <> ?".
func Ne(t Termer, v any) sqlexpr.Expr { return compare(t, "<>", v) }

// Lt renders "t < ?".
func Lt(t Termer, v any) sqlexpr.Expr { return compare(t, "<", v) }

// Gt renders "t > ?".
func Gt(t Termer, v any) sqlexpr.Expr { return compare(t, ">", v) }

// Le renders "t <= ?".
func Le(t Termer, v any) sqlexpr.Expr { return compare(t, "<=", v) }

// Ge renders "t >= ?".
func Ge(t Termer, v any) sqlexpr.Expr { return compare(t, ">=", v) }

// IsNull renders "t IS NULL".
func IsNull(t Termer) sqlexpr.Expr { return sqlexpr.Raw(t.Expr() + " IS NULL") }

// IsNotNull renders "t IS NOT NULL".
func IsNotNull(t Termer) sqlexpr.Expr { return sqlexpr.Raw(t.Expr() + " IS NOT NULL") }

// In renders "t IN (?, ...)". An empty list matches nothing.
func In(t Termer, vs ...any) sqlexpr.Expr {
	if len(vs) == 0 {
		return sqlexpr.Raw("1 = 0")
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(vs)), ", ")
	return sqlexpr.New(t.Expr()+" IN ("+marks+")", vs...)
}

// And conjoins predicates. With none it is always true.
func And(preds ...sqlexpr.Expr) sqlexpr.Expr {
	e := sqlexpr.Join(" AND ", preds...)
	if e.IsZero() {
		return sqlexpr.Raw("1 = 1")
	}
	return e
}

// Or disjoins predicates, parenthesized so it nests safely inside And.
// With none it is always false.
func Or(preds ...sqlexpr.Expr) sqlexpr.Expr {
	e := sqlexpr.Join(" OR ", preds...)
	if e.IsZero() {
		return sqlexpr.Raw("1 = 0")
	}
	if nonEmpty(preds) == 1 {
		return e
	}
	return sqlexpr.Wrap("(", e, ")")
}

// Not negates a predicate.
func Not(pred sqlexpr.Expr) sqlexpr.Expr {
	return sqlexpr.Wrap("NOT (", pred, ")")
}

func nonEmpty(exprs []sqlexpr.Expr) int {
	n := 0
	for _, e := range exprs {
		if e.Text != "" {
			n++
		}
	}
	return n
}

// Package query composes projections, relation nodes, and predicates into a
// single parameterized SELECT statement.
//
// All values are parameterized, never interpolated: predicates produce
// '?' placeholders and carry their values in the resulting sqlexpr.Expr.
// Numbered placeholders for Postgres are applied later by the dialect's
// Rebind.
//
//	a := schema.NewNode(accounts, "a")
//	email, _ := projection.FieldOf[string](env, a, "email")
//	stmt, err := query.Select{
//	    Projections: []projection.Base{email.As("email")},
//	    From:        a,
//	    Where:       query.Eq(email, "ada@example.com"),
//	    OrderBy:     []string{email.Expr()},
//	}.Build(dialect.SQLite)
//	// stmt.Text:   SELECT a.email AS email FROM accounts AS a WHERE a.email = ? ORDER BY a.email
//	// stmt.Params: ["ada@example.com"]
package query

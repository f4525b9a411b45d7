// Package sqlexpr provides the self-rendering contract and the parameterized
// expression type that every statement fragment composes into.
//
// # Self-rendering
//
// Anything that can produce SQL text implements SQLer:
//
//	type SQLer interface {
//	    SQL() string
//	}
//
// SQL() must be pure and deterministic for the current state of the value.
// Renderable types in relmap also implement fmt.Stringer and return the same
// text, so printing a projection or expression shows its SQL.
//
// # Parameterized expressions
//
// Expr pairs SQL text using '?' positional placeholders with the ordered
// parameter values that bind to them:
//
//	e := sqlexpr.New("a = ? AND b = ?", 5, "x")
//	e.SQL()                       // "a = ? AND b = ?"
//	e.Inline(typeconv.Standard{}) // "a = 5 AND b = 'x'"
//
// Values are never interpolated into Text by the builders; Inline exists for
// logging, debugging and the CLI. A well-formed Expr has exactly as many
// placeholders as parameters. Inline does not enforce this: missing
// parameters leave trailing '?' in place and surplus parameters are dropped.
// Callers that need strict validation compare Placeholders() with
// len(Params) themselves.
package sqlexpr

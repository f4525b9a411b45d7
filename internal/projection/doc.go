// Package projection models the things a SELECT list reads back from one
// result row.
//
// Every projection renders itself (SQL), names the column aliases it
// contributes (Aliases), and reports whether it is an aggregate (Grouping).
// Atomic projections contribute exactly one aliased column; their alias is
// mutable through As. Composite projections are ordered groups of other
// projections.
//
// Concrete projections:
//
//   - Expression: a raw SQL fragment, e.g. COUNT(*), with a grouping flag.
//   - Field: one field of a relation node, e.g. a.email AS a_email.
//   - Record: every field of a relation node, decoded into a record.Record.
//
// Equality and hashing describe what a projection reads, not how it is
// aliased: two Field projections over the same node and field are equal
// whatever their aliases.
package projection

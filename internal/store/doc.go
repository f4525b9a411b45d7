// Package store executes relmap statements against a database handle.
//
// The store owns one *sql.DB. SQLite (driver "sqlite3") is the default and
// is opened with a single connection and the pragmas below; Postgres is
// reached through pgx's database/sql driver ("pgx").
//
// Default SQLite pragmas:
//   - journal_mode = WAL for concurrent reads during writes
//   - synchronous = NORMAL
//   - busy_timeout = 5000 for lock contention
//   - foreign_keys = ON
//
// Statements are sqlexpr.Expr values with '?' placeholders; the store
// rebinds them for the dialect before execution. Every result set is
// closed through resource.WithResourceOrThrow, so a failing row callback or
// decode never leaks an open cursor.
//
// Each statement is logged at Debug with a query_id so a failure can be
// traced back to the statement that caused it.
package store

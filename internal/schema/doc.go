// Package schema models the relations a query projects from and the database
// artifacts that schema export creates.
//
// Relations and fields describe table-like entities in declaration order;
// that order is the contract used when a row is assembled back into a
// record. A Node is one aliased occurrence of a relation inside a query.
//
// Schema objects (tables, indexes) are identified by name, case-insensitively:
//
//	SameObject(NewTable(users), &Index{Name: "USERS"}) // true: same key
//
// Collector uses that identity to emit each artifact once during export.
package schema

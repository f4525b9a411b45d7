// Package typeconv translates between Go values, SQL literal text, and
// result-row cells.
//
// A Row exposes the cells of one result row by column alias. A Converter
// renders values as literals (for inlined SQL) and decodes a cell into a
// typed destination:
//
//	row := typeconv.MapRow{"u_email": []byte("ada@example.com"), "u_age": int64(36)}
//	email, ok, err := typeconv.Decode[string](typeconv.Standard{}, row, "u_email")
//
// A missing column and a NULL cell both decode as "absent" (ok == false) and
// are never errors. A cell that cannot be converted to the destination type
// is a dberr.CodeDecode error.
package typeconv

package typeconv

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Row is one result row addressed by column alias.
type Row interface {
	// Value returns the raw cell for alias. ok is false if the row has no
	// such column. A present column may still hold nil (SQL NULL).
	Value(alias string) (v any, ok bool)
}

// MapRow is a Row backed by a map from alias to raw cell.
//
// Lookup is exact first, then case-insensitive, since some databases fold
// unquoted aliases.
type MapRow map[string]any

// Value implements Row.
func (m MapRow) Value(alias string) (any, bool) {
	if v, ok := m[alias]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, alias) {
			return v, true
		}
	}
	return nil, false
}

// Columns returns the row's aliases, sorted.
func (m MapRow) Columns() []string {
	cols := make([]string, 0, len(m))
	for k := range m {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// ScanRow reads the current row of rows into a MapRow.
// rows.Next must have returned true. When a column name repeats, the first
// occurrence wins.
func ScanRow(rows *sql.Rows) (MapRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(MapRow, len(cols))
	for i, col := range cols {
		if _, dup := row[col]; dup {
			continue
		}
		row[col] = vals[i]
	}
	return row, nil
}

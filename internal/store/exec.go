package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/projection"
	"github.com/roach88/relmap/internal/resource"
	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/typeconv"
)

// Exec runs a statement that returns no rows and reports the number of
// rows affected.
func (s *Store) Exec(ctx context.Context, e sqlexpr.Expr) (int64, error) {
	id, text := s.prepare("exec", e)

	res, err := s.db.ExecContext(ctx, text, e.Params...)
	if err != nil {
		s.logger.Debug("statement failed", "query_id", id, "error", err)
		return 0, dberr.Wrapf(err, dberr.CodeQuery, "exec %s", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report it; the statement still succeeded
		s.logger.Debug("rows affected unavailable", "query_id", id, "error", err)
		return 0, nil
	}
	s.logger.Debug("statement done", "query_id", id, "rows_affected", n)
	return n, nil
}

// Each runs a query and calls fn for every row, in result order.
// Iteration stops at the first error from fn, which is returned. The
// result set is closed before Each returns on every path.
func (s *Store) Each(ctx context.Context, e sqlexpr.Expr, fn func(typeconv.Row) error) error {
	id, text := s.prepare("query", e)

	rows, err := s.db.QueryContext(ctx, text, e.Params...)
	if err != nil {
		s.logger.Debug("statement failed", "query_id", id, "error", err)
		return dberr.Wrapf(err, dberr.CodeQuery, "query %s", id)
	}

	count := 0
	err = resource.Do(rows, func(rows *sql.Rows) error {
		for rows.Next() {
			row, err := typeconv.ScanRow(rows)
			if err != nil {
				return dberr.Wrap(err, dberr.CodeDecode, "read row")
			}
			if err := fn(row); err != nil {
				return err
			}
			count++
		}
		if err := rows.Err(); err != nil {
			return dberr.Wrap(err, dberr.CodeQuery, "iterate rows")
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("statement failed", "query_id", id, "rows", count, "error", err)
		return err
	}
	s.logger.Debug("statement done", "query_id", id, "rows", count)
	return nil
}

// Collect runs a query and reads every row with p. A row for which p
// reports absence yields an invalid sql.Null.
func Collect[T any](ctx context.Context, s *Store, e sqlexpr.Expr, p projection.Projection[T]) ([]sql.Null[T], error) {
	out := []sql.Null[T]{}
	err := s.Each(ctx, e, func(row typeconv.Row) error {
		v, ok, err := p.Read(row)
		if err != nil {
			return err
		}
		out = append(out, sql.Null[T]{V: v, Valid: ok})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First runs a query and reads the first row with p. ok is false when
// there are no rows or the value is absent.
func First[T any](ctx context.Context, s *Store, e sqlexpr.Expr, p projection.Projection[T]) (T, bool, error) {
	var (
		v  T
		ok bool
	)
	err := s.Each(ctx, e, func(row typeconv.Row) error {
		var err error
		v, ok, err = p.Read(row)
		if err != nil {
			return err
		}
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		var zero T
		return zero, false, err
	}
	return v, ok, nil
}

// errStop ends iteration early without signalling failure.
var errStop = errors.New("stop iteration")

// prepare assigns a statement ID, rebinds placeholders and logs the
// statement.
func (s *Store) prepare(kind string, e sqlexpr.Expr) (id, text string) {
	id = s.ids.Generate()
	text = s.dialect.Rebind(e.Text)
	s.logger.Debug(kind, "query_id", id, "sql", text, "params", len(e.Params))
	return id, text
}

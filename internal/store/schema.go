package store

import (
	"context"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/resource"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
)

// ApplySchema creates objs in one transaction, skipping objects that share
// an identity with one already listed. Returns the number of statements run.
func (s *Store) ApplySchema(ctx context.Context, objs ...schema.Object) (int, error) {
	c := schema.NewCollector()
	c.Add(objs...)
	return s.runDDL(ctx, "apply schema", c.CreateStatements(s.dialect))
}

// DropSchema drops objs in one transaction, in reverse order.
func (s *Store) DropSchema(ctx context.Context, objs ...schema.Object) (int, error) {
	c := schema.NewCollector()
	c.Add(objs...)
	return s.runDDL(ctx, "drop schema", c.DropStatements(s.dialect))
}

func (s *Store) runDDL(ctx context.Context, what string, stmts []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dberr.Wrapf(err, dberr.CodeSchema, "%s: begin", what)
	}
	defer resource.Rollback(s.logger, tx)

	for _, stmt := range stmts {
		id, text := s.prepare("ddl", sqlexpr.Raw(stmt))
		if _, err := tx.ExecContext(ctx, text); err != nil {
			return 0, dberr.Wrapf(err, dberr.CodeSchema, "%s: %s", what, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, dberr.Wrapf(err, dberr.CodeSchema, "%s: commit", what)
	}
	s.logger.Info(what, "statements", len(stmts))
	return len(stmts), nil
}

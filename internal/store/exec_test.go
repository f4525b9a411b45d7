package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/projection"
	"github.com/roach88/relmap/internal/query"
	"github.com/roach88/relmap/internal/record"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/typeconv"
)

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// seededStore applies the accounts schema and inserts two rows.
func seededStore(t *testing.T) (*Store, *schema.Relation) {
	t.Helper()
	s := createTestStore(t)
	rel := accountsRelation()
	ctx := context.Background()

	_, err := s.ApplySchema(ctx, rel.Objects()...)
	require.NoError(t, err)

	insert := "INSERT INTO accounts (id, email, display_name, active, created_at) VALUES (?, ?, ?, ?, ?)"
	n, err := s.Exec(ctx, sqlexpr.New(insert, 1, "ada@example.com", "Ada", true, created))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	_, err = s.Exec(ctx, sqlexpr.New(insert, 2, "grace@example.com", nil, false, created))
	require.NoError(t, err)

	return s, rel
}

func envFor(s *Store) projection.Env {
	return projection.Env{Dialect: s.Dialect(), Converter: typeconv.Standard{}}
}

func TestCollect_Records(t *testing.T) {
	s, rel := seededStore(t)
	a := schema.NewNode(rel, "a")
	p := projection.NewDynamicRecord(envFor(s), a)
	id, err := projection.FieldOf[int64](envFor(s), a, "id")
	require.NoError(t, err)

	stmt, err := query.Select{
		Projections: []projection.Base{p},
		From:        a,
		OrderBy:     []string{id.Expr()},
	}.Build(s.Dialect())
	require.NoError(t, err)

	got, err := Collect(context.Background(), s, stmt, projection.Projection[*record.Dynamic](p))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].Valid)
	require.True(t, got[1].Valid)

	ada := got[0].V.Values()
	assert.Equal(t, int64(1), ada["id"])
	assert.Equal(t, "ada@example.com", ada["email"])
	assert.Equal(t, "Ada", ada["displayName"])
	assert.Equal(t, true, ada["active"])
	require.IsType(t, time.Time{}, ada["created"])
	assert.True(t, created.Equal(ada["created"].(time.Time)))

	grace := got[1].V.Values()
	assert.NotContains(t, grace, "displayName", "NULL leaves the nullable field empty")
	assert.Equal(t, false, grace["active"])
}

func TestCollect_Aggregate(t *testing.T) {
	s, rel := seededStore(t)
	a := schema.NewNode(rel, "a")
	env := envFor(s)
	active, err := projection.FieldOf[bool](env, a, "active")
	require.NoError(t, err)
	count := projection.NewExpression[int64](env, "COUNT(*)", true).As("n")

	stmt, err := query.Select{
		Projections: []projection.Base{count},
		From:        a,
		Where:       query.Eq(active, true),
	}.Build(s.Dialect())
	require.NoError(t, err)

	got, err := Collect(context.Background(), s, stmt, projection.Projection[int64](count))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].V)
}

func TestCollect_AbsentValues(t *testing.T) {
	s, rel := seededStore(t)
	a := schema.NewNode(rel, "a")
	display, err := projection.FieldOf[string](envFor(s), a, "displayName")
	require.NoError(t, err)
	display.As("display")

	stmt, err := query.Select{
		Projections: []projection.Base{display},
		From:        a,
		OrderBy:     []string{"a.id"},
	}.Build(s.Dialect())
	require.NoError(t, err)

	got, err := Collect(context.Background(), s, stmt, projection.Projection[string](display))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].V)
	assert.True(t, got[0].Valid)
	assert.False(t, got[1].Valid)
}

func TestCollect_EmptyResult(t *testing.T) {
	s, _ := seededStore(t)
	id := projection.NewExpression[int64](envFor(s), "id", false).As("id")

	got, err := Collect(context.Background(), s,
		sqlexpr.New("SELECT id FROM accounts WHERE id > ?", 100),
		projection.Projection[int64](id))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFirst(t *testing.T) {
	s, _ := seededStore(t)
	email := projection.NewExpression[string](envFor(s), "email", false).As("email")

	v, ok, err := First(context.Background(), s,
		sqlexpr.New("SELECT email FROM accounts WHERE id = ?", 2), projection.Projection[string](email))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "grace@example.com", v)

	_, ok, err = First(context.Background(), s,
		sqlexpr.New("SELECT email FROM accounts WHERE id = ?", 99), projection.Projection[string](email))
	require.NoError(t, err)
	assert.False(t, ok)
}

// withTimeout fails the test instead of hanging if a leaked result set
// holds the single SQLite connection.
func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEach_CallbackErrorClosesRows(t *testing.T) {
	s, _ := seededStore(t)
	stop := errors.New("stop")

	calls := 0
	err := s.Each(withTimeout(t), sqlexpr.Raw("SELECT id FROM accounts ORDER BY id"), func(row typeconv.Row) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	// the connection is free again
	_, err = s.Exec(withTimeout(t), sqlexpr.Raw("DELETE FROM accounts WHERE id = 2"))
	require.NoError(t, err)
}

func TestEach_DecodeErrorClosesRows(t *testing.T) {
	s, _ := seededStore(t)
	asInt := projection.NewExpression[int64](envFor(s), "email", false).As("email")

	_, err := Collect(withTimeout(t), s, sqlexpr.Raw("SELECT email FROM accounts"), projection.Projection[int64](asInt))
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeDecode))

	_, err = s.Exec(withTimeout(t), sqlexpr.Raw("DELETE FROM accounts"))
	require.NoError(t, err)
}

func TestExec_QueryError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Exec(context.Background(), sqlexpr.Raw("INSERT INTO missing VALUES (1)"))
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeQuery))
	assert.Contains(t, err.Error(), "q-1", "errors name the statement ID")

	err = s.Each(context.Background(), sqlexpr.Raw("SELECT * FROM missing"), func(typeconv.Row) error { return nil })
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeQuery))
}

func TestExec_ConstraintViolation(t *testing.T) {
	s, _ := seededStore(t)

	_, err := s.Exec(context.Background(), sqlexpr.New(
		"INSERT INTO accounts (id, email, active, created_at) VALUES (?, ?, ?, ?)",
		3, "ada@example.com", true, created))
	require.Error(t, err, "unique index on email")
	assert.True(t, dberr.IsCode(err, dberr.CodeQuery))
}

func TestStore_LogsStatementIDs(t *testing.T) {
	s := createTestStore(t)
	var buf bytes.Buffer
	s.logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := s.Exec(context.Background(), sqlexpr.New("SELECT ?", 1))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "query_id=q-1")
	assert.Contains(t, out, `sql="SELECT ?"`)
	assert.Contains(t, out, "params=1")
}

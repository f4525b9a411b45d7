package query_test

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/dialect"
	"github.com/roach88/relmap/internal/projection"
	"github.com/roach88/relmap/internal/query"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/typeconv"
)

var env = projection.Env{Dialect: dialect.SQLite, Converter: typeconv.Standard{}}

var accounts = &schema.Relation{
	Name: "accounts",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		{Name: "email", Type: schema.TypeString},
	},
}

var orders = &schema.Relation{
	Name: "orders",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		{Name: "accountId", Column: "account_id", Type: schema.TypeInt},
		{Name: "total", Type: schema.TypeFloat},
	},
}

func field[T any](t *testing.T, n *schema.Node, name string) *projection.Field[T] {
	t.Helper()
	f, err := projection.FieldOf[T](env, n, name)
	require.NoError(t, err)
	return f
}

func TestBuild_SimpleSelect(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	email := field[string](t, a, "email").As("email")

	stmt, err := query.Select{
		Projections: []projection.Base{email},
		From:        a,
		Where:       query.Eq(email, "ada@example.com"),
		OrderBy:     []string{email.Expr()},
	}.Build(dialect.SQLite)
	require.NoError(t, err)

	assert.Equal(t, "SELECT a.email AS email FROM accounts AS a WHERE a.email = ? ORDER BY a.email", stmt.Text)
	assert.Equal(t, []any{"ada@example.com"}, stmt.Params)

	// values are parameterized, never interpolated
	assert.NotContains(t, stmt.Text, "ada@example.com")
	assert.Equal(t,
		"SELECT a.email AS email FROM accounts AS a WHERE a.email = 'ada@example.com' ORDER BY a.email",
		stmt.Inline(typeconv.Standard{}))
}

func TestBuild_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	a := schema.NewNode(accounts, "a")
	o := schema.NewNode(orders, "o")
	id := field[int64](t, a, "id")
	email := field[string](t, a, "email").As("email")
	total := field[float64](t, o, "total").As("total")
	accountID := field[int64](t, o, "accountId")

	testCases := []struct {
		name string
		sel  query.Select
	}{
		{
			name: "select_record_join",
			sel: query.Select{
				Projections: []projection.Base{projection.NewDynamicRecord(env, a), total},
				From:        a,
				Joins: []query.Join{{
					Kind: query.LeftJoin,
					Node: o,
					On:   sqlexpr.Raw(accountID.Expr() + " = " + id.Expr()),
				}},
				Where:   query.And(query.Gt(total, 10.5), query.IsNotNull(email)),
				OrderBy: []string{id.Expr()},
				Limit:   5,
			},
		},
		{
			name: "select_group_by",
			sel: query.Select{
				Projections: []projection.Base{
					email,
					projection.NewExpression[int64](env, "COUNT(*)", true).As("n"),
				},
				From:    a,
				OrderBy: []string{"n DESC"},
			},
		},
		{
			name: "select_distinct_in",
			sel: query.Select{
				Distinct:    true,
				Projections: []projection.Base{email},
				From:        a,
				Where:       query.In(email, "a@x", "b@x"),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := tc.sel.Build(dialect.SQLite)
			require.NoError(t, err)
			require.True(t, stmt.WellFormed())

			g.Assert(t, tc.name, []byte(fmt.Sprintf("%s\n-- params: %v\n", stmt.Text, stmt.Params)))
		})
	}
}

func TestBuild_GroupByEchoesEveryNonAggregate(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	id := field[int64](t, a, "id").As("id")
	email := field[string](t, a, "email").As("email")
	lower := projection.NewExpression[string](env, "lower(a.email)", false).As("lower_email")
	count := projection.NewExpression[int64](env, "COUNT(*)", true).As("n")

	stmt, err := query.Select{
		Projections: []projection.Base{projection.NewComposite(id, email), lower, count},
		From:        a,
	}.Build(dialect.SQLite)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT a.id AS id, a.email AS email, lower(a.email) AS lower_email, COUNT(*) AS n "+
			"FROM accounts AS a GROUP BY a.id, a.email, lower(a.email)",
		stmt.Text)
}

func TestBuild_NoGroupByWithoutAggregate(t *testing.T) {
	a := schema.NewNode(accounts, "a")

	stmt, err := query.Select{
		Projections: []projection.Base{field[int64](t, a, "id").As("id")},
		From:        a,
	}.Build(dialect.SQLite)
	require.NoError(t, err)

	assert.NotContains(t, stmt.Text, "GROUP BY")
}

func TestBuild_ParamsInTextualOrder(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	o := schema.NewNode(orders, "o")
	total := field[float64](t, o, "total")

	stmt, err := query.Select{
		Projections: []projection.Base{field[int64](t, a, "id").As("id")},
		From:        a,
		Joins: []query.Join{{
			Node: o,
			On:   query.And(sqlexpr.Raw("o.account_id = a.id"), query.Ge(total, 1)),
		}},
		Where: query.Lt(total, 100),
	}.Build(dialect.SQLite)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT a.id AS id FROM accounts AS a INNER JOIN orders AS o ON o.account_id = a.id AND o.total >= ? WHERE o.total < ?",
		stmt.Text)
	assert.Equal(t, []any{1, 100}, stmt.Params)
}

func TestBuild_UnconditionalJoin(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	o := schema.NewNode(orders, "o")

	stmt, err := query.Select{
		Projections: []projection.Base{field[int64](t, a, "id").As("id")},
		From:        a,
		Joins:       []query.Join{{Node: o}},
	}.Build(dialect.SQLite)
	require.NoError(t, err)

	assert.Contains(t, stmt.Text, "INNER JOIN orders AS o ON 1 = 1")
}

func TestBuild_Postgres(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	id := field[int64](t, a, "id").As("id")

	stmt, err := query.Select{
		Projections: []projection.Base{id},
		From:        a,
		Where:       query.Or(query.Eq(id, 1), query.Eq(id, 2)),
	}.Build(dialect.Postgres)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT a.id AS id FROM accounts AS a WHERE (a.id = $1 OR a.id = $2)",
		dialect.Postgres.Rebind(stmt.Text))
}

func TestBuild_Errors(t *testing.T) {
	a := schema.NewNode(accounts, "a")
	id := field[int64](t, a, "id")

	testCases := []struct {
		name string
		sel  query.Select
		msg  string
	}{
		{
			name: "no projections",
			sel:  query.Select{From: a},
			msg:  "no projections",
		},
		{
			name: "no from",
			sel:  query.Select{Projections: []projection.Base{id}},
			msg:  "no FROM",
		},
		{
			name: "duplicate alias ignoring case",
			sel: query.Select{
				Projections: []projection.Base{
					field[int64](t, a, "id").As("x"),
					field[string](t, a, "email").As("X"),
				},
				From: a,
			},
			msg: `duplicate column alias "X"`,
		},
		{
			name: "join without node",
			sel: query.Select{
				Projections: []projection.Base{id},
				From:        a,
				Joins:       []query.Join{{Kind: query.LeftJoin}},
			},
			msg: "join 0 has no node",
		},
		{
			name: "placeholder mismatch",
			sel: query.Select{
				Projections: []projection.Base{id},
				From:        a,
				Where:       sqlexpr.New("a.id = ? OR a.id = ?", 1),
			},
			msg: "2 placeholders for 1 parameters",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.sel.Build(dialect.SQLite)
			require.Error(t, err)
			assert.True(t, dberr.IsCode(err, dberr.CodeQuery))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

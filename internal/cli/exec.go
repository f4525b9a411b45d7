package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/route"
	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/store"
	"github.com/roach88/relmap/internal/typeconv"
)

// Statement is one command-line statement with its leading keyword.
type Statement struct {
	Expr    sqlexpr.Expr
	Keyword string // upper case, "" for blank input
}

// NewStatement parses the leading keyword of text.
func NewStatement(text string, params ...any) Statement {
	return Statement{Expr: sqlexpr.New(text, params...), Keyword: leadingKeyword(text)}
}

func leadingKeyword(text string) string {
	s := strings.TrimLeftFunc(text, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end >= 0 {
		s = s[:end]
	}
	return strings.ToUpper(s)
}

// ExecResult is the outcome of one routed statement.
type ExecResult struct {
	Route        string           `json:"route"`
	Columns      []string         `json:"columns,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	RowsAffected int64            `json:"rows_affected"`
}

// queryKeywords start statements that return rows.
var queryKeywords = map[string]bool{"SELECT": true, "WITH": true}

// NewStatementTable routes row-returning statements to a query that
// collects every row and everything else to exec. Blank statements match
// no route.
func NewStatementTable(st *store.Store) *route.Table[Statement, ExecResult] {
	return route.NewTable(
		route.Route[Statement, ExecResult]{
			Name:  "query",
			Match: func(s Statement) bool { return queryKeywords[s.Keyword] },
			Handle: func(ctx context.Context, s Statement) (ExecResult, error) {
				res := ExecResult{Route: "query", Rows: []map[string]any{}}
				err := st.Each(ctx, s.Expr, func(row typeconv.Row) error {
					m, ok := row.(typeconv.MapRow)
					if !ok {
						return fmt.Errorf("unexpected row type %T", row)
					}
					if res.Columns == nil {
						res.Columns = m.Columns()
					}
					res.Rows = append(res.Rows, printable(m))
					return nil
				})
				res.RowsAffected = int64(len(res.Rows))
				return res, err
			},
		},
		route.Route[Statement, ExecResult]{
			Name:  "exec",
			Match: func(s Statement) bool { return s.Keyword != "" },
			Handle: func(ctx context.Context, s Statement) (ExecResult, error) {
				n, err := st.Exec(ctx, s.Expr)
				return ExecResult{Route: "exec", RowsAffected: n}, err
			},
		},
	)
}

// printable copies m, turning byte slices into strings.
func printable(m typeconv.MapRow) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out[k] = v
	}
	return out
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <sql> [params...]",
		Short: "Run a statement against the configured database",
		Long: `Run one parameterized statement. SELECT and WITH statements print their
rows; any other statement prints the number of rows affected. Parameters
are parsed as for inline.

Example:
  relmap exec --db ./app.db "INSERT INTO accounts (id, email) VALUES (?, ?)" 1 ada@example.com
  relmap exec --db ./app.db "SELECT * FROM accounts WHERE id = ?" 1`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runExec(opts *RootOptions, text string, raw []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	stmt := NewStatement(text, ParseParams(raw)...)
	if !stmt.Expr.WellFormed() {
		return formatter.Fail("invalid statement", fmt.Errorf("%d placeholder(s) for %d parameter(s)", stmt.Expr.Placeholders(), len(stmt.Expr.Params)))
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	outcome := NewStatementTable(st).Dispatch(cmd.Context(), stmt)
	opts.Logger.Debug("statement routed", "route", outcome.Route, "outcome", outcome.Kind)

	res, err := outcome.Result()
	if errors.Is(err, route.ErrNotMatched) {
		return formatter.Fail("empty statement", err)
	}
	if err != nil {
		return formatter.Fail("statement failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	printExecResult(formatter, res)
	return nil
}

func printExecResult(f *OutputFormatter, res ExecResult) {
	if res.Route != "query" {
		fmt.Fprintf(f.Writer, "%d row(s) affected\n", res.RowsAffected)
		return
	}
	for _, row := range res.Rows {
		parts := make([]string, len(res.Columns))
		for i, k := range res.Columns {
			parts[i] = fmt.Sprintf("%s=%v", k, row[k])
		}
		fmt.Fprintln(f.Writer, strings.Join(parts, " "))
	}
	fmt.Fprintf(f.Writer, "(%d row(s))\n", len(res.Rows))
}

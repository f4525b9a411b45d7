package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/projection"
	"github.com/roach88/relmap/internal/query"
	"github.com/roach88/relmap/internal/record"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/store"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Alias string
	Limit int
}

// SelectResult is the JSON payload of the select command.
type SelectResult struct {
	Relation string           `json:"relation"`
	SQL      string           `json:"sql"`
	Records  []map[string]any `json:"records"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <specs-dir> <relation>",
		Short: "Print every record of a relation",
		Long: `Project every field of a relation, run the query against the configured
database and print one record per row, ordered by primary key.

Example:
  relmap select --db ./app.db ./specs accounts
  relmap select --db ./app.db ./specs accounts --limit 10 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Alias, "alias", "t", "alias of the relation in the query")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 for all)")

	return cmd
}

func runSelect(opts *SelectOptions, specsDir, relation string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := loadRelations(formatter, specsDir)
	if err != nil {
		return err
	}
	rel, ok := result.Relation(relation)
	if !ok {
		return formatter.Fail("unknown relation", dberr.Newf(dberr.CodeNotFound, "relation %q not found in %s", relation, specsDir))
	}
	if opts.Limit < 0 {
		return formatter.Fail("invalid limit", fmt.Errorf("limit must not be negative, got %d", opts.Limit))
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	node := schema.NewNode(rel, opts.Alias)
	rec := projection.NewDynamicRecord(projection.Env{Dialect: st.Dialect()}, node)
	stmt, err := query.Select{
		Projections: []projection.Base{rec},
		From:        node,
		OrderBy:     primaryKeyOrder(rec),
		Limit:       opts.Limit,
	}.Build(st.Dialect())
	if err != nil {
		return formatter.Fail("failed to build query", err)
	}
	formatter.VerboseLog("%s", stmt.Text)

	rows, err := store.Collect(cmd.Context(), st, stmt, projection.Projection[*record.Dynamic](rec))
	if err != nil {
		return formatter.Fail("query failed", err)
	}

	records := make([]*record.Dynamic, 0, len(rows))
	for _, r := range rows {
		if r.Valid {
			records = append(records, r.V)
		}
	}
	if skipped := len(rows) - len(records); skipped > 0 {
		opts.Logger.Warn("rows skipped", "relation", rel.Name, "rows", skipped, "reason", "required column is NULL")
	}

	if formatter.Format == "json" {
		out := SelectResult{Relation: rel.Name, SQL: stmt.Text, Records: make([]map[string]any, len(records))}
		for i, r := range records {
			out.Records[i] = r.Values()
		}
		return formatter.Success(out)
	}

	for _, r := range records {
		fmt.Fprintln(formatter.Writer, formatRecord(r))
	}
	fmt.Fprintf(formatter.Writer, "(%d record(s))\n", len(records))
	return nil
}

// primaryKeyOrder returns the qualified primary key columns of rec.
func primaryKeyOrder(rec *projection.Record[*record.Dynamic]) []string {
	var order []string
	for _, f := range rec.Fields() {
		if f.SchemaField().PrimaryKey {
			order = append(order, f.Expr())
		}
	}
	return order
}

// formatRecord renders r as name=value pairs in field order.
func formatRecord(r record.Record) string {
	slots := r.Slots()
	parts := make([]string, len(slots))
	for i, s := range slots {
		v, ok := s.Any()
		if !ok {
			parts[i] = s.Name() + "=<empty>"
			continue
		}
		parts[i] = fmt.Sprintf("%s=%v", s.Name(), v)
	}
	return strings.Join(parts, " ")
}

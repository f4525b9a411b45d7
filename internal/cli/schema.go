package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/schema"
)

// SchemaOptions holds flags for the schema and apply commands.
type SchemaOptions struct {
	*RootOptions
	Drop bool
}

// SchemaResult is the JSON payload of the schema and apply commands.
type SchemaResult struct {
	Dialect    string   `json:"dialect"`
	Statements []string `json:"statements"`
	Applied    bool     `json:"applied,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <specs-dir>",
		Short: "Print the DDL for a specs directory",
		Long: `Print CREATE statements for every table and index declared in a specs
directory, in declaration order. Objects with the same name, ignoring case,
are emitted once.

Example:
  relmap schema ./specs
  relmap schema ./specs --dialect postgres --drop`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "print DROP statements instead, in reverse order")

	return cmd
}

func runSchema(opts *SchemaOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := loadRelations(formatter, specsDir)
	if err != nil {
		return err
	}
	d, err := opts.Config.DialectFor()
	if err != nil {
		return formatter.Fail("invalid dialect", err)
	}

	objects := collectObjects(result.Relations)
	stmts := objects.CreateStatements(d)
	if opts.Drop {
		stmts = objects.DropStatements(d)
	}
	opts.Logger.Debug("schema rendered", "dialect", d.Name(), "objects", objects.Len())

	if formatter.Format == "json" {
		return formatter.Success(SchemaResult{Dialect: d.Name(), Statements: stmts})
	}
	fmt.Fprint(formatter.Writer, schema.Script(stmts))
	return nil
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <specs-dir>",
		Short: "Create the schema in the configured database",
		Long: `Create every table and index declared in a specs directory, in one
transaction. With --drop, drop them instead.

Example:
  relmap apply --db ./app.db ./specs
  relmap apply --driver pgx --db postgres://localhost/app ./specs`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "drop the schema instead of creating it")

	return cmd
}

func runApply(opts *SchemaOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := loadRelations(formatter, specsDir)
	if err != nil {
		return err
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	objects := collectObjects(result.Relations)
	apply, stmts := st.ApplySchema, objects.CreateStatements(st.Dialect())
	if opts.Drop {
		apply, stmts = st.DropSchema, objects.DropStatements(st.Dialect())
	}
	n, err := apply(cmd.Context(), objects.Objects()...)
	if err != nil {
		return formatter.Fail("failed to apply schema", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SchemaResult{Dialect: st.Dialect().Name(), Statements: stmts, Applied: true})
	}
	verb := "Created"
	if opts.Drop {
		verb = "Dropped"
	}
	fmt.Fprintf(formatter.Writer, "%s %d schema object(s)\n", verb, n)
	return nil
}

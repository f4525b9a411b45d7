package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/sqlexpr"
	"github.com/roach88/relmap/internal/typeconv"
)

// InlineResult is the JSON payload of the inline command.
type InlineResult struct {
	SQL        string `json:"sql"`
	Params     []any  `json:"params"`
	Inlined    string `json:"inlined"`
	WellFormed bool   `json:"well_formed"`
}

// NewInlineCommand creates the inline command.
func NewInlineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inline <sql> [params...]",
		Short: "Render a parameterized statement with literals in place",
		Long: `Replace each '?' placeholder in sql, left to right, with the literal
rendering of the matching parameter. Parameters are read as integers,
floats, true/false or null where possible, and as strings otherwise.

A placeholder without a parameter stays '?'; extra parameters are ignored.

Example:
  relmap inline "a = ? AND b = ?" 5 x
  # a = 5 AND b = 'x'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInline(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runInline(opts *RootOptions, text string, raw []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	e := sqlexpr.New(text, ParseParams(raw)...)
	inlined := e.Inline(typeconv.Standard{})
	if !e.WellFormed() {
		opts.Logger.Warn("placeholder count mismatch", "placeholders", e.Placeholders(), "params", len(e.Params))
	}

	if formatter.Format == "json" {
		params := e.Params
		if params == nil {
			params = []any{}
		}
		return formatter.Success(InlineResult{SQL: e.Text, Params: params, Inlined: inlined, WellFormed: e.WellFormed()})
	}
	return formatter.Success(inlined)
}

// ParseParams converts command-line arguments to statement parameters:
// int64, float64, bool, nil for "null" (any case), otherwise the string.
// Wrap a value in single quotes to keep it a string.
func ParseParams(args []string) []any {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = parseParam(a)
	}
	return params
}

func parseParam(s string) any {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

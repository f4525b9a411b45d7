package sqlexpr

import (
	"strconv"
	"strings"
)

// SQLer is implemented by every value that can render itself as SQL text.
type SQLer interface {
	SQL() string
}

// LiteralRenderer renders a Go value as a SQL literal.
// typeconv.Standard is the default implementation.
type LiteralRenderer interface {
	ToLiteral(v any) string
}

// Expr is SQL text with '?' placeholders and the parameters bound to them.
//
// Expr is a value type. Composition helpers return new values and never
// modify their inputs; Params slices are copied when combined.
type Expr struct {
	Text   string
	Params []any
}

// New creates an expression from text and parameters.
func New(text string, params ...any) Expr {
	return Expr{Text: text, Params: params}
}

// Raw creates an expression with no parameters.
func Raw(text string) Expr {
	return Expr{Text: text}
}

// SQL returns the placeholder text.
func (e Expr) SQL() string {
	return e.Text
}

// String returns the placeholder text.
func (e Expr) String() string {
	return e.Text
}

// IsZero reports whether the expression has no text and no parameters.
func (e Expr) IsZero() bool {
	return e.Text == "" && len(e.Params) == 0
}

// Placeholders counts the '?' placeholders in Text.
// Question marks inside quoted literals or identifiers are not counted.
func (e Expr) Placeholders() int {
	n := 0
	scanPlaceholders(e.Text, func(int) { n++ })
	return n
}

// WellFormed reports whether the placeholder count matches len(Params).
func (e Expr) WellFormed() bool {
	return e.Placeholders() == len(e.Params)
}

// Inline returns Text with each placeholder replaced, left to right, by the
// literal rendering of the matching parameter.
//
// The receiver is not modified. On a count mismatch, placeholders without a
// parameter are left as '?' and parameters without a placeholder are
// dropped.
func (e Expr) Inline(r LiteralRenderer) string {
	if len(e.Params) == 0 {
		return e.Text
	}

	var b strings.Builder
	b.Grow(len(e.Text) + 8*len(e.Params))

	last, idx := 0, 0
	scanPlaceholders(e.Text, func(pos int) {
		if idx >= len(e.Params) {
			return
		}
		b.WriteString(e.Text[last:pos])
		b.WriteString(r.ToLiteral(e.Params[idx]))
		last = pos + 1
		idx++
	})
	b.WriteString(e.Text[last:])
	return b.String()
}

// Append returns e followed by sep and other, with parameters concatenated.
// If either side is empty the other is returned unchanged.
func (e Expr) Append(sep string, other Expr) Expr {
	if e.Text == "" {
		return other.clone()
	}
	if other.Text == "" {
		return e.clone()
	}
	return Expr{
		Text:   e.Text + sep + other.Text,
		Params: concatParams(e.Params, other.Params),
	}
}

// Join concatenates the non-empty expressions with sep.
func Join(sep string, exprs ...Expr) Expr {
	var (
		parts  []string
		params []any
	)
	for _, e := range exprs {
		if e.Text == "" {
			continue
		}
		parts = append(parts, e.Text)
		params = append(params, e.Params...)
	}
	return Expr{Text: strings.Join(parts, sep), Params: params}
}

// Wrap surrounds e's text with prefix and suffix.
func Wrap(prefix string, e Expr, suffix string) Expr {
	return Expr{
		Text:   prefix + e.Text + suffix,
		Params: concatParams(e.Params, nil),
	}
}

// Of converts any SQLer into a parameterless expression.
// An Expr passes through with its parameters intact.
func Of(s SQLer) Expr {
	if e, ok := s.(Expr); ok {
		return e
	}
	return Raw(s.SQL())
}

func (e Expr) clone() Expr {
	return Expr{Text: e.Text, Params: concatParams(e.Params, nil)}
}

func concatParams(a, b []any) []any {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// scanPlaceholders calls fn with the byte offset of every '?' outside of
// single-quoted literals and double-quoted identifiers. A doubled quote
// inside a literal toggles the state twice, so escaped quotes need no
// special handling.
func scanPlaceholders(text string, fn func(pos int)) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			fn(i)
		}
	}
}

// Renumber rewrites each placeholder as prefix followed by its 1-based
// ordinal, for drivers that use numbered parameters ("$1", "$2", ...).
func Renumber(text, prefix string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	last, n := 0, 0
	scanPlaceholders(text, func(pos int) {
		n++
		b.WriteString(text[last:pos])
		b.WriteString(prefix)
		b.WriteString(strconv.Itoa(n))
		last = pos + 1
	})
	if n == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

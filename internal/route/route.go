// Package route dispatches a request to the first matching handler in an
// ordered table and reports the result as an explicit Outcome.
//
// "No route matched" is an outcome, not an error or a panic: callers
// branch on Outcome.Kind, or use Result to fold it into an error.
package route

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotMatched is returned by Outcome.Result when no route matched.
var ErrNotMatched = errors.New("no route matched")

// Kind classifies an Outcome.
type Kind int

const (
	NotMatched Kind = iota
	Matched
	Failed
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Failed:
		return "failed"
	default:
		return "not_matched"
	}
}

// Outcome is the result of dispatching one request.
type Outcome[R any] struct {
	Kind  Kind
	Route string // name of the route that handled the request, if any
	Value R      // set when Kind is Matched
	Err   error  // set when Kind is Failed
}

// Result returns the value of a Matched outcome, the handler error of a
// Failed one, or ErrNotMatched.
func (o Outcome[R]) Result() (R, error) {
	switch o.Kind {
	case Matched:
		return o.Value, nil
	case Failed:
		var zero R
		return zero, fmt.Errorf("route %s: %w", o.Route, o.Err)
	default:
		var zero R
		return zero, ErrNotMatched
	}
}

// Route is one entry of a Table.
type Route[Q, R any] struct {
	Name   string
	Match  func(Q) bool
	Handle func(ctx context.Context, q Q) (R, error)
}

// Table is an ordered list of routes.
type Table[Q, R any] struct {
	routes []Route[Q, R]
}

// NewTable creates a table evaluating routes in the given order.
func NewTable[Q, R any](routes ...Route[Q, R]) *Table[Q, R] {
	t := &Table[Q, R]{}
	t.routes = append(t.routes, routes...)
	return t
}

// Add appends a route and returns t.
func (t *Table[Q, R]) Add(r Route[Q, R]) *Table[Q, R] {
	t.routes = append(t.routes, r)
	return t
}

// Names returns route names in evaluation order.
func (t *Table[Q, R]) Names() []string {
	names := make([]string, len(t.routes))
	for i, r := range t.routes {
		names[i] = r.Name
	}
	return names
}

// Dispatch hands q to the first route whose Match returns true.
// Later routes are not consulted, even if the handler fails.
func (t *Table[Q, R]) Dispatch(ctx context.Context, q Q) Outcome[R] {
	for _, r := range t.routes {
		if r.Match != nil && !r.Match(q) {
			continue
		}
		v, err := r.Handle(ctx, q)
		if err != nil {
			return Outcome[R]{Kind: Failed, Route: r.Name, Err: err}
		}
		return Outcome[R]{Kind: Matched, Route: r.Name, Value: v}
	}
	return Outcome[R]{Kind: NotMatched}
}

package route

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixRoute(name, prefix string, calls *[]string) Route[string, string] {
	return Route[string, string]{
		Name:  name,
		Match: func(q string) bool { return strings.HasPrefix(q, prefix) },
		Handle: func(_ context.Context, q string) (string, error) {
			*calls = append(*calls, name)
			return name + ":" + q, nil
		},
	}
}

func TestDispatch_FirstMatchWins(t *testing.T) {
	var calls []string
	table := NewTable(
		prefixRoute("select", "SELECT", &calls),
		prefixRoute("sel", "SEL", &calls),
	)

	out := table.Dispatch(context.Background(), "SELECT 1")

	assert.Equal(t, Matched, out.Kind)
	assert.Equal(t, "select", out.Route)
	assert.Equal(t, "select:SELECT 1", out.Value)
	assert.Equal(t, []string{"select"}, calls)

	v, err := out.Result()
	require.NoError(t, err)
	assert.Equal(t, "select:SELECT 1", v)
}

func TestDispatch_NotMatched(t *testing.T) {
	var calls []string
	table := NewTable(prefixRoute("select", "SELECT", &calls))

	out := table.Dispatch(context.Background(), "DELETE FROM x")

	assert.Equal(t, NotMatched, out.Kind)
	assert.Empty(t, out.Route)
	assert.Empty(t, calls)

	_, err := out.Result()
	assert.ErrorIs(t, err, ErrNotMatched)
}

func TestDispatch_Failed(t *testing.T) {
	boom := errors.New("boom")
	var fallbackCalled bool
	table := NewTable(
		Route[string, int]{
			Name:   "broken",
			Match:  func(string) bool { return true },
			Handle: func(context.Context, string) (int, error) { return 0, boom },
		},
		Route[string, int]{
			Name: "fallback",
			Handle: func(context.Context, string) (int, error) {
				fallbackCalled = true
				return 1, nil
			},
		},
	)

	out := table.Dispatch(context.Background(), "x")

	assert.Equal(t, Failed, out.Kind)
	assert.Equal(t, "broken", out.Route)
	assert.ErrorIs(t, out.Err, boom)
	assert.False(t, fallbackCalled, "a failing handler does not fall through")

	_, err := out.Result()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "route broken")
}

func TestDispatch_NilMatchAlwaysMatches(t *testing.T) {
	var calls []string
	table := NewTable[string, string]().
		Add(prefixRoute("select", "SELECT", &calls)).
		Add(Route[string, string]{
			Name:   "default",
			Handle: func(_ context.Context, q string) (string, error) { return "default", nil },
		})

	assert.Equal(t, []string{"select", "default"}, table.Names())

	out := table.Dispatch(context.Background(), "UPDATE x")
	assert.Equal(t, Matched, out.Kind)
	assert.Equal(t, "default", out.Route)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "not_matched", NotMatched.String())
	assert.Equal(t, "failed", Failed.String())
}

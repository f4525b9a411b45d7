// Package resource scopes the lifetime of closable database handles.
//
// WithResource guarantees the resource is closed exactly once, before any
// failure is handed to the caller's error handler and before a panic
// leaves the scope.
package resource

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/relmap/internal/dberr"
)

// WithResource runs action on r, closes r, and on failure returns
// onError(failure).
//
// A failure is the action's error, the close error, or both joined. r is
// closed exactly once on every path, including when action or onError
// panics. r must not be nil.
func WithResource[R io.Closer, T any](r R, action func(R) (T, error), onError func(error) (T, error)) (T, error) {
	closed := false
	defer func() {
		if !closed {
			closed = true
			_ = r.Close()
		}
	}()

	v, err := action(r)

	closed = true
	if cerr := r.Close(); cerr != nil {
		err = errors.Join(err, dberr.Wrap(cerr, dberr.CodeClose, "close resource"))
	}
	if err != nil {
		return onError(err)
	}
	return v, nil
}

// WithResourceOrThrow is WithResource with an error handler that returns
// the failure unchanged.
func WithResourceOrThrow[R io.Closer, T any](r R, action func(R) (T, error)) (T, error) {
	return WithResource(r, action, func(err error) (T, error) {
		var zero T
		return zero, err
	})
}

// Do is WithResourceOrThrow for actions that produce no value.
func Do[R io.Closer](r R, action func(R) error) error {
	_, err := WithResourceOrThrow(r, func(r R) (struct{}, error) {
		return struct{}{}, action(r)
	})
	return err
}

// Close closes closer and logs a failure at Warn.
// Use this in defer statements so close errors are not silently dropped.
func Close(logger *slog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn(msg, "error", err)
	}
}

// Rollback rolls back tx and logs a failure at Warn.
// sql.ErrTxDone, expected after a successful commit, is ignored.
func Rollback(logger *slog.Logger, tx *sql.Tx) {
	if tx == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("transaction rollback failed", "error", err)
	}
}

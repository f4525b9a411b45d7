// Package dberr defines the single failure kind used for persistence-layer
// errors across relmap.
//
// An Error carries an optional Message and an optional causing Err. At least
// one of them is expected to be present; constructors never produce an Error
// with both missing, and Error() still renders something useful if a caller
// builds one by hand.
package dberr

import "fmt"

// Code categorizes persistence errors.
type Code string

const (
	// CodeQuery indicates a statement failed to build or execute.
	CodeQuery Code = "QUERY"

	// CodeDecode indicates a result row could not be converted.
	CodeDecode Code = "DECODE"

	// CodeSchema indicates a schema object could not be created or dropped.
	CodeSchema Code = "SCHEMA"

	// CodeClose indicates a database handle failed to close.
	CodeClose Code = "CLOSE"

	// CodeConfig indicates invalid connection or dialect configuration.
	CodeConfig Code = "CONFIG"

	// CodeNotFound indicates a named relation, field or object does not exist.
	CodeNotFound Code = "NOT_FOUND"
)

// Error wraps a persistence-layer failure.
type Error struct {
	// Code identifies the error category. Empty means uncategorized.
	Code Code

	// Message is a human-readable description (optional if Err is set).
	Message string

	// Err is the underlying cause (optional if Message is set).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var prefix string
	if e.Code != "" {
		prefix = string(e.Code) + ": "
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s%s: %v", prefix, e.Message, e.Err)
	case e.Message != "":
		return prefix + e.Message
	case e.Err != nil:
		return prefix + e.Err.Error()
	default:
		return prefix + "persistence error"
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with a message and no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message and no cause.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err.
// Returns nil if err is nil, so it can wrap a call result directly.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Wrapf is like Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsCode reports whether any Error in err's tree carries code. Joined
// errors are searched branch by branch.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e != nil && e.Code == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return IsCode(u.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, branch := range u.Unwrap() {
			if IsCode(branch, code) {
				return true
			}
		}
	}
	return false
}

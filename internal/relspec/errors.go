package relspec

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No spec files found
	ErrCodeLoadFailed  = "E004" // CUE load or YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeRelationName   = "E101" // Missing relation name
	ErrCodeNoFields       = "E102" // No fields defined
	ErrCodeFieldName      = "E103" // Missing or malformed field
	ErrCodeInvalidType    = "E104" // Unknown field type
	ErrCodeDuplicate      = "E105" // Duplicate relation, field or index
	ErrCodeInvalidIndex   = "E106" // Index without columns or with unknown columns
	ErrCodeInvalidBoolean = "E107" // Non-boolean flag
)

// LoadError is an error that occurred while loading specs.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available

	// File and Line locate YAML errors, which have no CUE position.
	File string
	Line int
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// fromCUE converts a CUE error, keeping the first position.
func fromCUE(code string, err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

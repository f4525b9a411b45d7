package relspec

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/relmap/internal/schema"
)

// CompileRelation parses one relation from a CUE value. The relation name
// is the value's label, e.g. the "accounts" in relation: accounts: {...}.
func CompileRelation(v cue.Value) (*schema.Relation, error) {
	if err := v.Err(); err != nil {
		return nil, fromCUE(ErrCodeBuildFailed, err)
	}

	rel := &schema.Relation{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		rel.Name = label(sels[len(sels)-1])
	}
	if rel.Name == "" {
		return nil, &LoadError{Code: ErrCodeRelationName, Message: "relation name is required", Pos: v.Pos()}
	}

	var err error
	if rel.Table, err = optString(v, "table"); err != nil {
		return nil, err
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeNoFields,
			Message: fmt.Sprintf("relation %s: fields are required", rel.Name),
			Pos:     v.Pos(),
		}
	}
	iter, err := fieldsVal.List()
	if err != nil {
		return nil, fromCUE(ErrCodeNoFields, err)
	}
	for iter.Next() {
		f, err := compileField(rel.Name, iter.Value())
		if err != nil {
			return nil, err
		}
		rel.Fields = append(rel.Fields, f)
	}
	if len(rel.Fields) == 0 {
		return nil, &LoadError{
			Code:    ErrCodeNoFields,
			Message: fmt.Sprintf("relation %s: at least one field is required", rel.Name),
			Pos:     fieldsVal.Pos(),
		}
	}

	if idxVal := v.LookupPath(cue.ParsePath("indexes")); idxVal.Exists() {
		iter, err := idxVal.List()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidIndex, err)
		}
		for iter.Next() {
			idx, err := compileIndex(iter.Value())
			if err != nil {
				return nil, err
			}
			rel.Indexes = append(rel.Indexes, idx)
		}
	}

	if err := rel.Validate(); err != nil {
		return nil, &LoadError{Code: classify(err), Message: err.Error(), Pos: v.Pos()}
	}
	return rel, nil
}

func compileField(relName string, v cue.Value) (schema.Field, error) {
	var f schema.Field

	name, err := optString(v, "name")
	if err != nil {
		return f, err
	}
	if name == "" {
		return f, &LoadError{
			Code:    ErrCodeFieldName,
			Message: fmt.Sprintf("relation %s: field name is required", relName),
			Pos:     v.Pos(),
		}
	}
	f.Name = name

	if f.Column, err = optString(v, "column"); err != nil {
		return f, err
	}

	typeName, err := optString(v, "type")
	if err != nil {
		return f, err
	}
	f.Type, err = schema.ParseType(typeName)
	if err != nil {
		pos := v.LookupPath(cue.ParsePath("type")).Pos()
		if !pos.IsValid() {
			pos = v.Pos()
		}
		return f, &LoadError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("relation %s: field %s: %v", relName, name, err),
			Pos:     pos,
		}
	}

	if f.Nullable, err = optBool(v, "nullable"); err != nil {
		return f, err
	}
	if f.PrimaryKey, err = optBool(v, "primary_key"); err != nil {
		return f, err
	}
	return f, nil
}

func compileIndex(v cue.Value) (schema.IndexDef, error) {
	var idx schema.IndexDef

	var err error
	if idx.Name, err = optString(v, "name"); err != nil {
		return idx, err
	}
	if idx.Unique, err = optBool(v, "unique"); err != nil {
		return idx, err
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return idx, nil
	}
	if err := colsVal.Decode(&idx.Columns); err != nil {
		return idx, fromCUE(ErrCodeInvalidIndex, err)
	}
	return idx, nil
}

func optString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &LoadError{
			Code:    ErrCodeFieldName,
			Message: fmt.Sprintf("%s must be a string", path),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

func optBool(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, &LoadError{
			Code:    ErrCodeInvalidBoolean,
			Message: fmt.Sprintf("%s must be a boolean", path),
			Pos:     fv.Pos(),
		}
	}
	return b, nil
}

// label returns a selector's name without CUE quoting.
func label(sel cue.Selector) string {
	s := sel.String()
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}

package typeconv

import (
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/roach88/relmap/internal/dberr"
)

// Converter renders literals and decodes row cells.
type Converter interface {
	// ToLiteral renders v as SQL literal text.
	ToLiteral(v any) string

	// Decode stores the cell for alias into dst, which must be a non-nil
	// pointer. Returns false without touching dst if the column is absent
	// or NULL.
	Decode(row Row, alias string, dst any) (bool, error)
}

// Decode reads alias from row as a T using c.
func Decode[T any](c Converter, row Row, alias string) (T, bool, error) {
	var v T
	ok, err := c.Decode(row, alias, &v)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// Standard is the default Converter.
//
// Literals: integers and floats bare, strings single-quoted with quotes
// doubled, nil as NULL, booleans as TRUE/FALSE, byte slices as X'..', times
// as quoted RFC 3339 in UTC. Pointers are dereferenced and driver.Valuer
// values are rendered through their Value.
//
// Decoding coerces driver cells with spf13/cast, so an int64 cell decodes
// into a bool, a []byte cell into a string, and a string timestamp into a
// time.Time.
type Standard struct{}

var timeType = reflect.TypeOf(time.Time{})

// ToLiteral implements Converter.
func (Standard) ToLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(val)
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(val)) + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return quote(val.UTC().Format(time.RFC3339Nano))
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return "NULL"
		}
		return Standard{}.ToLiteral(dv)
	}

	// named types over the basic kinds
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL"
		}
		return Standard{}.ToLiteral(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
	case reflect.Bool:
		return Standard{}.ToLiteral(rv.Bool())
	case reflect.String:
		return quote(rv.String())
	}
	if s, ok := v.(fmt.Stringer); ok {
		return quote(s.String())
	}
	return quote(fmt.Sprint(v))
}

// Decode implements Converter.
func (Standard) Decode(row Row, alias string, dst any) (bool, error) {
	raw, ok := row.Value(alias)
	if !ok || raw == nil {
		return false, nil
	}

	if sc, ok := dst.(sql.Scanner); ok {
		if err := sc.Scan(raw); err != nil {
			return false, dberr.Wrapf(err, dberr.CodeDecode, "column %s", alias)
		}
		return true, nil
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, dberr.Newf(dberr.CodeDecode, "column %s: destination must be a non-nil pointer, got %T", alias, dst)
	}
	if err := assign(rv.Elem(), raw); err != nil {
		return false, dberr.Wrapf(err, dberr.CodeDecode, "column %s", alias)
	}
	return true, nil
}

// assign converts raw into dst's type and stores it.
func assign(dst reflect.Value, raw any) error {
	if dst.Type() == timeType {
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.Interface:
		if b, ok := raw.([]byte); ok {
			raw = append([]byte(nil), b...)
		}
		dst.Set(reflect.ValueOf(raw))
		return nil

	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.String:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		dst.SetString(s)
		return nil

	case reflect.Bool:
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		n, err := cast.ToUint64E(raw)
		if err != nil {
			return err
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %g overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
		return nil

	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			switch v := raw.(type) {
			case []byte:
				dst.SetBytes(append([]byte(nil), v...))
				return nil
			case string:
				dst.SetBytes([]byte(v))
				return nil
			}
		}
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot convert %T to %s", raw, dst.Type())
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

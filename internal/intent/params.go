package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ConfirmedKey is the parameter a caller sets to force execution past a
// consequence. It is never forwarded to the repository.
const ConfirmedKey = "confirmed"

// Params holds the arguments of one action. Values usually come straight
// from decoded JSON, so numbers arrive as float64 or json.Number.
type Params map[string]any

// ParamError reports a missing or ill-typed parameter.
type ParamError struct {
	Key    string
	Reason string
}

func (e *ParamError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required parameter %q", e.Key)
	}
	return fmt.Sprintf("parameter %q %s", e.Key, e.Reason)
}

func missing(key string) error { return &ParamError{Key: key} }

func invalid(key, reason string) error { return &ParamError{Key: key, Reason: reason} }

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns a required string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", missing(key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		// Command line values are decoded as JSON, so a numeric name
		// arrives as a number.
		return t.String(), nil
	}
	return "", invalid(key, "must be a string")
}

// OptionalString returns the parameter formatted as a string, or "" when it
// is absent.
func (p Params) OptionalString(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns a required integer parameter.
func (p Params) Int(key string) (int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missing(key)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, invalid(key, "must be an integer")
	}
	return n, nil
}

// OptionalInt returns an integer parameter and whether it was present.
func (p Params) OptionalInt(key string) (int64, bool, error) {
	if !p.Has(key) {
		return 0, false, nil
	}
	n, err := p.Int(key)
	return n, err == nil, err
}

// Float returns a required floating point parameter.
func (p Params) Float(key string) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missing(key)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, invalid(key, "must be a number")
	}
	return f, nil
}

// IntSlice returns a required list of integers. A comma separated string
// is accepted as well as a JSON array.
func (p Params) IntSlice(key string) ([]int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, missing(key)
	}

	var items []any
	switch t := v.(type) {
	case []int64:
		return append([]int64{}, t...), nil
	case []any:
		items = t
	case []int:
		for _, n := range t {
			items = append(items, n)
		}
	case []float64:
		for _, n := range t {
			items = append(items, n)
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	default:
		return nil, invalid(key, "must be a list of integers")
	}

	out := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, invalid(key, "must be a list of integers")
		}
		out = append(out, n)
	}
	return out, nil
}

// Confirmed reports whether the caller forced execution.
func (p Params) Confirmed() bool {
	return Truthy(p[ConfirmedKey])
}

// Truthy applies the loose truthiness callers expect from JSON payloads:
// false, nil, zero numbers and empty strings or collections are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	}
	return true
}

func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case float64:
		return integral(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not integral", f)
	}
	return int64(f), nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

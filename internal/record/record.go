// Package record provides a schema-validated, change-tracked field container
// used as the base of API domain entities.
package record

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/alpaca-trader/internal/timeutil"
)

// Coercer validates a raw value for a field and returns its canonical form.
// ok is false when the value is not acceptable for the field.
type Coercer func(value any) (coerced any, ok bool)

// Schema maps a field name to its coercion rule. Fields outside the schema
// can never be set.
type Schema map[string]Coercer

// Record holds the current field values and the previous values of any field
// changed since the last checkpoint. Not safe for concurrent use.
type Record struct {
	schema  Schema
	data    map[string]any
	changes map[string]any
}

// New returns an empty Record bound to the given schema.
func New(schema Schema) *Record {
	return &Record{
		schema:  schema,
		data:    make(map[string]any),
		changes: make(map[string]any),
	}
}

// Set validates value against the field's rule and stores it. Invalid writes
// (unknown field or rejected value) are dropped without mutating anything;
// the return value reports whether the write applied. Storing a value equal
// to the current one applies but records no change.
func (r *Record) Set(field string, value any) bool {
	coerce, ok := r.schema[field]
	if !ok {
		return false
	}

	coerced, ok := coerce(value)
	if !ok {
		return false
	}

	current, exists := r.data[field]
	if !exists || !valueEqual(current, coerced) {
		if exists {
			r.changes[field] = current
		} else {
			r.changes[field] = nil
		}
	}

	r.data[field] = coerced

	return true
}

// Get returns the stored value for field, or nil when unset.
func (r *Record) Get(field string) any {
	return r.data[field]
}

// Has reports whether field currently holds a value.
func (r *Record) Has(field string) bool {
	_, ok := r.data[field]
	return ok
}

// ToMap returns a copy of the current field map.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// Changes returns field -> previous value for every field touched since the
// last checkpoint.
func (r *Record) Changes() map[string]any {
	out := make(map[string]any, len(r.changes))
	for k, v := range r.changes {
		out[k] = v
	}
	return out
}

// ClearChanges checkpoints the record: the change set is emptied, current
// values are untouched.
func (r *Record) ClearChanges() {
	r.changes = make(map[string]any)
}

// Load bulk-sets fields, then optionally checkpoints. clearAfter is used when
// the source is the server's canonical state rather than a local edit.
func (r *Record) Load(fields map[string]any, clearAfter bool) {
	for field, value := range fields {
		r.Set(field, value)
	}

	if clearAfter {
		r.ClearChanges()
	}
}

func valueEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}

	return reflect.DeepEqual(a, b)
}

// numeric extracts a float64 from numbers and numeric-looking strings.
func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int accepts any numeric-looking value and coerces it to int.
func Int(value any) (any, bool) {
	f, ok := numeric(value)
	if !ok {
		return nil, false
	}
	return int(f), true
}

// Float accepts any numeric-looking value and coerces it to float64.
func Float(value any) (any, bool) {
	f, ok := numeric(value)
	if !ok {
		return nil, false
	}
	return f, true
}

// String requires the value to already be a string.
func String(value any) (any, bool) {
	s, ok := value.(string)
	return s, ok
}

// Bool accepts booleans, 0/1, and case-insensitive "true"/"false".
func Bool(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return nil, false
	default:
		f, ok := numeric(value)
		if !ok {
			return nil, false
		}
		if f == 0 {
			return false, true
		}
		if f == 1 {
			return true, true
		}
		return nil, false
	}
}

var uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-([a-f0-9]{4}-){3}[a-f0-9]{12}$`)

// UUID requires a lowercase hyphenated UUID string.
func UUID(value any) (any, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	return s, uuidPattern.MatchString(s)
}

// Date accepts a time.Time directly, or a string run through the timestamp
// normalizer.
func Date(value any) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := timeutil.ParseTimestamp(v)
		if err != nil {
			return nil, false
		}
		return t, true
	default:
		return nil, false
	}
}

// Enum requires membership in a fixed set of string values.
func Enum(values ...string) Coercer {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return func(value any) (any, bool) {
		s, ok := asString(value)
		if !ok {
			return nil, false
		}
		_, ok = set[s]
		return s, ok
	}
}

// Composite requires a map containing the given numeric sub-fields. Extra
// keys are kept as-is.
func Composite(required ...string) Coercer {
	return func(value any) (any, bool) {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}

		for _, key := range required {
			v, present := m[key]
			if !present {
				return nil, false
			}
			if _, ok := numeric(v); !ok {
				return nil, false
			}
		}

		return m, true
	}
}

// asString unwraps string-kinded values (plain strings and typed string
// constants alike).
func asString(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}

	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}

	return "", false
}

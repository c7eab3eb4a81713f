package row

import (
	"strconv"
	"strings"
)

// Values is an insertion-ordered map of column name to Value.
// The zero value is an empty map ready for use.
//
// Setting an existing column replaces its value in place; the column keeps
// its original position.
type Values struct {
	keys []string
	m    map[string]Value
}

// NewValues creates Values from alternating column/value pairs built with C.
func NewValues(cols ...Column) Values {
	var v Values
	for _, c := range cols {
		v.Set(c.Name, c.Value)
	}
	return v
}

// Column is a column/value pair for ordered construction.
type Column struct {
	Name  string
	Value Value
}

// C is shorthand for Column.
func C(name string, value Value) Column {
	return Column{Name: name, Value: value}
}

// Set assigns value to column. A nil value is stored as Null.
func (v *Values) Set(column string, value Value) {
	if value == nil {
		value = Null{}
	}
	if v.m == nil {
		v.m = make(map[string]Value)
	}
	if _, ok := v.m[column]; !ok {
		v.keys = append(v.keys, column)
	}
	v.m[column] = value
}

// Get returns the value stored for column.
func (v Values) Get(column string) (Value, bool) {
	val, ok := v.m[column]
	return val, ok
}

// Has reports whether column is present.
func (v Values) Has(column string) bool {
	_, ok := v.m[column]
	return ok
}

// Delete removes column, preserving the order of the rest.
func (v *Values) Delete(column string) {
	if _, ok := v.m[column]; !ok {
		return
	}
	delete(v.m, column)
	for i, k := range v.keys {
		if k == column {
			v.keys = append(v.keys[:i:i], v.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the columns in insertion order.
func (v Values) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Len returns the number of columns.
func (v Values) Len() int {
	return len(v.keys)
}

// Clone returns a deep copy. Blob contents are copied.
func (v Values) Clone() Values {
	out := Values{
		keys: make([]string, len(v.keys)),
		m:    make(map[string]Value, len(v.m)),
	}
	copy(out.keys, v.keys)
	for k, val := range v.m {
		if b, ok := val.(Blob); ok {
			cp := make(Blob, len(b))
			copy(cp, b)
			val = cp
		}
		out.m[k] = val
	}
	return out
}

// WithoutBlank returns a copy without Null and whitespace-only String
// columns, so "present but empty" and "absent" look the same to readers.
func (v Values) WithoutBlank() Values {
	var out Values
	for _, k := range v.keys {
		val := v.m[k]
		if IsBlank(val) {
			continue
		}
		out.Set(k, val)
	}
	return out
}

// String returns the column as text. Int values are formatted in base 10.
func (v Values) String(column string) (string, bool) {
	switch val := v.m[column].(type) {
	case String:
		return string(val), true
	case Int:
		return strconv.FormatInt(int64(val), 10), true
	default:
		return "", false
	}
}

// Int returns the column as an integer. Bool maps to 0/1 and numeric
// strings are parsed.
func (v Values) Int(column string) (int64, bool) {
	switch val := v.m[column].(type) {
	case Int:
		return int64(val), true
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bytes returns a Blob column.
func (v Values) Bytes(column string) ([]byte, bool) {
	b, ok := v.m[column].(Blob)
	return []byte(b), ok
}

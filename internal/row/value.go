package row

import (
	"fmt"
	"strings"
)

// Value is a sealed interface representing a single column value.
// Only Null, String, Int, Bool and Blob implement it.
type Value interface {
	rowValue() // Sealed - only these types implement it
}

// Null is an explicit SQL NULL.
type Null struct{}

func (Null) rowValue() {}

// String is a text column value.
type String string

func (String) rowValue() {}

// Int is an integer column value. Always int64.
type Int int64

func (Int) rowValue() {}

// Bool is a boolean column value. Stored by the provider as 0/1.
type Bool bool

func (Bool) rowValue() {}

// Blob is a binary column value.
type Blob []byte

func (Blob) rowValue() {}

// IsBlank reports whether v carries no information: Null, or a String
// consisting only of whitespace.
func IsBlank(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return strings.TrimSpace(string(val)) == ""
	default:
		return false
	}
}

// FromAny converts a database/sql scan result into a Value.
// Accepts nil, string, []byte, int64, int and bool.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		cp := make([]byte, len(val))
		copy(cp, val)
		return Blob(cp), nil
	case int64:
		return Int(val), nil
	case int:
		return Int(int64(val)), nil
	case bool:
		return Bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported column type: %T", v)
	}
}

// ToDriver converts a Value into an argument accepted by database/sql.
func ToDriver(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case Blob:
		return []byte(val)
	default:
		return nil
	}
}

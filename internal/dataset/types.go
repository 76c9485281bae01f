package dataset

// #region imports
import (
	"encoding/json"
	"fmt"
	"strconv"
)

// #endregion

// #region value-kind

// ValueKind discriminates the scalar type of an attribute value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

// #endregion

// #region value

// Value is a scalar attribute value: string, number, or bool.
// Partitioning and output use the canonical string form, so two values
// compare equal exactly when their canonical forms match.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// String wraps a string scalar.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number wraps a numeric scalar.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Bool wraps a boolean scalar.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// String returns the canonical string form of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// UnmarshalJSON accepts JSON strings, numbers, and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Kind: KindString, Str: s}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value{Kind: KindNumber, Num: n}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Value{Kind: KindBool, Bool: b}
		return nil
	}
	return fmt.Errorf("attribute value must be a string, number, or bool: %s", string(data))
}

// MarshalJSON writes the value back in its original scalar type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// #endregion

// #region table

// AttributeVector maps attribute names to values for one object.
type AttributeVector map[string]Value

// Table maps object IDs to their attribute vectors. Loaded once and treated
// as read-only for the lifetime of any oracle built over it.
type Table map[string]AttributeVector

// #endregion

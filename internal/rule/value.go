package rule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface for condition values.
// Only Str, Num, Bool, Sequence and Absent implement it.
type Value interface {
	ruleValue() // Sealed - only these types implement it
}

// Scalar is the single-value subset of Value: Str, Num and Bool.
type Scalar interface {
	Value
	scalar()
}

// Str is a text value.
type Str string

func (Str) ruleValue() {}
func (Str) scalar()    {}

// Num is a numeric value.
type Num float64

func (Num) ruleValue() {}
func (Num) scalar()    {}

// Bool is a boolean value.
type Bool bool

func (Bool) ruleValue() {}
func (Bool) scalar()    {}

// Sequence is the ordered value list of set and range operators.
// Duplicates are allowed.
type Sequence []Scalar

func (Sequence) ruleValue() {}

// Absent marks a condition without a value.
// Using an explicit type keeps every Value inside the sealed interface.
type Absent struct{}

func (Absent) ruleValue() {}

// Strs builds a Sequence of Str values.
func Strs(vals ...string) Sequence {
	seq := make(Sequence, len(vals))
	for i, v := range vals {
		seq[i] = Str(v)
	}
	return seq
}

// Text coerces a scalar to its text form.
// Numbers are written without exponent or trailing zeros.
func Text(s Scalar) string {
	switch v := s.(type) {
	case Str:
		return string(v)
	case Num:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(v))
	default:
		return ""
	}
}

// Texts returns the text form of every element of seq.
func Texts(seq Sequence) []string {
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = Text(s)
	}
	return out
}

// ValueFrom converts a decoded JSON or YAML value into a Value.
// nil becomes Absent; arrays must hold scalars only.
func ValueFrom(v any) (Value, error) {
	if v == nil {
		return Absent{}, nil
	}
	if arr, ok := v.([]any); ok {
		seq := make(Sequence, 0, len(arr))
		for i, elem := range arr {
			s, err := scalarFrom(elem)
			if err != nil {
				return nil, fmt.Errorf("value[%d]: %w", i, err)
			}
			seq = append(seq, s)
		}
		return seq, nil
	}
	return scalarFrom(v)
}

func scalarFrom(v any) (Scalar, error) {
	switch val := v.(type) {
	case string:
		return Str(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Num(val), nil
	case int64:
		return Num(val), nil
	case uint64:
		return Num(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number %v", val)
		}
		return Num(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", val.String(), err)
		}
		return Num(f), nil
	case nil:
		return nil, fmt.Errorf("null is not a scalar")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// valueToAny converts a Value back into plain Go values for encoding.
func valueToAny(v Value) any {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Num:
		return float64(val)
	case Bool:
		return bool(val)
	case Sequence:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = valueToAny(s)
		}
		return out
	default:
		return nil
	}
}

// String renders a value for diagnostics.
func String(v Value) string {
	switch val := v.(type) {
	case Scalar:
		return Text(val)
	case Sequence:
		return "[" + strings.Join(Texts(val), ", ") + "]"
	default:
		return "<absent>"
	}
}

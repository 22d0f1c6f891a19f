package quantity

import (
	"fmt"
	"math"
)

// ErrTypeMismatch is returned when an element cannot be safely cast to the
// declared dtype.
type ErrTypeMismatch struct {
	Value interface{}
	Dtype Dtype
}

func (err ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: %v (%T) cannot be cast to dtype %q", err.Value, err.Value, err.Dtype)
}

// ErrDimensionMismatch is returned when a value has a different number of
// dimensions than the schema shape declares.
type ErrDimensionMismatch struct {
	Got  int
	Want int
}

func (err ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: %d, should be %d", err.Got, err.Want)
}

// ErrShapeMismatch is returned when an axis length differs from the declared
// shape, or when nested arrays are not rectangular.
type ErrShapeMismatch struct {
	Axis int
	Got  int
	Want int
}

func (err ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: axis %d: %d (should be %d)", err.Axis, err.Got, err.Want)
}

// ErrUnitMismatch is returned when the presence of a unit on the value
// disagrees with the schema declaration.
type ErrUnitMismatch struct {
	Unit       string
	SchemaUnit string
}

func (err ErrUnitMismatch) Error() string {
	return fmt.Sprintf("unit mismatch: value unit %q but schema unit %q", err.Unit, err.SchemaUnit)
}

// Validate checks value against the declared dtype, shape and unit and
// returns a copy converted to the schema unit. The value follows
// encoding/json conventions: numbers are float64, nested arrays are
// []interface{}. A shape entry of -1 disables the length check for that
// axis. An empty unit means the value is bare; it is an error for exactly one
// of unit and schemaUnit to be set.
func Validate(dtype Dtype, shape []int, schemaUnit string, value interface{}, unit string) (interface{}, error) {
	if !dtype.Shaped() {
		return nil, ErrTypeMismatch{Value: value, Dtype: dtype}
	}

	if (unit == "") != (schemaUnit == "") {
		return nil, ErrUnitMismatch{Unit: unit, SchemaUnit: schemaUnit}
	}

	factor := 1.0
	if unit != "" {
		from, err := Parse(unit)
		if err != nil {
			return nil, err
		}
		to, err := Parse(schemaUnit)
		if err != nil {
			return nil, err
		}
		factor, err = from.ConversionFactor(to)
		if err != nil {
			return nil, err
		}
	}

	return convert(dtype, shape, 0, value, factor)
}

// convert recursively validates one axis of the value and produces the
// converted copy.
func convert(dtype Dtype, shape []int, axis int, value interface{}, factor float64) (interface{}, error) {
	if axis == len(shape) {
		return convertScalar(dtype, value, factor)
	}

	seq, ok := value.([]interface{})
	if !ok {
		return nil, ErrDimensionMismatch{Got: axis, Want: len(shape)}
	}
	if shape[axis] >= 0 && len(seq) != shape[axis] {
		return nil, ErrShapeMismatch{Axis: axis, Got: len(seq), Want: shape[axis]}
	}

	out := make([]interface{}, len(seq))
	width := -1
	for i, elem := range seq {
		converted, err := convert(dtype, shape, axis+1, elem, factor)
		if err != nil {
			return nil, err
		}
		if inner, ok := converted.([]interface{}); ok {
			if width >= 0 && len(inner) != width {
				return nil, ErrShapeMismatch{Axis: axis + 1, Got: len(inner), Want: width}
			}
			width = len(inner)
		}
		out[i] = converted
	}
	return out, nil
}

func convertScalar(dtype Dtype, value interface{}, factor float64) (interface{}, error) {
	if _, ok := value.([]interface{}); ok {
		// Deeper nesting than the shape declares.
		return nil, ErrDimensionMismatch{Got: -1, Want: 0}
	}

	switch dtype {
	case Bool:
		b, ok := value.(bool)
		if !ok {
			return nil, ErrTypeMismatch{Value: value, Dtype: dtype}
		}
		return b, nil
	case Float:
		f, ok := asFloat(value)
		if !ok {
			return nil, ErrTypeMismatch{Value: value, Dtype: dtype}
		}
		return f * factor, nil
	case Int:
		f, ok := asFloat(value)
		if !ok || f != math.Trunc(f) {
			return nil, ErrTypeMismatch{Value: value, Dtype: dtype}
		}
		f *= factor
		if f != math.Trunc(f) {
			return nil, ErrTypeMismatch{Value: f, Dtype: dtype}
		}
		return f, nil
	}
	return nil, ErrTypeMismatch{Value: value, Dtype: dtype}
}

// asFloat accepts the numeric representations a JSON decode or a direct Go
// caller may produce.
func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Map renders a validated value in the stored wire form, pairing it with the
// unit it is expressed in. Unitless quantities carry only the value key.
func Map(value interface{}, unit string) map[string]interface{} {
	m := map[string]interface{}{"value": value}
	if unit != "" {
		m["unit"] = unit
	}
	return m
}

// Ndim reports the nesting depth of a JSON value, following first elements.
func Ndim(value interface{}) int {
	n := 0
	for {
		seq, ok := value.([]interface{})
		if !ok || len(seq) == 0 {
			if ok {
				n++
			}
			return n
		}
		n++
		value = seq[0]
	}
}

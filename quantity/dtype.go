// Package quantity implements validation of schema-typed values: numeric
// dtype casting rules, n-dimensional shape checks over nested JSON arrays and
// unit parsing with conversion between compatible units. The stored form of a
// quantity is always expressed in the unit its schema declares.
package quantity

// Dtype enumerates the element types a schema field may declare. The values
// follow numpy-style character codes for the numeric kinds.
type Dtype string

const (
	// Float is the default dtype; elements are 64-bit floats.
	Float Dtype = "f"

	// Int elements are 64-bit integers.
	Int Dtype = "i"

	// Bool elements are booleans.
	Bool Dtype = "?"

	// String fields hold a single string; shape and unit do not apply.
	String Dtype = "str"

	// Bytes fields hold a single binary payload, carried as base64 over the
	// API and stored content addressed.
	Bytes Dtype = "bytes"

	// Object fields hold free-form JSON.
	Object Dtype = "object"
)

// Valid reports whether the dtype is one of the declared element types.
func (d Dtype) Valid() bool {
	switch d {
	case Float, Int, Bool, String, Bytes, Object:
		return true
	}
	return false
}

// Numeric reports whether elements of the dtype are numbers.
func (d Dtype) Numeric() bool {
	return d == Float || d == Int
}

// Shaped reports whether shape declarations apply to the dtype.
func (d Dtype) Shaped() bool {
	return d == Float || d == Int || d == Bool
}

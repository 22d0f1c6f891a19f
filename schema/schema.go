// Package schema models the runtime schema of a database: the collections it
// declares and the typed fields of each collection, including link fields
// referencing other collections.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/heavydata/dms/quantity"
)

// NameRegexp matches valid collection and field names.
var NameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// MaxShapeLen caps the number of dimensions a field may declare.
const MaxShapeLen = 5

// reserved field names carry document metadata and may not be declared.
var reserved = map[string]bool{
	"_id":       true,
	"_meta":     true,
	"_tracking": true,
}

// Field declares one data item of a collection.
type Field struct {
	// Dtype is the element type; defaults to quantity.Float.
	Dtype quantity.Dtype `json:"dtype,omitempty"`

	// Unit is the unit stored values are expressed in. Only valid for
	// numeric dtypes and never together with Link.
	Unit string `json:"unit,omitempty"`

	// Shape declares the dimensions of the field; empty means scalar. An
	// entry of -1 leaves the axis length unchecked. Links must be scalar or
	// one dimensional.
	Shape []int `json:"shape,omitempty"`

	// Link names the collection this field references. Link fields hold raw
	// object ids.
	Link string `json:"link,omitempty"`
}

// IsLink reports whether the field is a link into another collection.
func (f Field) IsLink() bool {
	return f.Link != ""
}

// Sequence reports whether the field holds a sequence of links rather than a
// single one. Only meaningful for link fields.
func (f Field) Sequence() bool {
	return len(f.Shape) == 1
}

// Collection declares the fields of one collection, by name.
type Collection map[string]Field

// Schema maps collection names to their field declarations.
type Schema map[string]Collection

// ErrInvalid is returned when a schema document violates the schema rules.
type ErrInvalid struct {
	Collection string
	Field      string
	Reason     string
}

func (err ErrInvalid) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("invalid schema: %s: %s", err.Collection, err.Reason)
	}
	return fmt.Sprintf("invalid schema: %s.%s: %s", err.Collection, err.Field, err.Reason)
}

// Parse reads a schema from its JSON document form and validates it.
func Parse(p []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(p, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.applyDefaults()
	return s, nil
}

// Validate checks naming, dtype, shape, unit and link rules across the whole
// schema.
func (s Schema) Validate() error {
	for name, coll := range s {
		if !NameRegexp.MatchString(name) {
			return ErrInvalid{Collection: name, Reason: "invalid collection name"}
		}
		for fname, field := range coll {
			if err := s.validateField(name, fname, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Schema) validateField(coll, name string, f Field) error {
	if reserved[name] {
		return ErrInvalid{Collection: coll, Field: name, Reason: "reserved field name"}
	}
	if !NameRegexp.MatchString(name) {
		return ErrInvalid{Collection: coll, Field: name, Reason: "invalid field name"}
	}
	if f.Dtype != "" && !f.Dtype.Valid() {
		return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("unknown dtype %q", f.Dtype)}
	}
	if len(f.Shape) > MaxShapeLen {
		return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("shape exceeds %d dimensions", MaxShapeLen)}
	}
	for _, n := range f.Shape {
		if n < -1 || n == 0 {
			return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("invalid axis length %d", n)}
		}
	}

	if f.IsLink() {
		if _, ok := s[f.Link]; !ok {
			return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("link to undefined collection %s", f.Link)}
		}
		if len(f.Shape) > 1 {
			return ErrInvalid{Collection: coll, Field: name, Reason: "links must be either scalar (shape=[]) or 1d array (shape=[num])"}
		}
		if f.Unit != "" {
			return ErrInvalid{Collection: coll, Field: name, Reason: "unit not permitted with links"}
		}
		return nil
	}

	if f.Unit != "" {
		dtype := f.Dtype
		if dtype == "" {
			dtype = quantity.Float
		}
		if !dtype.Numeric() {
			return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("unit not permitted with dtype %q", dtype)}
		}
		if _, err := quantity.Parse(f.Unit); err != nil {
			return ErrInvalid{Collection: coll, Field: name, Reason: err.Error()}
		}
	}

	if !f.dtypeOrDefault().Shaped() && len(f.Shape) > 0 {
		return ErrInvalid{Collection: coll, Field: name, Reason: fmt.Sprintf("shape not permitted with dtype %q", f.Dtype)}
	}

	return nil
}

func (f Field) dtypeOrDefault() quantity.Dtype {
	if f.Dtype == "" {
		return quantity.Float
	}
	return f.Dtype
}

// applyDefaults fills in the default dtype so stored schemas are explicit.
func (s Schema) applyDefaults() {
	for _, coll := range s {
		for fname, field := range coll {
			if field.IsLink() {
				continue
			}
			if field.Dtype == "" {
				field.Dtype = quantity.Float
				coll[fname] = field
			}
		}
	}
}

// Has reports whether the schema declares the collection.
func (s Schema) Has(collection string) bool {
	_, ok := s[collection]
	return ok
}

// Field looks up a field declaration.
func (s Schema) Field(collection, field string) (Field, bool) {
	coll, ok := s[collection]
	if !ok {
		return Field{}, false
	}
	f, ok := coll[field]
	return f, ok
}

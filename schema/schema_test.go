package schema

import (
	"testing"

	"github.com/heavydata/dms/quantity"
)

// beamSchema is a cut-down version of the structural mechanics schema used
// throughout the integration tests.
const beamSchema = `{
	"Beam": {
		"length": {"unit": "m"},
		"height": {"unit": "m"},
		"density": {"unit": "kg/m3"},
		"bc_0": {"dtype": "?", "shape": [3]},
		"cs": {"link": "CrossSection"}
	},
	"CrossSection": {
		"rvePositions": {"shape": [-1, 3], "unit": "m"},
		"materials": {"link": "MaterialRecord", "shape": [-1]}
	},
	"MaterialRecord": {
		"name": {"dtype": "str"},
		"props": {"dtype": "object"}
	}
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(beamSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Has("Beam") || !s.Has("MaterialRecord") {
		t.Fatalf("parsed schema is missing collections: %v", s)
	}

	length, ok := s.Field("Beam", "length")
	if !ok {
		t.Fatalf("Beam.length not found")
	}
	if length.Dtype != quantity.Float {
		t.Errorf("default dtype not applied: %q", length.Dtype)
	}

	cs, _ := s.Field("Beam", "cs")
	if !cs.IsLink() || cs.Sequence() {
		t.Errorf("Beam.cs should be a scalar link, got %+v", cs)
	}
	materials, _ := s.Field("CrossSection", "materials")
	if !materials.IsLink() || !materials.Sequence() {
		t.Errorf("CrossSection.materials should be a sequence link, got %+v", materials)
	}
}

func TestValidateRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"link to undefined collection": `{"A": {"b": {"link": "Nope"}}}`,
		"2d link":                      `{"A": {"b": {"link": "A", "shape": [2, 2]}}}`,
		"unit with link":               `{"A": {"b": {"link": "A", "unit": "m"}}}`,
		"unknown dtype":                `{"A": {"b": {"dtype": "complex"}}}`,
		"unknown unit":                 `{"A": {"b": {"unit": "parsec"}}}`,
		"unit on string":               `{"A": {"b": {"dtype": "str", "unit": "m"}}}`,
		"shape on bytes":               `{"A": {"b": {"dtype": "bytes", "shape": [2]}}}`,
		"zero axis":                    `{"A": {"b": {"shape": [0]}}}`,
		"too many dims":                `{"A": {"b": {"shape": [1, 1, 1, 1, 1, 1]}}}`,
		"reserved field":               `{"A": {"_meta": {}}}`,
		"bad field name":               `{"A": {"2b": {}}}`,
		"bad collection name":          `{"2A": {"b": {}}}`,
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSelfLink(t *testing.T) {
	// collections may link to themselves
	if _, err := Parse([]byte(`{"Node": {"next": {"link": "Node"}}}`)); err != nil {
		t.Fatalf("self link rejected: %v", err)
	}
}

package dotpath

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		path     string
		expected Path
	}{
		{"", nil},
		{"beam", Path{{Stem: "beam", Index: -1}}},
		{"dot[1].notation", Path{{Stem: "dot", Index: 1}, {Stem: "notation", Index: -1}}},
		{"csState[0].rveStates[12].rve", Path{
			{Stem: "csState", Index: 0},
			{Stem: "rveStates", Index: 12},
			{Stem: "rve", Index: -1},
		}},
		{"a_b2[0]", Path{{Stem: "a_b2", Index: 0}}},
	} {
		p, err := Parse(tc.path)
		if err != nil {
			t.Fatalf("parsing %q: %v", tc.path, err)
		}
		if !reflect.DeepEqual(p, tc.expected) {
			t.Errorf("parsing %q: got %#v, expected %#v", tc.path, p, tc.expected)
		}
		if tc.path != "" && p.String() != tc.path {
			t.Errorf("roundtrip of %q produced %q", tc.path, p.String())
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, path := range []string{
		"1abc",
		"a..b",
		"a[b]",
		"a[1",
		"a b",
		"a.",
		"[0]",
		"a[-1]",
	} {
		if _, err := Parse(path); err == nil {
			t.Errorf("expected parse of %q to fail", path)
		}
	}
}

func TestParseRef(t *testing.T) {
	for _, tc := range []struct {
		ref    string
		up     int
		path   string
	}{
		{".beam.cs", 0, "beam.cs"},
		{"...beam.cs.rve", 2, "beam.cs.rve"},
		{"..rveStates[0]", 1, "rveStates[0]"},
	} {
		r, err := ParseRef(tc.ref)
		if err != nil {
			t.Fatalf("parsing %q: %v", tc.ref, err)
		}
		if r.Up != tc.up {
			t.Errorf("%q: up %d, expected %d", tc.ref, r.Up, tc.up)
		}
		if r.Path.String() != tc.path {
			t.Errorf("%q: path %q, expected %q", tc.ref, r.Path.String(), tc.path)
		}
		if r.String() != tc.ref {
			t.Errorf("roundtrip of %q produced %q", tc.ref, r.String())
		}
	}

	for _, ref := range []string{"beam", ".", "...", ".3x", ""} {
		if _, err := ParseRef(ref); err == nil {
			t.Errorf("expected parse of %q to fail", ref)
		}
	}
}

func TestIsRef(t *testing.T) {
	if !IsRef(".beam.cs") || IsRef("beam.cs") || IsRef("632a8d1e9f4b2c0011aa3344") {
		t.Errorf("IsRef misclassified a value")
	}
}

package quantity

import (
	"math"
	"testing"
)

func TestParseConversions(t *testing.T) {
	for _, tc := range []struct {
		from   string
		to     string
		factor float64
	}{
		{"mm", "m", 1e-3},
		{"km", "m", 1e3},
		{"cm", "m", 1e-2},
		{"um", "m", 1e-6},
		{"g", "kg", 1e-3},
		{"mg", "kg", 1e-6},
		{"g/cm3", "kg/m3", 1e3},
		{"kN*m", "N*m", 1e3},
		{"kN*m", "J", 1e3},
		{"MPa", "Pa", 1e6},
		{"GPa", "MPa", 1e3},
		{"um/m", "none", 1e-6},
		{"none", "none", 1},
		{"min", "s", 60},
		{"h", "min", 60},
		{"hPa", "Pa", 1e2},
		{"m3", "m3", 1},
		{"s^-2", "s-2", 1},
	} {
		from, err := Parse(tc.from)
		if err != nil {
			t.Fatalf("parsing %q: %v", tc.from, err)
		}
		to, err := Parse(tc.to)
		if err != nil {
			t.Fatalf("parsing %q: %v", tc.to, err)
		}

		factor, err := from.ConversionFactor(to)
		if err != nil {
			t.Fatalf("converting %q -> %q: %v", tc.from, tc.to, err)
		}
		if math.Abs(factor-tc.factor)/tc.factor > 1e-12 {
			t.Errorf("%q -> %q: factor %v, expected %v", tc.from, tc.to, factor, tc.factor)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, expr := range []string{"", "xyz", "m/", "*m", "m**", "knone", "m^x"} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("expected parse of %q to fail", expr)
		}
	}
}

func TestIncompatibleUnits(t *testing.T) {
	kg := MustParse("kg")
	m := MustParse("m")

	if kg.Compatible(m) {
		t.Fatalf("kg should not be compatible with m")
	}
	if _, err := kg.ConversionFactor(m); err == nil {
		t.Fatalf("expected conversion error")
	} else if _, ok := err.(ErrUnitIncompatible); !ok {
		t.Fatalf("unexpected error type %T: %v", err, err)
	}
}

func TestDimensionless(t *testing.T) {
	for expr, want := range map[string]bool{
		"none": true,
		"um/m": true,
		"m/m":  true,
		"m":    false,
		"kN*m": false,
	} {
		if got := MustParse(expr).Dimensionless(); got != want {
			t.Errorf("%q: Dimensionless() = %v, expected %v", expr, got, want)
		}
	}
}

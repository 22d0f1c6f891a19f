package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// dimensions holds the exponent of each SI base dimension of a unit, in the
// order length, mass, time, current, temperature, amount, luminosity.
type dimensions [7]int

func (d dimensions) add(o dimensions) dimensions {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

func (d dimensions) scale(n int) dimensions {
	for i := range d {
		d[i] *= n
	}
	return d
}

var (
	dimless     = dimensions{}
	dimLength   = dimensions{1, 0, 0, 0, 0, 0, 0}
	dimMass     = dimensions{0, 1, 0, 0, 0, 0, 0}
	dimTime     = dimensions{0, 0, 1, 0, 0, 0, 0}
	dimCurrent  = dimensions{0, 0, 0, 1, 0, 0, 0}
	dimTemp     = dimensions{0, 0, 0, 0, 1, 0, 0}
	dimAmount   = dimensions{0, 0, 0, 0, 0, 1, 0}
	dimLuminous = dimensions{0, 0, 0, 0, 0, 0, 1}
)

// Unit is a parsed unit expression. The zero value is not a valid unit; use
// Parse or MustParse.
type Unit struct {
	symbol string
	dims   dimensions
	factor float64
}

// baseUnit describes a unit symbol the parser accepts, possibly decorated
// with an SI prefix. The factor converts one of the unit to the coherent SI
// representation (kilogram for mass, hence g carries 1e-3).
type baseUnit struct {
	dims   dimensions
	factor float64
}

var unitTable = map[string]baseUnit{
	"m":    {dimLength, 1},
	"g":    {dimMass, 1e-3},
	"s":    {dimTime, 1},
	"A":    {dimCurrent, 1},
	"K":    {dimTemp, 1},
	"mol":  {dimAmount, 1},
	"cd":   {dimLuminous, 1},
	"Hz":   {dimTime.scale(-1), 1},
	"N":    {dimensions{1, 1, -2, 0, 0, 0, 0}, 1},
	"Pa":   {dimensions{-1, 1, -2, 0, 0, 0, 0}, 1},
	"J":    {dimensions{2, 1, -2, 0, 0, 0, 0}, 1},
	"W":    {dimensions{2, 1, -3, 0, 0, 0, 0}, 1},
	"C":    {dimensions{0, 0, 1, 1, 0, 0, 0}, 1},
	"V":    {dimensions{2, 1, -3, -1, 0, 0, 0}, 1},
	"min":  {dimTime, 60},
	"h":    {dimTime, 3600},
	"none": {dimless, 1},
}

// prefixable units accept SI prefixes; the aggregate ones (min, h, none) do
// not.
var noPrefix = map[string]bool{"min": true, "h": true, "none": true}

var prefixTable = map[string]float64{
	"y": 1e-24, "z": 1e-21, "a": 1e-18, "f": 1e-15, "p": 1e-12,
	"n": 1e-9, "u": 1e-6, "µ": 1e-6, "m": 1e-3, "c": 1e-2, "d": 1e-1,
	"da": 1e1, "h": 1e2, "k": 1e3, "M": 1e6, "G": 1e9, "T": 1e12,
	"P": 1e15, "E": 1e18,
}

// ErrUnitInvalid is returned when a unit expression cannot be parsed.
type ErrUnitInvalid struct {
	Unit   string
	Reason string
}

func (err ErrUnitInvalid) Error() string {
	return fmt.Sprintf("invalid unit %q: %s", err.Unit, err.Reason)
}

// ErrUnitIncompatible is returned when converting between units of different
// dimensions.
type ErrUnitIncompatible struct {
	From string
	To   string
}

func (err ErrUnitIncompatible) Error() string {
	return fmt.Sprintf("unit %q not convertible to %q", err.From, err.To)
}

// Parse parses a unit expression such as "kg/m3", "kN*m" or "um/m". Atoms
// are unit symbols with an optional SI prefix and an optional integer
// exponent, composed with "*" and "/".
func Parse(s string) (Unit, error) {
	if s == "" {
		return Unit{}, ErrUnitInvalid{Unit: s, Reason: "empty expression"}
	}

	u := Unit{symbol: s, dims: dimless, factor: 1}
	rest := s
	sign := 1
	for {
		i := strings.IndexAny(rest, "*/")
		atom := rest
		if i >= 0 {
			atom = rest[:i]
		}

		dims, factor, err := parseAtom(atom)
		if err != nil {
			return Unit{}, ErrUnitInvalid{Unit: s, Reason: err.Error()}
		}
		if sign < 0 {
			dims = dims.scale(-1)
			factor = 1 / factor
		}
		u.dims = u.dims.add(dims)
		u.factor *= factor

		if i < 0 {
			break
		}
		if rest[i] == '/' {
			sign = -1
		} else {
			sign = 1
		}
		rest = rest[i+1:]
		if rest == "" {
			return Unit{}, ErrUnitInvalid{Unit: s, Reason: "trailing operator"}
		}
	}

	return u, nil
}

// MustParse is Parse for statically known expressions; it panics on error.
func MustParse(s string) Unit {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// parseAtom handles a single symbol with optional prefix and exponent, such
// as "kN", "m3" or "s^-2".
func parseAtom(atom string) (dimensions, float64, error) {
	if atom == "" {
		return dimless, 0, fmt.Errorf("empty atom")
	}

	sym := atom
	exp := 1
	if i := strings.IndexFunc(atom, func(r rune) bool {
		return r == '^' || r == '-' || (r >= '0' && r <= '9')
	}); i > 0 {
		sym = atom[:i]
		expStr := strings.TrimPrefix(atom[i:], "^")
		n, err := strconv.Atoi(expStr)
		if err != nil {
			return dimless, 0, fmt.Errorf("bad exponent %q", atom[i:])
		}
		exp = n
	}

	base, err := lookupSymbol(sym)
	if err != nil {
		return dimless, 0, err
	}
	return base.dims.scale(exp), math.Pow(base.factor, float64(exp)), nil
}

func lookupSymbol(sym string) (baseUnit, error) {
	if b, ok := unitTable[sym]; ok {
		return b, nil
	}

	// Prefixed symbol; try the two-rune prefix first so "da" wins over "d".
	for _, n := range []int{2, 1} {
		if len(sym) <= n {
			continue
		}
		prefix, restSym := sym[:n], sym[n:]
		factor, ok := prefixTable[prefix]
		if !ok {
			continue
		}
		base, ok := unitTable[restSym]
		if !ok || noPrefix[restSym] {
			continue
		}
		base.factor *= factor
		return base, nil
	}

	return baseUnit{}, fmt.Errorf("unknown unit symbol %q", sym)
}

// String returns the original spelling of the unit expression.
func (u Unit) String() string {
	return u.symbol
}

// Dimensionless reports whether the unit carries no dimensions, such as
// "none" or "um/m".
func (u Unit) Dimensionless() bool {
	return u.dims == dimless
}

// Compatible reports whether values can be converted between the two units.
func (u Unit) Compatible(o Unit) bool {
	return u.dims == o.dims
}

// ConversionFactor returns the multiplier taking a value expressed in u to
// the same value expressed in to.
func (u Unit) ConversionFactor(to Unit) (float64, error) {
	if !u.Compatible(to) {
		return 0, ErrUnitIncompatible{From: u.symbol, To: to.symbol}
	}
	return u.factor / to.factor, nil
}

// Package dotpath implements the dot path grammar used to navigate stored
// documents, such as "csState[0].rveStates[1].rve", and the relative
// reference form link fields may use inside a creation request.
package dotpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegexp matches one path component: a field stem followed by an
// optional decimal index in brackets. No whitespace is allowed anywhere in a
// path.
var segmentRegexp = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_]*)(?:\[([0-9]+)\])?$`)

// Segment is one component of a parsed path.
type Segment struct {
	// Stem is the field name.
	Stem string

	// Index is the bracketed sequence index, or -1 when absent.
	Index int
}

// Indexed reports whether the segment carries a sequence index.
func (s Segment) Indexed() bool {
	return s.Index >= 0
}

func (s Segment) String() string {
	if s.Indexed() {
		return fmt.Sprintf("%s[%d]", s.Stem, s.Index)
	}
	return s.Stem
}

// Path is a parsed dot path. An empty path addresses the object itself.
type Path []Segment

// ErrPathSyntax is returned when a path does not match the grammar.
type ErrPathSyntax struct {
	Path      string
	Component string
}

func (err ErrPathSyntax) Error() string {
	return fmt.Sprintf("failed to parse path %q (component %q)", err.Path, err.Component)
}

// Parse parses a dot path. The empty string parses to the empty path.
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, ".")
	parsed := make(Path, len(parts))
	for i, part := range parts {
		m := segmentRegexp.FindStringSubmatch(part)
		if m == nil {
			return nil, ErrPathSyntax{Path: path, Component: part}
		}
		parsed[i] = Segment{Stem: m[1], Index: -1}
		if m[2] != "" {
			// The regexp guarantees decimal digits.
			parsed[i].Index, _ = strconv.Atoi(m[2])
		}
	}
	return parsed, nil
}

// String renders the path back to its dot notation.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Ref is a relative reference used by link fields during creation: one
// leading dot addresses the object the field belongs to, and each further
// dot climbs one level up the inline creation tree. The remaining path then
// descends through link fields.
type Ref struct {
	// Up is the number of levels to climb from the owning object.
	Up int

	// Path descends from the resulting object.
	Path Path
}

// IsRef reports whether s is spelled like a relative reference. Link values
// that are not references are raw object ids or inline documents.
func IsRef(s string) bool {
	return strings.HasPrefix(s, ".")
}

// ParseRef parses a relative reference such as ".beam.cs" (a sibling path on
// the owning object) or "...beam.cs.rve" (two levels up, then down).
func ParseRef(s string) (Ref, error) {
	dots := 0
	for dots < len(s) && s[dots] == '.' {
		dots++
	}
	if dots == 0 {
		return Ref{}, ErrPathSyntax{Path: s, Component: s}
	}

	p, err := Parse(s[dots:])
	if err != nil {
		return Ref{}, err
	}
	if len(p) == 0 {
		return Ref{}, ErrPathSyntax{Path: s, Component: ""}
	}
	return Ref{Up: dots - 1, Path: p}, nil
}

// String renders the reference back to its dotted form.
func (r Ref) String() string {
	return strings.Repeat(".", r.Up+1) + r.Path.String()
}

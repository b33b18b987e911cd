// Package component has the value objects that get attached to atoms.
// A component is immutable. It has one or more properties (a name, an
// x coordinate, a residue name and its one letter code, ...) and
// declares which aspects it provides.
//
// Every kind of component is described by a Type. A Type is checked
// once, when it is made: each aspect it claims must be backed by a
// property of the same name. After that there are no checks per
// instance.
package component

import (
	"strconv"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/cockroachdb/errors"
)

var (
	ErrDefinition     = errors.New("bad component type definition")
	ErrBadValue       = errors.New("bad component value")
	ErrUnknownResidue = errors.New("unknown residue code")
)

// ParseFunc turns raw text from a file into property values, one per
// property of the type, in the same order.
type ParseFunc func(raw []string) ([]Value, error)

// Type describes one kind of component.
type Type struct {
	name    string
	props   []string
	aspects []aspect.Aspect
	parse   ParseFunc
}

// NewType checks and builds a component type. It fails if an aspect is
// claimed that the properties cannot satisfy, or if a property is named
// twice.
func NewType(name string, props []string, parse ParseFunc, asps ...aspect.Aspect) (*Type, error) {
	if name == "" {
		return nil, errors.Wrap(ErrDefinition, "type has no name")
	}
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		if seen[p] {
			return nil, errors.Wrapf(ErrDefinition, "%s: property %q given twice", name, p)
		}
		seen[p] = true
	}
	var missing []string
	for _, a := range asps {
		if a.IsZero() {
			return nil, errors.Wrapf(ErrDefinition, "%s: zero aspect", name)
		}
		if !seen[a.Name()] {
			missing = append(missing, a.Name())
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrDefinition, "%s doesn't implement %s", name, strings.Join(missing, ", "))
	}
	t := &Type{
		name:    name,
		props:   append([]string(nil), props...),
		aspects: append([]aspect.Aspect(nil), asps...),
		parse:   parse,
	}
	aspect.Sort(t.aspects)
	return t, nil
}

var builtin []*Type

// mustType is NewType for the built in types. A broken definition is a
// programming error, so it panics during package initialisation.
func mustType(name string, props []string, parse ParseFunc, asps ...aspect.Aspect) *Type {
	t, err := NewType(name, props, parse, asps...)
	if err != nil {
		panic(err.Error())
	}
	builtin = append(builtin, t)
	return t
}

// Types returns the built in component types in the order they were
// defined.
func Types() []*Type { return append([]*Type(nil), builtin...) }

func (t *Type) Name() string   { return t.name }
func (t *Type) String() string { return t.name }

// Props returns the property names in declaration order.
func (t *Type) Props() []string { return append([]string(nil), t.props...) }

// Aspects returns the declared aspects, sorted.
func (t *Type) Aspects() []aspect.Aspect { return append([]aspect.Aspect(nil), t.aspects...) }

// Parse builds a component from raw field text.
func (t *Type) Parse(raw ...string) (Component, error) {
	if t.parse == nil {
		return Component{}, errors.Newf("%s cannot be parsed from text", t.name)
	}
	vals, err := t.parse(raw)
	if err != nil {
		return Component{}, errors.Wrapf(err, "%s", t.name)
	}
	return t.Make(vals...)
}

// Make builds a component from values that are already typed.
func (t *Type) Make(vals ...Value) (Component, error) {
	if len(vals) != len(t.props) {
		return Component{}, errors.Wrapf(ErrBadValue, "%s wants %d values, got %d", t.name, len(t.props), len(vals))
	}
	for i, v := range vals {
		if v.IsZero() {
			return Component{}, errors.Wrapf(ErrBadValue, "%s: no value for %s", t.name, t.props[i])
		}
	}
	return Component{typ: t, vals: append([]Value(nil), vals...)}, nil
}

// mustMake is used by constructors whose arguments are typed already.
func (t *Type) mustMake(vals ...Value) Component {
	c, err := t.Make(vals...)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// Component is one immutable bundle of properties.
type Component struct {
	typ  *Type
	vals []Value
}

func (c Component) Type() *Type  { return c.typ }
func (c Component) IsZero() bool { return c.typ == nil }

// Aspects returns the aspects this component provides.
func (c Component) Aspects() []aspect.Aspect {
	if c.typ == nil {
		return nil
	}
	return c.typ.Aspects()
}

// Props returns the names of the properties
func (c Component) Props() []string {
	if c.typ == nil {
		return nil
	}
	return c.typ.Props()
}

// Get returns one property.
func (c Component) Get(prop string) (Value, bool) {
	if c.typ == nil {
		return Value{}, false
	}
	for i, p := range c.typ.props {
		if p == prop {
			return c.vals[i], true
		}
	}
	return Value{}, false
}

// String looks like Coordinates(x=1, y=2.5, z=0).
func (c Component) String() string {
	if c.typ == nil {
		return "Component()"
	}
	var b strings.Builder
	b.WriteString(c.typ.name)
	b.WriteByte('(')
	for i, p := range c.typ.props {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p)
		b.WriteByte('=')
		b.WriteString(c.vals[i].String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal compares canonical strings.
func (c Component) Equal(d Component) bool { return c.String() == d.String() }

// Parsers for the common one-property cases.

func oneRaw(raw []string) (string, error) {
	if len(raw) != 1 {
		return "", errors.Wrapf(ErrBadValue, "want 1 value, got %d", len(raw))
	}
	return strings.TrimSpace(raw[0]), nil
}

func parseString(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, errors.Wrap(ErrBadValue, "empty string")
	}
	return []Value{Str(s)}, nil
}

func parseInt(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Wrapf(ErrBadValue, "%q is not an integer", s)
	}
	return []Value{Int(i)}, nil
}

func parseFloat(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrBadValue, "%q is not a number", s)
	}
	return []Value{Float(f)}, nil
}

// parseFloats is for types with several float properties, like Coordinates.
func parseFloats(raw []string) ([]Value, error) {
	ret := make([]Value, len(raw))
	for i, r := range raw {
		v, err := parseFloat([]string{r})
		if err != nil {
			return nil, err
		}
		ret[i] = v[0]
	}
	return ret, nil
}

// Package atom has the Atom, a bag of components indexed by aspect and
// by property name. The most recently added component wins every
// lookup. Nothing is ever removed.
package atom

import (
	"sort"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/cockroachdb/errors"
)

var ErrMissingProperty = errors.New("atom has no such property")

// Atom is not safe for concurrent use. It is owned by one pipeline stage
// at a time.
type Atom struct {
	byAspect map[aspect.Aspect][]component.Component
	byProp   map[string][]component.Component
	order    []component.Component
}

// New makes an atom and adds the components in order.
func New(cs ...component.Component) *Atom {
	a := &Atom{
		byAspect: make(map[aspect.Aspect][]component.Component),
		byProp:   make(map[string][]component.Component),
	}
	for _, c := range cs {
		a.Add(c)
	}
	return a
}

// Add pushes c onto the stack of every aspect and property it provides.
// A zero component is ignored.
func (a *Atom) Add(c component.Component) {
	if c.IsZero() {
		return
	}
	for _, asp := range c.Aspects() {
		a.byAspect[asp] = append(a.byAspect[asp], c)
	}
	for _, p := range c.Props() {
		a.byProp[p] = append(a.byProp[p], c)
	}
	a.order = append(a.order, c)
}

// Lookup returns the value of a property from the topmost component
// that has it.
func (a *Atom) Lookup(prop string) (component.Value, bool) {
	stk := a.byProp[prop]
	if len(stk) == 0 {
		return component.Value{}, false
	}
	return stk[len(stk)-1].Get(prop)
}

// Get is Lookup, but says why it failed.
func (a *Atom) Get(prop string) (component.Value, error) {
	if v, ok := a.Lookup(prop); ok {
		return v, nil
	}
	return component.Value{}, errors.Wrapf(ErrMissingProperty, "%q", prop)
}

// Text returns the canonical string form of a property.
func (a *Atom) Text(prop string) (string, error) {
	v, err := a.Get(prop)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (a *Atom) Int(prop string) (int, error) {
	v, err := a.Get(prop)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, errors.Newf("property %q is %q, not an integer", prop, v)
	}
	return i, nil
}

func (a *Atom) Float(prop string) (float64, error) {
	v, err := a.Get(prop)
	if err != nil {
		return 0, err
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, errors.Newf("property %q is %q, not a number", prop, v)
	}
	return f, nil
}

// Top returns the component that currently provides an aspect.
func (a *Atom) Top(asp aspect.Aspect) (component.Component, bool) {
	stk := a.byAspect[asp]
	if len(stk) == 0 {
		return component.Component{}, false
	}
	return stk[len(stk)-1], true
}

// Has is true if the topmost component for any aspect is of type t.
func (a *Atom) Has(t *component.Type) bool {
	for _, stk := range a.byAspect {
		if stk[len(stk)-1].Type() == t {
			return true
		}
	}
	return false
}

// Aspects returns the aspects the atom provides, sorted.
func (a *Atom) Aspects() []aspect.Aspect {
	ret := make([]aspect.Aspect, 0, len(a.byAspect))
	for asp := range a.byAspect {
		ret = append(ret, asp)
	}
	aspect.Sort(ret)
	return ret
}

// Components returns the components that are on top of at least one
// aspect stack, once each, ordered by their string form.
func (a *Atom) Components() []component.Component {
	seen := make(map[string]bool)
	var ret []component.Component
	for _, stk := range a.byAspect {
		c := stk[len(stk)-1]
		s := c.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].String() < ret[j].String() })
	return ret
}

// String is the short form: Atom(name=CA, x=1.5, ...) with properties
// sorted by name.
func (a *Atom) String() string {
	props := make([]string, 0, len(a.byProp))
	for p := range a.byProp {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	b.WriteString("Atom(")
	for i, p := range props {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := a.Lookup(p)
		b.WriteString(p)
		b.WriteByte('=')
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Long lists the full components, one per line.
func (a *Atom) Long() string {
	cs := a.Components()
	lines := make([]string, len(cs))
	for i, c := range cs {
		lines[i] = c.String()
	}
	return "Atom(\n\t" + strings.Join(lines, "\n\t") + "\n\t)"
}

// Equal compares short forms, so the order of adding does not matter.
func (a *Atom) Equal(b *Atom) bool { return a.String() == b.String() }

// Compare gives a total order on short forms.
func (a *Atom) Compare(b *Atom) int { return strings.Compare(a.String(), b.String()) }

// Clone copies the atom. The components are shared since they are
// immutable.
func (a *Atom) Clone() *Atom {
	return New(a.order...)
}

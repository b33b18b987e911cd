package atom

import (
	"sort"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/cockroachdb/errors"
)

var ErrBadRecipe = errors.New("bad recipe")

const (
	keyAnd = "and"
	keyOr  = "or"
)

// Recipe is a tree of "and" and "or" over aspects. A term is an
// aspect.Aspect or another Recipe. If a Recipe has more than one key,
// all of them must hold.
type Recipe map[string][]any

// And and Or build one level of a recipe.
func And(terms ...any) Recipe { return Recipe{keyAnd: terms} }
func Or(terms ...any) Recipe  { return Recipe{keyOr: terms} }

// keys are sorted so evaluation order does not depend on the map.
func (r Recipe) keys() []string {
	ret := make([]string, 0, len(r))
	for k := range r {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Validate checks the keys and term types without an atom.
func (r Recipe) Validate() error {
	for _, k := range r.keys() {
		if k != keyAnd && k != keyOr {
			return errors.Wrapf(ErrBadRecipe, "unknown combinator %q", k)
		}
		for _, term := range r[k] {
			switch x := term.(type) {
			case aspect.Aspect:
				if x.IsZero() {
					return errors.Wrap(ErrBadRecipe, "zero aspect")
				}
			case Recipe:
				if err := x.Validate(); err != nil {
					return err
				}
			default:
				return errors.Wrapf(ErrBadRecipe, "term %v is neither aspect nor recipe", term)
			}
		}
	}
	return nil
}

// Aspects lists every aspect named anywhere in the recipe, sorted and
// without repeats.
func (r Recipe) Aspects() []aspect.Aspect {
	seen := make(map[aspect.Aspect]bool)
	var walk func(Recipe)
	walk = func(r Recipe) {
		for _, terms := range r {
			for _, term := range terms {
				switch x := term.(type) {
				case aspect.Aspect:
					seen[x] = true
				case Recipe:
					walk(x)
				}
			}
		}
	}
	walk(r)
	ret := make([]aspect.Aspect, 0, len(seen))
	for a := range seen {
		ret = append(ret, a)
	}
	aspect.Sort(ret)
	return ret
}

// Implements takes an aspect or a recipe. Anything else is simply not
// implemented. A recipe with an unknown key is an error.
func (a *Atom) Implements(x any) (bool, error) {
	switch x := x.(type) {
	case aspect.Aspect:
		_, ok := a.byAspect[x]
		return ok, nil
	case Recipe:
		return a.eval(x)
	}
	return false, nil
}

func (a *Atom) eval(r Recipe) (bool, error) {
	for _, k := range r.keys() {
		var ok bool
		var err error
		switch k {
		case keyAnd:
			ok, err = a.allOf(r[k])
		case keyOr:
			ok, err = a.anyOf(r[k])
		default:
			return false, errors.Wrapf(ErrBadRecipe, "unknown combinator %q", k)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *Atom) allOf(terms []any) (bool, error) {
	for _, term := range terms {
		ok, err := a.Implements(term)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *Atom) anyOf(terms []any) (bool, error) {
	for _, term := range terms {
		ok, err := a.Implements(term)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Missing lists the aspects of r the atom does not provide. It is for
// error messages.
func (a *Atom) Missing(r Recipe) []aspect.Aspect {
	var ret []aspect.Aspect
	for _, asp := range r.Aspects() {
		if _, ok := a.byAspect[asp]; !ok {
			ret = append(ret, asp)
		}
	}
	return ret
}

package atomiter

import (
	"sort"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/cockroachdb/errors"
)

// Match says which values a filter looks for. Exactly one of the two
// must be non-nil.
type Match struct {
	AnyOf  []string // keep a group if a member has one of these
	NoneOf []string // drop a group if a member has one of these
}

func AnyOf(v ...string) Match  { return Match{AnyOf: append([]string{}, v...)} }
func NoneOf(v ...string) Match { return Match{NoneOf: append([]string{}, v...)} }

func toSet(v []string) map[string]bool {
	m := make(map[string]bool, len(v))
	for _, s := range v {
		m[s] = true
	}
	return m
}

// hits says if any member has a key value in set. Members without the
// key never match.
func hits(g Group, key string, set map[string]bool) bool {
	for _, a := range g {
		if v, ok := a.Lookup(key); ok && set[v.String()] {
			return true
		}
	}
	return false
}

// Filter drops whole groups. Values are compared by their string form.
func (it *Iterator) Filter(key string, m Match) (*Iterator, error) {
	if (m.AnyOf == nil) == (m.NoneOf == nil) {
		return nil, errors.Wrapf(ErrFilterSpec, "filter on %s", key)
	}
	keep := m.AnyOf != nil
	set := toSet(m.AnyOf)
	if !keep {
		set = toSet(m.NoneOf)
	}
	return it.derive(func() (Group, error) {
		for {
			g, err := it.Next()
			if err != nil {
				return nil, err
			}
			if hits(g, key, set) == keep {
				return g, nil
			}
		}
	}), nil
}

type byValue struct {
	atoms []*atom.Atom
	vals  []component.Value
}

func (b byValue) Len() int           { return len(b.atoms) }
func (b byValue) Less(i, j int) bool { return b.vals[i].Less(b.vals[j]) }
func (b byValue) Swap(i, j int) {
	b.atoms[i], b.atoms[j] = b.atoms[j], b.atoms[i]
	b.vals[i], b.vals[j] = b.vals[j], b.vals[i]
}

// Sort reads everything that is left, orders the atoms by key and hands
// them out one per group. Numbers sort as numbers. Atoms with the same
// value keep their order. An atom without key is an error.
func (it *Iterator) Sort(key string) *Iterator {
	var atoms []*atom.Atom
	loaded := false
	i := 0
	return it.derive(func() (Group, error) {
		if !loaded {
			loaded = true
			all, err := drain(it)
			if err != nil {
				return nil, err
			}
			vals := make([]component.Value, len(all))
			for j, a := range all {
				if vals[j], err = a.Get(key); err != nil {
					return nil, errors.Wrapf(err, "sorting by %s, atom %d", key, j+1)
				}
			}
			sort.Stable(byValue{all, vals})
			atoms = all
		}
		if i >= len(atoms) {
			return nil, Done
		}
		i++
		return Group{atoms[i-1]}, nil
	})
}

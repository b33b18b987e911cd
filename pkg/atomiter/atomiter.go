// Package atomiter is a pipeline over groups of atoms. Each stage pulls
// one group at a time from the stage before it. Nothing runs in the
// background and nothing is read ahead, except where a stage has to
// see everything (Collect and Sort).
package atomiter

import (
	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/formats"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/cockroachdb/errors"
)

// Group is a non-empty run of atoms that travel together.
type Group []*atom.Atom

var (
	Done             = errors.New("no more groups")
	ErrFilterSpec    = errors.New("filter needs exactly one of any of and none of")
	ErrPathCollision = errors.New("output file already written")
	ErrTemplate      = errors.New("path template does not match the path fields")
)

// Iterator hands out groups until it returns Done. Once Next has
// returned an error, it returns that error for ever.
type Iterator struct {
	src func() (Group, error)
	reg *format.Registry
	err error
}

// Next returns the next group, or Done.
func (it *Iterator) Next() (Group, error) {
	if it.err != nil {
		return nil, it.err
	}
	g, err := it.src()
	if err != nil {
		it.err = err
		return nil, err
	}
	return g, nil
}

// All drains the iterator.
func (it *Iterator) All() ([]Group, error) {
	var groups []Group
	for {
		g, err := it.Next()
		if errors.Is(err, Done) {
			return groups, nil
		}
		if err != nil {
			return groups, err
		}
		groups = append(groups, g)
	}
}

// WithRegistry sets the formats Write uses. Later stages inherit it.
func (it *Iterator) WithRegistry(r *format.Registry) *Iterator {
	it.reg = r
	return it
}

func (it *Iterator) registry() *format.Registry {
	if it.reg == nil {
		return formats.Default()
	}
	return it.reg
}

// derive makes the next stage.
func (it *Iterator) derive(src func() (Group, error)) *Iterator {
	return &Iterator{src: src, reg: it.reg}
}

// FromGroups hands out the groups as they are. Empty groups are
// skipped.
func FromGroups(groups []Group) *Iterator {
	i := 0
	return &Iterator{src: func() (Group, error) {
		for ; i < len(groups); i++ {
			if len(groups[i]) > 0 {
				i++
				return groups[i-1], nil
			}
		}
		return nil, Done
	}}
}

// FromSlice makes each atom its own group.
func FromSlice(atoms []*atom.Atom) *Iterator {
	i := 0
	return &Iterator{src: func() (Group, error) {
		if i >= len(atoms) {
			return nil, Done
		}
		i++
		return Group{atoms[i-1]}, nil
	}}
}

// ReadWith reads a file with the format the registry picks for it.
func ReadWith(reg *format.Registry, path string) (*Iterator, error) {
	f, err := formats.ForRead(reg, path)
	if err != nil {
		return nil, err
	}
	atoms, err := f.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromSlice(atoms).WithRegistry(reg), nil
}

// Read is ReadWith and the default formats.
func Read(path string) (*Iterator, error) { return ReadWith(formats.Default(), path) }

// drain pulls everything left into one slice.
func drain(it *Iterator) ([]*atom.Atom, error) {
	var all []*atom.Atom
	for {
		g, err := it.Next()
		if errors.Is(err, Done) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, g...)
	}
}

// Collect puts everything left into one group, so it goes to one file.
func (it *Iterator) Collect() *Iterator {
	done := false
	return it.derive(func() (Group, error) {
		if done {
			return nil, Done
		}
		done = true
		all, err := drain(it)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, Done
		}
		return all, nil
	})
}

func logWriteFail(n int, path string, err error) {
	logger.Logger.Warnw("group not written", "group", n, "path", path, "error", err)
}

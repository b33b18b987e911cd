package atomiter

import (
	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/cockroachdb/errors"
)

type groupState byte

const (
	awaitingSource groupState = iota // queue is empty
	accumulating                     // taking atoms from the queue
	end                              // source is finished, buffer flushed
)

// grouper joins neighbouring atoms with the same value of key. It holds
// at most one upstream group in its queue plus the group being built.
type grouper struct {
	src   *Iterator
	key   string
	state groupState
	queue []*atom.Atom
	buf   Group
	last  string
}

func (g *grouper) next() (Group, error) {
	for {
		switch g.state {
		case end:
			return nil, Done
		case awaitingSource:
			grp, err := g.src.Next()
			if errors.Is(err, Done) {
				g.state = end
				if len(g.buf) == 0 {
					return nil, Done
				}
				out := g.buf
				g.buf = nil
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			g.queue = append(g.queue, grp...)
			g.state = accumulating
		case accumulating:
			if len(g.queue) == 0 {
				g.state = awaitingSource
				continue
			}
			a := g.queue[0]
			g.queue[0] = nil
			g.queue = g.queue[1:]
			v, err := a.Get(g.key)
			if err != nil {
				return nil, errors.Wrapf(err, "grouping by %s", g.key)
			}
			s := v.String()
			if len(g.buf) == 0 || s == g.last {
				g.buf = append(g.buf, a)
				g.last = s
				continue
			}
			out := g.buf
			g.buf = Group{a}
			g.last = s
			return out, nil
		}
	}
}

// GroupBy joins neighbouring atoms whose key values are the same. Input
// sorted by key gives one group per value. An atom without key is an
// error.
func (it *Iterator) GroupBy(key string) *Iterator {
	g := &grouper{src: it, key: key}
	return it.derive(g.next)
}

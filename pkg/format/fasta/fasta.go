// Package fasta reads and writes sequences. Every residue of a
// sequence becomes an atom with the residue, the sequence name as its
// entity and its place in the sequence, counting from 1.
package fasta

import (
	"bufio"
	"io"
	"os"
	"sort"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/andrew-torda/atomflow/pkg/zwrap"
	"github.com/cockroachdb/errors"
)

const cPerLine = 60

type Format struct{}

func New() *Format { return &Format{} }

func (*Format) Name() string         { return "fasta" }
func (*Format) Extensions() []string { return []string{".fasta", ".fa", ".faa"} }

func (*Format) Recipe() atom.Recipe {
	return atom.And(aspect.ResOLC, aspect.Entity, aspect.ResIndex)
}

// seqAtoms makes the atoms of one sequence. The kind of polymer is
// decided for the whole sequence.
func seqAtoms(rec record) ([]*atom.Atom, error) {
	if rec.seq == "" {
		return nil, nil
	}
	ent, err := component.EntityType.Parse(rec.cmmt)
	if err != nil {
		return nil, errors.Wrap(err, "sequence without a name")
	}
	polymer, err := component.PolymerOf(rec.seq)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence %s", rec.cmmt)
	}
	atoms := make([]*atom.Atom, len(rec.seq))
	for i := range rec.seq {
		res, err := component.ResidueForLetter(rec.seq[i:i+1], polymer)
		if err != nil {
			return nil, errors.Wrapf(err, "sequence %s position %d", rec.cmmt, i+1)
		}
		atoms[i] = atom.New(res, ent, component.ResIndex(i+1))
	}
	return atoms, nil
}

// Read gets the atoms of every sequence in r. Empty sequences give no
// atoms.
func Read(r io.Reader) ([]*atom.Atom, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	var atoms []*atom.Atom
	for _, rec := range recs {
		a, err := seqAtoms(rec)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a...)
	}
	return atoms, nil
}

func (*Format) ReadFile(path string) ([]*atom.Atom, error) {
	fz, err := zwrap.Open(path)
	if err != nil {
		return nil, err
	}
	defer fz.Close()
	atoms, err := Read(fz)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	logger.Logger.Debugw("read fasta", "file", path, "count", len(atoms))
	return atoms, nil
}

// chainSeq is the atoms of one entity and chain.
type chainSeq struct {
	entity string
	atoms  []*atom.Atom
	rindex []int
}

func (c *chainSeq) Len() int           { return len(c.atoms) }
func (c *chainSeq) Less(i, j int) bool { return c.rindex[i] < c.rindex[j] }
func (c *chainSeq) Swap(i, j int) {
	c.atoms[i], c.atoms[j] = c.atoms[j], c.atoms[i]
	c.rindex[i], c.rindex[j] = c.rindex[j], c.rindex[i]
}

func (c *chainSeq) String() string {
	b := make([]byte, 0, len(c.atoms))
	for _, a := range c.atoms {
		olc, _ := a.Text("res_olc")
		b = append(b, olc...)
	}
	return string(b)
}

// Entry is one sequence as it will be written.
type Entry struct {
	Name, Seq string
}

// Entries groups atoms by entity and chain, in the order they are first
// seen, and puts each group in residue order. A sequence that is the
// same as an earlier one with the same name is left out, so identical
// chains are written once. Atoms that do not fit the recipe are dropped.
func Entries(atoms []*atom.Atom) ([]Entry, int, error) {
	recipe := New().Recipe()
	var order []*chainSeq
	byKey := make(map[[2]string]*chainSeq)
	dropped := 0
	for _, a := range atoms {
		ok, err := a.Implements(recipe)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			dropped++
			continue
		}
		ent, _ := a.Text("entity")
		chain, _ := a.Text("chain")
		ri, err := a.Int("resindex")
		if err != nil {
			return nil, 0, err
		}
		key := [2]string{ent, chain}
		cs, ok := byKey[key]
		if !ok {
			cs = &chainSeq{entity: ent}
			byKey[key] = cs
			order = append(order, cs)
		}
		cs.atoms = append(cs.atoms, a)
		cs.rindex = append(cs.rindex, ri)
	}
	seen := make(map[Entry]bool)
	var entries []Entry
	for _, cs := range order {
		sort.Stable(cs)
		e := Entry{Name: cs.entity, Seq: cs.String()}
		if seen[e] {
			continue
		}
		seen[e] = true
		entries = append(entries, e)
	}
	return entries, dropped, nil
}

// Write puts entries on w, sequences broken every 60 residues.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		bw.WriteByte(cmmtChar)
		bw.WriteString(e.Name)
		bw.WriteByte(NL)
		s := e.Seq
		for ; len(s) > cPerLine; s = s[cPerLine:] {
			bw.WriteString(s[:cPerLine])
			bw.WriteByte(NL)
		}
		bw.WriteString(s)
		bw.WriteByte(NL)
	}
	return bw.Flush()
}

// ToFile writes the sequences of the atoms. It fails, writing nothing,
// only if no atom fits the recipe.
func (f *Format) ToFile(atoms []*atom.Atom, path string) ([]string, error) {
	entries, dropped, err := Entries(atoms)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.Wrapf(format.ErrRecipeMismatch, "no atom has %v", f.Recipe().Aspects())
	}
	fp, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := Write(fp, entries); err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "writing %s", path)
	}
	if err := fp.Close(); err != nil {
		return nil, err
	}
	logger.Logger.Debugw("wrote fasta", "file", path, "count", len(atoms), "dropped", dropped)
	return []string{path}, nil
}

// Package pdb reads and writes the ATOM and HETATM records of old style,
// fixed column PDB files. Everything else in a file is ignored.
package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/andrew-torda/atomflow/pkg/zwrap"
	"github.com/cockroachdb/errors"
)

const recLen = 80

// Format is stateless.
type Format struct{}

func New() *Format { return &Format{} }

func (*Format) Name() string         { return "pdb" }
func (*Format) Extensions() []string { return []string{".pdb", ".ent"} }

func (*Format) Recipe() atom.Recipe {
	return atom.And(aspect.Index, aspect.Element, aspect.ResName, aspect.Chain,
		aspect.ResIndex, aspect.CoordX, aspect.CoordY, aspect.CoordZ)
}

// field is one column range of a record, half open.
type field struct{ start, end int }

var (
	fSerial  = field{6, 11}
	fName    = field{12, 16}
	fAltLoc  = field{16, 17}
	fResName = field{17, 20}
	fChain   = field{21, 22}
	fResSeq  = field{22, 26}
	fICode   = field{26, 27}
	fX       = field{30, 38}
	fY       = field{38, 46}
	fZ       = field{46, 54}
	fOcc     = field{54, 60}
	fTemp    = field{60, 66}
	fElement = field{76, 78}
	fCharge  = field{78, 80}
)

func (f field) raw(line string) string  { return line[f.start:f.end] }
func (f field) trim(line string) string { return strings.TrimSpace(f.raw(line)) }

// isAtomRecord is true for ATOM and HETATM lines.
func isAtomRecord(line string) bool {
	if len(line) < 6 {
		return false
	}
	switch strings.TrimSpace(line[:6]) {
	case "ATOM", "HETATM":
		return true
	}
	return false
}

// pad makes short lines full length. Anything after the last column
// is dropped.
func pad(line string) string {
	if len(line) >= recLen {
		return line[:recLen]
	}
	return line + strings.Repeat(" ", recLen-len(line))
}

// nameField is the name column the writer would make from a name and an
// element: four character names as they are, two letter elements from
// the first column, everything else from the second.
func nameField(name, element string) string {
	switch {
	case len(name) >= 4:
		return name[:4]
	case len(element) == 2:
		return fmt.Sprintf("%-4s", name)
	}
	return fmt.Sprintf(" %-3s", name)
}

// AtomFromLine makes an atom from one record. The record must be ATOM
// or HETATM. Blank optional columns give no component. A blank element
// or chain leaves the atom without one, so it cannot be written back.
func AtomFromLine(line string) (*atom.Atom, error) {
	line = pad(line)
	a := atom.New(component.Section(strings.TrimSpace(line[:6])))
	parse := func(t *component.Type, f field, optional bool) error {
		s := f.trim(line)
		if s == "" && optional {
			return nil
		}
		c, err := t.Parse(s)
		if err != nil {
			return errors.Wrapf(err, "columns %d-%d", f.start+1, f.end)
		}
		a.Add(c)
		return nil
	}
	steps := []struct {
		t        *component.Type
		f        field
		optional bool
	}{
		{component.IndexType, fSerial, false},
		{component.NameType, fName, false},
		{component.AltLocType, fAltLoc, true},
		{component.ChainType, fChain, true},
		{component.ResIndexType, fResSeq, false},
		{component.InsertionType, fICode, true},
		{component.CoordXType, fX, false},
		{component.CoordYType, fY, false},
		{component.CoordZType, fZ, false},
		{component.OccupancyType, fOcc, true},
		{component.TempFactorType, fTemp, true},
		{component.ElementType, fElement, true},
		{component.ChargeType, fCharge, true},
	}
	for _, s := range steps {
		if err := parse(s.t, s.f, s.optional); err != nil {
			return nil, err
		}
	}
	res, err := component.ResidueFor(fResName.trim(line))
	if err != nil {
		return nil, errors.Wrapf(err, "columns %d-%d", fResName.start+1, fResName.end)
	}
	a.Add(res)

	raw := fName.raw(line)
	if raw != nameField(strings.TrimSpace(raw), fElement.trim(line)) {
		a.Add(component.NameField(raw))
	}
	return a, nil
}

// optText returns "" for a missing property.
func optText(a *atom.Atom, prop string) string {
	s, _ := a.Text(prop)
	return s
}

// optFloat formats a property with two decimals, or gives "".
func optFloat(a *atom.Atom, prop string) (string, error) {
	if _, ok := a.Lookup(prop); !ok {
		return "", nil
	}
	f, err := a.Float(prop)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f", f), nil
}

// LineFromAtom writes one record, without the newline.
func LineFromAtom(a *atom.Atom) (string, error) {
	section := optText(a, "section")
	if section == "" {
		section = "ATOM"
	}
	var ints [2]int
	for i, p := range []string{"index", "resindex"} {
		v, err := a.Int(p)
		if err != nil {
			return "", err
		}
		ints[i] = v
	}
	var xyz [3]float64
	for i, p := range []string{"x", "y", "z"} {
		v, err := a.Float(p)
		if err != nil {
			return "", err
		}
		xyz[i] = v
	}
	occ, err := optFloat(a, "occupancy")
	if err != nil {
		return "", err
	}
	temp, err := optFloat(a, "temp_f")
	if err != nil {
		return "", err
	}
	element := optText(a, "element")
	name := nameField(optText(a, "name"), element)
	if c, ok := a.Top(aspect.Name); ok && c.Type() == component.NameFieldType {
		name = fmt.Sprintf("%-4.4s", optText(a, "name_field"))
	}
	return fmt.Sprintf("%-6s%5d %4s%1s%3s %1s%4d%1s   %8.3f%8.3f%8.3f%6s%6s          %2s%-2s",
		section, ints[0], name, optText(a, "altloc"), optText(a, "resname"),
		optText(a, "chain"), ints[1], optText(a, "insertion"),
		xyz[0], xyz[1], xyz[2], occ, temp, element, optText(a, "fcharge")), nil
}

// Read gets all the atoms from r. name is only for messages.
func Read(r io.Reader, name string) ([]*atom.Atom, error) {
	var atoms []*atom.Atom
	scnr := bufio.NewScanner(r)
	for n := 1; scnr.Scan(); n++ {
		line := scnr.Text()
		if !isAtomRecord(line) {
			continue
		}
		a, err := AtomFromLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", name, n)
		}
		atoms = append(atoms, a)
	}
	if err := scnr.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return atoms, nil
}

// ReadFile reads a file, gzipped or not.
func (*Format) ReadFile(path string) ([]*atom.Atom, error) {
	fz, err := zwrap.Open(path)
	if err != nil {
		return nil, err
	}
	defer fz.Close()
	atoms, err := Read(fz, path)
	if err != nil {
		return nil, err
	}
	logger.Logger.Debugw("read pdb", "file", path, "count", len(atoms))
	return atoms, nil
}

// Write puts one record per atom on w.
func Write(w io.Writer, atoms []*atom.Atom) error {
	bw := bufio.NewWriter(w)
	for i, a := range atoms {
		line, err := LineFromAtom(a)
		if err != nil {
			return errors.Wrapf(err, "atom %d", i+1)
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ToFile writes all atoms to path. Nothing is written if an atom lacks
// something the recipe asks for.
func (f *Format) ToFile(atoms []*atom.Atom, path string) ([]string, error) {
	if err := format.Check(f, atoms); err != nil {
		return nil, err
	}
	fp, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := Write(fp, atoms); err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "writing %s", path)
	}
	if err := fp.Close(); err != nil {
		return nil, err
	}
	logger.Logger.Debugw("wrote pdb", "file", path, "count", len(atoms))
	return []string{path}, nil
}

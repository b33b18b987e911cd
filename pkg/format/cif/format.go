package cif

import (
	"os"
	"strconv"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/cockroachdb/errors"
)

const (
	atomSite = "_atom_site"
	entity   = "_entity"
)

// Format maps _atom_site rows to atoms.
type Format struct {
	Width int // for writing, DefaultWidth if zero
}

func New() *Format { return &Format{Width: DefaultWidth} }

func (*Format) Name() string         { return "cif" }
func (*Format) Extensions() []string { return []string{".cif", ".mmcif"} }

func (*Format) Recipe() atom.Recipe {
	return atom.And(aspect.Index, aspect.Name, aspect.Element, aspect.ResName,
		aspect.Chain, aspect.CoordX, aspect.CoordY, aspect.CoordZ)
}

// column says how one _atom_site field becomes a component and which
// property it is written from. absent is what is written when an atom
// has no value.
type column struct {
	field  string
	typ    *component.Type
	prop   string
	absent string
}

// columns are in the order they are written.
var columns = []column{
	{"group_PDB", component.SectionType, "section", "?"},
	{"id", component.IndexType, "index", "?"},
	{"type_symbol", component.ElementType, "element", "?"},
	{"label_atom_id", component.NameType, "name", "?"},
	{"label_alt_id", component.AltLocType, "altloc", "."},
	{"label_comp_id", nil, "resname", "?"},
	{"label_asym_id", component.ChainType, "chain", "?"},
	{"label_entity_id", nil, "entity", "?"},
	{"label_seq_id", component.ResIndexType, "resindex", "?"},
	{"pdbx_PDB_ins_code", component.InsertionType, "insertion", "."},
	{"Cartn_x", component.CoordXType, "x", "?"},
	{"Cartn_y", component.CoordYType, "y", "?"},
	{"Cartn_z", component.CoordZType, "z", "?"},
	{"occupancy", component.OccupancyType, "occupancy", "?"},
	{"B_iso_or_equiv", component.TempFactorType, "temp_f", "?"},
	{"pdbx_formal_charge", component.ChargeType, "fcharge", "?"},
}

var byField = func() map[string]column {
	m := make(map[string]column, len(columns))
	for _, c := range columns {
		m[c.field] = c
	}
	return m
}()

func isAbsent(v string) bool { return v == "?" || v == "." }

// ReadFile reads only the categories it needs.
func (f *Format) ReadFile(path string) ([]*atom.Atom, error) {
	d, err := ReadData(path, atomSite, entity)
	if err != nil {
		return nil, err
	}
	atoms, err := Atoms(d)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	logger.Logger.Debugw("read cif", "file", path, "count", len(atoms))
	return atoms, nil
}

// Atoms makes one atom per _atom_site row, in every data block in turn.
// Unknown fields are ignored and ? or . mean the value is missing.
func Atoms(d *Data) ([]*atom.Atom, error) {
	var atoms []*atom.Atom
	for _, name := range d.Names {
		ds := d.Datasets[name]
		site := ds.Category(atomSite)
		if site == nil {
			continue
		}
		ent := ds.Category(entity)
		for i := 0; i < site.Len(); i++ {
			a, err := rowAtom(site, ent, i)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d", atomSite, i+1)
			}
			atoms = append(atoms, a)
		}
	}
	return atoms, nil
}

func rowAtom(site, ent *Category, i int) (*atom.Atom, error) {
	a := atom.New()
	for _, f := range site.Fields {
		v := site.Values[f][i]
		if isAbsent(v) {
			continue
		}
		col, ok := byField[f]
		if !ok {
			continue
		}
		var c component.Component
		var err error
		switch f {
		case "label_comp_id":
			c, err = component.ResidueFor(v)
		case "label_entity_id":
			c, err = entityFor(ent, v)
		default:
			c, err = col.typ.Parse(v)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f)
		}
		a.Add(c)
	}
	return a, nil
}

// entityFor names an entity by its description. Without one, the id is
// the name.
func entityFor(ent *Category, id string) (component.Component, error) {
	if ent == nil {
		return component.Component{}, errors.Wrapf(ErrForeignKey, "entity %s but no %s category", id, entity)
	}
	row, err := ent.RowByID(id)
	if err != nil {
		return component.Component{}, errors.Wrapf(err, "%s", entity)
	}
	name := row["pdbx_description"]
	if name == "" || isAbsent(name) {
		name = id
	}
	return component.Entity(name), nil
}

// DataFor builds the Data that ToFile writes. Entities are numbered in
// the order they are first seen.
func DataFor(atoms []*atom.Atom, block string) (*Data, error) {
	d := NewData()
	ds, err := d.AddDataset("data_" + block)
	if err != nil {
		return nil, err
	}
	entIDs := make(map[string]string)
	var entNames []string
	for _, a := range atoms {
		if e, ok := a.Lookup("entity"); ok {
			if _, seen := entIDs[e.String()]; !seen {
				entNames = append(entNames, e.String())
				entIDs[e.String()] = strconv.Itoa(len(entNames))
			}
		}
	}
	if len(entNames) > 0 {
		ids := make([]string, len(entNames))
		for i, n := range entNames {
			ids[i] = entIDs[n]
		}
		if err := ds.AddLoop(entity, []string{"id", "pdbx_description"}, [][]string{ids, entNames}); err != nil {
			return nil, err
		}
	}
	fields := make([]string, len(columns))
	cols := make([][]string, len(columns))
	for j, col := range columns {
		fields[j] = col.field
		cols[j] = make([]string, len(atoms))
		for i, a := range atoms {
			v, ok := a.Lookup(col.prop)
			switch {
			case !ok:
				cols[j][i] = col.absent
			case col.prop == "entity":
				cols[j][i] = entIDs[v.String()]
			default:
				cols[j][i] = v.String()
			}
		}
	}
	if err := ds.AddLoop(atomSite, fields, cols); err != nil {
		return nil, err
	}
	return d, nil
}

// ToFile writes all atoms to one file, with the data block named after
// the file.
func (f *Format) ToFile(atoms []*atom.Atom, path string) ([]string, error) {
	if err := format.Check(f, atoms); err != nil {
		return nil, err
	}
	d, err := DataFor(atoms, strings.Join(strings.Fields(format.Stem(path)), "_"))
	if err != nil {
		return nil, err
	}
	fp, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := (Writer{Width: f.Width}).Write(fp, d); err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "writing %s", path)
	}
	if err := fp.Close(); err != nil {
		return nil, err
	}
	logger.Logger.Debugw("wrote cif", "file", path, "count", len(atoms))
	return []string{path}, nil
}

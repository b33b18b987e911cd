package cif_test

import (
	"bytes"
	"compress/gzip"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/brokenio"
	"github.com/andrew-torda/atomflow/pkg/component"
	"github.com/andrew-torda/atomflow/pkg/format/cif"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, s string, cats ...string) (*cif.Data, error) {
	t.Helper()
	rd := cif.NewReader(strings.NewReader(s))
	rd.SetCategories(cats...)
	return rd.Read()
}

func mustRead(t *testing.T, s string, cats ...string) *cif.Data {
	t.Helper()
	d, err := read(t, s, cats...)
	require.NoError(t, err, s)
	return d
}

func TestSplitCifLine(t *testing.T) {
	var tests = []struct {
		in   string
		want []string
	}{
		{"a b c", []string{"a", "b", "c"}},
		{"  a\tb  ", []string{"a", "b"}},
		{"'it's' x", []string{"it's", "x"}},
		{`"a b" 'c d'`, []string{"a b", "c d"}},
		{"O5' C5'", []string{"O5'", "C5'"}},
		{"''", []string{""}},
		{`'say "hi"'`, []string{`say "hi"`}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := cif.SplitCifLine(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"'open", `a "b c`, "'x'y"} {
		_, err := cif.SplitCifLine(bad)
		assert.True(t, errors.Is(err, cif.ErrMalformed), bad)
	}
}

const twoBlocks = `data_A
_x.y 1
loop_
_l.a
_l.b
1 2
3 4
data_B
_x.y 2
`

func TestTwoBlocks(t *testing.T) {
	d := mustRead(t, twoBlocks)
	want := &cif.Data{
		Names: []string{"data_A", "data_B"},
		Datasets: map[string]*cif.Dataset{
			"data_A": {
				Names: []string{"_x", "_l"},
				Categories: map[string]*cif.Category{
					"_x": {Fields: []string{"y"}, Values: map[string][]string{"y": {"1"}}},
					"_l": {Fields: []string{"a", "b"}, Loop: true,
						Values: map[string][]string{"a": {"1", "3"}, "b": {"2", "4"}}},
				},
			},
			"data_B": {
				Names: []string{"_x"},
				Categories: map[string]*cif.Category{
					"_x": {Fields: []string{"y"}, Values: map[string][]string{"y": {"2"}}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestItemsInTwoBlocks(t *testing.T) {
	d := mustRead(t, "data_A\n#\n_info.item 1\n#\ndata_B\n#\n_type.name X\n#")
	want := &cif.Data{
		Names: []string{"data_A", "data_B"},
		Datasets: map[string]*cif.Dataset{
			"data_A": {
				Names: []string{"_info"},
				Categories: map[string]*cif.Category{
					"_info": {Fields: []string{"item"}, Values: map[string][]string{"item": {"1"}}},
				},
			},
			"data_B": {
				Names: []string{"_type"},
				Categories: map[string]*cif.Category{
					"_type": {Fields: []string{"name"}, Values: map[string][]string{"name": {"X"}}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestImplicitBlock(t *testing.T) {
	d := mustRead(t, "# comment\n_a.b c\n")
	require.Equal(t, []string{""}, d.Names)
	v, ok := d.Dataset("").Category("_a").Scalar("b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

const textBlocks = `data_t
_s.title
;Crystal structure of a
 small protein
;
_s.note
  'on the next line'
loop_
_l.id
_l.text
1
;first
 block
;
2 plain
`

func TestTextBlocks(t *testing.T) {
	d := mustRead(t, textBlocks)
	ds := d.Dataset("data_t")
	title, _ := ds.Category("_s").Scalar("title")
	assert.Equal(t, "Crystal structure of a small protein", title)
	note, _ := ds.Category("_s").Scalar("note")
	assert.Equal(t, "on the next line", note)
	l := ds.Category("_l")
	require.Equal(t, 2, l.Len())
	assert.Equal(t, map[string]string{"id": "1", "text": "first block"}, l.Row(0))
	assert.Equal(t, map[string]string{"id": "2", "text": "plain"}, l.Row(1))
}

func TestRowsAcrossLines(t *testing.T) {
	d := mustRead(t, "loop_\n_l.a\n_l.b\n_l.c\n1 2\n3\n4 5 6\n")
	l := d.Dataset("").Category("_l")
	assert.Equal(t, 2, l.Len())
	col, _ := l.Column("c")
	assert.Equal(t, []string{"3", "6"}, col)
}

func TestReadErrors(t *testing.T) {
	var tests = []struct {
		name, in string
		line     string
	}{
		{"empty", "", ""},
		{"blank", "\n\n  \n", ""},
		{"arity", "loop_\n_l.a\n_l.b\n1 2 3\n", "line 4"},
		{"partial row", "loop_\n_l.a\n_l.b\n1 2\n3\n#\n", "line 6"},
		{"no rows", "loop_\n_l.a\n#\n", "line 3"},
		{"no names", "loop_\n1 2\n", "line 2"},
		{"mixed", "loop_\n_l.a\n_m.b\n1 2\n", "line 3"},
		{"header value", "loop_\n_l.a 1\n", "line 2"},
		{"two values", "_a.b c d\n", "line 1"},
		{"no value", "_a.b\n_a.c d\n", "line 2"},
		{"value at eof", "_a.b\n", ""},
		{"unterminated block", "_a.b\n;text\nmore\n", ""},
		{"block cut by name", "_a.b\n;text\n_a.c x\n", "line 3"},
		{"junk after ;", "_a.b\n;text\n; x\n", "line 3"},
		{"bad name", "_ab 1\n", "line 1"},
		{"unterminated quote", "_a.b 'x\n", "line 1"},
		{"loose value", "data_x\nvalue\n", "line 2"},
		{"duplicate block", "data_x\ndata_x\n", "line 2"},
		{"nameless block", "data_\n", "line 1"},
		{"item twice", "_a.b 1\n_a.b 2\n", "line 2"},
		{"item into loop", "loop_\n_a.b\n1\n_a.c 2\n", "line 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := read(t, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cif.ErrMalformed), err.Error())
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestLongLineInError(t *testing.T) {
	long := "_a.b " + strings.Repeat("x ", 100)
	_, err := read(t, long)
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	assert.Len(t, lines[len(lines)-1], 70)
}

func TestIOError(t *testing.T) {
	src := brokenio.NewReader(strings.NewReader("data_x\n_a.b 1\n"))
	src.SetFailAfter(len("data_x\n"))
	_, err := cif.NewReader(src).Read()
	require.Error(t, err)
	assert.True(t, errors.Is(err, brokenio.ErrBroken))
}

const skippable = `data_s
_skip.one
;a text block with
  _fake.item inside and
  loop_ too
;
_keep.a 1
loop_
_other.x
_other.y
1
;multi
  data_nothing
;
#
_keep.b 2
`

func TestCategories(t *testing.T) {
	d := mustRead(t, skippable, "_keep")
	ds := d.Dataset("data_s")
	assert.Equal(t, []string{"_keep"}, ds.Names)
	assert.Equal(t, []string{"a", "b"}, ds.Category("_keep").Fields)

	all := mustRead(t, skippable)
	assert.Equal(t, []string{"_skip", "_keep", "_other"}, all.Dataset("data_s").Names)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{";abcdefghij", "k", ";"}, cif.WrapText("abcdefghijk", 10))
	assert.Equal(t, []string{";", ";"}, cif.WrapText("  ", 10))
	assert.Equal(t, []string{";one two", " three", ";"}, cif.WrapText("one two three", 8))
	assert.Equal(t, []string{";a b", ";"}, cif.WrapText("a\nb", 10))
}

// Lines never end in white space, and joining them gives back the value.
func TestWrapTextJoins(t *testing.T) {
	const alphabet = "abc  ;#_'\"x"
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 500; n++ {
		b := make([]byte, 1+rng.Intn(60))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		v := strings.TrimSpace(string(b))
		width := 1 + rng.Intn(15)
		lines := cif.WrapText(v, width)
		require.GreaterOrEqual(t, len(lines), 2)
		assert.Equal(t, ";", lines[len(lines)-1])
		body := lines[:len(lines)-1]
		for _, l := range body {
			assert.Equal(t, strings.TrimRight(l, " "), l, "%q width %d", v, width)
		}
		assert.Equal(t, v, strings.Join(body, "")[1:], "width %d", width)
	}
}

func TestNeedsQuote(t *testing.T) {
	for _, v := range []string{"", "a b", "_x", "#x", ";x", "'x", "data_x", "LOOP_", "global_", "stop_"} {
		assert.True(t, cif.NeedsQuote(v), v)
	}
	for _, v := range []string{"a", "O5'", "1.5", "?", ".", "a_b"} {
		assert.False(t, cif.NeedsQuote(v), v)
	}
}

const rich = `data_rich
_entry.id 1ABC
_struct.title
;Crystal structure of a small protein with a title long enough that it has to wrap
;
_quote.single "it's here"
_quote.double 'say "hi"'
_quote.both
;both ' and " are here
;
loop_
_l.id
_l.name
_l.note
1 O5' 'a note'
2 "C5'" .
3 x
;a block in a loop that is far too long to sit on one line with the rest of the row
;
`

func roundTrip(t *testing.T, d *cif.Data, width int) *cif.Data {
	t.Helper()
	s := (cif.Writer{Width: width}).String(d)
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		assert.Equal(t, strings.TrimRight(l, " "), l)
	}
	back, err := cif.NewReader(strings.NewReader(s)).Read()
	require.NoError(t, err, s)
	return back
}

func TestWriteRead(t *testing.T) {
	want := mustRead(t, rich)
	for _, width := range []int{20, 40, 80, 200} {
		got := roundTrip(t, want, width)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("width %d (-want +got):\n%s", width, diff)
		}
	}
}

func TestWriteReadRandom(t *testing.T) {
	const alphabet = "ab 1;#_'\"."
	rng := rand.New(rand.NewSource(2))
	word := func() string {
		b := make([]byte, rng.Intn(30))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return strings.TrimSpace(string(b))
	}
	for n := 0; n < 50; n++ {
		d := cif.NewData()
		ds, err := d.AddDataset("data_r")
		require.NoError(t, err)
		require.NoError(t, ds.AddItem("_i", "a", word()))
		require.NoError(t, ds.AddItem("_i", "b", word()))
		cols := [][]string{{}, {}, {}}
		for r := 0; r < 4; r++ {
			for j := range cols {
				cols[j] = append(cols[j], word())
			}
		}
		require.NoError(t, ds.AddLoop("_l", []string{"x", "y", "z"}, cols))
		got := roundTrip(t, d, 12+rng.Intn(30))
		if diff := cmp.Diff(d, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	}
}

func TestWriteLayout(t *testing.T) {
	d := cif.NewData()
	ds, _ := d.AddDataset("data_x")
	require.NoError(t, ds.AddItem("_cell", "a", "1"))
	require.NoError(t, ds.AddItem("_cell", "alpha", "90"))
	require.NoError(t, ds.AddLoop("_l", []string{"a", "b"}, [][]string{{"1", "22"}, {"x y", "z"}}))
	want := `data_x
#
_cell.a     1
_cell.alpha 90
#
loop_
_l.a
_l.b
1  'x y'
22 z
#
`
	assert.Equal(t, want, (cif.Writer{}).String(d))
}

const structure = `data_1ABC
#
_entry.id   1ABC
#
loop_
_entity.id
_entity.type
_entity.pdbx_description
1 polymer 'Protein kinase'
2 water   water
#
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.label_seq_id
_atom_site.pdbx_PDB_ins_code
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.occupancy
_atom_site.B_iso_or_equiv
_atom_site.pdbx_formal_charge
_atom_site.auth_seq_id
ATOM   1 N N  . MET A 1 1 ? 1.000 2.000 3.000 1.00 10.00 ? 1
ATOM   2 C CA . MET A 1 1 ? 2.500 2.000 3.000 1.00 11.00 ? 1
HETATM 3 O O  . HOH C 2 . ? 9.000 9.000 9.000 1.00 30.00 ? 101
#
`

func writeFile(t *testing.T, name, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(s), 0o644))
	return path
}

func text(t *testing.T, a *atom.Atom, prop string) string {
	t.Helper()
	s, err := a.Text(prop)
	require.NoError(t, err)
	return s
}

func TestReadAtoms(t *testing.T) {
	atoms, err := cif.New().ReadFile(writeFile(t, "1abc.cif", structure))
	require.NoError(t, err)
	require.Len(t, atoms, 3)

	a := atoms[0]
	assert.Equal(t, "N", text(t, a, "name"))
	assert.Equal(t, "MET", text(t, a, "resname"))
	assert.Equal(t, "M", text(t, a, "res_olc"))
	assert.Equal(t, "Protein kinase", text(t, a, "entity"))
	assert.Equal(t, "ATOM", text(t, a, "section"))
	i, err := a.Int("resindex")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	z, err := a.Float("z")
	require.NoError(t, err)
	assert.Equal(t, 3.0, z)
	assert.True(t, a.Has(component.AAResidueType))
	_, ok := a.Lookup("altloc")
	assert.False(t, ok)

	w := atoms[2]
	assert.Equal(t, "HOH", text(t, w, "resname"))
	assert.Equal(t, "water", text(t, w, "entity"))
	assert.True(t, w.Has(component.ResidueType))
	b, err := w.Float("temp_f")
	require.NoError(t, err)
	assert.Equal(t, 30.0, b)
	_, err = w.Int("resindex")
	assert.True(t, errors.Is(err, atom.ErrMissingProperty))
}

func TestReadGzip(t *testing.T) {
	var z bytes.Buffer
	zw := gzip.NewWriter(&z)
	_, err := zw.Write([]byte(structure))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := writeFile(t, "1abc.cif.gz", z.String())
	atoms, err := cif.New().ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, atoms, 3)
}

func TestForeignKey(t *testing.T) {
	noEntity := strings.Replace(structure, "2 water   water", "", 1)
	_, err := cif.New().ReadFile(writeFile(t, "a.cif", noEntity))
	assert.True(t, errors.Is(err, cif.ErrForeignKey))

	twice := strings.Replace(structure, "2 water   water", "2 water water\n2 water again", 1)
	_, err = cif.New().ReadFile(writeFile(t, "b.cif", twice))
	assert.True(t, errors.Is(err, cif.ErrForeignKey))

	// without a description the id names the entity
	d := mustRead(t, "loop_\n_entity.id\n1\n2\n#\nloop_\n_atom_site.id\n_atom_site.label_entity_id\n1 2\n")
	atoms, err := cif.Atoms(d)
	require.NoError(t, err)
	assert.Equal(t, "2", text(t, atoms[0], "entity"))
}

func TestBadResidue(t *testing.T) {
	bad := strings.Replace(structure, "HOH", "H-H", 1)
	_, err := cif.New().ReadFile(writeFile(t, "a.cif", bad))
	assert.True(t, errors.Is(err, component.ErrUnknownResidue), "%v", err)
}

func TestAtomsRoundTrip(t *testing.T) {
	f := cif.New()
	want, err := f.ReadFile(writeFile(t, "in.cif", structure))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out.cif")
	paths, err := f.ToFile(want, out)
	require.NoError(t, err)
	assert.Equal(t, []string{out}, paths)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "data_out\n"))

	got, err := f.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "%v\n%v", want[i], got[i])
	}
}

func TestToFileRecipe(t *testing.T) {
	a := atom.New(component.Name("CA"), component.Coordinates(1, 2, 3))
	out := filepath.Join(t.TempDir(), "out.cif")
	_, err := cif.New().ToFile([]*atom.Atom{a}, out)
	require.Error(t, err)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

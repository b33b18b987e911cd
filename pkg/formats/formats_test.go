package formats_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrew-torda/atomflow/pkg/common"
	"github.com/andrew-torda/atomflow/pkg/config"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/format/cif"
	"github.com/andrew-torda/atomflow/pkg/formats"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder(t *testing.T) {
	var names []string
	for _, f := range formats.Default().Formats() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"cif", "pdb", "fasta"}, names)
	assert.Same(t, formats.Default(), formats.Default())
}

func TestWidthFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CIF.Width = 40
	f, err := formats.New(cfg).Lookup("cif")
	require.NoError(t, err)
	assert.Equal(t, 40, f.(*cif.Format).Width)
}

func TestByExtension(t *testing.T) {
	reg := formats.Default()
	for path, want := range map[string]string{
		"a.cif": "cif", "a.MMCIF": "cif", "b.pdb.gz": "pdb", "b.ent": "pdb",
		"c.fa": "fasta", "c.faa": "fasta", "c.fasta": "fasta",
	} {
		f, err := formats.ForRead(reg, path)
		require.NoError(t, err, path)
		assert.Equal(t, want, f.Name(), path)
	}
	_, err := reg.ForPath("a.xyz")
	assert.True(t, errors.Is(err, format.ErrUnknownExtension))
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	var tests = []struct {
		name, content, want string
	}{
		{"one", "data_1ABC\n#\n_entry.id 1ABC\n", ".cif"},
		{"two", "HEADER    HYDROLASE\nATOM      1  N   MET A   1\n", ".pdb"},
		{"three", ">seq one\nMEH\n", ".fasta"},
		{"four", "# comment\n\nloop_\n_a.b\n1\n", ".cif"},
	}
	for _, x := range tests {
		path, err := common.WrtTemp(dir, x.name, x.content)
		require.NoError(t, err)
		got, err := formats.Sniff(path)
		require.NoError(t, err, x.name)
		assert.Equal(t, x.want, got, x.name)
	}
}

func TestSniffGzip(t *testing.T) {
	var z bytes.Buffer
	zw := gzip.NewWriter(&z)
	_, err := zw.Write([]byte("ATOM      1  N   MET A   1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := filepath.Join(t.TempDir(), "noext")
	require.NoError(t, os.WriteFile(path, z.Bytes(), 0o644))
	f, err := formats.ForRead(formats.Default(), path)
	require.NoError(t, err)
	assert.Equal(t, "pdb", f.Name())
}

func TestSniffFails(t *testing.T) {
	path, err := common.WrtTemp(t.TempDir(), "junk", "nothing to see\nhere\n")
	require.NoError(t, err)
	_, err = formats.ForRead(formats.Default(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, formats.ErrUnrecognised))

	_, err = formats.Sniff(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}

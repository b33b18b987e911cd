package brokenio_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/atomflow/pkg/brokenio"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tochop = []string{"", "a", "abc", "abcdefghij", "abcdefghijklmn"}

const longstring = "0123456789012345678901234567890123456789"

// testFrac wipes out different fractions of the input buffer.
func testFrac(t *testing.T, in string, frac float32) {
	s := make([]byte, len(in))
	rdr := brokenio.NewReader(strings.NewReader(in))
	rdr.SetProbFail(1)
	rdr.SetFracFail(frac)
	n, err := rdr.Read(s)
	assert.Equal(t, in[:n], string(s[:n]), "contents changed, frac %v", frac)
	nuls := bytes.Count(s, []byte{0})
	switch frac {
	case 0:
		assert.Zero(t, nuls)
		if len(in) > 0 {
			assert.NoError(t, err, in)
		}
	case 1:
		assert.Equal(t, len(s), nuls)
		if len(in) > 0 {
			assert.True(t, errors.Is(err, brokenio.ErrBroken), in)
		}
	default:
		if len(in) > 0 {
			assert.NotZero(t, nuls, in)
		}
		if len(s) > 2 {
			assert.Less(t, nuls, len(s), in)
		}
	}
}

func TestTrashing(t *testing.T) {
	for _, frac := range []float32{0, 0.3, 1} {
		for _, in := range tochop {
			testFrac(t, in, frac)
		}
	}
}

func TestZeroFile(t *testing.T) {
	read := func(prob float32) (int, error) {
		rdr := brokenio.NewReader(strings.NewReader(longstring))
		rdr.SetProbZeroFile(prob)
		tmp := make([]byte, len(longstring))
		return rdr.Read(tmp)
	}
	n, err := read(1)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	n, err = read(0)
	assert.Equal(t, len(longstring), n)
	assert.NoError(t, err)
}

func TestFailAfter(t *testing.T) {
	rdr := brokenio.NewReader(strings.NewReader(longstring))
	rdr.SetFailAfter(15)
	b, err := io.ReadAll(rdr)
	assert.Equal(t, longstring[:15], string(b))
	assert.True(t, errors.Is(err, brokenio.ErrBroken))
}

func TestPassThrough(t *testing.T) {
	rdr := brokenio.NewReader(strings.NewReader(longstring))
	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, longstring, string(b))
	calls, n := rdr.Stats()
	assert.Positive(t, calls)
	assert.Equal(t, len(longstring), n)
}

// Close really closes the file underneath.
func TestClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testclose")
	require.NoError(t, os.WriteFile(path, []byte(longstring), 0o644))
	fp, err := os.Open(path)
	require.NoError(t, err)
	rdr := brokenio.NewReader(fp)
	s := make([]byte, len(longstring))
	n, err := rdr.Read(s)
	require.NoError(t, err)
	assert.Equal(t, len(longstring), n)
	require.NoError(t, rdr.Close())
	_, err = fp.Read(s)
	assert.Error(t, err)
}

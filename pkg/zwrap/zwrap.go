// Package zwrap opens input files. The file is memory mapped and, if it
// turns out to be gzipped, wrapped in a decompressor. Close undoes all
// of it in the right order.
package zwrap

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/edsrzf/mmap-go"
)

// FpGzip is what we return. zrdr is nil for a plain file.
type FpGzip struct {
	fp   io.ReadCloser
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying reader.
func (fc *FpGzip) Close() error {
	if fc.zrdr == nil {
		return fc.fp.Close()
	}
	return errors.CombineErrors(fc.zrdr.Close(), fc.fp.Close())
}

// Read reads decompressed bytes if the source was compressed.
func (fc *FpGzip) Read(p []byte) (int, error) {
	if fc.zrdr != nil {
		return fc.zrdr.Read(p)
	}
	return fc.fp.Read(p)
}

// Compressed says whether the source was gzipped.
func (fc *FpGzip) Compressed() bool { return fc.zrdr != nil }

// Wrap assumes fp is gzipped.
func Wrap(fp io.ReadCloser) (*FpGzip, error) {
	zrdr, err := gzip.NewReader(fp)
	if err != nil {
		return nil, err
	}
	return &FpGzip{fp: fp, zrdr: zrdr}, nil
}

// ReadSeekCloser is what WrapMaybe needs to be able to look at the
// start of a stream and go back.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// WrapMaybe decides if the stream is compressed and wraps it if so.
// Otherwise it rewinds and returns the stream as it is.
func WrapMaybe(fpIn ReadSeekCloser) (*FpGzip, error) {
	if out, err := Wrap(fpIn); err == nil {
		return out, nil
	}
	if _, err := fpIn.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewinding after gzip check")
	}
	return &FpGzip{fp: fpIn}, nil
}

// mapped is a memory mapped file read through a bytes.Reader.
type mapped struct {
	*bytes.Reader
	mm mmap.MMap
	fp *os.File
}

func (m *mapped) Close() error {
	var err error
	if m.mm != nil {
		err = m.mm.Unmap()
		m.mm = nil
	}
	return errors.CombineErrors(err, m.fp.Close())
}

// mapFile maps a file read only. An empty file cannot be mapped, so it
// gets an empty reader.
func mapFile(path string) (*mapped, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return &mapped{Reader: bytes.NewReader(nil), fp: fp}, nil
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "mapping %s", path)
	}
	return &mapped{Reader: bytes.NewReader(mm), mm: mm, fp: fp}, nil
}

// Open maps a file and wraps it in a decompressor if it is gzipped.
// The caller must Close the result.
func Open(path string) (*FpGzip, error) {
	m, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	fz, err := WrapMaybe(m)
	if err != nil {
		m.Close()
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return fz, nil
}

// ReadAll returns the whole, decompressed contents of a file.
func ReadAll(path string) ([]byte, error) {
	fz, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer fz.Close()
	return io.ReadAll(fz)
}

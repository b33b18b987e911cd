// Package brokenio wraps a reader so that it fails. Reading can fail
// after a fixed number of bytes, at random, or by trashing the end of
// what was read. A first read can also return nothing, which is what a
// zero length file looks like.
//
// Typical use: wrap whatever a parser reads from and check that the
// error comes out the other end with a sensible message.
package brokenio

import (
	"io"
	"math/rand"

	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/cockroachdb/errors"
)

// ErrBroken is at the bottom of every error we make up.
var ErrBroken = errors.New("broken reader")

// Reader fails as it has been told to. Probabilities are fractions, so
// 0.05 means failure in 5% of reads.
type Reader struct {
	rdr          io.Reader
	rng          *rand.Rand
	probZeroFile float32 // chance of an empty first read
	probFail     float32
	fracFail     float32 // how much of a failed read is wiped
	failAfter    int     // fail once this many bytes are through, < 0 never
	nCalled      int
	nByte        int
}

// NewReader wraps r. Until something is set, it behaves like r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		rdr:       r,
		rng:       rand.New(rand.NewSource(1)),
		fracFail:  0.5,
		failAfter: -1,
	}
}

func (r *Reader) SetFracFail(frac float32)     { r.fracFail = frac }
func (r *Reader) SetProbZeroFile(prob float32) { r.probZeroFile = prob }
func (r *Reader) SetProbFail(prob float32)     { r.probFail = prob }
func (r *Reader) SetSeed(seed int64)           { r.rng = rand.New(rand.NewSource(seed)) }
func (r *Reader) SetFailAfter(n int)           { r.failAfter = n }
func (r *Reader) Stats() (nCalled, nByte int)  { return r.nCalled, r.nByte }

// trashSlice zeroes the last frac of p and says so.
func trashSlice(p []byte, frac float32) (int, error) {
	nkeep := int(float32(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	clear(p[nkeep:])
	return nkeep, errors.Wrapf(ErrBroken, "wiped out last %d of %d bytes", len(p)-nkeep, len(p))
}

// Read passes data through until it is time to fail.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 && r.rng.Float32() < r.probZeroFile {
		r.nCalled++
		return 0, io.EOF
	}
	if r.failAfter >= 0 {
		left := r.failAfter - r.nByte
		if left <= 0 {
			return 0, errors.Wrapf(ErrBroken, "after %d bytes", r.nByte)
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err := r.rdr.Read(p)
	r.nCalled++
	r.nByte += n
	if n > 0 && r.probFail > 0 && r.fracFail > 0 && r.rng.Float32() < r.probFail {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}

// Close closes the wrapped reader if it can be closed.
func (r *Reader) Close() error {
	logger.Logger.Debugw("brokenio close", "calls", r.nCalled, "bytes", r.nByte)
	if c, ok := r.rdr.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

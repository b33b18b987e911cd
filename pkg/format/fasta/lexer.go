package fasta

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// An item is terminated by a newline if we are in a comment or a comment
// character ">" if we are in a sequence.
const (
	NL       = '\n'
	cmmtChar = '>'
)

type item struct {
	data     []byte
	complete bool // the terminator was found
}

// record is one sequence and the header before it.
type record struct {
	cmmt string
	seq  string
}

type lexer struct {
	rdr   io.Reader
	input []byte
	term  byte
	eof   bool
	err   error
	cmmt  string // partial comment
	seq   []byte // partial sequence
	recs  []record
}

const defaultReadSize = 4096

var rdsize = defaultReadSize

// next returns what is left of the input up to the terminator, or up
// to the end of the buffer. It returns false when there is nothing more
// to read.
func (l *lexer) next() (item, bool) {
	for len(l.input) == 0 {
		if l.eof || l.err != nil {
			return item{}, false
		}
		buf := make([]byte, rdsize)
		n, err := l.rdr.Read(buf)
		l.input = buf[:n]
		switch {
		case err == io.EOF:
			l.eof = true
		case err != nil:
			l.err = err
			return item{}, false
		}
	}
	if ndx := bytes.IndexByte(l.input, l.term); ndx != -1 {
		it := item{data: l.input[:ndx], complete: true}
		l.input = l.input[ndx+1:]
		return it, true
	}
	it := item{data: l.input}
	l.input = nil
	return it, true
}

type stateFn func(*lexer) stateFn

// gstart skips white space up to the first >.
func gstart(l *lexer) stateFn {
	it, ok := l.next()
	if !ok {
		return nil
	}
	if len(bytes.TrimSpace(it.data)) != 0 {
		l.err = errors.New("text before the first >")
		return nil
	}
	if it.complete {
		l.term = NL
		return gcmmt
	}
	return gstart
}

func removeWhite(s []byte) []byte { return bytes.Join(bytes.Fields(s), nil) }

// flush finishes a record.
func (l *lexer) flush() {
	l.recs = append(l.recs, record{cmmt: strings.TrimSpace(l.cmmt), seq: string(l.seq)})
	l.cmmt = ""
	l.seq = nil
}

// We are reading a comment
func gcmmt(l *lexer) stateFn {
	it, ok := l.next()
	if !ok {
		l.flush()
		return nil
	}
	l.cmmt += string(it.data)
	if it.complete {
		l.term = cmmtChar
		return gseq
	}
	return gcmmt
}

// We are reading a sequence
func gseq(l *lexer) stateFn {
	it, ok := l.next()
	if !ok {
		l.flush()
		return nil
	}
	l.seq = append(l.seq, removeWhite(it.data)...)
	if it.complete {
		l.flush()
		l.term = NL
		return gcmmt
	}
	return gseq
}

// readRecords splits fasta text into headers and sequences.
func readRecords(rdr io.Reader) ([]record, error) {
	l := lexer{rdr: rdr, term: cmmtChar}
	for state := stateFn(gstart); state != nil; {
		state = state(&l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.recs, nil
}

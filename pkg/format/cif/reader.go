package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/zwrap"
	"github.com/cockroachdb/errors"
)

// lineScanner wraps bufio.Scanner. It skips blank lines, trims trailing
// white space and counts lines for error messages.
type lineScanner struct {
	*bufio.Scanner
	line string // current line, "" at the end
	n    int    // line number
	eof  bool
	err  error
}

const maxLine = 16 * 1024 * 1024

func newLineScanner(r io.Reader) lineScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return lineScanner{Scanner: s}
}

// scan moves to the next line that is not blank. It returns false at
// the end of input or on an error.
func (s *lineScanner) scan() bool {
	if s.err != nil || s.eof {
		return false
	}
	for s.Scan() {
		s.n++
		s.line = strings.TrimRight(s.Text(), " \t\r\v\f")
		if s.line != "" {
			return true
		}
	}
	s.line = ""
	s.eof = true
	if err := s.Err(); err != nil {
		s.err = &readError{n: s.n, desc: "reading: " + err.Error(), cause: err}
	}
	return false
}

// fill records the first error, with the current line.
func (s *lineScanner) fill(desc string) {
	if s.err != nil {
		return
	}
	s.err = &readError{n: s.n, inline: s.line, desc: desc}
}

// Reader turns CIF text into a Data.
type Reader struct {
	lineScanner
	keep map[string]bool // categories to keep, nil for all
	cur  *Dataset
}

// NewReader reads from r. The caller decides whether r is a file, a
// decompressor or whatever.
func NewReader(r io.Reader) *Reader {
	return &Reader{lineScanner: newLineScanner(r)}
}

// SetCategories restricts reading to the named categories, given with
// their leading underscore. Other categories are stepped over. No
// names means everything is kept.
func (rd *Reader) SetCategories(cats ...string) {
	if len(cats) == 0 {
		rd.keep = nil
		return
	}
	rd.keep = make(map[string]bool, len(cats))
	for _, c := range cats {
		rd.keep[c] = true
	}
}

func (rd *Reader) wanted(cat string) bool { return rd.keep == nil || rd.keep[cat] }

// dataset returns the current data block, making the implicit one if
// there has not been a data_ line yet.
func (rd *Reader) dataset(d *Data) *Dataset {
	if rd.cur == nil {
		rd.cur, _ = d.AddDataset("")
	}
	return rd.cur
}

// stateFn is the type of a state function. It returns the next state,
// or nil to stop.
type stateFn func(*Reader, *Data) stateFn

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// isSpecial is true for lines that end a loop: a new item or loop, a new
// data block or a block delimiter.
func isSpecial(line string) bool {
	t := strings.TrimLeft(line, " \t")
	if t == "" {
		return true
	}
	return t[0] == '#' || t[0] == '_' || hasPrefixFold(t, "loop_") || hasPrefixFold(t, "data_")
}

// endsTextBlock is true for lines that may not appear inside a text
// block. Only the first column counts.
func endsTextBlock(line string) bool {
	return line[0] == '#' || line[0] == '_' || hasPrefixFold(line, "loop_") || hasPrefixFold(line, "data_")
}

// splitLabel turns _cat.field into _cat and field.
func splitLabel(label string) (cat, field string, ok bool) {
	i := strings.IndexByte(label, '.')
	if i < 2 || i == len(label)-1 {
		return "", "", false
	}
	return label[:i], label[i+1:], true
}

// stateTop looks at the current line and decides where to go.
func stateTop(rd *Reader, _ *Data) stateFn {
	if rd.err != nil || rd.eof {
		return nil
	}
	t := strings.TrimLeft(rd.line, " \t")
	switch {
	case t[0] == '#':
		rd.scan()
		return stateTop
	case hasPrefixFold(t, "data_"):
		return stateData
	case hasPrefixFold(t, "loop_"):
		return stateLoop
	case t[0] == '_':
		return stateItem
	}
	rd.fill("expected data_, loop_, # or a data name")
	return nil
}

// stateData opens a data block.
func stateData(rd *Reader, d *Data) stateFn {
	f := strings.Fields(rd.line)
	if len(f) != 1 {
		rd.fill("junk after data block name")
		return nil
	}
	if len(f[0]) == len("data_") {
		rd.fill("data block without a name")
		return nil
	}
	ds, err := d.AddDataset(f[0])
	if err != nil {
		rd.fill(err.Error())
		return nil
	}
	rd.cur = ds
	rd.scan()
	return stateTop
}

// stateItem reads _cat.field value. The value may be on the same line,
// on the next line, or be a text block starting on the next line.
func stateItem(rd *Reader, d *Data) stateFn {
	t := strings.TrimLeft(rd.line, " \t")
	label := t
	rest := ""
	if i := strings.IndexAny(t, " \t"); i >= 0 {
		label, rest = t[:i], strings.TrimSpace(t[i:])
	}
	cat, field, ok := splitLabel(label)
	if !ok {
		rd.fill("data name is not _category.field")
		return nil
	}
	if !rd.wanted(cat) {
		return skipItem(rd, rest)
	}
	if rest != "" {
		toks, err := splitCifLine(rest)
		if err != nil {
			rd.fill(err.Error())
			return nil
		}
		if len(toks) != 1 {
			rd.fill("more than one value for " + label)
			return nil
		}
		if err := rd.dataset(d).AddItem(cat, field, toks[0]); err != nil {
			rd.fill(err.Error())
			return nil
		}
		rd.scan()
		return stateTop
	}
	value, ok := rd.valueOnNextLine(label)
	if !ok {
		return nil
	}
	if err := rd.dataset(d).AddItem(cat, field, value); err != nil {
		rd.fill(err.Error())
		return nil
	}
	return stateTop
}

// valueOnNextLine gets the value of an item whose name stood alone. It
// is a text block, or a line with exactly one value.
func (rd *Reader) valueOnNextLine(label string) (string, bool) {
	if !rd.scan() {
		rd.fill("no value for " + label)
		return "", false
	}
	if rd.line[0] == ';' {
		return rd.textBlock()
	}
	if isSpecial(rd.line) {
		rd.fill("no value for " + label)
		return "", false
	}
	toks, err := splitCifLine(rd.line)
	if err != nil {
		rd.fill(err.Error())
		return "", false
	}
	if len(toks) != 1 {
		rd.fill("expected one value for " + label)
		return "", false
	}
	rd.scan()
	return toks[0], true
}

// skipItem steps over an item we do not want. If the value is not on
// the same line, the next line or text block is swallowed too.
func skipItem(rd *Reader, rest string) stateFn {
	if rest != "" {
		rd.scan()
		return stateTop
	}
	if !rd.scan() {
		rd.fill("no value for skipped item")
		return nil
	}
	if rd.line[0] == ';' {
		if _, ok := rd.textBlock(); !ok {
			return nil
		}
		return stateTop
	}
	if isSpecial(rd.line) {
		rd.fill("no value for skipped item")
		return nil
	}
	rd.scan()
	return stateTop
}

// textBlock is called on a line starting with ;. It collects lines up
// to the closing ; and leaves the scanner on the line after it.
func (rd *Reader) textBlock() (string, bool) {
	const unterminated = "unterminated text block"
	var b strings.Builder
	b.WriteString(rd.line[1:])
	for {
		if !rd.scan() {
			rd.fill(unterminated)
			return "", false
		}
		l := rd.line
		if l[0] == ';' {
			if strings.TrimSpace(l[1:]) != "" {
				rd.fill("text after the ; closing a text block")
				return "", false
			}
			rd.scan()
			return strings.TrimSpace(b.String()), true
		}
		if endsTextBlock(l) {
			rd.fill(unterminated)
			return "", false
		}
		b.WriteString(l)
	}
}

// stateLoop reads the names after loop_ and decides whether the table
// is kept or skipped.
func stateLoop(rd *Reader, d *Data) stateFn {
	if !rd.scan() {
		rd.fill("loop_ at end of file")
		return nil
	}
	var cat string
	var fields []string
	for !rd.eof {
		t := strings.TrimLeft(rd.line, " \t")
		if t[0] != '_' {
			break
		}
		f := strings.Fields(t)
		if len(f) != 1 {
			rd.fill("loop header followed by a value")
			return nil
		}
		c, field, ok := splitLabel(f[0])
		if !ok {
			rd.fill("data name is not _category.field")
			return nil
		}
		if cat == "" {
			cat = c
		} else if c != cat {
			rd.fill("loop mixes categories " + cat + " and " + c)
			return nil
		}
		fields = append(fields, field)
		rd.scan()
	}
	if rd.err != nil {
		return nil
	}
	if len(fields) == 0 {
		rd.fill("loop_ without data names")
		return nil
	}
	if !rd.wanted(cat) {
		return stateSkipLoop
	}
	return rd.loopTable(d, cat, fields)
}

// loopTable reads the rows of a loop. Values are buffered across lines
// and a row is made each time there are exactly as many values as
// columns.
func (rd *Reader) loopTable(d *Data, cat string, fields []string) stateFn {
	ncol := len(fields)
	cols := make([][]string, ncol)
	buf := make([]string, 0, ncol)
	nrow := 0
	tooMany := func() stateFn {
		rd.fill(fmt.Sprintf("row has %d values, %s has %d columns", len(buf), cat, ncol))
		return nil
	}
	for rd.err == nil && !rd.eof && !isSpecial(rd.line) {
		if rd.line[0] == ';' {
			v, ok := rd.textBlock()
			if !ok {
				return nil
			}
			if buf = append(buf, v); len(buf) > ncol {
				return tooMany()
			}
		} else {
			toks, err := splitCifLine(rd.line)
			if err != nil {
				rd.fill(err.Error())
				return nil
			}
			if buf = append(buf, toks...); len(buf) > ncol {
				return tooMany()
			}
			rd.scan()
		}
		if len(buf) == ncol {
			for i, v := range buf {
				cols[i] = append(cols[i], v)
			}
			buf = buf[:0]
			nrow++
		}
	}
	if rd.err != nil {
		return nil
	}
	if len(buf) > 0 {
		rd.fill("loop " + cat + " ends in the middle of a row")
		return nil
	}
	if nrow == 0 {
		rd.fill("loop " + cat + " has no values")
		return nil
	}
	if err := rd.dataset(d).AddLoop(cat, fields, cols); err != nil {
		rd.fill(err.Error())
		return nil
	}
	return stateTop
}

// stateSkipLoop steps over the rows of a loop we do not want. Text
// blocks are read through so their contents are not taken for
// structure.
func stateSkipLoop(rd *Reader, _ *Data) stateFn {
	for rd.err == nil && !rd.eof && !isSpecial(rd.line) {
		if rd.line[0] == ';' {
			if _, ok := rd.textBlock(); !ok {
				return nil
			}
			continue
		}
		rd.scan()
	}
	return stateTop
}

// Read parses the whole input.
func (rd *Reader) Read() (*Data, error) {
	d := NewData()
	rd.scan()
	if rd.eof && rd.err == nil {
		return nil, errors.Wrap(ErrMalformed, "no data")
	}
	for state := stateFn(stateTop); state != nil; {
		state = state(rd, d)
	}
	if rd.err != nil {
		return nil, rd.err
	}
	return d, nil
}

// ReadData reads a CIF file, gzipped or not, keeping only cats if any
// are given.
func ReadData(path string, cats ...string) (*Data, error) {
	fz, err := zwrap.Open(path)
	if err != nil {
		return nil, err
	}
	defer fz.Close()
	rd := NewReader(fz)
	rd.SetCategories(cats...)
	d, err := rd.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return d, nil
}

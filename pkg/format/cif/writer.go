package cif

import (
	"bufio"
	"io"
	"strings"
)

const DefaultWidth = 80

// Writer renders a Data as CIF text. No line is longer than Width
// unless a single value is.
type Writer struct {
	Width int
}

func (w Writer) width() int {
	if w.Width < 10 {
		return DefaultWidth
	}
	return w.Width
}

// badStart is true if a text block line starting with s would be taken
// for structure.
func badStart(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ';' || endsTextBlock(s)
}

// hardBreak finds where to cut a word that runs to the end of s. It
// moves back from end until the next line would not look like
// structure. If there is no such place, the word is not cut.
func hardBreak(s string, pos, end int) int {
	for e := end; e > pos; e-- {
		if !badStart(s[e:]) {
			return e
		}
	}
	return len(s)
}

// WrapText cuts a value into text block lines, the first starting with
// ; and a last line holding only ;. Lines are at most width characters
// (plus the ;) unless a word is longer. White space at a break is
// carried to the start of the next line so that joining the lines gives
// back the value. Line breaks in the value become spaces.
func WrapText(value string, width int) []string {
	if width < 1 {
		width = 1
	}
	s := strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value))
	var chunks []string
	for pos := 0; pos < len(s); {
		end := pos + width
		if end >= len(s) {
			chunks = append(chunks, s[pos:])
			break
		}
		if !iswhite(s[end-1]) && !iswhite(s[end]) { // inside a word
			if k := strings.IndexAny(s[end:], " \t\v\f"); k >= 0 {
				end += k
			} else {
				end = hardBreak(s, pos, end)
			}
		}
		e := end
		for e > pos && iswhite(s[e-1]) {
			e--
		}
		if e == pos { // only white space: take it and the next word
			for e = end; e < len(s) && iswhite(s[e]); e++ {
			}
			for ; e < len(s) && !iswhite(s[e]); e++ {
			}
		}
		chunks = append(chunks, s[pos:e])
		pos = e
	}
	ret := make([]string, 0, len(chunks)+2)
	if len(chunks) == 0 {
		return append(ret, ";", ";")
	}
	ret = append(ret, ";"+chunks[0])
	ret = append(ret, chunks[1:]...)
	return append(ret, ";")
}

// needsQuote is true for values that would not be read back as a plain
// value.
func needsQuote(v string) bool {
	if v == "" || strings.ContainsAny(v, " \t\v\f\r\n") {
		return true
	}
	switch v[0] {
	case '_', '#', ';', '\'', '"', '$', '[', ']':
		return true
	}
	for _, p := range []string{"data_", "loop_", "save_", "global_", "stop_"} {
		if hasPrefixFold(v, p) {
			return true
		}
	}
	return false
}

// quoteClash is true if q followed by white space occurs in v, which
// would end a value quoted with q too early.
func quoteClash(v string, q byte) bool {
	for i := 0; i+1 < len(v); i++ {
		if v[i] == q && iswhite(v[i+1]) {
			return true
		}
	}
	return false
}

// formatValue quotes v if needed. It fails if v can only be written as
// a text block.
func formatValue(v string) (string, bool) {
	if !needsQuote(v) {
		return v, true
	}
	if strings.ContainsAny(v, "\r\n") {
		return "", false
	}
	if !quoteClash(v, squote) {
		return "'" + v + "'", true
	}
	if !quoteClash(v, dquote) {
		return `"` + v + `"`, true
	}
	return "", false
}

// asBlock decides if a value goes in a text block, given the room there
// is for it. A value with white space at either end keeps its quotes
// however long it is, since a text block would lose the white space.
func asBlock(v, fv string, ok bool, room int) bool {
	if !ok {
		return true
	}
	return len(fv) > room && strings.TrimSpace(v) == v
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Lines renders d. The implicit dataset, if there is one, comes first
// since it has no data_ line to introduce it.
func (w Writer) Lines(d *Data) []string {
	var lines []string
	names := make([]string, 0, len(d.Names))
	if _, ok := d.Datasets[""]; ok {
		names = append(names, "")
	}
	for _, n := range d.Names {
		if n != "" {
			names = append(names, n)
		}
	}
	for _, n := range names {
		ds := d.Datasets[n]
		if n != "" {
			lines = append(lines, n)
		}
		lines = append(lines, "#")
		for _, cname := range ds.Names {
			c := ds.Categories[cname]
			if c.Len() == 0 {
				continue
			}
			if c.Loop {
				lines = w.loop(lines, cname, c)
			} else {
				lines = w.items(lines, cname, c)
			}
			lines = append(lines, "#")
		}
	}
	return lines
}

// items writes label value pairs, labels padded to the longest plus one.
func (w Writer) items(lines []string, cname string, c *Category) []string {
	wid := 0
	for _, f := range c.Fields {
		if l := len(cname) + 1 + len(f); l > wid {
			wid = l
		}
	}
	for _, f := range c.Fields {
		label := cname + "." + f
		v, _ := c.Scalar(f)
		fv, ok := formatValue(v)
		pad := padRight(label, wid+1)
		if asBlock(v, fv, ok, w.width()-len(pad)) {
			lines = append(lines, label)
			lines = append(lines, WrapText(v, w.width()-1)...)
			continue
		}
		lines = append(lines, pad+fv)
	}
	return lines
}

// loop writes a table. Columns are padded to their widest value plus
// one, and a line is broken before a column that would not fit.
func (w Writer) loop(lines []string, cname string, c *Category) []string {
	lines = append(lines, "loop_")
	for _, f := range c.Fields {
		lines = append(lines, cname+"."+f)
	}
	ncol := len(c.Fields)
	nrow := c.Len()
	fmtd := make([][]string, ncol)
	block := make([][]bool, ncol)
	widths := make([]int, ncol)
	for j, f := range c.Fields {
		fmtd[j] = make([]string, nrow)
		block[j] = make([]bool, nrow)
		for i, v := range c.Values[f] {
			fv, ok := formatValue(v)
			if asBlock(v, fv, ok, w.width()) {
				block[j][i] = true
				continue
			}
			fmtd[j][i] = fv
			if len(fv)+1 > widths[j] {
				widths[j] = len(fv) + 1
			}
		}
	}
	var line string
	flush := func() {
		if line != "" {
			lines = append(lines, strings.TrimRight(line, " "))
			line = ""
		}
	}
	for i := 0; i < nrow; i++ {
		for j, f := range c.Fields {
			if block[j][i] {
				flush()
				lines = append(lines, WrapText(c.Values[f][i], w.width()-1)...)
				continue
			}
			fv := fmtd[j][i]
			if line != "" && len(line)+len(fv) > w.width() {
				flush()
			}
			line += padRight(fv, widths[j])
		}
		flush()
	}
	return lines
}

// Write renders d to out.
func (w Writer) Write(out io.Writer, d *Data) error {
	bw := bufio.NewWriter(out)
	for _, l := range w.Lines(d) {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String renders d as one string.
func (w Writer) String(d *Data) string {
	var b strings.Builder
	_ = w.Write(&b, d)
	return b.String()
}

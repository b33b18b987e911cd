package cif

// Splitting a line into values. Values are separated by white space.
// A value starting with ' or " runs to the matching quote that is
// followed by white space or the end of the line, so 'it's' is it's.
// Quotes inside an unquoted value mean nothing: O5' is a value.

import (
	"github.com/cockroachdb/errors"
)

const (
	squote byte = '\''
	dquote byte = '"'
)

var asciiSpace = [256]bool{
	'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true,
}

func iswhite(b byte) bool { return asciiSpace[b] }

type sInfo struct { // state shared by the state functions
	err     error
	ret     []string
	line    string
	nxtIndx int  // start of the current value
	qtype   byte // quote we are looking for
}

type sfn func(i int, c byte, s *sInfo) sfn

func sfnInQuote(_ int, c byte, s *sInfo) sfn {
	if c == s.qtype {
		return sfnExitQuote
	}
	if c == '\n' {
		s.err = errors.Wrap(ErrMalformed, "unterminated quote")
		return sfnWhite
	}
	return sfnInQuote
}

// sfnExitQuote has just seen a quote. Only white space after it really
// ends the value.
func sfnExitQuote(i int, c byte, s *sInfo) sfn {
	switch {
	case iswhite(c):
		s.ret = append(s.ret, s.line[s.nxtIndx:i-1])
		return sfnWhite
	case c == s.qtype:
		return sfnExitQuote
	}
	return sfnInQuote
}

func sfnInText(i int, c byte, s *sInfo) sfn {
	if iswhite(c) {
		s.ret = append(s.ret, s.line[s.nxtIndx:i])
		return sfnWhite
	}
	return sfnInText
}

func sfnWhite(i int, c byte, s *sInfo) sfn {
	switch {
	case iswhite(c):
		return sfnWhite
	case c == squote || c == dquote:
		s.qtype = c
		s.nxtIndx = i + 1
		return sfnInQuote
	}
	s.nxtIndx = i
	return sfnInText
}

// splitCifLine breaks a line into values, removing the quotes.
func splitCifLine(line string) ([]string, error) {
	s := sInfo{line: line}
	state := sfnWhite
	for i := 0; i < len(line); i++ {
		state = state(i, line[i], &s)
	}
	state(len(line), '\n', &s) // a newline flushes the last value and catches open quotes
	if s.err != nil {
		return nil, s.err
	}
	return s.ret, nil
}

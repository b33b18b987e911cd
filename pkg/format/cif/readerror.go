package cif

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

var ErrMalformed = errors.New("malformed cif")

const maxMsgLen = 70

// readError remembers the line number and the line that caused the
// trouble.
type readError struct {
	n      int    // line number
	inline string // the line that provoked the error
	desc   string
	cause  error // set for i/o errors
}

func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen]
	}
	return s
}

func (e *readError) Error() string {
	var msg string
	if e.n != 0 {
		msg = "line " + strconv.Itoa(e.n) + ": "
	}
	msg += e.desc
	if e.inline != "" {
		msg += "\nline starting with\n" + firstPart(e.inline)
	}
	return msg
}

// Unwrap lets errors.Is find ErrMalformed, or the i/o error.
func (e *readError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrMalformed
}

package component

import (
	"strconv"
)

type valueKind byte

const (
	kindNone valueKind = iota
	kindString
	kindInt
	kindFloat
)

// Value is what a component property holds. It is a string, an int or a
// float. The zero Value is "nothing" and only turns up when a lookup
// failed.
type Value struct {
	kind valueKind
	s    string
	i    int
	f    float64
}

func Str(s string) Value        { return Value{kind: kindString, s: s} }
func Int(i int) Value           { return Value{kind: kindInt, i: i} }
func Float(f float64) Value     { return Value{kind: kindFloat, f: f} }
func (v Value) IsZero() bool    { return v.kind == kindNone }
func (v Value) IsNumeric() bool { return v.kind == kindInt || v.kind == kindFloat }

// String is the canonical form. Atoms and components are compared
// through it, so it must not change for equal values.
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.s
	case kindInt:
		return strconv.Itoa(v.i)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	}
	return ""
}

// AsInt returns the value as an int if it is one.
func (v Value) AsInt() (int, bool) {
	if v.kind == kindInt {
		return v.i, true
	}
	return 0, false
}

// AsFloat returns ints and floats as float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case kindInt:
		return float64(v.i), true
	case kindFloat:
		return v.f, true
	}
	return 0, false
}

// Equal compares canonical forms.
func (v Value) Equal(w Value) bool { return v.String() == w.String() }

// Less gives numeric order if both are numbers and string order
// otherwise.
func (v Value) Less(w Value) bool {
	if v.IsNumeric() && w.IsNumeric() {
		a, _ := v.AsFloat()
		b, _ := w.AsFloat()
		return a < b
	}
	return v.String() < w.String()
}

package cif

// Internals for the tests.

var SplitCifLine = splitCifLine
var NeedsQuote = needsQuote

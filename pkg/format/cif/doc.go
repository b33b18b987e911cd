// Package cif reads and writes CIF (mmCIF) files.
//
// There are two levels. The lower one turns text into a Data: data
// blocks, which hold categories, which hold fields. A category is
// either a set of single items
//
//	_cell.length_a  42.1
//
// or a loop, where every field has one value per row
//
//	loop_
//	_atom_site.id
//	_atom_site.type_symbol
//	1 N
//	2 C
//
// Values may be quoted with ' or " and may be given as text blocks,
// which start with a line beginning with ; and end with a line holding
// only ;. The Writer does the reverse. Reading, writing and reading
// again gives the same Data, whatever the line breaks in the original.
//
// The upper level, Format, maps the _atom_site and _entity categories
// to atoms and back.
package cif

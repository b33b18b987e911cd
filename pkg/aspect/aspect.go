// Package aspect is the catalog of capabilities an atom may carry.
// An aspect is just a name, like "element" or "x". Components say which
// aspects they provide and formats say which aspects they need.
// The set is closed. It is built when the package is initialised and
// never changes after that.
package aspect

import (
	"sort"
)

// Aspect is a capability tag. Two aspects are the same if they came from
// the same entry in the catalog, so == works.
type Aspect struct {
	name string
}

// Name is the canonical name. It is also the name of the one property
// a component must expose to provide the aspect.
func (a Aspect) Name() string { return a.name }

func (a Aspect) String() string { return a.name }

// Less orders aspects by name
func (a Aspect) Less(b Aspect) bool { return a.name < b.name }

// IsZero is true for the zero value, which is not in the catalog.
func (a Aspect) IsZero() bool { return a.name == "" }

var catalog = make(map[string]Aspect)

// declare is only called from the var block below.
func declare(name string) Aspect {
	if _, ok := catalog[name]; ok {
		panic("aspect declared twice: " + name)
	}
	a := Aspect{name: name}
	catalog[name] = a
	return a
}

// Atom level
var (
	AltLoc            = declare("altloc")     // one of several alternative locations
	CoordX            = declare("x")          //
	CoordY            = declare("y")          //
	CoordZ            = declare("z")          //
	Element           = declare("element")    //
	Index             = declare("index")      // serial number of the atom in its file
	Insertion         = declare("insertion")  // insertion code
	Name              = declare("name")       // atom name, like CA
	NameField         = declare("name_field") // the raw, aligned 4 character pdb name
	Occupancy         = declare("occupancy")  //
	Position          = declare("position")   // remoteness/branch relative to the backbone
	TemperatureFactor = declare("temp_f")     // isotropic B
	FormalCharge      = declare("fcharge")    // -1, 0, 1, ...
	Section           = declare("section")    // ATOM or HETATM
)

// Residue level
var (
	ResName  = declare("resname")
	ResOLC   = declare("res_olc") // one letter code
	ResTLC   = declare("res_tlc") // three letter code
	ResIndex = declare("resindex")
)

// Molecule level
var (
	Chain   = declare("chain")
	Entity  = declare("entity")  // a distinct chemical species
	Polymer = declare("polymer") // protein, dna, rna
)

// Lookup returns the aspect with the given name.
func Lookup(name string) (Aspect, bool) {
	a, ok := catalog[name]
	return a, ok
}

// All returns the whole catalog sorted by name.
func All() []Aspect {
	ret := make([]Aspect, 0, len(catalog))
	for _, a := range catalog {
		ret = append(ret, a)
	}
	Sort(ret)
	return ret
}

// Sort sorts a slice of aspects in place, by name.
func Sort(s []Aspect) {
	sort.Slice(s, func(i, j int) bool { return s[i].Less(s[j]) })
}

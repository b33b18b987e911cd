package component

import (
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
	"github.com/cockroachdb/errors"
)

// Polymer kinds, as stored in a Polymer component.
const (
	Protein = "protein"
	DNA     = "dna"
	RNA     = "rna"
)

// aaTLC maps three letter amino acid codes to one letter codes.
var aaTLC = map[string]string{
	"ALA": "A", "ARG": "R", "ASN": "N", "ASP": "D", "CYS": "C",
	"GLN": "Q", "GLU": "E", "GLY": "G", "HIS": "H", "ILE": "I",
	"LEU": "L", "LYS": "K", "MET": "M", "PHE": "F", "PRO": "P",
	"SER": "S", "THR": "T", "TRP": "W", "TYR": "Y", "VAL": "V",
	"SEC": "U", "PYL": "O", "UNK": "X",
}

var aaOLC = invert(aaTLC)

// dnaTLC maps deoxynucleotide codes to bases.
var dnaTLC = map[string]string{
	"DA": "A", "DC": "C", "DG": "G", "DT": "T", "DI": "I", "DU": "U",
}

var dnaOLC = invert(dnaTLC)

var rnaCodes = map[string]bool{"A": true, "C": true, "G": true, "U": true, "I": true}

func invert(m map[string]string) map[string]string {
	ret := make(map[string]string, len(m))
	for k, v := range m {
		ret[v] = k
	}
	return ret
}

var (
	residueProps   = []string{"resname", "res_olc", "res_tlc"}
	residueAspects = []aspect.Aspect{aspect.ResName, aspect.ResOLC, aspect.ResTLC}
)

var (
	ResidueType    = mustType("Residue", []string{"resname"}, parseResidue, aspect.ResName)
	AAResidueType  = mustType("AAResidue", residueProps, parseAA, residueAspects...)
	DNAResidueType = mustType("DNAResidue", residueProps, parseDNA, residueAspects...)
	RNAResidueType = mustType("RNAResidue", residueProps, parseRNA, residueAspects...)
)

// okGeneric is true for chemical component codes: 1 to 5 letters or
// digits.
func okGeneric(s string) bool {
	if len(s) == 0 || len(s) > 5 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func parseResidue(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	if !okGeneric(s) {
		return nil, errors.Wrapf(ErrUnknownResidue, "%q", s)
	}
	return []Value{Str(s)}, nil
}

// parseAA takes either a one or a three letter code.
func parseAA(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	s = strings.ToUpper(s)
	if olc, ok := aaTLC[s]; ok {
		return []Value{Str(s), Str(olc), Str(s)}, nil
	}
	if tlc, ok := aaOLC[s]; ok {
		return []Value{Str(tlc), Str(s), Str(tlc)}, nil
	}
	return nil, errors.Wrapf(ErrUnknownResidue, "%q is not an amino acid", s)
}

// parseDNA takes "DA" or just "A".
func parseDNA(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	s = strings.ToUpper(s)
	if olc, ok := dnaTLC[s]; ok {
		return []Value{Str(s), Str(olc), Str(s)}, nil
	}
	if tlc, ok := dnaOLC[s]; ok {
		return []Value{Str(tlc), Str(s), Str(tlc)}, nil
	}
	return nil, errors.Wrapf(ErrUnknownResidue, "%q is not a deoxynucleotide", s)
}

func parseRNA(raw []string) ([]Value, error) {
	s, err := oneRaw(raw)
	if err != nil {
		return nil, err
	}
	s = strings.ToUpper(s)
	if !rnaCodes[s] {
		return nil, errors.Wrapf(ErrUnknownResidue, "%q is not a nucleotide", s)
	}
	return []Value{Str(s), Str(s), Str(s)}, nil
}

// AAResidue panics on a bad code. Use AAResidueType.Parse for input
// from files.
func AAResidue(code string) Component  { return mustParse(AAResidueType, code) }
func DNAResidue(code string) Component { return mustParse(DNAResidueType, code) }
func RNAResidue(code string) Component { return mustParse(RNAResidueType, code) }
func Residue(code string) Component    { return mustParse(ResidueType, code) }

func mustParse(t *Type, raw string) Component {
	c, err := t.Parse(raw)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// ResidueFor picks the residue type for a chemical component code, as
// found in an mmCIF file. Amino acids are tried first, then DNA, then
// RNA. Anything else that looks like a component code becomes a plain
// Residue.
func ResidueFor(code string) (Component, error) {
	switch {
	case aaTLC[code] != "":
		return AAResidueType.Parse(code)
	case dnaTLC[code] != "":
		return DNAResidueType.Parse(code)
	case rnaCodes[code]:
		return RNAResidueType.Parse(code)
	}
	return ResidueType.Parse(code)
}

// ResidueForLetter maps a one letter sequence code to a residue of the
// given polymer kind.
func ResidueForLetter(letter, polymer string) (Component, error) {
	switch polymer {
	case Protein:
		return AAResidueType.Parse(letter)
	case DNA:
		if _, ok := dnaOLC[strings.ToUpper(letter)]; !ok {
			return Component{}, errors.Wrapf(ErrUnknownResidue, "%q in dna", letter)
		}
		return DNAResidueType.Parse(letter)
	case RNA:
		return RNAResidueType.Parse(letter)
	}
	return Component{}, errors.Newf("unknown polymer kind %q", polymer)
}

// PolymerOf guesses the kind of polymer from a one letter sequence.
// Only bases ACGT is DNA, only ACGU is RNA. Otherwise every letter
// must be an amino acid.
func PolymerOf(seq string) (string, error) {
	seq = strings.ToUpper(seq)
	if seq == "" {
		return "", errors.Wrap(ErrUnknownResidue, "empty sequence")
	}
	if strings.Trim(seq, "ACGT") == "" {
		return DNA, nil
	}
	if strings.Trim(seq, "ACGU") == "" {
		return RNA, nil
	}
	for i, c := range seq {
		if _, ok := aaOLC[string(c)]; !ok {
			return "", errors.Wrapf(ErrUnknownResidue, "%q at position %d", string(c), i+1)
		}
	}
	return Protein, nil
}

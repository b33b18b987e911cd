package component

import (
	"strings"

	"github.com/andrew-torda/atomflow/pkg/aspect"
)

// The built in component types. Most have one property named after the
// aspect they provide.
var (
	NameType        = mustType("Name", []string{"name"}, parseString, aspect.Name)
	ElementType     = mustType("Element", []string{"element"}, parseString, aspect.Element)
	IndexType       = mustType("Index", []string{"index"}, parseInt, aspect.Index)
	ResIndexType    = mustType("ResIndex", []string{"resindex"}, parseInt, aspect.ResIndex)
	AltLocType      = mustType("AltLoc", []string{"altloc"}, parseString, aspect.AltLoc)
	ChainType       = mustType("Chain", []string{"chain"}, parseString, aspect.Chain)
	InsertionType   = mustType("Insertion", []string{"insertion"}, parseString, aspect.Insertion)
	CoordXType      = mustType("CoordX", []string{"x"}, parseFloat, aspect.CoordX)
	CoordYType      = mustType("CoordY", []string{"y"}, parseFloat, aspect.CoordY)
	CoordZType      = mustType("CoordZ", []string{"z"}, parseFloat, aspect.CoordZ)
	OccupancyType   = mustType("Occupancy", []string{"occupancy"}, parseFloat, aspect.Occupancy)
	TempFactorType  = mustType("TemperatureFactor", []string{"temp_f"}, parseFloat, aspect.TemperatureFactor)
	ChargeType      = mustType("FormalCharge", []string{"fcharge"}, parseString, aspect.FormalCharge)
	EntityType      = mustType("Entity", []string{"entity"}, parseString, aspect.Entity)
	PolymerType     = mustType("Polymer", []string{"polymer"}, parseString, aspect.Polymer)
	SectionType     = mustType("Section", []string{"section"}, parseString, aspect.Section)
	PositionType    = mustType("Position", []string{"position"}, parseString, aspect.Position)
	CoordinatesType = mustType("Coordinates", []string{"x", "y", "z"}, parseFloats, aspect.CoordX, aspect.CoordY, aspect.CoordZ)
	NameFieldType   = mustType("NameField", []string{"name_field", "name"}, parseNameField, aspect.NameField, aspect.Name)
)

func Name(s string) Component        { return NameType.mustMake(Str(s)) }
func Element(s string) Component     { return ElementType.mustMake(Str(s)) }
func Index(i int) Component          { return IndexType.mustMake(Int(i)) }
func ResIndex(i int) Component       { return ResIndexType.mustMake(Int(i)) }
func AltLoc(s string) Component      { return AltLocType.mustMake(Str(s)) }
func Chain(s string) Component       { return ChainType.mustMake(Str(s)) }
func Insertion(s string) Component   { return InsertionType.mustMake(Str(s)) }
func CoordX(f float64) Component     { return CoordXType.mustMake(Float(f)) }
func CoordY(f float64) Component     { return CoordYType.mustMake(Float(f)) }
func CoordZ(f float64) Component     { return CoordZType.mustMake(Float(f)) }
func Occupancy(f float64) Component  { return OccupancyType.mustMake(Float(f)) }
func TempFactor(f float64) Component { return TempFactorType.mustMake(Float(f)) }
func Charge(s string) Component      { return ChargeType.mustMake(Str(s)) }
func Entity(s string) Component      { return EntityType.mustMake(Str(s)) }
func Polymer(s string) Component     { return PolymerType.mustMake(Str(s)) }
func Section(s string) Component     { return SectionType.mustMake(Str(s)) }
func Position(s string) Component    { return PositionType.mustMake(Str(s)) }

// Coordinates bundles x, y and z in one component.
func Coordinates(x, y, z float64) Component {
	return CoordinatesType.mustMake(Float(x), Float(y), Float(z))
}

// NameField keeps a pdb name column exactly as it was, with its
// alignment spaces. It also provides the name, without the spaces.
func NameField(field string) Component {
	return NameFieldType.mustMake(Str(field), Str(strings.TrimSpace(field)))
}

func parseNameField(raw []string) ([]Value, error) {
	if len(raw) != 1 || strings.TrimSpace(raw[0]) == "" {
		return nil, ErrBadValue
	}
	return []Value{Str(raw[0]), Str(strings.TrimSpace(raw[0]))}, nil
}

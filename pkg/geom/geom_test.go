package geom_test

import (
	"math"
	"testing"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/atomflow/pkg/component"
	. "github.com/andrew-torda/atomflow/pkg/geom"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// permuteXyz rotates x, y and z for tests whose answers should not change
// when we move the axes around.
func permuteXyz(x Xyz) Xyz {
	x.X, x.Y, x.Z = x.Y, x.Z, x.X
	return x
}

// notApproxEqual returns true if x and y are not approximately equal.
func notApproxEqual(x, y float32) bool {
	diff := x - y
	if diff < 0 {
		diff = -diff
	}
	if math.IsNaN(float64(diff)) {
		return true
	}
	return diff > 0.00001
}

var disttests = []struct {
	name   string
	x1, x2 Xyz
	e      error
}{
	{"3.8", Xyz{3.80, 0.00, 0}, Xyz{0, 0, 0}, nil},
	{"onex", Xyz{0.00, 0.00, 0}, Xyz{1, 0, 0}, ErrTooClose},
	{"333", Xyz{3.00, 3.00, 3}, Xyz{1, 0, 0}, nil},
	{"1.95", Xyz{1.95, 1.95, 3}, Xyz{0, 0, 0}, nil},
	{"5.0", Xyz{5.00, 5.00, 5}, Xyz{1, 0, 0}, ErrTooFar},
}

func TestCADist(t *testing.T) {
	for _, test := range disttests {
		x1, x2 := test.x1, test.x2
		want := Dist(x1, x2)
		for i := 0; i < 3; i++ {
			d1, e1 := CADist(x1, x2)
			d2, e2 := CADist(x2, x1)
			assert.Equal(t, d1, d2, test.name)
			assert.False(t, notApproxEqual(want, d1), "%s got %f want %f", test.name, d1, want)
			if test.e == nil {
				assert.NoError(t, e1, test.name)
			} else {
				assert.ErrorIs(t, e1, test.e, test.name)
			}
			assert.Equal(t, e1, e2, test.name)
			x1, x2 = permuteXyz(x1), permuteXyz(x2)
		}
	}
}

var angletests = []struct {
	x1, x2, x3 Xyz
	res        float32
}{
	{Xyz{+1, 0, 0}, Xyz{0, 0, 0}, Xyz{0.9999, 0, 0}, 0},
	{Xyz{-0, 1, 0}, Xyz{0, 0, 0}, Xyz{1.0000, 0, 0}, math.Pi / 2},
	{Xyz{-1, 0, 0}, Xyz{0, 0, 0}, Xyz{1.0000, 0, 0}, math.Pi},
	{Xyz{+0, 1, 0}, Xyz{0, 0, 0}, Xyz{0.1000, 0, 0}, math.Pi / 2},
	{Xyz{+0, 1, 0}, Xyz{0, 0, 0}, Xyz{9.9000, 0, 0}, math.Pi / 2},
	{Xyz{-1, 0, 0}, Xyz{0, 0, 0}, Xyz{1.0000, 1, 0}, math.Pi * 3 / 4},
	{Xyz{-1, 0, 0}, Xyz{0, 0, 0}, Xyz{9.9, 9.9, 0}, math.Pi * 3 / 4},
}

func TestAngle(t *testing.T) {
	for _, test := range angletests {
		x1, x2, x3 := test.x1, test.x2, test.x3
		for i := 0; i < 3; i++ {
			a, err := Angle(x1, x2, x3)
			require.NoError(t, err, "%v %v %v", x1, x2, x3)
			if notApproxEqual(a, test.res) {
				t.Errorf("got %f wanted %f, %v, %v, %v", a, test.res, x1, x2, x3)
			}
			x1, x2, x3 = permuteXyz(x1), permuteXyz(x2), permuteXyz(x3)
		}
	}
}

func TestBrokenAngle(t *testing.T) {
	_, err := Angle(Xyz{1, 0, 0}, Xyz{1, 0, 0}, Xyz{0, 1, 0})
	assert.ErrorIs(t, err, ErrBadAngle)
}

var dhdrltests = []struct {
	x1, x2, x3, x4 Xyz
	res            float32
}{
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, 1, 0}, 0},
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, -1, 0}, math.Pi},
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, 0, 1}, -math.Pi / 2},
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, 0, -1}, math.Pi / 2},
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, 1, -1}, math.Pi / 4},
	{Xyz{0, 1, 0}, Xyz{1, 0, 0}, Xyz{2, 0, 0}, Xyz{3, -1, -1}, math.Pi * (3.0 / 4.0)},
}

func TestDihedral(t *testing.T) {
	for _, test := range dhdrltests {
		x1, x2, x3, x4 := test.x1, test.x2, test.x3, test.x4
		for i := 0; i < 3; i++ {
			a := Dihedral(x1, x2, x3, x4)
			if notApproxEqual(a, test.res) {
				t.Errorf("%v %v %v %v wanted: %.3g got: %.3g", x1, x2, x3, x4, test.res, a)
			}
			b := Dihedral(x4, x3, x2, x1) // same angle read backwards
			if notApproxEqual(a, b) {
				t.Errorf("reversed %v %v %v %v got %.3g and %.3g", x1, x2, x3, x4, a, b)
			}
			x1, x2, x3, x4 = permuteXyz(x1), permuteXyz(x2), permuteXyz(x3), permuteXyz(x4)
		}
	}
}

func at(x, y, z float64) *atom.Atom {
	return atom.New(component.CoordX(x), component.CoordY(y), component.CoordZ(z))
}

func TestCoords(t *testing.T) {
	atoms := []*atom.Atom{at(0, 0, 0), at(2, 0, 0), at(2, 2, 0), at(0, 2, 0)}
	m, err := Coords(atoms)
	require.NoError(t, err)
	nr, nc := m.Size()
	assert.Equal(t, 4, nr)
	assert.Equal(t, 3, nc)
	assert.Equal(t, []float32{2, 2, 0}, m.Mat[2])

	c, err := Centroid(m)
	require.NoError(t, err)
	assert.Equal(t, Xyz{1, 1, 0}, c)

	rg, err := Rgyr(m)
	require.NoError(t, err)
	assert.False(t, notApproxEqual(float32(math.Sqrt2), rg), "rgyr %f", rg)
}

func TestCoordsMissing(t *testing.T) {
	atoms := []*atom.Atom{at(0, 0, 0), atom.New(component.CoordX(1))}
	_, err := Coords(atoms)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCoords))
	assert.Contains(t, err.Error(), "atom 2")
}

func TestEmptyCentroid(t *testing.T) {
	m, err := Coords(nil)
	require.NoError(t, err)
	_, err = Centroid(m)
	assert.ErrorIs(t, err, ErrNoCoords)
}

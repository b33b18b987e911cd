// Package geom calculates some geometries, lengths and angles, on atom
// coordinates.
package geom

import (
	"math"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/andrew-torda/matrix"
	"github.com/cockroachdb/errors"
)

const (
	mindist  = 2.6
	mindist2 = mindist * mindist
	maxdist  = 4.1 // max dist for c_alpha to c_alpha
	maxdist2 = maxdist * maxdist
)

var (
	ErrTooFar   = errors.New("too far for bonded c alphas")
	ErrTooClose = errors.New("too close for bonded c alphas")
	ErrBadAngle = errors.New("broken angle")
	ErrNoCoords = errors.New("no coordinates")
)

type Xyz struct{ X, Y, Z float32 }

// Of gets the coordinates of an atom.
func Of(a *atom.Atom) (Xyz, error) {
	var r [3]float32
	for i, p := range []string{"x", "y", "z"} {
		f, err := a.Float(p)
		if err != nil {
			return Xyz{}, errors.Wrap(ErrNoCoords, err.Error())
		}
		r[i] = float32(f)
	}
	return Xyz{r[0], r[1], r[2]}, nil
}

// xyzDiff gets the difference of two vectors
func xyzDiff(start, end Xyz) (diff Xyz) {
	diff.X = end.X - start.X
	diff.Y = end.Y - start.Y
	diff.Z = end.Z - start.Z
	return diff
}

// vecProd returns the vector product of two vectors
func vecProd(u, v Xyz) (res Xyz) {
	res.X = u.Y*v.Z - u.Z*v.Y
	res.Y = u.Z*v.X - u.X*v.Z
	res.Z = u.X*v.Y - u.Y*v.X
	return res
}

func sclrProd(u, v Xyz) float32 { return u.X*v.X + u.Y*v.Y + u.Z*v.Z }
func xyzLen2(v Xyz) float32     { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func xyzLen(v Xyz) float32      { return float32(math.Sqrt(float64(xyzLen2(v)))) }

// Dist is the distance between two points.
func Dist(x1, x2 Xyz) float32 { return xyzLen(xyzDiff(x1, x2)) }

// CADist is Dist for consecutive c alphas. A distance that cannot be a
// bond is an error, so this finds chain breaks.
func CADist(x1, x2 Xyz) (float32, error) {
	r := xyzLen2(xyzDiff(x1, x2))
	switch {
	case r >= maxdist2:
		return float32(math.Sqrt(float64(r))), ErrTooFar
	case r <= mindist2:
		return float32(math.Sqrt(float64(r))), ErrTooClose
	}
	return float32(math.Sqrt(float64(r))), nil
}

// Angle takes three points and returns the angle at b, in radians.
func Angle(a, b, c Xyz) (float32, error) {
	x1 := xyzDiff(b, a)
	x2 := xyzDiff(b, c)
	cosalpha := float64(sclrProd(x1, x2)) / (math.Sqrt(float64(xyzLen2(x1))) * math.Sqrt(float64(xyzLen2(x2))))
	if cosalpha > 1 && cosalpha < 1.01 { // numerical noise
		return 0.0, nil
	}
	if cosalpha < -1 && cosalpha > -1.01 {
		return math.Pi, nil
	}
	if cosalpha < -1 || cosalpha > 1 || math.IsNaN(cosalpha) {
		return float32(math.NaN()), ErrBadAngle
	}
	return float32(math.Acos(cosalpha)), nil
}

// Dihedral takes four points and returns the dihedral angle
func Dihedral(ii, jj, kk, ll Xyz) float32 {
	rij := xyzDiff(ii, jj)
	rkj := xyzDiff(kk, jj)
	rkl := xyzDiff(kk, ll)
	var rim, rln Xyz
	{
		tmp := sclrProd(rij, rkj) / xyzLen2(rkj)
		rim = xyzDiff(rij, Xyz{X: tmp * rkj.X, Y: tmp * rkj.Y, Z: tmp * rkj.Z})
	}
	{
		tmp := sclrProd(rkl, rkj) / xyzLen2(rkj)
		rln = xyzDiff(Xyz{X: tmp * rkj.X, Y: tmp * rkj.Y, Z: tmp * rkj.Z}, rkl)
	}
	tCos := float64(sclrProd(rim, rln) / (xyzLen(rim) * xyzLen(rln)))
	if tCos > 1 { // numerical errors, no need to call acos()
		return 0.0
	}
	if tCos < -1 {
		return math.Pi
	}
	tau := float32(math.Acos(tCos))
	if sclrProd(rij, vecProd(rkj, rkl)) >= 0 {
		return tau
	}
	return -tau
}

// Coords puts the coordinates of atoms in an n x 3 matrix.
func Coords(atoms []*atom.Atom) (*matrix.FMatrix2d, error) {
	m := matrix.NewFMatrix2d(len(atoms), 3)
	for i, a := range atoms {
		x, err := Of(a)
		if err != nil {
			return nil, errors.Wrapf(err, "atom %d", i+1)
		}
		m.Mat[i][0], m.Mat[i][1], m.Mat[i][2] = x.X, x.Y, x.Z
	}
	return m, nil
}

// Centroid is the mean of the rows of an n x 3 matrix.
func Centroid(m *matrix.FMatrix2d) (Xyz, error) {
	n, _ := m.Size()
	if n == 0 {
		return Xyz{}, ErrNoCoords
	}
	var sum [3]float64
	for _, row := range m.Mat {
		for j := range sum {
			sum[j] += float64(row[j])
		}
	}
	return Xyz{float32(sum[0] / float64(n)), float32(sum[1] / float64(n)), float32(sum[2] / float64(n))}, nil
}

// Rgyr is the radius of gyration, with all atoms weighted the same.
func Rgyr(m *matrix.FMatrix2d) (float32, error) {
	c, err := Centroid(m)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, row := range m.Mat {
		sum += float64(xyzLen2(xyzDiff(c, Xyz{row[0], row[1], row[2]})))
	}
	n, _ := m.Size()
	return float32(math.Sqrt(sum / float64(n))), nil
}

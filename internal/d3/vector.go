package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector manipulation routines shared by the mesh and remesh packages.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// InteriorAngle returns the angle at apex between the rays to a and b.
// Returns NaN when either ray is degenerate.
func InteriorAngle(apex, a, b r3.Vec) float64 {
	u := r3.Sub(a, apex)
	v := r3.Sub(b, apex)
	lu := r3.Norm(u)
	lv := r3.Norm(v)
	if lu <= 1e-12 || lv <= 1e-12 {
		return math.NaN()
	}
	cos := r3.Dot(u, v) / (lu * lv)
	// Clamp against rounding before acos.
	cos = math.Min(1, math.Max(-1, cos))
	return math.Acos(cos)
}

package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var tri = r3.Triangle{
	{X: 0, Y: 0, Z: 0},
	{X: 2, Y: 0, Z: 0},
	{X: 0, Y: 2, Z: 0},
}

func TestClosestOnTriangle(t *testing.T) {
	for _, tc := range []struct {
		name string
		p    r3.Vec
		want r3.Vec
	}{
		{"interior", r3.Vec{X: 0.5, Y: 0.5, Z: 1}, r3.Vec{X: 0.5, Y: 0.5}},
		{"vertex a", r3.Vec{X: -1, Y: -1, Z: 0}, r3.Vec{}},
		{"vertex b", r3.Vec{X: 3, Y: -1, Z: 0}, r3.Vec{X: 2}},
		{"vertex c", r3.Vec{X: -1, Y: 3, Z: 0}, r3.Vec{Y: 2}},
		{"edge ab", r3.Vec{X: 1, Y: -2, Z: 0}, r3.Vec{X: 1}},
		{"edge ac", r3.Vec{X: -2, Y: 1, Z: 0}, r3.Vec{Y: 1}},
		{"edge bc", r3.Vec{X: 2, Y: 2, Z: 0}, r3.Vec{X: 1, Y: 1}},
		{"on surface", r3.Vec{X: 0.2, Y: 0.2, Z: 0}, r3.Vec{X: 0.2, Y: 0.2}},
	} {
		got := ClosestOnTriangle(tc.p, tri)
		if !EqualWithin(got, tc.want, 1e-12) {
			t.Errorf("%s: closest point = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDistToTriangle(t *testing.T) {
	if got := DistToTriangle(r3.Vec{X: 0.5, Y: 0.5, Z: 3}, tri); math.Abs(got-3) > 1e-12 {
		t.Errorf("distance above interior = %g, want 3", got)
	}
	if got := DistToTriangle(r3.Vec{X: 0.2, Y: 0.2}, tri); got > 1e-12 {
		t.Errorf("distance of on-surface point = %g, want 0", got)
	}
}

func TestInteriorAngle(t *testing.T) {
	apex := r3.Vec{}
	if got := InteriorAngle(apex, r3.Vec{X: 1}, r3.Vec{Y: 1}); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("right angle = %g, want %g", got, math.Pi/2)
	}
	if got := InteriorAngle(apex, r3.Vec{X: 1}, r3.Vec{X: -1}); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("straight angle = %g, want %g", got, math.Pi)
	}
	if got := InteriorAngle(apex, apex, r3.Vec{X: 1}); !math.IsNaN(got) {
		t.Errorf("degenerate ray angle = %g, want NaN", got)
	}
}

func TestMidpoint(t *testing.T) {
	a := r3.Vec{X: 1, Y: 2, Z: 3}
	b := r3.Vec{X: 3, Y: 6, Z: 9}
	if got := Midpoint(a, b); !EqualWithin(got, r3.Vec{X: 2, Y: 4, Z: 6}, 1e-15) {
		t.Errorf("midpoint = %v", got)
	}
}

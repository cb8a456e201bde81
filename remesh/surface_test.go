package remesh

import (
	"math"
	"testing"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSurfaceNearestOnSphere(t *testing.T) {
	surf := NewSurface(mesh.Icosphere(1, 3).Triangles())
	for _, q := range []r3.Vec{
		{X: 2}, {Y: -3}, {Z: 2.5}, {X: 1.2, Y: 1.2, Z: 1.2},
	} {
		p, d := surf.Nearest(q)
		want := r3.Norm(q) - 1
		// Chordal error of the tessellation plus the centroid-keyed
		// candidate search keep the result near the analytic distance.
		if math.Abs(d-want) > 0.1 {
			t.Errorf("query %v: distance = %g, want about %g", q, d, want)
		}
		if r := r3.Norm(p); math.Abs(r-1) > 0.05 {
			t.Errorf("query %v: closest point at radius %g, want about 1", q, r)
		}
	}
}

func TestSurfaceNearestOnSurfacePoint(t *testing.T) {
	m := mesh.Icosphere(1, 3)
	surf := NewSurface(m.Triangles())
	// A vertex of the mesh lies exactly on the indexed surface.
	q := m.Position(0)
	_, d := surf.Nearest(q)
	if d > 0.15 {
		t.Errorf("distance of on-surface point = %g, want near 0", d)
	}
}

func TestNewSurfacePanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewSurface accepted an empty triangle slice")
		}
	}()
	NewSurface(nil)
}

package mesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestEdgeLengths(t *testing.T) {
	m := Cube(2)
	// 12 cube edges of length 2 and 6 face diagonals of length 2*sqrt(2).
	want := (12*2 + 6*2*math.Sqrt2) / 18
	if got := m.MeanEdgeLength(); math.Abs(got-want) > 1e-12 {
		t.Errorf("mean edge length = %g, want %g", got, want)
	}
	if got := New().MeanEdgeLength(); got != 0 {
		t.Errorf("mean edge length of empty mesh = %g, want 0", got)
	}
}

func TestBoundingBox(t *testing.T) {
	m := Cube(2)
	if got, want := m.BoundingBox().Diagonal(), 2*math.Sqrt(3); math.Abs(got-want) > 1e-12 {
		t.Errorf("bounding box diagonal = %g, want %g", got, want)
	}
}

func TestVertexCurvatureOnSphere(t *testing.T) {
	// The angle-defect estimate converges to the Gaussian curvature
	// 1/r^2; the mean-curvature proxy is its square root, 1/r.
	for _, r := range []float64{1, 2} {
		m := Icosphere(r, 3)
		var sum float64
		var n int
		for v := 0; v < m.VertexSlots(); v++ {
			if !m.VertexAlive(v) {
				continue
			}
			k := m.VertexCurvature(v)
			if math.IsNaN(k) {
				t.Fatalf("r=%g: vertex %d curvature is NaN", r, v)
			}
			sum += k
			n++
		}
		got := sum / float64(n)
		if math.Abs(got-1/r)/(1/r) > 0.15 {
			t.Errorf("r=%g: mean curvature proxy = %g, want about %g", r, got, 1/r)
		}
	}
}

func TestVertexCurvatureIsolatedVertex(t *testing.T) {
	m := New()
	v := m.AddVertex(r3.Vec{})
	if k := m.VertexCurvature(v); !math.IsNaN(k) {
		t.Errorf("curvature of isolated vertex = %g, want NaN", k)
	}
}

func TestAverageCurvatureRadius(t *testing.T) {
	for _, r := range []float64{0.5, 2} {
		m := Icosphere(r, 3)
		got := m.AverageCurvatureRadius()
		if math.Abs(got-r)/r > 0.15 {
			t.Errorf("sphere radius %g estimated as %g", r, got)
		}
	}
}

func TestAverageCurvatureRadiusFallback(t *testing.T) {
	// A fully degenerate surface has no usable curvature sample; the
	// radius falls back to a tenth of the bounding box diagonal.
	collinear, err := FromBuffers([]r3.Vec{
		{X: 0}, {X: 1}, {X: 2},
	}, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	want := 0.1 * collinear.BoundingBox().Diagonal()
	if got := collinear.AverageCurvatureRadius(); math.Abs(got-want) > 1e-12 {
		t.Errorf("degenerate mesh radius = %g, want %g", got, want)
	}

	// Without any spatial extent there is no scale to derive the
	// fallback from, so it is pinned to 1.
	point, err := FromBuffers([]r3.Vec{{}, {}, {}}, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if got := point.AverageCurvatureRadius(); got != 1 {
		t.Errorf("scaleless mesh radius = %g, want 1", got)
	}
}

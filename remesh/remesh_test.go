package remesh

import (
	"math"
	"testing"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRunRefinesCoarseSphere(t *testing.T) {
	m := mesh.Icosphere(1, 1)
	before := m.NumFaces()
	field := BuildField(m, 0.01, 0.15, 0.15) // uniform target well below current edges
	ref := NewSurface(m.Triangles())
	Run(m, field, nil, ref, Options{Iterations: 4})
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	if m.NumFaces() <= before {
		t.Errorf("faces = %d after refinement, want more than %d", m.NumFaces(), before)
	}
	mean := m.MeanEdgeLength()
	if mean < 0.05 || mean > 0.3 {
		t.Errorf("mean edge length = %g, want near the 0.15 target", mean)
	}
	// No runaway long edges survive the split passes.
	for _, e := range m.Edges() {
		if l := m.EdgeLength(e); l > 2*0.15*splitRatio {
			t.Errorf("edge %v has length %g, far above target", e, l)
		}
	}
	// Vertices stay on the unit sphere thanks to re-projection.
	worst := 0.0
	m.EachVertex(func(_ int, p r3.Vec) {
		if dev := math.Abs(r3.Norm(p) - 1); dev > worst {
			worst = dev
		}
	})
	if worst > 0.1 {
		t.Errorf("vertex radius deviates by %g from the reference sphere", worst)
	}
}

func TestRunCoarsensDenseSphere(t *testing.T) {
	m := mesh.Icosphere(1, 3)
	before := m.NumFaces()
	field := BuildField(m, 0.01, 0.5, 0.5)
	Run(m, field, nil, NewSurface(m.Triangles()), Options{})
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	if m.NumFaces() >= before {
		t.Errorf("faces = %d after coarsening, want fewer than %d", m.NumFaces(), before)
	}
}

func TestRunPreservesBorder(t *testing.T) {
	m := mesh.Grid(4, 1.0)
	protected := m.BorderConstraints()
	borderBefore := len(m.BorderEdges())
	field := BuildField(m, 0.001, 0.1, 0.1)
	Run(m, field, protected, nil, Options{Iterations: 3})
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	if got := len(m.BorderEdges()); got != borderBefore {
		t.Errorf("border edges = %d after remeshing, want %d", got, borderBefore)
	}
	// Every border vertex still lies exactly on the original square
	// outline in the z=0 plane.
	for _, e := range m.BorderEdges() {
		for _, v := range []int{e.V1, e.V2} {
			p := m.Position(v)
			if p.Z != 0 || math.Max(math.Abs(p.X), math.Abs(p.Y)) != 0.5 {
				t.Errorf("border vertex %d moved to %v", v, p)
			}
		}
	}
	// Interior vertices stay in the plane of the open grid.
	m.EachVertex(func(v int, p r3.Vec) {
		if math.Abs(p.Z) > 1e-9 {
			t.Errorf("vertex %d left the plane: %v", v, p)
		}
	})
}

func TestRunNilReferenceDisablesProjection(t *testing.T) {
	m := mesh.Icosphere(1, 2)
	field := BuildField(m, 0.01, 0.3, 0.3)
	// Must not panic despite projection not being disabled explicitly.
	Run(m, field, nil, nil, Options{Iterations: 1})
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Iterations != 3 || o.RelaxSteps != 3 {
		t.Errorf("defaults = %+v, want 3 iterations and 3 relax steps", o)
	}
	o = Options{Iterations: 7, RelaxSteps: 1}.withDefaults()
	if o.Iterations != 7 || o.RelaxSteps != 1 {
		t.Errorf("explicit values overridden: %+v", o)
	}
}

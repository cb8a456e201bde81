package mesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// quad returns two coplanar triangles sharing the edge (1,2):
//
//	2---3
//	|\  |
//	| \ |
//	0---1
func quad() *Mesh {
	m, err := FromBuffers([]r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}, [][3]int{
		{0, 1, 2}, {1, 3, 2},
	})
	if err != nil {
		panic(err)
	}
	return m
}

func TestFromBuffersValidation(t *testing.T) {
	positions := []r3.Vec{{}, {X: 1}, {Y: 1}}
	if _, err := FromBuffers(positions, [][3]int{{0, 1, 3}}); err == nil {
		t.Error("out of range vertex reference accepted")
	}
	if _, err := FromBuffers(positions, [][3]int{{0, 1, 1}}); err == nil {
		t.Error("repeated vertex accepted")
	}
	m, err := FromBuffers(positions, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if m.NumVertices() != 3 || m.NumFaces() != 1 {
		t.Errorf("got %d vertices, %d faces, want 3, 1", m.NumVertices(), m.NumFaces())
	}
}

func TestAdjacency(t *testing.T) {
	m := quad()
	shared := MakeEdge(1, 2)
	if got := len(m.EdgeFaces(shared)); got != 2 {
		t.Fatalf("shared edge has %d faces, want 2", got)
	}
	if got := len(m.EdgeFaces(MakeEdge(0, 1))); got != 1 {
		t.Fatalf("boundary edge has %d faces, want 1", got)
	}
	opp := m.OppositeVertices(shared)
	if len(opp) != 2 || (opp[0] != 0 && opp[1] != 0) || (opp[0] != 3 && opp[1] != 3) {
		t.Errorf("opposite vertices of shared edge = %v, want {0, 3}", opp)
	}
	got := m.VertexNeighbors(3)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("neighbors of 3 = %v, want [1 2]", got)
	}
	if got := m.Valence(0); got != 2 {
		t.Errorf("valence of 0 = %d, want 2", got)
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestSplitEdge(t *testing.T) {
	m := quad()
	nv, nf := m.NumVertices(), m.NumFaces()
	mid, ok := m.SplitEdge(MakeEdge(1, 2), r3.Vec{X: 0.5, Y: 0.5})
	if !ok {
		t.Fatal("split of existing edge failed")
	}
	if m.NumVertices() != nv+1 {
		t.Errorf("vertices = %d, want %d", m.NumVertices(), nv+1)
	}
	// Both incident faces are replaced by two each.
	if m.NumFaces() != nf+2 {
		t.Errorf("faces = %d, want %d", m.NumFaces(), nf+2)
	}
	if m.HasEdge(MakeEdge(1, 2)) {
		t.Error("split edge still present")
	}
	for _, w := range []int{0, 1, 2, 3} {
		if !m.HasEdge(MakeEdge(mid, w)) {
			t.Errorf("edge (%d, %d) missing after split", mid, w)
		}
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}

	if _, ok := m.SplitEdge(MakeEdge(0, 3), r3.Vec{}); ok {
		t.Error("split of nonexistent edge succeeded")
	}
}

func TestFlipEdge(t *testing.T) {
	m := quad()
	e := MakeEdge(1, 2)
	if !m.FlipEdge(e) {
		t.Fatal("flip of interior edge failed")
	}
	if m.HasEdge(e) {
		t.Error("flipped edge still present")
	}
	if !m.HasEdge(MakeEdge(0, 3)) {
		t.Error("replacement edge missing")
	}
	if m.NumFaces() != 2 {
		t.Errorf("faces = %d, want 2", m.NumFaces())
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	// Flipping back restores the original connectivity.
	if !m.FlipEdge(MakeEdge(0, 3)) {
		t.Fatal("flip back failed")
	}
	if !m.HasEdge(e) {
		t.Error("original edge not restored")
	}
}

func TestFlipEdgeRejectsBorder(t *testing.T) {
	m := quad()
	if m.FlipEdge(MakeEdge(0, 1)) {
		t.Error("border edge flip succeeded")
	}
}

func TestCollapseEdge(t *testing.T) {
	m := Grid(3, 3.0)
	nv, nf := m.NumVertices(), m.NumFaces()
	// Horizontal edge between two interior vertices.
	e := MakeEdge(5, 6)
	if len(m.EdgeFaces(e)) != 2 {
		t.Fatalf("edge %v has %d faces, want 2", e, len(m.EdgeFaces(e)))
	}
	to := r3.Scale(0.5, r3.Add(m.Position(5), m.Position(6)))
	if !m.CollapseEdge(e, 5, to) {
		t.Fatal("collapse of interior edge failed")
	}
	if m.NumVertices() != nv-1 {
		t.Errorf("vertices = %d, want %d", m.NumVertices(), nv-1)
	}
	if m.NumFaces() != nf-2 {
		t.Errorf("faces = %d, want %d", m.NumFaces(), nf-2)
	}
	if m.VertexAlive(6) {
		t.Error("collapsed vertex still alive")
	}
	if got := m.Position(5); !vecApprox(got, to, 1e-15) {
		t.Errorf("merged vertex at %v, want %v", got, to)
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestCollapseEdgeLinkCondition(t *testing.T) {
	// Vertex 4 neighbors both endpoints of (0,1) without being opposite
	// the edge, so collapsing would fold the fan onto itself.
	m, err := FromBuffers([]r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}, {X: 0.5, Y: -1}, {X: 0.5, Y: 2},
	}, [][3]int{
		{0, 1, 2}, {1, 0, 3}, {4, 2, 0}, {1, 2, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.CollapseEdge(MakeEdge(0, 1), 0, m.Position(0)) {
		t.Error("link-violating collapse succeeded")
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestCollapseEdgeRejectsDuplicateFace(t *testing.T) {
	// A tetrahedron satisfies the vertex link condition on every edge,
	// but collapsing one would fold the two faces opposite the edge
	// into a coincident pair of opposite orientation.
	m, err := FromBuffers([]r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0.5, Y: 1, Z: 0}, {X: 0.5, Y: 0.5, Z: 1},
	}, [][3]int{
		{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {0, 2, 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.CollapseEdge(MakeEdge(0, 1), 0, m.Position(0)) {
		t.Error("tetrahedron edge collapse succeeded")
	}
	if m.NumFaces() != 4 || m.NumVertices() != 4 {
		t.Errorf("rejected collapse changed the mesh: %d vertices, %d faces",
			m.NumVertices(), m.NumFaces())
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestBuffersCompaction(t *testing.T) {
	m := Grid(3, 3.0)
	if !m.CollapseEdge(MakeEdge(5, 6), 5, m.Position(5)) {
		t.Fatal("setup collapse failed")
	}
	verts, faces := m.Buffers()
	if len(verts) != m.NumVertices() {
		t.Errorf("compacted vertices = %d, want %d", len(verts), m.NumVertices())
	}
	if len(faces) != m.NumFaces() {
		t.Errorf("compacted faces = %d, want %d", len(faces), m.NumFaces())
	}
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= len(verts) {
				t.Fatalf("face %d references %d outside compacted range", i, v)
			}
		}
	}
	// Round-trip through the buffers yields an equivalent mesh.
	m2, err := FromBuffers(verts, faces)
	if err != nil {
		t.Fatal(err)
	}
	if m2.NumVertices() != m.NumVertices() || m2.NumFaces() != m.NumFaces() {
		t.Error("round-trip through buffers changed counts")
	}
}

func TestCloneIsolation(t *testing.T) {
	m := Cube(2)
	c := m.Clone()
	c.SetPosition(0, r3.Vec{X: 9})
	if vecApprox(m.Position(0), c.Position(0), 1e-15) {
		t.Error("clone shares position storage")
	}
	c.SplitEdge(c.Edges()[0], r3.Vec{})
	if m.NumVertices() == c.NumVertices() {
		t.Error("clone shares topology")
	}
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestVertexSlotReuse(t *testing.T) {
	m := Grid(3, 3.0)
	slots := m.VertexSlots()
	if !m.CollapseEdge(MakeEdge(5, 6), 5, m.Position(5)) {
		t.Fatal("setup collapse failed")
	}
	v := m.AddVertex(r3.Vec{X: 0.1})
	if v != 6 {
		t.Errorf("new vertex got slot %d, want reused slot 6", v)
	}
	if m.VertexSlots() != slots {
		t.Errorf("arena grew to %d slots, want %d", m.VertexSlots(), slots)
	}
}

func vecApprox(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

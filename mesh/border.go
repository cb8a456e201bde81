package mesh

import (
	"github.com/3DOM-FBK/mesh-optimizer/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Border handling. A border edge has fewer than two incident faces.
// Overlong border edges are pre-split so remeshing can satisfy the
// sizing field along boundaries while leaving them geometrically
// untouched, then the whole border is frozen into a ConstraintSet.

// ConstraintSet is a set of edges excluded from topological
// modification during remeshing.
type ConstraintSet map[Edge]struct{}

// Contains reports whether e is protected.
func (cs ConstraintSet) Contains(e Edge) bool {
	_, ok := cs[e]
	return ok
}

// PinnedVertices returns the endpoints of all protected edges.
// Pinned vertices never move during relaxation.
func (cs ConstraintSet) PinnedVertices() map[int]bool {
	pinned := make(map[int]bool, 2*len(cs))
	for e := range cs {
		pinned[e.V1] = true
		pinned[e.V2] = true
	}
	return pinned
}

// IsBorderEdge reports whether e exists and has fewer than two
// incident faces.
func (m *Mesh) IsBorderEdge(e Edge) bool {
	fs, ok := m.edgeFaces[e]
	return ok && len(fs) < 2
}

// IsBorderVertex reports whether any edge incident to v is a border
// edge.
func (m *Mesh) IsBorderVertex(v int) bool {
	for _, w := range m.VertexNeighbors(v) {
		if m.IsBorderEdge(MakeEdge(v, w)) {
			return true
		}
	}
	return false
}

// BorderEdges returns all border edges in deterministic order. The
// result is empty for a closed manifold mesh.
func (m *Mesh) BorderEdges() []Edge {
	var out []Edge
	for _, e := range m.Edges() {
		if len(m.edgeFaces[e]) < 2 {
			out = append(out, e)
		}
	}
	return out
}

// SplitLongBorderEdges midpoint-subdivides every border edge longer
// than maxLen until none remains, and returns the number of splits
// performed. Calling it again with the same bound is a no-op.
func (m *Mesh) SplitLongBorderEdges(maxLen float64) int {
	if maxLen <= 0 {
		return 0
	}
	queue := m.BorderEdges()
	splits := 0
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if !m.HasEdge(e) || m.EdgeLength(e) <= maxLen {
			continue
		}
		mid, ok := m.SplitEdge(e, midpointOf(m, e))
		if !ok {
			continue
		}
		splits++
		queue = append(queue, MakeEdge(e.V1, mid), MakeEdge(mid, e.V2))
	}
	return splits
}

// BorderConstraints snapshots the current border into a protected set.
func (m *Mesh) BorderConstraints() ConstraintSet {
	cs := make(ConstraintSet)
	for _, e := range m.BorderEdges() {
		cs[e] = struct{}{}
	}
	return cs
}

func midpointOf(m *Mesh, e Edge) r3.Vec {
	return d3.Midpoint(m.positions[e.V1], m.positions[e.V2])
}

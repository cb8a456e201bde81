package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Topological edits. Each edit keeps adjacency consistent and refuses
// to produce degenerate or normal-inverting faces.

// minFaceArea2 is the squared-doubled-area below which a face counts
// as degenerate.
const minFaceArea2 = 1e-24

// SplitEdge subdivides edge e at position at, replacing each incident
// face with two. It returns the index of the new vertex. Split fails
// only when the edge does not exist.
func (m *Mesh) SplitEdge(e Edge, at r3.Vec) (int, bool) {
	fs := m.edgeFaces[e]
	if len(fs) == 0 {
		return -1, false
	}
	incident := append([]int(nil), fs...)
	mid := m.AddVertex(at)
	for _, fi := range incident {
		f := m.faces[fi]
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if MakeEdge(a, b) != e {
				continue
			}
			c := f[(i+2)%3]
			m.RemoveFace(fi)
			m.AddFace(a, mid, c)
			m.AddFace(mid, b, c)
			break
		}
	}
	return mid, true
}

// CollapseEdge merges the endpoints of e into a single vertex placed at
// to. keep selects which endpoint survives and must be one of the two.
// The collapse is rejected when it would break the link condition,
// orphan the surviving vertex, or create a degenerate or inverted face.
func (m *Mesh) CollapseEdge(e Edge, keep int, to r3.Vec) bool {
	fs := m.edgeFaces[e]
	if len(fs) == 0 {
		return false
	}
	gone := e.V2
	if keep == e.V2 {
		gone = e.V1
	} else if keep != e.V1 {
		panic("mesh: CollapseEdge keep vertex not an endpoint")
	}
	// Link condition: the endpoints may share only the vertices
	// opposite the collapsing edge, one per incident face.
	if countCommon(m.VertexNeighbors(keep), m.VertexNeighbors(gone)) != len(fs) {
		return false
	}
	// The merged vertex must keep at least one face.
	if len(m.vertFaces[keep])+len(m.vertFaces[gone])-2*len(fs) < 1 {
		return false
	}
	// Rewriting a surviving face of gone must not duplicate an
	// existing face of keep. The vertex link condition alone misses
	// this on small closed components (a tetrahedron collapses into
	// two coincident faces of opposite orientation).
	for _, fi := range m.vertFaces[gone] {
		f := m.faces[fi]
		if f[0] == keep || f[1] == keep || f[2] == keep {
			continue // face dies with the edge.
		}
		for i := range f {
			if f[i] == gone {
				f[i] = keep
			}
		}
		for _, fj := range m.vertFaces[keep] {
			if sameVertexSet(m.faces[fj], f) {
				return false
			}
		}
	}
	if !m.collapseKeepsShape(keep, gone, to) || !m.collapseKeepsShape(gone, keep, to) {
		return false
	}
	for _, fi := range append([]int(nil), fs...) {
		m.RemoveFace(fi)
	}
	for _, fi := range append([]int(nil), m.vertFaces[gone]...) {
		f := m.faces[fi]
		m.RemoveFace(fi)
		for i := range f {
			if f[i] == gone {
				f[i] = keep
			}
		}
		m.AddFace(f[0], f[1], f[2])
	}
	m.SetPosition(keep, to)
	m.removeVertex(gone)
	return true
}

// collapseKeepsShape simulates moving v to at and checks that every
// surviving face of v stays non-degenerate and keeps its orientation.
func (m *Mesh) collapseKeepsShape(v, other int, at r3.Vec) bool {
	for _, fi := range m.vertFaces[v] {
		f := m.faces[fi]
		if f[0] == other || f[1] == other || f[2] == other {
			continue // face dies with the edge.
		}
		var before, after [3]r3.Vec
		for i, w := range f {
			before[i] = m.positions[w]
			if w == v {
				after[i] = at
			} else {
				after[i] = m.positions[w]
			}
		}
		nb := faceCross(before)
		na := faceCross(after)
		if r3.Norm2(na) < minFaceArea2 || r3.Dot(nb, na) <= 0 {
			return false
		}
	}
	return true
}

// FlipEdge rotates an interior edge inside its two incident faces.
// The flip is rejected for border edges, when the replacement edge
// already exists, and when a new face would be degenerate or inverted.
func (m *Mesh) FlipEdge(e Edge) bool {
	fs := m.edgeFaces[e]
	if len(fs) != 2 {
		return false
	}
	a, b, c, ok := orientFace(m.faces[fs[0]], e)
	if !ok {
		return false
	}
	a2, b2, d, ok := orientFace(m.faces[fs[1]], e)
	if !ok || a2 != b || b2 != a {
		return false // inconsistently oriented pair.
	}
	if m.HasEdge(MakeEdge(c, d)) {
		return false
	}
	pa, pb, pc, pd := m.positions[a], m.positions[b], m.positions[c], m.positions[d]
	old := r3.Add(faceCross([3]r3.Vec{pa, pb, pc}), faceCross([3]r3.Vec{pb, pa, pd}))
	n1 := faceCross([3]r3.Vec{pa, pd, pc})
	n2 := faceCross([3]r3.Vec{pd, pb, pc})
	if r3.Norm2(n1) < minFaceArea2 || r3.Norm2(n2) < minFaceArea2 {
		return false
	}
	if r3.Dot(n1, old) <= 0 || r3.Dot(n2, old) <= 0 {
		return false
	}
	m.RemoveFace(fs[0])
	m.RemoveFace(fs[1])
	m.AddFace(a, d, c)
	m.AddFace(d, b, c)
	return true
}

// orientFace returns the endpoints of e in the cyclic order they occur
// in face f, plus the opposite vertex.
func orientFace(f [3]int, e Edge) (a, b, opp int, ok bool) {
	for i := 0; i < 3; i++ {
		x, y := f[i], f[(i+1)%3]
		if MakeEdge(x, y) == e {
			return x, y, f[(i+2)%3], true
		}
	}
	return 0, 0, 0, false
}

// faceCross returns the unnormalized normal of a positioned triangle.
func faceCross(p [3]r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]))
}

// sameVertexSet reports whether two faces reference the same three
// vertices, in any order.
func sameVertexSet(a, b [3]int) bool {
	for _, v := range a {
		if v != b[0] && v != b[1] && v != b[2] {
			return false
		}
	}
	return true
}

// countCommon counts values present in both sorted slices.
func countCommon(a, b []int) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}

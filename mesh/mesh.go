// Package mesh implements an indexed triangle surface mesh with the
// topological edits needed by isotropic remeshing: edge split, edge
// collapse and edge flip. Vertices and faces live in arenas addressed
// by stable integer indices with free-lists, so edits never invalidate
// indices held by callers. Adjacency (vertex to incident faces, edge to
// incident faces) is maintained incrementally through every edit.
package mesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/3DOM-FBK/mesh-optimizer/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyMesh reports a mesh without faces where one is required.
	ErrEmptyMesh = errors.New("mesh: empty mesh")
)

// Edge is an undirected edge between two vertex indices,
// stored with the lower index first.
type Edge struct {
	V1, V2 int
}

// MakeEdge returns the canonical Edge joining a and b.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{V1: a, V2: b}
}

// Mesh is a triangulated surface. The zero value is not usable; use New
// or FromBuffers.
type Mesh struct {
	positions []r3.Vec
	faces     [][3]int
	aliveV    []bool
	aliveF    []bool
	freeV     []int
	freeF     []int
	// vertFaces[v] lists live faces incident to vertex v.
	vertFaces [][]int
	// edgeFaces maps each existing edge to its incident live faces.
	edgeFaces map[Edge][]int
	nv, nf    int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{edgeFaces: make(map[Edge][]int)}
}

// FromBuffers assembles a mesh from a vertex position buffer and a
// triangle index buffer. Faces must reference three distinct valid
// vertices; face orientation is taken as given.
func FromBuffers(positions []r3.Vec, faces [][3]int) (*Mesh, error) {
	m := New()
	for _, p := range positions {
		m.AddVertex(p)
	}
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= len(positions) {
				return nil, fmt.Errorf("mesh: face %d references vertex %d out of range", i, v)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("mesh: face %d references a vertex twice", i)
		}
		m.AddFace(f[0], f[1], f[2])
	}
	return m, nil
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int { return m.nv }

// NumFaces returns the number of live faces.
func (m *Mesh) NumFaces() int { return m.nf }

// VertexSlots returns the size of the vertex arena, including dead
// slots. Any live vertex index is below this bound, which makes it the
// right length for per-vertex attribute slices.
func (m *Mesh) VertexSlots() int { return len(m.positions) }

// VertexAlive reports whether vertex index v refers to a live vertex.
func (m *Mesh) VertexAlive(v int) bool {
	return v >= 0 && v < len(m.aliveV) && m.aliveV[v]
}

// FaceAlive reports whether face index f refers to a live face.
func (m *Mesh) FaceAlive(f int) bool {
	return f >= 0 && f < len(m.aliveF) && m.aliveF[f]
}

// Position returns the position of vertex v.
func (m *Mesh) Position(v int) r3.Vec { return m.positions[v] }

// SetPosition moves vertex v to p.
func (m *Mesh) SetPosition(v int, p r3.Vec) { m.positions[v] = p }

// Face returns the vertex indices of face f.
func (m *Mesh) Face(f int) [3]int { return m.faces[f] }

// AddVertex adds a vertex at p and returns its index,
// reusing a dead slot when one is available.
func (m *Mesh) AddVertex(p r3.Vec) int {
	if n := len(m.freeV); n > 0 {
		v := m.freeV[n-1]
		m.freeV = m.freeV[:n-1]
		m.positions[v] = p
		m.aliveV[v] = true
		m.vertFaces[v] = m.vertFaces[v][:0]
		m.nv++
		return v
	}
	m.positions = append(m.positions, p)
	m.aliveV = append(m.aliveV, true)
	m.vertFaces = append(m.vertFaces, nil)
	m.nv++
	return len(m.positions) - 1
}

// AddFace adds the oriented triangle (a,b,c) and returns its index.
// The vertices must be live and distinct.
func (m *Mesh) AddFace(a, b, c int) int {
	if a == b || b == c || a == c {
		panic("mesh: AddFace with repeated vertex")
	}
	if !m.VertexAlive(a) || !m.VertexAlive(b) || !m.VertexAlive(c) {
		panic("mesh: AddFace with dead vertex")
	}
	var fi int
	f := [3]int{a, b, c}
	if n := len(m.freeF); n > 0 {
		fi = m.freeF[n-1]
		m.freeF = m.freeF[:n-1]
		m.faces[fi] = f
		m.aliveF[fi] = true
	} else {
		m.faces = append(m.faces, f)
		m.aliveF = append(m.aliveF, true)
		fi = len(m.faces) - 1
	}
	for _, v := range f {
		m.vertFaces[v] = append(m.vertFaces[v], fi)
	}
	for i := 0; i < 3; i++ {
		e := MakeEdge(f[i], f[(i+1)%3])
		m.edgeFaces[e] = append(m.edgeFaces[e], fi)
	}
	m.nf++
	return fi
}

// RemoveFace deletes face f. Vertices left without any incident face
// remain live; callers decide their fate.
func (m *Mesh) RemoveFace(fi int) {
	if !m.FaceAlive(fi) {
		panic("mesh: RemoveFace on dead face")
	}
	f := m.faces[fi]
	for _, v := range f {
		m.vertFaces[v] = removeIndex(m.vertFaces[v], fi)
	}
	for i := 0; i < 3; i++ {
		e := MakeEdge(f[i], f[(i+1)%3])
		left := removeIndex(m.edgeFaces[e], fi)
		if len(left) == 0 {
			delete(m.edgeFaces, e)
		} else {
			m.edgeFaces[e] = left
		}
	}
	m.aliveF[fi] = false
	m.freeF = append(m.freeF, fi)
	m.nf--
}

// removeVertex retires a vertex slot. The vertex must have no incident
// faces left.
func (m *Mesh) removeVertex(v int) {
	if len(m.vertFaces[v]) != 0 {
		panic("mesh: removing vertex with incident faces")
	}
	m.aliveV[v] = false
	m.freeV = append(m.freeV, v)
	m.nv--
}

// HasEdge reports whether edge e exists in the mesh.
func (m *Mesh) HasEdge(e Edge) bool {
	_, ok := m.edgeFaces[e]
	return ok
}

// EdgeFaces returns the live faces incident to e. The returned slice is
// owned by the mesh and must not be mutated.
func (m *Mesh) EdgeFaces(e Edge) []int { return m.edgeFaces[e] }

// VertexFaces returns the live faces incident to v. The returned slice
// is owned by the mesh and must not be mutated.
func (m *Mesh) VertexFaces(v int) []int { return m.vertFaces[v] }

// OppositeVertices returns, for each face incident to e, the face
// vertex not on e.
func (m *Mesh) OppositeVertices(e Edge) []int {
	var opp []int
	for _, fi := range m.edgeFaces[e] {
		for _, v := range m.faces[fi] {
			if v != e.V1 && v != e.V2 {
				opp = append(opp, v)
			}
		}
	}
	return opp
}

// Edges returns all edges sorted by vertex indices so that callers
// iterate deterministically.
func (m *Mesh) Edges() []Edge {
	es := make([]Edge, 0, len(m.edgeFaces))
	for e := range m.edgeFaces {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].V1 != es[j].V1 {
			return es[i].V1 < es[j].V1
		}
		return es[i].V2 < es[j].V2
	})
	return es
}

// EachFace calls cb for every live face.
func (m *Mesh) EachFace(cb func(fi int, f [3]int)) {
	for fi, f := range m.faces {
		if m.aliveF[fi] {
			cb(fi, f)
		}
	}
}

// EachVertex calls cb for every live vertex.
func (m *Mesh) EachVertex(cb func(v int, p r3.Vec)) {
	for v, p := range m.positions {
		if m.aliveV[v] {
			cb(v, p)
		}
	}
}

// VertexNeighbors returns the sorted vertex indices sharing a face
// with v.
func (m *Mesh) VertexNeighbors(v int) []int {
	seen := make(map[int]struct{}, 8)
	for _, fi := range m.vertFaces[v] {
		for _, w := range m.faces[fi] {
			if w != v {
				seen[w] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

// Valence returns the number of vertices adjacent to v.
func (m *Mesh) Valence(v int) int { return len(m.VertexNeighbors(v)) }

// Clone returns a deep copy sharing no state with m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		positions: append([]r3.Vec(nil), m.positions...),
		faces:     append([][3]int(nil), m.faces...),
		aliveV:    append([]bool(nil), m.aliveV...),
		aliveF:    append([]bool(nil), m.aliveF...),
		freeV:     append([]int(nil), m.freeV...),
		freeF:     append([]int(nil), m.freeF...),
		vertFaces: make([][]int, len(m.vertFaces)),
		edgeFaces: make(map[Edge][]int, len(m.edgeFaces)),
		nv:        m.nv,
		nf:        m.nf,
	}
	for v, fs := range m.vertFaces {
		c.vertFaces[v] = append([]int(nil), fs...)
	}
	for e, fs := range m.edgeFaces {
		c.edgeFaces[e] = append([]int(nil), fs...)
	}
	return c
}

// Buffers returns compacted vertex and face buffers with dead slots
// removed. Face indices are remapped accordingly.
func (m *Mesh) Buffers() ([]r3.Vec, [][3]int) {
	remap := make([]int, len(m.positions))
	verts := make([]r3.Vec, 0, m.nv)
	for v, p := range m.positions {
		if !m.aliveV[v] {
			remap[v] = -1
			continue
		}
		remap[v] = len(verts)
		verts = append(verts, p)
	}
	faces := make([][3]int, 0, m.nf)
	for fi, f := range m.faces {
		if !m.aliveF[fi] {
			continue
		}
		faces = append(faces, [3]int{remap[f[0]], remap[f[1]], remap[f[2]]})
	}
	return verts, faces
}

// Triangles returns the live faces as positioned triangles.
func (m *Mesh) Triangles() []r3.Triangle {
	ts := make([]r3.Triangle, 0, m.nf)
	m.EachFace(func(_ int, f [3]int) {
		ts = append(ts, r3.Triangle{
			m.positions[f[0]],
			m.positions[f[1]],
			m.positions[f[2]],
		})
	})
	return ts
}

// CheckConsistency rebuilds adjacency from the face arena and compares
// it with the incremental bookkeeping. Used by tests after edits.
func (m *Mesh) CheckConsistency() error {
	wantVF := make(map[int]map[int]struct{})
	wantEF := make(map[Edge]int)
	for fi, f := range m.faces {
		if !m.aliveF[fi] {
			continue
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("face %d repeats a vertex: %v", fi, f)
		}
		for i, v := range f {
			if !m.VertexAlive(v) {
				return fmt.Errorf("face %d references dead vertex %d", fi, v)
			}
			if wantVF[v] == nil {
				wantVF[v] = make(map[int]struct{})
			}
			wantVF[v][fi] = struct{}{}
			wantEF[MakeEdge(v, f[(i+1)%3])]++
		}
	}
	for v := range m.vertFaces {
		if !m.aliveV[v] {
			continue
		}
		if len(m.vertFaces[v]) != len(wantVF[v]) {
			return fmt.Errorf("vertex %d has %d recorded incident faces, want %d",
				v, len(m.vertFaces[v]), len(wantVF[v]))
		}
		for _, fi := range m.vertFaces[v] {
			if _, ok := wantVF[v][fi]; !ok {
				return fmt.Errorf("vertex %d records face %d which is not incident", v, fi)
			}
		}
	}
	if len(m.edgeFaces) != len(wantEF) {
		return fmt.Errorf("edge map has %d edges, want %d", len(m.edgeFaces), len(wantEF))
	}
	for e, fs := range m.edgeFaces {
		if wantEF[e] != len(fs) {
			return fmt.Errorf("edge %v has %d recorded faces, want %d", e, len(fs), wantEF[e])
		}
	}
	return nil
}

// BoundingBox returns the axis-aligned bounding box of all live
// vertices. The zero box is returned for a vertexless mesh.
func (m *Mesh) BoundingBox() d3.Box {
	if m.nv == 0 {
		return d3.Box{}
	}
	first := true
	var bb d3.Box
	m.EachVertex(func(_ int, p r3.Vec) {
		if first {
			bb = d3.Box{Min: p, Max: p}
			first = false
			return
		}
		bb = bb.Include(p)
	})
	return bb
}

func removeIndex(s []int, x int) []int {
	for i, v := range s {
		if v == x {
			s[i] = s[len(s)-1]
			return s[:len(s)-1]
		}
	}
	return s
}

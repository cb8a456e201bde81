package remesh

import (
	"math"

	"github.com/3DOM-FBK/mesh-optimizer/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = surfTriangles{}
	_ kdtree.Bounder    = surfTriangles{}
	_ kdtree.Comparable = &surfTriangle{}
)

// Surface wraps a triangle soup in a kd-tree keyed on triangle
// centroids for nearest-point queries. Both the Hausdorff validator
// and relaxation re-projection query it.
type Surface struct {
	tree kdtree.Tree
}

// NewSurface indexes the given triangles. It panics on an empty slice.
func NewSurface(ts []r3.Triangle) *Surface {
	if len(ts) == 0 {
		panic("remesh: cannot index an empty surface")
	}
	tris := make(surfTriangles, len(ts))
	for i, t := range ts {
		tris[i] = surfTriangle{
			C: r3.Scale(1./3., r3.Add(r3.Add(t[0], t[1]), t[2])),
			T: t,
		}
	}
	tree := kdtree.New(tris, true)
	return &Surface{tree: *tree}
}

// Nearest returns the point of the surface closest to p and its
// distance. The triangle candidate is located by centroid proximity,
// then the exact closest point on that triangle is used, so the result
// is approximate for very elongated triangles.
func (s *Surface) Nearest(p r3.Vec) (r3.Vec, float64) {
	got, dist2 := s.tree.Nearest(&surfTriangle{C: p})
	tri := got.(*surfTriangle)
	return d3.ClosestOnTriangle(p, tri.T), math.Sqrt(dist2)
}

type surfTriangle struct {
	C r3.Vec // centroid, the kd-tree key
	T r3.Triangle
}

// isPoint reports whether t is a bare query point rather than an
// indexed triangle.
func (t *surfTriangle) isPoint() bool { return t.T == (r3.Triangle{}) }

// Compare returns the signed distance of t from the plane through b
// perpendicular to dimension d.
func (t *surfTriangle) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*surfTriangle)
	switch d {
	case 0:
		return t.C.X - q.C.X
	case 1:
		return t.C.Y - q.C.Y
	case 2:
		return t.C.Z - q.C.Z
	}
	panic("unreachable")
}

// Dims returns the number of dimensions described in the Comparable.
func (t *surfTriangle) Dims() int { return 3 }

// Distance returns the squared distance between a query point and the
// closest point of the indexed triangle, or between centroids when
// both operands are triangles (tree construction).
func (t *surfTriangle) Distance(c kdtree.Comparable) float64 {
	q := c.(*surfTriangle)
	if t.isPoint() {
		if q.isPoint() {
			return r3.Norm2(r3.Sub(t.C, q.C))
		}
		t, q = q, t // make sure t is the triangle.
	} else if q.isPoint() {
		// fall through with q as the point.
	} else {
		return r3.Norm2(r3.Sub(t.C, q.C))
	}
	return r3.Norm2(r3.Sub(q.C, d3.ClosestOnTriangle(q.C, t.T)))
}

type surfTriangles []surfTriangle

// Index returns the ith element of the list of points.
func (s surfTriangles) Index(i int) kdtree.Comparable { return &s[i] }

// Len returns the length of the list.
func (s surfTriangles) Len() int { return len(s) }

// Pivot partitions the list based on the dimension specified.
func (s surfTriangles) Pivot(d kdtree.Dim) int {
	p := surfPlane{dim: int(d), tris: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half open
// indexing equivalent to built-in slice indexing.
func (s surfTriangles) Slice(start, end int) kdtree.Interface {
	return s[start:end]
}

func (s surfTriangles) Bounds() *kdtree.Bounding {
	min := d3.Elem(math.MaxFloat64)
	max := d3.Elem(-math.MaxFloat64)
	for _, t := range s {
		min = d3.MinElem(min, t.C)
		max = d3.MaxElem(max, t.C)
	}
	return &kdtree.Bounding{
		Min: &surfTriangle{C: min},
		Max: &surfTriangle{C: max},
	}
}

type surfPlane struct {
	dim  int
	tris surfTriangles
}

func (p surfPlane) Less(i, j int) bool {
	return p.tris[i].Compare(&p.tris[j], kdtree.Dim(p.dim)) < 0
}
func (p surfPlane) Swap(i, j int) {
	p.tris[i], p.tris[j] = p.tris[j], p.tris[i]
}
func (p surfPlane) Len() int { return len(p.tris) }
func (p surfPlane) Slice(start, end int) kdtree.SortSlicer {
	p.tris = p.tris[start:end]
	return p
}

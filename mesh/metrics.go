package mesh

import (
	"math"

	"github.com/3DOM-FBK/mesh-optimizer/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Discrete geometry estimators. Degenerate inputs produce documented
// fallback values instead of errors; NaN marks per-vertex samples that
// must be excluded from aggregates.

// EdgeLength returns the Euclidean length of e.
func (m *Mesh) EdgeLength(e Edge) float64 {
	return r3.Norm(r3.Sub(m.positions[e.V2], m.positions[e.V1]))
}

// MeanEdgeLength returns the arithmetic mean of all edge lengths,
// or 0 for an edgeless mesh.
func (m *Mesh) MeanEdgeLength() float64 {
	if len(m.edgeFaces) == 0 {
		return 0
	}
	var total float64
	for e := range m.edgeFaces {
		total += m.EdgeLength(e)
	}
	return total / float64(len(m.edgeFaces))
}

// VertexCurvature estimates the mean curvature magnitude at v with the
// angle-defect method: the discrete Gaussian curvature (2π minus the sum
// of incident interior angles, divided by one third of the incident face
// area) proxied to mean curvature as the square root of its magnitude.
// Vertices with no measurable angle or vanishing mixed area yield NaN.
func (m *Mesh) VertexCurvature(v int) float64 {
	fs := m.vertFaces[v]
	if len(fs) == 0 {
		return math.NaN()
	}
	var angleSum, mixedArea float64
	measured := false
	for _, fi := range fs {
		f := m.faces[fi]
		p := [3]r3.Vec{m.positions[f[0]], m.positions[f[1]], m.positions[f[2]]}
		mixedArea += 0.5 * r3.Norm(faceCross(p)) / 3
		var a, b r3.Vec
		switch v {
		case f[0]:
			a, b = p[1], p[2]
		case f[1]:
			a, b = p[2], p[0]
		default:
			a, b = p[0], p[1]
		}
		theta := d3.InteriorAngle(m.positions[v], a, b)
		if !math.IsNaN(theta) {
			angleSum += theta
			measured = true
		}
	}
	if !measured || mixedArea <= 1e-20 {
		return math.NaN()
	}
	gaussian := (2*math.Pi - angleSum) / mixedArea
	return math.Sqrt(math.Abs(gaussian))
}

// AverageCurvatureRadius returns the reciprocal of the mean finite,
// positive per-vertex curvature. When no vertex yields a finite
// curvature the radius falls back to a tenth of the bounding box
// diagonal, or to 1 for a scaleless mesh. A near-zero mean curvature
// (flat surface) also yields a radius of 1.
func (m *Mesh) AverageCurvatureRadius() float64 {
	var ks []float64
	m.EachVertex(func(v int, _ r3.Vec) {
		k := m.VertexCurvature(v)
		if !math.IsNaN(k) && !math.IsInf(k, 0) && k > 1e-10 {
			ks = append(ks, k)
		}
	})
	if len(ks) == 0 {
		if diag := m.BoundingBox().Diagonal(); diag > 0 {
			return 0.1 * diag
		}
		return 1.0
	}
	avg := stat.Mean(ks, nil)
	if avg > 1e-8 {
		return 1 / avg
	}
	return 1.0
}

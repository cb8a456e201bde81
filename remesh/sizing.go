// Package remesh implements curvature-adaptive isotropic remeshing with
// an error-controlled retry loop. A sizing field derived from discrete
// curvature drives repeated split/collapse/flip/relax passes, the
// deviation from the input surface is measured as a sampled
// bidirectional Hausdorff distance, and the controller tightens the
// edge-length bounds until the deviation fits the tolerance or the
// attempt budget runs out.
package remesh

import (
	"math"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// defaultDensity matches roughly 32 sample points over a unit sphere,
// the density the original pipeline was tuned for.
const defaultDensity = 2.0

const maxGradationPasses = 16

// EdgeLengthFromDensity returns the edge length of an equilateral
// triangle tiling that samples a sphere of the given curvature radius
// at the given relative density. A density of 1 corresponds to about
// 16 points over a unit sphere. The result decreases with density and
// grows with radius.
func EdgeLengthFromDensity(density, radius float64) float64 {
	n := 16 * density
	areaPerPoint := 4 * math.Pi * radius * radius / n
	return math.Sqrt(4 * areaPerPoint / math.Sqrt(3))
}

// ComputeTargetLength derives the global target edge length of a mesh
// from its average curvature radius at the default density.
func ComputeTargetLength(m *mesh.Mesh) float64 {
	return EdgeLengthFromDensity(defaultDensity, m.AverageCurvatureRadius())
}

// SizingField assigns every vertex a target edge length within
// [EdgeMin, EdgeMax], derived from local curvature and smoothed so
// that adjacent values differ by at most a tolerance-driven gradation
// factor. The field follows the mesh through splits via Interpolate;
// it is otherwise immutable for the duration of one remeshing pass.
type SizingField struct {
	EdgeMin, EdgeMax float64
	target           []float64
}

// BuildField constructs the adaptive sizing field for m. Smaller
// tolerances yield a gradation factor closer to 1 and therefore a
// spatially smoother field.
func BuildField(m *mesh.Mesh, tolerance, edgeMin, edgeMax float64) *SizingField {
	f := &SizingField{
		EdgeMin: edgeMin,
		EdgeMax: edgeMax,
		target:  make([]float64, m.VertexSlots()),
	}
	// Fallback radius for vertices without a usable curvature sample.
	meshRadius := m.AverageCurvatureRadius()
	m.EachVertex(func(v int, _ r3.Vec) {
		r := meshRadius
		if k := m.VertexCurvature(v); !math.IsNaN(k) && k > 1e-8 {
			r = 1 / k
		}
		f.target[v] = f.clamp(EdgeLengthFromDensity(defaultDensity, r))
	})
	f.grade(m, gradationFactor(tolerance, edgeMin, edgeMax))
	return f
}

// gradationFactor maps the approximation tolerance to the maximum
// allowed ratio between adjacent field values. It approaches 1 as the
// tolerance shrinks relative to the working edge-length scale.
func gradationFactor(tolerance, edgeMin, edgeMax float64) float64 {
	scale := 0.1 * math.Sqrt(edgeMin*edgeMax)
	if tolerance <= 0 || scale <= 0 {
		return 1.2
	}
	return 1 + tolerance/(tolerance+scale)
}

// grade relaxes the field until no edge joins values whose ratio
// exceeds gamma.
func (f *SizingField) grade(m *mesh.Mesh, gamma float64) {
	edges := m.Edges()
	for pass := 0; pass < maxGradationPasses; pass++ {
		changed := false
		for _, e := range edges {
			a, b := e.V1, e.V2
			if f.target[a] > gamma*f.target[b] {
				f.target[a] = gamma * f.target[b]
				changed = true
			}
			if f.target[b] > gamma*f.target[a] {
				f.target[b] = gamma * f.target[a]
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// At returns the target edge length at vertex v.
func (f *SizingField) At(v int) float64 { return f.target[v] }

// EdgeTarget returns the target length for edge e, the mean of its
// endpoint values.
func (f *SizingField) EdgeTarget(e mesh.Edge) float64 {
	return 0.5 * (f.target[e.V1] + f.target[e.V2])
}

// Interpolate records the field value of a vertex created by splitting
// the edge (a, b) as the clamped mean of the endpoint values.
func (f *SizingField) Interpolate(v, a, b int) {
	for len(f.target) <= v {
		f.target = append(f.target, 0)
	}
	f.target[v] = f.clamp(0.5 * (f.target[a] + f.target[b]))
}

func (f *SizingField) clamp(x float64) float64 {
	return math.Min(f.EdgeMax, math.Max(f.EdgeMin, x))
}

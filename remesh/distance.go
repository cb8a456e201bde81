package remesh

import (
	"math"
	"runtime"
	"sync"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// sampleSeed fixes the barycentric sampling sequence so the distance
// estimate is deterministic for a given mesh and density.
const sampleSeed = 1

// defaultSamplesPerArea matches the point density the original
// validation ran with.
const defaultSamplesPerArea = 1000

// DistanceReport is the outcome of one Hausdorff evaluation.
type DistanceReport struct {
	// Distance is the larger of the two directed approximate
	// Hausdorff distances.
	Distance float64
	// SamplesPerArea is the sample density the estimate was computed
	// at. Accuracy and cost grow monotonically with it.
	SamplesPerArea float64
}

// Validator estimates the bidirectional approximate Hausdorff distance
// between two surfaces from sampled point sets.
type Validator struct {
	// SamplesPerArea is the number of face samples per unit area.
	// Zero selects the default density.
	SamplesPerArea float64
	// Concurrent is the number of goroutines used for nearest-point
	// queries. Zero selects GOMAXPROCS. Queries are independent, so
	// the result does not depend on this setting.
	Concurrent int
}

// Hausdorff samples both surfaces and returns the maximum over both
// directions of the sample-to-nearest-point distance. Both directions
// are required: surfaces of differing resolution are not symmetric
// under one-directional nearest-point distance.
func (v Validator) Hausdorff(a, b *mesh.Mesh) DistanceReport {
	spa := v.SamplesPerArea
	if spa <= 0 {
		spa = defaultSamplesPerArea
	}
	workers := v.Concurrent
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ab := directedDistance(a, b, spa, workers)
	ba := directedDistance(b, a, spa, workers)
	return DistanceReport{
		Distance:       math.Max(ab, ba),
		SamplesPerArea: spa,
	}
}

// directedDistance returns the maximum distance from samples of src to
// the surface of dst.
func directedDistance(src, dst *mesh.Mesh, samplesPerArea float64, workers int) float64 {
	samples := sampleSurface(src, samplesPerArea)
	if len(samples) == 0 {
		return 0
	}
	surf := NewSurface(dst.Triangles())
	if workers > len(samples) {
		workers = len(samples)
	}
	if workers <= 1 {
		var worst float64
		for _, p := range samples {
			if _, d := surf.Nearest(p); d > worst {
				worst = d
			}
		}
		return worst
	}
	worsts := make([]float64, workers)
	var wg sync.WaitGroup
	chunk := (len(samples) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(samples) {
			hi = len(samples)
		}
		wg.Add(1)
		go func(w int, pts []r3.Vec) {
			defer wg.Done()
			for _, p := range pts {
				if _, d := surf.Nearest(p); d > worsts[w] {
					worsts[w] = d
				}
			}
		}(w, samples[lo:hi])
	}
	wg.Wait()
	worst := worsts[0]
	for _, d := range worsts[1:] {
		worst = math.Max(worst, d)
	}
	return worst
}

// sampleSurface returns every vertex of m plus area-proportional
// barycentric samples of each face, drawn from a fixed-seed source so
// repeated runs sample identical points.
func sampleSurface(m *mesh.Mesh, samplesPerArea float64) []r3.Vec {
	rng := rand.New(rand.NewSource(sampleSeed))
	samples := make([]r3.Vec, 0, m.NumVertices())
	m.EachVertex(func(_ int, p r3.Vec) {
		samples = append(samples, p)
	})
	m.EachFace(func(_ int, f [3]int) {
		a := m.Position(f[0])
		b := m.Position(f[1])
		c := m.Position(f[2])
		ab := r3.Sub(b, a)
		ac := r3.Sub(c, a)
		area := 0.5 * r3.Norm(r3.Cross(ab, ac))
		n := int(area * samplesPerArea)
		for i := 0; i < n; i++ {
			u := rng.Float64()
			v := rng.Float64()
			if u+v > 1 {
				u, v = 1-u, 1-v
			}
			samples = append(samples, r3.Add(a, r3.Add(r3.Scale(u, ab), r3.Scale(v, ac))))
		}
	})
	return samples
}

package remesh

import (
	"errors"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"go.uber.org/zap"
)

// ErrToleranceNotMet reports that every remeshing attempt exceeded the
// distance tolerance. The best-effort mesh of the last attempt is
// still returned; the caller decides whether to accept it.
var ErrToleranceNotMet = errors.New("remesh: distance tolerance not met after all attempts")

// Controller runs remeshing attempts against a distance tolerance,
// tightening the edge-length bounds after each shortfall. Attempts are
// inherently sequential; independent input meshes may be processed by
// independent Controllers in parallel.
type Controller struct {
	// MaxAttempts bounds the retry loop. Default 3.
	MaxAttempts int
	// Iterations and RelaxSteps configure each remeshing pass; zero
	// selects the Options defaults.
	Iterations int
	RelaxSteps int
	// NoProjection disables re-projection onto the original surface.
	NoProjection bool
	// Tolerance is the sizing-field approximation tolerance.
	// Zero derives target/30.
	Tolerance float64
	// EdgeMin and EdgeMax bound the sizing field. Zero derives
	// target/20 and target*2 respectively.
	EdgeMin float64
	EdgeMax float64
	// DistTolerance is the acceptable Hausdorff distance.
	// Zero derives target/2.
	DistTolerance float64
	// Validator measures each attempt.
	Validator Validator
	// Log receives per-attempt progress. Nil disables logging.
	Log *zap.Logger
}

// Result is the outcome of a Controller run.
type Result struct {
	// Mesh is the remeshed surface: the accepted attempt, or the last
	// best-effort attempt when ErrToleranceNotMet is returned.
	Mesh *mesh.Mesh
	// Report is the distance evaluation of Mesh.
	Report DistanceReport
	// Attempts is the number of attempts consumed.
	Attempts int
	// TargetLength is the curvature-derived global target edge length.
	TargetLength float64
}

// Remesh runs the control loop on a read-only original mesh. Each
// attempt works on a fresh clone: the original is pre-split along
// overlong border edges, its border frozen, the sizing field built and
// the remesher run, then the bidirectional Hausdorff distance decides
// acceptance. On shortfall the edge bounds and the sizing tolerance
// are halved and the attempt repeats.
func (c Controller) Remesh(original *mesh.Mesh) (Result, error) {
	if original.NumFaces() == 0 {
		return Result{}, mesh.ErrEmptyMesh
	}
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	target := ComputeTargetLength(original)
	tol := pick(c.Tolerance, target/30)
	distTol := pick(c.DistTolerance, target/2)
	edgeMin := pick(c.EdgeMin, target/20)
	edgeMax := pick(c.EdgeMax, target*2)
	log.Info("remeshing",
		zap.Float64("target_length", target),
		zap.Float64("dist_tolerance", distTol),
		zap.Int("vertices", original.NumVertices()),
		zap.Int("faces", original.NumFaces()),
	)

	var ref *Surface
	if !c.NoProjection {
		ref = NewSurface(original.Triangles())
	}
	opts := Options{
		Iterations:   c.Iterations,
		RelaxSteps:   c.RelaxSteps,
		NoProjection: c.NoProjection,
	}

	var working *mesh.Mesh
	var report DistanceReport
	for attempt := 0; attempt < attempts; attempt++ {
		working = original.Clone()
		working.SplitLongBorderEdges(edgeMax)
		protected := working.BorderConstraints()
		field := BuildField(working, tol, edgeMin, edgeMax)
		Run(working, field, protected, ref, opts)
		report = c.Validator.Hausdorff(original, working)
		log.Info("remesh attempt done",
			zap.Int("attempt", attempt+1),
			zap.Float64("hausdorff", report.Distance),
			zap.Float64("edge_min", edgeMin),
			zap.Float64("edge_max", edgeMax),
			zap.Int("vertices", working.NumVertices()),
			zap.Int("faces", working.NumFaces()),
		)
		if report.Distance <= distTol {
			return Result{
				Mesh:         working,
				Report:       report,
				Attempts:     attempt + 1,
				TargetLength: target,
			}, nil
		}
		// Tighten resolution and, with it, the field gradation.
		edgeMin /= 2
		edgeMax /= 2
		tol /= 2
		log.Info("distance above tolerance, tightening bounds",
			zap.Float64("edge_min", edgeMin),
			zap.Float64("edge_max", edgeMax),
			zap.Float64("tolerance", tol),
		)
	}
	return Result{
		Mesh:         working,
		Report:       report,
		Attempts:     attempts,
		TargetLength: target,
	}, ErrToleranceNotMet
}

func pick(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

package remesh

import (
	"math"

	"github.com/3DOM-FBK/mesh-optimizer/internal/d3"
	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Split and collapse thresholds relative to the local target
	// length, the classical isotropic remeshing constants.
	splitRatio    = 4.0 / 3.0
	collapseRatio = 4.0 / 5.0

	// maxSplitRounds caps the refinement cascade within a single
	// iteration.
	maxSplitRounds = 10

	targetValenceInterior = 6
	targetValenceBorder   = 4
)

// Options configure one remeshing pass. Zero values select the
// defaults used by the controller.
type Options struct {
	// Iterations is the number of split/collapse/flip/relax passes.
	// Termination is iteration-count based on purpose; the pass count
	// trades output quality for predictable cost. Default 3.
	Iterations int
	// RelaxSteps is the number of tangential smoothing sub-steps per
	// iteration. Default 3.
	RelaxSteps int
	// NoProjection disables re-projecting relaxed vertices and split
	// midpoints onto the reference surface.
	NoProjection bool
}

func (o Options) withDefaults() Options {
	if o.Iterations <= 0 {
		o.Iterations = 3
	}
	if o.RelaxSteps <= 0 {
		o.RelaxSteps = 3
	}
	return o
}

// Run drives every edge of m toward the sizing field. Edges in
// protected are never split, collapsed or flipped and their endpoints
// never move. ref is the original surface used for re-projection; it
// may be nil, which implies NoProjection.
func Run(m *mesh.Mesh, field *SizingField, protected mesh.ConstraintSet, ref *Surface, opts Options) {
	opts = opts.withDefaults()
	if ref == nil {
		opts.NoProjection = true
	}
	r := &remesher{
		m:         m,
		field:     field,
		protected: protected,
		pinned:    protected.PinnedVertices(),
		ref:       ref,
		opts:      opts,
	}
	for i := 0; i < opts.Iterations; i++ {
		r.splitLongEdges()
		r.collapseShortEdges()
		r.equalizeValences()
		for j := 0; j < opts.RelaxSteps; j++ {
			r.tangentialRelax()
		}
	}
}

type remesher struct {
	m         *mesh.Mesh
	field     *SizingField
	protected mesh.ConstraintSet
	pinned    map[int]bool
	ref       *Surface
	opts      Options
}

// splitLongEdges subdivides edges longer than 4/3 of their local
// target. Fresh halves may still be long, so rounds repeat until no
// edge splits.
func (r *remesher) splitLongEdges() {
	for round := 0; round < maxSplitRounds; round++ {
		split := false
		for _, e := range r.m.Edges() {
			if !r.m.HasEdge(e) || r.protected.Contains(e) {
				continue
			}
			if r.m.EdgeLength(e) <= splitRatio*r.field.EdgeTarget(e) {
				continue
			}
			at := d3.Midpoint(r.m.Position(e.V1), r.m.Position(e.V2))
			if !r.opts.NoProjection {
				at, _ = r.ref.Nearest(at)
			}
			if mid, ok := r.m.SplitEdge(e, at); ok {
				r.field.Interpolate(mid, e.V1, e.V2)
				split = true
			}
		}
		if !split {
			return
		}
	}
}

// collapseShortEdges removes edges shorter than 4/5 of their local
// target, merging into the midpoint, or into a pinned endpoint so
// protected geometry stays put.
func (r *remesher) collapseShortEdges() {
	for _, e := range r.m.Edges() {
		if !r.m.HasEdge(e) || r.protected.Contains(e) {
			continue
		}
		if r.pinned[e.V1] && r.pinned[e.V2] {
			continue // both endpoints belong to protected edges.
		}
		if r.m.EdgeLength(e) >= collapseRatio*r.field.EdgeTarget(e) {
			continue
		}
		keep := e.V1
		to := d3.Midpoint(r.m.Position(e.V1), r.m.Position(e.V2))
		if r.pinned[e.V1] {
			to = r.m.Position(e.V1)
		} else if r.pinned[e.V2] {
			keep = e.V2
			to = r.m.Position(e.V2)
		}
		if !r.collapseStaysShort(e, to) {
			continue
		}
		r.m.CollapseEdge(e, keep, to)
	}
}

// collapseStaysShort rejects collapses that would immediately create
// oversized edges around the merged vertex.
func (r *remesher) collapseStaysShort(e mesh.Edge, to r3.Vec) bool {
	for _, v := range [2]int{e.V1, e.V2} {
		for _, w := range r.m.VertexNeighbors(v) {
			if w == e.V1 || w == e.V2 {
				continue
			}
			limit := splitRatio * 0.5 * (r.field.At(v) + r.field.At(w))
			if r3.Norm(r3.Sub(to, r.m.Position(w))) > limit {
				return false
			}
		}
	}
	return true
}

// equalizeValences flips interior edges when doing so brings the four
// involved vertices closer to the ideal valence (6 interior, 4 on the
// border).
func (r *remesher) equalizeValences() {
	for _, e := range r.m.Edges() {
		if !r.m.HasEdge(e) || r.protected.Contains(e) {
			continue
		}
		if len(r.m.EdgeFaces(e)) != 2 {
			continue
		}
		opp := r.m.OppositeVertices(e)
		if len(opp) != 2 {
			continue
		}
		a, b, c, d := e.V1, e.V2, opp[0], opp[1]
		before := r.valenceDeviation(a, 0) + r.valenceDeviation(b, 0) +
			r.valenceDeviation(c, 0) + r.valenceDeviation(d, 0)
		after := r.valenceDeviation(a, -1) + r.valenceDeviation(b, -1) +
			r.valenceDeviation(c, +1) + r.valenceDeviation(d, +1)
		if after < before {
			r.m.FlipEdge(e)
		}
	}
}

func (r *remesher) valenceDeviation(v, delta int) float64 {
	want := targetValenceInterior
	if r.m.IsBorderVertex(v) {
		want = targetValenceBorder
	}
	dev := float64(r.m.Valence(v) + delta - want)
	return dev * dev
}

// tangentialRelax moves every free vertex toward the centroid of its
// neighbors within its tangent plane, then optionally re-projects it
// onto the reference surface. Border vertices slide only along the
// border tangent; pinned vertices do not move at all.
func (r *remesher) tangentialRelax() {
	type move struct {
		v  int
		to r3.Vec
	}
	var moves []move
	r.m.EachVertex(func(v int, p r3.Vec) {
		if r.pinned[v] {
			return
		}
		if r.m.IsBorderVertex(v) {
			if to, ok := r.borderRelax(v, p); ok {
				moves = append(moves, move{v, to})
			}
			return
		}
		nbs := r.m.VertexNeighbors(v)
		if len(nbs) == 0 {
			return
		}
		var g r3.Vec
		for _, w := range nbs {
			g = r3.Add(g, r.m.Position(w))
		}
		g = r3.Scale(1/float64(len(nbs)), g)
		n := r.vertexNormal(v)
		if r3.Norm2(n) < 1e-20 {
			return
		}
		dir := r3.Sub(g, p)
		to := r3.Add(p, r3.Sub(dir, r3.Scale(r3.Dot(n, dir), n)))
		if !r.opts.NoProjection {
			to, _ = r.ref.Nearest(to)
		}
		moves = append(moves, move{v, to})
	})
	for _, mv := range moves {
		r.m.SetPosition(mv.v, mv.to)
	}
}

// borderRelax slides an unprotected border vertex along the line of
// its two border neighbors, never off the boundary polyline.
func (r *remesher) borderRelax(v int, p r3.Vec) (r3.Vec, bool) {
	var bn []int
	for _, w := range r.m.VertexNeighbors(v) {
		if r.m.IsBorderEdge(mesh.MakeEdge(v, w)) {
			bn = append(bn, w)
		}
	}
	if len(bn) != 2 {
		return r3.Vec{}, false
	}
	p1, p2 := r.m.Position(bn[0]), r.m.Position(bn[1])
	t := r3.Sub(p2, p1)
	l2 := r3.Norm2(t)
	if l2 < 1e-20 {
		return r3.Vec{}, false
	}
	t = r3.Scale(1/math.Sqrt(l2), t)
	g := d3.Midpoint(p1, p2)
	return r3.Add(p, r3.Scale(r3.Dot(r3.Sub(g, p), t), t)), true
}

// vertexNormal is the area-weighted normal of the faces around v.
func (r *remesher) vertexNormal(v int) r3.Vec {
	var n r3.Vec
	for _, fi := range r.m.VertexFaces(v) {
		f := r.m.Face(fi)
		n = r3.Add(n, r3.Cross(
			r3.Sub(r.m.Position(f[1]), r.m.Position(f[0])),
			r3.Sub(r.m.Position(f[2]), r.m.Position(f[0])),
		))
	}
	if r3.Norm2(n) < 1e-20 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

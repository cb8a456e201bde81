package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ClosestOnTriangle returns the point of triangle t closest to p.
// The closest feature may be a vertex, an edge or the triangle interior.
func ClosestOnTriangle(p r3.Vec, t r3.Triangle) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)

	ap := r3.Sub(p, a)
	abAP := r3.Dot(ab, ap)
	acAP := r3.Dot(ac, ap)
	if abAP <= 0 && acAP <= 0 {
		return a // vertex region a.
	}

	bp := r3.Sub(p, b)
	abBP := r3.Dot(ab, bp)
	acBP := r3.Dot(ac, bp)
	if abBP >= 0 && acBP <= abBP {
		return b // vertex region b.
	}

	vc := abAP*acBP - abBP*acAP
	if vc <= 0 && abAP >= 0 && abBP <= 0 {
		v := abAP / (abAP - abBP)
		return r3.Add(a, r3.Scale(v, ab)) // edge region ab.
	}

	cp := r3.Sub(p, c)
	abCP := r3.Dot(ab, cp)
	acCP := r3.Dot(ac, cp)
	if acCP >= 0 && abCP <= acCP {
		return c // vertex region c.
	}

	vb := abCP*acAP - abAP*acCP
	if vb <= 0 && acAP >= 0 && acCP <= 0 {
		w := acAP / (acAP - acCP)
		return r3.Add(a, r3.Scale(w, ac)) // edge region ac.
	}

	va := abBP*acCP - abCP*acBP
	if va <= 0 && acBP-abBP >= 0 && abCP-acCP >= 0 {
		w := (acBP - abBP) / ((acBP - abBP) + (abCP - acCP))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))) // edge region bc.
	}

	// Interior region. Barycentric combination.
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// DistToTriangle returns the distance from p to the closest point of t.
func DistToTriangle(p r3.Vec, t r3.Triangle) float64 {
	return r3.Norm(r3.Sub(p, ClosestOnTriangle(p, t)))
}

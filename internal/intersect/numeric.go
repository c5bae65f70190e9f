package intersect

import (
	"math"
	"sort"

	"github.com/inamate/easel/internal/geom"
)

// ellipseSamples is the number of subintervals used to bracket roots along
// an ellipse.
const ellipseSamples = 360

// implicit returns a function that vanishes exactly on the curve. Parametric
// curves have none.
func implicit(c geom.Curve) func(geom.Vector3) float64 {
	switch v := c.(type) {
	case geom.Line:
		return func(x geom.Vector3) float64 { return x.Dot(v.Normal) }
	case geom.Segment:
		return func(x geom.Vector3) float64 { return x.Dot(v.Normal) }
	case geom.Circle:
		cr := math.Cos(v.Radius)
		return func(x geom.Vector3) float64 { return x.Dot(v.Center) - cr }
	case geom.Ellipse:
		return v.Value
	}
	return nil
}

// crossings walks the parametrization of curve along its domain and returns
// the points where f changes sign, ordered by parameter.
func crossings(curve geom.Curve, f func(geom.Vector3) float64, samples int) []geom.Vector3 {
	lo, hi := curve.Domain()
	g := func(t float64) float64 { return f(curve.Point(t)) }
	ts := geom.Roots(g, lo, hi, samples)
	out := make([]geom.Vector3, 0, len(ts))
	for _, t := range ts {
		p := curve.Point(t)
		if !containsNear(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func containsNear(ps []geom.Vector3, p geom.Vector3) bool {
	for _, q := range ps {
		if q.ApproxEqual(p, geom.Epsilon) {
			return true
		}
	}
	return false
}

// againstEllipse intersects a plane-section curve or ellipse a with ellipse b
// by walking b.
func againstEllipse(a, b geom.Curve, n int) []Candidate {
	if degenerate(a) || degenerate(b) || sameEllipse(a, b) {
		return none(n)
	}
	pts := crossings(b, implicit(a), ellipseSamples)
	return place(pts, n, func(v geom.Vector3) bool { return onArcs(v, a) })
}

// sameEllipse reports whether two ellipses coincide, in which case they have
// no isolated intersections.
func sameEllipse(a, b geom.Curve) bool {
	e1, ok1 := a.(geom.Ellipse)
	e2, ok2 := b.(geom.Ellipse)
	if !ok1 || !ok2 || math.Abs(e1.A-e2.A) > geom.Epsilon {
		return false
	}
	same := e1.Focus1.ApproxEqual(e2.Focus1, geom.Epsilon) && e1.Focus2.ApproxEqual(e2.Focus2, geom.Epsilon)
	swapped := e1.Focus1.ApproxEqual(e2.Focus2, geom.Epsilon) && e1.Focus2.ApproxEqual(e2.Focus1, geom.Epsilon)
	return same || swapped
}

func lineEllipse(a, b geom.Curve) []Candidate    { return againstEllipse(a, b, 2) }
func segmentEllipse(a, b geom.Curve) []Candidate { return againstEllipse(a, b, 2) }
func circleEllipse(a, b geom.Curve) []Candidate  { return againstEllipse(a, b, 4) }
func ellipseEllipse(a, b geom.Curve) []Candidate { return againstEllipse(a, b, 4) }

// withParametric intersects any implicit curve a with parametric b by walking
// b and testing a's implicit function.
func withParametric(a, b geom.Curve) []Candidate {
	if degenerate(a) || degenerate(b) {
		return none(MaxParametricCandidates)
	}
	pts := crossings(b, implicit(a), geom.ParametricSamples)
	return place(pts, MaxParametricCandidates, func(v geom.Vector3) bool { return onArcs(v, a) })
}

type chordHit struct {
	t, s float64
}

// parametricParametric finds crossings between the sampled polylines of two
// parametric curves and polishes each with Gauss-Newton on (t, s).
func parametricParametric(a, b geom.Curve) []Candidate {
	if degenerate(a) || degenerate(b) {
		return none(MaxParametricCandidates)
	}
	const n = geom.ParametricSamples / 4
	aLo, aHi := a.Domain()
	bLo, bHi := b.Domain()
	as, bs := geom.Sample(a, n), geom.Sample(b, n)
	aStep, bStep := (aHi-aLo)/n, (bHi-bLo)/n

	var hits []chordHit
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u, v, ok := chordsCross(as[i], as[i+1], bs[j], bs[j+1])
			if !ok {
				continue
			}
			hits = append(hits, chordHit{
				t: aLo + aStep*(float64(i)+u),
				s: bLo + bStep*(float64(j)+v),
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })

	var pts []geom.Vector3
	for _, h := range hits {
		t, s := polish(a, b, h.t, h.s)
		p := a.Point(t)
		if p.Angle(b.Point(s)) > 1e3*geom.Epsilon || containsNear(pts, p) {
			continue
		}
		pts = append(pts, p)
	}
	return place(pts, MaxParametricCandidates, nil)
}

// chordsCross reports whether the short great-circle arcs a0a1 and b0b1 cross
// and returns the approximate fractions along each arc.
func chordsCross(a0, a1, b0, b1 geom.Vector3) (u, v float64, ok bool) {
	if a0.Angle(b0) > a0.Angle(a1)+b0.Angle(b1)+geom.Epsilon {
		return 0, 0, false
	}
	na, nb := a0.Cross(a1), b0.Cross(b1)
	sb0, sb1 := b0.Dot(na), b1.Dot(na)
	sa0, sa1 := a0.Dot(nb), a1.Dot(nb)
	if (sb0 < 0) == (sb1 < 0) || (sa0 < 0) == (sa1 < 0) {
		return 0, 0, false
	}
	p := na.Cross(nb).Normalize()
	if p.Dot(a0.Add(a1)) < 0 {
		p = p.Negate()
	}
	if p.Dot(b0.Add(b1)) < 0 {
		return 0, 0, false
	}
	return sa0 / (sa0 - sa1), sb0 / (sb0 - sb1), true
}

// polish minimizes |a(t) - b(s)|² by Gauss-Newton with finite difference
// derivatives, clamping to each domain.
func polish(a, b geom.Curve, t, s float64) (float64, float64) {
	aLo, aHi := a.Domain()
	bLo, bHi := b.Domain()
	const h = 1e-7
	for i := 0; i < 30; i++ {
		f := a.Point(t).Sub(b.Point(s))
		if f.Length() < geom.Epsilon*geom.Epsilon {
			break
		}
		jt := a.Point(t + h).Sub(a.Point(t - h)).Mul(1 / (2 * h))
		js := b.Point(s + h).Sub(b.Point(s - h)).Mul(-1 / (2 * h))
		m11, m12, m22 := jt.Dot(jt), jt.Dot(js), js.Dot(js)
		r1, r2 := -jt.Dot(f), -js.Dot(f)
		det := m11*m22 - m12*m12
		if math.Abs(det) < 1e-18 {
			break
		}
		dt := (r1*m22 - r2*m12) / det
		ds := (m11*r2 - m12*r1) / det
		t = math.Max(aLo, math.Min(aHi, t+dt))
		s = math.Max(bLo, math.Min(bHi, s+ds))
		if math.Abs(dt) < 1e-14 && math.Abs(ds) < 1e-14 {
			break
		}
	}
	return t, s
}

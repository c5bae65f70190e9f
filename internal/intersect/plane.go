package intersect

import (
	"math"

	"github.com/inamate/easel/internal/geom"
)

// planeSection intersects the sphere with the planes x·n1 = h1 and x·n2 = h2.
// It returns both solutions in a fixed order and whether the planes meet the
// sphere transversally in two distinct points.
func planeSection(n1 geom.Vector3, h1 float64, n2 geom.Vector3, h2 float64) (p, q geom.Vector3, ok bool) {
	dir := n1.Cross(n2)
	denom := dir.Dot(dir)
	if denom < geom.Epsilon {
		return geom.Vector3{}, geom.Vector3{}, false
	}
	c := n1.Dot(n2)
	x := (h1 - c*h2) / denom
	y := (h2 - c*h1) / denom
	base := n1.Mul(x).Add(n2.Mul(y))
	s2 := 1 - base.Dot(base)
	if s2 < -geom.Epsilon {
		return geom.Vector3{}, geom.Vector3{}, false
	}
	s := math.Sqrt(math.Max(0, s2))
	d := dir.Normalize()
	p = base.Add(d.Mul(s)).Normalize()
	q = base.Sub(d.Mul(s)).Normalize()
	return p, q, s2 > geom.Epsilon
}

// section returns the plane describing a line, segment or circle.
func section(c geom.Curve) (geom.Vector3, float64) {
	switch v := c.(type) {
	case geom.Line:
		return v.Normal, 0
	case geom.Segment:
		return v.Normal, 0
	case geom.Circle:
		return v.Center, math.Cos(v.Radius)
	}
	return geom.Vector3{}, 0
}

func degenerate(c geom.Curve) bool {
	switch v := c.(type) {
	case geom.Segment:
		return v.ArcLength < geom.Epsilon
	case geom.Circle:
		return v.Degenerate()
	case geom.Ellipse:
		return v.Degenerate()
	case geom.Parametric:
		return v.Eval == nil || v.TMax <= v.TMin
	}
	return false
}

// sections solves any pair of plane-section curves and applies the segment
// arc restrictions of either curve.
func sections(a, b geom.Curve) []Candidate {
	if degenerate(a) || degenerate(b) {
		return none(2)
	}
	n1, h1 := section(a)
	n2, h2 := section(b)
	p, q, ok := planeSection(n1, h1, n2, h2)
	if !ok {
		return []Candidate{{Vector: p}, {Vector: q}}
	}
	return []Candidate{
		{Vector: p, Exists: onArcs(p, a, b)},
		{Vector: q, Exists: onArcs(q, a, b)},
	}
}

func onArcs(v geom.Vector3, curves ...geom.Curve) bool {
	for _, c := range curves {
		if s, ok := c.(geom.Segment); ok && !s.OnArc(v) {
			return false
		}
	}
	return true
}

func lineLine(a, b geom.Curve) []Candidate       { return sections(a, b) }
func lineSegment(a, b geom.Curve) []Candidate    { return sections(a, b) }
func lineCircle(a, b geom.Curve) []Candidate     { return sections(a, b) }
func segmentSegment(a, b geom.Curve) []Candidate { return sections(a, b) }
func segmentCircle(a, b geom.Curve) []Candidate  { return sections(a, b) }
func circleCircle(a, b geom.Curve) []Candidate   { return sections(a, b) }

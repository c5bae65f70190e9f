package geom

import "math"

// Kind identifies a one-dimensional curve type. The declaration order is the
// canonical order in which curve kinds are visited.
type Kind int

const (
	KindLine Kind = iota
	KindSegment
	KindCircle
	KindEllipse
	KindParametric
)

// Kinds lists every curve kind in canonical order.
var Kinds = []Kind{KindLine, KindSegment, KindCircle, KindEllipse, KindParametric}

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindSegment:
		return "segment"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindParametric:
		return "parametric"
	}
	return "unknown"
}

// Curve is a one-dimensional object on the unit sphere.
type Curve interface {
	Kind() Kind
	// Domain is the parameter interval of Point.
	Domain() (float64, float64)
	// Point returns the unit vector at parameter t.
	Point(t float64) Vector3
	// ClosestPoint projects a unit vector onto the curve.
	ClosestPoint(v Vector3) Vector3
	// Contains reports whether v lies on the curve within Epsilon.
	Contains(v Vector3) bool
}

// Line is a great circle, described by its unit normal.
type Line struct {
	Normal Vector3
}

func (l Line) Kind() Kind                 { return KindLine }
func (l Line) Domain() (float64, float64) { return 0, 2 * math.Pi }

func (l Line) Point(t float64) Vector3 {
	u := l.Normal.Perpendicular()
	w := l.Normal.Cross(u)
	return u.Mul(math.Cos(t)).Add(w.Mul(math.Sin(t)))
}

func (l Line) ClosestPoint(v Vector3) Vector3 {
	p := v.Sub(l.Normal.Mul(v.Dot(l.Normal))).Normalize()
	if p.IsZero(Epsilon) {
		return l.Normal.Perpendicular()
	}
	return p
}

func (l Line) Contains(v Vector3) bool {
	return math.Abs(v.Dot(l.Normal)) < Epsilon
}

// Segment is an arc of a great circle starting at Start and sweeping ArcLength
// radians in the direction Normal × Start.
type Segment struct {
	Start     Vector3
	Normal    Vector3
	ArcLength float64
}

// SegmentBetween returns the shorter arc from start to end, or the longer one
// when long is set. Nearly antipodal or coincident endpoints reuse hint as the
// normal after projecting it perpendicular to start.
func SegmentBetween(start, end, hint Vector3, long bool) Segment {
	n := start.Cross(end)
	if n.IsZero(Epsilon) {
		n = hint.Sub(start.Mul(hint.Dot(start)))
		if n.IsZero(Epsilon) {
			n = start.Perpendicular()
		}
		n = n.Normalize()
		arc := math.Pi
		if start.Dot(end) > 0 {
			arc = 0
		}
		return Segment{Start: start, Normal: n, ArcLength: arc}
	}
	n = n.Normalize()
	arc := start.Angle(end)
	if long {
		return Segment{Start: start, Normal: n.Negate(), ArcLength: 2*math.Pi - arc}
	}
	return Segment{Start: start, Normal: n, ArcLength: arc}
}

func (s Segment) Kind() Kind                 { return KindSegment }
func (s Segment) Domain() (float64, float64) { return 0, s.ArcLength }

func (s Segment) Point(t float64) Vector3 {
	return s.Start.Mul(math.Cos(t)).Add(s.Normal.Cross(s.Start).Mul(math.Sin(t)))
}

// End returns the end point of the arc.
func (s Segment) End() Vector3 { return s.Point(s.ArcLength) }

// Midpoint returns the point halfway along the arc.
func (s Segment) Midpoint() Vector3 { return s.Point(s.ArcLength / 2) }

// Param returns the angle in [0, 2π) of the projection of v measured from Start.
func (s Segment) Param(v Vector3) float64 {
	t := math.Atan2(v.Dot(s.Normal.Cross(s.Start)), v.Dot(s.Start))
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

// OnArc reports whether a point of the supporting great circle lies on the arc.
func (s Segment) OnArc(v Vector3) bool {
	t := s.Param(v)
	return t <= s.ArcLength+Epsilon || t >= 2*math.Pi-Epsilon
}

func (s Segment) ClosestPoint(v Vector3) Vector3 {
	p := Line{Normal: s.Normal}.ClosestPoint(v)
	if s.OnArc(p) {
		return p
	}
	start, end := s.Start, s.End()
	if v.Angle(start) <= v.Angle(end) {
		return start
	}
	return end
}

func (s Segment) Contains(v Vector3) bool {
	return math.Abs(v.Dot(s.Normal)) < Epsilon && s.OnArc(v)
}

// Circle is the set of points at angular distance Radius from Center.
type Circle struct {
	Center Vector3
	Radius float64
}

func (c Circle) Kind() Kind                 { return KindCircle }
func (c Circle) Domain() (float64, float64) { return 0, 2 * math.Pi }

func (c Circle) Point(t float64) Vector3 {
	u := c.Center.Perpendicular()
	w := c.Center.Cross(u)
	dir := u.Mul(math.Cos(t)).Add(w.Mul(math.Sin(t)))
	return c.Center.Mul(math.Cos(c.Radius)).Add(dir.Mul(math.Sin(c.Radius)))
}

func (c Circle) ClosestPoint(v Vector3) Vector3 {
	w := v.Sub(c.Center.Mul(v.Dot(c.Center))).Normalize()
	if w.IsZero(Epsilon) {
		w = c.Center.Perpendicular()
	}
	return c.Center.Mul(math.Cos(c.Radius)).Add(w.Mul(math.Sin(c.Radius)))
}

func (c Circle) Contains(v Vector3) bool {
	return math.Abs(v.Dot(c.Center)-math.Cos(c.Radius)) < Epsilon
}

// Degenerate reports whether the radius collapses the circle to a point.
func (c Circle) Degenerate() bool {
	return c.Radius < Epsilon || c.Radius > math.Pi-Epsilon
}

// Ellipse is the locus of points whose angular distances to the two foci sum
// to 2A.
type Ellipse struct {
	Focus1 Vector3
	Focus2 Vector3
	A      float64
}

// ellipseFrame is the canonical frame of an ellipse with semi-major axis at
// most π/2: Center is the midpoint of the foci, U points toward the first
// focus, V completes the frame; SemiA and SemiB are the semi-axes.
type ellipseFrame struct {
	Center, U, V Vector3
	SemiA, SemiB float64
}

func (e Ellipse) frame() ellipseFrame {
	f1, f2, a := e.Focus1, e.Focus2, e.A
	if a > math.Pi/2 {
		f1, f2, a = f1.Negate(), f2.Negate(), math.Pi-a
	}
	c := f1.Angle(f2) / 2
	center := f1.Add(f2).Normalize()
	if center.IsZero(Epsilon) {
		center = f1.Perpendicular()
	}
	u := f1.Sub(center.Mul(f1.Dot(center))).Normalize()
	if u.IsZero(Epsilon) {
		u = center.Perpendicular()
	}
	cosB := math.Cos(a) / math.Cos(c)
	b := math.Acos(math.Max(-1, math.Min(1, cosB)))
	return ellipseFrame{Center: center, U: u, V: center.Cross(u), SemiA: a, SemiB: b}
}

// Degenerate reports whether the foci coincide or are antipodal, or whether
// the defining point lies on the great circle arc joining the foci.
func (e Ellipse) Degenerate() bool {
	focal := e.Focus1.Angle(e.Focus2)
	if focal < Epsilon || focal > math.Pi-Epsilon {
		return true
	}
	c := focal / 2
	a := e.A
	if a > math.Pi/2 {
		a = math.Pi - a
	}
	return a-c < Epsilon || math.Abs(e.A-math.Pi/2) < Epsilon
}

// Center returns the midpoint of the foci on the ellipse's side of the sphere.
func (e Ellipse) Center() Vector3 { return e.frame().Center }

// SemiMinor returns the semi-minor axis of the ellipse.
func (e Ellipse) SemiMinor() float64 {
	b := e.frame().SemiB
	if e.A > math.Pi/2 {
		return math.Pi - b
	}
	return b
}

func (e Ellipse) Kind() Kind                 { return KindEllipse }
func (e Ellipse) Domain() (float64, float64) { return 0, 2 * math.Pi }

func (e Ellipse) Point(t float64) Vector3 {
	f := e.frame()
	sa, ca := math.Sincos(f.SemiA)
	sb, cb := math.Sincos(f.SemiB)
	st, ct := math.Sincos(t)
	return f.U.Mul(sa * cb * ct).Add(f.V.Mul(ca * sb * st)).Add(f.Center.Mul(ca * cb)).Normalize()
}

// Value is the implicit function of the ellipse: zero on the curve, negative
// inside, positive outside.
func (e Ellipse) Value(v Vector3) float64 {
	return v.Angle(e.Focus1) + v.Angle(e.Focus2) - 2*e.A
}

func (e Ellipse) ClosestPoint(v Vector3) Vector3 {
	return closestOnCurve(e, v, 180)
}

func (e Ellipse) Contains(v Vector3) bool {
	return math.Abs(e.Value(v)) < Epsilon
}

// Parametric is a curve given by a function of t over [TMin, TMax]. Eval need
// not return unit vectors; Point normalizes.
type Parametric struct {
	Eval   func(t float64) Vector3
	TMin   float64
	TMax   float64
	Closed bool
}

// ParametricSamples is the number of samples used for numeric searches along
// a parametric curve.
const ParametricSamples = 720

func (p Parametric) Kind() Kind                 { return KindParametric }
func (p Parametric) Domain() (float64, float64) { return p.TMin, p.TMax }

func (p Parametric) Point(t float64) Vector3 {
	if p.Eval == nil {
		return Vector3{}
	}
	return p.Eval(t).Normalize()
}

func (p Parametric) ClosestPoint(v Vector3) Vector3 {
	return closestOnCurve(p, v, ParametricSamples)
}

func (p Parametric) Contains(v Vector3) bool {
	return v.Angle(p.ClosestPoint(v)) < Epsilon
}

// Sample returns n+1 evenly spaced points along the curve's domain.
func Sample(c Curve, n int) []Vector3 {
	lo, hi := c.Domain()
	out := make([]Vector3, n+1)
	for i := 0; i <= n; i++ {
		out[i] = c.Point(lo + (hi-lo)*float64(i)/float64(n))
	}
	return out
}

// closestOnCurve finds the parameter minimizing the angular distance to v by
// coarse sampling followed by golden section refinement.
func closestOnCurve(c Curve, v Vector3, samples int) Vector3 {
	lo, hi := c.Domain()
	step := (hi - lo) / float64(samples)
	best, bestD := lo, math.Inf(1)
	for i := 0; i <= samples; i++ {
		t := lo + step*float64(i)
		if d := v.Angle(c.Point(t)); d < bestD {
			best, bestD = t, d
		}
	}
	a, b := math.Max(lo, best-step), math.Min(hi, best+step)
	t := GoldenMin(func(t float64) float64 { return v.Angle(c.Point(t)) }, a, b, 1e-12)
	return c.Point(t)
}

package scene

import (
	"github.com/inamate/easel/internal/geom"
)

func endpoints(g *SceneGraph, ids []ID) ([]Point, bool) {
	out := make([]Point, len(ids))
	for i, id := range ids {
		p, ok := g.Point(id)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

func allExist(ps []Point) bool {
	for _, p := range ps {
		if !p.Exists() {
			return false
		}
	}
	return true
}

// Line is a great circle through two points.
type Line struct {
	Base
	normal geom.Vector3
}

// NewLine allocates the line through start and end. When the points are
// coincident or antipodal, hint picks the normal.
func NewLine(g *SceneGraph, start, end Point, hint geom.Vector3) *Line {
	l := &Line{Base: newBase(g, "L", start.ID(), end.ID()), normal: hint}
	l.compute(start, end)
	return l
}

func (l *Line) Kind() Kind            { return KindLine }
func (l *Line) Start() ID             { return l.parents[0] }
func (l *Line) End() ID               { return l.parents[1] }
func (l *Line) Normal() geom.Vector3  { return l.normal }
func (l *Line) Shape() geom.Curve     { return geom.Line{Normal: l.normal} }
func (l *Line) State() State          { return l.stateWith([]geom.Vector3{l.normal}) }
func (l *Line) restore(s State)       { l.exists = s.Exists; l.normal = s.Vectors[0] }
func (l *Line) accept(v visitor) bool { l.normal = v.vector(l.normal); return true }

func (l *Line) compute(start, end Point) {
	seg := geom.SegmentBetween(start.Location(), end.Location(), l.normal, false)
	l.normal = seg.Normal
	l.exists = start.Exists() && end.Exists() &&
		!start.Location().Cross(end.Location()).IsZero(geom.Epsilon)
}

func (l *Line) shallowUpdate(g *SceneGraph) {
	ps, ok := endpoints(g, l.parents[:2])
	if !ok {
		l.exists = false
		return
	}
	l.compute(ps[0], ps[1])
}

// Segment is a great circle arc between two points.
type Segment struct {
	Base
	long bool
	arc  geom.Segment
}

// NewSegment allocates the arc from start to end, the longer one if long.
func NewSegment(g *SceneGraph, start, end Point, hint geom.Vector3, long bool) *Segment {
	s := &Segment{Base: newBase(g, "Ls", start.ID(), end.ID()), long: long}
	s.arc.Normal = hint
	s.compute(start, end)
	return s
}

func (s *Segment) Kind() Kind        { return KindSegment }
func (s *Segment) Start() ID         { return s.parents[0] }
func (s *Segment) End() ID           { return s.parents[1] }
func (s *Segment) Long() bool        { return s.long }
func (s *Segment) Arc() geom.Segment { return s.arc }
func (s *Segment) Shape() geom.Curve { return s.arc }
func (s *Segment) State() State {
	return s.stateWith([]geom.Vector3{s.arc.Start, s.arc.Normal}, s.arc.ArcLength)
}

func (s *Segment) restore(st State) {
	s.exists = st.Exists
	s.arc = geom.Segment{Start: st.Vectors[0], Normal: st.Vectors[1], ArcLength: st.Scalars[0]}
}

func (s *Segment) accept(v visitor) bool {
	s.arc.Start = v.vector(s.arc.Start)
	s.arc.Normal = v.vector(s.arc.Normal)
	return true
}

func (s *Segment) compute(start, end Point) {
	s.arc = geom.SegmentBetween(start.Location(), end.Location(), s.arc.Normal, s.long)
	s.exists = start.Exists() && end.Exists() && s.arc.ArcLength > geom.Epsilon
}

func (s *Segment) shallowUpdate(g *SceneGraph) {
	ps, ok := endpoints(g, s.parents[:2])
	if !ok {
		s.exists = false
		return
	}
	s.compute(ps[0], ps[1])
}

// Circle is defined by its center and a point on it.
type Circle struct {
	Base
	circle geom.Circle
}

// NewCircle allocates the circle centered at center through point.
func NewCircle(g *SceneGraph, center, point Point) *Circle {
	c := &Circle{Base: newBase(g, "C", center.ID(), point.ID())}
	c.compute(center, point)
	return c
}

func (c *Circle) Kind() Kind            { return KindCircle }
func (c *Circle) Center() ID            { return c.parents[0] }
func (c *Circle) CirclePoint() ID       { return c.parents[1] }
func (c *Circle) Geometry() geom.Circle { return c.circle }
func (c *Circle) Shape() geom.Curve     { return c.circle }
func (c *Circle) State() State {
	return c.stateWith([]geom.Vector3{c.circle.Center}, c.circle.Radius)
}

func (c *Circle) restore(s State) {
	c.exists = s.Exists
	c.circle = geom.Circle{Center: s.Vectors[0], Radius: s.Scalars[0]}
}

func (c *Circle) accept(v visitor) bool {
	c.circle.Center = v.vector(c.circle.Center)
	return true
}

func (c *Circle) compute(center, point Point) {
	c.circle = geom.Circle{Center: center.Location(), Radius: center.Location().Angle(point.Location())}
	c.exists = center.Exists() && point.Exists() && !c.circle.Degenerate()
}

func (c *Circle) shallowUpdate(g *SceneGraph) {
	ps, ok := endpoints(g, c.parents[:2])
	if !ok {
		c.exists = false
		return
	}
	c.compute(ps[0], ps[1])
}

// Ellipse is defined by two foci and a point on it.
type Ellipse struct {
	Base
	ellipse geom.Ellipse
}

// NewEllipse allocates the ellipse with the given foci through point.
func NewEllipse(g *SceneGraph, focus1, focus2, point Point) *Ellipse {
	e := &Ellipse{Base: newBase(g, "E", focus1.ID(), focus2.ID(), point.ID())}
	e.compute(focus1, focus2, point)
	return e
}

func (e *Ellipse) Kind() Kind             { return KindEllipse }
func (e *Ellipse) Focus1() ID             { return e.parents[0] }
func (e *Ellipse) Focus2() ID             { return e.parents[1] }
func (e *Ellipse) EllipsePoint() ID       { return e.parents[2] }
func (e *Ellipse) Geometry() geom.Ellipse { return e.ellipse }
func (e *Ellipse) Shape() geom.Curve      { return e.ellipse }
func (e *Ellipse) State() State {
	return e.stateWith([]geom.Vector3{e.ellipse.Focus1, e.ellipse.Focus2}, e.ellipse.A)
}

func (e *Ellipse) restore(s State) {
	e.exists = s.Exists
	e.ellipse = geom.Ellipse{Focus1: s.Vectors[0], Focus2: s.Vectors[1], A: s.Scalars[0]}
}

func (e *Ellipse) accept(v visitor) bool {
	e.ellipse.Focus1 = v.vector(e.ellipse.Focus1)
	e.ellipse.Focus2 = v.vector(e.ellipse.Focus2)
	return true
}

func (e *Ellipse) compute(f1, f2, p Point) {
	v := p.Location()
	e.ellipse = geom.Ellipse{
		Focus1: f1.Location(),
		Focus2: f2.Location(),
		A:      (v.Angle(f1.Location()) + v.Angle(f2.Location())) / 2,
	}
	e.exists = f1.Exists() && f2.Exists() && p.Exists() && !e.ellipse.Degenerate()
}

func (e *Ellipse) shallowUpdate(g *SceneGraph) {
	ps, ok := endpoints(g, e.parents[:3])
	if !ok {
		e.exists = false
		return
	}
	e.compute(ps[0], ps[1], ps[2])
}

// Parametric is a curve given by coordinate expressions in t. It has no
// parents; global rotations accumulate into its frame.
type Parametric struct {
	Base
	exprs Expressions
	fn    func(float64) geom.Vector3
	frame geom.Matrix3
}

// NewParametric compiles the expressions into a parametric curve. A curve
// whose expressions fail to compile is still allocated with exists false;
// the compile error is returned alongside.
func NewParametric(g *SceneGraph, exprs Expressions) (*Parametric, error) {
	p := &Parametric{Base: newBase(g, "Pc"), exprs: exprs, frame: geom.Identity()}
	fn, err := exprs.Compile()
	p.fn = fn
	p.exists = err == nil && exprs.TMax > exprs.TMin
	return p, err
}

func (p *Parametric) Kind() Kind               { return KindParametric }
func (p *Parametric) Expressions() Expressions { return p.exprs }
func (p *Parametric) Frame() geom.Matrix3      { return p.frame }

func (p *Parametric) Shape() geom.Curve {
	if p.fn == nil {
		return geom.Parametric{TMin: p.exprs.TMin, TMax: p.exprs.TMax}
	}
	frame, fn := p.frame, p.fn
	return geom.Parametric{
		Eval:   func(t float64) geom.Vector3 { return frame.Apply(fn(t)) },
		TMin:   p.exprs.TMin,
		TMax:   p.exprs.TMax,
		Closed: p.exprs.Closed,
	}
}

func (p *Parametric) State() State {
	return p.stateWith(nil, p.frame.ToSlice()...)
}

func (p *Parametric) restore(s State) {
	p.exists = s.Exists
	copy(p.frame[:], s.Scalars)
}

func (p *Parametric) shallowUpdate(*SceneGraph) {}

func (p *Parametric) accept(v visitor) bool {
	p.frame = v.matrix(p.frame)
	return true
}

// Endpoints returns the curve's points at TMin and TMax.
func (p *Parametric) Endpoints() (geom.Vector3, geom.Vector3) {
	s := p.Shape()
	lo, hi := s.Domain()
	return s.Point(lo), s.Point(hi)
}

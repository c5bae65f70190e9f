package engine

import (
	"fmt"
	"math"

	"github.com/inamate/easel/internal/command"
	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

// PointRef selects the point a construction uses: an existing point by
// name, a point on a named curve near Location, or a new free point at
// Location.
type PointRef struct {
	Name     string        `json:"name,omitempty"`
	On       string        `json:"on,omitempty"`
	Location *geom.Vector3 `json:"location,omitempty"`
}

// Existing refers to a registered point.
func Existing(name string) PointRef { return PointRef{Name: name} }

// At asks for a new free point at v.
func At(v geom.Vector3) PointRef { return PointRef{Location: &v} }

// OnCurve asks for a new point on the named curve, projected from v.
func OnCurve(curve string, v geom.Vector3) PointRef { return PointRef{On: curve, Location: &v} }

// Result describes a construction. Created is false when an identical
// object already exists; nothing is changed in that case.
type Result struct {
	Created bool     `json:"created"`
	Name    string   `json:"name,omitempty"`
	Added   []string `json:"added,omitempty"`
}

// builder collects the commands of one construction into a group: new
// points and their antipodes first, then the object itself, then the
// intersection points it creates, then conditional re-parentings.
type builder struct {
	e        *Engine
	group    *command.Group
	pending  []scene.Point
	added    []string
	promoted map[scene.ID]bool
}

func (e *Engine) newBuilder() *builder {
	return &builder{e: e, group: command.NewGroup(), promoted: make(map[scene.ID]bool)}
}

func (b *builder) add(obj scene.Object) {
	b.group.Add(command.NewAddObject(b.e.g, obj))
	b.added = append(b.added, obj.Name())
}

// addPoint adds a user-created point together with its antipode.
func (b *builder) addPoint(p scene.Point) {
	b.add(p)
	a := scene.NewAntipodalPoint(b.e.g, p)
	b.add(a)
	b.pending = append(b.pending, p, a)
}

func (b *builder) point(ref PointRef) (scene.Point, error) {
	g := b.e.g
	switch {
	case ref.Name != "":
		p, err := b.e.point(ref.Name)
		if err != nil {
			return nil, err
		}
		if ip, ok := p.(*scene.IntersectionPoint); ok && !ip.IsUserCreated() {
			b.promote(ip)
		}
		return p, nil
	case ref.On != "":
		c, err := b.e.curve(ref.On)
		if err != nil {
			return nil, err
		}
		near := c.Shape().Point(0)
		if ref.Location != nil {
			near = *ref.Location
		}
		p := scene.NewPointOnObject(g, c, near)
		b.addPoint(p)
		return p, nil
	case ref.Location != nil:
		p := scene.NewFreePoint(g, *ref.Location)
		b.addPoint(p)
		return p, nil
	}
	return nil, ErrEmptyReference
}

// promote turns a hidden intersection point into a user-created one and
// gives it an antipode if it has none. A point named twice in one
// construction is promoted once.
func (b *builder) promote(ip *scene.IntersectionPoint) {
	if b.promoted[ip.ID()] {
		return
	}
	b.promoted[ip.ID()] = true
	g := b.e.g
	b.group.Add(command.NewSetUserCreated(g, ip, true))
	if _, ok := g.Antipode(ip); !ok {
		a := scene.NewAntipodalPoint(g, ip)
		a.SetInitialShowing(true)
		b.add(a)
		b.pending = append(b.pending, a)
	}
}

func (b *builder) points(refs ...PointRef) ([]scene.Point, error) {
	out := make([]scene.Point, len(refs))
	for i, r := range refs {
		p, err := b.point(r)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// curve adds c and every intersection it creates with the registered curves.
func (b *builder) curve(c scene.Curve) {
	g := b.e.g
	b.add(c)
	for _, ef := range b.e.finder.CreateAllIntersectionsWith(c, b.pending) {
		switch ef.Kind {
		case scene.EffectNewPoint:
			b.add(ef.Point)
		case scene.EffectReparent:
			p, pair := ef.Point, ef.Pair
			b.group.AddConditional(func() bool {
				_, live := g.Get(p.ID())
				return live && !p.HasPair(pair.Curve1, pair.Curve2)
			}, command.NewAddOtherParent(g, p, pair, ef.Exists))
		}
	}
}

func (b *builder) commit(obj scene.Object) (Result, error) {
	if err := b.e.history.Execute(b.group); err != nil {
		return Result{}, fmt.Errorf("construct %s: %w", obj.Kind(), err)
	}
	if !obj.Exists() {
		b.e.notice(obj, "construction is degenerate")
	}
	b.e.logger.Debug("construction", "object", obj.Name(), "group", b.group.ID, "commands", len(b.group.Realized()))
	return Result{Created: true, Name: obj.Name(), Added: b.added}, nil
}

// AddPoint creates a free point and its antipode.
func (e *Engine) AddPoint(v geom.Vector3) (Result, error) {
	b := e.newBuilder()
	p, err := b.point(At(v))
	if err != nil {
		return Result{}, err
	}
	return b.commit(p)
}

// AddPointOnObject creates a point constrained to the named curve.
func (e *Engine) AddPointOnObject(curve string, v geom.Vector3) (Result, error) {
	b := e.newBuilder()
	p, err := b.point(OnCurve(curve, v))
	if err != nil {
		return Result{}, err
	}
	return b.commit(p)
}

// PromoteIntersection makes a hidden intersection point user-created.
func (e *Engine) PromoteIntersection(name string) (Result, error) {
	p, err := e.point(name)
	if err != nil {
		return Result{}, err
	}
	ip, ok := p.(*scene.IntersectionPoint)
	if !ok || ip.IsUserCreated() {
		return Result{Name: name}, nil
	}
	b := e.newBuilder()
	b.promote(ip)
	return b.commit(ip)
}

// AddLine constructs the great circle through two points.
func (e *Engine) AddLine(start, end PointRef) (Result, error) {
	b := e.newBuilder()
	ps, err := b.points(start, end)
	if err != nil {
		return Result{}, err
	}
	l := scene.NewLine(e.g, ps[0], ps[1], geom.V3(0, 0, 1))
	if l.Exists() && e.duplicateLine(l) {
		return Result{}, nil
	}
	b.curve(l)
	return b.commit(l)
}

// AddSegment constructs the arc from start to end, the longer arc if long.
func (e *Engine) AddSegment(start, end PointRef, long bool) (Result, error) {
	b := e.newBuilder()
	ps, err := b.points(start, end)
	if err != nil {
		return Result{}, err
	}
	s := scene.NewSegment(e.g, ps[0], ps[1], geom.V3(0, 0, 1), long)
	if s.Exists() && e.duplicateSegment(s) {
		return Result{}, nil
	}
	b.curve(s)
	return b.commit(s)
}

// AddCircle constructs the circle centered at center through point.
func (e *Engine) AddCircle(center, point PointRef) (Result, error) {
	b := e.newBuilder()
	ps, err := b.points(center, point)
	if err != nil {
		return Result{}, err
	}
	c := scene.NewCircle(e.g, ps[0], ps[1])
	if c.Exists() && e.duplicateCircle(c) {
		return Result{}, nil
	}
	b.curve(c)
	return b.commit(c)
}

// AddEllipse constructs the ellipse with the given foci through point.
func (e *Engine) AddEllipse(focus1, focus2, point PointRef) (Result, error) {
	b := e.newBuilder()
	ps, err := b.points(focus1, focus2, point)
	if err != nil {
		return Result{}, err
	}
	el := scene.NewEllipse(e.g, ps[0], ps[1], ps[2])
	if el.Exists() && e.duplicateEllipse(el) {
		return Result{}, nil
	}
	b.curve(el)
	return b.commit(el)
}

// AddParametric constructs a parametric curve. Expressions that fail to
// compile are reported and nothing is created.
func (e *Engine) AddParametric(exprs scene.Expressions) (Result, error) {
	pc, err := scene.NewParametric(e.g, exprs)
	if err != nil {
		return Result{}, fmt.Errorf("parametric: %w", err)
	}
	b := e.newBuilder()
	b.curve(pc)
	return b.commit(pc)
}

// AddPolygon constructs the polygon bounded by the named segments in order.
// flipped marks segments traversed from end to start.
func (e *Engine) AddPolygon(segments []string, flipped []bool) (Result, error) {
	segs := make([]*scene.Segment, len(segments))
	for i, n := range segments {
		c, err := e.curve(n)
		if err != nil {
			return Result{}, err
		}
		s, ok := c.(*scene.Segment)
		if !ok {
			return Result{}, fmt.Errorf("polygon side %q is a %s: %w", n, c.Kind(), ErrNotCurve)
		}
		segs[i] = s
	}
	b := e.newBuilder()
	pg := scene.NewPolygon(e.g, segs, flipped)
	b.add(pg)
	return b.commit(pg)
}

// AddAngleMarker marks the angle at vertex between the rays to a and c.
func (e *Engine) AddAngleMarker(a, vertex, c PointRef) (Result, error) {
	b := e.newBuilder()
	ps, err := b.points(a, vertex, c)
	if err != nil {
		return Result{}, err
	}
	m := scene.NewAngleMarker(e.g, ps[0], ps[1], ps[2])
	b.add(m)
	return b.commit(m)
}

// AddLabel attaches a label to the named object.
func (e *Engine) AddLabel(object, text string) (Result, error) {
	obj, ok := e.g.ByName(object)
	if !ok {
		return Result{}, fmt.Errorf("label %q: %w", object, scene.ErrNotFound)
	}
	l := scene.NewLabel(e.g, obj)
	if text != "" {
		l.Text = text
	}
	b := e.newBuilder()
	b.add(l)
	return b.commit(l)
}

// AddReflection creates the reflection over the named line.
func (e *Engine) AddReflection(line string) (Result, error) {
	c, err := e.curve(line)
	if err != nil {
		return Result{}, err
	}
	l, ok := c.(*scene.Line)
	if !ok {
		return Result{}, fmt.Errorf("reflection over %q, a %s: %w", line, c.Kind(), ErrNotCurve)
	}
	t := scene.NewReflection(e.g, l)
	b := e.newBuilder()
	b.add(t)
	return b.commit(t)
}

// AddRotation creates the rotation about center by angle radians.
func (e *Engine) AddRotation(center PointRef, angle float64) (Result, error) {
	b := e.newBuilder()
	p, err := b.point(center)
	if err != nil {
		return Result{}, err
	}
	t := scene.NewRotation(e.g, p, angle)
	b.add(t)
	return b.commit(t)
}

// AddTransformedPoint creates the image of a point under a transformation.
func (e *Engine) AddTransformedPoint(point, transformation string) (Result, error) {
	p, err := e.point(point)
	if err != nil {
		return Result{}, err
	}
	obj, ok := e.g.ByName(transformation)
	if !ok {
		return Result{}, fmt.Errorf("transformation %q: %w", transformation, scene.ErrNotFound)
	}
	t, ok := obj.(scene.Transformation)
	if !ok {
		return Result{}, fmt.Errorf("%q is a %s: %w", transformation, obj.Kind(), ErrNotTransformation)
	}
	b := e.newBuilder()
	tp := scene.NewTransformedPoint(e.g, p, t)
	b.addPoint(tp)
	return b.commit(tp)
}

func (e *Engine) duplicateLine(l *scene.Line) bool {
	n := l.Normal()
	for _, o := range e.g.Lines() {
		if o.Normal().ApproxEqual(n, geom.Epsilon) || o.Normal().ApproxEqual(n.Negate(), geom.Epsilon) {
			return true
		}
	}
	return false
}

func (e *Engine) duplicateSegment(s *scene.Segment) bool {
	a := s.Arc()
	for _, o := range e.g.Segments() {
		b := o.Arc()
		sameEnds := (b.Start.ApproxEqual(a.Start, geom.Epsilon) && b.End().ApproxEqual(a.End(), geom.Epsilon)) ||
			(b.Start.ApproxEqual(a.End(), geom.Epsilon) && b.End().ApproxEqual(a.Start, geom.Epsilon))
		if sameEnds && b.Midpoint().ApproxEqual(a.Midpoint(), geom.Epsilon) {
			return true
		}
	}
	return false
}

// duplicateCircle also matches the same circle described from the antipodal
// center.
func (e *Engine) duplicateCircle(c *scene.Circle) bool {
	a := c.Geometry()
	for _, o := range e.g.Circles() {
		b := o.Geometry()
		if b.Center.ApproxEqual(a.Center, geom.Epsilon) && math.Abs(b.Radius-a.Radius) < geom.Epsilon {
			return true
		}
		if b.Center.ApproxEqual(a.Center.Negate(), geom.Epsilon) && math.Abs(b.Radius-(math.Pi-a.Radius)) < geom.Epsilon {
			return true
		}
	}
	return false
}

func (e *Engine) duplicateEllipse(el *scene.Ellipse) bool {
	a := el.Geometry()
	for _, o := range e.g.Ellipses() {
		b := o.Geometry()
		sameFoci := (b.Focus1.ApproxEqual(a.Focus1, geom.Epsilon) && b.Focus2.ApproxEqual(a.Focus2, geom.Epsilon)) ||
			(b.Focus1.ApproxEqual(a.Focus2, geom.Epsilon) && b.Focus2.ApproxEqual(a.Focus1, geom.Epsilon))
		if sameFoci && math.Abs(b.A-a.A) < geom.Epsilon {
			return true
		}
	}
	return false
}

package scene

import (
	"math"
	"slices"

	"github.com/inamate/easel/internal/geom"
)

// Polygon is bounded by a closed chain of segments. Flipped marks the
// segments traversed from end to start.
type Polygon struct {
	Base
	flipped []bool
	area    float64
}

// NewPolygon allocates the polygon bounded by segs in order.
func NewPolygon(g *SceneGraph, segs []*Segment, flipped []bool) *Polygon {
	ids := make([]ID, len(segs))
	for i, s := range segs {
		ids[i] = s.ID()
	}
	p := &Polygon{Base: newBase(g, "Pg", ids...), flipped: slices.Clone(flipped)}
	p.shallowUpdateFrom(segs)
	return p
}

func (p *Polygon) Kind() Kind          { return KindPolygon }
func (p *Polygon) Area() float64       { return p.area }
func (p *Polygon) Flipped() []bool     { return slices.Clone(p.flipped) }
func (p *Polygon) State() State        { return p.stateWith(nil, p.area) }
func (p *Polygon) accept(visitor) bool { return false }

func (p *Polygon) restore(s State) {
	p.exists = s.Exists
	p.area = s.Scalars[0]
}

// Vertices returns the polygon's corners in boundary order.
func (p *Polygon) Vertices(g *SceneGraph) []geom.Vector3 {
	segs := p.segments(g)
	out := make([]geom.Vector3, 0, len(segs))
	for i, s := range segs {
		if i < len(p.flipped) && p.flipped[i] {
			out = append(out, s.arc.End())
		} else {
			out = append(out, s.arc.Start)
		}
	}
	return out
}

func (p *Polygon) segments(g *SceneGraph) []*Segment {
	var segs []*Segment
	for _, id := range p.parents {
		if o, ok := g.Get(id); ok {
			if s, ok := o.(*Segment); ok {
				segs = append(segs, s)
			}
		}
	}
	return segs
}

func (p *Polygon) shallowUpdate(g *SceneGraph) {
	p.shallowUpdateFrom(p.segments(g))
}

func (p *Polygon) shallowUpdateFrom(segs []*Segment) {
	p.exists = len(segs) >= 3 && len(segs) == len(p.parents)
	verts := make([]geom.Vector3, 0, len(segs))
	for i, s := range segs {
		if !s.Exists() {
			p.exists = false
		}
		if i < len(p.flipped) && p.flipped[i] {
			verts = append(verts, s.arc.End())
		} else {
			verts = append(verts, s.arc.Start)
		}
	}
	p.area = SphericalArea(verts)
}

// SphericalArea returns the area enclosed by a simple spherical polygon,
// computed as the sum of signed triangle excesses of a fan from the first
// vertex.
func SphericalArea(verts []geom.Vector3) float64 {
	if len(verts) < 3 {
		return 0
	}
	sum := 0.0
	a := verts[0]
	for i := 1; i+1 < len(verts); i++ {
		b, c := verts[i], verts[i+1]
		num := a.Dot(b.Cross(c))
		den := 1 + a.Dot(b) + b.Dot(c) + c.Dot(a)
		sum += 2 * math.Atan2(num, den)
	}
	area := math.Abs(sum)
	if area > 2*math.Pi {
		area = 4*math.Pi - area
	}
	return area
}

// AngleMarker measures the angle at the middle of three points.
type AngleMarker struct {
	Base
	value float64
}

// NewAngleMarker allocates the marker for angle a-vertex-c.
func NewAngleMarker(g *SceneGraph, a, vertex, c Point) *AngleMarker {
	m := &AngleMarker{Base: newBase(g, "Am", a.ID(), vertex.ID(), c.ID())}
	m.compute(a, vertex, c)
	return m
}

func (m *AngleMarker) Kind() Kind          { return KindAngleMarker }
func (m *AngleMarker) Value() float64      { return m.value }
func (m *AngleMarker) State() State        { return m.stateWith(nil, m.value) }
func (m *AngleMarker) accept(visitor) bool { return false }

func (m *AngleMarker) restore(s State) {
	m.exists = s.Exists
	m.value = s.Scalars[0]
}

func (m *AngleMarker) compute(a, vertex, c Point) {
	m.value, m.exists = AngleAt(a.Location(), vertex.Location(), c.Location())
	m.exists = m.exists && a.Exists() && vertex.Exists() && c.Exists()
}

func (m *AngleMarker) shallowUpdate(g *SceneGraph) {
	ps, ok := endpoints(g, m.parents[:3])
	if !ok {
		m.exists = false
		return
	}
	m.compute(ps[0], ps[1], ps[2])
}

// AngleAt returns the angle in [0, 2π) swept counterclockwise at vertex from
// the great circle toward a to the great circle toward c. It reports false
// when either side is undefined.
func AngleAt(a, vertex, c geom.Vector3) (float64, bool) {
	n1, n2 := vertex.Cross(a), vertex.Cross(c)
	if n1.IsZero(geom.Epsilon) || n2.IsZero(geom.Epsilon) {
		return 0, false
	}
	ang := math.Atan2(n1.Cross(n2).Dot(vertex), n1.Dot(n2))
	if ang < 0 {
		ang += 2 * math.Pi
	}
	return ang, true
}

// Label is attached to one parent object and follows its anchor.
type Label struct {
	Base
	location geom.Vector3
	Text     string
}

// NewLabel allocates a label for obj.
func NewLabel(g *SceneGraph, obj Object) *Label {
	l := &Label{Base: newBase(g, "Lb", obj.ID()), Text: obj.Name()}
	l.location = anchor(g, obj, geom.V3(0, 0, 1))
	l.exists = obj.Exists()
	return l
}

func (l *Label) Kind() Kind             { return KindLabel }
func (l *Label) Parent() ID             { return l.parents[0] }
func (l *Label) Position() geom.Vector3 { return l.location }
func (l *Label) State() State           { return l.stateWith([]geom.Vector3{l.location}) }
func (l *Label) restore(s State)        { l.exists = s.Exists; l.location = s.Vectors[0] }

func (l *Label) accept(v visitor) bool {
	l.location = v.vector(l.location)
	return false
}

func (l *Label) shallowUpdate(g *SceneGraph) {
	obj, ok := g.Get(l.Parent())
	if !ok {
		l.exists = false
		return
	}
	l.location = anchor(g, obj, l.location)
	l.exists = obj.Exists()
}

// anchor is the point of obj a label attaches to, nearest to near.
func anchor(g *SceneGraph, obj Object, near geom.Vector3) geom.Vector3 {
	switch o := obj.(type) {
	case Point:
		return o.Location()
	case Curve:
		return o.Shape().ClosestPoint(near)
	case *Polygon:
		if vs := o.Vertices(g); len(vs) > 0 {
			return vs[0]
		}
	case *AngleMarker:
		if p, ok := g.Point(o.parents[1]); ok {
			return p.Location()
		}
	}
	return near
}

// Transformation maps the sphere to itself.
type Transformation interface {
	Object
	Matrix() geom.Matrix3
}

// Reflection reflects across a line.
type Reflection struct {
	Base
	matrix geom.Matrix3
}

// NewReflection allocates the reflection across l.
func NewReflection(g *SceneGraph, l *Line) *Reflection {
	r := &Reflection{Base: newBase(g, "T", l.ID())}
	r.matrix = geom.Reflect(l.Normal())
	r.exists = l.Exists()
	return r
}

func (r *Reflection) Kind() Kind           { return KindTransformation }
func (r *Reflection) Line() ID             { return r.parents[0] }
func (r *Reflection) Matrix() geom.Matrix3 { return r.matrix }
func (r *Reflection) State() State         { return r.stateWith(nil, r.matrix.ToSlice()...) }
func (r *Reflection) accept(visitor) bool  { return false }

func (r *Reflection) restore(s State) {
	r.exists = s.Exists
	copy(r.matrix[:], s.Scalars)
}

func (r *Reflection) shallowUpdate(g *SceneGraph) {
	c, ok := g.Curve(r.Line())
	l, isLine := c.(*Line)
	if !ok || !isLine {
		r.exists = false
		return
	}
	r.matrix = geom.Reflect(l.Normal())
	r.exists = l.Exists()
}

// Rotation rotates about a point by a fixed angle.
type Rotation struct {
	Base
	angle  float64
	matrix geom.Matrix3
}

// NewRotation allocates the rotation about center by angle radians.
func NewRotation(g *SceneGraph, center Point, angle float64) *Rotation {
	r := &Rotation{Base: newBase(g, "T", center.ID()), angle: angle}
	r.matrix = geom.RotateAxis(center.Location(), angle)
	r.exists = center.Exists()
	return r
}

func (r *Rotation) Kind() Kind           { return KindTransformation }
func (r *Rotation) Center() ID           { return r.parents[0] }
func (r *Rotation) Angle() float64       { return r.angle }
func (r *Rotation) Matrix() geom.Matrix3 { return r.matrix }
func (r *Rotation) State() State         { return r.stateWith(nil, r.matrix.ToSlice()...) }
func (r *Rotation) accept(visitor) bool  { return false }

func (r *Rotation) restore(s State) {
	r.exists = s.Exists
	copy(r.matrix[:], s.Scalars)
}

func (r *Rotation) shallowUpdate(g *SceneGraph) {
	p, ok := g.Point(r.Center())
	if !ok {
		r.exists = false
		return
	}
	r.matrix = geom.RotateAxis(p.Location(), r.angle)
	r.exists = p.Exists()
}

package scene

import (
	"slices"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/intersect"
)

type pointBase struct {
	Base
	location geom.Vector3
}

func (p *pointBase) Kind() Kind             { return KindPoint }
func (p *pointBase) Location() geom.Vector3 { return p.location }

func (p *pointBase) State() State {
	return p.stateWith([]geom.Vector3{p.location})
}

func (p *pointBase) restore(s State) {
	p.exists = s.Exists
	if len(s.Vectors) > 0 {
		p.location = s.Vectors[0]
	}
}

// FreePoint is an independently movable point with no parents.
type FreePoint struct {
	pointBase
}

// NewFreePoint allocates a free point at v (normalized).
func NewFreePoint(g *SceneGraph, v geom.Vector3) *FreePoint {
	p := &FreePoint{pointBase{Base: newBase(g, "P"), location: v.Normalize()}}
	return p
}

func (p *FreePoint) shallowUpdate(*SceneGraph) {}

func (p *FreePoint) accept(v visitor) bool {
	p.location = v.vector(p.location)
	return true
}

// setLocation moves the point without propagating; see SceneGraph.MovePoint.
func (p *FreePoint) setLocation(v geom.Vector3) { p.location = v.Normalize() }

// PointOnObject is constrained to the closest projection onto its parent
// curve.
type PointOnObject struct {
	pointBase
}

// NewPointOnObject allocates a point on curve c near v.
func NewPointOnObject(g *SceneGraph, c Curve, v geom.Vector3) *PointOnObject {
	p := &PointOnObject{pointBase{Base: newBase(g, "P", c.ID())}}
	p.location = c.Shape().ClosestPoint(v.Normalize())
	p.exists = c.Exists()
	return p
}

// Parent returns the id of the constraining curve.
func (p *PointOnObject) Parent() ID { return p.parents[0] }

func (p *PointOnObject) setLocation(v geom.Vector3) { p.location = v.Normalize() }

func (p *PointOnObject) shallowUpdate(g *SceneGraph) {
	c, ok := g.Curve(p.Parent())
	if !ok {
		p.exists = false
		return
	}
	p.exists = c.Exists()
	if p.exists {
		p.location = c.Shape().ClosestPoint(p.location)
	}
}

// accept moves the remembered location rigidly but defers to projection.
func (p *PointOnObject) accept(v visitor) bool {
	p.location = v.vector(p.location)
	return false
}

// ParentPair identifies one pair of curves whose intersection candidate at
// Index produces a point.
type ParentPair struct {
	Curve1 ID  `json:"curve1"`
	Curve2 ID  `json:"curve2"`
	Index  int `json:"index"`
}

// IntersectionPoint is computed from two one-dimensional parents. It may
// record further pairs of curves that meet at the same location.
type IntersectionPoint struct {
	pointBase
	primary     ParentPair
	others      []ParentPair
	userCreated bool
}

// NewIntersectionPoint allocates a hidden, non user-created intersection of
// c1 and c2 at candidate slot index. An empty slot is seeded with a point of
// c1 until the curves meet.
func NewIntersectionPoint(g *SceneGraph, c1, c2 Curve, index int, v geom.Vector3, exists bool) *IntersectionPoint {
	if !v.IsUnit(geom.Epsilon) {
		v = placeholder(c1)
	}
	p := &IntersectionPoint{
		pointBase: pointBase{Base: newBase(g, "P", c1.ID(), c2.ID()), location: v},
		primary:   ParentPair{Curve1: c1.ID(), Curve2: c2.ID(), Index: index},
	}
	p.exists = exists && c1.Exists() && c2.Exists()
	p.showing = false
	return p
}

func placeholder(c Curve) geom.Vector3 {
	lo, _ := c.Shape().Domain()
	if v := c.Shape().Point(lo); v.IsUnit(geom.Epsilon) {
		return v
	}
	return geom.V3(0, 0, 1)
}

func (p *IntersectionPoint) Primary() ParentPair        { return p.primary }
func (p *IntersectionPoint) OtherParents() []ParentPair { return slices.Clone(p.others) }
func (p *IntersectionPoint) IsUserCreated() bool        { return p.userCreated }

// Pairs returns the primary pair followed by the other pairs.
func (p *IntersectionPoint) Pairs() []ParentPair {
	return append([]ParentPair{p.primary}, p.others...)
}

// HasPair reports whether the point already records a pair containing both
// curves, in either order.
func (p *IntersectionPoint) HasPair(c1, c2 ID) bool {
	for _, pp := range p.Pairs() {
		if (pp.Curve1 == c1 && pp.Curve2 == c2) || (pp.Curve1 == c2 && pp.Curve2 == c1) {
			return true
		}
	}
	return false
}

func (p *IntersectionPoint) setUserCreated(v bool) { p.userCreated = v }

// evaluate computes the candidate for one pair.
func evaluate(g *SceneGraph, pp ParentPair) (intersect.Candidate, bool) {
	c1, ok1 := g.Curve(pp.Curve1)
	c2, ok2 := g.Curve(pp.Curve2)
	if !ok1 || !ok2 {
		return intersect.Candidate{}, false
	}
	cs := g.slots(c1, c2)
	if pp.Index < 0 || pp.Index >= len(cs) {
		return intersect.Candidate{}, false
	}
	c := cs[pp.Index]
	c.Exists = c.Exists && c1.Exists() && c2.Exists()
	return c, true
}

func (p *IntersectionPoint) shallowUpdate(g *SceneGraph) {
	for _, pp := range p.Pairs() {
		c, ok := evaluate(g, pp)
		if ok && c.Exists {
			p.location = c.Vector
			p.exists = true
			return
		}
	}
	p.exists = false
	if c, ok := evaluate(g, p.primary); ok && !c.Vector.IsZero(geom.Epsilon) {
		p.location = c.Vector
	}
}

func (p *IntersectionPoint) accept(v visitor) bool {
	p.location = v.vector(p.location)
	return true
}

// AntipodalPoint is the negation of its parent point.
type AntipodalPoint struct {
	pointBase
}

// NewAntipodalPoint allocates the antipode of p.
func NewAntipodalPoint(g *SceneGraph, p Point) *AntipodalPoint {
	a := &AntipodalPoint{pointBase{Base: newBase(g, "P", p.ID()), location: p.Location().Negate()}}
	a.exists = p.Exists()
	a.showing = p.Showing()
	return a
}

// Parent returns the id of the point this is the antipode of.
func (a *AntipodalPoint) Parent() ID { return a.parents[0] }

func (a *AntipodalPoint) shallowUpdate(g *SceneGraph) {
	p, ok := g.Point(a.Parent())
	if !ok {
		a.exists = false
		return
	}
	a.location = p.Location().Negate()
	a.exists = p.Exists()
}

func (a *AntipodalPoint) accept(v visitor) bool {
	a.location = v.vector(a.location)
	return true
}

// TransformedPoint is the image of a point under a transformation.
type TransformedPoint struct {
	pointBase
}

// NewTransformedPoint allocates the image of p under t.
func NewTransformedPoint(g *SceneGraph, p Point, t Transformation) *TransformedPoint {
	tp := &TransformedPoint{pointBase{Base: newBase(g, "P", p.ID(), t.ID())}}
	tp.location = t.Matrix().Apply(p.Location()).Normalize()
	tp.exists = p.Exists() && t.Exists()
	return tp
}

func (tp *TransformedPoint) Source() ID         { return tp.parents[0] }
func (tp *TransformedPoint) Transformation() ID { return tp.parents[1] }

func (tp *TransformedPoint) shallowUpdate(g *SceneGraph) {
	p, ok1 := g.Point(tp.Source())
	t, ok2 := g.Transformation(tp.Transformation())
	if !ok1 || !ok2 {
		tp.exists = false
		return
	}
	tp.location = t.Matrix().Apply(p.Location()).Normalize()
	tp.exists = p.Exists() && t.Exists()
}

func (tp *TransformedPoint) accept(v visitor) bool {
	tp.location = v.vector(tp.location)
	return true
}

// IsUserCreated reports whether a point counts as created by the user, which
// is every point except hidden intersection points and antipodes.
func IsUserCreated(p Point) bool {
	switch v := p.(type) {
	case *IntersectionPoint:
		return v.userCreated
	case *AntipodalPoint:
		return false
	}
	return true
}

package scene

import (
	"fmt"
	"slices"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/intersect"
)

// EffectKind classifies an intersection effect.
type EffectKind int

const (
	// EffectNewPoint allocates a new intersection point.
	EffectNewPoint EffectKind = iota
	// EffectReparent attaches another parent pair to an existing point.
	EffectReparent
)

func (k EffectKind) String() string {
	if k == EffectReparent {
		return "reparent"
	}
	return "new"
}

// Effect is one result of intersecting a new curve with the scene.
type Effect struct {
	Kind   EffectKind
	Point  *IntersectionPoint
	Pair   ParentPair
	Exists bool
}

// IntersectionEngine discovers the intersections a new curve creates.
type IntersectionEngine struct {
	g *SceneGraph
}

// NewIntersectionEngine returns an engine reading from g.
func NewIntersectionEngine(g *SceneGraph) *IntersectionEngine {
	return &IntersectionEngine{g: g}
}

// known is one entry of the accumulated point list used for deduplication.
type known struct {
	location geom.Vector3
	point    Point
}

// CreateAllIntersectionsWith intersects newCurve with every registered curve
// in canonical kind order. prior holds points created in the same
// construction that are not registered yet. New points are allocated but not
// registered.
func (e *IntersectionEngine) CreateAllIntersectionsWith(newCurve Curve, prior []Point) []Effect {
	g := e.g
	existing := make([]known, 0, len(prior)+len(g.byKind[KindPoint]))
	for _, p := range g.Points() {
		existing = append(existing, known{location: p.Location(), point: p})
	}
	for _, p := range prior {
		existing = append(existing, known{location: p.Location(), point: p})
	}

	var effects []Effect
	for _, k := range geom.Kinds {
		for _, other := range g.CurvesOfKind(sceneKind(k)) {
			if other.ID() == newCurve.ID() {
				continue
			}
			cands := intersect.Intersect(other.Shape(), newCurve.Shape())
			for i, c := range cands {
				ok := c.Exists && other.Exists() && newCurve.Exists()
				pair := ParentPair{Curve1: other.ID(), Curve2: newCurve.ID(), Index: i}
				match := lookup(existing, c.Vector)
				switch {
				case match == nil:
					p := NewIntersectionPoint(g, other, newCurve, i, c.Vector, ok)
					existing = append(existing, known{location: c.Vector, point: p})
					effects = append(effects, Effect{Kind: EffectNewPoint, Point: p, Pair: pair, Exists: p.Exists()})
				default:
					if ip, isIntersection := match.(*IntersectionPoint); isIntersection {
						effects = append(effects, Effect{Kind: EffectReparent, Point: ip, Pair: pair, Exists: ok})
					}
				}
			}
		}
	}
	return e.filter(newCurve, effects)
}

// lookup finds a known point at v. The zero vector never matches.
func lookup(existing []known, v geom.Vector3) Point {
	if v.IsZero(geom.Epsilon) {
		return nil
	}
	for _, k := range existing {
		if k.location.ApproxEqual(v, geom.Epsilon) {
			return k.point
		}
	}
	return nil
}

// filter drops repeated {point, parent} effects and effects on points the new
// curve depends on.
func (e *IntersectionEngine) filter(newCurve Curve, effects []Effect) []Effect {
	type key struct {
		point ID
		other ID
	}
	seen := map[key]bool{}
	out := effects[:0]
	for _, ef := range effects {
		k := key{point: ef.Point.ID(), other: ef.Pair.Curve1}
		if seen[k] {
			continue
		}
		seen[k] = true
		if ef.Kind == EffectReparent && e.dependsOn(newCurve, ef.Point.ID()) {
			continue
		}
		out = append(out, ef)
	}
	return out
}

// dependsOn reports whether pointID is a parent or further ancestor of c. The
// new curve may not be registered yet, so its parents are walked directly.
func (e *IntersectionEngine) dependsOn(c Curve, pointID ID) bool {
	for _, pid := range c.base().parents {
		if pid == pointID || e.g.IsAncestor(pointID, pid) {
			return true
		}
	}
	return false
}

func sceneKind(k geom.Kind) Kind {
	switch k {
	case geom.KindLine:
		return KindLine
	case geom.KindSegment:
		return KindSegment
	case geom.KindCircle:
		return KindCircle
	case geom.KindEllipse:
		return KindEllipse
	case geom.KindParametric:
		return KindParametric
	}
	return ""
}

// AddOtherParent records pair on p and links both curves as parents.
// Existence is sticky: a pair that currently intersects sets exists, one that
// does not leaves it unchanged.
func (g *SceneGraph) AddOtherParent(p *IntersectionPoint, pair ParentPair, exists bool) error {
	if p.HasPair(pair.Curve1, pair.Curve2) {
		return nil
	}
	for _, cid := range []ID{pair.Curve1, pair.Curve2} {
		if err := g.Link(cid, p.ID()); err != nil {
			return fmt.Errorf("add parent pair to %s: %w", p.Name(), err)
		}
	}
	p.others = append(p.others, pair)
	if exists {
		p.exists = true
	}
	return nil
}

// RemoveOtherParent undoes AddOtherParent. Curves still referenced by another
// recorded pair stay linked.
func (g *SceneGraph) RemoveOtherParent(p *IntersectionPoint, pair ParentPair, previousExists bool) {
	i := slices.Index(p.others, pair)
	if i < 0 {
		return
	}
	p.others = slices.Delete(p.others, i, i+1)
	for _, cid := range []ID{pair.Curve1, pair.Curve2} {
		if !p.references(cid) {
			g.Unlink(cid, p.ID())
		}
	}
	p.exists = previousExists
}

// PairSet is the recorded parent pairs of an intersection point.
type PairSet struct {
	Primary ParentPair
	Others  []ParentPair
}

// PairSet returns a copy of the point's pairs.
func (p *IntersectionPoint) PairSet() PairSet {
	return PairSet{Primary: p.primary, Others: slices.Clone(p.others)}
}

// Survives reports whether p keeps a pair once the curves in gone are
// removed.
func (p *IntersectionPoint) Survives(gone func(ID) bool) bool {
	for _, pp := range p.Pairs() {
		if !gone(pp.Curve1) && !gone(pp.Curve2) {
			return true
		}
	}
	return false
}

// DropCurve removes every pair of p that uses curve and unlinks the curve.
// The first remaining pair becomes the primary one. It reports false and
// changes nothing when no pair would remain.
func (g *SceneGraph) DropCurve(p *IntersectionPoint, curve ID) bool {
	var keep []ParentPair
	for _, pp := range p.Pairs() {
		if pp.Curve1 != curve && pp.Curve2 != curve {
			keep = append(keep, pp)
		}
	}
	if len(keep) == 0 {
		return false
	}
	p.primary, p.others = keep[0], keep[1:]
	g.Unlink(curve, p.ID())
	return true
}

// SetPairs replaces the pairs of p and links every curve they name.
func (g *SceneGraph) SetPairs(p *IntersectionPoint, ps PairSet) error {
	p.primary, p.others = ps.Primary, slices.Clone(ps.Others)
	for _, pp := range p.Pairs() {
		for _, cid := range []ID{pp.Curve1, pp.Curve2} {
			if err := g.Link(cid, p.ID()); err != nil {
				return fmt.Errorf("set pairs of %s: %w", p.Name(), err)
			}
		}
	}
	return nil
}

func (p *IntersectionPoint) references(id ID) bool {
	for _, pp := range p.Pairs() {
		if pp.Curve1 == id || pp.Curve2 == id {
			return true
		}
	}
	return false
}

// SetUserCreated promotes or demotes an intersection point. A promoted point
// is shown.
func (g *SceneGraph) SetUserCreated(p *IntersectionPoint, userCreated bool) {
	p.setUserCreated(userCreated)
	p.showing = userCreated
	g.notify(p, UpdateRefresh)
}

// SetShowing changes the display visibility of obj.
func (g *SceneGraph) SetShowing(obj Object, showing bool) {
	obj.base().showing = showing
	g.notify(obj, UpdateRefresh)
}

// Antipode returns the antipodal point of p, if one is registered.
func (g *SceneGraph) Antipode(p Point) (*AntipodalPoint, bool) {
	for _, id := range p.base().children {
		if a, ok := g.objects[id].(*AntipodalPoint); ok {
			return a, true
		}
	}
	return nil, false
}

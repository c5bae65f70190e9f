package scene

import (
	"fmt"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/intersect"
)

// visitor is a global transformation applied during a sweep.
type visitor interface {
	vector(v geom.Vector3) geom.Vector3
	matrix(m geom.Matrix3) geom.Matrix3
}

type rotationVisitor struct {
	m geom.Matrix3
}

func (r rotationVisitor) vector(v geom.Vector3) geom.Vector3 { return r.m.Apply(v) }
func (r rotationVisitor) matrix(m geom.Matrix3) geom.Matrix3 { return r.m.Multiply(m) }

// markKidsOutOfDate flags every descendant of obj as stale. Reaching a node
// through several parents is harmless.
func (g *SceneGraph) markKidsOutOfDate(obj Object) {
	for _, id := range obj.base().children {
		kid, ok := g.objects[id]
		if !ok {
			continue
		}
		kid.base().stale = true
		g.markKidsOutOfDate(kid)
	}
}

// canUpdateNow reports whether every parent of obj is up to date.
func (g *SceneGraph) canUpdateNow(obj Object) bool {
	for _, pid := range obj.base().parents {
		if p, ok := g.objects[pid]; ok && p.base().stale {
			return false
		}
	}
	return true
}

// sweep recomputes the stale descendants of the seeds in dependency order.
// Seeds are updated first (with v when set), then each child is processed
// once all of its parents are up to date.
func (g *SceneGraph) sweep(seeds []Object, v visitor, mode UpdateMode) {
	g.layouts = make(map[pairKey][]intersect.Candidate)
	defer func() { g.layouts = nil }()
	queue := make([]Object, 0, len(seeds))
	for _, s := range seeds {
		if v != nil && !s.accept(v) {
			s.shallowUpdate(g)
		}
		s.base().stale = false
		g.notify(s, mode)
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, id := range cur.base().children {
			kid, ok := g.objects[id]
			if !ok || !kid.base().stale || !g.canUpdateNow(kid) {
				continue
			}
			if v == nil || !kid.accept(v) {
				kid.shallowUpdate(g)
			}
			kid.base().stale = false
			g.notify(kid, mode)
			queue = append(queue, kid)
		}
	}
}

// roots returns every object with no parents.
func (g *SceneGraph) roots() []Object {
	var out []Object
	for _, id := range g.all {
		if o := g.objects[id]; len(o.base().parents) == 0 {
			out = append(out, o)
		}
	}
	return out
}

// MovePoint sets the location of a free point, or the projected location of
// a point on an object, and propagates to its descendants only.
func (g *SceneGraph) MovePoint(id ID, v geom.Vector3) error {
	obj, ok := g.objects[id]
	if !ok {
		return fmt.Errorf("move %d: %w", id, ErrNotFound)
	}
	switch p := obj.(type) {
	case *FreePoint:
		p.setLocation(v)
	case *PointOnObject:
		p.setLocation(v)
		p.shallowUpdate(g)
	default:
		return fmt.Errorf("move %s: %w", obj.Name(), ErrNotMovable)
	}
	g.markKidsOutOfDate(obj)
	g.sweep([]Object{obj}, nil, UpdateDrag)
	return nil
}

// RotateSphere applies m to every object.
func (g *SceneGraph) RotateSphere(m geom.Matrix3) {
	roots := g.roots()
	for _, r := range roots {
		g.markKidsOutOfDate(r)
	}
	g.sweep(roots, rotationVisitor{m: m}, UpdateRotate)
}

// Update recomputes obj and its descendants from their parents.
func (g *SceneGraph) Update(id ID) {
	obj, ok := g.objects[id]
	if !ok {
		return
	}
	g.markKidsOutOfDate(obj)
	obj.shallowUpdate(g)
	g.sweep([]Object{obj}, nil, UpdateRefresh)
}

// UpdateAll recomputes every object from the roots down.
func (g *SceneGraph) UpdateAll() {
	roots := g.roots()
	for _, r := range roots {
		g.markKidsOutOfDate(r)
		r.shallowUpdate(g)
	}
	g.sweep(roots, nil, UpdateRefresh)
}

// Capture returns the states of the given objects.
func (g *SceneGraph) Capture(ids []ID) []State {
	out := make([]State, 0, len(ids))
	for _, id := range ids {
		if o, ok := g.objects[id]; ok {
			out = append(out, o.State())
		}
	}
	return out
}

// CaptureAll returns the state of every object.
func (g *SceneGraph) CaptureAll() []State {
	return g.Capture(g.all)
}

// Restore writes captured states back without recomputation.
func (g *SceneGraph) Restore(states []State) {
	for _, s := range states {
		if o, ok := g.objects[s.ID]; ok {
			o.restore(s)
			o.base().stale = false
			g.notify(o, UpdateRestore)
		}
	}
}

package command

import (
	"fmt"
	"maps"
	"slices"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

// MovePoint moves a free point or a point on an object. Undo restores the
// captured state of the point and all its descendants exactly.
type MovePoint struct {
	g        *scene.SceneGraph
	point    scene.Point
	from, to geom.Vector3
	before   []scene.State
}

func NewMovePoint(g *scene.SceneGraph, p scene.Point, to geom.Vector3) *MovePoint {
	return &MovePoint{g: g, point: p, from: p.Location(), to: to}
}

func (c *MovePoint) Execute() error {
	if c.before == nil {
		ids := append([]scene.ID{c.point.ID()}, c.g.Descendants(c.point.ID())...)
		c.before = c.g.Capture(ids)
	}
	if err := c.g.MovePoint(c.point.ID(), c.to); err != nil {
		return invariant("move", err)
	}
	return nil
}

func (c *MovePoint) Undo() error {
	c.g.Restore(c.before)
	return nil
}

func (c *MovePoint) Opcode() string {
	return newTokens(actionMovePoint).
		add("point", c.point.Name()).
		addVector("from", c.from).
		addVector("to", c.to).
		String()
}

// RotateSphere applies a rotation to the whole scene.
type RotateSphere struct {
	g      *scene.SceneGraph
	m      geom.Matrix3
	before []scene.State
}

func NewRotateSphere(g *scene.SceneGraph, m geom.Matrix3) *RotateSphere {
	return &RotateSphere{g: g, m: m}
}

func (c *RotateSphere) Execute() error {
	if c.before == nil {
		c.before = c.g.CaptureAll()
	}
	c.g.RotateSphere(c.m)
	return nil
}

func (c *RotateSphere) Undo() error {
	c.g.Restore(c.before)
	return nil
}

func (c *RotateSphere) Opcode() string {
	return newTokens(actionRotateSphere).add("matrix", formatFloats(c.m.ToSlice()...)).String()
}

// SetShowing changes the display flag of one object.
type SetShowing struct {
	g        *scene.SceneGraph
	obj      scene.Object
	showing  bool
	previous bool
}

func NewSetShowing(g *scene.SceneGraph, obj scene.Object, showing bool) *SetShowing {
	return &SetShowing{g: g, obj: obj, showing: showing}
}

func (c *SetShowing) Execute() error {
	c.previous = c.obj.Showing()
	c.g.SetShowing(c.obj, c.showing)
	return nil
}

func (c *SetShowing) Undo() error {
	c.g.SetShowing(c.obj, c.previous)
	return nil
}

func (c *SetShowing) Opcode() string {
	return newTokens(actionSetShowing).
		add("object", c.obj.Name()).
		addBool("value", c.showing).
		String()
}

// SetUserCreated promotes an intersection point to a user-facing point, or
// demotes it.
type SetUserCreated struct {
	g           *scene.SceneGraph
	point       *scene.IntersectionPoint
	value       bool
	prevValue   bool
	prevShowing bool
}

func NewSetUserCreated(g *scene.SceneGraph, p *scene.IntersectionPoint, value bool) *SetUserCreated {
	return &SetUserCreated{g: g, point: p, value: value}
}

func (c *SetUserCreated) Execute() error {
	c.prevValue, c.prevShowing = c.point.IsUserCreated(), c.point.Showing()
	c.g.SetUserCreated(c.point, c.value)
	return nil
}

func (c *SetUserCreated) Undo() error {
	c.g.SetUserCreated(c.point, c.prevValue)
	c.g.SetShowing(c.point, c.prevShowing)
	return nil
}

func (c *SetUserCreated) Opcode() string {
	return newTokens(actionSetUserCreated).
		add("point", c.point.Name()).
		addBool("value", c.value).
		String()
}

// AddOtherParent attaches another pair of curves to an existing intersection
// point.
type AddOtherParent struct {
	g        *scene.SceneGraph
	point    *scene.IntersectionPoint
	pair     scene.ParentPair
	exists   bool
	previous bool
	op       string
}

func NewAddOtherParent(g *scene.SceneGraph, p *scene.IntersectionPoint, pair scene.ParentPair, exists bool) *AddOtherParent {
	return &AddOtherParent{g: g, point: p, pair: pair, exists: exists}
}

func (c *AddOtherParent) Execute() error {
	c.previous = c.point.Exists()
	if err := c.g.AddOtherParent(c.point, c.pair, c.exists); err != nil {
		return invariant("reparent", err)
	}
	if c.op == "" {
		c.op = c.encode()
	}
	return nil
}

func (c *AddOtherParent) Undo() error {
	c.g.RemoveOtherParent(c.point, c.pair, c.previous)
	return nil
}

func (c *AddOtherParent) Opcode() string {
	if c.op == "" {
		return c.encode()
	}
	return c.op
}

func (c *AddOtherParent) encode() string {
	return newTokens(actionAddOtherParent).
		add("point", c.point.Name()).
		add("curve1", nameOf(c.g, c.pair.Curve1)).
		add("curve2", nameOf(c.g, c.pair.Curve2)).
		addInt("index", c.pair.Index).
		addBool("exists", c.exists).
		String()
}

// Delete removes an object together with everything that depends on it. An
// intersection point that keeps a pair of surviving curves is not removed;
// the pairs that use removed curves are dropped instead. Undo re-registers
// the removed objects and restores pairs and states.
type Delete struct {
	g        *scene.SceneGraph
	target   scene.Object
	removed  []scene.Object
	detached []detachment
	states   []scene.State
}

type detachment struct {
	point  *scene.IntersectionPoint
	before scene.PairSet
}

func NewDelete(g *scene.SceneGraph, obj scene.Object) *Delete {
	return &Delete{g: g, target: obj}
}

func (c *Delete) Execute() error {
	if _, ok := c.target.(*scene.AntipodalPoint); ok {
		return fmt.Errorf("delete %s: antipodes go with their point: %w", c.target.Name(), ErrInvariant)
	}
	doomed := doomedBy(c.g, c.target)
	c.removed = removalOrder(c.g, c.target, doomed)
	c.detached = c.detached[:0]

	ids := make([]scene.ID, 0, len(c.removed))
	for _, o := range c.removed {
		ids = append(ids, o.ID())
	}
	for _, o := range c.removed {
		for _, kid := range sortedChildren(o) {
			ip, ok := c.g.Get(kid)
			if !ok || doomed[kid] {
				continue
			}
			if p, ok := ip.(*scene.IntersectionPoint); ok && !c.detaching(p) {
				c.detached = append(c.detached, detachment{point: p, before: p.PairSet()})
				ids = append(ids, p.ID())
			}
		}
	}
	c.states = c.g.Capture(ids)

	for _, d := range c.detached {
		for _, pp := range d.before.Others {
			c.drop(d.point, pp, doomed)
		}
		c.drop(d.point, d.before.Primary, doomed)
	}
	for _, o := range c.removed {
		if err := c.g.Remove(o.ID()); err != nil {
			return invariant("delete "+c.target.Name(), err)
		}
	}
	for _, d := range c.detached {
		c.g.Update(d.point.ID())
	}
	return nil
}

func (c *Delete) detaching(p *scene.IntersectionPoint) bool {
	return slices.ContainsFunc(c.detached, func(d detachment) bool { return d.point == p })
}

func (c *Delete) drop(p *scene.IntersectionPoint, pp scene.ParentPair, doomed map[scene.ID]bool) {
	for _, cid := range []scene.ID{pp.Curve1, pp.Curve2} {
		if doomed[cid] {
			c.g.DropCurve(p, cid)
		}
	}
}

func (c *Delete) Undo() error {
	for i := len(c.removed) - 1; i >= 0; i-- {
		if err := c.g.Add(c.removed[i]); err != nil {
			return invariant("restore "+c.removed[i].Name(), err)
		}
	}
	for _, d := range c.detached {
		if err := c.g.SetPairs(d.point, d.before); err != nil {
			return invariant("restore "+d.point.Name(), err)
		}
	}
	c.g.Restore(c.states)
	return nil
}

func (c *Delete) Opcode() string {
	return newTokens(actionDelete).add("object", c.target.Name()).String()
}

// doomedBy returns obj and every descendant that goes with it. Intersection
// points with a pair of surviving curves stay, and so do their descendants
// unless another path dooms them. The set grows until it is stable.
func doomedBy(g *scene.SceneGraph, obj scene.Object) map[scene.ID]bool {
	doomed := map[scene.ID]bool{obj.ID(): true}
	gone := func(id scene.ID) bool { return doomed[id] }
	for changed := true; changed; {
		changed = false
		for _, id := range slices.Sorted(maps.Keys(doomed)) {
			o, ok := g.Get(id)
			if !ok {
				continue
			}
			for _, kid := range sortedChildren(o) {
				k, ok := g.Get(kid)
				if !ok || doomed[kid] {
					continue
				}
				if ip, isIP := k.(*scene.IntersectionPoint); isIP && ip.Survives(gone) {
					continue
				}
				doomed[kid] = true
				changed = true
			}
		}
	}
	return doomed
}

// removalOrder lists the doomed objects reachable from obj so that every
// object comes after all of its doomed children.
func removalOrder(g *scene.SceneGraph, obj scene.Object, doomed map[scene.ID]bool) []scene.Object {
	var out []scene.Object
	seen := map[scene.ID]bool{}
	var visit func(o scene.Object)
	visit = func(o scene.Object) {
		if seen[o.ID()] {
			return
		}
		seen[o.ID()] = true
		for _, id := range sortedChildren(o) {
			if k, ok := g.Get(id); ok && doomed[id] {
				visit(k)
			}
		}
		out = append(out, o)
	}
	visit(obj)
	return out
}

func sortedChildren(o scene.Object) []scene.ID {
	kids := o.Children()
	slices.Sort(kids)
	return kids
}

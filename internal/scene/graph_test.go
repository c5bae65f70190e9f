package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/easel/internal/geom"
)

func mustAdd[T Object](t *testing.T, g *SceneGraph, obj T) T {
	t.Helper()
	require.NoError(t, g.Add(obj))
	return obj
}

func freePoint(t *testing.T, g *SceneGraph, x, y, z float64) *FreePoint {
	t.Helper()
	return mustAdd(t, g, NewFreePoint(g, geom.V3(x, y, z)))
}

func line(t *testing.T, g *SceneGraph, a, b Point) *Line {
	t.Helper()
	return mustAdd(t, g, NewLine(g, a, b, geom.V3(0, 0, 1)))
}

// registerEffects applies intersection effects the way the construction
// commands do.
func registerEffects(t *testing.T, g *SceneGraph, effects []Effect) {
	t.Helper()
	for _, ef := range effects {
		switch ef.Kind {
		case EffectNewPoint:
			require.NoError(t, g.Add(ef.Point))
		case EffectReparent:
			require.NoError(t, g.AddOtherParent(ef.Point, ef.Pair, ef.Exists))
		}
	}
}

func TestNamesAndOrdering(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 1, 0, 0)
	b := freePoint(t, g, 0, 1, 0)
	l := line(t, g, a, b)

	assert.Equal(t, "P1", a.Name())
	assert.Equal(t, "P2", b.Name())
	assert.Equal(t, "L1", l.Name())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []ID{a.ID(), b.ID()}, []ID{g.Points()[0].ID(), g.Points()[1].ID()})
	assert.Equal(t, []ID{l.ID()}, a.Children())

	got, ok := g.ByName("L1")
	require.True(t, ok)
	assert.Equal(t, l.ID(), got.ID())

	dup := NewFreePoint(g, geom.V3(0, 0, 1))
	dup.SetIdentity(dup.ID(), "P1")
	assert.ErrorIs(t, g.Add(dup), ErrDuplicateName)

	again := NewFreePoint(g, geom.V3(0, 0, 1))
	again.SetIdentity(a.ID(), "Q")
	assert.ErrorIs(t, g.Add(again), ErrDuplicateID)
}

func TestRemoveAndLinkErrors(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 1, 0, 0)
	b := freePoint(t, g, 0, 1, 0)
	l := line(t, g, a, b)

	assert.ErrorIs(t, g.Remove(a.ID()), ErrHasChildren)
	assert.ErrorIs(t, g.Link(l.ID(), a.ID()), ErrCycle)
	assert.ErrorIs(t, g.Link(a.ID(), a.ID()), ErrCycle)
	assert.ErrorIs(t, g.Remove(ID(999)), ErrNotFound)

	require.NoError(t, g.Remove(l.ID()))
	assert.Empty(t, a.Children())
	require.NoError(t, g.Remove(a.ID()))
	_, ok := g.ByName("P1")
	assert.False(t, ok)
}

func TestMovePointPropagatesToDescendantsOnly(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 0, 1, 0)
	b := freePoint(t, g, 1, 1, 0)
	c := freePoint(t, g, 0, 0, 1)
	d := freePoint(t, g, 1, 0, 1)
	e := freePoint(t, g, 0.2, 0.3, 0.9)
	f := freePoint(t, g, -0.4, 0.1, 0.9)

	l1 := line(t, g, a, b)
	l2 := line(t, g, c, d)
	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(l2, nil))
	ips := g.IntersectionPoints()
	require.Len(t, ips, 2)

	anti := mustAdd(t, g, NewAntipodalPoint(g, e))
	circle := mustAdd(t, g, NewCircle(g, e, f))

	counts := map[ID]int{}
	g.AddObserver(func(obj Object, mode UpdateMode) {
		assert.Equal(t, UpdateDrag, mode)
		counts[obj.ID()]++
	})

	require.NoError(t, g.MovePoint(a.ID(), geom.V3(0, 1, 0.5)))

	assert.Equal(t, 1, counts[a.ID()])
	assert.Equal(t, 1, counts[l1.ID()])
	for _, ip := range ips {
		assert.Equal(t, 1, counts[ip.ID()], ip.Name())
		assert.True(t, l1.Shape().Contains(ip.Location()))
		assert.True(t, l2.Shape().Contains(ip.Location()))
	}
	for _, o := range []Object{b, c, d, e, f, l2, anti, circle} {
		assert.Zero(t, counts[o.ID()], o.Name())
	}
	assert.Len(t, counts, 4)
}

func TestMovePointRejectsDerivedPoints(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 1, 0, 0)
	anti := mustAdd(t, g, NewAntipodalPoint(g, a))

	assert.ErrorIs(t, g.MovePoint(anti.ID(), geom.V3(0, 1, 0)), ErrNotMovable)
	assert.ErrorIs(t, g.MovePoint(ID(42), geom.V3(0, 1, 0)), ErrNotFound)

	require.NoError(t, g.MovePoint(a.ID(), geom.V3(0, 2, 0)))
	assert.True(t, anti.Location().ApproxEqual(geom.V3(0, -1, 0), 1e-12))
}

func TestPointOnObjectFollowsCurve(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 1, 0, 0)
	b := freePoint(t, g, 0, 1, 0)
	l := line(t, g, a, b)
	p := mustAdd(t, g, NewPointOnObject(g, l, geom.V3(1, 1, 0.3)))
	assert.True(t, l.Shape().Contains(p.Location()))

	require.NoError(t, g.MovePoint(b.ID(), geom.V3(0, 0, 1)))
	assert.True(t, l.Shape().Contains(p.Location()))

	require.NoError(t, g.MovePoint(p.ID(), geom.V3(0.5, 0.1, 0.5)))
	assert.True(t, l.Shape().Contains(p.Location()))
}

func TestRotateSphereAndRestore(t *testing.T) {
	g := NewSceneGraph()
	a := freePoint(t, g, 0, 1, 0)
	b := freePoint(t, g, 1, 1, 0)
	c := freePoint(t, g, 0, 0, 1)
	d := freePoint(t, g, 1, 0, 1)
	l1 := line(t, g, a, b)
	l2 := line(t, g, c, d)
	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(l2, nil))
	ip := g.IntersectionPoints()[0]

	before := g.CaptureAll()
	was := ip.Location()

	m := geom.RotateAxis(geom.V3(1, 2, 3), 0.7)
	g.RotateSphere(m)

	assert.True(t, a.Location().ApproxEqual(m.Apply(geom.V3(0, 1, 0)), 1e-12))
	assert.True(t, ip.Location().ApproxEqual(m.Apply(was), 1e-9))
	assert.True(t, l1.Shape().Contains(ip.Location()))
	assert.True(t, l2.Shape().Contains(ip.Location()))

	g.Restore(before)
	assert.True(t, a.Location().ApproxEqual(geom.V3(0, 1, 0), 1e-15))
	assert.Equal(t, was, ip.Location())
}

func TestReparentOnConcurrentLines(t *testing.T) {
	g := NewSceneGraph()
	eng := NewIntersectionEngine(g)

	l1 := line(t, g, freePoint(t, g, 0, 1, 0), freePoint(t, g, 1, 1, 0))
	l2 := line(t, g, freePoint(t, g, 0, 0, 1), freePoint(t, g, 1, 0, 1))
	registerEffects(t, g, eng.CreateAllIntersectionsWith(l2, nil))
	ips := g.IntersectionPoints()
	require.Len(t, ips, 2)

	// A third line through ±x meets both earlier lines at the existing points.
	l3 := line(t, g, freePoint(t, g, 1, 1, 1), freePoint(t, g, 1, -1, -1))
	effects := eng.CreateAllIntersectionsWith(l3, nil)
	require.Len(t, effects, 4)
	for _, ef := range effects {
		assert.Equal(t, EffectReparent, ef.Kind)
		assert.True(t, ef.Exists)
		assert.Equal(t, l3.ID(), ef.Pair.Curve2)
	}
	registerEffects(t, g, effects)

	assert.Len(t, g.IntersectionPoints(), 2, "no new points at shared locations")
	for _, ip := range ips {
		assert.Len(t, ip.Pairs(), 3)
		assert.True(t, ip.HasPair(l3.ID(), l1.ID()))
		assert.True(t, ip.HasPair(l2.ID(), l3.ID()))
	}
	assert.Len(t, g.FindIntersectionPointsByParent(l3.Name(), ""), 2)
	assert.Len(t, g.FindIntersectionPointsByParent(l1.Name(), l3.Name()), 2)
	assert.Empty(t, g.FindIntersectionPointsByParent("nope", ""))

	// A line through one intersection point may not become its parent.
	through := ips[0]
	l4 := line(t, g, through, freePoint(t, g, 0.3, 0.5, 0.8))
	effects = eng.CreateAllIntersectionsWith(l4, nil)
	for _, ef := range effects {
		assert.NotEqual(t, through.ID(), ef.Point.ID())
	}
	registerEffects(t, g, effects)
	assert.False(t, g.IsAncestor(l4.ID(), through.ID()))
}

func TestStickyExistence(t *testing.T) {
	g := NewSceneGraph()
	l1 := line(t, g, freePoint(t, g, 0, 1, 0), freePoint(t, g, 1, 1, 0))
	l2 := line(t, g, freePoint(t, g, 0, 0, 1), freePoint(t, g, 1, 0, 1))
	l3 := line(t, g, freePoint(t, g, 0, -1, 1), freePoint(t, g, 0.5, 0.5, 0.5))

	ip := mustAdd(t, g, NewIntersectionPoint(g, l1, l2, 0, geom.V3(1, 0, 0), false))
	assert.False(t, ip.Exists())

	pair := ParentPair{Curve1: l1.ID(), Curve2: l3.ID(), Index: 1}
	require.NoError(t, g.AddOtherParent(ip, pair, true))
	assert.True(t, ip.Exists())
	assert.Contains(t, l3.Children(), ip.ID())

	other := ParentPair{Curve1: l2.ID(), Curve2: l3.ID(), Index: 0}
	require.NoError(t, g.AddOtherParent(ip, other, false))
	assert.True(t, ip.Exists(), "a non-existing pair never clears existence")

	g.RemoveOtherParent(ip, other, true)
	g.RemoveOtherParent(ip, pair, false)
	assert.False(t, ip.Exists())
	assert.NotContains(t, l3.Children(), ip.ID())
	assert.Contains(t, l1.Children(), ip.ID(), "primary parents stay linked")
}

func TestTransformations(t *testing.T) {
	g := NewSceneGraph()
	eq := line(t, g, freePoint(t, g, 1, 0, 0), freePoint(t, g, 0, 1, 0))
	refl := mustAdd(t, g, NewReflection(g, eq))
	p := freePoint(t, g, 0.3, 0, 1)
	img := mustAdd(t, g, NewTransformedPoint(g, p, refl))

	want := p.Location()
	want.Z = -want.Z
	assert.True(t, img.Location().ApproxEqual(want, 1e-12))

	center := freePoint(t, g, 0, 0, 1)
	rot := mustAdd(t, g, NewRotation(g, center, math.Pi/2))
	q := freePoint(t, g, 1, 0, 0)
	turned := mustAdd(t, g, NewTransformedPoint(g, q, rot))
	assert.True(t, turned.Location().ApproxEqual(geom.V3(0, 1, 0), 1e-12))

	require.NoError(t, g.MovePoint(q.ID(), geom.V3(0, 1, 0)))
	assert.True(t, turned.Location().ApproxEqual(geom.V3(-1, 0, 0), 1e-12))
}

func TestDerivedObjects(t *testing.T) {
	g := NewSceneGraph()
	x := freePoint(t, g, 1, 0, 0)
	y := freePoint(t, g, 0, 1, 0)
	z := freePoint(t, g, 0, 0, 1)
	hint := geom.V3(0, 0, 1)
	s1 := mustAdd(t, g, NewSegment(g, x, y, hint, false))
	s2 := mustAdd(t, g, NewSegment(g, y, z, hint, false))
	s3 := mustAdd(t, g, NewSegment(g, z, x, hint, false))

	pg := mustAdd(t, g, NewPolygon(g, []*Segment{s1, s2, s3}, []bool{false, false, false}))
	assert.True(t, pg.Exists())
	assert.InDelta(t, math.Pi/2, pg.Area(), 1e-12, "octant")

	am := mustAdd(t, g, NewAngleMarker(g, x, z, y))
	assert.InDelta(t, math.Pi/2, am.Value(), 1e-12)

	lb := mustAdd(t, g, NewLabel(g, x))
	assert.Equal(t, "P1", lb.Text)
	assert.Equal(t, x.ID(), lb.Parent())

	c := mustAdd(t, g, NewCircle(g, z, x))
	assert.InDelta(t, math.Pi/2, c.Geometry().Radius, 1e-12)

	degenerate := mustAdd(t, g, NewCircle(g, z, z))
	assert.False(t, degenerate.Exists())
}

func TestParametricRotatesWithSphere(t *testing.T) {
	g := NewSceneGraph()
	pc, err := NewParametric(g, Expressions{X: "cos(t)", Y: "sin(t)", Z: "0", TMin: 0, TMax: 2 * math.Pi, Closed: true})
	require.NoError(t, err)
	mustAdd(t, g, pc)
	assert.True(t, pc.Exists())

	start, _ := pc.Endpoints()
	assert.True(t, start.ApproxEqual(geom.V3(1, 0, 0), 1e-12))

	m := geom.RotateAxis(geom.V3(0, 1, 0), math.Pi/2)
	g.RotateSphere(m)
	start, _ = pc.Endpoints()
	assert.True(t, start.ApproxEqual(m.Apply(geom.V3(1, 0, 0)), 1e-12))

	bad, err := NewParametric(g, Expressions{X: "cos(", Y: "0", Z: "1", TMin: 0, TMax: 1})
	assert.Error(t, err)
	assert.False(t, bad.Exists())
}

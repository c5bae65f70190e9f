package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/easel/internal/geom"
)

// ellipseAtPole adds the ellipse with foci at angle 0.3 either side of the
// north pole along x and semi-major axis 0.6.
func ellipseAtPole(t *testing.T, g *SceneGraph) *Ellipse {
	t.Helper()
	f1 := freePoint(t, g, math.Sin(0.3), 0, math.Cos(0.3))
	f2 := freePoint(t, g, -math.Sin(0.3), 0, math.Cos(0.3))
	vertex := freePoint(t, g, math.Sin(0.6), 0, math.Cos(0.6))
	el := mustAdd(t, g, NewEllipse(g, f1, f2, vertex))
	require.True(t, el.Exists())
	return el
}

func tilted(b float64) geom.Vector3 { return geom.V3(0, math.Sin(b), math.Cos(b)) }

func TestNumericSlotsFollowTheirCrossing(t *testing.T) {
	g := NewSceneGraph()
	el := ellipseAtPole(t, g)
	pivot := freePoint(t, g, 0, math.Sin(0.15), math.Cos(0.15))
	l := line(t, g, freePoint(t, g, 1, 0, 0), pivot)

	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(el, nil))
	ips := g.IntersectionPoints()
	require.Len(t, ips, 2)

	var right, left *IntersectionPoint
	for _, ip := range ips {
		require.True(t, ip.Exists())
		assert.Equal(t, l.ID(), ip.Primary().Curve1)
		if ip.Location().X > 0 {
			right = ip
		} else {
			left = ip
		}
	}
	require.NotNil(t, right)
	require.NotNil(t, left)

	// The line sweeps across the major axis, taking the right crossing past
	// the start of the ellipse's parametrization.
	for i := 15; i >= -15; i-- {
		b := float64(i) / 100
		require.NoError(t, g.MovePoint(pivot.ID(), tilted(b)))
		assert.Greater(t, right.Location().X, 0.0, "tilt %.2f", b)
		assert.Less(t, left.Location().X, 0.0, "tilt %.2f", b)
	}
	assert.True(t, right.Exists())
	assert.True(t, left.Exists())
	assert.Less(t, right.Location().Y, 0.0)
	assert.InDelta(t, 0, el.Geometry().Value(right.Location()), 1e-9)
	assert.InDelta(t, 0, el.Geometry().Value(left.Location()), 1e-9)
}

func TestNumericSlotsKeepIdentityAsCrossingsComeAndGo(t *testing.T) {
	g := NewSceneGraph()
	el := ellipseAtPole(t, g)
	center := freePoint(t, g, math.Sin(0.5), 0, math.Cos(0.5))
	rim := freePoint(t, g, math.Sin(0.62), 0, math.Cos(0.62))
	c := mustAdd(t, g, NewCircle(g, center, rim))
	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(c, nil))
	ips := g.FindIntersectionPointsByParent(el.Name(), c.Name())
	require.Len(t, ips, 4)

	type seen struct {
		at     geom.Vector3
		exists bool
	}
	last := make([]seen, len(ips))
	for i, ip := range ips {
		last[i] = seen{ip.Location(), ip.Exists()}
	}
	for r := 0.125; r < 0.9; r += 0.005 {
		require.NoError(t, g.MovePoint(rim.ID(), geom.V3(math.Sin(0.5+r), 0, math.Cos(0.5+r))))
		for i, ip := range ips {
			if last[i].exists && ip.Exists() {
				assert.Less(t, ip.Location().Angle(last[i].at), 0.15, "%s at radius %.3f", ip.Name(), r)
			}
			last[i] = seen{ip.Location(), ip.Exists()}
		}
	}
}

func TestPropagationIsIdempotent(t *testing.T) {
	g := NewSceneGraph()
	el := ellipseAtPole(t, g)
	eng := NewIntersectionEngine(g)
	l := line(t, g, freePoint(t, g, 1, 0, 0), freePoint(t, g, 0, math.Sin(0.1), math.Cos(0.1)))
	registerEffects(t, g, eng.CreateAllIntersectionsWith(l, nil))
	c := mustAdd(t, g, NewCircle(g, freePoint(t, g, 0.2, 0.1, 1), freePoint(t, g, 0.9, 0.1, 1)))
	registerEffects(t, g, eng.CreateAllIntersectionsWith(c, nil))
	require.NotEmpty(t, g.FindIntersectionPointsByParent(c.Name(), el.Name()))

	g.UpdateAll()
	first := g.CaptureAll()
	g.UpdateAll()
	assert.Equal(t, first, g.CaptureAll())

	g.Update(el.ID())
	assert.Equal(t, first, g.CaptureAll())
}

func TestCircleEllipseIntersections(t *testing.T) {
	g := NewSceneGraph()
	el := ellipseAtPole(t, g)
	c := mustAdd(t, g, NewCircle(g, freePoint(t, g, 0, 0, 1), freePoint(t, g, math.Sin(0.55), 0, math.Cos(0.55))))
	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(c, nil))

	ips := g.FindIntersectionPointsByParent(el.Name(), c.Name())
	require.Len(t, ips, 4)
	for _, ip := range ips {
		require.True(t, ip.Exists(), ip.Name())
		v := ip.Location()
		assert.True(t, v.IsUnit(1e-12))
		assert.InDelta(t, 0, el.Geometry().Value(v), 1e-9)
		assert.InDelta(t, 0.55, v.Angle(geom.V3(0, 0, 1)), 1e-9)
	}
}

func TestEmptySlotsHoldUnitPlaceholders(t *testing.T) {
	g := NewSceneGraph()
	el := ellipseAtPole(t, g)
	far := line(t, g, freePoint(t, g, 1, 0, 0), freePoint(t, g, 0, 1, 0))
	registerEffects(t, g, NewIntersectionEngine(g).CreateAllIntersectionsWith(far, nil))

	ips := g.FindIntersectionPointsByParent(el.Name(), far.Name())
	require.Len(t, ips, 2)
	for _, ip := range ips {
		assert.False(t, ip.Exists())
		assert.True(t, ip.Location().IsUnit(1e-12), ip.Name())
	}
}

package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, 1e-7), "want %+v, got %+v", want, got)
}

func TestVectorBasics(t *testing.T) {
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)

	assertVec(t, z, x.Cross(y))
	assert.InDelta(t, math.Pi/2, x.Angle(y), tol)
	assert.InDelta(t, math.Pi, x.Angle(x.Negate()), tol)
	assert.InDelta(t, 0, x.Angle(x), tol)
	assert.True(t, V3(3, 4, 0).Normalize().IsUnit(tol))
	assert.Equal(t, Vector3{}, Vector3{}.Normalize())

	for _, v := range []Vector3{x, y, z, V3(1, 2, 3).Normalize()} {
		p := v.Perpendicular()
		assert.InDelta(t, 0, p.Dot(v), tol)
		assert.True(t, p.IsUnit(tol))
	}
}

func TestMatrices(t *testing.T) {
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)

	r := RotateAxis(z, math.Pi/2)
	assertVec(t, y, r.Apply(x))
	assert.True(t, r.Multiply(r.Transpose()).IsIdentity(tol))

	assertVec(t, x, RotateBetween(y, x).Apply(y))
	assertVec(t, x.Negate(), RotateBetween(x, x.Negate()).Apply(x))
	assert.True(t, RotateBetween(z, z).IsIdentity(tol))

	m := Reflect(z)
	assertVec(t, z.Negate(), m.Apply(z))
	assertVec(t, x, m.Apply(x))

	assert.Len(t, Identity().ToSlice(), 9)
}

func TestSegmentBetween(t *testing.T) {
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)

	short := SegmentBetween(x, y, z, false)
	assert.InDelta(t, math.Pi/2, short.ArcLength, tol)
	assertVec(t, y, short.End())
	assert.True(t, short.Contains(V3(1, 1, 0).Normalize()))
	assert.False(t, short.Contains(V3(-1, -1, 0).Normalize()))

	long := SegmentBetween(x, y, z, true)
	assert.InDelta(t, 3*math.Pi/2, long.ArcLength, tol)
	assertVec(t, y, long.End())
	assert.True(t, long.Contains(V3(-1, -1, 0).Normalize()))
	assert.False(t, long.Contains(V3(1, 1, 0).Normalize()))

	// Antipodal endpoints fall back to the hint for the supporting circle.
	half := SegmentBetween(x, x.Negate(), z, false)
	assert.InDelta(t, math.Pi, half.ArcLength, tol)
	assert.InDelta(t, 0, half.Normal.Dot(x), tol)
	assertVec(t, x.Negate(), half.End())

	assertVec(t, x, short.ClosestPoint(V3(1, -1, 0).Normalize()))
}

func TestCircle(t *testing.T) {
	c := Circle{Center: V3(0, 0, 1), Radius: math.Pi / 3}
	for _, p := range Sample(c, 12) {
		assert.True(t, c.Contains(p))
		assert.True(t, p.IsUnit(tol))
	}
	assert.True(t, c.Contains(c.ClosestPoint(V3(1, 1, 0.2).Normalize())))
	assert.False(t, c.Degenerate())
	assert.True(t, Circle{Center: V3(0, 0, 1), Radius: 0}.Degenerate())
	assert.True(t, Circle{Center: V3(0, 0, 1), Radius: math.Pi}.Degenerate())
}

func TestEllipse(t *testing.T) {
	f1 := V3(math.Sin(0.3), 0, math.Cos(0.3))
	f2 := V3(-math.Sin(0.3), 0, math.Cos(0.3))

	for _, a := range []float64{0.5, 1.2, math.Pi - 0.6} {
		e := Ellipse{Focus1: f1, Focus2: f2, A: a}
		require.False(t, e.Degenerate(), "a=%g", a)
		for _, p := range Sample(e, 24) {
			assert.InDelta(t, 0, e.Value(p), 1e-9, "a=%g", a)
		}
	}

	assert.True(t, Ellipse{Focus1: f1, Focus2: f2, A: 0.3}.Degenerate(), "point between the foci")
	assert.True(t, Ellipse{Focus1: f1, Focus2: f2, A: math.Pi / 2}.Degenerate())
	assert.True(t, Ellipse{Focus1: f1, Focus2: f1, A: 1}.Degenerate())

	e := Ellipse{Focus1: f1, Focus2: f2, A: 0.8}
	assertVec(t, V3(0, 0, 1), e.Center())
	assert.Less(t, e.SemiMinor(), 0.8)
	assert.InDelta(t, 0, e.Value(e.ClosestPoint(V3(0.3, 0.8, 0.5).Normalize())), 1e-9)
}

func TestLine(t *testing.T) {
	l := Line{Normal: V3(0, 0, 1)}
	for _, p := range Sample(l, 8) {
		assert.True(t, l.Contains(p))
	}
	assertVec(t, V3(1, 0, 0), l.ClosestPoint(V3(1, 0, 1).Normalize()))
}

func TestParametric(t *testing.T) {
	p := Parametric{
		Eval: func(t float64) Vector3 { return V3(2*math.Cos(t), 2*math.Sin(t), 0) },
		TMin: 0,
		TMax: 2 * math.Pi,
	}
	assertVec(t, V3(1, 0, 0), p.Point(0))
	assert.True(t, p.Contains(V3(0, 1, 0)))
	assert.False(t, p.Contains(V3(0, 0, 1)))
	assert.Equal(t, Vector3{}, Parametric{}.Point(1))
}

func TestRoots(t *testing.T) {
	roots := Roots(math.Sin, 0.5, 7, 100)
	require.Len(t, roots, 2)
	assert.InDelta(t, math.Pi, roots[0], 1e-10)
	assert.InDelta(t, 2*math.Pi, roots[1], 1e-10)

	assert.Empty(t, Roots(func(float64) float64 { return 1 }, 0, 1, 10))

	m := GoldenMin(func(x float64) float64 { return (x - 0.25) * (x - 0.25) }, 0, 1, 1e-10)
	assert.InDelta(t, 0.25, m, 1e-8)
}

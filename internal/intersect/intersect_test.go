package intersect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/easel/internal/geom"
)

var (
	xAxis = geom.V3(1, 0, 0)
	yAxis = geom.V3(0, 1, 0)
	zAxis = geom.V3(0, 0, 1)
)

func existing(cs []Candidate) []geom.Vector3 {
	var out []geom.Vector3
	for _, c := range cs {
		if c.Exists {
			out = append(out, c.Vector)
		}
	}
	return out
}

func TestCounts(t *testing.T) {
	cases := []struct {
		a, b geom.Kind
		want int
	}{
		{geom.KindLine, geom.KindLine, 2},
		{geom.KindLine, geom.KindSegment, 2},
		{geom.KindSegment, geom.KindSegment, 2},
		{geom.KindLine, geom.KindCircle, 2},
		{geom.KindSegment, geom.KindCircle, 2},
		{geom.KindCircle, geom.KindCircle, 2},
		{geom.KindLine, geom.KindEllipse, 2},
		{geom.KindSegment, geom.KindEllipse, 2},
		{geom.KindCircle, geom.KindEllipse, 4},
		{geom.KindEllipse, geom.KindEllipse, 4},
		{geom.KindLine, geom.KindParametric, MaxParametricCandidates},
		{geom.KindEllipse, geom.KindParametric, MaxParametricCandidates},
		{geom.KindParametric, geom.KindParametric, MaxParametricCandidates},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Count(tc.a, tc.b), "%s", PairOf(tc.a, tc.b))
		assert.Equal(t, tc.want, Count(tc.b, tc.a), "%s reversed", PairOf(tc.a, tc.b))
	}

	for _, a := range geom.Kinds {
		for _, b := range geom.Kinds {
			assert.True(t, Supported(a, b), "%s", PairOf(a, b))
		}
	}
	assert.Equal(t, "line-circle", PairOf(geom.KindCircle, geom.KindLine).String())
}

func TestLineLineAntipodalPair(t *testing.T) {
	l1 := geom.Line{Normal: xAxis.Cross(yAxis)}
	l2 := geom.Line{Normal: xAxis.Cross(zAxis).Normalize()}

	cs := Intersect(l1, l2)
	require.Len(t, cs, 2)
	require.True(t, cs[0].Exists)
	require.True(t, cs[1].Exists)
	assert.True(t, cs[0].Vector.ApproxEqual(cs[1].Vector.Negate(), 1e-12))
	assert.InDelta(t, 1, math.Abs(cs[0].Vector.X), 1e-12)
}

func TestParallelLinesDoNotExist(t *testing.T) {
	cs := Intersect(geom.Line{Normal: zAxis}, geom.Line{Normal: zAxis.Negate()})
	require.Len(t, cs, 2)
	assert.Empty(t, existing(cs))
}

func TestSegmentRestrictsCandidates(t *testing.T) {
	seg := geom.SegmentBetween(geom.V3(1, 1, 0).Normalize(), geom.V3(-1, 1, 0).Normalize(), zAxis, false)
	line := geom.Line{Normal: xAxis}

	cs := Intersect(line, seg)
	require.Len(t, cs, 2)
	hits := existing(cs)
	require.Len(t, hits, 1)
	assert.True(t, hits[0].ApproxEqual(yAxis, 1e-9))

	assert.Equal(t, cs, Intersect(seg, line), "argument order of different kinds does not matter")
}

func TestTangentCircleDoesNotExist(t *testing.T) {
	c := geom.Circle{Center: zAxis, Radius: math.Pi / 4}
	n := geom.V3(math.Sin(math.Pi/4), 0, math.Cos(math.Pi/4))

	cs := Intersect(geom.Line{Normal: n}, c)
	require.Len(t, cs, 2)
	assert.Empty(t, existing(cs))
}

func TestCircleCircle(t *testing.T) {
	a := geom.Circle{Center: zAxis, Radius: math.Pi / 3}
	b := geom.Circle{Center: xAxis, Radius: math.Pi / 3}

	hits := existing(Intersect(a, b))
	require.Len(t, hits, 2)
	for _, p := range hits {
		assert.True(t, a.Contains(p))
		assert.True(t, b.Contains(p))
	}

	assert.Empty(t, existing(Intersect(a, geom.Circle{Center: zAxis.Negate(), Radius: 0.1})))
	assert.Empty(t, existing(Intersect(a, geom.Circle{Center: xAxis, Radius: 0})), "degenerate circle")
}

func ellipseAboutZ() geom.Ellipse {
	return geom.Ellipse{
		Focus1: geom.V3(math.Sin(0.3), 0, math.Cos(0.3)),
		Focus2: geom.V3(-math.Sin(0.3), 0, math.Cos(0.3)),
		A:      0.8,
	}
}

func TestLineEllipse(t *testing.T) {
	e := ellipseAboutZ()
	line := geom.Line{Normal: xAxis}

	cs := Intersect(line, e)
	require.Len(t, cs, 2)
	hits := existing(cs)
	require.Len(t, hits, 2)
	for _, p := range hits {
		assert.InDelta(t, 0, p.Dot(xAxis), 1e-9)
		assert.InDelta(t, 0, e.Value(p), 1e-9)
	}

	far := geom.Line{Normal: zAxis}
	assert.Empty(t, existing(Intersect(far, e)))
}

func TestCircleEllipseFourPoints(t *testing.T) {
	e := ellipseAboutZ()
	c := geom.Circle{Center: zAxis, Radius: 0.775}

	cs := Intersect(c, e)
	require.Len(t, cs, 4)
	hits := existing(cs)
	require.Len(t, hits, 4)
	for _, p := range hits {
		assert.InDelta(t, math.Cos(0.775), p.Dot(zAxis), 1e-9)
		assert.InDelta(t, 0, e.Value(p), 1e-9)
	}
}

func TestSameEllipseHasNoCandidates(t *testing.T) {
	e := ellipseAboutZ()
	swapped := geom.Ellipse{Focus1: e.Focus2, Focus2: e.Focus1, A: e.A}
	cs := Intersect(e, swapped)
	require.Len(t, cs, 4)
	assert.Empty(t, existing(cs))
}

func latitude(z float64) geom.Parametric {
	return geom.Parametric{
		Eval: func(t float64) geom.Vector3 { return geom.V3(math.Cos(t), math.Sin(t), z) },
		TMin: 0,
		TMax: 2 * math.Pi,
	}
}

func TestLineParametric(t *testing.T) {
	p := latitude(0.3)
	cs := Intersect(p, geom.Line{Normal: geom.V3(1, 0.2, 0).Normalize()})
	require.Len(t, cs, MaxParametricCandidates)

	hits := existing(cs)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.InDelta(t, 0, h.Dot(geom.V3(1, 0.2, 0).Normalize()), 1e-9)
	}
	for _, c := range cs[2:] {
		assert.False(t, c.Exists)
		assert.Equal(t, geom.Vector3{}, c.Vector)
	}
}

func TestParametricParametric(t *testing.T) {
	n := geom.V3(1, 0.3, 0.2).Normalize()
	u := n.Perpendicular()
	w := n.Cross(u)
	tilted := geom.Parametric{
		Eval: func(s float64) geom.Vector3 { return u.Mul(math.Cos(s + 0.37)).Add(w.Mul(math.Sin(s + 0.37))) },
		TMin: 0,
		TMax: 2 * math.Pi,
	}

	cs := Intersect(latitude(0), tilted)
	require.Len(t, cs, MaxParametricCandidates)
	hits := existing(cs)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.InDelta(t, 0, h.Z, 1e-7)
		assert.InDelta(t, 0, h.Dot(n), 1e-7)
	}
	assert.True(t, hits[0].ApproxEqual(hits[1].Negate(), 1e-6))
}

func TestTrackKeepsSlotsOnTheirCrossing(t *testing.T) {
	a, b, c := geom.V3(1, 0, 0), geom.V3(0, 1, 0), geom.V3(0, 0, 1)
	near := func(v geom.Vector3) Candidate {
		return Candidate{Vector: v.Add(geom.V3(0.01, 0.01, 0.01)).Normalize(), Exists: true}
	}
	prev := []Candidate{{Vector: a, Exists: true}, {Vector: b, Exists: true}, {}, {}}
	next := []Candidate{near(b), {Vector: c, Exists: true}, near(a), {}}

	out := Track(prev, next)
	require.Len(t, out, 4)
	assert.Equal(t, next[2], out[0])
	assert.Equal(t, next[0], out[1])
	assert.Equal(t, next[1], out[2])
	assert.Equal(t, Candidate{}, out[3])
}

func TestTrackFreesSlotsThatLoseTheirCrossing(t *testing.T) {
	a, b := geom.V3(1, 0, 0), geom.V3(0, 1, 0)
	prev := []Candidate{{Vector: a, Exists: true}, {Vector: b, Exists: true}}
	next := []Candidate{{Vector: b, Exists: true}, {}}

	out := Track(prev, next)
	assert.Equal(t, Candidate{}, out[0])
	assert.Equal(t, next[0], out[1])
}

func TestTracked(t *testing.T) {
	assert.True(t, Tracked(geom.KindLine, geom.KindEllipse))
	assert.True(t, Tracked(geom.KindParametric, geom.KindCircle))
	assert.False(t, Tracked(geom.KindLine, geom.KindCircle))
	assert.False(t, Tracked(geom.KindSegment, geom.KindSegment))
}

// Package intersect computes candidate intersection points between pairs of
// curves on the unit sphere. Every function returns a fixed number of
// candidates for its pair of kinds so that callers can track a particular
// intersection by its position in the result across recomputation.
package intersect

import (
	"fmt"

	"github.com/inamate/easel/internal/geom"
)

// MaxParametricCandidates is the number of candidate slots returned for any
// pair that involves a parametric curve.
const MaxParametricCandidates = 8

// Candidate is one positional intersection result. Vector is the zero vector
// when the slot is empty.
type Candidate struct {
	Vector geom.Vector3 `json:"vector"`
	Exists bool         `json:"exists"`
}

// Pair is an unordered pair of curve kinds stored with A <= B.
type Pair struct {
	A, B geom.Kind
}

// PairOf normalizes two kinds to canonical order.
func PairOf(a, b geom.Kind) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s-%s", p.A, p.B)
}

// Func computes the candidates for two curves whose kinds are in canonical
// order.
type Func func(a, b geom.Curve) []Candidate

type entry struct {
	count int
	fn    Func
}

var table = map[Pair]entry{
	{geom.KindLine, geom.KindLine}:             {2, lineLine},
	{geom.KindLine, geom.KindSegment}:          {2, lineSegment},
	{geom.KindLine, geom.KindCircle}:           {2, lineCircle},
	{geom.KindLine, geom.KindEllipse}:          {2, lineEllipse},
	{geom.KindLine, geom.KindParametric}:       {MaxParametricCandidates, withParametric},
	{geom.KindSegment, geom.KindSegment}:       {2, segmentSegment},
	{geom.KindSegment, geom.KindCircle}:        {2, segmentCircle},
	{geom.KindSegment, geom.KindEllipse}:       {2, segmentEllipse},
	{geom.KindSegment, geom.KindParametric}:    {MaxParametricCandidates, withParametric},
	{geom.KindCircle, geom.KindCircle}:         {2, circleCircle},
	{geom.KindCircle, geom.KindEllipse}:        {4, circleEllipse},
	{geom.KindCircle, geom.KindParametric}:     {MaxParametricCandidates, withParametric},
	{geom.KindEllipse, geom.KindEllipse}:       {4, ellipseEllipse},
	{geom.KindEllipse, geom.KindParametric}:    {MaxParametricCandidates, withParametric},
	{geom.KindParametric, geom.KindParametric}: {MaxParametricCandidates, parametricParametric},
}

// Count returns the number of candidates produced for a pair of kinds.
func Count(a, b geom.Kind) int {
	return table[PairOf(a, b)].count
}

// Supported reports whether the pair of kinds has an intersection function.
func Supported(a, b geom.Kind) bool {
	_, ok := table[PairOf(a, b)]
	return ok
}

// Intersect returns the candidates for curves a and b. When a's kind comes
// after b's in canonical order the arguments are swapped before dispatch, so
// Intersect(a, b) and Intersect(b, a) agree for curves of different kinds.
// For curves of the same kind the argument order determines slot order.
func Intersect(a, b geom.Curve) []Candidate {
	if a.Kind() > b.Kind() {
		a, b = b, a
	}
	e, ok := table[Pair{a.Kind(), b.Kind()}]
	if !ok {
		return nil
	}
	out := e.fn(a, b)
	if len(out) != e.count {
		// every function fills its slots; this only guards the table
		out = fill(out, e.count)
	}
	return out
}

// fill pads or truncates candidates to exactly n slots.
func fill(cs []Candidate, n int) []Candidate {
	out := make([]Candidate, n)
	copy(out, cs)
	return out
}

// place assigns points to slots in order, keeping up to n of them; keep
// decides the existence of each placed point.
func place(points []geom.Vector3, n int, keep func(geom.Vector3) bool) []Candidate {
	out := make([]Candidate, n)
	for i, p := range points {
		if i >= n {
			break
		}
		out[i] = Candidate{Vector: p, Exists: keep == nil || keep(p)}
	}
	return out
}

func none(n int) []Candidate {
	return make([]Candidate, n)
}

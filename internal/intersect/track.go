package intersect

import (
	"sort"

	"github.com/inamate/easel/internal/geom"
)

// Tracked reports whether slots for the pair of kinds come from a numeric
// root search, whose result order is not tied to the geometry. Closed form
// pairs keep their slots without help.
func Tracked(a, b geom.Kind) bool {
	for _, k := range []geom.Kind{a, b} {
		if k == geom.KindEllipse || k == geom.KindParametric {
			return true
		}
	}
	return false
}

// Track reorders next so that each slot holding an existing candidate in
// prev keeps the nearest filled candidate of next. Filled candidates left
// over go to the remaining slots in index order. The result has len(next)
// slots.
func Track(prev, next []Candidate) []Candidate {
	n := len(next)
	out := make([]Candidate, n)
	taken := make([]bool, n)
	used := make([]bool, n)

	type match struct {
		slot, cand int
		dist       float64
	}
	var ms []match
	for i, p := range prev {
		if i >= n || !p.Exists || p.Vector.IsZero(geom.Epsilon) {
			continue
		}
		for j, c := range next {
			if c.Vector.IsZero(geom.Epsilon) {
				continue
			}
			ms = append(ms, match{slot: i, cand: j, dist: p.Vector.Angle(c.Vector)})
		}
	}
	sort.SliceStable(ms, func(a, b int) bool { return ms[a].dist < ms[b].dist })
	for _, m := range ms {
		if taken[m.slot] || used[m.cand] {
			continue
		}
		out[m.slot] = next[m.cand]
		taken[m.slot], used[m.cand] = true, true
	}

	slot := 0
	for j, c := range next {
		if used[j] || c.Vector.IsZero(geom.Epsilon) {
			continue
		}
		for taken[slot] {
			slot++
		}
		out[slot] = c
		taken[slot] = true
	}
	return out
}

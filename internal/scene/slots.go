package scene

import "github.com/inamate/easel/internal/intersect"

type pairKey struct {
	c1, c2 ID
}

// slots returns the candidates of c1 and c2. Candidates found by a numeric
// search are matched against the points that already follow the pair, so a
// point stays on its crossing while the curves move. During a sweep every
// point of a pair sees the same layout.
func (g *SceneGraph) slots(c1, c2 Curve) []intersect.Candidate {
	a, b := c1.Shape(), c2.Shape()
	if !intersect.Tracked(a.Kind(), b.Kind()) {
		return intersect.Intersect(a, b)
	}
	key := pairKey{c1: c1.ID(), c2: c2.ID()}
	if cs, ok := g.layouts[key]; ok {
		return cs
	}
	fresh := intersect.Intersect(a, b)
	cs := intersect.Track(g.followers(key, len(fresh)), fresh)
	if g.layouts != nil {
		g.layouts[key] = cs
	}
	return cs
}

// followers returns the last known location of every slot of the pair, as
// held by the intersection points that follow it.
func (g *SceneGraph) followers(key pairKey, n int) []intersect.Candidate {
	prev := make([]intersect.Candidate, n)
	c1, ok := g.objects[key.c1]
	if !ok {
		return prev
	}
	for _, id := range c1.base().children {
		ip, ok := g.objects[id].(*IntersectionPoint)
		if !ok {
			continue
		}
		for _, pp := range ip.Pairs() {
			if pp.Curve1 == key.c1 && pp.Curve2 == key.c2 && pp.Index >= 0 && pp.Index < n {
				prev[pp.Index] = intersect.Candidate{Vector: ip.location, Exists: ip.exists}
			}
		}
	}
	return prev
}

package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/inamate/easel/internal/intersect"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrDuplicateID   = errors.New("duplicate object id")
	ErrDuplicateName = errors.New("duplicate object name")
	ErrCycle         = errors.New("dependency cycle")
	ErrHasChildren   = errors.New("object still has children")
	ErrNotMovable    = errors.New("object is not independently movable")
)

// SceneGraph owns every live object. Objects are kept in one arena keyed by
// id; parent and child links are ids. Per-kind collections and the flat
// collection are ordered by id.
type SceneGraph struct {
	objects map[ID]Object
	names   map[string]ID
	all     []ID
	byKind  map[Kind][]ID

	nextID   ID
	counters map[string]int

	observers []Observer
	logger    *slog.Logger

	// layouts memoizes tracked candidate slots for the sweep in progress.
	layouts map[pairKey][]intersect.Candidate
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		objects:  make(map[ID]Object),
		names:    make(map[string]ID),
		byKind:   make(map[Kind][]ID),
		nextID:   1,
		counters: make(map[string]int),
		logger:   slog.Default(),
	}
}

// SetLogger replaces the logger used for diagnostics.
func (g *SceneGraph) SetLogger(l *slog.Logger) { g.logger = l }

// NewID allocates a fresh object id.
func (g *SceneGraph) NewID() ID {
	id := g.nextID
	g.nextID++
	return id
}

// Reserve makes sure future ids are greater than id.
func (g *SceneGraph) Reserve(id ID) {
	if id >= g.nextID {
		g.nextID = id + 1
	}
}

// NextName returns the next unused name with the given prefix.
func (g *SceneGraph) NextName(prefix string) string {
	for {
		g.counters[prefix]++
		name := prefix + strconv.Itoa(g.counters[prefix])
		if _, taken := g.names[name]; !taken {
			return name
		}
	}
}

// AddObserver registers fn to be called after every recompute.
func (g *SceneGraph) AddObserver(fn Observer) {
	g.observers = append(g.observers, fn)
}

func (g *SceneGraph) notify(obj Object, mode UpdateMode) {
	for _, fn := range g.observers {
		fn(obj, mode)
	}
}

// Add registers obj and links it as a child of each of its parents. Every
// parent must already be registered.
func (g *SceneGraph) Add(obj Object) error {
	b := obj.base()
	if _, ok := g.objects[b.id]; ok {
		return fmt.Errorf("add %s: %w", b.name, ErrDuplicateID)
	}
	if _, ok := g.names[b.name]; ok {
		return fmt.Errorf("add %s: %w", b.name, ErrDuplicateName)
	}
	for _, pid := range b.parents {
		if _, ok := g.objects[pid]; !ok {
			return fmt.Errorf("add %s: parent %d: %w", b.name, pid, ErrNotFound)
		}
	}
	g.objects[b.id] = obj
	g.names[b.name] = b.id
	g.all = insertSorted(g.all, b.id)
	g.byKind[obj.Kind()] = insertSorted(g.byKind[obj.Kind()], b.id)
	for _, pid := range b.parents {
		g.objects[pid].base().addChild(b.id)
	}
	g.Reserve(b.id)
	return nil
}

// Remove unregisters a childless object and unlinks it from its parents.
func (g *SceneGraph) Remove(id ID) error {
	obj, ok := g.objects[id]
	if !ok {
		return fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}
	b := obj.base()
	if len(b.children) > 0 {
		return fmt.Errorf("remove %s: %w", b.name, ErrHasChildren)
	}
	for _, pid := range b.parents {
		if p, ok := g.objects[pid]; ok {
			p.base().removeChild(id)
		}
	}
	delete(g.objects, id)
	delete(g.names, b.name)
	g.all = removeID(g.all, id)
	g.byKind[obj.Kind()] = removeID(g.byKind[obj.Kind()], id)
	return nil
}

// Link adds parent as a parent of child. It fails with ErrCycle when child is
// already an ancestor of parent.
func (g *SceneGraph) Link(parent, child ID) error {
	p, ok1 := g.objects[parent]
	c, ok2 := g.objects[child]
	if !ok1 || !ok2 {
		return fmt.Errorf("link %d -> %d: %w", parent, child, ErrNotFound)
	}
	if parent == child || g.IsAncestor(child, parent) {
		return fmt.Errorf("link %s -> %s: %w", p.Name(), c.Name(), ErrCycle)
	}
	if c.base().addParent(parent) {
		p.base().addChild(child)
	}
	return nil
}

// Unlink removes parent from child's parents.
func (g *SceneGraph) Unlink(parent, child ID) {
	if c, ok := g.objects[child]; ok {
		c.base().removeParent(parent)
	}
	if p, ok := g.objects[parent]; ok {
		p.base().removeChild(child)
	}
}

// IsAncestor reports whether a is a transitive parent of b.
func (g *SceneGraph) IsAncestor(a, b ID) bool {
	seen := map[ID]bool{}
	stack := slices.Clone(g.parentsOf(b))
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == a {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.parentsOf(id)...)
	}
	return false
}

func (g *SceneGraph) parentsOf(id ID) []ID {
	if o, ok := g.objects[id]; ok {
		return o.base().parents
	}
	return nil
}

// Descendants returns every transitive child of id in breadth-first order,
// each once.
func (g *SceneGraph) Descendants(id ID) []ID {
	var out []ID
	seen := map[ID]bool{id: true}
	queue := []ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		o, ok := g.objects[cur]
		if !ok {
			continue
		}
		for _, c := range o.base().children {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
				queue = append(queue, c)
			}
		}
	}
	return out
}

// Get returns the object with the given id.
func (g *SceneGraph) Get(id ID) (Object, bool) {
	o, ok := g.objects[id]
	return o, ok
}

// ByName returns the object with the given name.
func (g *SceneGraph) ByName(name string) (Object, bool) {
	id, ok := g.names[name]
	if !ok {
		return nil, false
	}
	return g.objects[id], true
}

// Point returns the point with the given id.
func (g *SceneGraph) Point(id ID) (Point, bool) {
	p, ok := g.objects[id].(Point)
	return p, ok
}

// Curve returns the one-dimensional object with the given id.
func (g *SceneGraph) Curve(id ID) (Curve, bool) {
	c, ok := g.objects[id].(Curve)
	return c, ok
}

// Transformation returns the transformation with the given id.
func (g *SceneGraph) Transformation(id ID) (Transformation, bool) {
	t, ok := g.objects[id].(Transformation)
	return t, ok
}

// Len returns the number of registered objects.
func (g *SceneGraph) Len() int { return len(g.all) }

// All returns every object ordered by id.
func (g *SceneGraph) All() []Object { return g.collect(g.all) }

// OfKind returns the objects of one kind ordered by id.
func (g *SceneGraph) OfKind(k Kind) []Object { return g.collect(g.byKind[k]) }

func (g *SceneGraph) collect(ids []ID) []Object {
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.objects[id])
	}
	return out
}

// Points returns every point ordered by id.
func (g *SceneGraph) Points() []Point {
	return collectAs[Point](g, KindPoint)
}

func (g *SceneGraph) Lines() []*Line             { return collectAs[*Line](g, KindLine) }
func (g *SceneGraph) Segments() []*Segment       { return collectAs[*Segment](g, KindSegment) }
func (g *SceneGraph) Circles() []*Circle         { return collectAs[*Circle](g, KindCircle) }
func (g *SceneGraph) Ellipses() []*Ellipse       { return collectAs[*Ellipse](g, KindEllipse) }
func (g *SceneGraph) Parametrics() []*Parametric { return collectAs[*Parametric](g, KindParametric) }
func (g *SceneGraph) Polygons() []*Polygon       { return collectAs[*Polygon](g, KindPolygon) }
func (g *SceneGraph) AngleMarkers() []*AngleMarker {
	return collectAs[*AngleMarker](g, KindAngleMarker)
}
func (g *SceneGraph) Labels() []*Label { return collectAs[*Label](g, KindLabel) }
func (g *SceneGraph) Transformations() []Transformation {
	return collectAs[Transformation](g, KindTransformation)
}

// CurvesOfKind returns the curves of the scene kind matching a curve kind.
func (g *SceneGraph) CurvesOfKind(k Kind) []Curve {
	return collectAs[Curve](g, k)
}

func collectAs[T any](g *SceneGraph, k Kind) []T {
	ids := g.byKind[k]
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := g.objects[id].(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// IntersectionPoints returns every intersection point ordered by id.
func (g *SceneGraph) IntersectionPoints() []*IntersectionPoint {
	return collectAs[*IntersectionPoint](g, KindPoint)
}

// FindIntersectionPointsByParent returns the intersection points that have a
// parent named name1 and, when name2 is not empty, a parent named name2 in
// the same recorded pair.
func (g *SceneGraph) FindIntersectionPointsByParent(name1, name2 string) []*IntersectionPoint {
	id1, ok := g.names[name1]
	if !ok {
		return nil
	}
	var id2 ID
	if name2 != "" {
		if id2, ok = g.names[name2]; !ok {
			return nil
		}
	}
	var out []*IntersectionPoint
	for _, p := range g.IntersectionPoints() {
		for _, pp := range p.Pairs() {
			has1 := pp.Curve1 == id1 || pp.Curve2 == id1
			has2 := name2 == "" || pp.Curve1 == id2 || pp.Curve2 == id2
			if has1 && has2 {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func insertSorted(ids []ID, id ID) []ID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

func removeID(ids []ID, id ID) []ID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}

// Package scene holds the live objects of a spherical construction, the
// parent/child links between them and the propagation that keeps derived
// objects consistent when an independent object changes.
package scene

import (
	"slices"

	"github.com/inamate/easel/internal/geom"
)

// ID is a process-unique object identifier allocated by a SceneGraph.
type ID int

// Kind is the capability class of an object.
type Kind string

const (
	KindPoint          Kind = "point"
	KindLine           Kind = "line"
	KindSegment        Kind = "segment"
	KindCircle         Kind = "circle"
	KindEllipse        Kind = "ellipse"
	KindParametric     Kind = "parametric"
	KindPolygon        Kind = "polygon"
	KindAngleMarker    Kind = "angleMarker"
	KindLabel          Kind = "label"
	KindTransformation Kind = "transformation"
)

// Object is any live geometric primitive. The unexported methods close the
// set of implementations to this package.
type Object interface {
	ID() ID
	Name() string
	Kind() Kind
	Exists() bool
	Showing() bool
	Parents() []ID
	Children() []ID
	// State captures the object's geometric fields for exact restoration.
	State() State
	SetSelected(v bool)

	base() *Base
	restore(State)
	// shallowUpdate recomputes the object from its (up to date) parents.
	shallowUpdate(g *SceneGraph)
	// accept applies v and reports whether v alone fully determined the new
	// state. Objects that return false are recomputed with shallowUpdate.
	accept(v visitor) bool
}

// Point is a zero-dimensional object.
type Point interface {
	Object
	Location() geom.Vector3
}

// Curve is a one-dimensional object.
type Curve interface {
	Object
	Shape() geom.Curve
}

// Base carries the attributes common to every object.
type Base struct {
	id       ID
	name     string
	exists   bool
	showing  bool
	parents  []ID
	children []ID
	stale    bool

	// Selected is a display hint owned by UI collaborators.
	Selected bool
}

func newBase(g *SceneGraph, prefix string, parents ...ID) Base {
	return Base{
		id:      g.NewID(),
		name:    g.NextName(prefix),
		exists:  true,
		showing: true,
		parents: parents,
	}
}

func (b *Base) ID() ID            { return b.id }
func (b *Base) Name() string      { return b.name }
func (b *Base) Exists() bool      { return b.exists }
func (b *Base) Showing() bool     { return b.showing }
func (b *Base) Parents() []ID     { return slices.Clone(b.parents) }
func (b *Base) Children() []ID    { return slices.Clone(b.children) }
func (b *Base) IsOutOfDate() bool { return b.stale }
func (b *Base) base() *Base       { return b }

// SetIdentity overrides the allocated id and name. It is used when objects
// are reconstructed from serialized commands.
func (b *Base) SetIdentity(id ID, name string) {
	b.id = id
	b.name = name
}

// SetSelected sets the selection hint.
func (b *Base) SetSelected(v bool) { b.Selected = v }

// SetInitialShowing sets the display flag of an object that is not yet
// registered.
func (b *Base) SetInitialShowing(v bool) { b.showing = v }

func (b *Base) addChild(id ID) {
	if slices.Contains(b.children, id) {
		return
	}
	i, _ := slices.BinarySearch(b.children, id)
	b.children = slices.Insert(b.children, i, id)
}

func (b *Base) removeChild(id ID) {
	b.children = slices.DeleteFunc(b.children, func(c ID) bool { return c == id })
}

func (b *Base) addParent(id ID) bool {
	if slices.Contains(b.parents, id) {
		return false
	}
	b.parents = append(b.parents, id)
	return true
}

func (b *Base) removeParent(id ID) {
	b.parents = slices.DeleteFunc(b.parents, func(p ID) bool { return p == id })
}

// State is a snapshot of an object's mutable geometric fields.
type State struct {
	ID      ID             `json:"id"`
	Exists  bool           `json:"exists"`
	Vectors []geom.Vector3 `json:"vectors,omitempty"`
	Scalars []float64      `json:"scalars,omitempty"`
}

func (b *Base) stateWith(vectors []geom.Vector3, scalars ...float64) State {
	return State{ID: b.id, Exists: b.exists, Vectors: vectors, Scalars: scalars}
}

// UpdateMode tells observers why an object was recomputed.
type UpdateMode int

const (
	UpdateDrag UpdateMode = iota
	UpdateRotate
	UpdateRefresh
	UpdateRestore
)

func (m UpdateMode) String() string {
	switch m {
	case UpdateDrag:
		return "drag"
	case UpdateRotate:
		return "rotate"
	case UpdateRefresh:
		return "refresh"
	case UpdateRestore:
		return "restore"
	}
	return "unknown"
}

// Observer is called after an object has been recomputed.
type Observer func(obj Object, mode UpdateMode)

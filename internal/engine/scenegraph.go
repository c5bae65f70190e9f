package engine

import (
	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

// ObjectView is the render-ready, serializable state of one object.
type ObjectView struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Kind    scene.Kind `json:"kind"`
	Exists  bool       `json:"exists"`
	Showing bool       `json:"showing"`
	Parents []string   `json:"parents,omitempty"`

	// Points
	Location    *geom.Vector3 `json:"location,omitempty"`
	UserCreated *bool         `json:"userCreated,omitempty"`

	// Lines and segments
	Normal *geom.Vector3 `json:"normal,omitempty"`

	// Circles and ellipses
	Center *geom.Vector3 `json:"center,omitempty"`
	Radius *float64      `json:"radius,omitempty"`

	// Polygon area, angle marker value, rotation angle
	Value *float64 `json:"value,omitempty"`
	Text  string   `json:"text,omitempty"`

	// Sampled polyline for one-dimensional objects, in parameter order
	Path []geom.Vector3 `json:"path,omitempty"`
}

// CurveSamples is the polyline resolution used for curve paths.
const CurveSamples = 96

func ptr[T any](v T) *T { return &v }

// BuildViews returns a view of every object in id order.
func BuildViews(g *scene.SceneGraph) []ObjectView {
	all := g.All()
	views := make([]ObjectView, 0, len(all))
	for _, obj := range all {
		views = append(views, buildView(g, obj))
	}
	return views
}

func buildView(g *scene.SceneGraph, obj scene.Object) ObjectView {
	v := ObjectView{
		ID:      int(obj.ID()),
		Name:    obj.Name(),
		Kind:    obj.Kind(),
		Exists:  obj.Exists(),
		Showing: obj.Showing(),
	}
	for _, id := range obj.Parents() {
		if p, ok := g.Get(id); ok {
			v.Parents = append(v.Parents, p.Name())
		}
	}
	switch o := obj.(type) {
	case scene.Point:
		v.Location = ptr(o.Location())
		v.UserCreated = ptr(scene.IsUserCreated(o))
	case *scene.Polygon:
		v.Value = ptr(o.Area())
		v.Path = o.Vertices(g)
	case *scene.AngleMarker:
		v.Value = ptr(o.Value())
	case *scene.Label:
		v.Location = ptr(o.Position())
		v.Text = o.Text
	case *scene.Rotation:
		v.Value = ptr(o.Angle())
	}
	switch o := obj.(type) {
	case *scene.Line:
		v.Normal = ptr(o.Normal())
	case *scene.Segment:
		v.Normal = ptr(o.Arc().Normal)
	case *scene.Circle:
		c := o.Geometry()
		v.Center, v.Radius = ptr(c.Center), ptr(c.Radius)
	case *scene.Ellipse:
		el := o.Geometry()
		v.Center, v.Radius = ptr(el.Center()), ptr(el.A)
	}
	if c, ok := obj.(scene.Curve); ok && obj.Exists() {
		v.Path = geom.Sample(c.Shape(), CurveSamples)
	}
	return v
}

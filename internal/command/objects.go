package command

import (
	"github.com/inamate/easel/internal/scene"
)

// AddObject registers one new object; undo unregisters it. The opcode action
// follows the object type: AddPoint, AddLine, AddIntersectionPoint and so on.
type AddObject struct {
	g   *scene.SceneGraph
	obj scene.Object
	op  string
}

// NewAddObject wraps obj, which must be allocated but not registered.
func NewAddObject(g *scene.SceneGraph, obj scene.Object) *AddObject {
	return &AddObject{g: g, obj: obj}
}

// Object returns the object this command adds.
func (c *AddObject) Object() scene.Object { return c.obj }

func (c *AddObject) Execute() error {
	if err := c.g.Add(c.obj); err != nil {
		return invariant("add "+c.obj.Name(), err)
	}
	if c.op == "" {
		c.op = encodeObject(c.g, c.obj)
	}
	return nil
}

func (c *AddObject) Undo() error {
	if err := c.g.Remove(c.obj.ID()); err != nil {
		return invariant("remove "+c.obj.Name(), err)
	}
	return nil
}

// Opcode is fixed the first time the command runs, so later deletions of
// parents do not change it.
func (c *AddObject) Opcode() string {
	if c.op == "" {
		return encodeObject(c.g, c.obj)
	}
	return c.op
}

func nameOf(g *scene.SceneGraph, id scene.ID) string {
	if o, ok := g.Get(id); ok {
		return o.Name()
	}
	return ""
}

func namesOf(g *scene.SceneGraph, ids []scene.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = nameOf(g, id)
	}
	return out
}

func encodeObject(g *scene.SceneGraph, obj scene.Object) string {
	head := func(action string) tokens {
		return newTokens(action).addInt("id", int(obj.ID())).add("name", obj.Name())
	}
	var t tokens
	switch o := obj.(type) {
	case *scene.FreePoint:
		t = head(actionAddPoint).addVector("location", o.Location())
	case *scene.AntipodalPoint:
		t = head(actionAddAntipodalPoint).add("parent", nameOf(g, o.Parent()))
	case *scene.PointOnObject:
		t = head(actionAddPointOnObject).
			add("parent", nameOf(g, o.Parent())).
			addVector("location", o.Location())
	case *scene.IntersectionPoint:
		pp := o.Primary()
		t = head(actionAddIntersection).
			add("curve1", nameOf(g, pp.Curve1)).
			add("curve2", nameOf(g, pp.Curve2)).
			addInt("index", pp.Index).
			addVector("location", o.Location()).
			addBool("exists", o.Exists())
	case *scene.TransformedPoint:
		t = head(actionAddTransformedPoint).
			add("source", nameOf(g, o.Source())).
			add("transformation", nameOf(g, o.Transformation()))
	case *scene.Line:
		t = head(actionAddLine).
			add("start", nameOf(g, o.Start())).
			add("end", nameOf(g, o.End())).
			addVector("normal", o.Normal())
	case *scene.Segment:
		t = head(actionAddSegment).
			add("start", nameOf(g, o.Start())).
			add("end", nameOf(g, o.End())).
			addVector("normal", o.Arc().Normal).
			addBool("long", o.Long())
	case *scene.Circle:
		t = head(actionAddCircle).
			add("center", nameOf(g, o.Center())).
			add("point", nameOf(g, o.CirclePoint()))
	case *scene.Ellipse:
		t = head(actionAddEllipse).
			add("focus1", nameOf(g, o.Focus1())).
			add("focus2", nameOf(g, o.Focus2())).
			add("point", nameOf(g, o.EllipsePoint()))
	case *scene.Parametric:
		ex := o.Expressions()
		t = head(actionAddParametric).
			add("x", ex.X).add("y", ex.Y).add("z", ex.Z).
			addFloat("tmin", ex.TMin).
			addFloat("tmax", ex.TMax).
			addBool("closed", ex.Closed)
	case *scene.Polygon:
		flipped := make([]string, 0, len(o.Flipped()))
		for _, f := range o.Flipped() {
			if f {
				flipped = append(flipped, "1")
			} else {
				flipped = append(flipped, "0")
			}
		}
		t = head(actionAddPolygon).
			addList("segments", namesOf(g, o.Parents())).
			addList("flipped", flipped)
	case *scene.AngleMarker:
		t = head(actionAddAngleMarker).addList("points", namesOf(g, o.Parents()))
	case *scene.Label:
		t = head(actionAddLabel).
			add("parent", nameOf(g, o.Parent())).
			add("text", o.Text)
	case *scene.Reflection:
		t = head(actionAddTransformation).
			add("kind", "reflection").
			add("line", nameOf(g, o.Line()))
	case *scene.Rotation:
		t = head(actionAddTransformation).
			add("kind", "rotation").
			add("center", nameOf(g, o.Center())).
			addFloat("angle", o.Angle())
	default:
		t = head("Add" + string(obj.Kind()))
	}
	return t.addBool("showing", obj.Showing()).String()
}

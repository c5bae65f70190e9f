package command

import (
	"fmt"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

// Parse reconstructs a command from its opcode. Objects referenced by name
// are looked up in objects first and then in g; objects created by the
// command are added to objects so later opcodes can refer to them. A
// duplicate name or an unknown parent is an invariant violation.
func Parse(op string, g *scene.SceneGraph, objects map[string]scene.Object) (Command, error) {
	if objects == nil {
		objects = make(map[string]scene.Object)
	}
	p := &parser{g: g, objects: objects}
	return p.parse(op)
}

type parser struct {
	g       *scene.SceneGraph
	objects map[string]scene.Object
}

func (p *parser) parse(op string) (Command, error) {
	f, err := decode(op)
	if err != nil {
		return nil, err
	}
	switch action := f["action"]; action {
	case actionGroup:
		return p.group(f)
	case actionAddOtherParent:
		return p.otherParent(f)
	case actionSetUserCreated:
		pt, err := lookup[*scene.IntersectionPoint](p, f, "point")
		if err != nil {
			return nil, err
		}
		v, err := f.bool("value", true)
		if err != nil {
			return nil, err
		}
		return NewSetUserCreated(p.g, pt, v), nil
	case actionSetShowing:
		obj, err := lookup[scene.Object](p, f, "object")
		if err != nil {
			return nil, err
		}
		v, err := f.bool("value", true)
		if err != nil {
			return nil, err
		}
		return NewSetShowing(p.g, obj, v), nil
	case actionMovePoint:
		pt, err := lookup[scene.Point](p, f, "point")
		if err != nil {
			return nil, err
		}
		to, err := f.vector("to")
		if err != nil {
			return nil, err
		}
		return NewMovePoint(p.g, pt, to), nil
	case actionRotateSphere:
		vs, err := f.floats("matrix", 9)
		if err != nil {
			return nil, err
		}
		var m geom.Matrix3
		copy(m[:], vs)
		return NewRotateSphere(p.g, m), nil
	case actionDelete:
		obj, err := lookup[scene.Object](p, f, "object")
		if err != nil {
			return nil, err
		}
		return NewDelete(p.g, obj), nil
	default:
		obj, err := p.object(action, f)
		if err != nil {
			return nil, err
		}
		return p.register(f, obj)
	}
}

func (p *parser) group(f fields) (Command, error) {
	gr := NewGroup()
	if id, ok := f["id"]; ok && id != "" {
		gr.ID = id
	}
	for _, member := range splitMembers(f["commands"]) {
		c, err := p.parse(unescape(member))
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", gr.ID, err)
		}
		gr.Add(c)
	}
	return gr, nil
}

func (p *parser) otherParent(f fields) (Command, error) {
	pt, err := lookup[*scene.IntersectionPoint](p, f, "point")
	if err != nil {
		return nil, err
	}
	c1, err := lookup[scene.Curve](p, f, "curve1")
	if err != nil {
		return nil, err
	}
	c2, err := lookup[scene.Curve](p, f, "curve2")
	if err != nil {
		return nil, err
	}
	idx, err := f.int("index")
	if err != nil {
		return nil, err
	}
	exists, err := f.bool("exists", false)
	if err != nil {
		return nil, err
	}
	pair := scene.ParentPair{Curve1: c1.ID(), Curve2: c2.ID(), Index: idx}
	return NewAddOtherParent(p.g, pt, pair, exists), nil
}

// register applies the serialized identity to a reconstructed object.
func (p *parser) register(f fields, obj scene.Object) (Command, error) {
	id, err := f.int("id")
	if err != nil {
		return nil, err
	}
	name, err := f.str("name")
	if err != nil {
		return nil, err
	}
	if _, ok := p.objects[name]; ok {
		return nil, invariant("reconstruct "+name, scene.ErrDuplicateName)
	}
	if _, ok := p.g.ByName(name); ok {
		return nil, invariant("reconstruct "+name, scene.ErrDuplicateName)
	}
	showing, err := f.bool("showing", obj.Showing())
	if err != nil {
		return nil, err
	}
	b := baseOf(obj)
	b.SetIdentity(scene.ID(id), name)
	b.SetInitialShowing(showing)
	p.g.Reserve(scene.ID(id))
	p.objects[name] = obj
	return NewAddObject(p.g, obj), nil
}

type identity interface {
	SetIdentity(scene.ID, string)
	SetInitialShowing(bool)
}

func baseOf(obj scene.Object) identity { return obj.(identity) }

func lookup[T scene.Object](p *parser, f fields, key string) (T, error) {
	var zero T
	name, err := f.str(key)
	if err != nil {
		return zero, err
	}
	obj, ok := p.objects[name]
	if !ok {
		if obj, ok = p.g.ByName(name); !ok {
			return zero, invariant(fmt.Sprintf("%s %s %q", f["action"], key, name), scene.ErrNotFound)
		}
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: %s %q is a %s", ErrParse, f["action"], key, name, obj.Kind())
	}
	return t, nil
}

func (p *parser) object(action string, f fields) (scene.Object, error) {
	g := p.g
	switch action {
	case actionAddPoint:
		v, err := f.vector("location")
		if err != nil {
			return nil, err
		}
		return scene.NewFreePoint(g, v), nil
	case actionAddAntipodalPoint:
		of, err := lookup[scene.Point](p, f, "parent")
		if err != nil {
			return nil, err
		}
		return scene.NewAntipodalPoint(g, of), nil
	case actionAddPointOnObject:
		on, err := lookup[scene.Curve](p, f, "parent")
		if err != nil {
			return nil, err
		}
		v, err := f.vector("location")
		if err != nil {
			return nil, err
		}
		return scene.NewPointOnObject(g, on, v), nil
	case actionAddIntersection:
		c1, err := lookup[scene.Curve](p, f, "curve1")
		if err != nil {
			return nil, err
		}
		c2, err := lookup[scene.Curve](p, f, "curve2")
		if err != nil {
			return nil, err
		}
		idx, err := f.int("index")
		if err != nil {
			return nil, err
		}
		v, err := f.vector("location")
		if err != nil {
			return nil, err
		}
		exists, err := f.bool("exists", true)
		if err != nil {
			return nil, err
		}
		return scene.NewIntersectionPoint(g, c1, c2, idx, v, exists), nil
	case actionAddTransformedPoint:
		src, err := lookup[scene.Point](p, f, "source")
		if err != nil {
			return nil, err
		}
		t, err := lookup[scene.Transformation](p, f, "transformation")
		if err != nil {
			return nil, err
		}
		return scene.NewTransformedPoint(g, src, t), nil
	case actionAddLine, actionAddSegment:
		start, err := lookup[scene.Point](p, f, "start")
		if err != nil {
			return nil, err
		}
		end, err := lookup[scene.Point](p, f, "end")
		if err != nil {
			return nil, err
		}
		normal, err := f.vector("normal")
		if err != nil {
			return nil, err
		}
		if action == actionAddLine {
			return scene.NewLine(g, start, end, normal), nil
		}
		long, err := f.bool("long", false)
		if err != nil {
			return nil, err
		}
		return scene.NewSegment(g, start, end, normal, long), nil
	case actionAddCircle:
		center, err := lookup[scene.Point](p, f, "center")
		if err != nil {
			return nil, err
		}
		pt, err := lookup[scene.Point](p, f, "point")
		if err != nil {
			return nil, err
		}
		return scene.NewCircle(g, center, pt), nil
	case actionAddEllipse:
		f1, err := lookup[scene.Point](p, f, "focus1")
		if err != nil {
			return nil, err
		}
		f2, err := lookup[scene.Point](p, f, "focus2")
		if err != nil {
			return nil, err
		}
		pt, err := lookup[scene.Point](p, f, "point")
		if err != nil {
			return nil, err
		}
		return scene.NewEllipse(g, f1, f2, pt), nil
	case actionAddParametric:
		ex := scene.Expressions{X: f["x"], Y: f["y"], Z: f["z"]}
		var err error
		if ex.TMin, err = f.float("tmin"); err != nil {
			return nil, err
		}
		if ex.TMax, err = f.float("tmax"); err != nil {
			return nil, err
		}
		if ex.Closed, err = f.bool("closed", false); err != nil {
			return nil, err
		}
		// A curve that failed to compile is kept as a non-existent object.
		pc, _ := scene.NewParametric(g, ex)
		return pc, nil
	case actionAddPolygon:
		names, err := f.list("segments")
		if err != nil {
			return nil, err
		}
		flags, err := f.list("flipped")
		if err != nil {
			return nil, err
		}
		segs := make([]*scene.Segment, len(names))
		for i, n := range names {
			if segs[i], err = lookup[*scene.Segment](p, fields{"action": action, "segment": n}, "segment"); err != nil {
				return nil, err
			}
		}
		flipped := make([]bool, len(flags))
		for i, fl := range flags {
			flipped[i] = fl == "1"
		}
		return scene.NewPolygon(g, segs, flipped), nil
	case actionAddAngleMarker:
		names, err := f.list("points")
		if err != nil {
			return nil, err
		}
		if len(names) != 3 {
			return nil, fmt.Errorf("%w: %s: want three points", ErrParse, action)
		}
		var pts [3]scene.Point
		for i, n := range names {
			if pts[i], err = lookup[scene.Point](p, fields{"action": action, "point": n}, "point"); err != nil {
				return nil, err
			}
		}
		return scene.NewAngleMarker(g, pts[0], pts[1], pts[2]), nil
	case actionAddLabel:
		of, err := lookup[scene.Object](p, f, "parent")
		if err != nil {
			return nil, err
		}
		l := scene.NewLabel(g, of)
		if text, ok := f["text"]; ok {
			l.Text = text
		}
		return l, nil
	case actionAddTransformation:
		switch f["kind"] {
		case "reflection":
			line, err := lookup[*scene.Line](p, f, "line")
			if err != nil {
				return nil, err
			}
			return scene.NewReflection(g, line), nil
		case "rotation":
			center, err := lookup[scene.Point](p, f, "center")
			if err != nil {
				return nil, err
			}
			angle, err := f.float("angle")
			if err != nil {
				return nil, err
			}
			return scene.NewRotation(g, center, angle), nil
		}
		return nil, fmt.Errorf("%w: transformation kind %q", ErrParse, f["kind"])
	}
	return nil, fmt.Errorf("%w: unknown action %q", ErrParse, action)
}

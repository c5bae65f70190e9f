package engine

import (
	"encoding/json"
	"math"

	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

// DrawCommand is a single drawing operation for the frontend. Coordinates
// are unit vectors; projection to the screen is the frontend's job.
type DrawCommand struct {
	Op       string         `json:"op"`                 // "point", "path", "polygon", "label"
	ObjectID string         `json:"objectId,omitempty"` // For hit correlation
	Path     []geom.Vector3 `json:"path,omitempty"`
	Closed   bool           `json:"closed,omitempty"`
	Text     string         `json:"text,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from object views.
// Commands are in painter's order: polygons, curves, points, labels.
func CompileDrawCommands(views []ObjectView) []DrawCommand {
	var polys, curves, points, labels []DrawCommand
	for _, v := range views {
		if !v.Showing || !v.Exists {
			continue
		}
		switch {
		case v.Kind == scene.KindPolygon:
			polys = append(polys, DrawCommand{Op: "polygon", ObjectID: v.Name, Path: v.Path, Closed: true})
		case v.Kind == scene.KindLabel:
			labels = append(labels, DrawCommand{Op: "label", ObjectID: v.Name, Path: []geom.Vector3{*v.Location}, Text: v.Text})
		case v.Kind == scene.KindPoint:
			points = append(points, DrawCommand{Op: "point", ObjectID: v.Name, Path: []geom.Vector3{*v.Location}})
		case len(v.Path) > 0:
			closed := v.Kind == scene.KindLine || v.Kind == scene.KindCircle || v.Kind == scene.KindEllipse
			curves = append(curves, DrawCommand{Op: "path", ObjectID: v.Name, Path: v.Path, Closed: closed})
		}
	}
	commands := make([]DrawCommand, 0, len(polys)+len(curves)+len(points)+len(labels))
	commands = append(commands, polys...)
	commands = append(commands, curves...)
	commands = append(commands, points...)
	return append(commands, labels...)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the name of the showing, existing object closest to v
// within tolerance radians. Points win over curves at equal distance.
func HitTest(g *scene.SceneGraph, v geom.Vector3, tolerance float64) string {
	v = v.Normalize()
	best, bestD := "", math.Inf(1)
	consider := func(obj scene.Object, d float64) {
		if d <= tolerance && d < bestD {
			best, bestD = obj.Name(), d
		}
	}
	for _, p := range g.Points() {
		if p.Showing() && p.Exists() {
			consider(p, v.Angle(p.Location()))
		}
	}
	if best != "" {
		return best
	}
	for _, obj := range g.All() {
		c, ok := obj.(scene.Curve)
		if !ok || !c.Showing() || !c.Exists() {
			continue
		}
		consider(c, v.Angle(c.Shape().ClosestPoint(v)))
	}
	return best
}

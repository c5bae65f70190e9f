//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/easel/internal/engine"
	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(0)

	// Create the engine API object
	easel := js.Global().Get("Object").New()

	// --- Constructions (frontend → engine) ---
	easel.Set("addPoint", js.FuncOf(addPoint))
	easel.Set("addPointOnObject", js.FuncOf(addPointOnObject))
	easel.Set("promoteIntersection", js.FuncOf(promoteIntersection))
	easel.Set("addLine", js.FuncOf(addLine))
	easel.Set("addSegment", js.FuncOf(addSegment))
	easel.Set("addCircle", js.FuncOf(addCircle))
	easel.Set("addEllipse", js.FuncOf(addEllipse))
	easel.Set("addParametric", js.FuncOf(addParametric))
	easel.Set("addPolygon", js.FuncOf(addPolygon))
	easel.Set("addAngleMarker", js.FuncOf(addAngleMarker))
	easel.Set("addLabel", js.FuncOf(addLabel))
	easel.Set("addReflection", js.FuncOf(addReflection))
	easel.Set("addRotation", js.FuncOf(addRotation))
	easel.Set("addTransformedPoint", js.FuncOf(addTransformedPoint))

	// --- Edits ---
	easel.Set("movePoint", js.FuncOf(movePoint))
	easel.Set("rotateSphere", js.FuncOf(rotateSphere))
	easel.Set("deleteObject", js.FuncOf(deleteObject))
	easel.Set("setShowing", js.FuncOf(setShowing))
	easel.Set("setSelection", js.FuncOf(setSelection))
	easel.Set("undo", js.FuncOf(undo))
	easel.Set("redo", js.FuncOf(redo))
	easel.Set("applyOpcode", js.FuncOf(applyOpcode))

	// --- Queries (frontend ← engine) ---
	easel.Set("render", js.FuncOf(render))
	easel.Set("snapshot", js.FuncOf(snapshot))
	easel.Set("hitTest", js.FuncOf(hitTest))
	easel.Set("getSelection", js.FuncOf(getSelection))
	easel.Set("getOpcodes", js.FuncOf(getOpcodes))
	easel.Set("getNotices", js.FuncOf(getNotices))
	easel.Set("findIntersectionPoints", js.FuncOf(findIntersectionPoints))

	// Register on global scope
	js.Global().Set("easelEngine", easel)

	// Signal that WASM is ready
	js.Global().Set("easelWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

func okValue() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func resultValue(res engine.Result, err error) interface{} {
	if err != nil {
		return errorValue(err)
	}
	added := make([]interface{}, len(res.Added))
	for i, n := range res.Added {
		added[i] = n
	}
	return js.ValueOf(map[string]interface{}{
		"created": res.Created,
		"name":    res.Name,
		"added":   added,
	})
}

func vector(args []js.Value, at int) geom.Vector3 {
	return geom.Vector3{X: args[at].Float(), Y: args[at+1].Float(), Z: args[at+2].Float()}
}

// pointRef accepts either a point name or a JSON-encoded engine.PointRef.
func pointRef(v js.Value) (engine.PointRef, error) {
	s := v.String()
	var ref engine.PointRef
	if len(s) > 0 && s[0] == '{' {
		err := json.Unmarshal([]byte(s), &ref)
		return ref, err
	}
	return engine.Existing(s), nil
}

func pointRefs(args []js.Value, n int) ([]engine.PointRef, error) {
	refs := make([]engine.PointRef, n)
	for i := range refs {
		ref, err := pointRef(args[i])
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

func stringList(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	out := make([]string, v.Length())
	for i := range out {
		out[i] = v.Index(i).String()
	}
	return out
}

// --- Construction Handlers ---

func addPoint(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("x, y, z")
	}
	return resultValue(eng.AddPoint(vector(args, 0)))
}

func addPointOnObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("curve, x, y, z")
	}
	return resultValue(eng.AddPointOnObject(args[0].String(), vector(args, 1)))
}

func promoteIntersection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("point name")
	}
	return resultValue(eng.PromoteIntersection(args[0].String()))
}

func addLine(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("start, end")
	}
	refs, err := pointRefs(args, 2)
	if err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddLine(refs[0], refs[1]))
}

func addSegment(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("start, end")
	}
	refs, err := pointRefs(args, 2)
	if err != nil {
		return errorValue(err)
	}
	long := len(args) > 2 && args[2].Truthy()
	return resultValue(eng.AddSegment(refs[0], refs[1], long))
}

func addCircle(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("center, point")
	}
	refs, err := pointRefs(args, 2)
	if err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddCircle(refs[0], refs[1]))
}

func addEllipse(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("focus1, focus2, point")
	}
	refs, err := pointRefs(args, 3)
	if err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddEllipse(refs[0], refs[1], refs[2]))
}

func addParametric(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("expressions JSON")
	}
	var exprs scene.Expressions
	if err := json.Unmarshal([]byte(args[0].String()), &exprs); err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddParametric(exprs))
}

func addPolygon(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("segments")
	}
	segments := stringList(args[0])
	flipped := make([]bool, len(segments))
	if len(args) > 1 && args[1].Type() == js.TypeObject {
		for i := range flipped {
			if i < args[1].Length() {
				flipped[i] = args[1].Index(i).Truthy()
			}
		}
	}
	return resultValue(eng.AddPolygon(segments, flipped))
}

func addAngleMarker(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("a, vertex, c")
	}
	refs, err := pointRefs(args, 3)
	if err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddAngleMarker(refs[0], refs[1], refs[2]))
}

func addLabel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("object")
	}
	text := ""
	if len(args) > 1 {
		text = args[1].String()
	}
	return resultValue(eng.AddLabel(args[0].String(), text))
}

func addReflection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("line")
	}
	return resultValue(eng.AddReflection(args[0].String()))
}

func addRotation(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("center, angle")
	}
	center, err := pointRef(args[0])
	if err != nil {
		return errorValue(err)
	}
	return resultValue(eng.AddRotation(center, args[1].Float()))
}

func addTransformedPoint(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("point, transformation")
	}
	return resultValue(eng.AddTransformedPoint(args[0].String(), args[1].String()))
}

// --- Edit Handlers ---

func movePoint(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("point, x, y, z")
	}
	if err := eng.MovePoint(args[0].String(), vector(args, 1)); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func rotateSphere(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("x, y, z, angle")
	}
	if err := eng.RotateSphere(vector(args, 0), args[3].Float()); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func deleteObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("object")
	}
	if err := eng.Delete(args[0].String()); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func setShowing(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("object, showing")
	}
	if err := eng.SetShowing(args[0].String(), args[1].Truthy()); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}
	eng.SetSelection(stringList(args[0]))
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	ok, err := eng.Undo()
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(ok)
}

func redo(this js.Value, args []js.Value) interface{} {
	ok, err := eng.Redo()
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(ok)
}

func applyOpcode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("opcode")
	}
	if err := eng.ApplyOpcode(args[0].String()); err != nil {
		return errorValue(err)
	}
	return okValue()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func snapshot(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Snapshot())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("")
	}
	tolerance := 0.02
	if len(args) > 3 {
		tolerance = args[3].Float()
	}
	return js.ValueOf(eng.HitTest(vector(args, 0), tolerance))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getOpcodes(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Opcodes())
	return js.ValueOf(string(data))
}

func getNotices(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Notices())
	return js.ValueOf(string(data))
}

func findIntersectionPoints(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("[]")
	}
	data, _ := json.Marshal(eng.FindIntersectionPointsByParent(args[0].String(), args[1].String()))
	return js.ValueOf(string(data))
}

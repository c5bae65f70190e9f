package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/easel/internal/command"
	"github.com/inamate/easel/internal/geom"
	"github.com/inamate/easel/internal/scene"
)

var (
	ErrNotPoint       = errors.New("object is not a point")
	ErrNotCurve       = errors.New("object is not a curve")
	ErrEmptyReference = errors.New("empty point reference")

	ErrNotTransformation = errors.New("object is not a transformation")
)

// Engine owns a scene graph and its command history. Tool handlers and the
// wasm bridge drive every mutation through it.
type Engine struct {
	g       *scene.SceneGraph
	history *command.History
	finder  *scene.IntersectionEngine

	// Selection state (UI hint only)
	selection []string

	notices []Notice
	logger  *slog.Logger
}

// Notice reports a construction that is geometrically degenerate. The object
// still exists in the graph but is not displayed until it heals.
type Notice struct {
	Object  string `json:"object"`
	Message string `json:"message"`
}

// NewEngine creates an engine with an empty scene. historyLimit bounds the
// undo stack; zero keeps everything.
func NewEngine(historyLimit int) *Engine {
	g := scene.NewSceneGraph()
	return &Engine{
		g:       g,
		history: command.NewHistory(historyLimit),
		finder:  scene.NewIntersectionEngine(g),
		logger:  slog.Default(),
	}
}

// SetLogger replaces the logger of the engine and everything it owns.
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
	e.g.SetLogger(l)
	e.history.SetLogger(l)
}

// Graph exposes the scene graph for read access.
func (e *Engine) Graph() *scene.SceneGraph { return e.g }

// History exposes the command history, e.g. to subscribe to changes.
func (e *Engine) History() *command.History { return e.history }

// --- Commands (frontend → engine) ---

// MovePoint drags a free point or a point on an object to v.
func (e *Engine) MovePoint(name string, v geom.Vector3) error {
	p, err := e.point(name)
	if err != nil {
		return err
	}
	return e.history.Execute(command.NewMovePoint(e.g, p, v))
}

// RotateSphere rotates the whole scene by angle radians about axis.
func (e *Engine) RotateSphere(axis geom.Vector3, angle float64) error {
	return e.history.Execute(command.NewRotateSphere(e.g, geom.RotateAxis(axis, angle)))
}

// Delete removes an object and everything that depends on it.
func (e *Engine) Delete(name string) error {
	obj, ok := e.g.ByName(name)
	if !ok {
		return fmt.Errorf("delete %q: %w", name, scene.ErrNotFound)
	}
	return e.history.Execute(command.NewDelete(e.g, obj))
}

// SetShowing toggles display of an object. Showing a hidden intersection
// point promotes it.
func (e *Engine) SetShowing(name string, showing bool) error {
	obj, ok := e.g.ByName(name)
	if !ok {
		return fmt.Errorf("show %q: %w", name, scene.ErrNotFound)
	}
	if ip, ok := obj.(*scene.IntersectionPoint); ok && showing && !ip.IsUserCreated() {
		_, err := e.PromoteIntersection(name)
		return err
	}
	return e.history.Execute(command.NewSetShowing(e.g, obj, showing))
}

// SetSelection sets the selected object names.
func (e *Engine) SetSelection(names []string) {
	e.selection = names
	for _, obj := range e.g.All() {
		obj.SetSelected(false)
	}
	for _, n := range names {
		if obj, ok := e.g.ByName(n); ok {
			obj.SetSelected(true)
		}
	}
}

// Undo reverses the last command. It reports whether anything was undone.
func (e *Engine) Undo() (bool, error) { return e.history.Undo() }

// Redo re-executes the last undone command.
func (e *Engine) Redo() (bool, error) { return e.history.Redo() }

const (
	opUndo = "action=Undo"
	opRedo = "action=Redo"
)

// ApplyOpcode parses and executes one opcode. The Undo and Redo opcodes
// address the history instead.
func (e *Engine) ApplyOpcode(op string) error {
	switch op {
	case opUndo:
		_, err := e.history.Undo()
		return err
	case opRedo:
		_, err := e.history.Redo()
		return err
	}
	c, err := command.Parse(op, e.g, nil)
	if err != nil {
		return fmt.Errorf("apply opcode: %w", err)
	}
	return e.history.Execute(c)
}

// Replay applies a sequence of opcodes, stopping at the first failure, and
// then recomputes the whole scene from its roots.
func (e *Engine) Replay(ops []string) error {
	for i, op := range ops {
		if err := e.ApplyOpcode(op); err != nil {
			return fmt.Errorf("opcode %d: %w", i, err)
		}
	}
	e.g.UpdateAll()
	return nil
}

// Opcodes returns the opcodes of the undoable history, oldest first. Applied
// to an empty engine they rebuild the current scene.
func (e *Engine) Opcodes() []string { return e.history.Opcodes() }

// --- Queries (frontend ← engine) ---

// Snapshot returns every object as JSON.
func (e *Engine) Snapshot() string {
	data, _ := json.Marshal(BuildViews(e.g))
	return string(data)
}

// Render returns draw commands for the visible objects as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(CompileDrawCommands(BuildViews(e.g)))
	return result
}

// HitTest returns the name of the showing object nearest to v within
// tolerance radians, or the empty string.
func (e *Engine) HitTest(v geom.Vector3, tolerance float64) string {
	return HitTest(e.g, v, tolerance)
}

// FindIntersectionPointsByParent returns the names of the intersection
// points that have both named curves as parents.
func (e *Engine) FindIntersectionPointsByParent(curve1, curve2 string) []string {
	var out []string
	for _, p := range e.g.FindIntersectionPointsByParent(curve1, curve2) {
		out = append(out, p.Name())
	}
	return out
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// Notices drains the degeneracy notices collected since the last call.
func (e *Engine) Notices() []Notice {
	out := e.notices
	e.notices = nil
	return out
}

func (e *Engine) notice(obj scene.Object, msg string) {
	e.logger.Debug("degenerate construction", "object", obj.Name(), "kind", obj.Kind())
	e.notices = append(e.notices, Notice{Object: obj.Name(), Message: msg})
}

func (e *Engine) point(name string) (scene.Point, error) {
	obj, ok := e.g.ByName(name)
	if !ok {
		return nil, fmt.Errorf("point %q: %w", name, scene.ErrNotFound)
	}
	p, ok := obj.(scene.Point)
	if !ok {
		return nil, fmt.Errorf("%q is a %s: %w", name, obj.Kind(), ErrNotPoint)
	}
	return p, nil
}

func (e *Engine) curve(name string) (scene.Curve, error) {
	obj, ok := e.g.ByName(name)
	if !ok {
		return nil, fmt.Errorf("curve %q: %w", name, scene.ErrNotFound)
	}
	c, ok := obj.(scene.Curve)
	if !ok {
		return nil, fmt.Errorf("%q is a %s: %w", name, obj.Kind(), ErrNotCurve)
	}
	return c, nil
}

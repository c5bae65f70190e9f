package command

import (
	"fmt"
	"log/slog"
)

// History is the undo/redo stack of executed commands.
type History struct {
	undo  []Command
	redo  []Command
	limit int

	listeners []func(Event)
	logger    *slog.Logger
}

// EventKind says how the history changed.
type EventKind string

const (
	EventExecute EventKind = "execute"
	EventUndo    EventKind = "undo"
	EventRedo    EventKind = "redo"
)

// Event describes one history change.
type Event struct {
	Kind    EventKind
	Command Command
}

// NewHistory creates a history keeping at most limit undoable commands; zero
// means unlimited.
func NewHistory(limit int) *History {
	return &History{limit: limit, logger: slog.Default()}
}

// SetLogger replaces the history logger.
func (h *History) SetLogger(l *slog.Logger) { h.logger = l }

// Subscribe registers fn to be called after every execute, undo and redo.
func (h *History) Subscribe(fn func(Event)) {
	h.listeners = append(h.listeners, fn)
}

func (h *History) emit(kind EventKind, c Command) {
	for _, fn := range h.listeners {
		fn(Event{Kind: kind, Command: c})
	}
}

// Execute runs c and pushes it onto the undo stack, clearing the redo stack.
// A failed command is not recorded.
func (h *History) Execute(c Command) error {
	if err := c.Execute(); err != nil {
		h.logger.Error("command failed", "error", err)
		return err
	}
	h.undo = append(h.undo, c)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	h.emit(EventExecute, c)
	return nil
}

// Undo reverses the most recent command. It reports false when there is
// nothing to undo.
func (h *History) Undo() (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	c := h.undo[len(h.undo)-1]
	if err := c.Undo(); err != nil {
		return false, fmt.Errorf("undo: %w", err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	h.emit(EventUndo, c)
	return true, nil
}

// Redo re-executes the most recently undone command. It reports false when
// there is nothing to redo.
func (h *History) Redo() (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	c := h.redo[len(h.redo)-1]
	if err := c.Execute(); err != nil {
		return false, fmt.Errorf("redo: %w", err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	h.emit(EventRedo, c)
	return true, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Opcodes returns the opcodes of the undoable commands, oldest first.
func (h *History) Opcodes() []string {
	out := make([]string, len(h.undo))
	for i, c := range h.undo {
		out[i] = c.Opcode()
	}
	return out
}

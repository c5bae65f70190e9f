// Package command wraps every scene graph mutation in an undoable command.
// Commands are grouped into transactions and kept on an undo/redo history.
package command

import (
	"errors"
	"fmt"

	"github.com/inamate/easel/internal/typeid"
)

var (
	// ErrInvariant marks a failure that indicates corrupted state or a bug in
	// the caller. It aborts the enclosing group.
	ErrInvariant = errors.New("invariant violation")
	// ErrState is returned when a command is executed or undone out of turn.
	ErrState = errors.New("command in wrong state")
	// ErrParse is returned for malformed opcode text.
	ErrParse = errors.New("malformed opcode")
)

// Command is one reversible mutation. Undo must exactly invert Execute.
type Command interface {
	Execute() error
	Undo() error
	// Opcode serializes the command; see Parse.
	Opcode() string
}

func invariant(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInvariant, err)
}

// Status is the lifecycle state of a group.
type Status int

const (
	Unexecuted Status = iota
	Executed
	Undone
)

func (s Status) String() string {
	switch s {
	case Executed:
		return "executed"
	case Undone:
		return "undone"
	}
	return "unexecuted"
}

type conditional struct {
	guard func() bool
	cmd   Command
}

// Group is a transaction of commands. Unconditional commands run in
// insertion order; each conditional command runs afterwards only if its guard
// holds at that moment. Undo reverses exactly the commands that ran.
type Group struct {
	ID string

	commands     []Command
	conditionals []conditional
	realized     []Command
	status       Status
}

// NewGroup creates an empty group with a fresh id.
func NewGroup() *Group {
	return &Group{ID: typeid.NewGroupID()}
}

// Add appends an unconditional command.
func (gr *Group) Add(c Command) *Group {
	gr.commands = append(gr.commands, c)
	return gr
}

// AddConditional appends a command that runs only when guard reports true
// after every unconditional command has executed.
func (gr *Group) AddConditional(guard func() bool, c Command) *Group {
	gr.conditionals = append(gr.conditionals, conditional{guard: guard, cmd: c})
	return gr
}

// Len returns the number of commands, conditional ones included.
func (gr *Group) Len() int { return len(gr.commands) + len(gr.conditionals) }

// Status returns the group's lifecycle state.
func (gr *Group) Status() Status { return gr.status }

// Realized returns the commands that ran during the last Execute.
func (gr *Group) Realized() []Command { return append([]Command(nil), gr.realized...) }

// Execute runs the group. A failing command aborts the group without rolling
// back the commands that already ran.
func (gr *Group) Execute() error {
	if gr.status == Executed {
		return fmt.Errorf("execute group %s: %w", gr.ID, ErrState)
	}
	gr.realized = gr.realized[:0]
	for _, c := range gr.commands {
		if err := c.Execute(); err != nil {
			return fmt.Errorf("group %s: %w", gr.ID, err)
		}
		gr.realized = append(gr.realized, c)
	}
	for _, cc := range gr.conditionals {
		if !cc.guard() {
			continue
		}
		if err := cc.cmd.Execute(); err != nil {
			return fmt.Errorf("group %s: %w", gr.ID, err)
		}
		gr.realized = append(gr.realized, cc.cmd)
	}
	gr.status = Executed
	return nil
}

// Undo reverses the realized commands in reverse order.
func (gr *Group) Undo() error {
	if gr.status != Executed {
		return fmt.Errorf("undo group %s: %w", gr.ID, ErrState)
	}
	for i := len(gr.realized) - 1; i >= 0; i-- {
		if err := gr.realized[i].Undo(); err != nil {
			return fmt.Errorf("group %s: %w", gr.ID, err)
		}
	}
	gr.status = Undone
	return nil
}

// Opcode serializes the realized commands, or every unconditional command
// when the group has not run.
func (gr *Group) Opcode() string {
	cmds := gr.realized
	if gr.status == Unexecuted {
		cmds = gr.commands
	}
	members := make([]string, len(cmds))
	for i, c := range cmds {
		members[i] = escape(c.Opcode())
	}
	return newTokens(actionGroup).
		add("id", gr.ID).
		addRaw("commands", joinMembers(members)).
		String()
}

package collab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/easel/internal/engine"
)

var ErrNotHost = errors.New("only the studio host may submit commands")

// StudioState holds the authoritative construction of a studio: an engine
// that every accepted opcode is replayed on, and the opcode log itself.
type StudioState struct {
	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	opLog     []string
	dirty     bool
}

// NewStudioState rebuilds a studio from its persisted opcode log.
func NewStudioState(ops []string, historyLimit int) (*StudioState, error) {
	e := engine.NewEngine(historyLimit)
	if err := e.Replay(ops); err != nil {
		return nil, fmt.Errorf("replay studio log: %w", err)
	}
	return &StudioState{
		engine:    e,
		serverSeq: int64(len(ops)),
		opLog:     append([]string(nil), ops...),
	}, nil
}

// Apply executes opcode on the studio engine and appends it to the log. A
// rejected opcode leaves the log unchanged.
func (s *StudioState) Apply(opcode string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.ApplyOpcode(opcode); err != nil {
		return 0, err
	}
	s.serverSeq++
	s.opLog = append(s.opLog, opcode)
	s.dirty = true
	return s.serverSeq, nil
}

// Log returns a copy of the opcode log and the current sequence number.
func (s *StudioState) Log() ([]string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opLog...), s.serverSeq
}

// Snapshot returns the engine's object views as JSON.
func (s *StudioState) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// TakeDirty returns the log if it changed since the last call.
func (s *StudioState) TakeDirty() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil, false
	}
	s.dirty = false
	return append([]string(nil), s.opLog...), true
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}

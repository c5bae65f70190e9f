package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudioStateApply(t *testing.T) {
	s, err := NewStudioState(nil, 0)
	require.NoError(t, err)

	op := pointOpcode(t)
	seq, err := s.Apply(op)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	_, err = s.Apply("action=Bogus")
	assert.Error(t, err)

	ops, seq := s.Log()
	assert.Equal(t, []string{op}, ops)
	assert.Equal(t, int64(1), seq)
	assert.Contains(t, s.Snapshot(), `"P1"`)
}

func TestStudioStateDirty(t *testing.T) {
	s, err := NewStudioState([]string{pointOpcode(t)}, 0)
	require.NoError(t, err)

	_, dirty := s.TakeDirty()
	assert.False(t, dirty, "replayed log is already persisted")

	_, err = s.Apply("action=Undo")
	require.NoError(t, err)

	ops, dirty := s.TakeDirty()
	assert.True(t, dirty)
	assert.Len(t, ops, 2)

	_, dirty = s.TakeDirty()
	assert.False(t, dirty)
}

func TestStudioStateBadLog(t *testing.T) {
	_, err := NewStudioState([]string{"garbage"}, 0)
	assert.Error(t, err)
}

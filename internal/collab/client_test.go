package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/easel/internal/auth"
)

func TestDecodeStampsIdentity(t *testing.T) {
	c := testClient(nil, "s1", "c1", auth.RoleViewer)

	msg, err := c.decode([]byte(`{"type":"op.submit","clientId":"host","userId":"owner","studioId":"other","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeOpSubmit, msg.Type)
	assert.Equal(t, "c1", msg.ClientID)
	assert.Equal(t, "user-c1", msg.UserID)
	assert.Equal(t, "s1", msg.StudioID)
	assert.False(t, c.IsHost())

	_, err = c.decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestSendDropsWhenFull(t *testing.T) {
	c := &Client{send: make(chan []byte, 1), ClientID: "c1"}
	c.Send(newMessage(TypeError, ErrorPayload{Message: "one"}))
	c.Send(newMessage(TypeError, ErrorPayload{Message: "two"}))
	assert.Len(t, c.send, 1)
}

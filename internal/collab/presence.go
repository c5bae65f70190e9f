package collab

import (
	"maps"
	"sync"

	"github.com/inamate/easel/internal/geom"
)

// audience is the presence table of one room, keyed by client id. Viewers
// are anonymous, so the client id is the only key that is always unique.
type audience struct {
	mu       sync.RWMutex
	byClient map[string]*PresencePayload
}

func newAudience() *audience {
	return &audience{byClient: make(map[string]*PresencePayload)}
}

// report records what c last told the room and returns the stored entry.
// Identity fields always come from the connection, never from the payload,
// and a cursor is kept only as a unit vector.
func (a *audience) report(c *Client, p PresencePayload) *PresencePayload {
	p.ClientID = c.ClientID
	p.DisplayName = c.DisplayName
	p.Role = c.Role
	if p.Cursor != nil {
		if p.Cursor.IsZero(geom.Epsilon) {
			p.Cursor = nil
		} else {
			v := p.Cursor.Normalize()
			p.Cursor = &v
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.byClient[c.ClientID] = &p
	return &p
}

func (a *audience) forget(clientID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.byClient, clientID)
}

func (a *audience) snapshot() map[string]*PresencePayload {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.byClient)
}

// stateMessage returns the presence.state message for a joining client, or
// nil when nobody has reported yet.
func (a *audience) stateMessage() *Message {
	all := a.snapshot()
	if len(all) == 0 {
		return nil
	}
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: all})
}

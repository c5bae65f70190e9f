package collab

import (
	"encoding/json"

	"github.com/inamate/easel/internal/geom"
)

type Message struct {
	Type     string          `json:"type"`
	StudioID string          `json:"studioId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// PresencePayload is where a client is pointing on the sphere and what it
// has selected. The hub fills in the identity fields.
type PresencePayload struct {
	Cursor      *geom.Vector3 `json:"cursor,omitempty"`
	Selection   []string      `json:"selection,omitempty"`
	ClientID    string        `json:"clientId,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	Role        string        `json:"role,omitempty"`
}

// PresenceStatePayload maps client ids to their last reported presence.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Construction sync
	TypeDocSync = "doc.sync"

	// Opcode message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// WelcomePayload is sent first on every connection.
type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Role     string `json:"role"`
}

// DocSyncPayload carries the studio's full opcode log. Replaying it on an
// empty engine reproduces the host's construction.
type DocSyncPayload struct {
	Opcodes   []string `json:"opcodes"`
	ServerSeq int64    `json:"serverSeq"`
}

// OpSubmitPayload is the payload for op.submit messages. Opcode is a command
// opcode or one of the Undo and Redo opcodes.
type OpSubmitPayload struct {
	ID     string `json:"id"`
	Opcode string `json:"opcode"`
}

// OpAckPayload is the payload for op.ack messages
type OpAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OpNackPayload is the payload for op.nack messages
type OpNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OpBroadcastPayload is the payload for op.broadcast messages
type OpBroadcastPayload struct {
	Opcode    string `json:"opcode"`
	UserID    string `json:"userId"`
	ServerSeq int64  `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}

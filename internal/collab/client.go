package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/easel/internal/auth"
)

const (
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	maxFrameBytes = 256 * 1024
	sendBuffer    = 256
)

// Client is one websocket connection to a studio. Only a host may submit
// opcodes; viewers receive the log and the broadcasts.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	UserID      string
	DisplayName string
	StudioID    string
	ClientID    string
	Role        string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, studioID, clientID, role string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		StudioID:    studioID,
		ClientID:    clientID,
		Role:        role,
	}
}

// IsHost reports whether the client may publish commands.
func (c *Client) IsHost() bool { return c.Role == auth.RoleHost }

func (c *Client) log() *slog.Logger {
	return slog.With("studio", c.StudioID, "client", c.ClientID, "role", c.Role)
}

// ReadPump feeds incoming frames to the hub until the connection closes,
// then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxFrameBytes)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if !closedNormally(err) {
				c.log().Debug("read failed", "error", err)
			}
			return
		}
		msg, err := c.decode(data)
		if err != nil {
			c.log().Warn("invalid message", "error", err)
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

// decode parses a frame and stamps it with the connection's identity, which
// the sender cannot choose.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.StudioID = c.StudioID
	return &msg, nil
}

func closedNormally(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, frame); err != nil {
				c.log().Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, frame)
}

// Send queues msg without blocking. A slow client loses messages rather than
// stalling the room; it can resync from doc.sync on reconnect.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log().Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.log().Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// LogLoader returns the persisted opcode log of a studio.
type LogLoader func(ctx context.Context, studioID string) ([]string, error)

// LogSaver persists the full opcode log of a studio.
type LogSaver func(ctx context.Context, studioID string, ops []string) error

type Room struct {
	studioID string
	clients  map[string]*Client // clientID -> client
	audience *audience
	state    *StudioState
}

func NewRoom(studioID string, state *StudioState) *Room {
	return &Room{
		studioID: studioID,
		clients:  make(map[string]*Client),
		audience: newAudience(),
		state:    state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // studioID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan chan struct{}

	load         LogLoader
	save         LogSaver
	historyLimit int
}

// NewHub creates a hub. load and save may be nil for studios that live only
// in memory.
func NewHub(load LogLoader, save LogSaver, historyLimit int) *Hub {
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		stop:         make(chan chan struct{}),
		load:         load,
		save:         save,
		historyLimit: historyLimit,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case done := <-h.stop:
			h.saveAll()
			close(done)
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Stop saves every studio with unsaved opcodes and stops the hub loop.
func (h *Hub) Stop() {
	done := make(chan struct{})
	h.stop <- done
	<-done
}

// Room returns the live room of a studio.
func (h *Hub) Room(studioID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[studioID]
	return r, ok
}

// State returns the authoritative studio state.
func (r *Room) State() *StudioState { return r.state }

func (h *Hub) openRoom(studioID string) (*Room, error) {
	var ops []string
	if h.load != nil {
		var err error
		// Runs in the hub goroutine, outside any request context.
		if ops, err = h.load(context.Background(), studioID); err != nil {
			return nil, err
		}
	}
	state, err := NewStudioState(ops, h.historyLimit)
	if err != nil {
		return nil, err
	}
	return NewRoom(studioID, state), nil
}

// addClient runs on the hub goroutine, the only writer of h.rooms, so a room
// can be loaded without holding the lock.
func (h *Hub) addClient(client *Client) {
	room, ok := h.Room(client.StudioID)
	if !ok {
		var err error
		if room, err = h.openRoom(client.StudioID); err != nil {
			slog.Error("open studio", "studio", client.StudioID, "error", err)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "studio unavailable"}))
			return
		}
	}
	h.mu.Lock()
	h.rooms[client.StudioID] = room
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, Role: client.Role}))

	ops, seq := room.state.Log()
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Opcodes: ops, ServerSeq: seq}))

	if stateMsg := room.audience.stateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
		Role:        client.Role,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.StudioID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "studio", client.StudioID, "role", client.Role)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.StudioID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.audience.forget(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.StudioID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID, UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.StudioID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "studio", client.StudioID)
}

func (h *Hub) saveRoom(room *Room) {
	if h.save == nil {
		return
	}
	ops, dirty := room.state.TakeDirty()
	if !dirty {
		return
	}
	if err := h.save(context.Background(), room.studioID, ops); err != nil {
		slog.Error("save studio", "studio", room.studioID, "error", err)
		return
	}
	slog.Info("studio saved", "studio", room.studioID, "opcodes", len(ops))
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err, "client", sender.ClientID)
		return
	}

	room, ok := h.Room(sender.StudioID)
	if !ok {
		return
	}

	stored := room.audience.report(sender, presence)

	outMsg := newMessage(TypePresenceUpdate, stored)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.StudioID, outMsg, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OpSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err)
		sender.Send(newMessage(TypeOpNack, OpNackPayload{Reason: "invalid payload"}))
		return
	}

	if !sender.IsHost() {
		sender.Send(newMessage(TypeOpNack, OpNackPayload{OperationID: submit.ID, Reason: ErrNotHost.Error()}))
		return
	}

	room, ok := h.Room(sender.StudioID)
	if !ok {
		return
	}

	seq, err := room.state.Apply(submit.Opcode)
	if err != nil {
		slog.Warn("opcode rejected", "studio", sender.StudioID, "error", err)
		sender.Send(newMessage(TypeOpNack, OpNackPayload{OperationID: submit.ID, Reason: err.Error()}))
		return
	}

	ack := newMessage(TypeOpAck, OpAckPayload{
		OperationID:     submit.ID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OpBroadcastPayload{
		Opcode:    submit.Opcode,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.StudioID, out, sender.ClientID)
}

func (h *Hub) broadcastToRoom(studioID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[studioID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

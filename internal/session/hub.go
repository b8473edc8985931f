package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/vizscene/internal/sample"
	"github.com/inamate/vizscene/internal/typeid"
)

type member struct {
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
}

// Hub tracks connected clients and runs one Session per client.
type Hub struct {
	mu         sync.RWMutex
	members    map[string]*member // sessionID -> member
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	opts       []Option
}

// NewHub returns a hub whose sessions are built with opts.
func NewHub(opts ...Option) *Hub {
	return &Hub{
		members:    make(map[string]*member),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		opts:       opts,
	}
}

// NewClient wraps conn in a client with a fresh session. The client is not
// live until it is registered.
func (h *Hub) NewClient(conn *websocket.Conn) *Client {
	c := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		ClientID: uuid.New().String(),
	}
	c.session = New(typeid.NewSessionID(), c.Send, h.opts...)
	return c
}

// Run serves registrations until ctx is canceled, then stops every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.mu.Lock()
			for id, m := range h.members {
				m.cancel()
				<-m.done
				delete(h.members, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	sessCtx, cancel := context.WithCancel(ctx)
	m := &member{client: client, cancel: cancel, done: make(chan struct{})}

	h.mu.Lock()
	h.members[client.session.ID()] = m
	h.mu.Unlock()

	go func() {
		defer close(m.done)
		client.session.Run(sessCtx)
	}()

	payload, _ := json.Marshal(WelcomePayload{
		SessionID: client.session.ID(),
		ClientID:  client.ClientID,
		Samples:   sample.Names(),
	})
	client.Send(&Message{
		Type:      TypeWelcome,
		SessionID: client.session.ID(),
		ClientID:  client.ClientID,
		Payload:   payload,
	})

	slog.Info("client joined", "client", client.ClientID, "session", client.session.ID())
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	m, ok := h.members[client.session.ID()]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.members, client.session.ID())
	h.mu.Unlock()

	// The session goroutine is the only other sender, so it must be gone
	// before the channel closes.
	m.cancel()
	<-m.done
	close(client.send)

	slog.Info("client left", "client", client.ClientID, "session", client.session.ID())
}

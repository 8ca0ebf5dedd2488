package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/events"
)

// Client is one live-feed subscriber. The connection handler owns the
// socket and drains Send.
type Client struct {
	ID   string
	Send chan CatalogResponse
}

// NewClient creates a client with a bounded outbound buffer.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	return &Client{ID: id, Send: make(chan CatalogResponse, buffer)}
}

// Hub fans catalog events out to every connected client. It implements
// events.Sink; a client whose buffer is full is disconnected rather than
// allowed to stall the broadcast.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	broadcast chan events.Event
	log       zerolog.Logger
}

// NewHub creates a Hub. bufferSize bounds pending broadcasts.
func NewHub(bufferSize int, log zerolog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan events.Event, bufferSize),
		log:       log.With().Str("component", "ws_hub").Logger(),
	}
}

// Emit implements events.Sink. Events are dropped when nobody listens or
// the broadcast buffer is full.
func (h *Hub) Emit(e events.Event) {
	if h.ClientCount() == 0 {
		return
	}
	select {
	case h.broadcast <- e:
	default:
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Info().Str("client_id", c.ID).Int("clients", total).Msg("Client registered")
}

// Unregister removes a client and closes its Send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.log.Info().Str("client_id", c.ID).Int("clients", total).Msg("Client unregistered")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run delivers broadcasts until ctx is cancelled, then disconnects everyone.
// Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case e := <-h.broadcast:
			h.deliver(NewCatalogResponse(e))
		}
	}
}

func (h *Hub) deliver(msg CatalogResponse) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn().Str("client_id", c.ID).Msg("Dropping slow client")
		h.Unregister(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
	}
}

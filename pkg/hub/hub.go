package hub

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 64
)

// Hub tracks connected clients and broadcasts messages to all of them.
// Slow clients whose buffer fills are dropped rather than blocking the loop.
type Hub struct {
	name string
	log  *slog.Logger

	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	count   int
	running atomic.Bool
	dropped atomic.Uint64
}

// New creates a hub. A nil logger discards output.
func New(name string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		name:       name,
		log:        log.With("hub", name),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.setCount(0)
		h.log.Info("hub stopped", "dropped_clients", h.Dropped())
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.log.Info("client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount(len(h.clients))
			h.log.Info("client disconnected", "clients", len(h.clients))

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					h.dropped.Add(1)
					h.log.Warn("dropped slow client")
				}
			}
			h.setCount(len(h.clients))
		}
	}
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Broadcast queues msg for all clients. It never blocks; when the queue is
// full the message is discarded and false is returned.
func (h *Hub) Broadcast(msg Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.log.Warn("broadcast queue full, dropping message")
		return false
	}
}

// Publish encodes v under topic and broadcasts it.
func (h *Hub) Publish(topic string, v any) error {
	msg, err := Encode(topic, v)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Dropped returns how many slow clients have been disconnected.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Running reports whether Run is active.
func (h *Hub) Running() bool { return h.running.Load() }

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

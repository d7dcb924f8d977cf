// Package feed relays recipe document events to websocket clients.
package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/metrics"
)

const sendBuffer = 64

// Hub tracks connected clients and broadcasts every recipe event to them.
type Hub struct {
	sub    events.Subscriber
	logger *slog.Logger

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	stopped    chan struct{}
}

// NewHub creates a Hub fed by sub.
func NewHub(sub events.Subscriber, logger *slog.Logger) *Hub {
	return &Hub{
		sub:        sub,
		logger:     logger.With("system", "feed"),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBuffer),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Handler() *Handler {
	return NewHandler(h, h.logger)
}

// Start subscribes to recipe events and runs the hub loop until the
// lifecycle context is cancelled.
func (h *Hub) Start(lc *lifecycle.Coordinator) error {
	topic := events.CollectionTopics(recipes.Collection)

	msgs, cancel, err := h.sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	h.logger.Info("starting feed hub", "topic", topic)

	go func() {
		h.run(lc.Context())
		close(h.stopped)
	}()
	go h.relay(lc.Context(), msgs)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cancel()
		<-h.stopped
		h.logger.Info("feed hub stopped")
	})

	return nil
}

// join registers c with the running hub. It reports false when the
// request ends or the hub stops first.
func (h *Hub) join(ctx context.Context, c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-ctx.Done():
		return false
	case <-h.stopped:
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) relay(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case h.broadcast <- raw:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			metrics.FeedClients.Inc()
			h.logger.Debug("feed client connected", "remote", c.remote, "clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Debug("feed client disconnected", "remote", c.remote, "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("feed client lagging, disconnecting", "remote", c.remote)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	metrics.FeedClients.Dec()
}

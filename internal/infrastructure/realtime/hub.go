// Package realtime pushes return lifecycle events to websocket subscribers.
package realtime

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/erp/returns/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxMessageSize  = 512
	broadcastBuffer = 256
)

// ErrHubStopped is returned when a subscriber arrives after Run has exited
var ErrHubStopped = errors.New("realtime hub stopped")

type frame struct {
	locationID uuid.UUID
	data       []byte
}

// Hub fans lifecycle events out to connected websocket clients. It is a
// shared.EventHandler, so subscribing it to the event bus is all the wiring
// a publisher needs.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan frame
	done       chan struct{}
	count      int
	countMu    sync.RWMutex

	serializer *event.EventSerializer
	upgrader   websocket.Upgrader
	cfg        config.RealtimeConfig
	logger     *zap.Logger
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(cfg config.RealtimeConfig, serializer *event.EventSerializer, logger *zap.Logger) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if serializer == nil {
		serializer = event.NewReturnEventSerializer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan frame, broadcastBuffer),
		done:       make(chan struct{}),
		serializer: serializer,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "realtime_hub")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts same-origin requests, plus any origin in AllowedOrigins.
// "*" accepts everything.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin) {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Run owns the client set until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			close(client.send)
		}
		h.clients = nil
		h.setCount(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Debug("Websocket client connected", zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.setCount(len(h.clients))
				h.logger.Debug("Websocket client disconnected", zap.Int("clients", len(h.clients)))
			}
		case f := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(f.locationID) {
					continue
				}
				select {
				case client.send <- f.data:
				default:
					// a client that cannot keep up is dropped rather than stalling the rest
					delete(h.clients, client)
					close(client.send)
					h.setCount(len(h.clients))
					h.logger.Warn("Dropped slow websocket client")
				}
			}
		}
	}
}

// Handle implements shared.EventHandler. It never blocks the publisher: when
// the broadcast queue is full the frame is dropped.
func (h *Hub) Handle(ctx context.Context, evt shared.DomainEvent) error {
	lifecycle, ok := evt.(returns.LifecycleEvent)
	if !ok {
		return nil
	}
	data, err := h.serializer.Serialize(evt)
	if err != nil {
		return err
	}
	f := frame{locationID: lifecycle.Snapshot().LocationID, data: data}
	select {
	case h.broadcast <- f:
	case <-h.done:
	default:
		h.logger.Warn("Realtime broadcast queue full, dropping event",
			zap.String("event_type", evt.EventType()),
			zap.String("return_id", evt.AggregateID().String()),
		)
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (h *Hub) EventTypes() []string {
	return returns.LifecycleEventTypes()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.countMu.Lock()
	h.count = n
	h.countMu.Unlock()
}

// Serve upgrades the request and streams events to it. A non-nil
// locationID restricts the stream to that location.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, locationID *uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		return err
	}
	client := &Client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, h.cfg.SendBuffer),
		locationID: locationID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return ErrHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

var _ shared.EventHandler = (*Hub)(nil)

// Package hub fans broker events out to connected live viewers. One
// goroutine owns the connection set; clients come and go through channels,
// so the set needs no lock.
package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

const textMessage = 1 // RFC 6455 text frame

// Conn is the transport a viewer connection must provide. It is satisfied
// by *websocket.Conn and by test fakes.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const sendBuffer = 64

type client struct {
	conn Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

// stop makes the client's writer exit. Safe to call from any goroutine,
// any number of times.
func (c *client) stop() {
	c.once.Do(func() { close(c.quit) })
}

// trySend enqueues a frame without blocking. It reports false when the
// client is gone or its buffer is full.
func (c *client) trySend(data []byte) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks viewer connections and broadcasts events to all of them
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	clients    map[*client]struct{}
	count      atomic.Int64
	logger     *logging.Logger
}

// New creates a Hub. Call Run in its own goroutine before serving
// connections.
func New(logger *logging.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		logger:     logger.With("component", "hub"),
	}
}

// Run owns the connection set until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			if data, err := json.Marshal(models.NewConnectedEvent()); err == nil {
				c.trySend(data)
			}
			h.logger.Debug("Viewer connected", "viewers", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.stop()
			}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("Viewer disconnected", "viewers", len(h.clients))

		case data := <-h.broadcast:
			for c := range h.clients {
				if !c.trySend(data) {
					// slow or dead viewer, drop it rather than stall the rest
					delete(h.clients, c)
					c.stop()
				}
			}
			h.count.Store(int64(len(h.clients)))

		case <-h.done:
			for c := range h.clients {
				c.stop()
			}
			h.clients = make(map[*client]struct{})
			h.count.Store(0)
			return
		}
	}
}

// Stop shuts the hub down and disconnects all viewers
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast sends an event to every connected viewer. Marshalling failures
// are logged and the event is dropped.
func (h *Hub) Broadcast(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Viewers returns the current connection count
func (h *Hub) Viewers() int {
	return int(h.count.Load())
}

// ServeConn registers the connection and pumps it until the viewer
// disconnects. It blocks, so call it from the connection's handler
// goroutine.
func (h *Hub) ServeConn(conn Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		quit: make(chan struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.stop()
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			// keepalive replies go straight to the sender, not the room
			if reply, err := json.Marshal(models.NewPongEvent()); err == nil {
				c.trySend(reply)
			}
		}
	}
}

func (h *Hub) writePump(c *client) {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(textMessage, data); err != nil {
				c.stop()
				c.conn.Close()
				return
			}
		case <-c.quit:
			return
		}
	}
}

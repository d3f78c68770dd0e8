package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mauv0809/matchdesk/internal/controller"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/view"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Display surfaces only listen; anything larger than this from a peer is dropped.
	maxMessageSize = 512

	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Views are read-only projections, any origin may watch them.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// viewMessage is pushed to a websocket client after every change.
type viewMessage struct {
	View      view.View `json:"view"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one websocket connection following a single view.
type Client struct {
	ID   string
	View view.View
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans local record changes out to websocket clients, rendering the view each one follows.
type Hub struct {
	ctrl *controller.Controller

	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan match.Record
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(ctrl *controller.Controller) *Hub {
	return &Hub{
		ctrl:       ctrl,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan match.Record, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run listens for controller changes until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	unsubscribe := h.ctrl.Subscribe(h.Broadcast)
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = true
			h.clientsMu.Unlock()
			log.Debug("Websocket client connected", "client", c.ID, "view", c.View, "total", h.ClientCount())
		case c := <-h.unregister:
			h.remove(c)
		case rec := <-h.broadcast:
			h.fanout(rec)
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues rec for delivery without blocking the writer.
func (h *Hub) Broadcast(rec match.Record) {
	select {
	case h.broadcast <- rec:
	default:
		log.Warn("Websocket broadcast buffer full, dropping update")
	}
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Debug("Websocket client disconnected", "client", c.ID, "total", len(h.clients))
	}
}

func (h *Hub) fanout(rec match.Record) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	// Render each view once per change.
	rendered := make(map[view.View][]byte)
	for _, c := range clients {
		msg, ok := rendered[c.View]
		if !ok {
			var err error
			msg, err = encodeView(c.View, rec)
			if err != nil {
				log.Error("Failed to render view", "error", err, "view", c.View)
				continue
			}
			rendered[c.View] = msg
		}
		if !c.trySend(msg) {
			log.Warn("Websocket client too slow, dropping update", "client", c.ID)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func encodeView(v view.View, rec match.Record) ([]byte, error) {
	payload, err := view.Render(v, rec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(viewMessage{View: v, Payload: payload, Timestamp: time.Now()})
}

func (c *Client) trySend(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// readPump discards peer messages and keeps the connection alive via pongs.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("Websocket client closed unexpectedly", "client", c.ID, "error", err)
			}
			return
		}
	}
}

// writePump pumps rendered views from the hub to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("Websocket write failed", "client", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketHandler upgrades the request and streams the view named by ?view= (default tracker).
func (s *Server) WebSocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := view.Tracker
		if name := r.URL.Query().Get("view"); name != "" {
			parsed, err := view.Parse(name)
			if err != nil {
				writeError(w, err)
				return
			}
			v = parsed
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Websocket upgrade failed", "error", err)
			return
		}

		c := &Client{
			ID:   uuid.NewString(),
			View: v,
			conn: conn,
			send: make(chan []byte, sendBufferSize),
			hub:  s.Hub,
		}
		// Start from the current state so the surface does not wait for the next change.
		if msg, err := encodeView(v, s.Controller.Current()); err == nil {
			c.trySend(msg)
		}
		if !s.Hub.Register(c) {
			conn.Close()
			return
		}

		go c.writePump()
		go c.readPump()
	}
}

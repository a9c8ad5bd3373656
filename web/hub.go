package web

import (
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessageType identifies a websocket message
type MessageType string

const (
	MessageTypeStatus     MessageType = "status"
	MessageTypeInvocation MessageType = "invocation"
	MessageTypeResult     MessageType = "result"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope for all websocket traffic from the server
type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// StatusMessage reports the host status
type StatusMessage struct {
	Status string `json:"status"`
}

// ResultMessage answers a send request from one client
type ResultMessage struct {
	Result int `json:"result"`
}

// ErrorMessage answers a request that could not be invoked
type ErrorMessage struct {
	Error string `json:"error"`
}

// request is a send_ctrl_key call sent by a websocket client
type request struct {
	Args json.RawMessage `json:"args"`
}

// Hub maintains connected clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a hub; call Run to start it
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Stop shuts the hub down and disconnects all clients
func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastMessage sends msg to every connected client
func (h *Hub) BroadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal websocket message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		slog.Warn("Websocket broadcast queue full, dropping message", "type", msg.Type)
	}
}

// Client is a single websocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	// send carries broadcasts and is closed by the hub
	send chan []byte
	// replies carries answers to this client's own requests
	replies chan []byte
	handle  func(request) Message
}

func newClient(hub *Hub, conn *websocket.Conn, handle func(request) Message) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		replies: make(chan []byte, 16),
		handle:  handle,
	}
}

// readPump reads send requests from the connection and queues the replies
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var req request
		var reply Message
		if err := json.Unmarshal(data, &req); err != nil {
			reply = Message{Type: MessageTypeError, Data: ErrorMessage{Error: "invalid request"}}
		} else {
			reply = c.handle(req)
		}

		out, err := json.Marshal(reply)
		if err != nil {
			slog.Error("Failed to marshal websocket reply", "error", err)
			continue
		}

		select {
		case c.replies <- out:
		default:
			slog.Warn("WebSocket client send buffer full, dropping reply")
		}
	}
}

// writePump writes queued messages and keeps the connection alive
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case reply := <-c.replies:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, reply); err != nil {
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

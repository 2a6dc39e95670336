package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"realtime-chat-be/internal/dto"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserID associated with this connection, taken from the handshake JWT.
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// room the client is joined to; uuid.Nil when none. Guarded by Hub.mu.
	room uuid.UUID

	sendMu sync.Mutex
	closed bool
}

// enqueue puts a frame on the outbound buffer. Returns false when the
// client is closed or the buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

// close closes the outbound channel exactly once. Enqueues racing with
// close see the flag instead of a closed channel.
func (c *Client) close() {
	c.sendMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.sendMu.Unlock()
}

// SendEvent queues an envelope on the client's outbound buffer. A client
// that cannot keep up is unregistered rather than allowed to block the hub.
func (c *Client) SendEvent(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(dto.SocketEnvelope{Event: event, Data: data})
	if err != nil {
		return
	}

	if !c.enqueue(frame) {
		// Slow consumer. Dropping the connection must not block the
		// caller, which may be the hub's own run loop.
		go func() { c.Hub.unregister <- c }()
	}
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}

		var envelope dto.SocketEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			c.SendEvent(dto.EventError, dto.ErrorPayload{Message: "malformed event envelope"})
			continue
		}
		c.Hub.Dispatch(c, envelope)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs wires a freshly upgraded connection into the hub.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uuid.UUID) {
	client := &Client{Hub: hub, Conn: conn, UserID: userID, Send: make(chan []byte, 256)}
	hub.register <- client

	go client.writePump()
	client.readPump()
}

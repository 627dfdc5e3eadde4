package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Handler processes decoded intents from a connection
type Handler interface {
	HandleMessage(ctx context.Context, client *Client, msg Inbound)
	HandleClose(client *Client)
}

// Client represents one WebSocket connection on behalf of one user.
// A connection subscribes to at most one room at a time.
type Client struct {
	ID   uuid.UUID
	User model.User

	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	mu  sync.RWMutex
	hub *Hub
}

// NewClient wraps an upgraded connection
func NewClient(user model.User, conn *websocket.Conn, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:     id,
		User:   user,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(slog.String("conn_id", id.String()), slog.String("user_id", string(user.ID))),
	}
}

// Send queues a message for delivery. Returns false if the client's
// buffer is full and the message was dropped (at-most-once, best-effort).
func (c *Client) Send(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.logger.Warn("message dropped - client buffer full")
		return false
	}
}

// SendEvent queues a typed event for delivery
func (c *Client) SendEvent(eventType model.EventType, data any) {
	c.Send(MarshalEvent(eventType, data))
}

// Room returns the id of the room this connection is subscribed to
func (c *Client) Room() (model.RoomID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.hub == nil {
		return "", false
	}
	return c.hub.roomID, true
}

// Hub returns the hub this connection is registered with, or nil
func (c *Client) Hub() *Hub {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hub
}

func (c *Client) setRoom(hub *Hub) {
	c.mu.Lock()
	c.hub = hub
	c.mu.Unlock()
}

// clearRoom detaches the client if it is still attached to the given hub
func (c *Client) clearRoom(hub *Hub) {
	c.mu.Lock()
	if c.hub == hub {
		c.hub = nil
	}
	c.mu.Unlock()
}

// ReadPump reads intents off the connection and dispatches them to the
// handler. It blocks until the connection drops and must run in the
// connection's own goroutine.
func (c *Client) ReadPump(ctx context.Context, handler Handler) {
	defer func() {
		handler.HandleClose(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendEvent(model.EventTransactionError, "Malformed message")
			continue
		}

		handler.HandleMessage(ctx, c, msg)
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// peer alive with pings. Must run in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

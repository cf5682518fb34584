package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/codec"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBufferSize = 256
)

type frame struct {
	data   []byte
	binary bool
}

// Client is one websocket connection. Its player name and room are set once
// it creates or joins a room.
type Client struct {
	ID string
	IP string

	server *Server
	conn   *websocket.Conn
	send   chan frame

	// framing of the last inbound frame; replies use the same
	framing atomic.Int32

	mu       sync.RWMutex
	name     string
	roomCode string
	closed   bool
}

// NewClient wraps an upgraded connection
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan frame, sendBufferSize),
	}
}

// ReadPump reads frames until the connection fails, then leaves the room
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.LogWarn("read error from %s: %v", c.ID, err)
			}
			return
		}

		f := codec.Text
		if kind == websocket.BinaryMessage {
			f = codec.Binary
		}
		c.framing.Store(int32(f))

		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			logger.LogWarn("⚠️ client %s (IP: %s) is sending too fast", c.ID, c.IP)
			c.SendMessage(apperrors.ToMessage(apperrors.ErrRateLimit))
			if c.server.messageLimiter.GetWarningCount(c.ID) > maxMessageWarnings {
				logger.LogWarn("🚫 client %s dropped for flooding", c.ID)
				return
			}
			continue
		}
		if warning {
			c.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "Rustig aan, je stuurt te veel berichten"))
		}

		msg, err := codec.Decode(data, f)
		if err != nil {
			logger.LogDebug("bad frame from %s: %v", c.ID, err)
			c.SendMessage(apperrors.ToMessage(apperrors.ErrInvalidMessage))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case fr, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			kind := websocket.TextMessage
			if fr.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, fr.data); err != nil {
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

// SendMessage queues msg in the client's current framing. A client whose
// queue is full is disconnected.
func (c *Client) SendMessage(msg *protocol.Message) {
	f := codec.Framing(c.framing.Load())
	data, err := codec.Encode(msg, f)
	if err != nil {
		logger.LogError("encode for %s: %v", c.ID, err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- frame{data: data, binary: f == codec.Binary}:
	default:
		logger.LogWarn("send buffer of %s is full, closing", c.ID)
		go c.Close()
	}
}

func (c *Client) handleDisconnect() {
	c.server.rooms.Leave(c)
	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.unregisterClient(c)
}

// Close stops the write pump, which closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) GetID() string {
	return c.ID
}

func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection timing. Pings go out well inside the pong window.
const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = pongTimeout * 9 / 10
	inboundLimit   = 512
	outboxCapacity = 256
)

// ErrClientSlow is returned when a client's outbox is full and the event is dropped
var ErrClientSlow = errors.New("client outbox is full")

// Client is one browser tab listening for ledger events. The server never
// expects application messages from it.
type Client struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	outbox chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:     uuid.NewString(),
		conn:   conn,
		hub:    hub,
		outbox: make(chan []byte, outboxCapacity),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues data without blocking. A closed client returns ErrClientClosed;
// a full outbox drops the event and returns ErrClientSlow.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.outbox <- data:
		return nil
	default:
		return ErrClientSlow
	}
}

// Close stops both pumps and closes the connection. Later calls do nothing.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// ReadPump drains inbound frames so pongs and close frames are processed.
// It unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(inboundLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

// WritePump writes queued events in order and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeTimeout))
			return

		case data := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

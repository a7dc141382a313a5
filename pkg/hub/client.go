package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// A preview frame that cannot be written in this time drops the viewer.
	writeWait = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum inbound message size; viewers only
	// send pongs and close frames
	maxMessageSize = 4 * 1024
)

// Conn is the subset of a websocket connection the hub uses.
// *websocket.Conn from gofiber/websocket satisfies it.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Client is one connected viewer.
type Client struct {
	hub  *Hub
	conn Conn
	send chan Message
}

// NewClient registers a viewer with the hub. It returns nil once the hub
// has been closed.
func NewClient(hub *Hub, conn Conn) *Client {
	client := &Client{
		hub:  hub,
		conn: conn,
		// A viewer more than this many updates behind is dropped.
		send: make(chan Message, 16),
	}
	select {
	case hub.register <- client:
		return client
	case <-hub.done:
		return nil
	}
}

// Run serves the viewer until its connection drops or the hub closes.
// Call it from the websocket handler; it blocks.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump only watches for pongs and disconnects.
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
		// Anything a viewer sends is discarded.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump is the connection's only writer.
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
				// Dropped or hub closed.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(message.frameType(), message.Data); err != nil {
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

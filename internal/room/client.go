package room

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 256
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
)

// Client wraps one live signaling connection. Every outbound frame goes
// through the buffered Send channel, so nothing that holds the registry lock
// ever blocks on a slow peer's socket.
type Client struct {
	conn      *websocket.Conn
	Send      chan []byte
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		Send: make(chan []byte, sendQueueSize),
	}
}

// Enqueue hands a frame to the write pump without blocking. Reports false
// when the queue is full and the frame was dropped.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

// Close shuts the connection down at most once, however many of the read
// pump, write pump and handler observe the disconnect.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with periodic pings. It is the connection's single writer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

// ReadLoop feeds every inbound frame to handle until the connection drops,
// then returns so the caller can run its cleanup exactly once.
func (c *Client) ReadLoop(handle func(frame []byte)) {
	defer c.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		handle(frame)
	}
}

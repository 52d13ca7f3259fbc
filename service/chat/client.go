package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SProject/logger"
)

const (
	writeDeadline = 5 * time.Second
	sendQueueSize = 64
)

// Client is one live websocket with its own buffered send queue. All
// writes go through the queue and a single write pump, so concurrent
// fan-outs never interleave on the socket.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Push enqueues a frame without blocking. A full queue means the client is
// too slow to keep up; the frame is dropped for this recipient only.
func (c *Client) Push(payload []byte) {
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		logger.Warnf("[chat] send queue full, dropping frame conn=%s", c.ID)
	}
}

// writePump drains the send queue. The first failed write closes the
// socket, which makes the read loop exit and run the disconnect path.
func (c *Client) writePump() {
	for {
		select {
		case payload := <-c.send:
			if err := c.write(payload); err != nil {
				logger.Infof("[chat] write failed conn=%s: %v", c.ID, err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) write(payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close is safe to call from any goroutine, any number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

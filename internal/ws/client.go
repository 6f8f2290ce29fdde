package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 3 * time.Second

	// Outbound queue depth per connection.
	sendBuffer = 32
)

// Client is the live handle for one authenticated websocket connection.
// Pushes go through a buffered channel drained by writeLoop, so fan-out
// callers never block on a slow peer.
type Client struct {
	userID int
	info   ConnInfo

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(userID int, conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{
		userID: userID,
		info:   info,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// UserID returns the authenticated user behind the connection.
func (c *Client) UserID() int {
	return c.userID
}

// Enqueue queues a payload for delivery. A client that cannot keep up is
// closed rather than allowed to stall other sessions.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		log.Printf("websocket send buffer full, closing conn=%s user=%d", c.info.ConnID, c.userID)
		c.close()
		return false
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error: %v", err)
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

package server

import (
	"net"
	"sync"

	"github.com/diegok/rundevrun-audio/internal/protocol"
)

// Client is a game connected to the audio server
type Client struct {
	ID    int
	Name  string
	conn  net.Conn
	Codec *protocol.Codec
	done  chan struct{}
	mu    sync.Mutex
}

// NewClient wraps an accepted connection
func NewClient(id int, conn net.Conn) *Client {
	return &Client{
		ID:    id,
		conn:  conn,
		Codec: protocol.NewCodec(conn),
		done:  make(chan struct{}),
	}
}

// SendDirect writes a message immediately
func (c *Client) SendDirect(msg *protocol.Message) error {
	return c.Codec.Encode(msg)
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}

	if c.conn != nil {
		c.conn.Close()
	}
}

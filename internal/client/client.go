package client

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/protocol"
)

const (
	sendBufferSize = 64
	connectTimeout = 5 * time.Second
)

// Client sends a game's audio events to a remote audio server. It
// implements game.Audio.
type Client struct {
	Name     string
	Patterns []string
	Error    chan error

	log       zerolog.Logger
	conn      net.Conn
	codec     *protocol.Codec
	mu        sync.Mutex
	connected bool
	dropped   int
	sendCh    chan protocol.Event
	done      chan struct{}
}

// NewClient creates a client that introduces itself as name
func NewClient(log zerolog.Logger, name string) *Client {
	return &Client{
		Name:   name,
		Error:  make(chan error, 1),
		log:    log.With().Str("component", "client").Logger(),
		sendCh: make(chan protocol.Event, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Connect dials the server at addr, sends Hello and waits for Welcome
// before returning.
func (c *Client) Connect(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return errors.Wrap(err, "failed to connect to audio server")
	}

	c.conn = conn
	c.codec = protocol.NewCodec(conn)

	hello := protocol.Message{
		Type:    protocol.MsgHello,
		Payload: protocol.Hello{Name: c.Name},
	}
	if err := c.codec.Encode(&hello); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to send hello")
	}

	conn.SetReadDeadline(time.Now().Add(connectTimeout))
	msg, err := c.codec.Decode()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to receive welcome")
	}
	conn.SetReadDeadline(time.Time{})

	if msg.Type != protocol.MsgWelcome {
		conn.Close()
		return errors.Errorf("expected welcome, got message type %d", msg.Type)
	}

	welcome, ok := msg.Payload.(protocol.Welcome)
	if !ok {
		conn.Close()
		return errors.New("invalid welcome payload")
	}

	if !welcome.Accepted {
		conn.Close()
		return errors.Errorf("rejected by audio server: %s", welcome.Reason)
	}

	c.Patterns = welcome.Patterns
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	go c.writeLoop()
	go c.watchLoop()

	c.log.Info().Str("addr", addr).Strs("patterns", welcome.Patterns).Msg("connected to audio server")
	return nil
}

// Dispatch queues an event for the server without blocking. Events are
// dropped while disconnected or when the queue is full.
func (c *Client) Dispatch(ev protocol.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		c.dropped++
		return
	}

	select {
	case c.sendCh <- ev:
	default:
		c.dropped++
	}
}

// Dropped returns how many events were never sent
func (c *Client) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// IsConnected returns true if the client is connected to the server.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close closes the connection to the server. Queued events not yet
// written are lost.
func (c *Client) Close() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if wasConnected {
		close(c.done)
		c.conn.Close()
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.sendCh:
			if err := c.codec.Encode(&protocol.Message{Type: protocol.MsgEvent, Payload: ev}); err != nil {
				c.fail(errors.Wrap(err, "send event"))
				return
			}
		}
	}
}

// watchLoop notices the server going away. The server sends nothing after
// Welcome, so any read result ends the connection.
func (c *Client) watchLoop() {
	if _, err := c.codec.Decode(); err != nil {
		c.fail(errors.Wrap(err, "connection lost"))
		return
	}
	c.fail(errors.New("unexpected message from audio server"))
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if !wasConnected {
		return
	}

	close(c.done)
	c.conn.Close()
	c.log.Warn().Err(err).Msg("audio server connection closed")

	select {
	case c.Error <- err:
	default:
	}
}

package server

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/game"
	"github.com/diegok/rundevrun-audio/internal/protocol"
)

const handshakeTimeout = 5 * time.Second

// Server plays the audio events sent by remote games
type Server struct {
	log      zerolog.Logger
	addr     string
	audio    game.Audio
	patterns []string

	listener net.Listener
	mu       sync.Mutex
	clients  map[int]*Client
	nextID   int
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server that will listen on addr and play every event
// it receives on a. patterns is advertised to games in the handshake.
func NewServer(log zerolog.Logger, addr string, a game.Audio, patterns []string) *Server {
	return &Server{
		log:      log.With().Str("component", "server").Logger(),
		addr:     addr,
		audio:    a,
		patterns: patterns,
		clients:  make(map[int]*Client),
		nextID:   1,
		done:     make(chan struct{}),
	}
}

// Start begins listening for connections
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrap(err, "failed to start server")
	}
	s.listener = listener
	s.log.Info().Str("addr", listener.Addr().String()).Msg("audio server listening")

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Addr returns the address the server listens on, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every connection and waits for the
// connection handlers to return.
func (s *Server) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Clients returns the number of open connections
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// GetServerAddresses returns the IPv4 addresses games on the local network
// can use to reach this server.
func (s *Server) GetServerAddresses() []string {
	var addresses []string
	if s.listener == nil {
		return addresses
	}

	port := 0
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return addresses
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil {
				addresses = append(addresses, fmt.Sprintf("%s:%d", ip.String(), port))
			}
		}
	}

	return addresses
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.Debug().Err(err).Msg("accept failed")
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		conn.Close()
		return
	default:
	}
	clientID := s.nextID
	s.nextID++
	client := NewClient(clientID, conn)
	s.clients[clientID] = client
	s.mu.Unlock()

	log := s.log.With().Int("client", clientID).Str("remote", conn.RemoteAddr().String()).Logger()
	defer s.handleDisconnect(clientID)

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	msg, err := client.Codec.Decode()
	if err != nil {
		log.Debug().Err(err).Msg("handshake failed")
		return
	}
	conn.SetReadDeadline(time.Time{})

	hello, ok := msg.Payload.(protocol.Hello)
	if msg.Type != protocol.MsgHello || !ok {
		client.SendDirect(&protocol.Message{
			Type:    protocol.MsgWelcome,
			Payload: protocol.Welcome{Accepted: false, Reason: "expected hello"},
		})
		return
	}

	client.Name = hello.Name
	if client.Name == "" {
		client.Name = fmt.Sprintf("game%d", clientID)
	}

	err = client.SendDirect(&protocol.Message{
		Type:    protocol.MsgWelcome,
		Payload: protocol.Welcome{Accepted: true, Patterns: s.patterns},
	})
	if err != nil {
		return
	}
	log.Info().Str("name", client.Name).Msg("game connected")

	for {
		msg, err := client.Codec.Decode()
		if err != nil {
			return
		}

		if err := s.handleMessage(msg); err != nil {
			log.Warn().Err(err).Msg("closing connection")
			return
		}
	}
}

func (s *Server) handleDisconnect(clientID int) {
	s.mu.Lock()
	client, exists := s.clients[clientID]
	delete(s.clients, clientID)
	s.mu.Unlock()

	if exists {
		client.Close()
		s.log.Debug().Int("client", clientID).Msg("game disconnected")
	}
}

func (s *Server) handleMessage(msg *protocol.Message) error {
	if msg.Type != protocol.MsgEvent {
		return errors.Errorf("unexpected message type %d", msg.Type)
	}
	ev, ok := msg.Payload.(protocol.Event)
	if !ok {
		return errors.Errorf("invalid event payload %T", msg.Payload)
	}

	s.audio.Dispatch(ev)
	return nil
}

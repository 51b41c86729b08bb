package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/client"
	"github.com/diegok/rundevrun-audio/internal/protocol"
)

type recorder struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (r *recorder) Dispatch(ev protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Event(nil), r.events...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startServer(t *testing.T) (*Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := NewServer(zerolog.Nop(), "127.0.0.1:0", rec, []string{"ambient", "gameOver", "running"})
	if err := srv.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, rec
}

func TestServer_DispatchesClientEvents(t *testing.T) {
	srv, rec := startServer(t)

	c := client.NewClient(zerolog.Nop(), "runner")
	if err := c.Connect(srv.Addr().String()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	if len(c.Patterns) != 3 {
		t.Errorf("expected 3 advertised patterns, got %v", c.Patterns)
	}

	sent := []protocol.Event{
		{Kind: protocol.EvPlayMusic, Pattern: "running"},
		{Kind: protocol.EvJump},
		{Kind: protocol.EvCollect, Item: "laptop"},
		{Kind: protocol.EvMusicVolume, Volume: 0.4},
	}
	for _, ev := range sent {
		c.Dispatch(ev)
	}

	waitFor(t, "events", func() bool { return len(rec.snapshot()) == len(sent) })

	got := rec.snapshot()
	for i := range sent {
		if got[i] != sent[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, sent[i], got[i])
		}
	}
}

func TestServer_RejectsMissingHello(t *testing.T) {
	srv, rec := startServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	codec := protocol.NewCodec(conn)
	if err := codec.Encode(&protocol.Message{Type: protocol.MsgEvent, Payload: protocol.Event{Kind: protocol.EvJump}}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := codec.Decode()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	welcome, ok := msg.Payload.(protocol.Welcome)
	if !ok || welcome.Accepted {
		t.Errorf("expected rejection, got %+v", msg.Payload)
	}
	if len(rec.snapshot()) != 0 {
		t.Error("expected the event before hello to be ignored")
	}
}

func TestServer_MalformedConnectionDoesNotAffectOthers(t *testing.T) {
	srv, rec := startServer(t)

	good := client.NewClient(zerolog.Nop(), "good")
	if err := good.Connect(srv.Addr().String()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer good.Close()

	bad, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer bad.Close()
	bad.Write([]byte("definitely not gob"))
	bad.(*net.TCPConn).CloseWrite()

	waitFor(t, "bad connection to close", func() bool { return srv.Clients() == 1 })

	good.Dispatch(protocol.Event{Kind: protocol.EvShoot})
	waitFor(t, "event from good client", func() bool { return len(rec.snapshot()) == 1 })
}

func TestServer_UnexpectedMessageClosesConnection(t *testing.T) {
	srv, _ := startServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	codec := protocol.NewCodec(conn)
	codec.Encode(&protocol.Message{Type: protocol.MsgHello, Payload: protocol.Hello{Name: "x"}})
	if _, err := codec.Decode(); err != nil {
		t.Fatalf("expected welcome, got %v", err)
	}

	codec.Encode(&protocol.Message{Type: protocol.MsgEvent, Payload: protocol.Hello{Name: "again"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := codec.Decode(); err == nil {
		t.Error("expected server to close the connection")
	}
}

func TestServer_StopDisconnectsClients(t *testing.T) {
	rec := &recorder{}
	srv := NewServer(zerolog.Nop(), "127.0.0.1:0", rec, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c := client.NewClient(zerolog.Nop(), "runner")
	if err := c.Connect(srv.Addr().String()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	srv.Stop()
	srv.Stop()

	select {
	case err := <-c.Error:
		if err == nil {
			t.Error("expected a connection error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected client to notice the server stopping")
	}
	if c.IsConnected() {
		t.Error("expected client to be disconnected")
	}
}

func TestServer_AddrBeforeStart(t *testing.T) {
	srv := NewServer(zerolog.Nop(), "127.0.0.1:0", &recorder{}, nil)
	if srv.Addr() != nil {
		t.Error("expected nil address before start")
	}
	if len(srv.GetServerAddresses()) != 0 {
		t.Error("expected no addresses before start")
	}
}

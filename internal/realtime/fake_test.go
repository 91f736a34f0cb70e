package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/gamecast-service/internal/metrics"
)

var errConnClosed = errors.New("connection closed")

// fakeServer answers requests the way the live feed does.
type fakeServer struct {
	mu      sync.Mutex
	frames  []Frame
	current CurrentState
	reject  map[string]string
	silent  bool
	// pushed right behind the ack of the keyed event
	after map[string][]UpdatePayload
	conn    *fakeConn
}

func newFakeServer() *fakeServer {
	return &fakeServer{reject: map[string]string{}, after: map[string][]UpdatePayload{}}
}

func (s *fakeServer) accept() *fakeConn {
	c := &fakeConn{server: s, in: make(chan Frame, 64), closed: make(chan struct{})}
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
	return c
}

func (s *fakeServer) handle(c *fakeConn, f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	if s.silent {
		return
	}
	ack := AckPayload{Success: true}
	if msg, ok := s.reject[f.Event]; ok {
		ack = AckPayload{Success: false, Error: msg}
	} else if f.Event == EventRequestCurrent {
		var req SportsPayload
		_ = json.Unmarshal(f.Data, &req)
		out := CurrentState{}
		for _, sport := range req.Sports {
			if byKey, ok := s.current[sport]; ok {
				out[sport] = byKey
			}
		}
		ack.Data, _ = json.Marshal(out)
	}
	data, _ := json.Marshal(ack)
	c.in <- Frame{Ack: f.ID, Data: data}
	for _, u := range s.after[f.Event] {
		push, _ := json.Marshal(u)
		c.in <- Frame{Event: EventUpdate, Data: push}
	}
}

func (s *fakeServer) push(t *testing.T, u UpdatePayload) {
	t.Helper()
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		t.Fatalf("no connection to push on")
	}
	c.in <- Frame{Event: EventUpdate, Data: data}
}

// drop severs the current connection from the server side.
func (s *fakeServer) drop() {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}

func (s *fakeServer) eventCount(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.frames {
		if f.Event == event {
			n++
		}
	}
	return n
}

func (s *fakeServer) framesFor(event string) []SportsPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SportsPayload
	for _, f := range s.frames {
		if f.Event != event {
			continue
		}
		var p SportsPayload
		_ = json.Unmarshal(f.Data, &p)
		out = append(out, p)
	}
	return out
}

type fakeConn struct {
	server *fakeServer
	in     chan Frame
	closed chan struct{}
	once   sync.Once
}

func (c *fakeConn) ReadJSON(v any) error {
	select {
	case <-c.closed:
		return errConnClosed
	case f := <-c.in:
		*(v.(*Frame)) = f
		return nil
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	c.server.handle(c, v.(Frame))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// fakeDialer fails while failing is set and optionally blocks on gate.
type fakeDialer struct {
	server *fakeServer

	mu      sync.Mutex
	dials   int
	failing bool
	gate    chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	d.mu.Lock()
	d.dials++
	failing := d.failing
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failing {
		return nil, errors.New("connection refused")
	}
	return d.server.accept(), nil
}

func (d *fakeDialer) setFailing(v bool) {
	d.mu.Lock()
	d.failing = v
	d.mu.Unlock()
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type clientHarness struct {
	client   *Client
	server   *fakeServer
	dialer   *fakeDialer
	recorder *metrics.Recorder
}

func newClientHarness(t *testing.T, cfg Config) *clientHarness {
	t.Helper()
	server := newFakeServer()
	dialer := &fakeDialer{server: server}
	recorder := metrics.NewRecorder()
	if cfg.URL == "" {
		cfg.URL = "ws://feed.test/games"
	}
	if cfg.FallbackInterval == 0 {
		cfg.FallbackInterval = time.Hour
	}
	if cfg.AckTimeout == 0 {
		cfg.AckTimeout = time.Second
	}
	client := New(cfg, Options{
		Dialer:     dialer,
		Metrics:    recorder,
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	t.Cleanup(client.Disconnect)
	return &clientHarness{client: client, server: server, dialer: dialer, recorder: recorder}
}

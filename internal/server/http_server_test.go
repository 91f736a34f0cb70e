package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/testutil"
)

type stubListener struct {
	addr net.Addr
}

func (s *stubListener) Accept() (net.Conn, error) { return nil, errors.New("accept failure") }
func (s *stubListener) Close() error              { return nil }
func (s *stubListener) Addr() net.Addr            { return s.addr }

func TestNetHTTPServerServesCustomListener(t *testing.T) {
	l := &stubListener{addr: &net.TCPAddr{IP: net.IPv4zero, Port: 0}}
	s := netHTTPServer{srv: &http.Server{Handler: http.NewServeMux()}, listener: l}

	if err := s.ListenAndServe(); err == nil {
		t.Fatalf("expected serve error from stub listener")
	}
}

func TestNewHTTPServerAppliesTimeouts(t *testing.T) {
	handler := http.NewServeMux()
	s := newHTTPServer("4100", handler)

	if s.Addr() != ":4100" {
		t.Fatalf("expected :4100, got %s", s.Addr())
	}
	if s.Handler() != handler {
		t.Fatalf("expected handler passthrough")
	}
	if s.srv.ReadHeaderTimeout != readHeaderTimeout || s.srv.WriteTimeout != writeTimeout || s.srv.IdleTimeout != idleTimeout {
		t.Fatalf("unexpected timeouts %+v", s.srv)
	}
}

func TestNetHTTPServerStopsOnShutdown(t *testing.T) {
	s := newHTTPServer("0", http.NewServeMux())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe() }()

	time.Sleep(50 * time.Millisecond)
	_ = s.Shutdown(context.Background())

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("unexpected serve error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("listen did not return after shutdown")
	}
}

type failingServer struct {
	err error
}

func (f failingServer) ListenAndServe() error          { return f.err }
func (f failingServer) Shutdown(context.Context) error { return nil }
func (f failingServer) Addr() string                   { return ":bad" }
func (f failingServer) Handler() http.Handler          { return nil }

func TestLaunchServerReportsFailure(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	failed := make(chan error, 1)

	launchServer("http", failingServer{err: errors.New("bind: address in use")}, logger, func(err error) {
		failed <- err
	})

	select {
	case err := <-failed:
		if !strings.Contains(err.Error(), "address in use") {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected onError callback")
	}
	testutil.AssertLogged(t, buf, "http server failed")
}

func TestLaunchServerIgnoresServerClosed(t *testing.T) {
	var called atomic.Bool
	launchServer("metrics", failingServer{err: http.ErrServerClosed}, nil, func(error) {
		called.Store(true)
	})

	time.Sleep(50 * time.Millisecond)
	if called.Load() {
		t.Fatalf("expected ErrServerClosed to be treated as a clean stop")
	}
}

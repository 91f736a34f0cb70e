package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// NewBufferLogger returns a debug-level text logger writing into the returned buffer.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogged fails the test unless the buffer holds want.
func AssertLogged(t *testing.T, buf *bytes.Buffer, want string) {
	t.Helper()
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected log containing %q, got %s", want, buf.String())
	}
}

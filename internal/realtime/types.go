// Package realtime maintains the push connection to the live games feed: topic
// subscriptions, bounded reconnection, and a polling fallback when the feed stays down.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// State is the connection state of a Client.
type State string

const (
	StateDisconnected    State = "disconnected"
	StateConnecting      State = "connecting"
	StateConnected       State = "connected"
	StateReconnecting    State = "reconnecting"
	StateFallbackPolling State = "fallback-polling"
)

// Wire events.
const (
	EventSubscribe      = "games:subscribe"
	EventUnsubscribe    = "games:unsubscribe"
	EventRequestCurrent = "games:request-current"
	EventUpdate         = "games:update"
)

var (
	ErrNotConnected       = errors.New("realtime: not connected")
	ErrReconnectExhausted = errors.New("realtime: reconnect attempts exhausted")
	ErrClosed             = errors.New("realtime: client disconnected")
	ErrAckTimeout         = errors.New("realtime: acknowledgement timed out")
)

// AckError is returned when the server acknowledges a request without success.
type AckError struct {
	Event   string
	Message string
}

func (e *AckError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("realtime: %s rejected", e.Event)
	}
	return fmt.Sprintf("realtime: %s rejected: %s", e.Event, e.Message)
}

// Frame is one JSON message on the wire. Requests carry ID and Event, acknowledgements carry
// Ack, and server pushes carry only Event.
type Frame struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event,omitempty"`
	Ack   string          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SportsPayload is the request body of subscribe, unsubscribe and request-current.
type SportsPayload struct {
	Sports []string `json:"sports"`
}

// AckPayload is the body of an acknowledgement.
type AckPayload struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// UpdatePayload is the body of a games:update push.
type UpdatePayload struct {
	Sport     string          `json:"sport"`
	CacheKey  string          `json:"cacheKey"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Time converts the millisecond timestamp, falling back to now when absent.
func (u UpdatePayload) Time() time.Time {
	if u.Timestamp <= 0 {
		return time.Now()
	}
	return time.UnixMilli(u.Timestamp)
}

// CurrentState is the data of a request-current acknowledgement: sport -> cache key -> snapshot data.
type CurrentState map[string]map[string]json.RawMessage

// UpdateHandler receives updates for one sport.
type UpdateHandler func(data json.RawMessage, cacheKey string, ts time.Time)

// AnyUpdateHandler receives updates for every sport.
type AnyUpdateHandler func(sport string, data json.RawMessage, cacheKey string, ts time.Time)

// FallbackSignal is emitted periodically while the client is polling instead of streaming.
type FallbackSignal struct {
	Sports []string
	At     time.Time
}

// FallbackHandler reacts to a fallback signal, typically by refetching out of band.
type FallbackHandler func(ctx context.Context, signal FallbackSignal) error

// StateHandler observes state transitions.
type StateHandler func(from, to State)

// Conn is a message-oriented connection.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Dialer opens connections to the feed.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

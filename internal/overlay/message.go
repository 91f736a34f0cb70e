package overlay

import "time"

// MessageType names a frame exchanged with browser overlays.
type MessageType string

const (
	// server to browser
	MessageTypeWelcome      MessageType = "welcome"
	MessageTypeRender       MessageType = "render"
	MessageTypeRemove       MessageType = "remove"
	MessageTypeMarker       MessageType = "marker"
	MessageTypeMarkerRemove MessageType = "marker-remove"
	MessageTypeError        MessageType = "error"

	// browser to server
	MessageTypeWatch   MessageType = "watch"
	MessageTypeUnwatch MessageType = "unwatch"
)

// ServerMessage is pushed to browsers.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	GameID    string      `json:"gameId,omitempty"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is sent by browsers to pick the games they display.
type ClientMessage struct {
	Type  MessageType `json:"type"`
	Games []string    `json:"games"`
}

// RemovePayload identifies the effect being taken down.
type RemovePayload struct {
	TaskID string `json:"taskId"`
}

// ErrorPayload reports a rejected client message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Package streaming defines the wire protocol for pushing computed
// scenes and event changes to a connected viewer over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeScene        = "scene"
	TypeEventUpsert  = "event_upsert"
	TypeEventDelete  = "event_delete"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload announces a viewing session to the server.
type StartSessionPayload struct {
	AppVersion    string `json:"appVersion"`
	EventsVersion uint64 `json:"eventsVersion"`
}

// ScenePayload carries one computed scene.
type ScenePayload struct {
	Scene core.Scene `json:"scene"`
}

// EventDeletePayload names a removed event.
type EventDeletePayload struct {
	ID string `json:"id"`
}

// Package stream pushes computed scenes and event changes to a viewer
// over a WebSocket connection, surviving server restarts via reconnect
// with session replay.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lifeweave/lifeweave/pkg/core"
	"github.com/lifeweave/lifeweave/pkg/streaming"
)

// Config holds WebSocket publisher configuration.
type Config struct {
	URL    string
	Secret string
}

// Publisher streams scenes over WebSocket to a viewer server.
type Publisher struct {
	conn *conn
	cfg  Config
}

// New creates a new scene publisher.
func New(cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn: newConn(logger),
		cfg:  cfg,
	}
}

// Connect dials the WebSocket server.
func (p *Publisher) Connect() error {
	return p.conn.open(p.cfg.URL, p.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (p *Publisher) Close() error {
	return p.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (p *Publisher) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	p.conn.post(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (p *Publisher) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return p.conn.postAndAwait(data, msgType, ackTimeout)
}

// StartSession announces the session and waits for server ack. The
// message is cached and replayed after a reconnect.
func (p *Publisher) StartSession(appVersion string, eventsVersion uint64) error {
	payload := streaming.StartSessionPayload{
		AppVersion:    appVersion,
		EventsVersion: eventsVersion,
	}
	data, err := marshalEnvelope(streaming.TypeStartSession, payload)
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	p.conn.setSession(data)

	return p.conn.postAndAwait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (p *Publisher) EndSession() error {
	err := p.sendEnvelopeAndWait(streaming.TypeEndSession, nil)

	// Clear cached state regardless of error.
	p.conn.setSession(nil)

	return err
}

// PublishScene sends a computed scene (fire-and-forget).
func (p *Publisher) PublishScene(scene core.Scene) error {
	return p.sendEnvelope(streaming.TypeScene, streaming.ScenePayload{Scene: scene})
}

// PublishEventUpsert sends an added or updated event.
func (p *Publisher) PublishEventUpsert(e core.TimelineEvent) error {
	return p.sendEnvelope(streaming.TypeEventUpsert, e)
}

// PublishEventDelete sends an event removal.
func (p *Publisher) PublishEventDelete(id string) error {
	return p.sendEnvelope(streaming.TypeEventDelete, streaming.EventDeletePayload{ID: id})
}

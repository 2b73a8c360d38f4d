package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/lifeweave/lifeweave/pkg/streaming"
)

const (
	outboxSize = 10_000
	ackChSize  = 16

	maxDialAttempts = 10
	initialBackoff  = time.Second
	maxBackoff      = 30 * time.Second

	writeWait  = 10 * time.Second
	ackTimeout = 10 * time.Second
)

// conn wraps one websocket with a single writer goroutine feeding from
// an outbox channel. Writes never touch the socket directly; readers
// only see acks. On socket failure either loop triggers redial, and the
// cached session message is replayed so the viewer can re-associate the
// stream.
type conn struct {
	wsURL  string
	secret string
	logger *slog.Logger

	outbox chan []byte
	acks   chan streaming.AckMessage
	quit   chan struct{}

	mu         sync.Mutex
	sock       *ws.Conn
	sessionMsg []byte // replayed after redial
	shutdown   bool
}

func newConn(logger *slog.Logger) *conn {
	return &conn{
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackChSize),
		quit:   make(chan struct{}),
		logger: logger,
	}
}

// open dials the server and starts the pump goroutines.
func (c *conn) open(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	sock, err := c.dial()
	if err != nil {
		return err
	}
	c.attach(sock)
	return nil
}

func (c *conn) dial() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	sock, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return sock, nil
}

// attach installs a freshly dialed socket and (re)starts both pumps.
func (c *conn) attach(sock *ws.Conn) {
	c.mu.Lock()
	c.sock = sock
	c.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (c *conn) socket() *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock
}

// writeTo writes one frame under the write deadline.
func writeTo(sock *ws.Conn, data []byte) error {
	if err := sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return sock.WriteMessage(ws.TextMessage, data)
}

// writePump is the only writer. It exits on shutdown or on the first
// write error, which hands the socket over to redial.
func (c *conn) writePump() {
	for {
		select {
		case <-c.quit:
			return
		case data := <-c.outbox:
			sock := c.socket()
			if sock == nil {
				continue
			}
			if err := writeTo(sock, data); err != nil {
				c.logger.Warn("WebSocket write failed", "error", err)
				go c.redial()
				return
			}
		}
	}
}

// readPump routes server acks to the acks channel and discards
// everything else.
func (c *conn) readPump() {
	for {
		sock := c.socket()
		if sock == nil {
			return
		}

		_, message, err := sock.ReadMessage()
		if err != nil {
			select {
			case <-c.quit:
				return
			default:
			}
			c.logger.Warn("WebSocket read failed", "error", err)
			go c.redial()
			return
		}

		var ack streaming.AckMessage
		if json.Unmarshal(message, &ack) != nil || ack.Type != "ack" {
			c.logger.Debug("Ignoring non-ack message", "raw", string(message))
			continue
		}
		select {
		case c.acks <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// redial re-establishes the connection with exponential backoff,
// replaying the session message before the pumps restart so the server
// never sees scene traffic from an unidentified sender.
func (c *conn) redial() {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	if c.sock != nil {
		_ = c.sock.Close()
		c.sock = nil
	}
	session := c.sessionMsg
	c.mu.Unlock()

	backoff := initialBackoff
	for attempt := 1; attempt <= maxDialAttempts; attempt++ {
		select {
		case <-c.quit:
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Redialing WebSocket", "attempt", attempt)
		sock, err := c.dial()
		if err != nil {
			c.logger.Warn("Redial failed", "attempt", attempt, "error", err)
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		if session != nil {
			if err := writeTo(sock, session); err != nil {
				c.logger.Warn("Session replay failed", "error", err)
				_ = sock.Close()
				continue
			}
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		c.attach(sock)
		return
	}

	c.logger.Error("Giving up on WebSocket redial", "attempts", maxDialAttempts)
}

// setSession stores (or clears, with nil) the message replayed after a
// redial.
func (c *conn) setSession(data []byte) {
	c.mu.Lock()
	c.sessionMsg = data
	c.mu.Unlock()
}

// post queues data for the write pump without blocking; a full outbox
// drops the message.
func (c *conn) post(data []byte) {
	select {
	case c.outbox <- data:
	default:
		c.logger.Warn("WebSocket outbox full, dropping message")
	}
}

// postAndAwait queues data and waits for the server to ack it by name.
func (c *conn) postAndAwait(data []byte, ackFor string, timeout time.Duration) error {
	c.post(data)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ack := <-c.acks:
			if ack.For == ackFor {
				return nil
			}
			// ack for an earlier message, keep draining
		case <-deadline.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.quit:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a close frame and stops the pumps. Idempotent.
func (c *conn) close() error {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return nil
	}
	c.shutdown = true
	close(c.quit)
	sock := c.sock
	c.sock = nil
	c.mu.Unlock()

	if sock == nil {
		return nil
	}
	_ = sock.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return sock.Close()
}

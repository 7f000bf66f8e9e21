package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/apierr"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/relay"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be less than pongWait
	pingPeriod = 30 * time.Second

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// ErrSendBufferFull is returned when a client cannot keep up with its
// outbound event stream. The connection is torn down rather than
// blocking the broadcaster.
var ErrSendBufferFull = errors.New("ws: send buffer full")

// Client is one live websocket connection bound to a verified
// identity. It implements model.Connection: the registry and room
// broadcasts deliver payloads through Send, which hands them to the
// write pump. The read loop decodes inbound envelopes and feeds them
// to the relay dispatcher.
type Client struct {
	id       string
	identity model.Identity
	conn     *websocket.Conn
	send     chan []byte
	logger   *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}

	mu       sync.Mutex
	sessions map[model.SessionID]struct{}
}

var _ model.Connection = (*Client)(nil)

// NewClient wraps an upgraded websocket connection for the given
// identity
func NewClient(conn *websocket.Conn, identity model.Identity, logger *slog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:       id,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger: logger.With(
			slog.String("conn_id", id),
			slog.String("identity", string(identity)),
		),
		closed:   make(chan struct{}),
		sessions: make(map[model.SessionID]struct{}),
	}
}

// ID returns the unique connection id
func (c *Client) ID() string {
	return c.id
}

// Identity returns the verified identity owning this connection
func (c *Client) Identity() model.Identity {
	return c.identity
}

// Send queues a payload for delivery. It never blocks: a client whose
// buffer is full is disconnected so one slow reader cannot stall a
// session broadcast.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping connection")
		_ = c.Close()
		return ErrSendBufferFull
	}
}

// Close tears down the connection. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
	return nil
}

// Sessions returns the session ids this connection has interacted
// with; used for disconnect fan-in when the connection drops.
func (c *Client) Sessions() []model.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.SessionID, 0, len(c.sessions))
	for id := range c.sessions {
		out = append(out, id)
	}
	return out
}

func (c *Client) trackSession(id model.SessionID) {
	if id == "" {
		return
	}
	c.mu.Lock()
	c.sessions[id] = struct{}{}
	c.mu.Unlock()
}

// WritePump pushes queued payloads and keepalive pings to the peer.
// Runs in its own goroutine; returns when the connection closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes inbound envelopes and dispatches them until the
// peer disappears. Blocks; the caller runs cleanup when it returns.
func (c *Client) ReadPump(ctx context.Context, dispatcher *relay.Dispatcher) {
	defer func() {
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("connection closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendMalformed("malformed event payload")
			continue
		}
		if env.SessionID == "" {
			c.sendMalformed("missing session_id")
			continue
		}

		c.trackSession(env.SessionID)

		// Dispatch errors have already been reported to this
		// connection as error events
		_ = dispatcher.Dispatch(ctx, model.PendingEvent{
			Type:      env.Type,
			SessionID: env.SessionID,
			From:      c.identity,
			Conn:      c,
			Move:      env.Move,
		})
	}
}

func (c *Client) sendMalformed(message string) {
	payload, err := json.Marshal(model.ErrorEvent{
		Type:    model.EventError,
		Code:    apierr.CodeInvalidRequest,
		Message: message,
	})
	if err != nil {
		return
	}
	_ = c.Send(payload)
}

package registry

import (
	"log/slog"
	"sync"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Registry tracks live connections, mapping an authenticated identity
// to its currently active connections. An identity may hold multiple
// concurrent connections (multi-tab, reconnect); delivery to an
// identity fans out to all of them.
//
// The registry is an explicitly constructed object with an empty
// initial state and an explicit Close; it is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	byIdentity  map[model.Identity]map[string]model.Connection
	identityFor map[string]model.Identity
	logger      *slog.Logger
}

// New creates an empty connection registry
func New(logger *slog.Logger) *Registry {
	return &Registry{
		byIdentity:  make(map[model.Identity]map[string]model.Connection),
		identityFor: make(map[string]model.Identity),
		logger:      logger.With(slog.String("component", "registry")),
	}
}

// Register records conn as an active connection of identity. Other
// connections already registered for the same identity are kept.
func (r *Registry) Register(identity model.Identity, conn model.Connection) {
	r.mu.Lock()
	conns, ok := r.byIdentity[identity]
	if !ok {
		conns = make(map[string]model.Connection)
		r.byIdentity[identity] = conns
	}
	conns[conn.ID()] = conn
	r.identityFor[conn.ID()] = identity
	total := len(conns)
	r.mu.Unlock()

	r.logger.Info("connection registered",
		slog.String("identity", string(identity)),
		slog.String("conn_id", conn.ID()),
		slog.Int("identity_connections", total),
	)
}

// Unregister removes conn from the registry. It is idempotent:
// unregistering an absent connection is a silent no-op, because
// disconnect notifications may race with explicit logout.
func (r *Registry) Unregister(conn model.Connection) {
	r.mu.Lock()
	identity, ok := r.identityFor[conn.ID()]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.identityFor, conn.ID())
	if conns, ok := r.byIdentity[identity]; ok {
		delete(conns, conn.ID())
		if len(conns) == 0 {
			delete(r.byIdentity, identity)
		}
	}
	r.mu.Unlock()

	r.logger.Info("connection unregistered",
		slog.String("identity", string(identity)),
		slog.String("conn_id", conn.ID()),
	)
}

// ConnectionsOf returns the currently registered connections of
// identity. The returned slice is a snapshot.
func (r *Registry) ConnectionsOf(identity model.Identity) []model.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]model.Connection, 0, len(r.byIdentity[identity]))
	for _, c := range r.byIdentity[identity] {
		conns = append(conns, c)
	}
	return conns
}

// SendTo delivers payload to every currently registered connection of
// identity. Delivery to a closed connection is swallowed; the failed
// connection is reaped, not retried.
func (r *Registry) SendTo(identity model.Identity, payload []byte) {
	for _, conn := range r.ConnectionsOf(identity) {
		if err := conn.Send(payload); err != nil {
			r.logger.Warn("send failed, reaping connection",
				slog.String("identity", string(identity)),
				slog.String("conn_id", conn.ID()),
				slog.String("error", err.Error()),
			)
			r.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// Close drains the registry and closes every remaining connection
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]model.Connection, 0, len(r.identityFor))
	for _, m := range r.byIdentity {
		for _, c := range m {
			conns = append(conns, c)
		}
	}
	r.byIdentity = make(map[model.Identity]map[string]model.Connection)
	r.identityFor = make(map[string]model.Identity)
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	r.logger.Info("registry closed", slog.Int("closed_connections", len(conns)))
}

package model

// Identity is the stable, externally verified principal controlling
// one or more connections. It is derived from a verified credential
// and immutable for a connection's lifetime.
type Identity string

// Connection is a live bidirectional channel owned by exactly one
// Identity. An Identity may own zero, one, or multiple concurrent
// connections (multi-tab, reconnect).
type Connection interface {
	// ID uniquely identifies this connection.
	ID() string
	// Identity returns the owning identity.
	Identity() Identity
	// Send delivers a payload to the peer. Sending to a closed
	// connection returns an error; it never blocks indefinitely.
	Send(payload []byte) error
	// Close tears down the underlying transport.
	Close() error
}

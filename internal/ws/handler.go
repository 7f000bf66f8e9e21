package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/apierr"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/auth"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/registry"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/relay"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/session"
)

// Handler upgrades HTTP requests to websocket connections. The
// credential is verified before the upgrade: an unverifiable request
// is rejected with a plain HTTP error and never reaches the registry.
type Handler struct {
	verifier   *auth.Service
	registry   *registry.Registry
	sessions   *session.Controller
	dispatcher *relay.Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a websocket handler. allowedOrigins restricts
// which browser origins may connect; empty allows all.
func NewHandler(
	verifier *auth.Service,
	reg *registry.Registry,
	sessions *session.Controller,
	dispatcher *relay.Dispatcher,
	allowedOrigins []string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		verifier:   verifier,
		registry:   reg,
		sessions:   sessions,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no Origin header
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

// credentialFrom extracts the raw credential from the token query
// parameter or the Authorization header
func credentialFrom(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// ServeHTTP verifies the credential, upgrades the connection, and
// runs the connection's pumps until it drops
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(credentialFrom(r))
	if err != nil {
		h.logger.Info("credential rejected", slog.String("error", err.Error()))
		apierr.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response
		h.logger.Info("upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(conn, identity, h.logger)
	h.registry.Register(identity, client)
	h.logger.Info("connection established",
		slog.String("conn_id", client.ID()),
		slog.String("identity", string(identity)),
	)

	go client.WritePump()
	client.ReadPump(r.Context(), h.dispatcher)

	// Unregister before disconnect handling so the grace window only
	// starts when this was the identity's last connection
	h.registry.Unregister(client)
	for _, sessionID := range client.Sessions() {
		h.sessions.HandleDisconnect(sessionID, identity)
	}
	h.logger.Info("connection closed", slog.String("conn_id", client.ID()))
}

var _ http.Handler = (*Handler)(nil)

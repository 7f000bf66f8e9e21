package relay

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/apierr"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/session"
)

// Dispatcher routes validated inbound events to the session state
// machine. It is the single choke point: no event reaches a
// GameSession without passing the state machine's guards, and no other
// component mutates session state directly. Guard violations are
// reported to the originating connection only; the opponent is never
// notified of a rejected event.
type Dispatcher struct {
	sessions *session.Controller
	logger   *slog.Logger
}

// NewDispatcher creates a new event relay dispatcher
func NewDispatcher(sessions *session.Controller, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "relay")),
	}
}

// Dispatch applies one pending event. On failure the specific guard
// violation is sent to the sender as an error event and returned to
// the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.PendingEvent) error {
	var err error
	switch ev.Type {
	case model.EventWaitForGame:
		err = d.sessions.HandleJoin(ctx, ev.SessionID, ev.From)
	case model.EventStopWaiting:
		err = d.sessions.StopWaiting(ev.SessionID, ev.From)
	case model.EventMove:
		err = d.sessions.Move(ctx, ev.SessionID, ev.From, ev.Move)
	case model.EventOfferDraw:
		err = d.sessions.OfferDraw(ctx, ev.SessionID, ev.From)
	case model.EventAcceptDraw:
		err = d.sessions.AcceptDraw(ctx, ev.SessionID, ev.From)
	case model.EventDeclineDraw:
		err = d.sessions.DeclineDraw(ctx, ev.SessionID, ev.From)
	case model.EventResign:
		err = d.sessions.Resign(ctx, ev.SessionID, ev.From)
	default:
		err = apierr.NewInvalidRequestError("unknown event type: " + string(ev.Type))
	}

	if err != nil {
		d.logger.Info("event rejected",
			slog.String("type", string(ev.Type)),
			slog.String("session_id", string(ev.SessionID)),
			slog.String("identity", string(ev.From)),
			slog.String("error", err.Error()),
		)
		d.sendError(ev, err)
		return err
	}
	return nil
}

// sendError reports a guard violation to the offending sender's
// connection only
func (d *Dispatcher) sendError(ev model.PendingEvent, cause error) {
	if ev.Conn == nil {
		return
	}
	classified := apierr.Classify(cause)
	payload, err := json.Marshal(model.ErrorEvent{
		Type:    model.EventError,
		Code:    classified.Code,
		Message: classified.Message,
	})
	if err != nil {
		return
	}
	// Transport failures are swallowed; the read loop will observe the
	// close and unregister the connection
	_ = ev.Conn.Send(payload)
}

package model

// EventType identifies an inbound or outbound event on the wire
type EventType string

// Inbound event types
const (
	EventWaitForGame EventType = "wait_for_game"
	EventStopWaiting EventType = "stop_waiting"
	EventMove        EventType = "move"
	EventOfferDraw   EventType = "offer_draw"
	EventAcceptDraw  EventType = "accept_draw"
	EventDeclineDraw EventType = "decline_draw"
	EventResign      EventType = "resign"
)

// Outbound event types
const (
	EventPaired      EventType = "paired"
	EventStateUpdate EventType = "state_update"
	EventMoveApplied EventType = "move_applied"
	EventError       EventType = "error"
)

// Envelope is the wire shape of an inbound client message
type Envelope struct {
	Type      EventType `json:"type"`
	SessionID SessionID `json:"session_id"`
	Move      string    `json:"move,omitempty"`
}

// PendingEvent is an inbound request tagged with the sending identity
// and originating connection. Ephemeral; consumed immediately by the
// relay dispatcher.
type PendingEvent struct {
	Type      EventType
	SessionID SessionID
	From      Identity
	Conn      Connection // originating connection, target for error events
	Move      string
}

// PairedEvent tells both participants a session has been formed
type PairedEvent struct {
	Type      EventType `json:"type"`
	SessionID SessionID `json:"session_id"`
	Opponent  Identity  `json:"opponent"`
	FirstTurn Identity  `json:"first_turn"`
}

// StateUpdateEvent is the authoritative session state echo sent to
// both participants after a non-move transition
type StateUpdateEvent struct {
	Type          EventType     `json:"type"`
	SessionID     SessionID     `json:"session_id"`
	Status        SessionStatus `json:"status"`
	Turn          Identity      `json:"turn,omitempty"`
	DrawOfferedBy Identity      `json:"draw_offered_by,omitempty"`
	Result        *Result       `json:"result,omitempty"`
}

// MoveAppliedEvent is broadcast to both participants after an accepted
// move
type MoveAppliedEvent struct {
	Type      EventType     `json:"type"`
	SessionID SessionID     `json:"session_id"`
	Move      string        `json:"move"`
	By        Identity      `json:"by"`
	Status    SessionStatus `json:"status"`
	Turn      Identity      `json:"turn,omitempty"`
	Result    *Result       `json:"result,omitempty"`
}

// ErrorEvent is sent only to the offending sender
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// NewStateUpdate builds a StateUpdateEvent from the current session
// state
func NewStateUpdate(g *GameSession) StateUpdateEvent {
	return StateUpdateEvent{
		Type:          EventStateUpdate,
		SessionID:     g.ID,
		Status:        g.Status,
		Turn:          g.Turn,
		DrawOfferedBy: g.DrawOfferedBy,
		Result:        g.Result,
	}
}

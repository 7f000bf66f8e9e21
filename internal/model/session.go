package model

import "time"

// SessionID identifies one paired two-party game instance
type SessionID string

// SessionStatus represents the lifecycle state of a game session
type SessionStatus string

const (
	StatusWaiting     SessionStatus = "waiting"      // Room exists, fewer than 2 participants
	StatusActive      SessionStatus = "active"       // Normal play, turn alternates
	StatusDrawOffered SessionStatus = "draw_offered" // One side has proposed a draw
	StatusCompleted   SessionStatus = "completed"    // Terminal
)

// Move is a single move submitted by a participant. The move data is
// opaque to this service; legality is judged by the rules evaluator.
type Move struct {
	By   Identity  `json:"by"`
	Data string    `json:"data"`
	At   time.Time `json:"at"`
}

// Result is the outcome of a completed session
type Result struct {
	Winner Identity `json:"winner,omitempty"` // empty when Draw
	Draw   bool     `json:"draw,omitempty"`
}

// GameSession is the authoritative state for one paired game.
// Mutated only through validated state-machine transitions.
type GameSession struct {
	ID            SessionID
	Participants  [2]Identity // join order; Participants[0] moves first
	Status        SessionStatus
	Turn          Identity
	DrawOfferedBy Identity // empty when no offer pending
	Result        *Result  // nil until completed
	Moves         []Move
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasParticipant reports whether id is one of the two participants
func (g *GameSession) HasParticipant(id Identity) bool {
	return g.Participants[0] == id || g.Participants[1] == id
}

// Opponent returns the other participant, or empty if id is not a
// participant
func (g *GameSession) Opponent(id Identity) Identity {
	switch id {
	case g.Participants[0]:
		return g.Participants[1]
	case g.Participants[1]:
		return g.Participants[0]
	}
	return ""
}

// RoomKind distinguishes waiting rooms from game rooms
type RoomKind string

const (
	RoomWaiting RoomKind = "waiting" // 0-1 participants awaiting an opponent
	RoomGame    RoomKind = "game"    // exactly 2 participants
)

// Room is the membership container for a session id. Members records
// distinct participant identities in join order; Present records which
// of them currently hold at least one live connection.
type Room struct {
	SessionID SessionID
	Kind      RoomKind
	Members   []Identity
	Present   map[Identity]bool
	CreatedAt time.Time
}

// HasMember reports whether id has joined this room
func (r *Room) HasMember(id Identity) bool {
	for _, m := range r.Members {
		if m == id {
			return true
		}
	}
	return false
}

// PresentCount returns the number of members currently connected
func (r *Room) PresentCount() int {
	n := 0
	for _, present := range r.Present {
		if present {
			n++
		}
	}
	return n
}

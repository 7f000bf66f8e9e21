package model

import "time"

// GameRecord is the durable final record of a completed session,
// flushed to the persistence collaborator when the session reaches
// the completed status.
type GameRecord struct {
	SessionID    SessionID   `json:"session_id"`
	Participants [2]Identity `json:"participants"`
	Result       Result      `json:"result"`
	Moves        []Move      `json:"moves"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  time.Time   `json:"completed_at"`
}

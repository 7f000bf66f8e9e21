package response

import (
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// GameRecord represents a completed game in API responses
type GameRecord struct {
	SessionID    string       `json:"session_id"`
	Participants []string     `json:"participants"`
	Winner       string       `json:"winner,omitempty"`
	Draw         bool         `json:"draw,omitempty"`
	Moves        []model.Move `json:"moves"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  time.Time    `json:"completed_at"`
}

// GameRecordFromModel converts a model.GameRecord to a response GameRecord
func GameRecordFromModel(r *model.GameRecord) GameRecord {
	return GameRecord{
		SessionID:    string(r.SessionID),
		Participants: []string{string(r.Participants[0]), string(r.Participants[1])},
		Winner:       string(r.Result.Winner),
		Draw:         r.Result.Draw,
		Moves:        r.Moves,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
	}
}

// GameRecordList is the response for listing an identity's records
type GameRecordList struct {
	Records []GameRecord `json:"records"`
}

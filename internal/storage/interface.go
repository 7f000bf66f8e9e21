package storage

import (
	"context"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Storage is the persistence collaborator that durably stores the
// final record of a completed game session. Session state itself is
// owned in memory by the state machine; only terminal records land
// here.
type Storage interface {
	// SaveGameRecord stores the final record of a completed session
	SaveGameRecord(ctx context.Context, record *model.GameRecord) error
	// GetGameRecord retrieves a record by session id
	GetGameRecord(ctx context.Context, id model.SessionID) (*model.GameRecord, error)
	// ListGameRecordsFor returns the records a participant took part in
	ListGameRecordsFor(ctx context.Context, identity model.Identity) ([]*model.GameRecord, error)
	// DeleteGameRecord removes a record
	DeleteGameRecord(ctx context.Context, id model.SessionID) error
}

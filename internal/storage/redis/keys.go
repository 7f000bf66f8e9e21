package redis

import (
	"fmt"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Key prefix for all record data
const keyPrefix = "chessmate"

// recordKey returns the Redis key for a GameRecord
func recordKey(id model.SessionID) string {
	return fmt.Sprintf("%s:record:%s", keyPrefix, id)
}

// recordsForIdentityKey returns the Redis key for the SET of record ids
// a participant took part in
func recordsForIdentityKey(identity model.Identity) string {
	return fmt.Sprintf("%s:idx:records_for:%s", keyPrefix, identity)
}

package model

import "errors"

// Common errors used across the application
var (
	// Auth errors - fatal to the connection
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")

	// Relay errors - recoverable, reported to the originating actor only
	ErrSessionNotFound            = errors.New("session not found")
	ErrIllegalMove                = errors.New("illegal move")
	ErrInvalidSessionState        = errors.New("invalid session state for this event")
	ErrDuplicateOffer             = errors.New("draw already offered")
	ErrNotAuthorizedForTransition = errors.New("not authorized for this transition")
	ErrNotParticipant             = errors.New("not a participant of this session")
	ErrSessionFull                = errors.New("session already has two participants")

	// External collaborator errors
	ErrEvaluatorTimeout = errors.New("rules evaluator timed out")
	ErrAnalysisTimeout  = errors.New("analysis service timed out")

	// Record errors
	ErrRecordNotFound = errors.New("game record not found")
)

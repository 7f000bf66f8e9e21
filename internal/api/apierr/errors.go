package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes. The same code set is used for websocket error
// events, so clients see one taxonomy across both surfaces.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeMissingCredential   = "MISSING_CREDENTIAL"
	CodeInvalidCredential   = "INVALID_CREDENTIAL"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionFull         = "SESSION_FULL"
	CodeIllegalMove         = "ILLEGAL_MOVE"
	CodeInvalidSessionState = "INVALID_SESSION_STATE"
	CodeDuplicateOffer      = "DUPLICATE_OFFER"
	CodeNotAuthorized       = "NOT_AUTHORIZED_FOR_TRANSITION"
	CodeNotParticipant      = "NOT_PARTICIPANT"
	CodeEvaluatorTimeout    = "EVALUATOR_TIMEOUT"
	CodeAnalysisTimeout     = "ANALYSIS_TIMEOUT"
	CodeRecordNotFound      = "RECORD_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Classify maps an error to its wire code and message. It backs both
// HTTP error responses and websocket error events.
func Classify(err error) APIError {
	return toHTTPError(err).apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrMissingCredential):
		return &httpError{http.StatusUnauthorized, APIError{CodeMissingCredential, "Credential required"}}
	case errors.Is(err, model.ErrInvalidCredential):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredential, "Invalid or expired credential"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrSessionFull):
		return &httpError{http.StatusConflict, APIError{CodeSessionFull, "Session already has two participants"}}
	case errors.Is(err, model.ErrIllegalMove):
		return &httpError{http.StatusForbidden, APIError{CodeIllegalMove, "Move is not legal"}}
	case errors.Is(err, model.ErrInvalidSessionState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidSessionState, "Event is not valid in the current session state"}}
	case errors.Is(err, model.ErrDuplicateOffer):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateOffer, "Draw already offered"}}
	case errors.Is(err, model.ErrNotAuthorizedForTransition):
		return &httpError{http.StatusForbidden, APIError{CodeNotAuthorized, "Only the other participant may respond to this offer"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "Not a participant of this session"}}
	case errors.Is(err, model.ErrEvaluatorTimeout):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeEvaluatorTimeout, "Rules evaluator timed out; retry the action"}}
	case errors.Is(err, model.ErrAnalysisTimeout):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeAnalysisTimeout, "Analysis service timed out"}}
	case errors.Is(err, model.ErrRecordNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRecordNotFound, "Game record not found"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeMissingCredential, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeInternalError, message}}
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/apierr"
	"github.com/Raunaq22/ChessMate-sub001/internal/api/middleware"
	"github.com/Raunaq22/ChessMate-sub001/internal/api/response"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage"
)

// RecordHandler serves completed game records
type RecordHandler struct {
	storage storage.Storage
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(store storage.Storage) *RecordHandler {
	return &RecordHandler{storage: store}
}

// Get handles GET /api/v1/records/{session_id}. Only a participant of
// the game may fetch its record.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	sessionID := model.SessionID(mux.Vars(r)["session_id"])
	record, err := h.storage.GetGameRecord(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if record.Participants[0] != identity && record.Participants[1] != identity {
		WriteError(w, model.ErrNotParticipant)
		return
	}

	response.JSON(w, http.StatusOK, response.GameRecordFromModel(record))
}

// List handles GET /api/v1/records, returning the caller's records
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	records, err := h.storage.ListGameRecordsFor(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := response.GameRecordList{Records: make([]response.GameRecord, 0, len(records))}
	for _, record := range records {
		out.Records = append(out.Records, response.GameRecordFromModel(record))
	}
	response.JSON(w, http.StatusOK, out)
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raunaq22/ChessMate-sub001/internal/api"
	"github.com/Raunaq22/ChessMate-sub001/internal/api/response"
	"github.com/Raunaq22/ChessMate-sub001/internal/factory"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage/memory"
	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     app.AuthService,
		Storage:         app.Storage,
		AnalysisService: app.AnalysisService,
		WSHandler:       app.WSHandler,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
	}
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(factory.TestSigningKey)
	require.NoError(t, err)
	return signed
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) saveRecord(t *testing.T, record *model.GameRecord) {
	t.Helper()
	require.NoError(t, ts.storage.SaveGameRecord(context.Background(), record))
}

func testRecord(sessionID model.SessionID, a, b model.Identity) *model.GameRecord {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.GameRecord{
		SessionID:    sessionID,
		Participants: [2]model.Identity{a, b},
		Result:       model.Result{Winner: a},
		Moves: []model.Move{
			{By: a, Data: "e2e4", At: started.Add(time.Minute)},
		},
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Minute),
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetRecordRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/records/s1", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.saveRecord(t, testRecord("s1", "alice", "bob"))

	rec := ts.request(t, http.MethodGet, "/api/v1/records/s1", nil, signToken(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	var got response.GameRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, []string{"alice", "bob"}, got.Participants)
	assert.Equal(t, "alice", got.Winner)
	assert.Len(t, got.Moves, 1)
}

func TestGetRecordNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/records/missing", nil, signToken(t, "alice"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecordOnlyForParticipants(t *testing.T) {
	ts := newTestServer(t)
	ts.saveRecord(t, testRecord("s1", "alice", "bob"))

	rec := ts.request(t, http.MethodGet, "/api/v1/records/s1", nil, signToken(t, "carol"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListRecords(t *testing.T) {
	ts := newTestServer(t)
	ts.saveRecord(t, testRecord("s1", "alice", "bob"))
	ts.saveRecord(t, testRecord("s2", "alice", "carol"))
	ts.saveRecord(t, testRecord("s3", "bob", "carol"))

	rec := ts.request(t, http.MethodGet, "/api/v1/records", nil, signToken(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	var got response.GameRecordList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Records, 2)
}

func TestListRecordsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/records", nil, signToken(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	var got response.GameRecordList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Records)
}

func TestAnalysisRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/analysis", map[string]any{"position": "startpos"}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalysisRejectsEmptyRequest(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/analysis", map[string]any{}, signToken(t, "alice"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisUnavailableWithoutBackend(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/analysis", map[string]any{"position": "startpos"}, signToken(t, "alice"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExpiredCredentialRejected(t *testing.T) {
	ts := newTestServer(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString(factory.TestSigningKey)
	require.NoError(t, err)

	rec := ts.request(t, http.MethodGet, "/api/v1/records", nil, signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

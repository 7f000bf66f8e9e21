package rules

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

type EvaluatorSuite struct {
	suite.Suite
	ctx     context.Context
	session *model.GameSession
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.session = &model.GameSession{
		ID:           "s1",
		Participants: [2]model.Identity{"alice", "bob"},
		Status:       model.StatusActive,
		Turn:         "alice",
		Moves: []model.Move{
			{By: "alice", Data: "e2e4"},
			{By: "bob", Data: "e7e5"},
		},
	}
}

func (s *EvaluatorSuite) candidate() model.Move {
	return model.Move{By: "alice", Data: "g1f3"}
}

func (s *EvaluatorSuite) TestPostsHistoryAndDecodesVerdict() {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/evaluate", r.URL.Path)

		var req evaluateRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal(model.SessionID("s1"), req.SessionID)
		s.Len(req.History, 2)
		s.Equal("g1f3", req.Candidate.Data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"legal":true,"terminal":true,"winner":"alice"}`))
	}))
	defer backend.Close()

	evaluator := NewHTTPEvaluator(backend.URL, time.Second, testutil.NopLogger())
	verdict, err := evaluator.Evaluate(s.ctx, s.session, s.candidate())
	s.Require().NoError(err)
	s.True(verdict.Legal)
	s.True(verdict.Terminal)
	s.Equal(model.Identity("alice"), verdict.Winner)
	s.False(verdict.Draw)
}

func (s *EvaluatorSuite) TestIllegalVerdict() {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"legal":false}`))
	}))
	defer backend.Close()

	evaluator := NewHTTPEvaluator(backend.URL, time.Second, testutil.NopLogger())
	verdict, err := evaluator.Evaluate(s.ctx, s.session, s.candidate())
	s.Require().NoError(err)
	s.False(verdict.Legal)
}

func (s *EvaluatorSuite) TestTimeoutSurfacedDistinctly() {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer backend.Close()

	evaluator := NewHTTPEvaluator(backend.URL, 20*time.Millisecond, testutil.NopLogger())
	_, err := evaluator.Evaluate(s.ctx, s.session, s.candidate())
	s.ErrorIs(err, model.ErrEvaluatorTimeout)
}

func (s *EvaluatorSuite) TestBackendErrorStatus() {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	evaluator := NewHTTPEvaluator(backend.URL, time.Second, testutil.NopLogger())
	_, err := evaluator.Evaluate(s.ctx, s.session, s.candidate())
	s.Error(err)
	s.NotErrorIs(err, model.ErrEvaluatorTimeout)
}

func (s *EvaluatorSuite) TestPermissiveAcceptsEverything() {
	evaluator := NewPermissive()
	verdict, err := evaluator.Evaluate(s.ctx, s.session, s.candidate())
	s.Require().NoError(err)
	s.True(verdict.Legal)
	s.False(verdict.Terminal)
}

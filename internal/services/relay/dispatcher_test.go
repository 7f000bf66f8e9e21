package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/mocks"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/registry"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/room"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/session"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage/memory"
	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	registry   *registry.Registry
	dispatcher *Dispatcher
	ctx        context.Context

	alice *mocks.MockConnection
	bob   *mocks.MockConnection
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.registry = registry.New(logger)
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rooms := room.New(s.registry, clk, logger)
	controller := session.NewController(
		rooms, s.registry, memory.New(), mocks.NewMockEvaluator(), clk,
		session.DefaultConfig(), logger,
	)
	s.dispatcher = NewDispatcher(controller, logger)
	s.ctx = context.Background()

	s.alice = mocks.NewMockConnection("conn-alice", "alice")
	s.bob = mocks.NewMockConnection("conn-bob", "bob")
	s.registry.Register("alice", s.alice)
	s.registry.Register("bob", s.bob)
}

func (s *DispatcherSuite) dispatch(t model.EventType, from model.Identity, conn *mocks.MockConnection, mv string) error {
	return s.dispatcher.Dispatch(s.ctx, model.PendingEvent{
		Type:      t,
		SessionID: "s1",
		From:      from,
		Conn:      conn,
		Move:      mv,
	})
}

func (s *DispatcherSuite) decodeLast(conn *mocks.MockConnection) map[string]any {
	payload := conn.LastPayload()
	s.Require().NotNil(payload)
	var out map[string]any
	s.Require().NoError(json.Unmarshal(payload, &out))
	return out
}

func (s *DispatcherSuite) TestDispatchRoutesFullExchange() {
	s.Require().NoError(s.dispatch(model.EventWaitForGame, "alice", s.alice, ""))
	s.Require().NoError(s.dispatch(model.EventWaitForGame, "bob", s.bob, ""))
	s.Equal("paired", s.decodeLast(s.bob)["type"])

	s.Require().NoError(s.dispatch(model.EventMove, "alice", s.alice, "e2e4"))
	s.Equal("move_applied", s.decodeLast(s.bob)["type"])

	s.Require().NoError(s.dispatch(model.EventOfferDraw, "bob", s.bob, ""))
	s.Require().NoError(s.dispatch(model.EventAcceptDraw, "alice", s.alice, ""))

	got := s.decodeLast(s.bob)
	s.Equal("state_update", got["type"])
	s.Equal("completed", got["status"])
}

func (s *DispatcherSuite) TestRejectionGoesToSenderOnly() {
	s.Require().NoError(s.dispatch(model.EventWaitForGame, "alice", s.alice, ""))
	s.Require().NoError(s.dispatch(model.EventWaitForGame, "bob", s.bob, ""))
	s.alice.Reset()
	s.bob.Reset()

	err := s.dispatch(model.EventMove, "bob", s.bob, "e7e5")
	s.ErrorIs(err, model.ErrIllegalMove)

	got := s.decodeLast(s.bob)
	s.Equal("error", got["type"])
	s.Equal("ILLEGAL_MOVE", got["code"])
	s.Empty(s.alice.Payloads())
}

func (s *DispatcherSuite) TestUnknownSessionReported() {
	err := s.dispatch(model.EventResign, "alice", s.alice, "")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal("SESSION_NOT_FOUND", s.decodeLast(s.alice)["code"])
}

func (s *DispatcherSuite) TestUnknownEventTypeRejected() {
	err := s.dispatch("teleport", "alice", s.alice, "")
	s.Error(err)
	s.Equal("INVALID_REQUEST", s.decodeLast(s.alice)["code"])
}

func (s *DispatcherSuite) TestNilConnectionDoesNotPanic() {
	err := s.dispatcher.Dispatch(s.ctx, model.PendingEvent{
		Type:      model.EventResign,
		SessionID: "s1",
		From:      "alice",
	})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

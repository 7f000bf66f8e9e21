package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/clock"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/registry"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/room"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/rules"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage"
)

// Config holds configuration for the session controller
type Config struct {
	// GraceWindow is how long a disconnected participant may rejoin
	// before the disconnect is treated as a resignation
	GraceWindow time.Duration
	// ExternalCallTimeout bounds calls to the rules evaluator and the
	// persistence collaborator
	ExternalCallTimeout time.Duration
}

// DefaultConfig returns default session controller configuration
func DefaultConfig() Config {
	return Config{
		GraceWindow:         30 * time.Second,
		ExternalCallTimeout: 3 * time.Second,
	}
}

// Controller owns the authoritative lifecycle of paired game sessions:
// turn order, draw-offer negotiation, resignation, termination, and
// disconnect grace handling. All transitions for a given session id
// execute under a single per-session serialization point; unrelated
// sessions never block on each other.
type Controller struct {
	rooms    *room.Service
	registry *registry.Registry
	storage  storage.Storage
	rules    rules.Evaluator
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config

	mu       sync.Mutex
	sessions map[model.SessionID]*model.GameSession
	locks    map[model.SessionID]*sessionLock
	timers   map[timerKey]clock.Timer
}

// sessionLock is one per-session serialization point. refs counts the
// goroutines holding or waiting on it so idle entries can be reaped.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// timerKey identifies a scheduled grace-window timer
type timerKey struct {
	sessionID model.SessionID
	identity  model.Identity
}

// NewController creates a new session controller
func NewController(
	rooms *room.Service,
	reg *registry.Registry,
	store storage.Storage,
	evaluator rules.Evaluator,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.GraceWindow == 0 {
		cfg.GraceWindow = DefaultConfig().GraceWindow
	}
	if cfg.ExternalCallTimeout == 0 {
		cfg.ExternalCallTimeout = DefaultConfig().ExternalCallTimeout
	}
	return &Controller{
		rooms:    rooms,
		registry: reg,
		storage:  store,
		rules:    evaluator,
		clock:    clk,
		logger:   logger.With(slog.String("component", "session")),
		cfg:      cfg,
		sessions: make(map[model.SessionID]*model.GameSession),
		locks:    make(map[model.SessionID]*sessionLock),
		timers:   make(map[timerKey]clock.Timer),
	}
}

// lockSession acquires the per-session serialization point
func (c *Controller) lockSession(sessionID model.SessionID) func() {
	c.mu.Lock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		c.locks[sessionID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.releaseLock(sessionID, l)
	}
}

// releaseLock drops the lock entry once no goroutine holds or waits on
// it and the id maps to neither a session nor a room, so probes of
// unknown ids leave no residue in the lock map.
func (c *Controller) releaseLock(sessionID model.SessionID, l *sessionLock) {
	c.mu.Lock()
	l.refs--
	if l.refs == 0 && c.locks[sessionID] == l {
		if _, live := c.sessions[sessionID]; !live {
			if _, err := c.rooms.Get(sessionID); err != nil {
				delete(c.locks, sessionID)
			}
		}
	}
	c.mu.Unlock()
}

func (c *Controller) get(sessionID model.SessionID) (*model.GameSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.sessions[sessionID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return g, nil
}

// getForEvent resolves the session a game event targets. A session id
// with only a waiting room maps to InvalidSessionState: the session
// exists but is not yet paired, which is distinct from an id nothing
// is known about.
func (c *Controller) getForEvent(sessionID model.SessionID) (*model.GameSession, error) {
	g, err := c.get(sessionID)
	if err == nil {
		return g, nil
	}
	if _, rerr := c.rooms.Get(sessionID); rerr == nil {
		return nil, model.ErrInvalidSessionState
	}
	return nil, model.ErrSessionNotFound
}

// GetSession returns a snapshot of the session state
func (c *Controller) GetSession(sessionID model.SessionID) (*model.GameSession, error) {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := *g
	snapshot.Moves = append([]model.Move(nil), g.Moves...)
	if g.Result != nil {
		result := *g.Result
		snapshot.Result = &result
	}
	return &snapshot, nil
}

// HandleJoin handles a wait_for_game request: the first join for a
// session id creates a waiting room, the second distinct identity
// pairs the session, and a participant rejoining an in-flight session
// within the grace window resumes it with state unchanged.
func (c *Controller) HandleJoin(ctx context.Context, sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	if g, err := c.get(sessionID); err == nil {
		return c.rejoin(g, identity)
	}

	r, paired, err := c.rooms.JoinWaiting(sessionID, identity)
	if err != nil {
		return err
	}

	if !paired {
		// Still waiting for an opponent; echo the authoritative state
		// back to the waiter
		c.broadcast(sessionID, model.StateUpdateEvent{
			Type:      model.EventStateUpdate,
			SessionID: sessionID,
			Status:    model.StatusWaiting,
		}, "")
		return nil
	}

	now := c.clock.Now()
	g := &model.GameSession{
		ID:           sessionID,
		Participants: [2]model.Identity{r.Members[0], r.Members[1]},
		Status:       model.StatusActive,
		Turn:         r.Members[0], // first-joined participant moves first
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	c.mu.Lock()
	c.sessions[sessionID] = g
	c.mu.Unlock()

	c.logger.Info("session paired",
		slog.String("session_id", string(sessionID)),
		slog.String("first", string(g.Participants[0])),
		slog.String("second", string(g.Participants[1])),
	)

	// The paired event is personalized: each side learns its opponent
	for _, p := range g.Participants {
		payload, err := json.Marshal(model.PairedEvent{
			Type:      model.EventPaired,
			SessionID: sessionID,
			Opponent:  g.Opponent(p),
			FirstTurn: g.Participants[0],
		})
		if err != nil {
			continue
		}
		c.registry.SendTo(p, payload)
	}
	return nil
}

// rejoin restores a disconnected participant to an in-flight session
func (c *Controller) rejoin(g *model.GameSession, identity model.Identity) error {
	if !g.HasParticipant(identity) {
		return model.ErrSessionFull
	}
	if g.Status == model.StatusCompleted {
		return model.ErrInvalidSessionState
	}

	if err := c.rooms.JoinGame(g.ID, identity); err != nil {
		return err
	}
	c.cancelGraceTimer(g.ID, identity)

	c.logger.Info("participant rejoined",
		slog.String("session_id", string(g.ID)),
		slog.String("identity", string(identity)),
	)

	c.broadcast(g.ID, model.NewStateUpdate(g), "")
	return nil
}

// StopWaiting handles stop_waiting: the identity leaves the waiting
// room before an opponent arrives
func (c *Controller) StopWaiting(sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	if _, err := c.get(sessionID); err == nil {
		// Already paired; leaving a live game is resignation, not
		// stop_waiting
		return model.ErrInvalidSessionState
	}
	return c.rooms.LeaveWaiting(sessionID, identity)
}

// Move validates and applies a move. Legal only in active status, only
// from the participant whose turn it is; move legality itself is
// judged by the rules evaluator.
func (c *Controller) Move(ctx context.Context, sessionID model.SessionID, identity model.Identity, moveData string) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.getForEvent(sessionID)
	if err != nil {
		return err
	}
	if !g.HasParticipant(identity) {
		return model.ErrNotParticipant
	}
	if g.Status != model.StatusActive {
		return model.ErrInvalidSessionState
	}
	if g.Turn != identity {
		return model.ErrIllegalMove
	}

	mv := model.Move{By: identity, Data: moveData, At: c.clock.Now()}

	evalCtx, cancel := context.WithTimeout(ctx, c.cfg.ExternalCallTimeout)
	verdict, err := c.rules.Evaluate(evalCtx, g, mv)
	cancel()
	if err != nil {
		if errors.Is(err, model.ErrEvaluatorTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return model.ErrEvaluatorTimeout
		}
		return err
	}
	if !verdict.Legal {
		return model.ErrIllegalMove
	}

	g.Moves = append(g.Moves, mv)
	g.Turn = g.Opponent(identity)
	g.UpdatedAt = mv.At

	if verdict.Terminal {
		result := model.Result{Winner: verdict.Winner, Draw: verdict.Draw}
		c.complete(ctx, g, result)
	}

	c.broadcast(sessionID, model.MoveAppliedEvent{
		Type:      model.EventMoveApplied,
		SessionID: sessionID,
		Move:      moveData,
		By:        identity,
		Status:    g.Status,
		Turn:      g.Turn,
		Result:    g.Result,
	}, "")
	return nil
}

// OfferDraw proposes a draw. Legal only in active status, once per
// round.
func (c *Controller) OfferDraw(ctx context.Context, sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.getForEvent(sessionID)
	if err != nil {
		return err
	}
	if !g.HasParticipant(identity) {
		return model.ErrNotParticipant
	}
	if g.Status == model.StatusDrawOffered && g.DrawOfferedBy == identity {
		return model.ErrDuplicateOffer
	}
	if g.Status != model.StatusActive {
		return model.ErrInvalidSessionState
	}

	g.Status = model.StatusDrawOffered
	g.DrawOfferedBy = identity
	g.UpdatedAt = c.clock.Now()

	c.broadcast(sessionID, model.NewStateUpdate(g), "")
	return nil
}

// AcceptDraw accepts a pending draw offer. Legal only in draw_offered
// status, only from the side that did not offer.
func (c *Controller) AcceptDraw(ctx context.Context, sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.guardDrawResponse(sessionID, identity)
	if err != nil {
		return err
	}

	c.complete(ctx, g, model.Result{Draw: true})
	c.broadcast(sessionID, model.NewStateUpdate(g), "")
	return nil
}

// DeclineDraw declines a pending draw offer, returning the session to
// active with turn unchanged
func (c *Controller) DeclineDraw(ctx context.Context, sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.guardDrawResponse(sessionID, identity)
	if err != nil {
		return err
	}

	g.Status = model.StatusActive
	g.DrawOfferedBy = ""
	g.UpdatedAt = c.clock.Now()

	c.broadcast(sessionID, model.NewStateUpdate(g), "")
	return nil
}

func (c *Controller) guardDrawResponse(sessionID model.SessionID, identity model.Identity) (*model.GameSession, error) {
	g, err := c.getForEvent(sessionID)
	if err != nil {
		return nil, err
	}
	if !g.HasParticipant(identity) {
		return nil, model.ErrNotParticipant
	}
	if g.Status != model.StatusDrawOffered {
		return nil, model.ErrInvalidSessionState
	}
	if g.DrawOfferedBy == identity {
		return nil, model.ErrNotAuthorizedForTransition
	}
	return g, nil
}

// Resign ends the session immediately with the other participant as
// winner. Legal from either side in active or draw_offered status.
func (c *Controller) Resign(ctx context.Context, sessionID model.SessionID, identity model.Identity) error {
	unlock := c.lockSession(sessionID)
	defer unlock()

	g, err := c.getForEvent(sessionID)
	if err != nil {
		return err
	}
	if !g.HasParticipant(identity) {
		return model.ErrNotParticipant
	}
	if g.Status != model.StatusActive && g.Status != model.StatusDrawOffered {
		return model.ErrInvalidSessionState
	}

	c.complete(ctx, g, model.Result{Winner: g.Opponent(identity)})
	c.broadcast(sessionID, model.NewStateUpdate(g), "")
	return nil
}

// HandleDisconnect records that a connection of identity closed. The
// session is not ended: the remaining participant is notified and a
// grace-window timer is scheduled during which the identity may rejoin
// and resume with state unchanged. If the identity still holds other
// live connections, nothing happens.
func (c *Controller) HandleDisconnect(sessionID model.SessionID, identity model.Identity) {
	unlock := c.lockSession(sessionID)
	defer unlock()

	if len(c.registry.ConnectionsOf(identity)) > 0 {
		return
	}

	g, err := c.get(sessionID)
	if err != nil {
		// Never paired; drop out of the waiting room
		_ = c.rooms.LeaveWaiting(sessionID, identity)
		return
	}
	if !g.HasParticipant(identity) {
		return
	}

	c.rooms.LeaveGame(sessionID, identity)

	if g.Status == model.StatusCompleted {
		c.maybeDiscard(g)
		return
	}

	c.logger.Info("participant disconnected, grace window started",
		slog.String("session_id", string(sessionID)),
		slog.String("identity", string(identity)),
		slog.Duration("grace_window", c.cfg.GraceWindow),
	)

	c.broadcast(sessionID, model.NewStateUpdate(g), identity)

	key := timerKey{sessionID: sessionID, identity: identity}
	c.mu.Lock()
	if _, exists := c.timers[key]; !exists {
		c.timers[key] = c.clock.AfterFunc(c.cfg.GraceWindow, func() {
			c.expireGrace(sessionID, identity)
		})
	}
	c.mu.Unlock()
}

// expireGrace fires when a disconnected participant's grace window
// elapses without a rejoin; the disconnect is then treated as a
// resignation. A rejoin racing with expiry resolves in favor of
// whichever acquires the session lock first; the loser is a no-op.
func (c *Controller) expireGrace(sessionID model.SessionID, identity model.Identity) {
	unlock := c.lockSession(sessionID)
	defer unlock()

	key := timerKey{sessionID: sessionID, identity: identity}
	c.mu.Lock()
	_, pending := c.timers[key]
	delete(c.timers, key)
	c.mu.Unlock()
	if !pending {
		// Rejoin won the race
		return
	}

	g, err := c.get(sessionID)
	if err != nil {
		return
	}
	if g.Status != model.StatusActive && g.Status != model.StatusDrawOffered {
		return
	}

	c.logger.Info("grace window expired, treating as resignation",
		slog.String("session_id", string(sessionID)),
		slog.String("identity", string(identity)),
	)

	c.complete(context.Background(), g, model.Result{Winner: g.Opponent(identity)})
	c.broadcast(sessionID, model.NewStateUpdate(g), "")
	c.maybeDiscard(g)
}

// cancelGraceTimer stops a pending grace timer. Cancellation is
// idempotent: cancelling an already-fired or absent timer is a no-op.
func (c *Controller) cancelGraceTimer(sessionID model.SessionID, identity model.Identity) {
	key := timerKey{sessionID: sessionID, identity: identity}
	c.mu.Lock()
	t, ok := c.timers[key]
	if ok {
		delete(c.timers, key)
	}
	c.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// complete transitions the session to its terminal status and flushes
// the final record to the persistence collaborator. Flush failures are
// logged; they never undo the transition or block the broadcast.
func (c *Controller) complete(ctx context.Context, g *model.GameSession, result model.Result) {
	now := c.clock.Now()
	g.Status = model.StatusCompleted
	g.Result = &result
	g.DrawOfferedBy = ""
	g.Turn = ""
	g.UpdatedAt = now

	for _, p := range g.Participants {
		c.cancelGraceTimer(g.ID, p)
	}

	record := &model.GameRecord{
		SessionID:    g.ID,
		Participants: g.Participants,
		Result:       result,
		Moves:        append([]model.Move(nil), g.Moves...),
		StartedAt:    g.CreatedAt,
		CompletedAt:  now,
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.ExternalCallTimeout)
	defer cancel()
	if err := c.storage.SaveGameRecord(flushCtx, record); err != nil {
		c.logger.Warn("failed to flush game record",
			slog.String("session_id", string(g.ID)),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("session completed",
		slog.String("session_id", string(g.ID)),
		slog.String("winner", string(result.Winner)),
		slog.Bool("draw", result.Draw),
	)
}

// maybeDiscard drops a completed session once both participants have
// left its room
func (c *Controller) maybeDiscard(g *model.GameSession) {
	if g.Status != model.StatusCompleted {
		return
	}
	r, err := c.rooms.Get(g.ID)
	if err == nil && r.PresentCount() > 0 {
		return
	}

	c.rooms.Delete(g.ID)
	c.mu.Lock()
	delete(c.sessions, g.ID)
	c.mu.Unlock()

	c.logger.Info("session discarded", slog.String("session_id", string(g.ID)))
}

// broadcast marshals an event and fans it out to the room. Every
// accepted transition produces exactly one broadcast; both
// participants, the actor included, share one authoritative echo.
func (c *Controller) broadcast(sessionID model.SessionID, event any, excluding model.Identity) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal broadcast event",
			slog.String("session_id", string(sessionID)),
			slog.String("error", err.Error()),
		)
		return
	}
	c.rooms.Broadcast(sessionID, payload, excluding)
}

// Close cancels all pending grace timers and drops all sessions
func (c *Controller) Close() {
	c.mu.Lock()
	timers := c.timers
	c.timers = make(map[timerKey]clock.Timer)
	c.sessions = make(map[model.SessionID]*model.GameSession)
	c.locks = make(map[model.SessionID]*sessionLock)
	c.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

package room

import (
	"log/slog"
	"sync"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/clock"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/registry"
)

// Service tracks which identities are members of which room. A room is
// created on the first join request for a session id, promoted from
// waiting to game when a second distinct identity joins, and deleted
// when it empties out.
//
// The service guards its own map; callers that need a transition and a
// membership change applied atomically serialize per session id above
// this layer.
type Service struct {
	mu       sync.RWMutex
	rooms    map[model.SessionID]*model.Room
	registry *registry.Registry
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates an empty room membership service
func New(reg *registry.Registry, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		rooms:    make(map[model.SessionID]*model.Room),
		registry: reg,
		clock:    clk,
		logger:   logger.With(slog.String("component", "rooms")),
	}
}

// Get returns the room for a session id
func (s *Service) Get(sessionID model.SessionID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[sessionID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return r, nil
}

// JoinWaiting handles a wait_for_game request. Joining a session id
// with no current room creates a waiting room. Joining a waiting room
// that already holds one distinct other identity promotes it to a game
// room; the returned paired flag signals the state machine to create
// the session. Joining a game room the identity is already a member of
// marks it present again (reconnection).
func (s *Service) JoinWaiting(sessionID model.SessionID, identity model.Identity) (*model.Room, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[sessionID]
	if !ok {
		r = &model.Room{
			SessionID: sessionID,
			Kind:      model.RoomWaiting,
			Members:   []model.Identity{identity},
			Present:   map[model.Identity]bool{identity: true},
			CreatedAt: s.clock.Now(),
		}
		s.rooms[sessionID] = r
		s.logger.Info("waiting room created",
			slog.String("session_id", string(sessionID)),
			slog.String("identity", string(identity)),
		)
		return r, false, nil
	}

	if r.HasMember(identity) {
		// Reconnection, or a second tab of the same identity
		r.Present[identity] = true
		return r, false, nil
	}

	if r.Kind == model.RoomGame || len(r.Members) >= 2 {
		return nil, false, model.ErrSessionFull
	}

	r.Members = append(r.Members, identity)
	r.Present[identity] = true
	r.Kind = model.RoomGame
	s.logger.Info("room promoted to game",
		slog.String("session_id", string(sessionID)),
		slog.String("first", string(r.Members[0])),
		slog.String("second", string(r.Members[1])),
	)
	return r, true, nil
}

// LeaveWaiting handles stop_waiting. The identity is removed from the
// waiting room; an emptied room is deleted.
func (s *Service) LeaveWaiting(sessionID model.SessionID, identity model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[sessionID]
	if !ok || r.Kind != model.RoomWaiting {
		return model.ErrSessionNotFound
	}
	if !r.HasMember(identity) {
		return model.ErrNotParticipant
	}

	members := r.Members[:0]
	for _, m := range r.Members {
		if m != identity {
			members = append(members, m)
		}
	}
	r.Members = members
	delete(r.Present, identity)

	if len(r.Members) == 0 {
		delete(s.rooms, sessionID)
		s.logger.Info("waiting room deleted", slog.String("session_id", string(sessionID)))
	}
	return nil
}

// JoinGame marks an existing participant present in a game room again
// (rejoin within the grace window)
func (s *Service) JoinGame(sessionID model.SessionID, identity model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[sessionID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if !r.HasMember(identity) {
		return model.ErrNotParticipant
	}
	r.Present[identity] = true
	return nil
}

// LeaveGame marks a participant absent from a game room. Membership is
// retained: the identity remains a participant of the session and may
// rejoin within the grace window.
func (s *Service) LeaveGame(sessionID model.SessionID, identity model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[sessionID]
	if !ok {
		return
	}
	r.Present[identity] = false
}

// Delete removes a room outright
func (s *Service) Delete(sessionID model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[sessionID]; ok {
		delete(s.rooms, sessionID)
		s.logger.Info("room deleted", slog.String("session_id", string(sessionID)))
	}
}

// Broadcast delivers payload to every member of the room except the
// optionally excluded identity, using the registry's per-identity
// fan-out. Delivery failures are handled by the registry; they never
// propagate to the caller.
func (s *Service) Broadcast(sessionID model.SessionID, payload []byte, excluding model.Identity) {
	s.mu.RLock()
	r, ok := s.rooms[sessionID]
	var members []model.Identity
	if ok {
		members = append(members, r.Members...)
	}
	s.mu.RUnlock()

	for _, m := range members {
		if m == excluding {
			continue
		}
		s.registry.SendTo(m, payload)
	}
}

// Close drops all rooms
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = make(map[model.SessionID]*model.Room)
}

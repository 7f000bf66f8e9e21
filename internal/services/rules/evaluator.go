package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Verdict is the rules evaluator's classification of a candidate move
type Verdict struct {
	// Legal reports whether the move is legal in the current position
	Legal bool
	// Terminal reports whether the resulting position ends the game
	// (checkmate, stalemate, or another end condition)
	Terminal bool
	// Winner is the winning participant when Terminal and not Draw
	Winner model.Identity
	// Draw reports a drawn terminal position
	Draw bool
}

// Evaluator judges move legality and terminal-result classification.
// Move legality itself is delegated here; the session state machine
// only enforces lifecycle and turn-order guards.
type Evaluator interface {
	Evaluate(ctx context.Context, session *model.GameSession, candidate model.Move) (Verdict, error)
}

// evaluateRequest is the wire shape sent to the external evaluator
type evaluateRequest struct {
	SessionID    model.SessionID   `json:"session_id"`
	Participants [2]model.Identity `json:"participants"`
	History      []model.Move      `json:"history"`
	Candidate    model.Move        `json:"candidate"`
}

// evaluateResponse is the wire shape returned by the external evaluator
type evaluateResponse struct {
	Legal    bool           `json:"legal"`
	Terminal bool           `json:"terminal"`
	Winner   model.Identity `json:"winner,omitempty"`
	Draw     bool           `json:"draw,omitempty"`
}

// HTTPEvaluator calls an external rules service over HTTP with a
// bounded timeout, so a slow evaluator cannot stall a session's
// serialization point indefinitely.
type HTTPEvaluator struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPEvaluator creates an evaluator client for the given base URL
func NewHTTPEvaluator(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPEvaluator {
	return &HTTPEvaluator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger.With(slog.String("component", "rules")),
	}
}

// Evaluate posts the session history and candidate move to the rules
// service. A timeout surfaces as model.ErrEvaluatorTimeout so callers
// can report a distinct retryable code to the actor.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, session *model.GameSession, candidate model.Move) (Verdict, error) {
	reqBody, err := json.Marshal(evaluateRequest{
		SessionID:    session.ID,
		Participants: session.Participants,
		History:      session.Moves,
		Candidate:    candidate,
	})
	if err != nil {
		return Verdict{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/evaluate", bytes.NewReader(reqBody))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Verdict{}, model.ErrEvaluatorTimeout
		}
		return Verdict{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("rules evaluator returned status %d", resp.StatusCode)
	}

	var body evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Legal:    body.Legal,
		Terminal: body.Terminal,
		Winner:   body.Winner,
		Draw:     body.Draw,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}

// Permissive is a local evaluator that accepts every move and never
// classifies a position as terminal. It backs tests and standalone
// operation without an external rules service.
type Permissive struct{}

// NewPermissive creates a Permissive evaluator
func NewPermissive() *Permissive {
	return &Permissive{}
}

// Evaluate accepts the candidate move unconditionally
func (p *Permissive) Evaluate(_ context.Context, _ *model.GameSession, _ model.Move) (Verdict, error) {
	return Verdict{Legal: true}, nil
}

package mocks

import (
	"context"
	"sync"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/rules"
)

// MockEvaluator is a scriptable rules evaluator for testing. Queued
// verdicts and errors are consumed in order; when the queue is empty
// every move is judged legal and non-terminal.
type MockEvaluator struct {
	mu    sync.Mutex
	queue []evalResult
	calls []model.Move
}

type evalResult struct {
	verdict rules.Verdict
	err     error
}

// Ensure MockEvaluator implements Evaluator
var _ rules.Evaluator = (*MockEvaluator)(nil)

// NewMockEvaluator creates an empty MockEvaluator
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{}
}

// QueueVerdict enqueues a verdict for the next call
func (m *MockEvaluator) QueueVerdict(v rules.Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, evalResult{verdict: v})
}

// QueueError enqueues an error for the next call
func (m *MockEvaluator) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, evalResult{err: err})
}

// Evaluate returns the next queued result, defaulting to a legal,
// non-terminal verdict
func (m *MockEvaluator) Evaluate(_ context.Context, _ *model.GameSession, candidate model.Move) (rules.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, candidate)
	if len(m.queue) == 0 {
		return rules.Verdict{Legal: true}, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next.verdict, next.err
}

// Calls returns the moves evaluated so far
func (m *MockEvaluator) Calls() []model.Move {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Move, len(m.calls))
	copy(out, m.calls)
	return out
}

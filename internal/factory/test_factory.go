package factory

import (
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/mocks"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/analysis"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/auth"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/session"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage/memory"
	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

// TestSigningKey is the shared HMAC key test credentials are signed with
var TestSigningKey = []byte("test-signing-key")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockEvaluator *mocks.MockEvaluator
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockEvaluator := mocks.NewMockEvaluator()
	logger := testutil.NopLogger()

	app := newWithDependencies(
		store,
		mockClock,
		mockEvaluator,
		analysis.New("", time.Second, logger),
		auth.Config{SigningKey: TestSigningKey},
		session.DefaultConfig(),
		nil,
		logger,
	)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockEvaluator: mockEvaluator,
	}
}

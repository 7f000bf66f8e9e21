package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Request asks the external analysis service to evaluate a position
// or a finished game. The request body is forwarded opaquely; this
// service does not interpret positions itself.
type Request struct {
	SessionID model.SessionID `json:"session_id,omitempty"`
	Moves     []model.Move    `json:"moves,omitempty"`
	Position  string          `json:"position,omitempty"`
	Depth     int             `json:"depth,omitempty"`
}

// Service proxies analysis requests to an external engine with a
// bounded timeout. Analysis is best-effort and advisory: a failure
// here never affects session state.
type Service struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an analysis client for the given base URL. An empty
// base URL disables the service; Analyze then reports unavailability.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger.With(slog.String("component", "analysis")),
	}
}

// ErrUnavailable is returned when no analysis backend is configured
var ErrUnavailable = errors.New("analysis: no backend configured")

// Analyze forwards the request to the analysis backend and returns
// its raw JSON response. A timeout surfaces as
// model.ErrAnalysisTimeout.
func (s *Service) Analyze(ctx context.Context, req Request) (json.RawMessage, error) {
	if s.baseURL == "" {
		return nil, ErrUnavailable
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/analyze", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			s.logger.Warn("analysis backend timed out")
			return nil, model.ErrAnalysisTimeout
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("analysis backend returned invalid JSON")
	}
	return json.RawMessage(body), nil
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

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "play <session-id>",
		Short: "Join a game session over the websocket transport",
		Long: `Connect to the server's websocket endpoint and join the given
session. The first player to join waits; the game starts when a second
player joins with the same session id.

Once connected, type commands at the prompt:
  move <data>   submit a move
  draw          offer a draw
  accept        accept a pending draw offer
  decline       decline a pending draw offer
  resign        resign the game
  quit          disconnect

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// wireEvent mirrors the server's inbound envelope shape
type wireEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Move      string `json:"move,omitempty"`
}

func play(sessionID string, jsonOutput bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("a credential is required to connect (--token or CHESSMATE_TOKEN)")
	}

	wsURL, err := websocketURL(cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			return fmt.Errorf("connection rejected: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteJSON(wireEvent{Type: "wait_for_game", SessionID: sessionID}); err != nil {
		return fmt.Errorf("failed to join session: %w", err)
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- printEvents(conn, jsonOutput)
	}()

	inputCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		select {
		case <-sigCh:
			return nil
		case err := <-done:
			return err
		case line, ok := <-inputCh:
			if !ok {
				return nil
			}
			ev, quit, err := parseCommand(line, sessionID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				continue
			}
			if quit {
				return nil
			}
			if ev == nil {
				continue
			}
			if err := conn.WriteJSON(ev); err != nil {
				return fmt.Errorf("failed to send: %w", err)
			}
		}
	}
}

func parseCommand(line, sessionID string) (*wireEvent, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch fields[0] {
	case "move":
		if len(fields) != 2 {
			return nil, false, fmt.Errorf("usage: move <data>")
		}
		return &wireEvent{Type: "move", SessionID: sessionID, Move: fields[1]}, false, nil
	case "draw":
		return &wireEvent{Type: "offer_draw", SessionID: sessionID}, false, nil
	case "accept":
		return &wireEvent{Type: "accept_draw", SessionID: sessionID}, false, nil
	case "decline":
		return &wireEvent{Type: "decline_draw", SessionID: sessionID}, false, nil
	case "resign":
		return &wireEvent{Type: "resign", SessionID: sessionID}, false, nil
	case "quit":
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unknown command: %s", fields[0])
	}
}

func printEvents(conn *websocket.Conn, jsonOutput bool) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		if jsonOutput {
			fmt.Println(string(raw))
			continue
		}

		var ev map[string]any
		if err := json.Unmarshal(raw, &ev); err != nil {
			fmt.Println(string(raw))
			continue
		}
		printEvent(ev)
	}
}

func printEvent(ev map[string]any) {
	switch ev["type"] {
	case "paired":
		fmt.Printf("Paired with %v; %v moves first\n", ev["opponent"], ev["first_turn"])
	case "move_applied":
		fmt.Printf("Move %v by %v", ev["move"], ev["by"])
		if turn, ok := ev["turn"]; ok {
			fmt.Printf("; %v to move", turn)
		}
		fmt.Println()
		printResult(ev)
	case "state_update":
		fmt.Printf("Session is %v", ev["status"])
		if by, ok := ev["draw_offered_by"]; ok {
			fmt.Printf(" (draw offered by %v)", by)
		}
		fmt.Println()
		printResult(ev)
	case "error":
		fmt.Printf("Rejected: %v (%v)\n", ev["message"], ev["code"])
	default:
		data, _ := json.Marshal(ev)
		fmt.Println(string(data))
	}
}

func printResult(ev map[string]any) {
	result, ok := ev["result"].(map[string]any)
	if !ok {
		return
	}
	if draw, _ := result["draw"].(bool); draw {
		fmt.Println("Game over: draw")
		return
	}
	if winner, ok := result["winner"]; ok {
		fmt.Printf("Game over: %v won\n", winner)
	}
}

// websocketURL converts the configured HTTP server URL into the
// websocket endpoint URL with the credential attached
func websocketURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

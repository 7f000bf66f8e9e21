package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameRecord:
		o.printGameRecord(v)
	case GameRecordList:
		o.printGameRecordList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Move response type (matches API)
type Move struct {
	By   string    `json:"by"`
	Data string    `json:"data"`
	At   time.Time `json:"at"`
}

// GameRecord response type
type GameRecord struct {
	SessionID    string    `json:"session_id"`
	Participants []string  `json:"participants"`
	Winner       string    `json:"winner,omitempty"`
	Draw         bool      `json:"draw,omitempty"`
	Moves        []Move    `json:"moves"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// GameRecordList response type
type GameRecordList struct {
	Records []GameRecord `json:"records"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGameRecord(r GameRecord) {
	fmt.Printf("Session: %s\n", r.SessionID)
	if len(r.Participants) == 2 {
		fmt.Printf("Players: %s vs %s\n", r.Participants[0], r.Participants[1])
	}
	if r.Draw {
		fmt.Println("Result: draw")
	} else if r.Winner != "" {
		fmt.Printf("Result: %s won\n", r.Winner)
	}
	fmt.Printf("Played: %s - %s\n",
		r.StartedAt.Format(time.RFC3339), r.CompletedAt.Format(time.RFC3339))
	fmt.Printf("Moves (%d):\n", len(r.Moves))
	for i, m := range r.Moves {
		fmt.Printf("  %d. %s (%s)\n", i+1, m.Data, m.By)
	}
}

func (o *Output) printGameRecordList(l GameRecordList) {
	if len(l.Records) == 0 {
		fmt.Println("No records")
		return
	}
	for _, r := range l.Records {
		result := "draw"
		if !r.Draw && r.Winner != "" {
			result = r.Winner + " won"
		}
		players := ""
		if len(r.Participants) == 2 {
			players = r.Participants[0] + " vs " + r.Participants[1]
		}
		fmt.Printf("%s  %s  %s  (%d moves)\n", r.SessionID, players, result, len(r.Moves))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

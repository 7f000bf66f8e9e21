package cli

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		position  string
		sessionID string
		depth     int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Request position analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if position != "" {
				req["position"] = position
			}
			if sessionID != "" {
				req["session_id"] = sessionID
			}
			if depth > 0 {
				req["depth"] = depth
			}

			var result map[string]any
			if err := client.Post("/api/v1/analysis", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "", "Position to analyze")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to analyze")
	cmd.Flags().IntVar(&depth, "depth", 0, "Analysis depth")

	return cmd
}

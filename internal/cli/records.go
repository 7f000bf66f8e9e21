package cli

import (
	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Fetch completed game records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your completed games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameRecordList
			if err := client.Get("/api/v1/records", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <session-id>",
		Short: "Fetch one game record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameRecord
			if err := client.Get("/api/v1/records/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}

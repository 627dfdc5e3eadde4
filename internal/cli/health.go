package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result HealthResult
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

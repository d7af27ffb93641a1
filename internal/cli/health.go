package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/teamrank/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health

			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			return output(cmd).Print(result)
		},
	}
}

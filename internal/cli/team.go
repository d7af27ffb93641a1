package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/teamrank/internal/api/request"
	"github.com/mcoot/teamrank/internal/api/response"
)

func newTeamCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "team <name>...",
		Short: "Split players into two balanced teams",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.BalanceTeamsRequest{Players: args, Metric: metric}
			var result response.TeamSplit

			if err := client.Post(cmd.Context(), "/api/v1/teams", req, &result); err != nil {
				return err
			}

			return output(cmd).Print(result)
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "", "Fairness metric: mu or conservative (default: server default)")

	return cmd
}

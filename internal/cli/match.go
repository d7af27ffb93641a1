package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/teamrank/internal/api/request"
	"github.com/mcoot/teamrank/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	var teamA, teamB []string
	var winner string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Record a match result",
		Example: `  teamrank match --team-a alice,bob --team-b carol,dave --winner A
  teamrank match --team-a "alice bob" --team-b "carol dave" --winner b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if winner == "" {
				return fmt.Errorf("--winner is required")
			}

			req := request.RecordMatchRequest{
				TeamA:  splitAll(teamA),
				TeamB:  splitAll(teamB),
				Winner: winner,
			}
			var result response.MatchResult

			if err := client.Post(cmd.Context(), "/api/v1/matches", req, &result); err != nil {
				return err
			}

			return output(cmd).Print(result)
		},
	}

	cmd.Flags().StringSliceVar(&teamA, "team-a", nil, "Team A players (required)")
	cmd.Flags().StringSliceVar(&teamB, "team-b", nil, "Team B players (required)")
	cmd.Flags().StringVar(&winner, "winner", "", "Winning team, A or B (required)")
	_ = cmd.MarkFlagRequired("team-a")
	_ = cmd.MarkFlagRequired("team-b")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}

// splitAll accepts both comma and whitespace separated names
func splitAll(values []string) []string {
	var names []string
	for _, v := range values {
		names = append(names, strings.Fields(v)...)
	}
	return names
}

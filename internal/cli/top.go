package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/teamrank/internal/api/response"
	"github.com/mcoot/teamrank/internal/services/leaderboard"
)

func newTopCmd() *cobra.Command {
	var limit, activeDays, minMatches int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if activeDays > 0 {
				q.Set("active_days", strconv.Itoa(activeDays))
			}
			if minMatches > 0 {
				q.Set("min_matches", strconv.Itoa(minMatches))
			}
			var result response.Leaderboard

			if err := client.Get(cmd.Context(), "/api/v1/leaderboard?"+q.Encode(), &result); err != nil {
				return err
			}

			return output(cmd).Print(result)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", leaderboard.DefaultLimit, "Number of players to show, 0 for all")
	cmd.Flags().IntVar(&activeDays, "active-days", 0, "Only players who played within this many days")
	cmd.Flags().IntVar(&minMatches, "min-matches", 0, "Only players with at least this many matches")

	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/teamrank/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) error {
	switch o.format {
	case FormatJSON:
		return o.printJSON(data)
	case FormatYAML:
		return o.printYAML(data)
	default:
		return o.printText(data)
	}
}

func (o *Output) printJSON(data any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printYAML goes through JSON so keys and field order match the API
func (o *Output) printYAML(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(o.w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow style and quoting inherited from the JSON source
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func (o *Output) printText(data any) error {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.PlayerList:
		o.printPlayerList(v)
	case response.RegisterResponse:
		o.printRegister(v)
	case response.MatchResult:
		o.printMatchResult(v)
	case response.TeamSplit:
		o.printTeamSplit(v)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case response.Health:
		fmt.Fprintf(o.w, "Server: %s (strategy: %s)\n", v.Status, v.Strategy)
	default:
		// Fallback to JSON for unknown types
		return o.printJSON(data)
	}
	return nil
}

// ratingText shows the value players are ranked by
func ratingText(r response.Rating) string {
	switch {
	case r.Elo != nil:
		return fmt.Sprintf("%d", *r.Elo)
	case r.Mu != nil:
		return fmt.Sprintf("%.2f", *r.Mu)
	default:
		return "-"
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "%s (%s)\n", p.DisplayName, p.Key)
	if p.Rating.Sigma != nil {
		fmt.Fprintf(o.w, "  Rating:     %s (sigma %.2f)\n", ratingText(p.Rating), *p.Rating.Sigma)
	} else {
		fmt.Fprintf(o.w, "  Rating:     %s\n", ratingText(p.Rating))
	}
	fmt.Fprintf(o.w, "  Skill:      %.2f ± %.2f (conservative %.2f)\n", p.Skill.Mean, p.Skill.Uncertainty, p.Skill.Conservative)
	fmt.Fprintf(o.w, "  Record:     %d W / %d L (%.1f%%)\n", p.Wins, p.Losses, p.WinRate*100)
	if p.LastMatchAt != nil {
		fmt.Fprintf(o.w, "  Last match: %s\n", p.LastMatchAt.UTC().Format("2006-01-02 15:04 MST"))
	}
}

func (o *Output) printPlayerList(l response.PlayerList) {
	if len(l.Players) == 0 {
		fmt.Fprintln(o.w, "No players registered yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tRATING\tMATCHES\tWINS")
	for _, p := range l.Players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.Key, p.DisplayName, ratingText(p.Rating), p.MatchesPlayed, p.Wins)
	}
	_ = tw.Flush()
}

func (o *Output) printRegister(r response.RegisterResponse) {
	created := make(map[string]bool, len(r.Created))
	for _, key := range r.Created {
		created[key] = true
	}
	var added, existing []string
	for _, p := range r.Players {
		if created[p.Key] {
			added = append(added, p.DisplayName)
		} else {
			existing = append(existing, p.DisplayName)
		}
	}
	if len(added) > 0 {
		fmt.Fprintf(o.w, "Registered: %s\n", strings.Join(added, ", "))
	}
	if len(existing) > 0 {
		fmt.Fprintf(o.w, "Already registered: %s\n", strings.Join(existing, ", "))
	}
}

func (o *Output) printMatchResult(m response.MatchResult) {
	fmt.Fprintf(o.w, "Match %s: team %s won\n", m.ID, m.Winner)
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, team := range []struct {
		label   string
		changes []response.RatingChange
	}{{"A", m.TeamA}, {"B", m.TeamB}} {
		for _, c := range team.changes {
			fmt.Fprintf(tw, "  %s\t%s\t%s -> %s\n", team.label, c.DisplayName, ratingText(c.Before), ratingText(c.After))
		}
	}
	_ = tw.Flush()
}

func (o *Output) printTeamSplit(t response.TeamSplit) {
	team := func(label string, players []response.Player, average, win float64) {
		fmt.Fprintf(o.w, "Team %s (average %.2f, %.1f%% to win)\n", label, average, win*100)
		for _, p := range players {
			fmt.Fprintf(o.w, "  %s (%s)\n", p.DisplayName, ratingText(p.Rating))
		}
	}
	team("A", t.TeamA, t.AverageA, t.Prediction.WinA)
	team("B", t.TeamB, t.AverageB, t.Prediction.WinB)
	fmt.Fprintf(o.w, "Difference (%s): %.2f\n", t.Metric, t.Difference)
}

func (o *Output) printLeaderboard(l response.Leaderboard) {
	if len(l.Standings) == 0 {
		fmt.Fprintln(o.w, "No players registered yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tRATING\tMATCHES\tWIN%")
	for _, s := range l.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f\n", s.Rank, s.Player.DisplayName, ratingText(s.Player.Rating), s.Player.MatchesPlayed, s.Player.WinRate*100)
	}
	_ = tw.Flush()
}

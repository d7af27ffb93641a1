// Package discord exposes the rating services as Discord slash commands
package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/teamrank/internal/services/leaderboard"
)

// Command names
const (
	CommandAddPlayer = "add_player"
	CommandMatch     = "match"
	CommandTop       = "top"
	CommandTeam      = "team"
)

// Option names
const (
	OptionPlayers = "players"
	OptionWinner  = "winner"
	OptionTeamA   = "team_a"
	OptionTeamB   = "team_b"
	OptionCount   = "count"
	OptionActive  = "active_days"
)

// Commands returns the slash command definitions registered with Discord
func Commands() []*discordgo.ApplicationCommand {
	minCount := 1.0
	minDays := 1.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandAddPlayer,
			Description: "Register one or more players",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionPlayers,
					Description: "Player names separated by spaces",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandMatch,
			Description: "Record a match result and update ratings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionWinner,
					Description: "Winning team",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Team A", Value: "A"},
						{Name: "Team B", Value: "B"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionTeamA,
					Description: "Team A players separated by spaces",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionTeamB,
					Description: "Team B players separated by spaces",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandTop,
			Description: "Show the leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionCount,
					Description: "Number of players to show (default 20)",
					MinValue:    &minCount,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionActive,
					Description: "Only players who played in the last N days",
					MinValue:    &minDays,
					MaxValue:    leaderboard.MaxActiveDays,
				},
			},
		},
		{
			Name:        CommandTeam,
			Description: "Split players into two balanced teams",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionPlayers,
					Description: "Player names separated by spaces",
					Required:    true,
				},
			},
		},
	}
}

// Args are the option values of one invocation
type Args map[string]any

// String returns a string option, or "" if absent
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer option, or def if absent
func (a Args) Int(name string, def int) int {
	if n, ok := a[name].(int64); ok {
		return int(n)
	}
	return def
}

// argsFrom flattens interaction options; unsupported option types are dropped
func argsFrom(options []*discordgo.ApplicationCommandInteractionDataOption) Args {
	args := make(Args, len(options))
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			args[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			args[opt.Name] = opt.IntValue()
		}
	}
	return args
}

func topQuery(args Args) (leaderboard.Query, error) {
	q := leaderboard.Query{Limit: topCount(args)}
	var err error
	q.ActiveWithin, err = leaderboard.ActiveDays(args.Int(OptionActive, 0))
	return q, err
}

func topCount(args Args) int {
	n := args.Int(OptionCount, leaderboard.DefaultLimit)
	if n < 1 {
		return leaderboard.DefaultLimit
	}
	return n
}

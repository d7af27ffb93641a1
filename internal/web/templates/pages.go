package templates

import (
	"net/url"

	"github.com/a-h/templ"
)

// StandingRow is one leaderboard line
type StandingRow struct {
	Rank    int
	Key     string
	Name    string
	Rating  string
	Matches int
	Wins    int
	WinRate string
}

type LeaderboardData struct {
	PageData
	Strategy string
	Rows     []StandingRow
}

// Leaderboard renders the ranking table
func Leaderboard(data LeaderboardData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.element("p", `class="strategy"`, "Rated with "+data.Strategy)
		if len(data.Rows) == 0 {
			h.element("p", `class="empty"`, "No players registered yet.")
			return
		}
		h.raw(`<table id="leaderboard"><thead><tr><th class="num">#</th><th>Player</th>`)
		h.raw(`<th class="num">Rating</th><th class="num">Matches</th><th class="num">Wins</th><th class="num">Win rate</th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			h.raw(`<tr><td class="num rank">`)
			h.int(row.Rank)
			h.raw(`</td><td class="name"><a href="/players/`)
			h.text(url.PathEscape(row.Key))
			h.raw(`">`)
			h.text(row.Name)
			h.raw(`</a></td>`)
			h.element("td", `class="num rating"`, row.Rating)
			h.raw(`<td class="num matches">`)
			h.int(row.Matches)
			h.raw(`</td><td class="num wins">`)
			h.int(row.Wins)
			h.raw(`</td>`)
			h.element("td", `class="num winrate"`, row.WinRate)
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
	}))
}

type PlayerData struct {
	PageData
	Key       string
	Name      string
	Rating    string
	Skill     string
	Matches   int
	Wins      int
	Losses    int
	WinRate   string
	LastMatch string
}

// Player renders a single player's statistics
func Player(data PlayerData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.raw(`<dl id="player">`)
		field := func(name, class, value string) {
			h.element("dt", "", name)
			h.element("dd", `class="`+class+`"`, value)
		}
		field("Key", "key", data.Key)
		field("Rating", "rating", data.Rating)
		field("Skill", "skill", data.Skill)
		h.element("dt", "", "Record")
		h.raw(`<dd class="record">`)
		h.int(data.Wins)
		h.raw(" W / ")
		h.int(data.Losses)
		h.raw(" L in ")
		h.int(data.Matches)
		h.raw(" matches</dd>")
		field("Win rate", "winrate", data.WinRate)
		if data.LastMatch != "" {
			field("Last match", "last-match", data.LastMatch)
		}
		h.raw(`</dl>`)
	}))
}

// TeamsFormData prefills the team generator form
type TeamsFormData struct {
	PageData
	Players string
	Metric  string
}

// TeamsForm renders the team generator form
func TeamsForm(data TeamsFormData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.raw(`<form id="teams-form" method="post" action="/teams">`)
		h.raw(`<label for="players">Players, separated by spaces</label><br>`)
		h.raw(`<textarea id="players" name="players" rows="3" cols="60" required>`)
		h.text(data.Players)
		h.raw(`</textarea><br><label for="metric">Balance on</label> <select id="metric" name="metric">`)
		for _, m := range []struct{ value, label string }{{"mu", "mean skill"}, {"conservative", "conservative skill"}} {
			h.raw(`<option value="` + m.value + `"`)
			if m.value == data.Metric {
				h.raw(" selected")
			}
			h.raw(">" + m.label + "</option>")
		}
		h.raw(`</select> <button type="submit">Generate teams</button></form>`)
	}))
}

// TeamMember is a player line in a generated team
type TeamMember struct {
	Key    string
	Name   string
	Rating string
}

type TeamsData struct {
	PageData
	Metric     string
	TeamA      []TeamMember
	TeamB      []TeamMember
	AverageA   string
	AverageB   string
	Difference string
	WinA       string
	WinB       string
}

// Teams renders a balanced split
func Teams(data TeamsData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.raw(`<div class="teams">`)
		team := func(id, label, average, win string, members []TeamMember) {
			h.raw(`<section id="` + id + `">`)
			h.element("h2", "", label)
			h.raw("<ul>")
			for _, m := range members {
				h.raw(`<li class="member" data-key="`)
				h.text(m.Key)
				h.raw(`">`)
				h.text(m.Name)
				h.raw(" ")
				h.element("span", `class="rating"`, "("+m.Rating+")")
				h.raw("</li>")
			}
			h.raw("</ul>")
			h.element("p", `class="average"`, "Average: "+average)
			h.element("p", `class="win"`, "Win chance: "+win)
			h.raw("</section>")
		}
		team("team-a", "Team A", data.AverageA, data.WinA, data.TeamA)
		team("team-b", "Team B", data.AverageB, data.WinB, data.TeamB)
		h.raw("</div>")
		h.element("p", `id="difference"`, "Difference ("+data.Metric+"): "+data.Difference)
	}))
}

// MatchFormData prefills the match form after a rejected submission
type MatchFormData struct {
	PageData
	TeamA  string
	TeamB  string
	Winner string
}

// MatchForm renders the match recording form
func MatchForm(data MatchFormData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.raw(`<form id="match-form" method="post" action="/matches">`)
		input := func(name, label, value string) {
			h.raw(`<label for="` + name + `">` + label + `</label><br>`)
			h.raw(`<input id="` + name + `" name="` + name + `" size="60" required value="`)
			h.text(value)
			h.raw(`"><br>`)
		}
		input("team_a", "Team A", data.TeamA)
		input("team_b", "Team B", data.TeamB)
		h.raw(`<fieldset><legend>Winner</legend>`)
		for _, side := range []string{"A", "B"} {
			h.raw(`<label><input type="radio" name="winner" value="` + side + `"`)
			if side == data.Winner {
				h.raw(" checked")
			}
			h.raw(`> Team ` + side + `</label> `)
		}
		h.raw(`</fieldset><button type="submit">Record match</button></form>`)
	}))
}

// ChangeRow is one player's rating movement
type ChangeRow struct {
	Key    string
	Name   string
	Before string
	After  string
	Won    bool
}

type MatchData struct {
	PageData
	ID     string
	Winner string
	TeamA  []ChangeRow
	TeamB  []ChangeRow
}

// MatchResult renders the rating changes of a recorded match
func MatchResult(data MatchData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.element("p", `id="winner"`, "Team "+data.Winner+" won")
		h.raw(`<table id="changes"><thead><tr><th>Team</th><th>Player</th><th class="num">Before</th><th class="num">After</th></tr></thead><tbody>`)
		rows := func(team string, changes []ChangeRow) {
			for _, c := range changes {
				class := "lost"
				if c.Won {
					class = "won"
				}
				h.raw(`<tr class="` + class + `" data-key="`)
				h.text(c.Key)
				h.raw(`">`)
				h.element("td", "", team)
				h.element("td", `class="name"`, c.Name)
				h.element("td", `class="num before"`, c.Before)
				h.element("td", `class="num after"`, c.After)
				h.raw("</tr>")
			}
		}
		rows("A", data.TeamA)
		rows("B", data.TeamB)
		h.raw("</tbody></table>")
		h.element("p", `class="match-id"`, "Match "+data.ID)
	}))
}

type ErrorData struct {
	PageData
	Message string
}

// Error renders an error page
func Error(data ErrorData) templ.Component {
	return Layout(data.PageData, component(func(h *htmlWriter) {
		h.element("p", `class="error"`, data.Message)
		h.raw(`<p><a href="/">Return to the leaderboard</a></p>`)
	}))
}

package request

// RegisterPlayersRequest is the request body for registering players.
// Name is accepted as a shorthand for a single-entry Names.
type RegisterPlayersRequest struct {
	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`
}

// AllNames returns Name followed by Names
func (r RegisterPlayersRequest) AllNames() []string {
	if r.Name == "" {
		return r.Names
	}
	return append([]string{r.Name}, r.Names...)
}

// RecordMatchRequest is the request body for recording a match
type RecordMatchRequest struct {
	TeamA  []string `json:"team_a"`
	TeamB  []string `json:"team_b"`
	Winner string   `json:"winner"`
}

// BalanceTeamsRequest is the request body for generating teams
type BalanceTeamsRequest struct {
	Players []string `json:"players"`
	Metric  string   `json:"metric,omitempty"`
}

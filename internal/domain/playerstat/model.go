package playerstat

const (
	VariableMinsPlayed = "mins_played"
	VariableGoals      = "goals"
	VariableAssists    = "assists"
)

// TrackedVariables lists every stat variable stored per player per match,
// in insert order.
func TrackedVariables() []string {
	return []string{VariableMinsPlayed, VariableGoals, VariableAssists}
}

// PlayerMatchLine is one player's normalized contribution to a match,
// carrying the player record alongside the three tracked values. All lines
// for a match persist in a single transaction.
type PlayerMatchLine struct {
	PlayerID    string
	FullName    string
	Nationality *string
	TeamID      string
	MinsPlayed  float64
	Goals       float64
	Assists     float64
}

// Stat is one stored player stat row.
type Stat struct {
	MatchID  string
	TeamID   string
	PlayerID string
	Variable string
	Value    float64
}

// Rows expands a line into its stored stat rows.
func (l PlayerMatchLine) Rows(matchID string) []Stat {
	return []Stat{
		{MatchID: matchID, TeamID: l.TeamID, PlayerID: l.PlayerID, Variable: VariableMinsPlayed, Value: l.MinsPlayed},
		{MatchID: matchID, TeamID: l.TeamID, PlayerID: l.PlayerID, Variable: VariableGoals, Value: l.Goals},
		{MatchID: matchID, TeamID: l.TeamID, PlayerID: l.PlayerID, Variable: VariableAssists, Value: l.Assists},
	}
}

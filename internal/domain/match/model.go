package match

import "time"

// Match is one fixture stub discovered from the provider schedule.
type Match struct {
	LeagueID     string
	SeasonID     string
	MatchID      string
	HomeTeamID   string
	HomeTeamName string
	AwayTeamID   string
	AwayTeamName string
	MatchDate    time.Time
	DataCount    int
}

// ResolveTeamID maps a provider team name onto one of the two stored team
// IDs. The name must match a stored name exactly; anything else is a data
// integrity problem the caller has to surface.
func (m Match) ResolveTeamID(teamName string) (string, bool) {
	if teamName == "" {
		return "", false
	}
	switch teamName {
	case m.HomeTeamName:
		return m.HomeTeamID, true
	case m.AwayTeamName:
		return m.AwayTeamID, true
	default:
		return "", false
	}
}

package leagueseason

// LeagueSeason summarises one league and season pairing and how much of
// its match data has been collected so far.
type LeagueSeason struct {
	LeagueID      string
	SeasonID      string
	LeagueName    string
	NumberMatches *int
	DataCount     *int
}

// IsComplete reports whether every known match for the season has stats.
// Both counters must be present; an unknown counter never counts as done.
func (ls LeagueSeason) IsComplete() bool {
	if ls.NumberMatches == nil || ls.DataCount == nil {
		return false
	}
	return *ls.NumberMatches == *ls.DataCount
}

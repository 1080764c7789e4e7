package usecase

import "time"

// WorkItem is one league season to ingest, in catalog order.
type WorkItem struct {
	LeagueID   string
	LeagueName string
	SeasonID   string
}

// ItemFailure records one isolated pipeline failure. MatchID is empty for
// season-level failures.
type ItemFailure struct {
	LeagueID string
	SeasonID string
	MatchID  string
	Err      error
}

// RunReport aggregates the outcome of one pipeline run.
type RunReport struct {
	SeasonsFetched int
	SeasonsSkipped int
	SeasonFailures []ItemFailure
	MatchesSaved   int
	MatchFailures  []ItemFailure
}

// Failed reports whether any work item failed during the run.
func (r RunReport) Failed() bool {
	return len(r.SeasonFailures) > 0 || len(r.MatchFailures) > 0
}

// ExternalMatch is one schedule entry from the stats provider.
type ExternalMatch struct {
	MatchID      string
	MatchDate    time.Time
	HomeTeamID   string
	HomeTeamName string
	AwayTeamID   string
	AwayTeamName string
}

// ExternalTeamLines is one team block from the per-match stats payload.
type ExternalTeamLines struct {
	TeamName string
	Players  []ExternalPlayerLine
}

// ExternalPlayerLine is one player's entry inside a team block. Summary
// carries the raw summary stats keyed by the provider's short names.
type ExternalPlayerLine struct {
	PlayerID    string
	PlayerName  string
	CountryCode string
	Summary     map[string]any
}

// ExternalScrapedMatch is the minimal match data available from a match
// page in scrape mode. Team names are not published there, so only the
// team IDs are carried.
type ExternalScrapedMatch struct {
	MatchID    string
	HomeTeamID string
	AwayTeamID string
	MatchDate  time.Time
}

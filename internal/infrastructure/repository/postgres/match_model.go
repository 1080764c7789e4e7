package postgres

import "time"

type matchTableModel struct {
	LeagueID     string    `db:"league_id"`
	SeasonID     string    `db:"season_id"`
	MatchID      string    `db:"match_id"`
	MatchDate    time.Time `db:"match_date"`
	HomeTeamID   string    `db:"home_team_id"`
	HomeTeamName string    `db:"home_team_name"`
	AwayTeamID   string    `db:"away_team_id"`
	AwayTeamName string    `db:"away_team_name"`
	DataCount    int       `db:"data_count"`
}

type matchInsertModel struct {
	LeagueID     string    `db:"league_id"`
	SeasonID     string    `db:"season_id"`
	MatchID      string    `db:"match_id"`
	MatchDate    time.Time `db:"match_date"`
	HomeTeamID   string    `db:"home_team_id"`
	HomeTeamName string    `db:"home_team_name"`
	AwayTeamID   string    `db:"away_team_id"`
	AwayTeamName string    `db:"away_team_name"`
}

package postgres

type leagueSeasonTableModel struct {
	LeagueID      string `db:"league_id"`
	SeasonID      string `db:"season_id"`
	LeagueName    string `db:"league_name"`
	NumberMatches *int   `db:"number_matches"`
	DataCount     *int   `db:"data_count"`
}

type leagueSeasonInsertModel struct {
	LeagueID      string `db:"league_id"`
	LeagueName    string `db:"league_name"`
	SeasonID      string `db:"season_id"`
	NumberMatches *int   `db:"number_matches"`
}

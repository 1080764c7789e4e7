package postgres

type playerInsertModel struct {
	PlayerID    string  `db:"player_id"`
	FullName    string  `db:"full_name"`
	Nationality *string `db:"nationality"`
	CurrentClub *string `db:"current_club"`
	Active      bool    `db:"active"`
}

type playerStatInsertModel struct {
	MatchID  string  `db:"match_id"`
	TeamID   string  `db:"team_id"`
	PlayerID string  `db:"player_id"`
	Variable string  `db:"variable"`
	Value    float64 `db:"value"`
}

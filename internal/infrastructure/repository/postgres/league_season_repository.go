package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RobWHickman/cnxns/internal/domain/leagueseason"
	qb "github.com/RobWHickman/cnxns/internal/platform/querybuilder"
)

type LeagueSeasonRepository struct {
	db *sqlx.DB
}

func NewLeagueSeasonRepository(db *sqlx.DB) *LeagueSeasonRepository {
	return &LeagueSeasonRepository{db: db}
}

func (r *LeagueSeasonRepository) GetCounts(ctx context.Context, leagueID, seasonID string) (leagueseason.LeagueSeason, bool, error) {
	query, args, err := qb.Select(
		"league_id",
		"season_id",
		"league_name",
		"number_matches",
		"data_count",
	).From("league_seasons").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season_id", seasonID),
		).
		ToSQL()
	if err != nil {
		return leagueseason.LeagueSeason{}, false, fmt.Errorf("build get league season query: %w", err)
	}

	var row leagueSeasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leagueseason.LeagueSeason{}, false, nil
		}
		return leagueseason.LeagueSeason{}, false, fmt.Errorf("get league season: %w", err)
	}

	return leagueseason.LeagueSeason{
		LeagueID:      row.LeagueID,
		SeasonID:      row.SeasonID,
		LeagueName:    row.LeagueName,
		NumberMatches: row.NumberMatches,
		DataCount:     row.DataCount,
	}, true, nil
}

func (r *LeagueSeasonRepository) InsertIgnore(ctx context.Context, season leagueseason.LeagueSeason) error {
	insertModel := leagueSeasonInsertModel{
		LeagueID:      season.LeagueID,
		LeagueName:    season.LeagueName,
		SeasonID:      season.SeasonID,
		NumberMatches: season.NumberMatches,
	}

	query, args, err := qb.InsertModel("league_seasons", insertModel, "ON CONFLICT (league_id, season_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert league season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert league season league=%s season=%s: %w", season.LeagueID, season.SeasonID, err)
	}
	return nil
}

// reconcileSeasonCountsSQL rolls complete matches up into the season rows.
// The query builder has no UPDATE ... FROM support, so this stays raw.
const reconcileSeasonCountsSQL = `
UPDATE league_seasons ls
SET data_count = matches_summary.matches_with_data,
    updated_at_utc = NOW()
FROM (
    SELECT m.league_id, m.season_id, COUNT(DISTINCT m.match_id) AS matches_with_data
    FROM matches m
    WHERE m.data_count = 1
    GROUP BY m.league_id, m.season_id
) matches_summary
WHERE ls.league_id = matches_summary.league_id
  AND ls.season_id = matches_summary.season_id`

func (r *LeagueSeasonRepository) ReconcileDataCounts(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, reconcileSeasonCountsSQL); err != nil {
		return fmt.Errorf("reconcile league season data counts: %w", err)
	}
	return nil
}

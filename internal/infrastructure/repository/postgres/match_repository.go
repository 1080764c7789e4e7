package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RobWHickman/cnxns/internal/domain/match"
	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
	qb "github.com/RobWHickman/cnxns/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) InsertIgnore(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert matches tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range matches {
		insertModel := matchInsertModel{
			LeagueID:     m.LeagueID,
			SeasonID:     m.SeasonID,
			MatchID:      m.MatchID,
			MatchDate:    m.MatchDate,
			HomeTeamID:   m.HomeTeamID,
			HomeTeamName: m.HomeTeamName,
			AwayTeamID:   m.AwayTeamID,
			AwayTeamName: m.AwayTeamName,
		}

		query, args, err := qb.InsertModel("matches", insertModel, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert match query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match match_id=%s: %w", m.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert matches tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) ListMissingStats(ctx context.Context, exclude []string) ([]match.Match, error) {
	conditions := []qb.Condition{
		qb.Expr("NOT EXISTS (SELECT 1 FROM player_stats ps WHERE ps.match_id = m.match_id)"),
	}
	if len(exclude) > 0 {
		values := make([]any, 0, len(exclude))
		for _, matchID := range exclude {
			values = append(values, matchID)
		}
		conditions = append(conditions, qb.NotIn("m.match_id", values))
	}

	query, args, err := qb.Select(
		"m.league_id",
		"m.season_id",
		"m.match_id",
		"m.match_date",
		"m.home_team_id",
		"m.home_team_name",
		"m.away_team_id",
		"m.away_team_name",
		"m.data_count",
	).From("matches m").
		Where(conditions...).
		OrderBy("m.league_id", "m.season_id", "m.match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list missing stats query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches missing stats: %w", err)
	}

	matches := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, match.Match{
			LeagueID:     row.LeagueID,
			SeasonID:     row.SeasonID,
			MatchID:      row.MatchID,
			MatchDate:    row.MatchDate,
			HomeTeamID:   row.HomeTeamID,
			HomeTeamName: row.HomeTeamName,
			AwayTeamID:   row.AwayTeamID,
			AwayTeamName: row.AwayTeamName,
			DataCount:    row.DataCount,
		})
	}
	return matches, nil
}

// reconcileMatchCountsSQL marks a match complete when its stat rows are
// present and divide evenly into the tracked variables per player.
// UPDATE ... FROM is beyond the query builder, so this stays raw.
var reconcileMatchCountsSQL = fmt.Sprintf(`
UPDATE matches m
SET data_count = CASE
        WHEN stats_summary.stat_rows > 0 AND stats_summary.stat_rows %% %d = 0 THEN 1
        ELSE 0
    END,
    updated_at_utc = NOW()
FROM (
    SELECT ps.match_id, COUNT(*) AS stat_rows
    FROM player_stats ps
    GROUP BY ps.match_id
) stats_summary
WHERE m.match_id = stats_summary.match_id`, len(playerstat.TrackedVariables()))

func (r *MatchRepository) ReconcileDataCounts(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, reconcileMatchCountsSQL); err != nil {
		return fmt.Errorf("reconcile match data counts: %w", err)
	}
	return nil
}

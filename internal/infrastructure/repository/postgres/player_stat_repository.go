package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
	qb "github.com/RobWHickman/cnxns/internal/platform/querybuilder"
)

type PlayerStatRepository struct {
	db *sqlx.DB
}

func NewPlayerStatRepository(db *sqlx.DB) *PlayerStatRepository {
	return &PlayerStatRepository{db: db}
}

// SaveMatchLines writes the players for one match and their stat rows in a
// single transaction, so a match is either fully recorded or absent.
func (r *PlayerStatRepository) SaveMatchLines(ctx context.Context, matchID string, lines []playerstat.PlayerMatchLine) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save match lines tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, line := range lines {
		// current_club stays null and active false at ingestion time. The
		// row is never updated once written.
		playerModel := playerInsertModel{
			PlayerID:    line.PlayerID,
			FullName:    line.FullName,
			Nationality: line.Nationality,
		}

		query, args, err := qb.InsertModel("players", playerModel, "ON CONFLICT (player_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player player_id=%s: %w", line.PlayerID, err)
		}

		for _, stat := range line.Rows(matchID) {
			statModel := playerStatInsertModel{
				MatchID:  stat.MatchID,
				TeamID:   stat.TeamID,
				PlayerID: stat.PlayerID,
				Variable: stat.Variable,
				Value:    stat.Value,
			}

			query, args, err := qb.InsertModel("player_stats", statModel, "ON CONFLICT DO NOTHING")
			if err != nil {
				return fmt.Errorf("build insert player stat query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert player stat player_id=%s variable=%s: %w", stat.PlayerID, stat.Variable, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save match lines tx: %w", err)
	}
	return nil
}

package memory

import (
	"context"
	"sync"

	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
)

type statKey struct {
	teamID   string
	playerID string
	variable string
}

type PlayerStatRepository struct {
	mu           sync.RWMutex
	players      map[string]playerstat.PlayerMatchLine
	statsByMatch map[string]map[statKey]playerstat.Stat
}

func NewPlayerStatRepository() *PlayerStatRepository {
	return &PlayerStatRepository{
		players:      make(map[string]playerstat.PlayerMatchLine),
		statsByMatch: make(map[string]map[statKey]playerstat.Stat),
	}
}

// SaveMatchLines keys stat rows by their primary key, so re-saving the same
// match payload changes neither row count nor values.
func (r *PlayerStatRepository) SaveMatchLines(_ context.Context, matchID string, lines []playerstat.PlayerMatchLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.statsByMatch[matchID]
	if rows == nil {
		rows = make(map[statKey]playerstat.Stat)
		r.statsByMatch[matchID] = rows
	}

	for _, line := range lines {
		if _, ok := r.players[line.PlayerID]; !ok {
			r.players[line.PlayerID] = line
		}
		for _, stat := range line.Rows(matchID) {
			key := statKey{teamID: stat.TeamID, playerID: stat.PlayerID, variable: stat.Variable}
			if _, ok := rows[key]; ok {
				continue
			}
			rows[key] = stat
		}
	}
	return nil
}

func (r *PlayerStatRepository) StatsForMatch(matchID string) []playerstat.Stat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.statsByMatch[matchID]
	out := make([]playerstat.Stat, 0, len(rows))
	for _, stat := range rows {
		out = append(out, stat)
	}
	return out
}

func (r *PlayerStatRepository) Player(playerID string) (playerstat.PlayerMatchLine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.players[playerID]
	return line, ok
}

func (r *PlayerStatRepository) statRowCount(matchID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.statsByMatch[matchID])
}

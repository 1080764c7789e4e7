package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RobWHickman/cnxns/internal/domain/match"
	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	stats   *PlayerStatRepository
}

// NewMatchRepository stores matches keyed by match ID. When stats is non-nil,
// ReconcileDataCounts marks matches complete from its stat rows.
func NewMatchRepository(stats *PlayerStatRepository) *MatchRepository {
	return &MatchRepository{
		matches: make(map[string]match.Match),
		stats:   stats,
	}
}

func (r *MatchRepository) InsertIgnore(_ context.Context, matches []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matches {
		if _, ok := r.matches[m.MatchID]; ok {
			continue
		}
		r.matches[m.MatchID] = m
	}
	return nil
}

func (r *MatchRepository) ListMissingStats(_ context.Context, exclude []string) ([]match.Match, error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, matchID := range exclude {
		excluded[matchID] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if _, ok := excluded[m.MatchID]; ok {
			continue
		}
		if r.stats != nil && r.stats.statRowCount(m.MatchID) > 0 {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		if out[i].SeasonID != out[j].SeasonID {
			return out[i].SeasonID < out[j].SeasonID
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

func (r *MatchRepository) ReconcileDataCounts(_ context.Context) error {
	if r.stats == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tracked := len(playerstat.TrackedVariables())
	for matchID, m := range r.matches {
		rows := r.stats.statRowCount(matchID)
		if rows > 0 && rows%tracked == 0 {
			m.DataCount = 1
		} else {
			m.DataCount = 0
		}
		r.matches[matchID] = m
	}
	return nil
}

func (r *MatchRepository) Get(matchID string) (match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	return m, ok
}

func (r *MatchRepository) completeMatchCounts() map[seasonKey]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[seasonKey]int)
	for _, m := range r.matches {
		if m.DataCount != 1 {
			continue
		}
		out[seasonKey{leagueID: m.LeagueID, seasonID: m.SeasonID}]++
	}
	return out
}

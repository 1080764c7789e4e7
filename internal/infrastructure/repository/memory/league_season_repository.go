package memory

import (
	"context"
	"sync"

	"github.com/RobWHickman/cnxns/internal/domain/leagueseason"
)

type seasonKey struct {
	leagueID string
	seasonID string
}

type LeagueSeasonRepository struct {
	mu      sync.RWMutex
	seasons map[seasonKey]leagueseason.LeagueSeason
	matches *MatchRepository
}

// NewLeagueSeasonRepository stores seasons keyed by league and season ID.
// When matches is non-nil, ReconcileDataCounts rolls its complete matches
// up into the season rows.
func NewLeagueSeasonRepository(matches *MatchRepository) *LeagueSeasonRepository {
	return &LeagueSeasonRepository{
		seasons: make(map[seasonKey]leagueseason.LeagueSeason),
		matches: matches,
	}
}

func (r *LeagueSeasonRepository) GetCounts(_ context.Context, leagueID, seasonID string) (leagueseason.LeagueSeason, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	season, ok := r.seasons[seasonKey{leagueID: leagueID, seasonID: seasonID}]
	if !ok {
		return leagueseason.LeagueSeason{}, false, nil
	}
	return season, true, nil
}

func (r *LeagueSeasonRepository) InsertIgnore(_ context.Context, season leagueseason.LeagueSeason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := seasonKey{leagueID: season.LeagueID, seasonID: season.SeasonID}
	if _, ok := r.seasons[key]; ok {
		return nil
	}
	// New season rows start at data_count 0, matching the table default.
	if season.DataCount == nil {
		zero := 0
		season.DataCount = &zero
	}
	r.seasons[key] = season
	return nil
}

func (r *LeagueSeasonRepository) ReconcileDataCounts(_ context.Context) error {
	if r.matches == nil {
		return nil
	}

	completeByKey := r.matches.completeMatchCounts()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, season := range r.seasons {
		count, ok := completeByKey[key]
		if !ok {
			continue
		}
		season.DataCount = &count
		r.seasons[key] = season
	}
	return nil
}

func (r *LeagueSeasonRepository) Seasons() []leagueseason.LeagueSeason {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leagueseason.LeagueSeason, 0, len(r.seasons))
	for _, season := range r.seasons {
		out = append(out, season)
	}
	return out
}

package match

import "context"

// Repository exposes match persistence operations.
type Repository interface {
	// InsertIgnore inserts match stubs, keeping any existing rows.
	InsertIgnore(ctx context.Context, matches []Match) error
	// ListMissingStats returns matches that have no player stats yet,
	// excluding the given match IDs, ordered by league, season and match.
	ListMissingStats(ctx context.Context, exclude []string) ([]Match, error)
	// ReconcileDataCounts marks matches complete when their stored stat
	// rows form whole per-player variable sets.
	ReconcileDataCounts(ctx context.Context) error
}

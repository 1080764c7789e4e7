package leagueseason

import "context"

// Repository exposes league season persistence operations.
type Repository interface {
	// GetCounts returns the stored season row. The bool reports whether a
	// row exists; a missing row is not an error.
	GetCounts(ctx context.Context, leagueID, seasonID string) (LeagueSeason, bool, error)
	// InsertIgnore inserts the season summary, keeping any existing row.
	InsertIgnore(ctx context.Context, season LeagueSeason) error
	// ReconcileDataCounts recomputes data_count for every season from the
	// completed matches beneath it.
	ReconcileDataCounts(ctx context.Context) error
}

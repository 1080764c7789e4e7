package playerstat

import "context"

// Repository exposes player stat persistence operations.
type Repository interface {
	// SaveMatchLines persists the players and their stat rows for one
	// match inside a single transaction. Existing players and stat rows
	// are kept untouched.
	SaveMatchLines(ctx context.Context, matchID string, lines []PlayerMatchLine) error
}

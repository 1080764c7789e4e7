package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/RobWHickman/cnxns/internal/domain/leagueseason"
	"github.com/RobWHickman/cnxns/internal/domain/match"
	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
	"github.com/RobWHickman/cnxns/internal/platform/logging"
)

// FixtureProvider fetches the match schedule for one league season.
type FixtureProvider interface {
	FetchFixtures(ctx context.Context, leagueID, seasonID string) ([]ExternalMatch, error)
}

// MatchStatsProvider fetches per-player stats for one match.
type MatchStatsProvider interface {
	FetchMatchStats(ctx context.Context, matchID string) ([]ExternalTeamLines, error)
}

// IngestService walks the configured league seasons, fills the matches
// table from the provider schedule, then collects player stats for every
// match that has none yet. Failures are isolated per season and per match
// and collected into the run report.
type IngestService struct {
	fixtures   FixtureProvider
	stats      MatchStatsProvider
	seasonRepo leagueseason.Repository
	matchRepo  match.Repository
	statRepo   playerstat.Repository
	blacklist  []string
	logger     *logging.Logger
}

func NewIngestService(
	fixtures FixtureProvider,
	stats MatchStatsProvider,
	seasonRepo leagueseason.Repository,
	matchRepo match.Repository,
	statRepo playerstat.Repository,
	blacklist []string,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	cleaned := make([]string, 0, len(blacklist))
	for _, id := range blacklist {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return &IngestService{
		fixtures:   fixtures,
		stats:      stats,
		seasonRepo: seasonRepo,
		matchRepo:  matchRepo,
		statRepo:   statRepo,
		blacklist:  cleaned,
		logger:     logger,
	}
}

// Run executes the full pipeline for the given work items: fixtures first,
// then the stats backfill, then the completeness reconciliation. The
// returned report is valid even when err is non-nil.
func (s *IngestService) Run(ctx context.Context, items []WorkItem) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Run")
	defer span.End()

	report := RunReport{}
	if len(items) == 0 {
		return report, fmt.Errorf("%w: work items are required", ErrInvalidInput)
	}

	if err := s.syncFixtures(ctx, items, &report); err != nil {
		return report, err
	}
	if err := s.syncMatchStats(ctx, &report); err != nil {
		return report, err
	}
	if err := s.Reconcile(ctx); err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "ingest run finished",
		"seasons_fetched", report.SeasonsFetched,
		"seasons_skipped", report.SeasonsSkipped,
		"season_failures", len(report.SeasonFailures),
		"matches_saved", report.MatchesSaved,
		"match_failures", len(report.MatchFailures),
	)
	return report, nil
}

func (s *IngestService) syncFixtures(ctx context.Context, items []WorkItem, report *RunReport) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		stored, found, err := s.seasonRepo.GetCounts(ctx, item.LeagueID, item.SeasonID)
		if err != nil {
			return fmt.Errorf("check season status league=%s season=%s: %w", item.LeagueID, item.SeasonID, err)
		}
		if found && stored.IsComplete() {
			s.logger.InfoContext(ctx, "skipping complete season",
				"league", item.LeagueName, "season", item.SeasonID)
			report.SeasonsSkipped++
			continue
		}

		s.logger.InfoContext(ctx, "requesting fixtures",
			"league", item.LeagueName, "season", item.SeasonID)
		if err := s.ingestSeasonFixtures(ctx, item); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "season fixtures failed",
				"league", item.LeagueID, "season", item.SeasonID, "error", err)
			report.SeasonFailures = append(report.SeasonFailures, ItemFailure{
				LeagueID: item.LeagueID,
				SeasonID: item.SeasonID,
				Err:      err,
			})
			continue
		}
		report.SeasonsFetched++
	}
	return nil
}

func (s *IngestService) ingestSeasonFixtures(ctx context.Context, item WorkItem) error {
	fixtures, err := s.fixtures.FetchFixtures(ctx, item.LeagueID, item.SeasonID)
	if err != nil {
		return fmt.Errorf("fetch fixtures: %w", err)
	}

	matches := make([]match.Match, 0, len(fixtures))
	for _, fx := range fixtures {
		if strings.TrimSpace(fx.MatchID) == "" {
			return fmt.Errorf("%w: fixture without match_id", ErrInvalidInput)
		}
		matches = append(matches, match.Match{
			LeagueID:     item.LeagueID,
			SeasonID:     item.SeasonID,
			MatchID:      fx.MatchID,
			HomeTeamID:   fx.HomeTeamID,
			HomeTeamName: fx.HomeTeamName,
			AwayTeamID:   fx.AwayTeamID,
			AwayTeamName: fx.AwayTeamName,
			MatchDate:    fx.MatchDate,
		})
	}

	numberMatches := len(fixtures)
	if err := s.seasonRepo.InsertIgnore(ctx, leagueseason.LeagueSeason{
		LeagueID:      item.LeagueID,
		SeasonID:      item.SeasonID,
		LeagueName:    item.LeagueName,
		NumberMatches: &numberMatches,
	}); err != nil {
		return fmt.Errorf("insert league season: %w", err)
	}
	if err := s.matchRepo.InsertIgnore(ctx, matches); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}

	s.logger.InfoContext(ctx, "saved season fixtures",
		"league", item.LeagueName, "season", item.SeasonID, "matches", len(matches))
	return nil
}

func (s *IngestService) syncMatchStats(ctx context.Context, report *RunReport) error {
	pending, err := s.matchRepo.ListMissingStats(ctx, s.blacklist)
	if err != nil {
		return fmt.Errorf("list matches missing stats: %w", err)
	}

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.ingestMatchStats(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "match stats failed", "match_id", m.MatchID, "error", err)
			report.MatchFailures = append(report.MatchFailures, ItemFailure{
				LeagueID: m.LeagueID,
				SeasonID: m.SeasonID,
				MatchID:  m.MatchID,
				Err:      err,
			})
			continue
		}
		report.MatchesSaved++
	}
	return nil
}

func (s *IngestService) ingestMatchStats(ctx context.Context, m match.Match) error {
	s.logger.InfoContext(ctx, "requesting match stats", "match_id", m.MatchID)

	teams, err := s.stats.FetchMatchStats(ctx, m.MatchID)
	if err != nil {
		return fmt.Errorf("fetch stats match=%s: %w", m.MatchID, err)
	}

	lines, err := normalizeMatchLines(m, teams)
	if err != nil {
		return fmt.Errorf("normalize stats match=%s: %w", m.MatchID, err)
	}

	if err := s.statRepo.SaveMatchLines(ctx, m.MatchID, lines); err != nil {
		return fmt.Errorf("save stats match=%s: %w", m.MatchID, err)
	}
	return nil
}

// Reconcile recomputes match and season completeness counters from the
// stored stat rows. Safe to run repeatedly.
func (s *IngestService) Reconcile(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Reconcile")
	defer span.End()

	if err := s.matchRepo.ReconcileDataCounts(ctx); err != nil {
		return fmt.Errorf("reconcile match data counts: %w", err)
	}
	if err := s.seasonRepo.ReconcileDataCounts(ctx); err != nil {
		return fmt.Errorf("reconcile season data counts: %w", err)
	}
	return nil
}

// normalizeMatchLines maps provider team blocks onto stored team IDs and
// extracts the tracked variables for every player. A team name that matches
// neither stored side fails the whole match.
func normalizeMatchLines(m match.Match, teams []ExternalTeamLines) ([]playerstat.PlayerMatchLine, error) {
	lines := make([]playerstat.PlayerMatchLine, 0, 32)
	for _, team := range teams {
		teamID, ok := m.ResolveTeamID(team.TeamName)
		if !ok {
			return nil, fmt.Errorf("%w: team name %q not found in match", ErrDataIntegrity, team.TeamName)
		}

		for _, player := range team.Players {
			if strings.TrimSpace(player.PlayerID) == "" {
				return nil, fmt.Errorf("%w: missing player_id in meta_data", ErrDataIntegrity)
			}
			if strings.TrimSpace(player.PlayerName) == "" {
				return nil, fmt.Errorf("%w: missing player_name in meta_data", ErrDataIntegrity)
			}

			var nationality *string
			if code := strings.TrimSpace(player.CountryCode); code != "" {
				nationality = &code
			}

			lines = append(lines, playerstat.PlayerMatchLine{
				PlayerID:    player.PlayerID,
				FullName:    player.PlayerName,
				Nationality: nationality,
				TeamID:      teamID,
				MinsPlayed:  summaryMinutes(player.Summary),
				Goals:       summaryNumber(player.Summary, "gls"),
				Assists:     summaryNumber(player.Summary, "ast"),
			})
		}
	}
	return lines, nil
}

// summaryMinutes reads the "min" field, which the provider serialises as a
// numeric string. Anything unreadable counts as zero minutes.
func summaryMinutes(summary map[string]any) float64 {
	raw, ok := summary["min"].(string)
	if !ok {
		return 0
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}

func summaryNumber(summary map[string]any, key string) float64 {
	switch value := summary[key].(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return 0
	}
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/RobWHickman/cnxns/internal/domain/leagueseason"
	"github.com/RobWHickman/cnxns/internal/domain/match"
	"github.com/RobWHickman/cnxns/internal/platform/logging"
)

// ScrapeProvider reads schedule and match pages directly from the public
// site instead of the stats API.
type ScrapeProvider interface {
	FetchScheduleMatchIDs(ctx context.Context, leagueID, leagueName, seasonID string) ([]string, error)
	FetchMatchSummary(ctx context.Context, matchID string) (ExternalScrapedMatch, error)
}

// ScrapeService fills league seasons and match stubs from scraped pages.
// It covers the fixture half of the pipeline only; player stats stay on
// the API path.
type ScrapeService struct {
	provider   ScrapeProvider
	seasonRepo leagueseason.Repository
	matchRepo  match.Repository
	logger     *logging.Logger
}

func NewScrapeService(
	provider ScrapeProvider,
	seasonRepo leagueseason.Repository,
	matchRepo match.Repository,
	logger *logging.Logger,
) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScrapeService{
		provider:   provider,
		seasonRepo: seasonRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

// Run scrapes every work item, skipping seasons already complete. Match
// page failures abort only that season's item.
func (s *ScrapeService) Run(ctx context.Context, items []WorkItem) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.Run")
	defer span.End()

	report := RunReport{}
	if len(items) == 0 {
		return report, fmt.Errorf("%w: work items are required", ErrInvalidInput)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		stored, found, err := s.seasonRepo.GetCounts(ctx, item.LeagueID, item.SeasonID)
		if err != nil {
			return report, fmt.Errorf("check season status league=%s season=%s: %w", item.LeagueID, item.SeasonID, err)
		}
		if found && stored.IsComplete() {
			s.logger.InfoContext(ctx, "skipping complete season",
				"league", item.LeagueName, "season", item.SeasonID)
			report.SeasonsSkipped++
			continue
		}

		if err := s.scrapeSeason(ctx, item); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.logger.WarnContext(ctx, "season scrape failed",
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
	return report, nil
}

func (s *ScrapeService) scrapeSeason(ctx context.Context, item WorkItem) error {
	s.logger.InfoContext(ctx, "scraping schedule",
		"league", item.LeagueName, "season", item.SeasonID)

	matchIDs, err := s.provider.FetchScheduleMatchIDs(ctx, item.LeagueID, item.LeagueName, item.SeasonID)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}

	matches := make([]match.Match, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if strings.TrimSpace(matchID) == "" {
			continue
		}
		summary, err := s.provider.FetchMatchSummary(ctx, matchID)
		if err != nil {
			return fmt.Errorf("fetch match %s: %w", matchID, err)
		}
		matches = append(matches, match.Match{
			LeagueID:   item.LeagueID,
			SeasonID:   item.SeasonID,
			MatchID:    summary.MatchID,
			HomeTeamID: summary.HomeTeamID,
			AwayTeamID: summary.AwayTeamID,
			MatchDate:  summary.MatchDate,
		})
	}

	numberMatches := len(matches)
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

	s.logger.InfoContext(ctx, "saved scraped season",
		"league", item.LeagueName, "season", item.SeasonID, "matches", len(matches))
	return nil
}

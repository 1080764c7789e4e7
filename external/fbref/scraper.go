package fbref

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/RobWHickman/cnxns/internal/platform/logging"
	"github.com/RobWHickman/cnxns/internal/usecase"
)

const (
	defaultBaseURL  = "https://fbref.com/en/"
	matchDateLayout = "Monday January 2, 2006"

	scheduleLinkSelector = ".left~ .left+ .left a"
	matchTeamSelector    = "strong a"
)

type ScraperConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Delay      time.Duration
	Logger     *logging.Logger
}

type Scraper struct {
	httpClient *http.Client
	baseURL    string
	delay      time.Duration
	logger     *logging.Logger
}

func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Scraper{
		httpClient: httpClient,
		baseURL:    baseURL,
		delay:      cfg.Delay,
		logger:     logger,
	}
}

// FetchScheduleMatchIDs scrapes the season schedule page and returns the
// match IDs of every linked match report, in page order.
func (s *Scraper) FetchScheduleMatchIDs(ctx context.Context, leagueID, leagueName, seasonID string) ([]string, error) {
	scheduleURL := fmt.Sprintf("%scomps/%s/%s/schedule/%s-%s-Scores-and-Fixtures",
		s.baseURL, leagueID, seasonID, seasonID, slugifyLeagueName(leagueName))

	doc, err := s.fetchDocument(ctx, scheduleURL)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule league=%s season=%s: %w", leagueID, seasonID, err)
	}

	matchIDs := make([]string, 0, 64)
	doc.Find(scheduleLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		matchID, ok := idFromHref(href)
		if !ok {
			return
		}
		matchIDs = append(matchIDs, matchID)
	})

	if len(matchIDs) == 0 {
		return nil, crerr.Newf("no match links found on schedule page league=%s season=%s", leagueID, seasonID)
	}
	return matchIDs, nil
}

// FetchMatchSummary scrapes one match report page for the two team IDs and
// the match date.
func (s *Scraper) FetchMatchSummary(ctx context.Context, matchID string) (usecase.ExternalScrapedMatch, error) {
	matchURL := s.baseURL + "matches/" + matchID

	doc, err := s.fetchDocument(ctx, matchURL)
	if err != nil {
		return usecase.ExternalScrapedMatch{}, fmt.Errorf("fetch match page match_id=%s: %w", matchID, err)
	}

	nodes := doc.Find(matchTeamSelector)
	if nodes.Length() < 3 {
		return usecase.ExternalScrapedMatch{}, crerr.Newf("match page missing team and date nodes match_id=%s", matchID)
	}

	teamIDs := make([]string, 0, 2)
	nodes.Slice(0, 2).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if teamID, ok := idFromHref(href); ok {
			teamIDs = append(teamIDs, teamID)
		}
	})
	if len(teamIDs) != 2 {
		return usecase.ExternalScrapedMatch{}, crerr.Newf("match page missing team links match_id=%s", matchID)
	}

	dateText := strings.TrimSpace(nodes.Eq(2).Text())
	matchDate, err := time.Parse(matchDateLayout, dateText)
	if err != nil {
		return usecase.ExternalScrapedMatch{}, fmt.Errorf("parse match date %q match_id=%s: %w", dateText, matchID, err)
	}

	return usecase.ExternalScrapedMatch{
		MatchID:    matchID,
		HomeTeamID: teamIDs[0],
		AwayTeamID: teamIDs[1],
		MatchDate:  matchDate,
	}, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := crerr.Newf("page status=%d url=%s", resp.StatusCode, pageURL)
		s.logger.WarnContext(ctx, "fbref request failed", "url", pageURL, "error", err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

// idFromHref pulls the identifier segment out of hrefs shaped like
// /en/matches/<id>/... or /en/squads/<id>/...
func idFromHref(href string) (string, bool) {
	parts := strings.Split(href, "/")
	if len(parts) < 4 || parts[3] == "" {
		return "", false
	}
	return parts[3], true
}

func slugifyLeagueName(leagueName string) string {
	return strings.ReplaceAll(strings.TrimSpace(leagueName), " ", "-")
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RobWHickman/cnxns/internal/domain/leagueseason"
	"github.com/RobWHickman/cnxns/internal/domain/match"
	"github.com/RobWHickman/cnxns/internal/domain/playerstat"
	"github.com/RobWHickman/cnxns/internal/infrastructure/repository/memory"
	"github.com/RobWHickman/cnxns/internal/platform/logging"
)

type stubFixtureProvider struct {
	fixtures map[string][]ExternalMatch
	failFor  map[string]error
	calls    int
}

func (p *stubFixtureProvider) FetchFixtures(_ context.Context, leagueID, seasonID string) ([]ExternalMatch, error) {
	p.calls++
	key := leagueID + "|" + seasonID
	if err := p.failFor[key]; err != nil {
		return nil, err
	}
	return p.fixtures[key], nil
}

type stubStatsProvider struct {
	stats   map[string][]ExternalTeamLines
	failFor map[string]error
	calls   []string
}

func (p *stubStatsProvider) FetchMatchStats(_ context.Context, matchID string) ([]ExternalTeamLines, error) {
	p.calls = append(p.calls, matchID)
	if err := p.failFor[matchID]; err != nil {
		return nil, err
	}
	return p.stats[matchID], nil
}

func newTestRepos() (*memory.LeagueSeasonRepository, *memory.MatchRepository, *memory.PlayerStatRepository) {
	statRepo := memory.NewPlayerStatRepository()
	matchRepo := memory.NewMatchRepository(statRepo)
	seasonRepo := memory.NewLeagueSeasonRepository(matchRepo)
	return seasonRepo, matchRepo, statRepo
}

func teamLines(teamName string, playerIDs ...string) ExternalTeamLines {
	lines := ExternalTeamLines{TeamName: teamName}
	for _, playerID := range playerIDs {
		lines.Players = append(lines.Players, ExternalPlayerLine{
			PlayerID:   playerID,
			PlayerName: "Player " + playerID,
			Summary:    map[string]any{"min": "90", "gls": 1.0, "ast": 0.0},
		})
	}
	return lines
}

func TestIngestServiceRun(t *testing.T) {
	matchDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	items := []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"}}

	fixtures := &stubFixtureProvider{fixtures: map[string][]ExternalMatch{
		"9|2023-2024": {
			{MatchID: "m1", MatchDate: matchDate, HomeTeamID: "h1", HomeTeamName: "Arsenal", AwayTeamID: "a1", AwayTeamName: "Brentford"},
		},
	}}
	stats := &stubStatsProvider{stats: map[string][]ExternalTeamLines{
		"m1": {teamLines("Arsenal", "p1", "p2"), teamLines("Brentford", "p3")},
	}}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, stats, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())

	report, err := service.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed() {
		t.Fatalf("unexpected failures: %+v %+v", report.SeasonFailures, report.MatchFailures)
	}
	if report.SeasonsFetched != 1 || report.MatchesSaved != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	rows := statRepo.StatsForMatch("m1")
	if len(rows) != 9 {
		t.Fatalf("expected 9 stat rows for 3 players, got %d", len(rows))
	}

	m, ok := matchRepo.Get("m1")
	if !ok {
		t.Fatalf("match m1 not stored")
	}
	if m.DataCount != 1 {
		t.Fatalf("expected match marked complete after reconcile, got data_count=%d", m.DataCount)
	}

	season, found, err := seasonRepo.GetCounts(context.Background(), "9", "2023-2024")
	if err != nil || !found {
		t.Fatalf("season not stored: found=%v err=%v", found, err)
	}
	if !season.IsComplete() {
		t.Fatalf("expected complete season, got number_matches=%v data_count=%v", season.NumberMatches, season.DataCount)
	}
}

func TestIngestServiceRunRejectsEmptyItems(t *testing.T) {
	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(&stubFixtureProvider{}, &stubStatsProvider{}, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())

	if _, err := service.Run(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestServiceRunSkipsCompleteSeason(t *testing.T) {
	seasonRepo, matchRepo, statRepo := newTestRepos()
	two := 2
	if err := seasonRepo.InsertIgnore(context.Background(), leagueseason.LeagueSeason{
		LeagueID:      "9",
		SeasonID:      "2022-2023",
		LeagueName:    "Premier League",
		NumberMatches: &two,
		DataCount:     &two,
	}); err != nil {
		t.Fatalf("seed season: %v", err)
	}

	fixtures := &stubFixtureProvider{}
	service := NewIngestService(fixtures, &stubStatsProvider{}, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())

	report, err := service.Run(context.Background(), []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2022-2023"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.SeasonsSkipped != 1 || report.SeasonsFetched != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if fixtures.calls != 0 {
		t.Fatalf("expected no provider calls for complete season, got %d", fixtures.calls)
	}
}

func TestIngestServiceRunIsolatesSeasonFailures(t *testing.T) {
	matchDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureProvider{
		fixtures: map[string][]ExternalMatch{
			"12|2023-2024": {
				{MatchID: "m2", MatchDate: matchDate, HomeTeamID: "h2", HomeTeamName: "Barcelona", AwayTeamID: "a2", AwayTeamName: "Girona"},
			},
		},
		failFor: map[string]error{
			"9|2023-2024": fmt.Errorf("provider status=500 body=oops"),
		},
	}
	stats := &stubStatsProvider{stats: map[string][]ExternalTeamLines{
		"m2": {teamLines("Barcelona", "p1"), teamLines("Girona", "p2")},
	}}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, stats, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())

	report, err := service.Run(context.Background(), []WorkItem{
		{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"},
		{LeagueID: "12", LeagueName: "La Liga", SeasonID: "2023-2024"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.SeasonFailures) != 1 {
		t.Fatalf("expected one season failure, got %d", len(report.SeasonFailures))
	}
	if report.SeasonFailures[0].LeagueID != "9" {
		t.Fatalf("unexpected failed league: %s", report.SeasonFailures[0].LeagueID)
	}
	if report.SeasonsFetched != 1 || report.MatchesSaved != 1 {
		t.Fatalf("expected second season to succeed: %+v", report)
	}
}

func TestIngestServiceRunIsolatesMatchFailures(t *testing.T) {
	matchDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureProvider{fixtures: map[string][]ExternalMatch{
		"9|2023-2024": {
			{MatchID: "m1", MatchDate: matchDate, HomeTeamID: "h1", HomeTeamName: "Arsenal", AwayTeamID: "a1", AwayTeamName: "Brentford"},
			{MatchID: "m2", MatchDate: matchDate, HomeTeamID: "h2", HomeTeamName: "Liverpool", AwayTeamID: "a2", AwayTeamName: "Everton"},
		},
	}}
	// Team block named after neither stored side fails that match only.
	stats := &stubStatsProvider{stats: map[string][]ExternalTeamLines{
		"m1": {teamLines("Arsenal FC", "p1")},
		"m2": {teamLines("Liverpool", "p2"), teamLines("Everton", "p3")},
	}}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, stats, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())

	report, err := service.Run(context.Background(), []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.MatchFailures) != 1 {
		t.Fatalf("expected one match failure, got %d", len(report.MatchFailures))
	}
	if report.MatchFailures[0].MatchID != "m1" {
		t.Fatalf("unexpected failed match: %s", report.MatchFailures[0].MatchID)
	}
	if !errors.Is(report.MatchFailures[0].Err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", report.MatchFailures[0].Err)
	}
	if report.MatchesSaved != 1 {
		t.Fatalf("expected other match saved: %+v", report)
	}
	if rows := statRepo.StatsForMatch("m1"); len(rows) != 0 {
		t.Fatalf("expected no stat rows for failed match, got %d", len(rows))
	}
}

func TestIngestServiceRunSkipsBlacklistedMatches(t *testing.T) {
	matchDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureProvider{fixtures: map[string][]ExternalMatch{
		"9|2023-2024": {
			{MatchID: "19bad36c", MatchDate: matchDate, HomeTeamID: "h1", HomeTeamName: "Arsenal", AwayTeamID: "a1", AwayTeamName: "Brentford"},
			{MatchID: "m2", MatchDate: matchDate, HomeTeamID: "h2", HomeTeamName: "Liverpool", AwayTeamID: "a2", AwayTeamName: "Everton"},
		},
	}}
	stats := &stubStatsProvider{stats: map[string][]ExternalTeamLines{
		"m2": {teamLines("Liverpool", "p1")},
	}}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, stats, seasonRepo, matchRepo, statRepo, []string{"19bad36c"}, logging.NewNop())

	report, err := service.Run(context.Background(), []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(stats.calls) != 1 || stats.calls[0] != "m2" {
		t.Fatalf("expected stats fetched only for m2, got %v", stats.calls)
	}
	if report.MatchesSaved != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestIngestServiceRunGatesEmptySeasonOnRerun(t *testing.T) {
	fixtures := &stubFixtureProvider{fixtures: map[string][]ExternalMatch{
		"9|2023-2024": {},
	}}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, &stubStatsProvider{}, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())
	items := []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"}}

	report, err := service.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if report.SeasonsFetched != 1 {
		t.Fatalf("unexpected first report: %+v", report)
	}

	// A season with zero known matches is complete (0 == 0) and must not
	// be re-fetched.
	report, err = service.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.SeasonsSkipped != 1 || report.SeasonsFetched != 0 {
		t.Fatalf("unexpected second report: %+v", report)
	}
	if fixtures.calls != 1 {
		t.Fatalf("expected one provider call across both runs, got %d", fixtures.calls)
	}
}

func TestIngestServiceRerunLeavesStoredDataUntouched(t *testing.T) {
	matchDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureProvider{fixtures: map[string][]ExternalMatch{
		"9|2023-2024": {
			{MatchID: "m1", MatchDate: matchDate, HomeTeamID: "h1", HomeTeamName: "Arsenal", AwayTeamID: "a1", AwayTeamName: "Brentford"},
			{MatchID: "m2", MatchDate: matchDate, HomeTeamID: "h2", HomeTeamName: "Liverpool", AwayTeamID: "a2", AwayTeamName: "Everton"},
		},
	}}
	// m2's payload keeps failing, so the season stays incomplete and the
	// second run walks the same fixtures again.
	stats := &stubStatsProvider{
		stats: map[string][]ExternalTeamLines{
			"m1": {teamLines("Arsenal", "p1")},
		},
		failFor: map[string]error{
			"m2": fmt.Errorf("provider status=500 body=oops"),
		},
	}

	seasonRepo, matchRepo, statRepo := newTestRepos()
	service := NewIngestService(fixtures, stats, seasonRepo, matchRepo, statRepo, nil, logging.NewNop())
	items := []WorkItem{{LeagueID: "9", LeagueName: "Premier League", SeasonID: "2023-2024"}}

	if _, err := service.Run(context.Background(), items); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstRows := statRepo.StatsForMatch("m1")
	if len(firstRows) != 3 {
		t.Fatalf("expected 3 rows after first run, got %d", len(firstRows))
	}

	report, err := service.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.SeasonsFetched != 1 || report.MatchesSaved != 0 {
		t.Fatalf("unexpected second report: %+v", report)
	}

	if got := len(statRepo.StatsForMatch("m1")); got != 3 {
		t.Fatalf("expected m1 rows unchanged after rerun, got %d", got)
	}
	saved := 0
	for _, matchID := range stats.calls {
		if matchID == "m1" {
			saved++
		}
	}
	if saved != 1 {
		t.Fatalf("expected m1 stats fetched once across both runs, got %d", saved)
	}
	if len(seasonRepo.Seasons()) != 1 {
		t.Fatalf("expected a single season row, got %d", len(seasonRepo.Seasons()))
	}
}

func TestNormalizeMatchLinesDefaults(t *testing.T) {
	m := matchFixture()

	lines, err := normalizeMatchLines(m, []ExternalTeamLines{
		{TeamName: "Arsenal", Players: []ExternalPlayerLine{
			{PlayerID: "p1", PlayerName: "Bukayo Saka", CountryCode: "ENG",
				Summary: map[string]any{"min": "90", "gls": 2.0, "ast": 1.0}},
			{PlayerID: "p2", PlayerName: "David Raya",
				Summary: map[string]any{"min": "not a number"}},
		}},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	saka := lines[0]
	if saka.TeamID != "h1" {
		t.Fatalf("expected home team id, got %s", saka.TeamID)
	}
	if saka.MinsPlayed != 90 || saka.Goals != 2 || saka.Assists != 1 {
		t.Fatalf("unexpected values: %+v", saka)
	}
	if saka.Nationality == nil || *saka.Nationality != "ENG" {
		t.Fatalf("expected nationality ENG, got %v", saka.Nationality)
	}

	raya := lines[1]
	if raya.MinsPlayed != 0 || raya.Goals != 0 || raya.Assists != 0 {
		t.Fatalf("expected zero defaults for unreadable stats, got %+v", raya)
	}
	if raya.Nationality != nil {
		t.Fatalf("expected nil nationality, got %v", *raya.Nationality)
	}
}

func TestNormalizeMatchLinesRejectsMissingPlayerID(t *testing.T) {
	_, err := normalizeMatchLines(matchFixture(), []ExternalTeamLines{
		{TeamName: "Arsenal", Players: []ExternalPlayerLine{
			{PlayerName: "Unknown", Summary: map[string]any{}},
		}},
	})
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestPlayerMatchLineRows(t *testing.T) {
	line := playerstat.PlayerMatchLine{
		PlayerID: "p1", FullName: "Bukayo Saka", TeamID: "h1",
		MinsPlayed: 90, Goals: 2, Assists: 1,
	}

	rows := line.Rows("m1")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	byVariable := make(map[string]float64, len(rows))
	for _, row := range rows {
		if row.MatchID != "m1" || row.TeamID != "h1" || row.PlayerID != "p1" {
			t.Fatalf("unexpected row keys: %+v", row)
		}
		byVariable[row.Variable] = row.Value
	}
	if byVariable[playerstat.VariableMinsPlayed] != 90 ||
		byVariable[playerstat.VariableGoals] != 2 ||
		byVariable[playerstat.VariableAssists] != 1 {
		t.Fatalf("unexpected values: %v", byVariable)
	}
}

func matchFixture() match.Match {
	return match.Match{
		LeagueID:     "9",
		SeasonID:     "2023-2024",
		MatchID:      "m1",
		HomeTeamID:   "h1",
		HomeTeamName: "Arsenal",
		AwayTeamID:   "a1",
		AwayTeamName: "Brentford",
	}
}

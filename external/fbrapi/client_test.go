package fbrapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RobWHickman/cnxns/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Logger:     logging.NewNop(),
	})
}

func TestFetchFixtures(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		if r.URL.Query().Get("league_id") != "9" || r.URL.Query().Get("season_id") != "2023-2024" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"match_id":"abc123","date":"2024-03-09","home_team_id":"h1","home":"Arsenal","away_team_id":"a1","away":"Brentford"},
			{"match_id":"def456","date":"2024-03-10","home_team_id":"h2","home":"Liverpool","away_team_id":"a2","away":"Manchester City"}
		]}`))
	})

	matches, err := client.FetchFixtures(context.Background(), "9", "2023-2024")
	if err != nil {
		t.Fatalf("fetch fixtures: %v", err)
	}
	if gotPath != "/matches" {
		t.Fatalf("expected path /matches, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	first := matches[0]
	if first.MatchID != "abc123" {
		t.Fatalf("expected match_id abc123, got %s", first.MatchID)
	}
	if first.HomeTeamName != "Arsenal" || first.AwayTeamName != "Brentford" {
		t.Fatalf("unexpected team names: %s vs %s", first.HomeTeamName, first.AwayTeamName)
	}
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if !first.MatchDate.Equal(want) {
		t.Fatalf("expected date %s, got %s", want, first.MatchDate)
	}
}

func TestFetchFixturesRejectsBadDate(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"match_id":"abc123","date":"09/03/2024"}]}`))
	})

	if _, err := client.FetchFixtures(context.Background(), "9", "2023-2024"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestFetchMatchStats(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all-players-match-stats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("match_id") != "abc123" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"team_name":"Arsenal","players":[
				{"meta_data":{"player_id":"p1","player_name":"Bukayo Saka","player_country_code":"ENG"},
				 "stats":{"summary":{"min":"90","gls":1.0,"ast":2.0}}}
			]},
			{"team_name":"Brentford","players":[]}
		]}`))
	})

	teams, err := client.FetchMatchStats(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("fetch match stats: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[0].TeamName != "Arsenal" {
		t.Fatalf("expected Arsenal, got %s", teams[0].TeamName)
	}
	if len(teams[0].Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(teams[0].Players))
	}
	player := teams[0].Players[0]
	if player.PlayerID != "p1" || player.PlayerName != "Bukayo Saka" || player.CountryCode != "ENG" {
		t.Fatalf("unexpected player: %+v", player)
	}
	if player.Summary["min"] != "90" {
		t.Fatalf("expected min kept as string, got %T", player.Summary["min"])
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/generate_api_key" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"api_key":"fresh-key"}`))
	})

	key, err := client.GenerateKey(context.Background())
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if key != "fresh-key" {
		t.Fatalf("expected fresh-key, got %s", key)
	}
}

func TestDoJSONStatusError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"down"}`))
	})

	if _, err := client.FetchFixtures(context.Background(), "9", "2023-2024"); err == nil {
		t.Fatalf("expected error for provider 503")
	}
}

package fbrapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/RobWHickman/cnxns/internal/platform/logging"
	"github.com/RobWHickman/cnxns/internal/usecase"
)

const (
	defaultBaseURL  = "https://fbrapi.com"
	matchDateLayout = "2006-01-02"
)

type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RateInterval time.Duration
	Logger       *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		limiter:    limiter,
		logger:     logger,
	}
}

func (c *Client) FetchFixtures(ctx context.Context, leagueID, seasonID string) ([]usecase.ExternalMatch, error) {
	query := map[string]string{
		"league_id": leagueID,
		"season_id": seasonID,
	}

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/matches", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches league=%s season=%s: %w", leagueID, seasonID, err)
	}

	out := make([]usecase.ExternalMatch, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		matchDate, err := time.Parse(matchDateLayout, item.Date)
		if err != nil {
			return nil, fmt.Errorf("parse match date %q match_id=%s: %w", item.Date, item.MatchID, err)
		}
		out = append(out, usecase.ExternalMatch{
			MatchID:      item.MatchID,
			MatchDate:    matchDate,
			HomeTeamID:   item.HomeTeamID,
			HomeTeamName: item.Home,
			AwayTeamID:   item.AwayTeamID,
			AwayTeamName: item.Away,
		})
	}
	return out, nil
}

func (c *Client) FetchMatchStats(ctx context.Context, matchID string) ([]usecase.ExternalTeamLines, error) {
	query := map[string]string{
		"match_id": matchID,
	}

	var envelope matchStatsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/all-players-match-stats", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch match stats match_id=%s: %w", matchID, err)
	}

	out := make([]usecase.ExternalTeamLines, 0, len(envelope.Data))
	for _, team := range envelope.Data {
		lines := usecase.ExternalTeamLines{TeamName: team.TeamName}
		lines.Players = make([]usecase.ExternalPlayerLine, 0, len(team.Players))
		for _, player := range team.Players {
			lines.Players = append(lines.Players, usecase.ExternalPlayerLine{
				PlayerID:    player.MetaData.PlayerID,
				PlayerName:  player.MetaData.PlayerName,
				CountryCode: player.MetaData.PlayerCountryCode,
				Summary:     player.Stats.Summary,
			})
		}
		out = append(out, lines)
	}
	return out, nil
}

// GenerateKey requests a fresh API key from the provider. The key is returned
// to the caller rather than stored on the client.
func (c *Client) GenerateKey(ctx context.Context) (string, error) {
	var envelope generateKeyEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/generate_api_key", nil, &envelope); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	if envelope.APIKey == "" {
		return "", crerr.New("provider returned empty api key")
	}
	return envelope.APIKey, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query map[string]string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for key, value := range query {
			values.Set(key, value)
		}
		fullURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %s", sanitizeSensitiveText(err.Error(), c.apiKey))
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("read response body: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		c.logger.WarnContext(ctx, "fbrapi request failed", "url", fullURL, "error", err)
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

type matchesEnvelope struct {
	Data []matchItem `json:"data"`
}

type matchItem struct {
	MatchID    string `json:"match_id"`
	Date       string `json:"date"`
	HomeTeamID string `json:"home_team_id"`
	Home       string `json:"home"`
	AwayTeamID string `json:"away_team_id"`
	Away       string `json:"away"`
}

type matchStatsEnvelope struct {
	Data []teamStatsItem `json:"data"`
}

type teamStatsItem struct {
	TeamName string           `json:"team_name"`
	Players  []playerStatItem `json:"players"`
}

type playerStatItem struct {
	MetaData playerMetaData  `json:"meta_data"`
	Stats    playerStatGroup `json:"stats"`
}

type playerMetaData struct {
	PlayerID          string `json:"player_id"`
	PlayerName        string `json:"player_name"`
	PlayerCountryCode string `json:"player_country_code"`
}

type playerStatGroup struct {
	Summary map[string]any `json:"summary"`
}

type generateKeyEnvelope struct {
	APIKey string `json:"api_key"`
}

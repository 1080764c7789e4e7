package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/RobWHickman/cnxns/external/fbrapi"
	"github.com/RobWHickman/cnxns/external/fbref"
	"github.com/RobWHickman/cnxns/internal/config"
	"github.com/RobWHickman/cnxns/internal/infrastructure/repository/postgres"
	"github.com/RobWHickman/cnxns/internal/platform/logging"
	"github.com/RobWHickman/cnxns/internal/usecase"
)

// OpenDB connects to Postgres using the configured URL.
func OpenDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database %s: %w", dbNameFromURL(dbURL), err)
	}
	return db, nil
}

// NewIngestService wires the API-backed pipeline against Postgres.
func NewIngestService(cfg config.Config, catalog config.Catalog, db *sqlx.DB, logger *logging.Logger) *usecase.IngestService {
	client := fbrapi.NewClient(fbrapi.ClientConfig{
		BaseURL:      cfg.FBRBaseURL,
		APIKey:       cfg.FBRAPIKey,
		Timeout:      cfg.FBRTimeout,
		RateInterval: cfg.FBRRateLimit,
		Logger:       logger,
	})

	return usecase.NewIngestService(
		client,
		client,
		postgres.NewLeagueSeasonRepository(db),
		postgres.NewMatchRepository(db),
		postgres.NewPlayerStatRepository(db),
		catalog.Blacklist,
		logger,
	)
}

// NewScrapeService wires the HTML-backed fixture pipeline against Postgres.
func NewScrapeService(cfg config.Config, db *sqlx.DB, logger *logging.Logger) *usecase.ScrapeService {
	scraper := fbref.NewScraper(fbref.ScraperConfig{
		BaseURL: cfg.ScrapeBaseURL,
		Delay:   cfg.ScrapeDelay,
		Logger:  logger,
	})

	return usecase.NewScrapeService(
		scraper,
		postgres.NewLeagueSeasonRepository(db),
		postgres.NewMatchRepository(db),
		logger,
	)
}

// NewKeyClient builds a provider client suitable for API key generation
// only. No key or rate limit is attached.
func NewKeyClient(cfg config.Config, logger *logging.Logger) *fbrapi.Client {
	return fbrapi.NewClient(fbrapi.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.FBRTimeout},
		BaseURL:    cfg.FBRBaseURL,
		Logger:     logger,
	})
}

// Worklist expands the catalog into ordered work items, one per league
// season. FULL season lists are expanded in catalog order.
func Worklist(catalog config.Catalog) ([]usecase.WorkItem, error) {
	items := make([]usecase.WorkItem, 0, 16)
	for _, league := range catalog.Leagues {
		for _, seasonID := range catalog.Seasons(league) {
			items = append(items, usecase.WorkItem{
				LeagueID:   league.LeagueID,
				LeagueName: league.LeagueName,
				SeasonID:   seasonID,
			})
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog has no league seasons")
	}
	return items, nil
}

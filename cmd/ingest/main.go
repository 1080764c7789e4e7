// Command ingest is the connections data ingestion CLI.
//
// Usage:
//
//	cnxns-ingest run
//	cnxns-ingest scrape
//	cnxns-ingest reconcile
//	cnxns-ingest generate-key
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RobWHickman/cnxns/internal/app"
	"github.com/RobWHickman/cnxns/internal/config"
	"github.com/RobWHickman/cnxns/internal/platform/logging"
	"github.com/RobWHickman/cnxns/internal/usecase"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "cnxns-ingest",
		Short:         "Football match and player stats ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(scrapeCmd())
	root.AddCommand(reconcileCmd())
	root.AddCommand(generateKeyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Ingest fixtures and player stats from the stats API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, cfg config.Config, catalog config.Catalog, logger *logging.Logger) error {
				if cfg.FBRAPIKey == "" {
					// Without a key there is nothing to ingest. Mint one so the
					// operator can put it in the environment and rerun.
					key, err := app.NewKeyClient(cfg, logger).GenerateKey(ctx)
					if err != nil {
						return fmt.Errorf("generate api key: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "no API_KEY set; generated a new key:\n%s\n", key)
					return nil
				}

				db, err := app.OpenDB(cfg)
				if err != nil {
					return err
				}
				defer func() {
					_ = db.Close()
				}()

				items, err := app.Worklist(catalog)
				if err != nil {
					return err
				}

				service := app.NewIngestService(cfg, catalog, db, logger)
				report, err := service.Run(ctx, items)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}
}

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Ingest fixtures by scraping public schedule pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, cfg config.Config, catalog config.Catalog, logger *logging.Logger) error {
				db, err := app.OpenDB(cfg)
				if err != nil {
					return err
				}
				defer func() {
					_ = db.Close()
				}()

				items, err := app.Worklist(catalog)
				if err != nil {
					return err
				}

				service := app.NewScrapeService(cfg, db, logger)
				report, err := service.Run(ctx, items)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute match and season completeness counters",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, cfg config.Config, catalog config.Catalog, logger *logging.Logger) error {
				db, err := app.OpenDB(cfg)
				if err != nil {
					return err
				}
				defer func() {
					_ = db.Close()
				}()

				return app.NewIngestService(cfg, catalog, db, logger).Reconcile(ctx)
			})
		},
	}
}

func generateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-key",
		Short: "Request a fresh API key from the stats provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, cfg config.Config, _ config.Catalog, logger *logging.Logger) error {
				key, err := app.NewKeyClient(cfg, logger).GenerateKey(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
}

func withPipeline(fn func(ctx context.Context, cfg config.Config, catalog config.Catalog, logger *logging.Logger) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() {
		_ = logger.Sync()
	}()
	logging.SetDefault(logger)

	return fn(ctx, cfg, catalog, logger)
}

func printReport(cmd *cobra.Command, report usecase.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seasons fetched: %d, skipped: %d\n", report.SeasonsFetched, report.SeasonsSkipped)
	fmt.Fprintf(out, "matches saved: %d\n", report.MatchesSaved)
	for _, failure := range report.SeasonFailures {
		fmt.Fprintf(out, "season failed league=%s season=%s: %v\n", failure.LeagueID, failure.SeasonID, failure.Err)
	}
	for _, failure := range report.MatchFailures {
		fmt.Fprintf(out, "match failed match_id=%s: %v\n", failure.MatchID, failure.Err)
	}
	if report.Failed() {
		fmt.Fprintln(out, "run finished with failures")
	}
}

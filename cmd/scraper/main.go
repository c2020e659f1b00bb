package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adda-Baaj/bangla-khobor/internal/app"
	"github.com/Adda-Baaj/bangla-khobor/internal/config"
	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scraper failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("scraper", pflag.ContinueOnError)
	site := flags.StringP("site", "s", app.SiteAll, "site id to scrape, or \"all\"")
	limit := flags.IntP("limit", "n", 10, "max articles per site, 0 for no cap")
	format := flags.String("format", "", "output format override (json or csv)")
	outputDir := flags.String("output-dir", "", "output directory override")
	sitesFile := flags.String("sites", "", "sites registry file override")
	publishersFile := flags.String("publishers", "", "publishers registry file override")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *format != "" {
		cfg.OutputFormat = *format
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *sitesFile != "" {
		cfg.SitesFile = *sitesFile
	}
	if *publishersFile != "" {
		cfg.PublishersFile = *publishersFile
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("scraper starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scraper, err := app.NewScraper(ctx, cfg)
	if err != nil {
		logger.ErrorObj("failed to initialize scraper", "error", err)
		return err
	}
	defer scraper.Close()

	if err := scraper.Run(ctx, *site, *limit); err != nil {
		return fmt.Errorf("scraper run: %w", err)
	}

	return nil
}

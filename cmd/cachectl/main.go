package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Adda-Baaj/bangla-khobor/internal/cache"
	"github.com/Adda-Baaj/bangla-khobor/internal/config"
	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
)

const usage = `usage: cachectl [flags] <stats|clear|remove-expired>`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cachectl failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("cachectl", pflag.ContinueOnError)
	dbPath := flags.String("db", "", "bbolt database path override")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	args := flags.Args()
	if len(args) != 1 {
		return fmt.Errorf("%s", usage)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *dbPath != "" {
		cfg.BBoltPath = *dbPath
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	store, err := cache.NewStore(cfg.CacheType, cfg.BBoltPath, cache.Options{
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	switch command {
	case "stats":
		stats, err := store.Stats()
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}
		fmt.Printf("entries: %d\nexpired: %d\nsize: %d bytes\n",
			stats.EntryCount, stats.ExpiredCount, stats.TotalSize)
		if !stats.OldestEntry.IsZero() {
			fmt.Printf("oldest: %s\n", stats.OldestEntry.Format("2006-01-02 15:04:05"))
		}
	case "clear":
		n, err := store.Clear()
		if err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
		fmt.Printf("removed %d entries\n", n)
	case "remove-expired":
		n, err := store.RemoveExpired()
		if err != nil {
			return fmt.Errorf("remove expired: %w", err)
		}
		fmt.Printf("removed %d expired entries\n", n)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/bangla-khobor/internal/cache"
	"github.com/Adda-Baaj/bangla-khobor/internal/config"
	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
	"github.com/Adda-Baaj/bangla-khobor/internal/fetch"
	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
	"github.com/Adda-Baaj/bangla-khobor/internal/output"
	"github.com/Adda-Baaj/bangla-khobor/internal/scrape"
	"github.com/Adda-Baaj/bangla-khobor/pkg/httpclient"
	"github.com/Adda-Baaj/bangla-khobor/pkg/publishers"
	"github.com/Adda-Baaj/bangla-khobor/pkg/sites"
)

// SiteAll selects every configured site for one invocation.
const SiteAll = "all"

// Scraper is the application runtime: it owns the wiring between config,
// the site registry, the cache, the fetch layer and the output writer.
type Scraper struct {
	cfg        *config.Config
	siteReg    *sites.Registry
	extractors sites.ExtractorRegistry
	store      cache.Store
	writer     output.Writer
	fanout     *publishers.Fanout
}

// NewScraper builds the runtime from config. Configuration problems
// surface here, before any network activity.
func NewScraper(ctx context.Context, cfg *config.Config) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	siteReg, err := sites.LoadRegistry(cfg.SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load sites registry: %w", err)
	}
	siteList := siteReg.All()
	siteIDs := make([]string, 0, len(siteList))
	for _, s := range siteList {
		siteIDs = append(siteIDs, s.ID)
	}
	logger.InfoObj("sites registry loaded", "sites_meta", map[string]any{
		"count": len(siteIDs),
		"ids":   siteIDs,
	})

	store, err := cache.NewStore(cfg.CacheType, cfg.BBoltPath, cache.Options{
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	logger.InfoObj("cache initialized", "cache_config", map[string]any{
		"type":        cfg.CacheType,
		"path":        cfg.BBoltPath,
		"ttl_seconds": int(cfg.CacheTTL.Seconds()),
	})

	writer, err := output.NewWriter(cfg.OutputFormat, cfg.OutputDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init output writer: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Scraper{
		cfg:        cfg,
		siteReg:    siteReg,
		extractors: sites.DefaultExtractorRegistry(),
		store:      store,
		writer:     writer,
		fanout:     fanout,
	}, nil
}

// buildFanout assembles the optional publisher fanout. No publishers
// file means no fanout, not an error.
func buildFanout(ctx context.Context, path string) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, logHandle{})
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	logger.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"configured": len(reg.All()),
		"enabled":    len(enabled),
	})
	return publishers.NewFanout(pubs), nil
}

// Run scrapes the named site, or every configured site for SiteAll, and
// writes each run's results. Per-site failures under SiteAll are joined
// and reported after every site has had its chance.
func (s *Scraper) Run(ctx context.Context, siteID string, limit int) error {
	targets, err := s.targets(siteID)
	if err != nil {
		return err
	}

	var errs []error
	for _, site := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.runSite(ctx, site, limit); err != nil {
			logger.ErrorObj("site run failed", "scrape_error", map[string]any{
				"site":  site.ID,
				"error": err.Error(),
			})
			errs = append(errs, fmt.Errorf("site %s: %w", site.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scraper) targets(siteID string) ([]sites.Site, error) {
	if siteID == "" || siteID == SiteAll {
		return s.siteReg.All(), nil
	}
	site, ok := s.siteReg.ByID(siteID)
	if !ok {
		return nil, fmt.Errorf("unknown site %q", siteID)
	}
	return []sites.Site{site}, nil
}

// runSite executes one orchestrated run. The fetcher is rebuilt per site
// so a per-site request delay override applies without leaking into the
// next site's throttle window.
func (s *Scraper) runSite(ctx context.Context, site sites.Site, limit int) error {
	delay := s.cfg.RequestDelay
	if d := site.RequestDelay(); d > 0 {
		delay = d
	}
	fetcher := fetch.NewFetcher(
		httpclient.NewRestyClient(s.cfg.HTTPTimeout),
		fetch.Options{Delay: delay, MaxAttempts: s.cfg.MaxRetries},
	)
	rules := domain.Rules{
		MinTitleLength:   s.cfg.MinTitleLength,
		MinContentLength: s.cfg.MinContentLength,
	}
	orch := scrape.New(s.siteReg, s.extractors, fetcher, s.store, rules)

	articles, stats, err := orch.Run(ctx, site.ID, limit)
	if err != nil {
		return err
	}

	path, err := s.writer.Write(articles, stats)
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	logger.InfoObj("run results persisted", "run_summary", map[string]any{
		"site":         site.ID,
		"path":         path,
		"validated":    stats.Validated,
		"success_rate": stats.SuccessRate(),
	})

	s.publish(ctx, site, articles)
	return nil
}

// publish fans each article out to the configured sinks. Failures are
// logged; they never fail the run.
func (s *Scraper) publish(ctx context.Context, site sites.Site, articles []domain.Article) {
	if s.fanout.Size() == 0 || len(articles) == 0 {
		return
	}
	delivered := 0
	for _, article := range articles {
		evt := publishers.NewEvent(site.ID, site.Name, article)
		n, err := s.fanout.Publish(ctx, evt)
		if err != nil {
			logger.WarnObj("publish partially failed", "publisher_error", map[string]any{
				"site":  site.ID,
				"url":   article.URL,
				"error": err.Error(),
			})
		}
		if n > 0 {
			delivered++
		}
	}
	logger.InfoObj("articles published", "publisher_summary", map[string]any{
		"site":      site.ID,
		"articles":  len(articles),
		"delivered": delivered,
		"sinks":     s.fanout.Size(),
	})
}

// CacheStats reports the cache contents for admin tooling.
func (s *Scraper) CacheStats() (cache.Stats, error) { return s.store.Stats() }

// CacheClear deletes every cache entry.
func (s *Scraper) CacheClear() (int, error) { return s.store.Clear() }

// CacheRemoveExpired sweeps entries past their validity window.
func (s *Scraper) CacheRemoveExpired() (int, error) { return s.store.RemoveExpired() }

// Close releases held resources.
func (s *Scraper) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// logHandle adapts the package-global logger to the publishers.Logger
// surface.
type logHandle struct{}

func (logHandle) InfoObj(msg, key string, obj interface{})  { logger.InfoObj(msg, key, obj) }
func (logHandle) DebugObj(msg, key string, obj interface{}) { logger.DebugObj(msg, key, obj) }
func (logHandle) WarnObj(msg, key string, obj interface{})  { logger.WarnObj(msg, key, obj) }
func (logHandle) ErrorObj(msg, key string, obj interface{}) { logger.ErrorObj(msg, key, obj) }

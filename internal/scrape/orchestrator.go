package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/bangla-khobor/internal/cache"
	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
	"github.com/Adda-Baaj/bangla-khobor/internal/fetch"
	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
	"github.com/Adda-Baaj/bangla-khobor/pkg/sites"
)

// Package scrape drives one sequential run per site: discover candidate
// links from listing pages, then fetch, extract and validate each
// candidate until the requested count is met. The cache is consulted
// before every network call so reruns are idempotent.

// Discovery gathers more candidates than requested because some fail
// extraction or validation downstream.
const linkBufferFactor = 3

// Fetcher is the page retrieval dependency; *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

// Orchestrator runs the scrape pipeline for configured sites.
type Orchestrator struct {
	registry   *sites.Registry
	extractors sites.ExtractorRegistry
	fetcher    Fetcher
	store      cache.Store
	rules      domain.Rules

	now func() time.Time
}

// New wires an orchestrator. A nil store disables caching via the noop
// backend contract; rules at zero value fall back to the defaults.
func New(registry *sites.Registry, extractors sites.ExtractorRegistry, fetcher Fetcher, store cache.Store, rules domain.Rules) *Orchestrator {
	if rules == (domain.Rules{}) {
		rules = domain.DefaultRules()
	}
	if store == nil {
		store, _ = cache.NewStore("none", "", cache.Options{})
	}
	return &Orchestrator{
		registry:   registry,
		extractors: extractors,
		fetcher:    fetcher,
		store:      store,
		rules:      rules,
		now:        time.Now,
	}
}

// Run scrapes up to limit valid articles from the given site. limit == 0
// means every discoverable article. The returned stats are populated even
// when err is non-nil; partial failures never abort a run, only an
// unknown site, a negative limit, or a wholly unreachable site do.
func (o *Orchestrator) Run(ctx context.Context, siteID string, limit int) ([]domain.Article, domain.RunStats, error) {
	if limit < 0 {
		return nil, domain.RunStats{}, fmt.Errorf("limit must be zero or positive, got %d", limit)
	}
	site, ok := o.registry.ByID(siteID)
	if !ok {
		return nil, domain.RunStats{}, fmt.Errorf("unknown site %q", siteID)
	}
	extractor, err := o.extractors.ExtractorFor(site)
	if err != nil {
		return nil, domain.RunStats{}, err
	}

	stats := domain.RunStats{
		SiteID:    site.ID,
		SiteName:  site.Name,
		Requested: limit,
		StartedAt: o.now(),
	}

	logger.InfoObj("scrape run started", "scrape_run", map[string]any{
		"site":  site.ID,
		"limit": limit,
	})

	candidates, err := o.discover(ctx, site, extractor, limit)
	if err != nil {
		stats.Duration = o.now().Sub(stats.StartedAt)
		return nil, stats, err
	}
	stats.Found = len(candidates)

	var articles []domain.Article
	for _, url := range candidates {
		if limit > 0 && len(articles) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			stats.Validated = len(articles)
			stats.Duration = o.now().Sub(stats.StartedAt)
			return articles, stats, err
		}

		article, ok := o.processCandidate(ctx, site, extractor, url, &stats)
		if ok {
			articles = append(articles, article)
		}
	}

	stats.Validated = len(articles)
	stats.Duration = o.now().Sub(stats.StartedAt)

	logger.InfoObj("scrape run finished", "scrape_run", map[string]any{
		"site":         site.ID,
		"found":        stats.Found,
		"validated":    stats.Validated,
		"failures":     len(stats.Failures),
		"success_rate": stats.SuccessRate(),
	})
	return articles, stats, nil
}

// discover walks the listing pages in order and accumulates candidate
// article links, stopping once the buffered target is reached. A listing
// page that cannot be fetched or parsed is skipped; the run only fails
// when every listing page failed.
func (o *Orchestrator) discover(ctx context.Context, site sites.Site, extractor sites.Extractor, limit int) ([]string, error) {
	target := 0
	if limit > 0 {
		target = limit * linkBufferFactor
	}

	var links []string
	seen := make(map[string]bool)
	succeeded := 0

	for _, page := range extractor.ListingPages() {
		if target > 0 && len(links) >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, contentType, err := o.listingHTML(ctx, site, page)
		if err != nil {
			logger.WarnObj("listing page failed", "scrape_listing", map[string]any{
				"site":  site.ID,
				"page":  page,
				"error": err.Error(),
			})
			continue
		}
		succeeded++

		remaining := 0
		if target > 0 {
			remaining = target - len(links)
		}
		pageLinks, err := extractor.DiscoverLinks(body, contentType, remaining)
		if err != nil {
			logger.WarnObj("listing page unparseable", "scrape_listing", map[string]any{
				"site":  site.ID,
				"page":  page,
				"error": err.Error(),
			})
			continue
		}
		for _, link := range pageLinks {
			if !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
		}
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("site %q: no listing page could be fetched", site.ID)
	}
	logger.DebugObj("discovery complete", "scrape_listing", map[string]any{
		"site":       site.ID,
		"candidates": len(links),
	})
	return links, nil
}

// listingHTML returns a listing page body, cache-first. Cached listing
// pages carry no content type; extractors sniff the charset from the
// document itself.
func (o *Orchestrator) listingHTML(ctx context.Context, site sites.Site, url string) ([]byte, string, error) {
	if entry, ok, err := o.store.Get(url); err == nil && ok && entry.Kind == cache.KindHTML {
		return entry.Payload, "", nil
	}

	doc, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}
	o.putEntry(site, url, cache.Entry{Kind: cache.KindHTML, Payload: doc.Body})
	return doc.Body, doc.ContentType, nil
}

// processCandidate resolves one candidate URL into a valid article, or
// records why it was dropped. Cached articles are reused without network
// activity; cached HTML is re-extracted without refetching.
func (o *Orchestrator) processCandidate(ctx context.Context, site sites.Site, extractor sites.Extractor, url string, stats *domain.RunStats) (domain.Article, bool) {
	entry, hit, err := o.store.Get(url)
	if err != nil {
		logger.WarnObj("cache read failed", "scrape_cache", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		hit = false
	}

	if hit && entry.Kind == cache.KindArticle {
		var article domain.Article
		if err := json.Unmarshal(entry.Payload, &article); err == nil {
			return o.validate(article, url, stats)
		}
		// undecodable article payload: treat as a miss and refetch
		hit = false
	}

	if hit && entry.Kind == cache.KindHTML {
		article, err := extractor.Extract(entry.Payload, "", url)
		if err != nil {
			stats.RecordFailure(url, "extract", err.Error())
			return domain.Article{}, false
		}
		o.cacheArticle(site, url, article)
		return o.validate(article, url, stats)
	}

	doc, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		stats.RecordFailure(url, "fetch", err.Error())
		return domain.Article{}, false
	}

	article, err := extractor.Extract(doc.Body, doc.ContentType, url)
	if err != nil {
		// keep the HTML so a rerun can retry extraction without refetching
		o.putEntry(site, url, cache.Entry{Kind: cache.KindHTML, Payload: doc.Body})
		stats.RecordFailure(url, "extract", err.Error())
		return domain.Article{}, false
	}

	o.cacheArticle(site, url, article)
	return o.validate(article, url, stats)
}

// validate applies the rules and records a failure for invalid articles.
// Articles are cached before validation, so an invalid article stays
// invalid on reruns rather than being refetched.
func (o *Orchestrator) validate(article domain.Article, url string, stats *domain.RunStats) (domain.Article, bool) {
	reasons := domain.Validate(article, o.rules)
	if len(reasons) == 0 {
		return article, true
	}
	stats.RecordFailure(url, "validate", strings.Join(reasons, "; "))
	return domain.Article{}, false
}

func (o *Orchestrator) cacheArticle(site sites.Site, url string, article domain.Article) {
	payload, err := json.Marshal(article)
	if err != nil {
		logger.WarnObj("article not cacheable", "scrape_cache", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return
	}
	o.putEntry(site, url, cache.Entry{Kind: cache.KindArticle, Payload: payload})
}

// putEntry writes through to the cache; write failures are logged and
// otherwise ignored so caching problems never fail a run.
func (o *Orchestrator) putEntry(site sites.Site, url string, entry cache.Entry) {
	entry.TTL = site.CacheTTL()
	if err := o.store.Put(url, entry); err != nil {
		logger.WarnObj("cache write failed", "scrape_cache", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}
}
